package vocab

import "time"

// Config holds batch and retry settings shared by Importer and Builder.
type Config struct {
	// BatchSize is the number of words written or embedded per batch.
	BatchSize int

	// ReportInterval is how often to report progress (number of words).
	ReportInterval int

	// MaxRetries is the maximum number of attempts for an embedding batch.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      500,
		ReportInterval: 10000,
		MaxRetries:     3,
		RetryDelay:     time.Second,
	}
}

func (c *Config) validate() error {
	if c.BatchSize < 1 {
		return ErrInvalidBatchSize
	}
	if c.MaxRetries < 1 {
		return ErrInvalidMaxAttempts
	}
	return nil
}

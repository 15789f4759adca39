package vocab

import (
	"errors"

	"github.com/poiesic/rensou/internal/retry"
)

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = retry.ErrInvalidAttempts

	// ErrInvalidBatchSize is returned for a batch size below 1.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrEmptyWordList is returned when there is nothing to embed.
	ErrEmptyWordList = errors.New("word list is empty")
)

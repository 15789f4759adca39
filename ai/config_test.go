package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "none", cfg.Token)
	assert.Equal(t, uint32(5), cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host and model", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithToken("sk-test"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "sk-test", cfg.Token)
	})

	t.Run("with breaker settings", func(t *testing.T) {
		cfg := NewConfig(WithBreaker(2, time.Minute))

		assert.Equal(t, uint32(2), cfg.BreakerFailures)
		assert.Equal(t, time.Minute, cfg.BreakerTimeout)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps existing suffix", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"leaves empty host", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
			assert.Equal(t, "none", cfg.Token)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid default config", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("normalizes before validating", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost("http://host:1234"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://host:1234/v1", cfg.EmbeddingHost)
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"missing host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost is required"},
		{"missing model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel is required"},
		{"zero breaker failures", func(c *Config) { c.BreakerFailures = 0 }, "BreakerFailures"},
		{"non-positive breaker timeout", func(c *Config) { c.BreakerTimeout = 0 }, "BreakerTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/rensou/ai"
	"github.com/sony/gobreaker"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// Calls pass through a circuit breaker so a dead service fails fast.
type Embedder struct {
	embedder embeddings.Embedder
	breaker  *gobreaker.CircuitBreaker
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.Token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return newEmbedder(embedder, config), nil
}

func newEmbedder(embedder embeddings.Embedder, config *ai.Config) *Embedder {
	logger := slog.Default().With("component", "openai-embedder")
	return &Embedder{
		embedder: embedder,
		breaker:  newBreaker(config, logger),
		logger:   logger,
	}
}

func newBreaker(config *ai.Config, logger *slog.Logger) *gobreaker.CircuitBreaker {
	failures := config.BreakerFailures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "embedding:" + config.EmbeddingModel,
		MaxRequests: 1,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about the service's health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	out, err := e.breaker.Execute(func() (any, error) {
		return e.embedder.EmbedDocuments(ctx, texts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, err)
		}
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	vectors := out.([][]float32)
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, received %d", ai.ErrEmbeddingCount, len(texts), len(vectors))
	}
	return vectors, nil
}

// Package embedding builds a vector oracle whose vectors come from an
// embedding service instead of a word2vec model.
//
// The vocabulary is a fixed word list. On Initialize every word is embedded
// in batches through an ai.Embedder and the normalized vectors are indexed
// for cosine search. When a repository is attached, vectors already stored
// there are reused and new ones are written back.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/rensou/ai"
	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/oracle/vector"
	"github.com/poiesic/rensou/storage"
	"github.com/poiesic/rensou/vocab"
)

type config struct {
	model      string
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	repo       storage.VectorRepository
	logger     *slog.Logger
}

// Option configures the embedding source.
type Option func(*config) error

// WithModelName sets the model name used in the "embedding:<model>" label.
func WithModelName(name string) Option {
	return func(c *config) error {
		if name == "" {
			return errors.New("model name cannot be empty")
		}
		c.model = name
		return nil
	}
}

// WithBatchSize sets how many words go into one embedding request.
func WithBatchSize(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return vocab.ErrInvalidBatchSize
		}
		c.batchSize = n
		return nil
	}
}

// WithRetry sets attempts per batch and the base backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *config) error {
		if attempts < 1 {
			return vocab.ErrInvalidMaxAttempts
		}
		c.maxRetries = attempts
		c.retryDelay = delay
		return nil
	}
}

// WithRepository caches vectors in repo.
func WithRepository(repo storage.VectorRepository) Option {
	return func(c *config) error {
		c.repo = repo
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// New returns a vector oracle over words embedded by embedder.
func New(embedder ai.Embedder, words []string, opts ...Option) (*vector.Oracle, error) {
	if embedder == nil {
		return nil, errors.New("embedder required")
	}
	if len(words) == 0 {
		return nil, vocab.ErrEmptyWordList
	}

	defaults := vocab.DefaultConfig()
	cfg := &config{
		model:      "default",
		batchSize:  64,
		maxRetries: defaults.MaxRetries,
		retryDelay: defaults.RetryDelay,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	src := &source{
		words:     append([]string(nil), words...),
		cfg:       cfg,
		processor: vocab.NewBatchEmbedder(embedder, cfg.maxRetries, cfg.retryDelay),
		logger:    cfg.logger.With("component", "embedding-source"),
	}
	return vector.New(src, vector.WithLogger(cfg.logger), vector.WithModelType("embedding:"+cfg.model))
}

type source struct {
	words     []string
	cfg       *config
	processor *vocab.BatchEmbedder
	logger    *slog.Logger
}

func (s *source) Load(ctx context.Context, idx *vector.Index) error {
	pending := make([]string, 0, len(s.words))
	seen := make(map[string]struct{}, len(s.words))
	cached := 0

	for _, w := range s.words {
		if _, dup := seen[w]; dup || w == "" {
			continue
		}
		seen[w] = struct{}{}
		if s.cfg.repo != nil {
			v, err := s.cfg.repo.GetVector(ctx, w)
			if err == nil {
				if _, err := idx.Add(v.Word, v.Vector); err != nil {
					return err
				}
				cached++
				continue
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
		}
		pending = append(pending, w)
	}

	s.logger.Info("embedding vocabulary", "words", len(pending), "cached", cached, "batch_size", s.cfg.batchSize)

	for start := 0; start < len(pending); start += s.cfg.batchSize {
		batch := pending[start:min(start+s.cfg.batchSize, len(pending))]
		vectors, err := s.processor.Embed(ctx, batch)
		if err != nil {
			return fmt.Errorf("embed vocabulary: %w", err)
		}
		if err := s.add(ctx, idx, vectors); err != nil {
			return err
		}
	}
	return nil
}

func (s *source) add(ctx context.Context, idx *vector.Index, vectors []*core.WordVector) error {
	for _, v := range vectors {
		if _, err := idx.Add(v.Word, v.Vector); err != nil {
			return err
		}
	}
	if s.cfg.repo == nil {
		return nil
	}
	if err := s.cfg.repo.PutVectors(ctx, vectors...); err != nil {
		return fmt.Errorf("cache vectors: %w", err)
	}
	return nil
}

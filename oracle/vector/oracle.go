// Package vector implements oracle.Oracle over dense word vectors using
// brute-force cosine similarity.
package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/oracle"
)

// DefaultModelType labels oracles built from word2vec models.
const DefaultModelType = "word2vec"

// Oracle serves nearest-neighbour queries from an in-memory Index.
type Oracle struct {
	source    Source
	modelType string
	logger    *slog.Logger

	mu    sync.RWMutex
	index *Index
}

var _ oracle.Oracle = (*Oracle)(nil)

// Option configures an Oracle.
type Option func(*Oracle) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Oracle) error {
		o.logger = logger
		return nil
	}
}

// WithModelType overrides the model type reported by Info.
func WithModelType(label string) Option {
	return func(o *Oracle) error {
		if label == "" {
			return errors.New("model type cannot be empty")
		}
		o.modelType = label
		return nil
	}
}

// New creates an Oracle that loads its vectors from source on Initialize.
func New(source Source, opts ...Option) (*Oracle, error) {
	if source == nil {
		return nil, errors.New("source required")
	}
	o := &Oracle{
		source:    source,
		modelType: DefaultModelType,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("component", "vector-oracle")
	return o, nil
}

// Initialize loads the vectors. Subsequent calls after success do nothing.
func (o *Oracle) Initialize(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.index != nil {
		return nil
	}

	start := time.Now()
	o.logger.Info("loading vectors", "model_type", o.modelType)

	idx := NewIndex(0)
	if err := o.source.Load(ctx, idx); err != nil {
		o.logger.Error("failed to load vectors", "err", err)
		return err
	}
	if idx.Len() == 0 {
		return fmt.Errorf("%w: %s", oracle.ErrEmptyVocabulary, o.modelType)
	}

	o.index = idx
	o.logger.Info("vectors loaded",
		"vocabulary", idx.Len(),
		"dimension", idx.Dimension(),
		"elapsed", time.Since(start))
	return nil
}

// Ready reports whether the vectors are loaded.
func (o *Oracle) Ready() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.index != nil
}

// Contains reports whether word is in the vocabulary.
func (o *Oracle) Contains(word string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.index != nil && o.index.Contains(word)
}

// Nearest returns up to count neighbours of word.
func (o *Oracle) Nearest(ctx context.Context, word string, count int) ([]core.Candidate, error) {
	if err := core.ValidateCount(count); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.index == nil {
		return nil, oracle.ErrNotInitialized
	}
	return o.index.Nearest(word, count)
}

// Info describes the loaded vectors.
func (o *Oracle) Info() core.ModelInfo {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.index == nil {
		return core.ModelInfo{}
	}
	return core.ModelInfo{
		VocabularySize:  o.index.Len(),
		VectorDimension: o.index.Dimension(),
		ModelType:       o.modelType,
	}
}

// Close drops the index.
func (o *Oracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.index = nil
	return nil
}

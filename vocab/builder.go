package vocab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/rensou/ai"
	"github.com/poiesic/rensou/storage"
)

// Builder embeds a word list through an ai.Embedder and stores the
// vectors. Words already present in the repository are skipped, so an
// interrupted run can be resumed.
type Builder struct {
	repo      storage.VectorRepository
	config    *Config
	progress  io.Writer
	processor *BatchEmbedder
}

// NewBuilder creates a new builder.
// progress: where to write progress output (typically os.Stderr)
func NewBuilder(repo storage.VectorRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Builder{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: NewBatchEmbedder(embedder, config.MaxRetries, config.RetryDelay),
	}
}

// Run embeds and stores words, returning how many new vectors were written.
func (b *Builder) Run(ctx context.Context, words []string) (int, error) {
	if err := b.config.validate(); err != nil {
		return 0, err
	}
	if len(words) == 0 {
		return 0, ErrEmptyWordList
	}

	pending, err := b.missing(ctx, words)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		fmt.Fprintf(b.progress, "All %d words already embedded\n", len(words))
		return 0, nil
	}

	fmt.Fprintf(b.progress, "Embedding %d words (%d already stored, batch size: %d)\n",
		len(pending), len(words)-len(pending), b.config.BatchSize)

	tracker := NewProgressTracker(b.progress, len(pending), b.config.ReportInterval)
	tracker.Start()

	stored := 0
	for _, batch := range chunk(pending, b.config.BatchSize) {
		vectors, err := b.processor.Embed(ctx, batch)
		if err != nil {
			return stored, fmt.Errorf("failed to process batch: %w", err)
		}
		if err := b.repo.PutVectors(ctx, vectors...); err != nil {
			return stored, fmt.Errorf("failed to store batch: %w", err)
		}
		stored += len(vectors)
		tracker.Update(stored)
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(b.progress, "Embedding complete. Stored %d words in %v (%.1f words/sec)\n",
		stored, elapsed.Round(time.Millisecond), float64(stored)/elapsed.Seconds())
	return stored, nil
}

func (b *Builder) missing(ctx context.Context, words []string) ([]string, error) {
	var pending []string
	for _, w := range words {
		_, err := b.repo.GetVector(ctx, w)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound):
			pending = append(pending, w)
		default:
			return nil, err
		}
	}
	return pending, nil
}

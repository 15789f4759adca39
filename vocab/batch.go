package vocab

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/rensou/ai"
	"github.com/poiesic/rensou/core"
)

// BatchEmbedder turns a batch of words into normalized word vectors.
type BatchEmbedder struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchEmbedder creates a new batch embedder.
func NewBatchEmbedder(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchEmbedder {
	return &BatchEmbedder{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Embed embeds words in one request, retrying with backoff.
func (b *BatchEmbedder) Embed(ctx context.Context, words []string) ([]*core.WordVector, error) {
	if len(words) == 0 {
		return nil, nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = b.embedder.EmbedTexts(ctx, words)
		return err
	}, b.maxRetries, b.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", b.maxRetries, err)
	}

	if len(embeddings) != len(words) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ai.ErrEmbeddingCount, len(words), len(embeddings))
	}

	vectors := make([]*core.WordVector, len(words))
	for i, word := range words {
		vectors[i] = &core.WordVector{
			Id:     core.IDFromContent(word),
			Word:   word,
			Vector: NormalizeVector(embeddings[i]),
		}
	}
	return vectors, nil
}

// chunk splits words into consecutive slices of at most size.
func chunk(words []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		out = append(out, words[start:end])
	}
	return out
}

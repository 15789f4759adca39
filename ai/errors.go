package ai

import "errors"

var (
	// ErrServiceUnavailable is returned while the embedding service is
	// considered down and requests are short-circuited.
	ErrServiceUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingCount is returned when the service answers a batch with
	// a different number of vectors than texts sent.
	ErrEmbeddingCount = errors.New("embedding count mismatch")
)

package storage

import (
	"context"

	"github.com/poiesic/rensou/core"
)

// VectorRepository persists word vectors for the dense-vector oracle.
// Implementations must be thread-safe and support concurrent access.
type VectorRepository interface {
	// PutVectors stores one or more word vectors.
	// Vectors with Id=0 are assigned IDFromContent(Word).
	// All vectors in a repository must share one dimension; writing a vector
	// of a different dimension returns ErrDimensionMismatch.
	PutVectors(ctx context.Context, vectors ...*core.WordVector) error

	// GetVector retrieves the vector stored for word.
	// Returns ErrNotFound if the word is not stored.
	GetVector(ctx context.Context, word string) (*core.WordVector, error)

	// ForEach calls fn for every stored vector in key order.
	// Iteration stops at the first error returned by fn.
	ForEach(ctx context.Context, fn func(*core.WordVector) error) error

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// Dimension returns the shared vector dimension, or 0 if nothing is stored.
	Dimension(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}

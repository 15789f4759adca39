package vector

import (
	"context"
	"fmt"

	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/storage"
	"github.com/poiesic/rensou/word2vec"
)

// Source fills an index with word vectors.
type Source interface {
	Load(ctx context.Context, idx *Index) error
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, idx *Index) error

// Load calls f.
func (f SourceFunc) Load(ctx context.Context, idx *Index) error {
	return f(ctx, idx)
}

// Word2VecFile loads a word2vec model file. Files ending in .bin are read
// in the binary format, anything else as text.
func Word2VecFile(path string) Source {
	return SourceFunc(func(ctx context.Context, idx *Index) error {
		_, err := word2vec.ReadFile(ctx, path, func(word string, vec []float32) error {
			_, err := idx.Add(word, vec)
			return err
		})
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	})
}

// Repository loads every vector persisted in repo.
func Repository(repo storage.VectorRepository) Source {
	return SourceFunc(func(ctx context.Context, idx *Index) error {
		return repo.ForEach(ctx, func(v *core.WordVector) error {
			_, err := idx.Add(v.Word, v.Vector)
			return err
		})
	})
}

package vocab

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/rensou/ai"
	"github.com/poiesic/rensou/ai/mock"
	"github.com/poiesic/rensou/storage"
	"github.com/poiesic/rensou/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) (storage.VectorRepository, func()) {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	return repo, func() {
		repo.Close()
		backend.Close()
	}
}

func testConfig() *Config {
	return &Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 3, RetryDelay: time.Millisecond}
}

func TestBatchEmbedder_Embed(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes vectors", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{3, 4}}, nil
		}
		vectors, err := NewBatchEmbedder(embedder, 1, time.Millisecond).Embed(ctx, []string{"犬"})
		require.NoError(t, err)
		require.Len(t, vectors, 1)
		assert.Equal(t, "犬", vectors[0].Word)
		assert.InDeltaSlice(t, []float32{0.6, 0.8}, vectors[0].Vector, 1e-6)
		assert.NotZero(t, vectors[0].Id)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		attempts := 0
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 2 {
				return nil, errors.New("temporary error")
			}
			return [][]float32{{1, 0}}, nil
		}
		_, err := NewBatchEmbedder(embedder, 3, time.Millisecond).Embed(ctx, []string{"犬"})
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("count mismatch", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}
		_, err := NewBatchEmbedder(embedder, 1, time.Millisecond).Embed(ctx, []string{"a", "b"})
		assert.ErrorIs(t, err, ai.ErrEmbeddingCount)
	})

	t.Run("empty batch", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		vectors, err := NewBatchEmbedder(embedder, 1, time.Millisecond).Embed(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, vectors)
		assert.Zero(t, embedder.CallCount())
	})
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunk([]string{"a", "b", "c"}, 2))
	assert.Nil(t, chunk(nil, 2))
}

func TestBuilder_Run(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	var progress bytes.Buffer
	builder := NewBuilder(repo, embedder, testConfig(), &progress)

	stored, err := builder.Run(ctx, []string{"犬", "猫", "海"})
	require.NoError(t, err)
	assert.Equal(t, 3, stored)
	assert.Equal(t, 2, embedder.CallCount(), "three words in batches of two")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	v, err := repo.GetVector(ctx, "海")
	require.NoError(t, err)
	assert.Len(t, v.Vector, mock.DefaultDimension)
	assert.Contains(t, progress.String(), "Embedding complete")

	t.Run("resumes by skipping stored words", func(t *testing.T) {
		embedder.Reset()
		stored, err := builder.Run(ctx, []string{"犬", "猫", "海", "山"})
		require.NoError(t, err)
		assert.Equal(t, 1, stored)
		assert.Equal(t, 1, embedder.CallCount())
	})

	t.Run("nothing left to do", func(t *testing.T) {
		embedder.Reset()
		stored, err := builder.Run(ctx, []string{"犬"})
		require.NoError(t, err)
		assert.Zero(t, stored)
		assert.Zero(t, embedder.CallCount())
	})
}

func TestBuilder_Errors(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("empty word list", func(t *testing.T) {
		_, err := NewBuilder(repo, mock.NewMockEmbedder(), testConfig(), &bytes.Buffer{}).Run(ctx, nil)
		assert.ErrorIs(t, err, ErrEmptyWordList)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		cfg := testConfig()
		cfg.BatchSize = 0
		_, err := NewBuilder(repo, mock.NewMockEmbedder(), cfg, &bytes.Buffer{}).Run(ctx, []string{"a"})
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	})

	t.Run("embedding failure stops the run", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("embedding error")
		}
		stored, err := NewBuilder(repo, embedder, testConfig(), &bytes.Buffer{}).Run(ctx, []string{"a", "b"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding error")
		assert.Zero(t, stored)
		assert.Equal(t, 3, embedder.CallCount(), "one batch, three attempts")
	})
}

func TestImporter_Run(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "model.txt")
	require.NoError(t, os.WriteFile(path, []byte("3 2\n犬 3 4\n猫 1 0\n[東京] 0 2\n"), 0644))

	var progress bytes.Buffer
	imported, err := NewImporter(repo, testConfig(), &progress).Run(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	v, err := repo.GetVector(ctx, "犬")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, v.Vector, 1e-6)

	_, err = repo.GetVector(ctx, "[東京]")
	require.NoError(t, err, "words are stored exactly as they appear in the model")

	dim, err := repo.Dimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dim)
	assert.Contains(t, progress.String(), "Import complete")
}

func TestImporter_Errors(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewImporter(repo, testConfig(), &bytes.Buffer{}).Run(ctx, filepath.Join(t.TempDir(), "nope.bin"))
		assert.Error(t, err)
	})

	t.Run("malformed model", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.txt")
		require.NoError(t, os.WriteFile(path, []byte("a 1 2\nb 1\n"), 0644))
		_, err := NewImporter(repo, testConfig(), &bytes.Buffer{}).Run(ctx, path)
		assert.Error(t, err)
	})
}

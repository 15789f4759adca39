package vector

import (
	"testing"

	"github.com/poiesic/rensou/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex(0)
	entries := []struct {
		word string
		vec  []float32
	}{
		{"犬", []float32{1, 0, 0}},
		{"猫", []float32{0.9, 0.1, 0}},
		{"狼", []float32{0.8, 0.3, 0}},
		{"車", []float32{0, 1, 0}},
		{"反", []float32{-1, 0, 0}},
	}
	for _, e := range entries {
		added, err := idx.Add(e.word, e.vec)
		require.NoError(t, err)
		require.True(t, added)
	}
	return idx
}

func TestIndex_Add(t *testing.T) {
	idx := NewIndex(0)

	added, err := idx.Add("a", []float32{3, 4})
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 2, idx.Dimension())
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, idx.row(0), 1e-6)

	t.Run("duplicate keeps first", func(t *testing.T) {
		added, err := idx.Add("a", []float32{1, 0})
		require.NoError(t, err)
		assert.False(t, added)
		assert.Equal(t, 1, idx.Len())
		assert.InDeltaSlice(t, []float32{0.6, 0.8}, idx.row(0), 1e-6)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := idx.Add("b", []float32{1, 0, 0})
		assert.Error(t, err)
	})

	t.Run("empty word", func(t *testing.T) {
		_, err := idx.Add("", []float32{1, 0})
		assert.Error(t, err)
	})

	t.Run("caller slice is not modified", func(t *testing.T) {
		vec := []float32{0, 2}
		_, err := idx.Add("c", vec)
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 2}, vec)
	})
}

func TestIndex_Nearest(t *testing.T) {
	idx := buildIndex(t)

	t.Run("descending order without the query word", func(t *testing.T) {
		got, err := idx.Nearest("犬", 3)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "猫", got[0].Word)
		assert.Equal(t, "狼", got[1].Word)
		assert.Equal(t, "車", got[2].Word)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
		}
		for _, c := range got {
			assert.NotEqual(t, "犬", c.Word)
		}
	})

	t.Run("scores are clamped into the unit interval", func(t *testing.T) {
		got, err := idx.Nearest("犬", 10)
		require.NoError(t, err)
		require.Len(t, got, 4, "everything except the query word")

		last := got[len(got)-1]
		assert.Equal(t, "反", last.Word)
		assert.Equal(t, float32(0), last.Score)
		for _, c := range got {
			assert.GreaterOrEqual(t, c.Score, float32(0))
			assert.LessOrEqual(t, c.Score, float32(1))
		}
	})

	t.Run("unknown word", func(t *testing.T) {
		_, err := idx.Nearest("missing", 3)
		assert.ErrorIs(t, err, oracle.ErrUnknownWord)
	})

	t.Run("single word vocabulary", func(t *testing.T) {
		solo := NewIndex(0)
		_, err := solo.Add("only", []float32{1})
		require.NoError(t, err)

		got, err := solo.Nearest("only", 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestIndex_NearestTiesKeepInsertionOrder(t *testing.T) {
	idx := NewIndex(0)
	for _, w := range []string{"q", "a", "b", "c", "d"} {
		_, err := idx.Add(w, []float32{1, 1})
		require.NoError(t, err)
	}

	got, err := idx.Nearest("q", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Word)
	assert.Equal(t, "b", got[1].Word)
}

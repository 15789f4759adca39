package storage

import (
	"testing"

	"github.com/poiesic/rensou/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("犬")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalWordVector(t *testing.T) {
	tests := []struct {
		name   string
		vector *core.WordVector
	}{
		{
			name: "ascii word",
			vector: &core.WordVector{
				Id:     core.IDFromContent("dog"),
				Word:   "dog",
				Vector: []float32{0.1, -0.2, 0.3},
			},
		},
		{
			name: "multibyte word",
			vector: &core.WordVector{
				Id:     core.IDFromContent("[犬]"),
				Word:   "[犬]",
				Vector: []float32{1, 0, 0, 0},
			},
		},
		{
			name: "empty vector",
			vector: &core.WordVector{
				Id:     core.ID(7),
				Word:   "empty",
				Vector: []float32{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalWordVector(tt.vector)
			assert.Len(t, data, WordVectorMUS.Size(*tt.vector))

			decoded, err := UnmarshalWordVector(data)
			require.NoError(t, err)
			assert.Equal(t, tt.vector.Id, decoded.Id)
			assert.Equal(t, tt.vector.Word, decoded.Word)
			assert.Equal(t, tt.vector.Vector, decoded.Vector)
		})
	}
}

func TestUnmarshalWordVector_Truncated(t *testing.T) {
	data := MarshalWordVector(&core.WordVector{
		Id:     core.ID(1),
		Word:   "truncated",
		Vector: []float32{0.5, 0.5, 0.5, 0.5},
	})

	_, err := UnmarshalWordVector(data[:len(data)-3])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

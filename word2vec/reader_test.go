package word2vec

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	word   string
	vector []float32
}

func collect(records *[]record) VectorFunc {
	return func(word string, vector []float32) error {
		*records = append(*records, record{word, vector})
		return nil
	}
}

func encodeBinary(records []record) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(records), len(records[0].vector))
	for _, r := range records {
		buf.WriteString(r.word + " ")
		for _, v := range r.vector {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
			buf.Write(b[:])
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, Binary, DetectFormat("/models/entity_vector.model.bin"))
	assert.Equal(t, Binary, DetectFormat("model.BIN"))
	assert.Equal(t, Text, DetectFormat("entity_vector.model.txt"))
	assert.Equal(t, Text, DetectFormat("vectors"))
}

func TestRead_Text(t *testing.T) {
	ctx := context.Background()

	t.Run("with header", func(t *testing.T) {
		input := "3 2\n犬 0.5 0.25\n猫 1 0\n[東京] -1.5 2\n"
		var got []record
		header, err := Read(ctx, strings.NewReader(input), Text, collect(&got))
		require.NoError(t, err)

		assert.Equal(t, Header{Words: 3, Dimension: 2}, header)
		require.Len(t, got, 3)
		assert.Equal(t, "犬", got[0].word)
		assert.Equal(t, []float32{0.5, 0.25}, got[0].vector)
		assert.Equal(t, "[東京]", got[2].word)
		assert.Equal(t, []float32{-1.5, 2}, got[2].vector)
	})

	t.Run("without header", func(t *testing.T) {
		input := "a 1 2 3\nb 4 5 6"
		var got []record
		header, err := Read(ctx, strings.NewReader(input), Text, collect(&got))
		require.NoError(t, err)

		assert.Equal(t, 3, header.Dimension)
		require.Len(t, got, 2)
		assert.Equal(t, []float32{4, 5, 6}, got[1].vector)
	})

	t.Run("crlf and blank lines", func(t *testing.T) {
		input := "1 2\r\n\r\nx 1 2\r\n"
		var got []record
		_, err := Read(ctx, strings.NewReader(input), Text, collect(&got))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "x", got[0].word)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		input := "2 3\na 1 2 3\nb 1 2\n"
		_, err := Read(ctx, strings.NewReader(input), Text, collect(new([]record)))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("bad number", func(t *testing.T) {
		input := "a 1 x\n"
		_, err := Read(ctx, strings.NewReader(input), Text, collect(new([]record)))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestRead_Binary(t *testing.T) {
	records := []record{
		{"犬", []float32{0.1, 0.2, 0.3}},
		{"猫", []float32{-1, 0, 1}},
	}
	data := encodeBinary(records)

	var got []record
	header, err := Read(context.Background(), bytes.NewReader(data), Binary, collect(&got))
	require.NoError(t, err)

	assert.Equal(t, Header{Words: 2, Dimension: 3}, header)
	assert.Equal(t, records, got)
}

func TestRead_BinaryTruncated(t *testing.T) {
	data := encodeBinary([]record{{"a", []float32{1, 2}}})
	_, err := Read(context.Background(), bytes.NewReader(data[:len(data)-4]), Binary, collect(new([]record)))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestRead_CallbackError(t *testing.T) {
	stop := errors.New("stop")
	_, err := Read(context.Background(), strings.NewReader("a 1\nb 2\n"), Text, func(string, []float32) error {
		return stop
	})
	assert.ErrorIs(t, err, stop)
}

func TestRead_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Read(ctx, strings.NewReader("a 1\n"), Text, collect(new([]record)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	records := []record{
		{"海", []float32{1, 0}},
		{"山", []float32{0, 1}},
	}

	t.Run("binary through mmap", func(t *testing.T) {
		path := filepath.Join(dir, "model.bin")
		require.NoError(t, os.WriteFile(path, encodeBinary(records), 0644))

		var got []record
		header, err := ReadFile(context.Background(), path, collect(&got))
		require.NoError(t, err)
		assert.Equal(t, 2, header.Words)
		assert.Equal(t, records, got)
	})

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "model.txt")
		require.NoError(t, os.WriteFile(path, []byte("2 2\n海 1 0\n山 0 1\n"), 0644))

		var got []record
		_, err := ReadFile(context.Background(), path, collect(&got))
		require.NoError(t, err)
		assert.Equal(t, records, got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(context.Background(), filepath.Join(dir, "nope.txt"), collect(new([]record)))
		assert.Error(t, err)
	})
}

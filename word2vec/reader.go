// Package word2vec reads word2vec model files in the text and binary
// formats written by the word2vec C tool and by gensim.
package word2vec

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/exp/mmap"
)

// Format identifies the on-disk layout of a model file.
type Format int

const (
	// Text is one "word v1 v2 ... vN" record per line.
	Text Format = iota
	// Binary is "word " followed by N little-endian float32 values.
	Binary
)

func (f Format) String() string {
	if f == Binary {
		return "binary"
	}
	return "text"
}

// Header is the "<words> <dimension>" line that opens a model file.
type Header struct {
	Words     int
	Dimension int
}

// VectorFunc receives each record. The vector is owned by the callee.
type VectorFunc func(word string, vector []float32) error

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		return Binary
	}
	return Text
}

// ReadFile reads every record of the model at path. Binary files are read
// through a memory mapping.
func ReadFile(ctx context.Context, path string, fn VectorFunc) (Header, error) {
	format := DetectFormat(path)

	if format == Binary {
		m, err := mmap.Open(path)
		if err != nil {
			return Header{}, fmt.Errorf("mmap file: %w", err)
		}
		defer m.Close()
		return Read(ctx, io.NewSectionReader(m, 0, int64(m.Len())), Binary, fn)
	}

	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Read(ctx, f, Text, fn)
}

// Read parses a model from r.
func Read(ctx context.Context, r io.Reader, format Format, fn VectorFunc) (Header, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	if format == Binary {
		return readBinary(ctx, br, fn)
	}
	return readText(ctx, br, fn)
}

func parseHeader(line string) (Header, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Header{}, false
	}
	words, err1 := strconv.Atoi(fields[0])
	dim, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || words < 0 || dim <= 0 {
		return Header{}, false
	}
	return Header{Words: words, Dimension: dim}, true
}

func readText(ctx context.Context, br *bufio.Reader, fn VectorFunc) (Header, error) {
	var header Header
	first := true
	lineNo := 0

	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return header, err
		}
		lineNo++
		trimmed := strings.TrimRightFunc(line, unicode.IsSpace)

		if first {
			first = false
			if h, ok := parseHeader(trimmed); ok {
				header = h
				if err == io.EOF {
					return header, nil
				}
				continue
			}
		}

		if trimmed != "" {
			if cerr := ctx.Err(); cerr != nil {
				return header, cerr
			}
			fields := strings.Fields(trimmed)
			if len(fields) < 2 {
				return header, fmt.Errorf("%w: line %d", ErrMalformed, lineNo)
			}
			if header.Dimension == 0 {
				header.Dimension = len(fields) - 1
			}
			if len(fields)-1 != header.Dimension {
				return header, fmt.Errorf("%w: line %d has %d values, expected %d", ErrMalformed, lineNo, len(fields)-1, header.Dimension)
			}

			vector := make([]float32, header.Dimension)
			for i, s := range fields[1:] {
				v, perr := strconv.ParseFloat(s, 32)
				if perr != nil {
					return header, fmt.Errorf("%w: line %d: %w", ErrMalformed, lineNo, perr)
				}
				vector[i] = float32(v)
			}
			if ferr := fn(fields[0], vector); ferr != nil {
				return header, ferr
			}
		}

		if err == io.EOF {
			return header, nil
		}
	}
}

func readBinary(ctx context.Context, br *bufio.Reader, fn VectorFunc) (Header, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return Header{}, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	header, ok := parseHeader(line)
	if !ok {
		return Header{}, fmt.Errorf("%w: bad header %q", ErrMalformed, strings.TrimSpace(line))
	}

	buf := make([]byte, 4*header.Dimension)
	for n := 0; n < header.Words; n++ {
		if err := ctx.Err(); err != nil {
			return header, err
		}

		word, err := br.ReadString(' ')
		if err != nil {
			return header, fmt.Errorf("%w: record %d: %w", ErrMalformed, n, err)
		}
		word = strings.TrimLeft(strings.TrimSuffix(word, " "), "\n")

		if _, err := io.ReadFull(br, buf); err != nil {
			return header, fmt.Errorf("%w: record %d: %w", ErrMalformed, n, err)
		}
		vector := make([]float32, header.Dimension)
		for i := range vector {
			vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}
		if err := fn(word, vector); err != nil {
			return header, err
		}
	}
	return header, nil
}

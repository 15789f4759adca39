package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/oracle"
)

// Index is an in-memory brute-force cosine index over L2-normalized word
// vectors. It is built with Add and is read-only once handed to an Oracle.
type Index struct {
	dimension int
	words     []string
	lookup    map[string]int
	data      []float32
}

// NewIndex returns an empty index. A dimension of 0 is taken from the
// first vector added.
func NewIndex(dimension int) *Index {
	return &Index{
		dimension: dimension,
		lookup:    make(map[string]int),
	}
}

// Add inserts a copy of vec, normalized. A word already present keeps its
// first vector and Add reports false.
func (idx *Index) Add(word string, vec []float32) (bool, error) {
	if word == "" {
		return false, fmt.Errorf("vector: empty word")
	}
	if idx.dimension == 0 {
		idx.dimension = len(vec)
	}
	if len(vec) != idx.dimension || len(vec) == 0 {
		return false, fmt.Errorf("vector: dimension mismatch for %q: got %d want %d", word, len(vec), idx.dimension)
	}
	if _, exists := idx.lookup[word]; exists {
		return false, nil
	}

	start := len(idx.data)
	idx.data = append(idx.data, vec...)
	normalize(idx.data[start:])

	idx.lookup[word] = len(idx.words)
	idx.words = append(idx.words, word)
	return true, nil
}

// Dimension returns the vector dimensionality.
func (idx *Index) Dimension() int { return idx.dimension }

// Len reports the number of stored words.
func (idx *Index) Len() int { return len(idx.words) }

// Contains reports whether word is indexed.
func (idx *Index) Contains(word string) bool {
	_, ok := idx.lookup[word]
	return ok
}

func (idx *Index) row(i int) []float32 {
	return idx.data[i*idx.dimension : (i+1)*idx.dimension]
}

// Nearest returns the topK words most similar to word, excluding word
// itself, by descending cosine similarity. Ties keep insertion order.
// Scores are clamped into [0, 1].
func (idx *Index) Nearest(word string, topK int) ([]core.Candidate, error) {
	pos, ok := idx.lookup[word]
	if !ok {
		return nil, fmt.Errorf("%w: %q", oracle.ErrUnknownWord, word)
	}
	if topK > idx.Len()-1 {
		topK = idx.Len() - 1
	}
	if topK <= 0 {
		return []core.Candidate{}, nil
	}

	type candidate struct {
		idx  int
		dist float32
	}
	best := make([]candidate, 0, topK)
	minDist := float32(0)
	minIdx := -1

	updateMin := func() {
		minIdx = 0
		minDist = best[0].dist
		for i := 1; i < len(best); i++ {
			// Later insertions lose ties, so evict the latest of equal minima
			if best[i].dist < minDist || (best[i].dist == minDist && best[i].idx > best[minIdx].idx) {
				minDist = best[i].dist
				minIdx = i
			}
		}
	}

	query := idx.row(pos)
	for i := 0; i < idx.Len(); i++ {
		if i == pos {
			continue
		}
		dist := dot(idx.row(i), query)
		if len(best) < topK {
			best = append(best, candidate{idx: i, dist: dist})
			if len(best) == topK {
				updateMin()
			}
			continue
		}
		if dist <= minDist {
			continue
		}
		best[minIdx] = candidate{idx: i, dist: dist}
		updateMin()
	}

	sort.Slice(best, func(i, j int) bool {
		if best[i].dist == best[j].dist {
			return best[i].idx < best[j].idx
		}
		return best[i].dist > best[j].dist
	})

	results := make([]core.Candidate, len(best))
	for i, c := range best {
		results[i] = core.Candidate{Word: idx.words[c.idx], Score: clamp(c.dist)}
	}
	return results, nil
}

func dot(a, b []float32) float32 {
	sum := float32(0)
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}

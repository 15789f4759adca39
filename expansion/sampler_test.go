package expansion

import (
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/rensou/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePool(n int) []core.AssociationResult {
	pool := make([]core.AssociationResult, n)
	for i := range pool {
		pool[i] = core.AssociationResult{Word: fmt.Sprintf("w%d", i), Similarity: 0.9}
	}
	return pool
}

func TestRandomSampler(t *testing.T) {
	pool := makePool(10)
	before := append([]core.AssociationResult(nil), pool...)

	got := RandomSampler{}.Sample(pool, 3)
	require.Len(t, got, 3)
	assert.Equal(t, before, pool, "pool must not be modified")

	seen := map[string]bool{}
	for _, r := range got {
		assert.Contains(t, pool, r)
		assert.False(t, seen[r.Word], "no duplicates")
		seen[r.Word] = true
	}
}

func TestRandomSampler_AllWhenPoolIsSmall(t *testing.T) {
	pool := makePool(2)
	assert.Equal(t, pool, RandomSampler{}.Sample(pool, 5))
}

func TestRandomSampler_Uniformish(t *testing.T) {
	pool := makePool(10)
	hits := map[string]int{}
	for i := 0; i < 2000; i++ {
		for _, r := range (RandomSampler{}).Sample(pool, 3) {
			hits[r.Word]++
		}
	}
	// Each word is expected 600 times; every word must show up regularly
	require.Len(t, hits, 10)
	for word, n := range hits {
		assert.Greater(t, n, 400, word)
		assert.Less(t, n, 800, word)
	}
}

func TestRandomSampler_Concurrent(t *testing.T) {
	pool := makePool(20)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Len(t, RandomSampler{}.Sample(pool, 3), 3)
			}
		}()
	}
	wg.Wait()
}

func TestFirstSampler(t *testing.T) {
	pool := makePool(5)
	assert.Equal(t, pool[:3], FirstSampler{}.Sample(pool, 3))
	assert.Equal(t, pool, FirstSampler{}.Sample(pool, 9))
}

func TestSamplerFunc(t *testing.T) {
	called := false
	s := SamplerFunc(func(pool []core.AssociationResult, n int) []core.AssociationResult {
		called = true
		return pool[len(pool)-n:]
	})
	got := s.Sample(makePool(4), 1)
	assert.True(t, called)
	assert.Equal(t, "w3", got[0].Word)
}

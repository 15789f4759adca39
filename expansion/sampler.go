package expansion

import (
	"math/rand/v2"

	"github.com/poiesic/rensou/core"
)

// Sampler draws n items from pool without replacement. Implementations
// must be safe for concurrent use and must not modify pool.
type Sampler interface {
	Sample(pool []core.AssociationResult, n int) []core.AssociationResult
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(pool []core.AssociationResult, n int) []core.AssociationResult

// Sample calls f.
func (f SamplerFunc) Sample(pool []core.AssociationResult, n int) []core.AssociationResult {
	return f(pool, n)
}

// RandomSampler draws a uniform sample in random order using the runtime's
// randomly seeded generator.
type RandomSampler struct{}

// Sample returns n distinct elements of pool, or all of them when n >= len(pool).
func (RandomSampler) Sample(pool []core.AssociationResult, n int) []core.AssociationResult {
	out := make([]core.AssociationResult, len(pool))
	copy(out, pool)
	if n >= len(out) {
		return out
	}
	// Partial Fisher-Yates
	for i := 0; i < n; i++ {
		j := i + rand.IntN(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out[:n]
}

// FirstSampler keeps the first n elements. Useful for reproducible output.
type FirstSampler struct{}

// Sample returns a copy of pool[:n].
func (FirstSampler) Sample(pool []core.AssociationResult, n int) []core.AssociationResult {
	n = min(n, len(pool))
	out := make([]core.AssociationResult, n)
	copy(out, pool[:n])
	return out
}

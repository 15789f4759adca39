package expansion

// Fan-out protocol. Callers observe these through result sizes, so they are
// not configurable.
const (
	// SeedFanOut is how many words generation 2 draws from the seed.
	SeedFanOut = 6

	// BranchFanOut is how many words each later parent contributes.
	BranchFanOut = 3

	// OverFetchFactor multiplies the wanted count when querying the oracle,
	// leaving room for threshold filtering and sampling.
	OverFetchFactor = 4

	// FirstGeneration is the number of the first emitted generation.
	FirstGeneration = 2
)

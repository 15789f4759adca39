package expansion

import "errors"

var (
	// ErrOracleRequired is returned by New without an oracle.
	ErrOracleRequired = errors.New("oracle is required")

	// ErrSamplerRequired is returned when WithSampler is given nil.
	ErrSamplerRequired = errors.New("sampler is required")

	// ErrEngineReleased is returned by Expand after Release.
	ErrEngineReleased = errors.New("engine released")
)

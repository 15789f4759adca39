package dictionary

import (
	"fmt"
	"math"
	"strings"
)

// Profile synthesizes a similarity score from a word's position in an
// association list.
type Profile string

const (
	// Light scores position i as 0.9 - 0.1i.
	Light Profile = "light"
	// Medium scores position i as 0.95 - 0.05i.
	Medium Profile = "medium"
	// Large scores position i as 0.95 * 0.85^i.
	Large Profile = "large"
)

// ParseProfile maps a name to a Profile.
func ParseProfile(name string) (Profile, error) {
	switch p := Profile(strings.ToLower(strings.TrimSpace(name))); p {
	case Light, Medium, Large:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

// Score returns the score at position i, never below 0.
func (p Profile) Score(i int) float32 {
	var s float64
	switch p {
	case Medium:
		s = 0.95 - 0.05*float64(i)
	case Large:
		s = 0.95 * math.Pow(0.85, float64(i))
	default:
		s = 0.9 - 0.1*float64(i)
	}
	if s < 0 {
		return 0
	}
	return float32(s)
}

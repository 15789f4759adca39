// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"math"
)

const (
	// MinDepth is the smallest depth an expansion accepts.
	MinDepth = 2

	// DefaultThreshold is the similarity floor used when the caller gives none.
	DefaultThreshold = 0.5
)

// ValidateExpansion validates the parameters of an expansion request.
//
// Validation rules:
//   - keyword must not be empty
//   - depth must be >= MinDepth
//   - threshold must be within [0, 1]
//
// NOT validated (needs the oracle):
//   - keyword membership in the vocabulary
func ValidateExpansion(keyword string, depth int, threshold float64) error {
	if keyword == "" {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, ErrKeywordRequired)
	}
	if err := ValidateDepth(depth); err != nil {
		return err
	}
	return ValidateThreshold(threshold)
}

// ValidateDepth checks that depth is at least MinDepth.
func ValidateDepth(depth int) error {
	if depth < MinDepth {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidParameter, ErrInvalidDepth, depth)
	}
	return nil
}

// ValidateThreshold checks that threshold lies within [0, 1].
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %w (got %v)", ErrInvalidParameter, ErrInvalidThreshold, threshold)
	}
	return nil
}

// ValidateCount checks that a retrieval count is at least 1.
func ValidateCount(count int) error {
	if count < 1 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidParameter, ErrInvalidCount, count)
	}
	return nil
}

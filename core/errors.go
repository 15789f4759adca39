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

import "errors"

// Domain errors
var (
	// ErrOracleUnavailable indicates the oracle never initialized or failed to
	// initialize. No expansion work is attempted while it is reported.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrKeywordNotFound indicates the seed keyword is absent from the oracle vocabulary.
	ErrKeywordNotFound = errors.New("keyword not found")

	// ErrInvalidParameter indicates a depth or threshold outside the accepted range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrKeywordRequired indicates the keyword is empty.
	ErrKeywordRequired = errors.New("keyword required")

	// ErrInvalidDepth indicates the requested depth is below MinDepth.
	ErrInvalidDepth = errors.New("depth must be at least 2")

	// ErrInvalidThreshold indicates the threshold is outside [0, 1].
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

	// ErrInvalidCount indicates a retrieval count below 1.
	ErrInvalidCount = errors.New("count must be at least 1")
)

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

// Package oracle defines the word similarity capability the expansion
// engine queries.
//
// Backends live in sub-packages:
//
//   - oracle/vector: brute-force cosine search over word vectors
//   - oracle/embedding: vector oracle over a vocabulary embedded through
//     an ai.Embedder
//   - oracle/dictionary: canned association lists with synthesized scores
//   - oracle/mock: test double
package oracle

import (
	"context"

	"github.com/poiesic/rensou/core"
)

// Oracle answers nearest-neighbour questions about words.
// After a successful Initialize, all read methods are safe for concurrent use.
type Oracle interface {
	// Initialize loads the model. It must succeed before any query.
	// Calling it again after success is a no-op.
	Initialize(ctx context.Context) error

	// Ready reports whether Initialize has succeeded and Close has not
	// been called since.
	Ready() bool

	// Contains reports whether word is in the vocabulary. It returns
	// false before initialization.
	Contains(word string) bool

	// Nearest returns up to count candidates most similar to word, ordered
	// by descending score. Returns ErrUnknownWord for out-of-vocabulary
	// words and ErrNotInitialized before initialization.
	Nearest(ctx context.Context, word string, count int) ([]core.Candidate, error)

	// Info describes the loaded model. Zero before initialization.
	Info() core.ModelInfo

	// Close releases the model.
	Close() error
}

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

// Package expansion grows a word-association tree from a seed word.
//
// # Retrieval
//
// A single branch is produced by Engine.Retrieve: the oracle is asked for
// OverFetchFactor times the wanted count, bracket characters are stripped
// from the returned words, candidates scoring below the threshold are
// dropped, and when more than count survive a uniform random sample of
// exactly count is drawn. Sampling gives repeated requests for the same
// word different, but always relevant, neighbours.
//
// # Generations
//
// Engine.Expand numbers generations from 2; the seed itself is generation 1
// and is never emitted. Generation 2 asks for SeedFanOut words from the seed
// and always yields exactly one node, possibly empty. Every later generation
// asks for BranchFanOut words from each word of the previous generation's
// results, in the order they were produced and without removing duplicates.
// Only non-empty branches become nodes and feed the next frontier, and
// expansion stops early once a frontier is empty.
//
//	seed ─┬─ w1 ─┬─ x1
//	      │      ├─ x2
//	      │      └─ x3
//	      ├─ w2 ─── ...
//	      └─ ...
//
// Branches of one generation are retrieved concurrently on a worker pool and
// reassembled in frontier order, so output order never depends on scheduling.
//
// # Monitoring
//
// A Monitor observes an expansion without affecting it. The default does
// nothing.
package expansion

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

// Package ai provides the text embedding abstraction used to build
// vocabularies for the association engine.
//
// The package defines the Embedder interface and its configuration. Two
// implementation sub-packages exist:
//
//   - ai/openai: langchaingo client for OpenAI-compatible APIs, guarded by
//     a circuit breaker
//   - ai/mock: test double with deterministic vectors
//
// Public constructors in ai/openai return the ai.Embedder interface. The
// mock constructor returns the concrete type so tests can inject behavior
// and inspect call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("embeddinggemma"))
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vectors, err := embedder.EmbedTexts(ctx, []string{"犬", "猫"})
package ai

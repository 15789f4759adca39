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


// Package storage provides the storage abstraction layer for rensou.
//
// The only persisted data is the vocabulary of word vectors used by the
// dense-vector oracle. Association results are never stored.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the
// storage.VectorRepository interface so callers do not couple to BadgerDB:
//
//	repo, backend, err := badger.NewMemoryRepository()
//
// # Serialization
//
// Records are encoded with MUS (github.com/mus-format/mus-go). A WordVector is
// written as a varint ID, a length-prefixed word, a varint element count and
// the raw little-endian float32 elements.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/vectors", false)
//	repo, err := badger.NewVectorRepository(backend)
//	err = repo.PutVectors(ctx, &core.WordVector{Word: "犬", Vector: vec})
package storage

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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/rensou/core"
)

// float32Size is the fixed encoded size of raw.Float32.
const float32Size = 4

// wordVectorMUS is the MUS serializer for core.WordVector.
// Layout: varint id, ord string word, varint length, raw float32 elements.
type wordVectorMUS struct{}

// WordVectorMUS serializes core.WordVector values.
var WordVectorMUS = wordVectorMUS{}

func (wordVectorMUS) Marshal(v core.WordVector, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.Word, bs[n:])
	n += varint.PositiveInt.Marshal(len(v.Vector), bs[n:])
	for _, f := range v.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (wordVectorMUS) Unmarshal(bs []byte) (v core.WordVector, n int, err error) {
	id, n1, err := varint.Uint64.Unmarshal(bs)
	n += n1
	if err != nil {
		return
	}
	v.Id = core.ID(id)

	v.Word, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	length, n1, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length < 0 || length*float32Size > len(bs)-n {
		err = ErrTruncatedData
		return
	}

	v.Vector = make([]float32, length)
	for i := range v.Vector {
		v.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (wordVectorMUS) Size(v core.WordVector) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.Word)
	size += varint.PositiveInt.Size(len(v.Vector))
	for _, f := range v.Vector {
		size += raw.Float32.Size(f)
	}
	return size
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(id), err
}

// MarshalWordVector serializes a WordVector to bytes.
func MarshalWordVector(v *core.WordVector) []byte {
	buf := make([]byte, WordVectorMUS.Size(*v))
	WordVectorMUS.Marshal(*v, buf)
	return buf
}

// UnmarshalWordVector deserializes a WordVector from bytes.
func UnmarshalWordVector(data []byte) (*core.WordVector, error) {
	v, _, err := WordVectorMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &v, nil
}

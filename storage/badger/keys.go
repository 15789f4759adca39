package badger

import (
	"encoding/binary"

	"github.com/poiesic/rensou/core"
)

// Key prefixes for different data types
const (
	wordVectorPrefix = "wvec"
	metaDimensionKey = "meta:dim"
)

// makeWordVectorKey generates a key for a word vector by ID.
// Format: prefix:id (big endian so keys sort by ID)
func makeWordVectorKey(id core.ID) []byte {
	prefix := wordVectorPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// wordVectorKeyPrefix returns the iteration prefix for all word vectors.
func wordVectorKeyPrefix() []byte {
	return []byte(wordVectorPrefix + ":")
}

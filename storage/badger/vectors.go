package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend *Backend
	writeMu sync.Mutex
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (*VectorRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &VectorRepository{
		backend: backend,
	}, nil
}

// Close releases resources. VectorRepository has no resources to release;
// the backend is closed by its owner.
func (r *VectorRepository) Close() error {
	return nil
}

// PutVectors stores one or more word vectors using a write batch.
func (r *VectorRepository) PutVectors(ctx context.Context, vectors ...*core.WordVector) error {
	if len(vectors) == 0 {
		return nil
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	dim, err := r.Dimension(ctx)
	if err != nil {
		return err
	}

	// Validate the whole batch before writing anything
	for _, v := range vectors {
		if v.Word == "" {
			return storage.ErrEmptyWord
		}
		if dim == 0 {
			dim = len(v.Vector)
		}
		if len(v.Vector) != dim {
			return fmt.Errorf("%w: %q has %d, expected %d", storage.ErrDimensionMismatch, v.Word, len(v.Vector), dim)
		}
	}

	wb := r.backend.NewWriteBatch()
	defer wb.Cancel()

	for _, v := range vectors {
		if err := ctx.Err(); err != nil {
			return err
		}
		if v.Id == 0 {
			v.Id = core.IDFromContent(v.Word)
		}
		if err := wb.Set(makeWordVectorKey(v.Id), storage.MarshalWordVector(v)); err != nil {
			return err
		}
	}

	dimBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(dimBytes, uint32(dim))
	if err := wb.Set([]byte(metaDimensionKey), dimBytes); err != nil {
		return err
	}

	return wb.Flush()
}

// GetVector retrieves the vector stored for word.
func (r *VectorRepository) GetVector(ctx context.Context, word string) (*core.WordVector, error) {
	var result *core.WordVector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readWordVector(tx, makeWordVectorKey(core.IDFromContent(word)))
		if err != nil {
			return err
		}
		// Guard against hash collisions
		if result == nil || result.Word != word {
			result = nil
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ForEach calls fn for every stored vector.
func (r *VectorRepository) ForEach(ctx context.Context, fn func(*core.WordVector) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = wordVectorKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var vector *core.WordVector
			err := iter.Item().Value(func(val []byte) error {
				var err error
				vector, err = storage.UnmarshalWordVector(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(vector); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Count returns the number of stored vectors.
func (r *VectorRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = wordVectorKeyPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return ctx.Err()
	}, false)
	return count, err
}

// Dimension returns the shared vector dimension, or 0 if nothing is stored.
func (r *VectorRepository) Dimension(ctx context.Context) (int, error) {
	dim := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(metaDimensionKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 4 {
				return storage.ErrTruncatedData
			}
			dim = int(binary.BigEndian.Uint32(val))
			return nil
		})
	}, false)
	return dim, err
}

// readWordVector reads a word vector from the transaction.
// Returns nil, nil if the key does not exist.
func readWordVector(tx *badger.Txn, key []byte) (*core.WordVector, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var vector *core.WordVector
	err = item.Value(func(val []byte) error {
		var err error
		vector, err = storage.UnmarshalWordVector(val)
		return err
	})
	return vector, err
}

package cartstore

import (
	"context"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
)

const cartBucket = "carts"

// BoltMirror keeps cart blobs in an embedded BoltDB file. All data lives in
// a single local file, so reads and writes are blocking-fast and need no
// external database process.
type BoltMirror struct {
	db *bolt.DB
}

// NewBoltMirror opens (or creates) the database at path and ensures the
// carts bucket exists.
func NewBoltMirror(path string) (*BoltMirror, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cartBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cart bucket: %w", err)
	}

	return &BoltMirror{db: db}, nil
}

// Close releases the database file lock.
func (m *BoltMirror) Close() error {
	return m.db.Close()
}

func (m *BoltMirror) Get(_ context.Context, key string) ([]byte, error) {
	var data []byte
	err := m.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(cartBucket)).Get([]byte(key))
		if v == nil {
			return ErrMirrorNotFound
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (m *BoltMirror) Set(_ context.Context, key string, data []byte) error {
	err := m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(cartBucket)).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("bolt put failed: %w", err)
	}
	return nil
}

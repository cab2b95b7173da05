// Package cache stores captured disassembler output so unchanged binaries
// are not disassembled twice.
package cache

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketDumps = []byte("dumps")
	bucketMeta  = []byte("meta")
)

// FileName is the database file created inside the data directory.
const FileName = "cache.db"

// Meta describes a cached dump.
type Meta struct {
	File    string    `json:"file"`
	Created time.Time `json:"created"`
	Size    int       `json:"size"` // uncompressed bytes
}

// Store is a bbolt-backed dump cache.
type Store struct {
	db *bbolt.DB
}

// Key builds the lookup key for a binary digest and a tool invocation key.
func Key(digest, tool string) []byte {
	return []byte(digest + "\x00" + tool)
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDumps, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached output for key.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	var compressed []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketDumps).Get(key); v != nil {
			// v is only valid inside the transaction.
			compressed = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if compressed == nil {
		return nil, false, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, false, fmt.Errorf("decompress cached dump: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, false, fmt.Errorf("decompress cached dump: %w", err)
	}
	return data, true, nil
}

// Put stores data under key, replacing any previous entry.
func (s *Store) Put(key, data []byte, meta Meta) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("compress dump: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress dump: %w", err)
	}

	meta.Size = len(data)
	if meta.Created.IsZero() {
		meta.Created = time.Now()
	}
	mj, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketDumps).Put(key, buf.Bytes()); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(key, mj)
	})
}

// Meta returns the metadata stored for key.
func (s *Store) Meta(key []byte) (Meta, bool, error) {
	var m Meta
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(key)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &m)
	})
	return m, found, err
}

// Len reports the number of cached dumps.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketDumps).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear removes every cached dump.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDumps, bucketMeta} {
			if err := tx.DeleteBucket(b); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return err
			}
		}
		return nil
	})
}

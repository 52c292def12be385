package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var reasonsBucket = []byte("reasons")

// BoltStore implements Store on an embedded bbolt database file.
//
// Reads run in read-only transactions and never wait on writers. Each Put is
// its own read-write transaction; bbolt allows one writer at a time, so the
// critical section is a single key's write and fsync.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(reasonsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating reasons bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// boltKey encodes a user id as its decimal string.
func boltKey(userID uint64) []byte {
	return strconv.AppendUint(nil, userID, 10)
}

func (s *BoltStore) Put(_ context.Context, userID uint64, reason string) error {
	key := boltKey(userID)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(reasonsBucket).Put(key, []byte(reason))
	})
	if err != nil {
		return fmt.Errorf("%w: put %d: %w", ErrStoreIO, userID, err)
	}
	return nil
}

func (s *BoltStore) Get(_ context.Context, userID uint64) (ReasonRecord, bool, error) {
	key := boltKey(userID)

	var (
		rec   ReasonRecord
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		// Seek rather than Get so an empty reason is not mistaken for absence.
		k, v := tx.Bucket(reasonsBucket).Cursor().Seek(key)
		if !bytes.Equal(k, key) {
			return nil
		}
		rec = ReasonRecord{UserID: userID, Reason: string(v)}
		found = true
		return nil
	})
	if err != nil {
		return ReasonRecord{}, false, fmt.Errorf("%w: get %d: %w", ErrStoreIO, userID, err)
	}

	return rec, found, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

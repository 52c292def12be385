package main

import (
	"context"
	"errors"
	"fmt"
)

// ErrStoreIO is wrapped by every error a Store returns for an underlying
// storage failure. Absence of a record is never reported as an error.
var ErrStoreIO = errors.New("store i/o failure")

// ReasonRecord is the reason stored for a single user.
type ReasonRecord struct {
	UserID uint64
	Reason string
}

// Store defines the persistence interface for reasons.
// Implementations must be safe for concurrent use; each Put and Get is atomic.
type Store interface {
	Put(ctx context.Context, userID uint64, reason string) error
	Get(ctx context.Context, userID uint64) (rec ReasonRecord, found bool, err error)
	Close() error
}

// OpenStore opens the backend selected by cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.StoreBackend {
	case "", "bolt":
		store, err := NewBoltStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "dynamodb":
		store, err := NewDynamoStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Package snapshot persists full-state documents to Redis so the application
// survives restarts. Absence of a snapshot is not an error; the caller falls
// back to sample data.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/margindesk/margindesk/internal/transfer"
)

// Store reads and writes the single snapshot document.
type Store struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewStore constructs a snapshot store. ttl of zero keeps snapshots forever.
func NewStore(rdb *redis.Client, key string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, key: key, ttl: ttl}
}

// Save overwrites the stored snapshot.
func (s *Store) Save(ctx context.Context, doc transfer.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("snapshot: marshal document: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", s.key, err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when none exists.
func (s *Store) Load(ctx context.Context) (*transfer.Document, error) {
	payload, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", s.key, err)
	}
	var doc transfer.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", s.key, err)
	}
	return &doc, nil
}

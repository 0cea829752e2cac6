package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/funneldesk/backend/domain"
)

// Store wraps BoltDB to hold status-transition events until they are drained
// into the relational audit table. Keeping the write local means a slow or
// unreachable database never blocks the edit that produced the event.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "transitions"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Append stores one event under a time-ordered key.
func (s *Store) Append(event domain.TransitionEvent) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := buildKey(event)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(key, payload)
	})
}

// Batch returns up to limit events in journal order without removing them.
func (s *Store) Batch(limit int) ([]domain.TransitionEvent, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 100
	}

	var events []domain.TransitionEvent
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(events) < limit; k, v = c.Next() {
			var event domain.TransitionEvent
			if err := json.Unmarshal(v, &event); err != nil {
				continue
			}
			events = append(events, event)
		}
		return nil
	})
	return events, err
}

// Remove deletes the given events, typically after a successful drain.
func (s *Store) Remove(events []domain.TransitionEvent) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		for _, event := range events {
			if err := bucket.Delete(buildKey(event)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Size returns the number of journaled events.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

func buildKey(event domain.TransitionEvent) []byte {
	return []byte(fmt.Sprintf("%020d_%s", event.OccurredAt.UnixNano(), event.ID))
}

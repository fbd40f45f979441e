// Package scancache keeps each user's most recent scan in a small embedded
// store so the result can be re-fetched without re-running extraction.
package scancache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cinelog/ticket-scanner/internal/common"
	"github.com/cinelog/ticket-scanner/internal/ticket"
)

var bucketRecent = []byte("recent_scans")

// Cache is a bbolt-backed user -> latest ScanOutcome map.
type Cache struct {
	db  *bolt.DB
	log *slog.Logger
}

func Open(path string, log *slog.Logger) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open scan cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecent)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init scan cache: %w", err)
	}
	return &Cache{db: db, log: log}, nil
}

// PutRecent overwrites the user's cached scan.
func (c *Cache) PutRecent(userID string, outcome ticket.ScanOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecent).Put([]byte(userID), data)
	})
	if err != nil {
		return fmt.Errorf("put recent scan: %w", err)
	}
	c.log.Debug("cache.recent.put", "user_id", userID, "scan_id", outcome.ID)
	return nil
}

// GetRecent returns the user's most recent scan.
func (c *Cache) GetRecent(userID string) (ticket.ScanOutcome, error) {
	var data []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRecent).Get([]byte(userID))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return ticket.ScanOutcome{}, fmt.Errorf("get recent scan: %w", err)
	}
	if data == nil {
		return ticket.ScanOutcome{}, common.NewAppError("NO_RECENT_SCAN", "no cached scan for user "+userID, common.ErrNotFound)
	}
	var o ticket.ScanOutcome
	if err := json.Unmarshal(data, &o); err != nil {
		return ticket.ScanOutcome{}, fmt.Errorf("decode cached scan: %w", err)
	}
	return o, nil
}

// DeleteRecent drops the user's cached scan.
func (c *Cache) DeleteRecent(userID string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecent).Delete([]byte(userID))
	})
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Package store persists anomaly events in BoltDB. Only flagged samples
// are written; the raw stream stays in memory.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var bAnoms = []byte("anomalies")

type Store struct{ db *bolt.DB }

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bAnoms)
		return e
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Event is one recorded anomaly with the statistics it was judged against.
type Event struct {
	ID        string    `json:"id"`
	When      time.Time `json:"when"`
	Value     float64   `json:"value"`
	Mean      float64   `json:"mean"`
	StdDev    float64   `json:"stdDev"`
	Threshold float64   `json:"threshold"`
}

// NewEvent assigns a fresh ID.
func NewEvent(when time.Time, value, mean, stdDev, threshold float64) Event {
	return Event{
		ID:        uuid.NewString(),
		When:      when,
		Value:     value,
		Mean:      mean,
		StdDev:    stdDev,
		Threshold: threshold,
	}
}

// keyTimeLayout is fixed-width so keys sort chronologically byte-wise.
// RFC3339Nano would not do: it strips trailing zeros, making ".1Z" sort
// after ".15Z".
const keyTimeLayout = "2006-01-02T15:04:05.000000000"

// Put writes the event under a time-ordered key so cursor scans come back
// in chronological order.
func (s *Store) Put(ev Event) error {
	key := []byte(ev.When.UTC().Format(keyTimeLayout) + ":" + ev.ID)
	j, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bAnoms).Put(key, j)
	})
}

// List returns up to limit events, newest first. limit <= 0 means all.
func (s *Store) List(limit int) ([]Event, error) {
	out := []Event{}
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bAnoms).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var ev Event
			if json.Unmarshal(v, &ev) != nil {
				continue
			}
			out = append(out, ev)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// Iterate walks all events oldest-first until fn returns false.
func (s *Store) Iterate(fn func(ev Event) bool) error {
	return s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bAnoms).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var ev Event
			if json.Unmarshal(v, &ev) != nil {
				continue
			}
			if !fn(ev) {
				break
			}
		}
		return nil
	})
}

// Package storage persists room history as one JSON document per room id.
// Documents outlive the in-memory room: terminating a room never deletes
// its document.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dkeye/Parley/internal/domain"
)

// ErrNoDocument is returned by Load when a room has no document yet.
var ErrNoDocument = errors.New("no document")

// Document is the on-disk unit: everything we retain about one room id.
type Document struct {
	RoomID   string           `json:"roomId"`
	Name     string           `json:"name"`
	Messages []domain.Message `json:"messages"`
}

// DocStore is a key-value document store keyed by room id.
type DocStore interface {
	Load(roomID domain.RoomID) (Document, error)
	Save(roomID domain.RoomID, doc Document) error
	Exists(roomID domain.RoomID) (bool, error)
}

var docBucket = []byte("rooms")

// BoltStore keeps all room documents in a single bbolt bucket.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the document store at path.
func OpenBolt(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(docBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init document store: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(roomID domain.RoomID) (Document, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(docBucket).Get([]byte(roomID)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	if raw == nil {
		return Document{}, ErrNoDocument
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", roomID, err)
	}
	return doc, nil
}

func (s *BoltStore) Save(roomID domain.RoomID, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", roomID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(docBucket).Put([]byte(roomID), raw)
	})
}

func (s *BoltStore) Exists(roomID domain.RoomID) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(docBucket).Get([]byte(roomID)) != nil
		return nil
	})
	return ok, err
}

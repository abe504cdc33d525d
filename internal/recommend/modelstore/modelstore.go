// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package modelstore persists trained scoring models in Badger so a
// restart does not lose the learned state between retrains.
package modelstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/avelasq/mesafinder/internal/logging"
	"github.com/avelasq/mesafinder/internal/recommend/scoring"
)

// ErrNoModel is returned by Load when no model has been saved yet.
var ErrNoModel = errors.New("no persisted model")

// ErrCorrupt is returned when the stored payload fails its checksum.
var ErrCorrupt = errors.New("persisted model failed checksum")

var (
	keyModel    = []byte("model/current")
	keyChecksum = []byte("model/current/sha256")
)

// Store is a Badger-backed snapshot store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at dir. An empty dir opens an
// in-memory store, used by tests.
func Open(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a model snapshot with an integrity checksum.
func (s *Store) Save(snap scoring.ModelSnapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keyModel, buf.Bytes()); err != nil {
			return err
		}
		return txn.Set(keyChecksum, sum[:])
	})
	if err != nil {
		return fmt.Errorf("persist model: %w", err)
	}

	logging.Debug().
		Int("version", snap.Version).
		Int("bytes", buf.Len()).
		Msg("model snapshot persisted")
	return nil
}

// Load returns the persisted snapshot, ErrNoModel when none exists, or
// ErrCorrupt when the payload does not match its checksum.
func (s *Store) Load() (scoring.ModelSnapshot, error) {
	var payload, storedSum []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyModel)
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err = txn.Get(keyChecksum)
		if err != nil {
			return err
		}
		storedSum, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return scoring.ModelSnapshot{}, ErrNoModel
	}
	if err != nil {
		return scoring.ModelSnapshot{}, fmt.Errorf("read model: %w", err)
	}

	sum := sha256.Sum256(payload)
	if !bytes.Equal(sum[:], storedSum) {
		return scoring.ModelSnapshot{}, ErrCorrupt
	}

	var snap scoring.ModelSnapshot
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&snap); err != nil {
		return scoring.ModelSnapshot{}, fmt.Errorf("decode model: %w", err)
	}
	return snap, nil
}

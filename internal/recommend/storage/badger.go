// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/models"
)

// Key layout. Segments are NUL separated so item ids may contain any
// printable character.
//
//	edge\x00{tag}\x00meta                        -> badgerMeta (JSON)
//	edge\x00{tag}\x00{version}\x00{item}\x00{other} -> float64 score (8 bytes, big endian)
//
// Every edge is written under both endpoints so a lookup is one prefix scan.
const (
	badgerKeyRoot = "edge"
	keySep        = "\x00"
)

type badgerMeta struct {
	Version uint64 `json:"version"`
	Count   int    `json:"count"`
}

// BadgerOptions configures OpenBadgerStore.
type BadgerOptions struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM; used by tests.
	InMemory bool
}

// BadgerStore is an EdgeStore on BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool

	// writeMu serializes version allocation; readers never take it.
	writeMu sync.Mutex
}

// NewBadgerStore wraps an already-open database. Close does not close db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadgerStore opens (or creates) a database owned by the store.
func OpenBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, errors.New("badger path is required")
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Msg("Badger edge store opened")
	return &BadgerStore{db: db, ownsDB: true}, nil
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func metaKey(algorithm string) []byte {
	return []byte(badgerKeyRoot + keySep + algorithm + keySep + "meta")
}

func versionPrefix(algorithm string, version uint64) []byte {
	return []byte(fmt.Sprintf("%s%s%s%s%016x%s", badgerKeyRoot, keySep, algorithm, keySep, version, keySep))
}

func itemPrefix(algorithm string, version uint64, itemID string) []byte {
	return append(versionPrefix(algorithm, version), []byte(itemID+keySep)...)
}

func encodeScore(v float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func decodeScore(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("corrupt score value of %d bytes", len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func readMeta(txn *badger.Txn, algorithm string) (badgerMeta, bool, error) {
	var meta badgerMeta
	item, err := txn.Get(metaKey(algorithm))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return meta, false, nil
	}
	if err != nil {
		return meta, false, fmt.Errorf("get meta: %w", err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &meta)
	})
	if err != nil {
		return meta, false, fmt.Errorf("decode meta: %w", err)
	}
	return meta, true, nil
}

// ReplaceEdges writes the new set under a fresh version prefix, then flips
// the meta pointer in one transaction. The superseded version is deleted
// afterwards; snapshot readers that started earlier still see it.
//
// The next version number is reused after a failed or interrupted replace,
// so its prefix is cleared before writing. Keys left by a crash between
// the batch flush and the pointer flip never merge into the new set.
func (s *BadgerStore) ReplaceEdges(ctx context.Context, algorithm string, edges []models.SimilarityEdge) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var current badgerMeta
	err := s.db.View(func(txn *badger.Txn) error {
		var verr error
		current, _, verr = readMeta(txn, algorithm)
		return verr
	})
	if err != nil {
		return err
	}
	next := badgerMeta{Version: current.Version + 1, Count: len(edges)}

	if err := s.clearVersion(algorithm, next.Version); err != nil {
		return fmt.Errorf("clear orphaned edge version %d: %w", next.Version, err)
	}
	if err := s.writeVersion(ctx, algorithm, next.Version, edges); err != nil {
		s.dropVersion(algorithm, next.Version)
		return err
	}

	metaVal, err := json.Marshal(next)
	if err != nil {
		s.dropVersion(algorithm, next.Version)
		return fmt.Errorf("encode meta: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(algorithm), metaVal)
	})
	if err != nil {
		s.dropVersion(algorithm, next.Version)
		return fmt.Errorf("swap edge set pointer: %w", err)
	}

	if current.Version > 0 {
		s.dropVersion(algorithm, current.Version)
	}
	return nil
}

func (s *BadgerStore) writeVersion(ctx context.Context, algorithm string, version uint64, edges []models.SimilarityEdge) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, e := range edges {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		e = canonical(e)
		score := encodeScore(e.Score)
		if err := wb.Set(append(itemPrefix(algorithm, version, e.ItemA), e.ItemB...), score); err != nil {
			return fmt.Errorf("write edge: %w", err)
		}
		if err := wb.Set(append(itemPrefix(algorithm, version, e.ItemB), e.ItemA...), score); err != nil {
			return fmt.Errorf("write edge: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush edges: %w", err)
	}
	return nil
}

// dropVersion deletes every key of a version. Failures only leak space, so
// they are logged rather than returned.
func (s *BadgerStore) dropVersion(algorithm string, version uint64) {
	if err := s.clearVersion(algorithm, version); err != nil {
		logging.Warn().Err(err).
			Str("algorithm", algorithm).
			Uint64("version", version).
			Msg("Failed to drop superseded edge version")
	}
}

func (s *BadgerStore) clearVersion(algorithm string, version uint64) error {
	prefix := versionPrefix(algorithm, version)
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil || len(keys) == 0 {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// EdgesForItem implements EdgeStore. The pointer read and the scan share
// one snapshot.
func (s *BadgerStore) EdgesForItem(ctx context.Context, algorithm, itemID string) ([]models.SimilarityEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges := []models.SimilarityEdge{}
	err := s.db.View(func(txn *badger.Txn) error {
		meta, ok, err := readMeta(txn, algorithm)
		if err != nil || !ok {
			return err
		}

		prefix := itemPrefix(algorithm, meta.Version, itemID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			other := string(item.Key()[len(prefix):])
			var score float64
			err := item.Value(func(val []byte) error {
				var derr error
				score, derr = decodeScore(val)
				return derr
			})
			if err != nil {
				return err
			}
			edges = append(edges, canonical(models.SimilarityEdge{
				ItemA:     itemID,
				ItemB:     other,
				Score:     score,
				Algorithm: algorithm,
			}))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read edges for %s: %w", itemID, err)
	}
	return edges, nil
}

// CountEdges implements EdgeStore.
func (s *BadgerStore) CountEdges(ctx context.Context, algorithm string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var meta badgerMeta
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		meta, _, err = readMeta(txn, algorithm)
		return err
	})
	if err != nil {
		return 0, err
	}
	return meta.Count, nil
}

// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/tomtom215/gamescore/internal/logging"
	"github.com/tomtom215/gamescore/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	prefixKey       = "k/"
	prefixHashField = "h/"
	prefixHashMeta  = "hm/"
)

// Config holds BadgerDB settings.
type Config struct {
	// Path is the data directory. Empty selects in-memory mode.
	Path string

	SyncWrites  bool
	Compression bool

	// GCRatio is the discard ratio passed to RunValueLogGC.
	GCRatio float64
}

// BadgerStore implements Store on BadgerDB.
//
// Hash fields live under "h/<hash>/<field>". The hash expiry lives on the
// meta key "hm/<hash>" as a Badger TTL; HSet copies it onto each new field
// so a hash expires as a unit.
type BadgerStore struct {
	db       *badger.DB
	cfg      Config
	closed   atomic.Bool
	inMemory bool
}

// Open opens (or creates) the store.
func Open(cfg Config) (*BadgerStore, error) {
	if cfg.GCRatio <= 0 || cfg.GCRatio >= 1 {
		cfg.GCRatio = 0.5
	}

	opts := badger.DefaultOptions(cfg.Path)
	inMemory := cfg.Path == ""
	if inMemory {
		opts = opts.WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", inMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Durable store opened")

	return &BadgerStore{db: db, cfg: cfg, inMemory: inMemory}, nil
}

func hashFieldKey(hash, field string) []byte {
	return []byte(prefixHashField + hash + "/" + field)
}

func hashPrefix(hash string) []byte {
	return []byte(prefixHashField + hash + "/")
}

func hashMetaKey(hash string) []byte {
	return []byte(prefixHashMeta + hash)
}

func (s *BadgerStore) begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

func record(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.RecordStoreOperation(op, result, time.Since(start))
}

func (s *BadgerStore) read(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the value of key.
func (s *BadgerStore) Get(ctx context.Context, key string) (value []byte, err error) {
	start := time.Now()
	defer func() { record("get", start, err) }()

	if err = s.begin(ctx); err != nil {
		return nil, err
	}
	value, err = s.read([]byte(prefixKey + key))
	if err != nil && !errors.Is(err, ErrNotFound) {
		err = fmt.Errorf("get %s: %w", key, err)
	}
	return value, err
}

// Set writes key with an optional TTL.
func (s *BadgerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (err error) {
	start := time.Now()
	defer func() { record("set", start, err) }()

	if err = s.begin(ctx); err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(prefixKey+key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// HGet returns one field of a hash.
func (s *BadgerStore) HGet(ctx context.Context, hash, field string) (value []byte, err error) {
	start := time.Now()
	defer func() { record("hget", start, err) }()

	if err = s.begin(ctx); err != nil {
		return nil, err
	}
	value, err = s.read(hashFieldKey(hash, field))
	if err != nil && !errors.Is(err, ErrNotFound) {
		err = fmt.Errorf("hget %s.%s: %w", hash, field, err)
	}
	return value, err
}

// HSet writes one field of a hash, inheriting the hash expiry.
func (s *BadgerStore) HSet(ctx context.Context, hash, field string, value []byte) (err error) {
	start := time.Now()
	defer func() { record("hset", start, err) }()

	if err = s.begin(ctx); err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(hashFieldKey(hash, field), value)

		meta, err := txn.Get(hashMetaKey(hash))
		switch {
		case err == nil:
			e.ExpiresAt = meta.ExpiresAt()
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("hset %s.%s: %w", hash, field, err)
	}
	return nil
}

// Expire applies ttl to every field of hash and to fields added later.
// All fields share one absolute expiry. The meta key is written first so
// that concurrent HSet calls already inherit it; existing fields are then
// rewritten through a WriteBatch, which splits a large hash across as many
// transactions as Badger needs.
func (s *BadgerStore) Expire(ctx context.Context, hash string, ttl time.Duration) (err error) {
	start := time.Now()
	defer func() { record("expire", start, err) }()

	if err = s.begin(ctx); err != nil {
		return err
	}

	var expiresAt uint64
	if ttl > 0 {
		expiresAt = uint64(time.Now().Add(ttl).Unix())
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(hashMetaKey(hash), []byte{1})
		e.ExpiresAt = expiresAt
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("expire %s: %w", hash, err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = hashPrefix(hash)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			e := badger.NewEntry(item.KeyCopy(nil), value)
			e.ExpiresAt = expiresAt
			if err := wb.SetEntry(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		err = wb.Flush()
	}
	if err != nil {
		return fmt.Errorf("expire %s: %w", hash, err)
	}
	return nil
}

// HExpiresAt returns when a hash field expires. The zero time means the
// field never expires.
func (s *BadgerStore) HExpiresAt(ctx context.Context, hash, field string) (time.Time, error) {
	if err := s.begin(ctx); err != nil {
		return time.Time{}, err
	}
	var at uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hashFieldKey(hash, field))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		at = item.ExpiresAt()
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	if at == 0 {
		return time.Time{}, nil
	}
	return time.Unix(int64(at), 0), nil
}

// Ping reports whether the store can serve reads.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// RunGC reclaims value log space until Badger reports nothing left to
// rewrite. It is a no-op in memory mode.
func (s *BadgerStore) RunGC(ctx context.Context) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if s.inMemory {
		return nil
	}

	// Run GC until no more cleanup is possible
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.RunValueLogGC(s.cfg.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close flushes and closes the database. Operations after Close return ErrClosed.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Durable store closed")
	return nil
}

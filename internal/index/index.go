// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

// Package index builds and persists the storefront name index: a map from
// normalized game name to storefront app id.
//
// The full catalog is several megabytes, so the index is stored in the
// durable store as one hash of JSON shards (part1, part2, ...) sharing a
// single expiry. A store outage never fails a lookup; the index is rebuilt
// from the storefront instead.
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/gamescore/internal/logging"
	"github.com/tomtom215/gamescore/internal/metrics"
	"github.com/tomtom215/gamescore/internal/normalize"
	"github.com/tomtom215/gamescore/internal/store"
	"github.com/tomtom215/gamescore/internal/upstream"
)

// DefaultChunkSize is the maximum number of names per persisted shard.
const DefaultChunkSize = 15000

// shardPrefix prefixes the hash field of each shard.
const shardPrefix = "part"

// ErrCursorStalled is returned by Build when the catalog cursor stops advancing.
var ErrCursorStalled = errors.New("index: catalog cursor did not advance")

// ErrEmpty is returned by Build when the catalog yields no usable names.
var ErrEmpty = errors.New("index: catalog is empty")

// Lister pages through the storefront catalog.
type Lister interface {
	ListApps(ctx context.Context, lastID int64) (upstream.AppPage, error)
}

// Config holds index settings.
type Config struct {
	// Hash is the durable hash holding the shards.
	Hash string
	// ChunkSize bounds the names per shard.
	ChunkSize int
	// TTL is the shared expiry of the persisted shards.
	TTL time.Duration
}

// Index builds, persists and loads the name index.
type Index struct {
	lister Lister
	store  store.Store
	cfg    Config
	log    zerolog.Logger
}

// New creates an Index. st may be nil, in which case nothing is persisted.
func New(lister Lister, st store.Store, cfg Config) *Index {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Hash == "" {
		cfg.Hash = "applist"
	}
	return &Index{
		lister: lister,
		store:  st,
		cfg:    cfg,
		log:    logging.WithComponent("index"),
	}
}

// Build pages the whole catalog and returns the normalized name index.
// Names rejected by normalize.FilterString are skipped and the first app
// to claim a normalized name keeps it.
func (ix *Index) Build(ctx context.Context) (m map[string]int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordIndexBuild(time.Since(start), len(m), err) }()

	m = make(map[string]int64)
	var lastID int64
	pages := 0

	for {
		page, err := ix.lister.ListApps(ctx, lastID)
		if err != nil {
			return nil, fmt.Errorf("index: list apps after %d: %w", lastID, err)
		}
		pages++

		for _, app := range page.Apps {
			name := normalize.FilterString(app.Name)
			if name == "" {
				continue
			}
			key := normalize.Key(name)
			if key == "" {
				continue
			}
			if _, taken := m[key]; !taken {
				m[key] = app.ID
			}
		}

		if !page.HaveMore {
			break
		}

		next := page.LastID
		if next == 0 && len(page.Apps) > 0 {
			next = page.Apps[len(page.Apps)-1].ID
		}
		if next <= lastID {
			return nil, fmt.Errorf("%w: stuck at %d", ErrCursorStalled, lastID)
		}
		lastID = next
	}

	if len(m) == 0 {
		return nil, ErrEmpty
	}

	ix.log.Info().
		Int("entries", len(m)).
		Int("pages", pages).
		Dur("duration", time.Since(start)).
		Msg("Name index built")
	return m, nil
}

// Split cuts m into shards of at most chunkSize names, in sorted key order.
func Split(m map[string]int64, chunkSize int) []map[string]int64 {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	shards := make([]map[string]int64, 0, ShardCount(len(keys), chunkSize))
	for start := 0; start < len(keys); start += chunkSize {
		end := min(start+chunkSize, len(keys))
		shard := make(map[string]int64, end-start)
		for _, k := range keys[start:end] {
			shard[k] = m[k]
		}
		shards = append(shards, shard)
	}
	return shards
}

// ShardCount returns how many shards Split produces for entries names.
func ShardCount(entries, chunkSize int) int {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return (entries + chunkSize - 1) / chunkSize
}

func shardField(n int) string {
	return shardPrefix + strconv.Itoa(n)
}

// Persist sets the hash expiry and then writes m as shards part1..partK.
// Errors are logged and returned; callers treat them as non-fatal.
// Shards beyond K left by an earlier, larger index remain until the hash expires.
func (ix *Index) Persist(ctx context.Context, m map[string]int64) (int, error) {
	if ix.store == nil {
		return 0, nil
	}

	// Set the expiry first so every shard written below is born with it.
	if err := ix.store.Expire(ctx, ix.cfg.Hash, ix.cfg.TTL); err != nil {
		return 0, ix.persistFailed(fmt.Errorf("index: expire %s: %w", ix.cfg.Hash, err))
	}

	shards := Split(m, ix.cfg.ChunkSize)
	for i, shard := range shards {
		data, err := json.Marshal(shard)
		if err != nil {
			return i, ix.persistFailed(fmt.Errorf("index: encode %s: %w", shardField(i+1), err))
		}
		if err := ix.store.HSet(ctx, ix.cfg.Hash, shardField(i+1), data); err != nil {
			return i, ix.persistFailed(fmt.Errorf("index: write %s: %w", shardField(i+1), err))
		}
	}
	metrics.SetIndexShards(len(shards))
	ix.log.Info().
		Str("hash", ix.cfg.Hash).
		Int("shards", len(shards)).
		Int("entries", len(m)).
		Msg("Name index persisted")
	return len(shards), nil
}

func (ix *Index) persistFailed(err error) error {
	ix.log.Warn().Err(err).Str("hash", ix.cfg.Hash).Msg("Failed to persist name index")
	return err
}

// Load reads part1, part2, ... until a shard is missing and merges them.
// It reports false when no shard exists or the store cannot be read.
func (ix *Index) Load(ctx context.Context) (map[string]int64, bool) {
	if ix.store == nil {
		return nil, false
	}

	m := make(map[string]int64)
	parts := 0
	for n := 1; ; n++ {
		data, err := ix.store.HGet(ctx, ix.cfg.Hash, shardField(n))
		if errors.Is(err, store.ErrNotFound) {
			break
		}
		if err != nil {
			ix.log.Warn().Err(err).Str("field", shardField(n)).Msg("Durable store unavailable, skipping persisted index")
			metrics.RecordIndexLoad("error")
			return nil, false
		}

		var shard map[string]int64
		if err := json.Unmarshal(data, &shard); err != nil {
			ix.log.Warn().Err(err).Str("field", shardField(n)).Msg("Corrupt index shard, ignoring persisted index")
			metrics.RecordIndexLoad("error")
			return nil, false
		}
		for k, v := range shard {
			m[k] = v
		}
		parts++
	}

	if parts == 0 {
		metrics.RecordIndexLoad("miss")
		return nil, false
	}

	metrics.RecordIndexLoad("hit")
	metrics.SetIndexShards(parts)
	ix.log.Debug().Int("shards", parts).Int("entries", len(m)).Msg("Name index loaded")
	return m, true
}

// Get returns the persisted index, or builds and persists a fresh one.
func (ix *Index) Get(ctx context.Context) (map[string]int64, error) {
	if m, ok := ix.Load(ctx); ok {
		return m, nil
	}
	return ix.Rebuild(ctx)
}

// Rebuild builds a fresh index and persists it best-effort.
func (ix *Index) Rebuild(ctx context.Context) (map[string]int64, error) {
	m, err := ix.Build(ctx)
	if err != nil {
		return nil, err
	}
	_, _ = ix.Persist(ctx, m)
	return m, nil
}

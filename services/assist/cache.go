// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package assist

// =============================================================================
// ResponseCache — inference response persistence
// =============================================================================
//
// Hosted inference calls are slow (hundreds of ms to seconds, plus cold-start
// model loading) and the demo scenarios re-run identical prompts constantly.
// The cache persists responses in BadgerDB keyed by a digest of the task,
// model, and prompt, so any change to either automatically misses.
//
// Storage layout:
//
//	assist/resp/v1/{sha256(task|model|prompt)}  →  raw response text
//	                                                TTL: configurable, default 24h

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"

	badgerstore "github.com/AleutianAI/sdlc-assist/services/storage/badger"
)

// responseCacheDefaultTTL keeps entries for a day. Long enough to cover a
// working session; short enough that model upgrades on the hosted side are
// picked up the next morning.
const responseCacheDefaultTTL = 24 * time.Hour

// responseCacheKeyPrefix is versioned to allow future format changes without
// collision.
const responseCacheKeyPrefix = "assist/resp/v1/"

// ResponseCache stores inference responses in BadgerDB.
//
// Description:
//
//	All methods are nil-safe: a nil *ResponseCache (or one over a nil DB)
//	behaves as an always-miss cache, so scenarios never branch on whether
//	caching is configured. Cache failures are logged and swallowed — a
//	broken cache must never fail a request.
//
// Thread Safety: Safe for concurrent use.
type ResponseCache struct {
	db     *badgerstore.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewResponseCache creates a cache over an opened DB. The caller owns the DB
// lifecycle. Pass ttl 0 for the default (24 hours).
func NewResponseCache(db *badgerstore.DB, ttl time.Duration, logger *slog.Logger) *ResponseCache {
	if ttl <= 0 {
		ttl = responseCacheDefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseCache{db: db, ttl: ttl, logger: logger}
}

// Get returns the cached response for (task, model, prompt), and whether it
// was present. Expired entries are misses.
func (c *ResponseCache) Get(ctx context.Context, task, model, prompt string) (string, bool) {
	if c == nil || c.db == nil {
		return "", false
	}
	key := responseCacheKey(task, model, prompt)

	var raw []byte
	err := c.db.WithReadTxn(ctx, func(txn *dgbadger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, dgbadger.ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		c.logger.Warn("Response cache read failed",
			slog.String("task", task),
			slog.String("error", err.Error()),
		)
		return "", false
	}

	c.logger.Debug("Response cache hit", slog.String("task", task))
	return string(raw), true
}

// Put stores a response for (task, model, prompt) with the configured TTL.
// Failures are logged, never returned.
func (c *ResponseCache) Put(ctx context.Context, task, model, prompt, response string) {
	if c == nil || c.db == nil || response == "" {
		return
	}
	key := responseCacheKey(task, model, prompt)

	err := c.db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		entry := dgbadger.NewEntry(key, []byte(response)).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn("Response cache write failed",
			slog.String("task", task),
			slog.String("error", err.Error()),
		)
		return
	}
	c.logger.Debug("Response cache saved",
		slog.String("task", task),
		slog.Duration("ttl", c.ttl),
	)
}

// responseCacheKey builds the BadgerDB key from the digest of the call
// identity. Field separators prevent ("ab","c") colliding with ("a","bc").
func responseCacheKey(task, model, prompt string) []byte {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s", task, model, prompt)
	return []byte(responseCacheKeyPrefix + hex.EncodeToString(h.Sum(nil)))
}

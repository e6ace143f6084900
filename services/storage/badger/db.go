// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package badger wraps a BadgerDB instance behind a small transactional API.
//
// The wrapper exists so callers deal with context-aware closures instead of
// raw badger handles, and so open/close and value-log GC policy live in one
// place. It is service infrastructure: a single DB is opened at startup and
// shared by every component that needs embedded persistence.
package badger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"
)

// =============================================================================
// Config
// =============================================================================

// Config controls how the embedded database is opened.
type Config struct {
	// Path is the on-disk directory for the database. Ignored when InMemory
	// is true. The directory is created if it does not exist.
	Path string

	// InMemory opens the database without any on-disk state. Used by tests
	// and by deployments that want caching without persistence.
	InMemory bool

	// GCInterval is how often the value-log garbage collector runs.
	// Zero means the default (10 minutes).
	GCInterval time.Duration

	// Logger receives open/close and GC diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with production defaults. The caller is
// expected to set Path before passing it to OpenDB.
func DefaultConfig() Config {
	return Config{
		GCInterval: 10 * time.Minute,
	}
}

// =============================================================================
// DB
// =============================================================================

// DB is an opened BadgerDB instance plus its background GC loop.
//
// Description:
//
//	Transactions are exposed through WithTxn (read-write) and WithReadTxn
//	(read-only). Both check context cancellation before starting, so a
//	request that has already been abandoned never touches the database.
//
// Thread Safety: Safe for concurrent use. BadgerDB transactions are
// per-goroutine; do not share a *dgbadger.Txn across goroutines.
type DB struct {
	inner  *dgbadger.DB
	logger *slog.Logger
	stopGC chan struct{}
	doneGC chan struct{}
}

// OpenDB opens (or creates) the database described by cfg and starts the
// value-log GC loop.
//
// Description:
//
//	Badger's own logger is silenced; open/close events are reported through
//	cfg.Logger instead so the service has a single log stream.
//
// Inputs:
//   - cfg: Open configuration. Path must be non-empty unless InMemory is set.
//
// Outputs:
//   - *DB: Opened handle. The caller owns it and must call Close.
//   - error: Non-nil if the directory cannot be opened or is locked by
//     another process.
func OpenDB(cfg Config) (*DB, error) {
	if cfg.Path == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: config requires a path or in-memory mode")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gcInterval := cfg.GCInterval
	if gcInterval <= 0 {
		gcInterval = 10 * time.Minute
	}

	opts := dgbadger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithLogger(nil)

	inner, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: opening %s: %w", cfg.Path, err)
	}

	db := &DB{
		inner:  inner,
		logger: logger,
		stopGC: make(chan struct{}),
		doneGC: make(chan struct{}),
	}
	go db.runGC(gcInterval)

	logger.Debug("BadgerDB opened",
		slog.String("path", cfg.Path),
		slog.Bool("in_memory", cfg.InMemory),
	)
	return db, nil
}

// Close stops the GC loop and closes the underlying database. Safe to call
// exactly once; the handle must not be used afterwards.
func (db *DB) Close() error {
	close(db.stopGC)
	<-db.doneGC
	if err := db.inner.Close(); err != nil {
		return fmt.Errorf("badger: closing: %w", err)
	}
	db.logger.Debug("BadgerDB closed")
	return nil
}

// WithTxn runs fn inside a read-write transaction, committing on nil return.
//
// Inputs:
//   - ctx: Checked before the transaction starts; a cancelled context fails
//     fast without touching the database.
//   - fn: Transaction body. Returning an error aborts the transaction.
func (db *DB) WithTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("badger: context done before write txn: %w", err)
	}
	return db.inner.Update(fn)
}

// WithReadTxn runs fn inside a read-only transaction.
func (db *DB) WithReadTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("badger: context done before read txn: %w", err)
	}
	return db.inner.View(fn)
}

// runGC periodically reclaims value-log space. RunValueLogGC returns
// ErrNoRewrite when there is nothing to collect; that is the common case and
// is not logged.
func (db *DB) runGC(interval time.Duration) {
	defer close(db.doneGC)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-db.stopGC:
			return
		case <-ticker.C:
			if err := db.inner.RunValueLogGC(0.5); err != nil &&
				err != dgbadger.ErrNoRewrite && err != dgbadger.ErrRejected {
				db.logger.Warn("BadgerDB value-log GC failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"errors"
	"testing"

	dgbadger "github.com/dgraph-io/badger/v4"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	db, err := OpenDB(cfg)
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return db
}

func TestOpenDB_RequiresPath(t *testing.T) {
	if _, err := OpenDB(Config{}); err == nil {
		t.Fatal("expected error for empty path without in-memory mode")
	}
}

func TestDB_WriteThenRead(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		return txn.Set([]byte("k"), []byte("v"))
	})
	if err != nil {
		t.Fatalf("write txn failed: %v", err)
	}

	var got []byte
	err = db.WithReadTxn(ctx, func(txn *dgbadger.Txn) error {
		item, err := txn.Get([]byte("k"))
		if err != nil {
			return err
		}
		got, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		t.Fatalf("read txn failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("unexpected value: %q", got)
	}
}

func TestDB_MissingKey(t *testing.T) {
	db := openTestDB(t)

	err := db.WithReadTxn(context.Background(), func(txn *dgbadger.Txn) error {
		_, err := txn.Get([]byte("absent"))
		return err
	})
	if !errors.Is(err, dgbadger.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDB_CancelledContext(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		t.Error("transaction body ran despite cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDB_InMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InMemory = true
	db, err := OpenDB(cfg)
	if err != nil {
		t.Fatalf("OpenDB in-memory failed: %v", err)
	}
	defer db.Close()

	err = db.WithTxn(context.Background(), func(txn *dgbadger.Txn) error {
		return txn.Set([]byte("mem"), []byte("1"))
	})
	if err != nil {
		t.Fatalf("in-memory write failed: %v", err)
	}
}

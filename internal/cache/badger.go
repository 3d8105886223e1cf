// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCache persists entries in an embedded Badger database. Expiry uses
// Badger's native entry TTL.
type BadgerCache struct {
	db    *badger.DB
	stats counters
}

// OpenBadger opens (or creates) a Badger cache at dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		c.stats.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		c.stats.misses.Add(1)
		return nil, false, fmt.Errorf("badger get: %w", err)
	}
	c.stats.hits.Add(1)
	return out, true, nil
}

func (c *BadgerCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	c.stats.sets.Add(1)
	return nil
}

func (c *BadgerCache) Delete(_ context.Context, key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

func (c *BadgerCache) Ping(context.Context) error {
	if c.db.IsClosed() {
		return errors.New("badger database closed")
	}
	return nil
}

func (c *BadgerCache) Stats() Stats { return c.stats.snapshot() }

func (c *BadgerCache) Close() error { return c.db.Close() }

// Package storage provides the durable local registry store.
//
// The engine keeps the full registry in an in-memory table and writes
// every mutation through to a local Badger store, one row per key in
// insertion order. On startup the table is rebuilt from Badger. The
// local store is the fast path only: it lives on the node's disk and
// is expected to vanish on redeploy, which is why the snapshot backup
// pushed through the external channel exists at all.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/clickermsu/leaderboard-go/internal/core/domain"
	"github.com/clickermsu/leaderboard-go/internal/storage/memory"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/logger"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/metric"
)

// Config configures the storage engine.
type Config struct {
	// Dir is the Badger data directory.
	Dir string

	// InMemory runs Badger without any files. Tests only.
	InMemory bool

	// SyncWrites forces an fsync per commit.
	SyncWrites bool

	// Logger is the structured logger.
	Logger logger.Logger

	// Metrics receives the registry size gauge. Optional.
	Metrics *metric.Registry
}

// Engine is the durable registry store.
type Engine struct {
	table *memory.Table
	db    *badger.DB
	log   logger.Logger

	// mu serializes mutate-then-persist sequences so the on-disk row
	// set never interleaves two mutations.
	mu        sync.Mutex
	persisted int

	metrics *metric.Registry
}

// Open opens the local store and loads it into memory.
func Open(cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	db, err := openBadger(cfg)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		table:   memory.New(),
		db:      db,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}

	if err := e.load(); err != nil {
		db.Close()
		return nil, err
	}

	e.log.Info("registry store opened",
		"dir", cfg.Dir,
		"records", e.table.Len())

	return e, nil
}

// load rebuilds the in-memory table from Badger.
func (e *Engine) load() error {
	var snap domain.Snapshot

	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = recordPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(recordPrefix); it.ValidForPrefix(recordPrefix); it.Next() {
			var u domain.User
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			})
			if err != nil {
				return fmt.Errorf("decode row %x: %w", it.Item().Key(), err)
			}
			snap = append(snap, u)
		}
		return nil
	})
	if err != nil {
		return domain.ErrStorageError.WithDetails("load registry").WithCause(err)
	}

	if err := e.table.ReplaceAll(context.Background(), snap); err != nil {
		return err
	}
	e.persisted = len(snap)
	e.observeSize()
	return nil
}

// persist rewrites the registry rows inside one transaction, deleting
// any stale tail left over from a shrink. Callers hold e.mu.
func (e *Engine) persist(ctx context.Context) error {
	snap, err := e.table.All(ctx)
	if err != nil {
		return err
	}

	err = e.db.Update(func(txn *badger.Txn) error {
		for i, u := range snap {
			val, err := json.Marshal(u)
			if err != nil {
				return err
			}
			if err := txn.Set(rowKey(i), val); err != nil {
				return err
			}
		}
		for i := len(snap); i < e.persisted; i++ {
			if err := txn.Delete(rowKey(i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.ErrStorageError.WithDetails("persist registry").WithCause(err)
	}

	e.persisted = len(snap)
	e.observeSize()
	return nil
}

func (e *Engine) observeSize() {
	if e.metrics != nil {
		e.metrics.RegistrySize.Set(float64(e.table.Len()))
	}
}

// Insert appends a record and persists the table. The in-memory insert
// is the source of truth; a persist failure is surfaced but does not
// roll the table back, since the local store is best-effort by design
// and the channel backup is the durable copy.
func (e *Engine) Insert(ctx context.Context, u domain.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.table.Insert(ctx, u); err != nil {
		return err
	}
	return e.persist(ctx)
}

// FindByUsername returns the first record with the given username.
func (e *Engine) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return e.table.FindByUsername(ctx, username)
}

// FindByID returns the first record with the given id.
func (e *Engine) FindByID(ctx context.Context, id int64) (domain.User, error) {
	return e.table.FindByID(ctx, id)
}

// DeleteByID removes every record matching the id and persists.
func (e *Engine) DeleteByID(ctx context.Context, id int64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.table.DeleteByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return n, e.persist(ctx)
}

// ReplaceAll installs a pulled snapshot and persists it.
func (e *Engine) ReplaceAll(ctx context.Context, s domain.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.table.ReplaceAll(ctx, s); err != nil {
		return err
	}
	return e.persist(ctx)
}

// All returns a copy of the full registry in insertion order.
func (e *Engine) All(ctx context.Context) (domain.Snapshot, error) {
	return e.table.All(ctx)
}

// Len returns the number of records.
func (e *Engine) Len() int {
	return e.table.Len()
}

// Close closes the underlying store.
func (e *Engine) Close() error {
	return e.db.Close()
}

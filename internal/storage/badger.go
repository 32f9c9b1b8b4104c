// Package storage provides the durable local registry store.
//
// This file holds the Badger plumbing: option construction, the logger
// adapter, and the key codec for registry rows.
package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/clickermsu/leaderboard-go/internal/telemetry/logger"
)

// recordPrefix namespaces registry rows inside the KV store.
var recordPrefix = []byte("user/")

// rowKey builds the key for the row at the given table position.
// Big-endian indexes keep Badger's key order equal to insertion order.
func rowKey(index int) []byte {
	key := make([]byte, len(recordPrefix)+8)
	copy(key, recordPrefix)
	binary.BigEndian.PutUint64(key[len(recordPrefix):], uint64(index))
	return key
}

// openBadger opens the local store under cfg.Dir, or a pure in-memory
// instance when cfg.InMemory is set (used by tests).
func openBadger(cfg Config) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("storage: dir is required")
		}
		opts = badger.DefaultOptions(cfg.Dir)
		opts.SyncWrites = cfg.SyncWrites
	}
	opts.Logger = &badgerLogger{logger: cfg.Logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}
	return db, nil
}

// badgerLogger adapts our logger to badger.Logger. Badger is chatty at
// info level, so its info output is demoted to debug.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error("badger: " + fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn("badger: " + fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug("badger: " + fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug("badger: " + fmt.Sprintf(format, args...))
}

// Package memory provides the in-memory registry table.
//
// The table is the authoritative in-process copy of the user registry.
// It preserves insertion order, allows duplicate ids, and enforces
// username uniqueness with a pre-check at insert time. All operations
// are guarded by a single lock so the check-then-insert stays correct
// even if a future transport delivers commands concurrently.
package memory

import (
	"context"
	"sync"

	"github.com/clickermsu/leaderboard-go/internal/core/domain"
)

// Table is an ordered, in-memory user registry.
type Table struct {
	mu   sync.RWMutex
	rows domain.Snapshot
}

// New creates an empty table.
func New() *Table {
	return &Table{}
}

// Insert appends a record. It fails with ErrUsernameTaken when a record
// with the same username already exists (case-sensitive exact match).
// This pre-check is the sole uniqueness guard in the system.
func (t *Table) Insert(_ context.Context, u domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, row := range t.rows {
		if row.Username == u.Username {
			return domain.ErrUsernameTaken.WithDetails(u.Username)
		}
	}

	t.rows = append(t.rows, u)
	return nil
}

// FindByUsername returns the first record with the given username.
func (t *Table) FindByUsername(_ context.Context, username string) (domain.User, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, row := range t.rows {
		if row.Username == username {
			return row, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound.WithDetails(username)
}

// FindByID returns the first record with the given id.
func (t *Table) FindByID(_ context.Context, id int64) (domain.User, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, row := range t.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

// DeleteByID removes every record matching the given id, the same way
// a SQL DELETE with an id predicate would, and returns how many were
// removed. It fails with ErrUserNotFound when nothing matched.
func (t *Table) DeleteByID(_ context.Context, id int64) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.rows[:0]
	removed := 0
	for _, row := range t.rows {
		if row.ID == id {
			removed++
			continue
		}
		kept = append(kept, row)
	}

	if removed == 0 {
		return 0, domain.ErrUserNotFound
	}
	t.rows = kept
	return removed, nil
}

// ReplaceAll clears the table and installs the given snapshot as-is.
// The uniqueness guard is bypassed: a pulled snapshot is assumed
// already deduplicated.
func (t *Table) ReplaceAll(_ context.Context, s domain.Snapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows = s.Clone()
	return nil
}

// All returns a copy of the full table in insertion order.
func (t *Table) All(_ context.Context) (domain.Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.rows.Clone(), nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.rows)
}

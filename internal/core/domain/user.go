// Package domain defines the core domain models for the leaderboard registry.
package domain

import "strings"

// User is a single registry record.
//
// ID is the external identity of the requester (the chat id of the
// registering client). It is not unique: the same chat may register
// several usernames over time. Username is the de facto unique key,
// enforced by a pre-check at insert time, not by the store itself.
//
// Password is stored in clear text for fidelity with the game client
// protocol. It must never reach the logs (see telemetry/logger).
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the record fields.
func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrInvalidRecord.WithDetails("username is required")
	}
	return nil
}

// Snapshot is a full point-in-time copy of the registry table,
// in insertion order.
type Snapshot []User

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// Equal reports whether two snapshots hold the same records
// in the same order.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

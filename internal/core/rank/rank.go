// Package rank computes ordinal leaderboard positions over a registry
// snapshot.
//
// Ranking is keyed on descending id: the id is the chat id assigned at
// registration time and serves as a proxy for recency, so rank 1 is the
// most recently issued id. All functions are pure and operate on a copy
// of their input; they hold no state between calls.
package rank

import (
	"sort"

	"github.com/clickermsu/leaderboard-go/internal/core/domain"
)

// Entry is a single leaderboard row.
type Entry struct {
	Rank     int    `json:"rank"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// byIDDesc returns the snapshot ordered by descending id. The sort is
// stable so that records sharing an id keep their insertion order.
func byIDDesc(s domain.Snapshot) domain.Snapshot {
	ordered := s.Clone()
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID > ordered[j].ID
	})
	return ordered
}

// TopN returns the first n leaderboard rows, ordered by descending id.
// It returns fewer than n rows when the snapshot is smaller than n, and
// nil when the snapshot is empty or n is not positive.
func TopN(s domain.Snapshot, n int) []Entry {
	if n <= 0 || len(s) == 0 {
		return nil
	}

	ordered := byIDDesc(s)
	if n > len(ordered) {
		n = len(ordered)
	}

	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Entry{
			Rank:     i + 1,
			ID:       ordered[i].ID,
			Username: ordered[i].Username,
		})
	}
	return out
}

// Placement returns the leaderboard rows for the given username, with
// ranks computed over the full snapshot ordered by descending id.
// Uniqueness of usernames is enforced upstream at insert time, but the
// computation does not assume it: every matching record is returned.
// A nil result means the username is not present.
func Placement(s domain.Snapshot, username string) []Entry {
	ordered := byIDDesc(s)

	var out []Entry
	for i, u := range ordered {
		if u.Username == username {
			out = append(out, Entry{
				Rank:     i + 1,
				ID:       u.ID,
				Username: u.Username,
			})
		}
	}
	return out
}

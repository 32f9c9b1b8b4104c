package benchmark

import (
	"fmt"

	"github.com/clickermsu/leaderboard-go/internal/core/domain"
)

// RegistrySizes are the registry scales exercised by the benchmarks.
// The production registry is small; the larger sizes guard against
// accidental quadratic behavior.
var RegistrySizes = []int{10, 100, 1000, 10000}

// fillSnapshot builds a snapshot of n synthetic players.
func fillSnapshot(n int) domain.Snapshot {
	s := make(domain.Snapshot, 0, n)
	for i := 0; i < n; i++ {
		s = append(s, domain.User{
			ID:       int64(1000000 + i*7%n),
			Username: fmt.Sprintf("player-%d", i),
			Password: fmt.Sprintf("pw-%d", i),
		})
	}
	return s
}

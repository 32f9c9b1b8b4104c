// Package shutdown provides graceful shutdown for leaderboard-server.
//
// This package handles process termination:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Programmatic triggering via Trigger
//   - Timeout-based forced shutdown
//   - Cleanup hook registration, run in reverse order
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return bot.Close(ctx) })
//	err := h.Wait()
package shutdown

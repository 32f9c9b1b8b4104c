// Package opsserver provides the operational HTTP endpoint.
package opsserver

import (
	"encoding/json"
	"net/http"

	"github.com/clickermsu/leaderboard-go/internal/infra/buildinfo"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/logger"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the ops router.
type RouterConfig struct {
	// Metrics provides the Prometheus handler. Optional.
	Metrics *metric.Registry

	// Ready reports whether the server is ready to take commands.
	// Nil means always ready.
	Ready func() bool

	// Logger for panic logging.
	Logger logger.Logger
}

// NewRouter creates the ops HTTP handler.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if cfg.Ready != nil && !cfg.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready\n"))
	})

	mux.HandleFunc("GET /version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(buildinfo.Get())
	})

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return Recover(log)(mux)
}

// Recover catches handler panics and turns them into 500 responses.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("ops handler panic",
						"path", r.URL.Path,
						"panic", rec,
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/levkk/kvstore/internal/infra/buildinfo"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Logger for request logging.
	Logger *slog.Logger

	// Metrics serves GET /metrics. Nil disables the endpoint.
	Metrics http.Handler

	// Ready reports whether the kv listener accepts connections.
	// Nil means always ready.
	Ready func() bool

	// Keys returns the number of stored keys for the readiness payload.
	Keys func() int
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	if cfg == nil {
		cfg = &RouterConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /ready", readyHandler(cfg))
	mux.HandleFunc("GET /version", handleVersion)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	return Chain(mux, RequestID(), Recover(logger), AccessLog(logger))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func readyHandler(cfg *RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{
			"time": time.Now().UTC().Format(time.RFC3339),
		}
		if cfg.Keys != nil {
			body["keys"] = cfg.Keys()
		}

		if cfg.Ready != nil && !cfg.Ready() {
			body["status"] = "not_ready"
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		writeJSON(w, http.StatusOK, body)
	}
}

func handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

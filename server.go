package main

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers all routes and wraps them with the middleware chain.
func NewRouter(h *ReasonHandler, cfg Config, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics (no credential required)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /reason/{userId}", h.GetReason)
	mux.HandleFunc("POST /reason/{userId}", h.SetReason)

	// Middleware chain: Recovery → CORS → RequestLogging → CredentialAuth → mux
	var handler http.Handler = mux
	handler = CredentialAuth()(handler)
	handler = RequestLogging(logger)(handler)
	handler = CORS(cfg.CORSAllowOrigin)(handler)
	handler = Recovery(logger)(handler)

	return handler
}

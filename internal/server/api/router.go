// Package api is the HTTP front door: the GraphQL endpoint, health and
// metrics, behind request id, CORS, authentication and audit middleware.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/audit"
	"github.com/dmitrijs2005/singularity/internal/server/metrics"
)

type RouterConfig struct {
	Secret      []byte
	CORSOrigins []string
	Log         logging.Logger
	Metrics     *metrics.Metrics
	MetricsPage http.Handler
	Recorder    *audit.Recorder
	GraphQL     http.Handler
	// Ping reports storage health for /health.
	Ping func(ctx context.Context) error
}

func NewRouter(c RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(c.Log))
	r.Use(Instrument(c.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   c.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler(c.Ping))

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(c.Secret, c.Log))
		r.Use(c.Recorder.Middleware)

		r.Handle("/graphql", c.GraphQL)
		r.Handle("/metrics", c.MetricsPage)
	})

	return r
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Package http assembles the feature routers behind shared middleware.
package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "skillaudit/internal/auth/handler"
	centerhandler "skillaudit/internal/center/handler"
	reporthandler "skillaudit/internal/report/handler"
	"skillaudit/pkg/platform/middleware/logging"
	"skillaudit/pkg/platform/middleware/requestmeta"
)

// Deps collects the feature handlers the router mounts.
type Deps struct {
	Auth    *authhandler.Handler
	Centers *centerhandler.Handler
	Reports *reporthandler.Handler

	// DB is nil for in-memory runs; /healthz checks it when present.
	DB     *sql.DB
	Logger *slog.Logger
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(requestmeta.Middleware)
	r.Use(logging.Middleware(d.Logger))

	r.Get("/healthz", healthz(d.DB))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	d.Auth.Register(r)
	d.Centers.Register(r)
	d.Reports.Register(r)
	return r
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

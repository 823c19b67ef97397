// Package httpx wires the HTTP surface of the scan server: routing,
// request middleware and liveness probes.
package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/sitevitals/sitevitals/pkg/config"
	"github.com/sitevitals/sitevitals/pkg/server/api"
	v1 "github.com/sitevitals/sitevitals/pkg/server/api/v1"
)

// NewRouter builds the server's root router: probe endpoints plus the
// versioned scan API.
func NewRouter(cfg config.ServerConfig, deps *api.Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", HealthzHandler)
	r.Method(http.MethodGet, "/readyz", v1.ReadyzHandler(deps.Ready))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/scans", func(r chi.Router) {
			r.Post("/", v1.CreateScanHandler(deps))
			r.Get("/", v1.ListScansHandler(deps))
			r.Get("/{id}", v1.GetScanHandler(deps))
			r.Delete("/{id}", v1.DeleteScanHandler(deps))
		})
	})

	log.Debug().
		Str("component", "httpx.router").
		Str("addr", cfg.Addr).
		Int("port", cfg.Port).
		Msg("Router configured")

	return r
}

// HealthzHandler is the liveness probe. It answers OK as long as the
// process is serving requests, independent of storage or queue state.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// requestLogger emits one structured log line per request with the
// request ID assigned upstream.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Info().
			Str("component", "httpx").
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

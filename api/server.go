/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, logged with every request
  2. Logger:     zerolog request logging (logging.RequestLogger)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the operator UI

ROUTE GROUPS:
  /api/today, /api/open-days   Operator dashboard
  /api/day/{date}/*            Single-day operations
  /api/import/{year}/*         Year import
  /api/health                  Liveness
  /metrics                     Prometheus, when RouterOptions.Metrics is set
  /                            Plain-text banner

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/laprofumo/shopify-klara-sync-backend/logging"
)

// Banner is served on "/".
const Banner = "Shopify → Klara Sync Backend läuft."

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	Logger         zerolog.Logger
	// Metrics is mounted on /metrics when not nil.
	Metrics http.Handler
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/today", h.Today)
		r.Get("/open-days", h.ListOpenDays)

		// Day routes
		r.Route("/day/{date}", func(r chi.Router) {
			r.Get("/", h.GetDay)
			r.Post("/collect", h.CollectDay)
			r.Post("/send", h.SendDay)
		})

		// Import routes
		r.Route("/import/{year}", func(r chi.Router) {
			r.Post("/run", h.RunImport)
			r.Get("/runs", h.ListImportRuns)
			r.Post("/send", h.SendImport)
			r.Get("/export.xlsx", h.ExportYear)
		})
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(Banner))
	})

	return r
}

package api

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iammorganparry/journal/internal/journal"
	"github.com/iammorganparry/journal/internal/models"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	svc *journal.Service,
	db Pinger,
	backend string,
	sessions *SessionStore,
	passcode string,
	logger *slog.Logger,
) (*chi.Mux, error) {
	p, err := loadPages()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS())
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))
	r.Use(Metrics)
	r.Use(Sessions(sessions))

	// Handlers
	healthH := NewHealthHandler(db, backend, svc)
	authH := NewAuthHandler(passcode, sessions, p, logger)
	pageH := NewPageHandler(svc, p, passcode != "", logger)
	recordH := NewRecordHandler(svc)
	exportH := NewExportHandler(svc, logger)

	// Unauthenticated routes
	r.Get("/health", healthH.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/login", authH.LoginForm)
	r.Post("/login", authH.Login)
	r.Post("/logout", authH.Logout)

	// Gated routes
	r.Group(func(r chi.Router) {
		r.Use(PasscodeGate(passcode))

		r.Get("/", pageH.Home)
		for _, kind := range models.Kinds() {
			path := "/" + kind.Slug()
			r.Get(path, pageH.Records(kind))
			r.Post(path, pageH.Submit(kind))
		}
		r.Get("/dashboard", pageH.Dashboard)
		r.Post("/dashboard/csv", pageH.WriteCSV)
		r.Get("/download/{name}", exportH.Download)

		r.Route("/api", func(r chi.Router) {
			r.Get("/records/{kind}", recordH.List)
			r.Post("/records/{kind}", recordH.Submit)
			r.Get("/stats", recordH.Stats)
			r.Get("/export/markdown", exportH.Markdown)
			r.Get("/export/csv/{kind}", exportH.CSV)
			r.Post("/export/csv", exportH.WriteCSVFiles)
		})
	})

	return r, nil
}

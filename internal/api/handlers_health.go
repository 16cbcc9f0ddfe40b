package api

import (
	"context"
	"net/http"

	"github.com/iammorganparry/journal/internal/journal"
	"github.com/iammorganparry/journal/internal/models"
)

// Pinger reports whether the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	backend string
	svc     *journal.Service
}

func NewHealthHandler(db Pinger, backend string, svc *journal.Service) *HealthHandler {
	return &HealthHandler{db: db, backend: backend, svc: svc}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:  "ok",
		Backend: h.backend,
	}

	if err := h.db.Ping(r.Context()); err != nil {
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else if stats, err := h.svc.Dashboard(r.Context()); err != nil {
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.DB = models.ServiceCheck{Status: "ok"}
		resp.Records = stats.Total
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

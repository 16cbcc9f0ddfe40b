package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/journal/internal/journal"
	"github.com/iammorganparry/journal/internal/models"
)

type RecordHandler struct {
	svc *journal.Service
}

func NewRecordHandler(svc *journal.Service) *RecordHandler {
	return &RecordHandler{svc: svc}
}

func kindParam(w http.ResponseWriter, r *http.Request) (models.Kind, bool) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return kind, true
}

// List handles GET /api/records/{kind}
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	records, err := h.svc.List(r.Context(), kind)
	resp := models.ListResponse{Kind: kind, Records: records, Total: len(records)}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Submit handles POST /api/records/{kind}
func (h *RecordHandler) Submit(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	var req models.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id, err := h.svc.Submit(r.Context(), kind, req.Fields)
	if err != nil {
		status := http.StatusInternalServerError
		if journal.IsValidation(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, models.SubmitResponse{ID: id, Kind: kind})
}

// Stats handles GET /api/stats
func (h *RecordHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

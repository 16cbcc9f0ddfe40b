package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/journal/internal/export"
	"github.com/iammorganparry/journal/internal/journal"
	"github.com/iammorganparry/journal/internal/models"
)

const markdownFile = "export.md"

type ExportHandler struct {
	svc    *journal.Service
	logger *slog.Logger
}

func NewExportHandler(svc *journal.Service, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger}
}

func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
}

// Markdown handles GET /api/export/markdown and GET /download/export.md
func (h *ExportHandler) Markdown(w http.ResponseWriter, r *http.Request) {
	md, err := h.svc.ExportMarkdown(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	attachment(w, "text/markdown; charset=utf-8", markdownFile)
	io.WriteString(w, md)
}

// CSV handles GET /api/export/csv/{kind}. The file is rendered from the
// current store contents, not from disk.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(r.Context(), &buf, h.svc, kind); err != nil {
		h.logger.Error("render csv failed", "kind", kind, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	attachment(w, "text/csv; charset=utf-8", export.FileName(kind))
	buf.WriteTo(w)
}

// WriteCSVFiles handles POST /api/export/csv
func (h *ExportHandler) WriteCSVFiles(w http.ResponseWriter, r *http.Request) {
	paths, err := h.svc.WriteCSVFiles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": paths})
}

// Download handles GET /download/{name} for export.md and the CSV files
// written by the dashboard.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == markdownFile {
		h.Markdown(w, r)
		return
	}

	base, ok := strings.CutSuffix(name, ".csv")
	if !ok {
		http.NotFound(w, r)
		return
	}
	kind := models.Kind(base)
	if !kind.IsValid() {
		http.NotFound(w, r)
		return
	}

	f, err := h.svc.OpenCSV(kind)
	if errors.Is(err, journal.ErrExportMissing) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	attachment(w, "text/csv; charset=utf-8", name)
	io.Copy(w, f)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/iammorganparry/journal/internal/export"
	"github.com/iammorganparry/journal/internal/journal"
	"github.com/iammorganparry/journal/internal/models"
)

const savedNotice = "保存しました。"

// PageHandler serves the HTML views.
type PageHandler struct {
	svc    *journal.Service
	pages  pages
	gated  bool
	logger *slog.Logger
}

func NewPageHandler(svc *journal.Service, p pages, gated bool, logger *slog.Logger) *PageHandler {
	return &PageHandler{svc: svc, pages: p, gated: gated, logger: logger}
}

func (h *PageHandler) data(r *http.Request, title, active string) pageData {
	notice, errMsg := GetSession(r).TakeFlash()
	return pageData{
		Title:  title,
		Active: active,
		Notice: notice,
		Error:  errMsg,
		Gated:  h.gated,
	}
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, h.logger, http.StatusOK, "home", h.data(r, "ホーム", "/"))
}

// Records returns the GET handler of a kind's form and listing.
func (h *PageHandler) Records(kind models.Kind) http.HandlerFunc {
	schema := models.MustSchema(kind)
	path := "/" + kind.Slug()
	return func(w http.ResponseWriter, r *http.Request) {
		data := h.data(r, schema.Title, path)
		data.Schema = schema
		data.Columns = append([]string{"id"}, schema.Columns()...)

		records, err := h.svc.List(r.Context(), kind)
		if err != nil {
			data.Error = err.Error()
		}
		data.Records = records

		h.pages.render(w, h.logger, http.StatusOK, "records", data)
	}
}

// Submit returns the POST handler of a kind's form. It redirects back to
// the listing so the form is cleared.
func (h *PageHandler) Submit(kind models.Kind) http.HandlerFunc {
	schema := models.MustSchema(kind)
	path := "/" + kind.Slug()
	return func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r)
		if err := r.ParseForm(); err != nil {
			sess.Flash("", "invalid form: "+err.Error())
			http.Redirect(w, r, path, http.StatusSeeOther)
			return
		}

		fields := make(map[string]string, len(schema.Fields))
		for _, f := range schema.Fields {
			fields[f.Name] = r.PostForm.Get(f.Name)
		}

		if _, err := h.svc.Submit(r.Context(), kind, fields); err != nil {
			sess.Flash("", err.Error())
		} else {
			sess.Flash(savedNotice, "")
		}
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}

// Dashboard handles GET /dashboard
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := h.data(r, "ダッシュボード / エクスポート", "/dashboard")

	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		data.Error = err.Error()
	}
	data.Stats = stats

	// Files that were never written are left out.
	for _, kind := range h.svc.AvailableCSV() {
		data.CSVFiles = append(data.CSVFiles, export.FileName(kind))
	}

	h.pages.render(w, h.logger, http.StatusOK, "dashboard", data)
}

// WriteCSV handles POST /dashboard/csv
func (h *PageHandler) WriteCSV(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r)
	if _, err := h.svc.WriteCSVFiles(r.Context()); err != nil {
		sess.Flash("", err.Error())
	} else {
		sess.Flash("CSVを書き出しました。以下からダウンロードできます。", "")
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

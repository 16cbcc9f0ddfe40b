package api

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/iammorganparry/journal/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"field": func(r models.Record, name string) string { return r.Get(name) },
}

// pages holds one template set per view, each combined with the layout.
type pages map[string]*template.Template

func loadPages() (pages, error) {
	out := pages{}
	for _, name := range []string{"home", "records", "dashboard", "login"} {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

// pageData is passed to every view.
type pageData struct {
	Title    string
	Active   string
	Notice   string
	Error    string
	Gated    bool
	NavItems []navItem
	Schema   models.Schema
	Columns  []string
	Records  []models.Record
	Stats    models.Stats
	CSVFiles []string
}

type navItem struct {
	Path  string
	Label string
}

var navigation = []navItem{
	{Path: "/", Label: "ホーム"},
	{Path: "/daily", Label: "1日1枚メモ"},
	{Path: "/weekly", Label: "週1レポート"},
	{Path: "/monthly", Label: "月1ミニ発表"},
	{Path: "/dashboard", Label: "ダッシュボード / エクスポート"},
}

func (p pages) render(w http.ResponseWriter, logger *slog.Logger, status int, name string, data pageData) {
	t, ok := p[name]
	if !ok {
		writeError(w, http.StatusInternalServerError, "unknown page "+name)
		return
	}
	data.NavItems = navigation
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		logger.Error("render page failed", "page", name, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

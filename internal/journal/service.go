// Package journal is the boundary between the page controller and the
// record store. Every backend failure is logged here and returned as an
// error the caller can show to the user.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iammorganparry/journal/internal/export"
	"github.com/iammorganparry/journal/internal/metrics"
	"github.com/iammorganparry/journal/internal/models"
)

// Store is the persistence the service needs.
type Store interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, kind models.Kind, fields map[string]string) (int64, error)
	ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error)
	Count(ctx context.Context, kind models.Kind) (int, error)
}

// Service is the facade for all journal operations.
type Service struct {
	store     Store
	exportDir string
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewService creates a journal service. loc is the zone used for the
// default daily memo date; exportDir receives CSV files.
func NewService(store Store, exportDir string, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:     store,
		exportDir: exportDir,
		loc:       loc,
		now:       time.Now,
		logger:    logger.With("component", "journal"),
	}
}

// Init creates the tables. A failure is logged and returned; the caller
// keeps running.
func (s *Service) Init(ctx context.Context) error {
	if err := s.store.Init(ctx); err != nil {
		s.logger.Error("initialize store failed", "error", err)
		metrics.StoreErrors.WithLabelValues("init", "").Inc()
		return fmt.Errorf("initialize store: %w", err)
	}
	return nil
}

// Submit trims the input, fills defaults, validates it and writes one record.
func (s *Service) Submit(ctx context.Context, kind models.Kind, fields map[string]string) (int64, error) {
	schema, ok := models.SchemaFor(kind)
	if !ok {
		return 0, fmt.Errorf("unknown record kind %q", kind)
	}

	clean := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		clean[f.Name] = strings.TrimSpace(fields[f.Name])
	}
	for name := range fields {
		if _, ok := schema.Field(name); !ok {
			return 0, &ValidationError{Problems: []string{fmt.Sprintf("%s is not a field of %s", name, kind)}}
		}
	}
	if kind == models.KindDailyMemo && clean["date"] == "" {
		clean["date"] = s.now().In(s.loc).Format(models.DateLayout)
	}

	if err := validateFields(schema, clean); err != nil {
		return 0, err
	}

	id, err := s.store.Insert(ctx, kind, clean)
	if err != nil {
		s.logger.Error("insert failed", "kind", kind, "error", err)
		metrics.StoreErrors.WithLabelValues("insert", string(kind)).Inc()
		return 0, fmt.Errorf("save %s: %w", schema.Title, err)
	}

	metrics.RecordsInserted.WithLabelValues(string(kind)).Inc()
	s.logger.Info("record saved", "kind", kind, "id", id)
	return id, nil
}

// List returns every record of the kind, newest first. The slice is never
// nil; on failure it is empty and the error describes why.
func (s *Service) List(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	records, err := s.store.ListAll(ctx, kind)
	if err != nil {
		s.logger.Error("list failed", "kind", kind, "error", err)
		metrics.StoreErrors.WithLabelValues("list", string(kind)).Inc()
		return []models.Record{}, fmt.Errorf("load %s: %w", kind, err)
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

// ListAll makes the service usable as an export.Lister.
func (s *Service) ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	return s.List(ctx, kind)
}

// Dashboard returns per-kind row counts. Kinds whose count fails are
// reported as zero and the first error is returned alongside.
func (s *Service) Dashboard(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	var errs []error
	for _, kind := range models.Kinds() {
		n, err := s.store.Count(ctx, kind)
		if err != nil {
			s.logger.Error("count failed", "kind", kind, "error", err)
			metrics.StoreErrors.WithLabelValues("count", string(kind)).Inc()
			errs = append(errs, err)
			n = 0
		}
		stats.Counts = append(stats.Counts, models.KindCount{
			Kind:  kind,
			Title: models.MustSchema(kind).Title,
			Count: n,
		})
		stats.Total += n
	}
	return stats, errors.Join(errs...)
}

// ExportMarkdown renders the snapshot Markdown document.
func (s *Service) ExportMarkdown(ctx context.Context) (string, error) {
	md, err := export.Markdown(ctx, s.store)
	if err != nil {
		s.logger.Error("markdown export failed", "error", err)
		return "", err
	}
	metrics.Exports.WithLabelValues("markdown").Inc()
	return md, nil
}

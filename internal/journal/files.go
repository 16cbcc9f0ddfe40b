package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/iammorganparry/journal/internal/export"
	"github.com/iammorganparry/journal/internal/metrics"
	"github.com/iammorganparry/journal/internal/models"
)

// ErrExportMissing is returned when a CSV file has not been written yet.
var ErrExportMissing = errors.New("export file not written")

// CSVPath is where the CSV file of a kind is written.
func (s *Service) CSVPath(kind models.Kind) string {
	return filepath.Join(s.exportDir, export.FileName(kind))
}

// WriteCSVFiles writes one CSV file per kind into the export directory and
// returns their paths. Each file is replaced atomically.
func (s *Service) WriteCSVFiles(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	var paths []string
	for _, kind := range models.Kinds() {
		var buf bytes.Buffer
		if err := export.WriteCSV(ctx, &buf, s.store, kind); err != nil {
			s.logger.Error("csv export failed", "kind", kind, "error", err)
			return paths, err
		}
		path := s.CSVPath(kind)
		if err := atomic.WriteFile(path, &buf); err != nil {
			s.logger.Error("write csv file failed", "path", path, "error", err)
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	metrics.Exports.WithLabelValues("csv").Inc()
	s.logger.Info("csv export written", "dir", s.exportDir, "files", len(paths))
	return paths, nil
}

// OpenCSV opens the previously written CSV file of a kind. It returns
// ErrExportMissing when the file does not exist.
func (s *Service) OpenCSV(kind models.Kind) (*os.File, error) {
	f, err := os.Open(s.CSVPath(kind))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrExportMissing
	}
	if err != nil {
		return nil, fmt.Errorf("open csv export: %w", err)
	}
	return f, nil
}

// AvailableCSV returns the kinds whose CSV file exists, in export order.
func (s *Service) AvailableCSV() []models.Kind {
	var kinds []models.Kind
	for _, kind := range models.Kinds() {
		if _, err := os.Stat(s.CSVPath(kind)); err == nil {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Package export renders stored journal records as Markdown and CSV.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/iammorganparry/journal/internal/models"
)

// Lister is the read side of the record store.
type Lister interface {
	ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error)
}

// Title is the first line of every Markdown export.
const Title = "# Liberal Arts Practice Export\n"

// Markdown renders every stored record into one document, grouped by kind in
// Kinds() order. Kinds without rows produce no section.
func Markdown(ctx context.Context, src Lister) (string, error) {
	parts := []string{Title}

	for _, kind := range models.Kinds() {
		records, err := src.ListAll(ctx, kind)
		if err != nil {
			return "", fmt.Errorf("export %s: %w", kind, err)
		}
		if len(records) == 0 {
			continue
		}
		parts = appendSection(parts, models.MustSchema(kind), records)
	}

	return strings.Join(parts, "\n"), nil
}

func appendSection(parts []string, schema models.Schema, records []models.Record) []string {
	parts = append(parts, fmt.Sprintf("## %s\n", schema.Section))
	body := schema.BodyFields()
	for _, r := range records {
		parts = append(parts, fmt.Sprintf("### %s%s (ID: %d)\n", schema.LabelPrefix, r.Get(schema.LabelField), r.ID))
		for _, f := range body {
			parts = append(parts, fmt.Sprintf("- %s: %s\n", f.ExportLabel, r.Get(f.Name)))
		}
		parts = append(parts, "")
	}
	return parts
}

package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iammorganparry/journal/internal/models"
)

// FileName is the CSV file name used for a kind.
func FileName(kind models.Kind) string {
	return string(kind) + ".csv"
}

// WriteCSV writes every row of the kind with a header of all columns,
// including id and created_at. Rows are in insertion (ascending id) order.
func WriteCSV(ctx context.Context, w io.Writer, src Lister, kind models.Kind) error {
	schema, ok := models.SchemaFor(kind)
	if !ok {
		return fmt.Errorf("csv export: unknown kind %q", kind)
	}

	records, err := src.ListAll(ctx, kind)
	if err != nil {
		return fmt.Errorf("csv export %s: %w", kind, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(schema.AllColumns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	cols := schema.Columns()
	row := make([]string, 0, len(cols)+2)
	// ListAll is newest first.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		row = row[:0]
		row = append(row, strconv.FormatInt(r.ID, 10))
		for _, c := range cols {
			row = append(row, r.Get(c))
		}
		row = append(row, r.CreatedAt)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

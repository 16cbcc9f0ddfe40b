package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iammorganparry/journal/internal/models"
)

var (
	ErrUnknownKind  = errors.New("unknown record kind")
	ErrUnknownField = errors.New("unknown field")
)

// RecordStore persists the three journal record kinds.
type RecordStore struct {
	db  *DB
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db, now: time.Now}
}

// SetClock replaces the time source used for created_at.
func (s *RecordStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Backend reports the engine behind the store.
func (s *RecordStore) Backend() Backend {
	return s.db.Backend()
}

// Init creates the tables of every kind. It is idempotent.
func (s *RecordStore) Init(ctx context.Context) error {
	for _, kind := range models.Kinds() {
		ddl := s.createTableSQL(models.MustSchema(kind))
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", kind, err)
		}
	}
	return nil
}

func (s *RecordStore) createTableSQL(schema models.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n  id %s", schema.Table, s.db.idColumn())
	for _, f := range schema.Fields {
		fmt.Fprintf(&b, ",\n  %s TEXT", f.Name)
		if f.Required {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString(",\n  created_at TEXT NOT NULL\n)")
	return b.String()
}

func schemaFor(kind models.Kind) (models.Schema, error) {
	schema, ok := models.SchemaFor(kind)
	if !ok {
		return models.Schema{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return schema, nil
}

// Insert writes one row of the given kind and returns its id. Absent fields
// are stored as NULL. The write happens in a single transaction.
func (s *RecordStore) Insert(ctx context.Context, kind models.Kind, fields map[string]string) (int64, error) {
	schema, err := schemaFor(kind)
	if err != nil {
		return 0, err
	}
	for name := range fields {
		if _, ok := schema.Field(name); !ok {
			return 0, fmt.Errorf("%w: %s.%s", ErrUnknownField, kind, name)
		}
	}

	cols := schema.Columns()
	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		if v, ok := fields[c]; ok {
			args = append(args, v)
		} else {
			args = append(args, nil)
		}
	}
	args = append(args, s.stamp())

	query := s.db.Rebind(fmt.Sprintf(
		"INSERT INTO %s (%s, created_at) VALUES (%s) RETURNING id",
		schema.Table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", "),
	))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert %s: %w", kind, err)
	}
	defer tx.Rollback()

	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert %s: %w", kind, err)
	}
	return id, nil
}

// stamp returns the created_at value for a new row. It never goes backwards
// within one store even if the wall clock does.
func (s *RecordStore) stamp() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	if now.Before(s.last) {
		now = s.last
	}
	s.last = now
	return now.Format(models.CreatedAtLayout)
}

// ListAll returns every row of the kind, newest id first. An empty table
// yields an empty slice. On failure the slice is empty and the error is set.
func (s *RecordStore) ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	records := []models.Record{}

	schema, err := schemaFor(kind)
	if err != nil {
		return records, err
	}

	cols := schema.Columns()
	query := fmt.Sprintf(
		"SELECT id, %s, created_at FROM %s ORDER BY id DESC",
		strings.Join(cols, ", "), schema.Table,
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return records, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var createdAt string
		values := make([]sql.NullString, len(cols))
		dest := make([]any, 0, len(cols)+2)
		dest = append(dest, &id)
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &createdAt)

		if err := rows.Scan(dest...); err != nil {
			return []models.Record{}, fmt.Errorf("scan %s: %w", kind, err)
		}

		fields := make(map[string]string, len(cols))
		for i, c := range cols {
			fields[c] = values[i].String
		}
		records = append(records, models.Record{
			ID:        id,
			Kind:      kind,
			Fields:    fields,
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return []models.Record{}, fmt.Errorf("list %s: %w", kind, err)
	}
	return records, nil
}

// Count returns the number of rows of the kind.
func (s *RecordStore) Count(ctx context.Context, kind models.Kind) (int, error) {
	schema, err := schemaFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+schema.Table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

// Ping checks the backend is reachable.
func (s *RecordStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

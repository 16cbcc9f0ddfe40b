package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Backend names the relational engine behind a DB.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// DefaultSQLitePath is used when no connection string is configured.
const DefaultSQLitePath = "liberal_arts.db"

const memoryDSN = ":memory:"

// DB wraps the database handle with the backend it was opened against.
type DB struct {
	*sql.DB
	backend Backend
}

// Backend reports which engine the handle talks to.
func (db *DB) Backend() Backend {
	return db.backend
}

// NormalizeURL rewrites the legacy postgres:// scheme alias to the canonical
// postgresql:// scheme. Other strings are returned unchanged.
func NormalizeURL(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if rest, ok := strings.CutPrefix(dsn, "postgres://"); ok {
		return "postgresql://" + rest
	}
	return dsn
}

// ParseDSN decides the backend for a connection string and returns the
// string to hand to the driver.
func ParseDSN(dsn string) (Backend, string) {
	dsn = NormalizeURL(dsn)
	switch {
	case dsn == "":
		return BackendSQLite, DefaultSQLitePath
	case dsn == memoryDSN:
		return BackendSQLite, memoryDSN
	case strings.HasPrefix(dsn, "postgresql://"):
		return BackendPostgres, dsn
	case isKeyValueDSN(dsn):
		return BackendPostgres, dsn
	}

	for _, scheme := range []string{"sqlite3://", "sqlite://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			// sqlite:///abs/path keeps its leading slash, sqlite://rel is relative.
			if rest == "" {
				return BackendSQLite, DefaultSQLitePath
			}
			return BackendSQLite, rest
		}
	}
	return BackendSQLite, dsn
}

// isKeyValueDSN matches libpq "host=... dbname=..." connection strings.
func isKeyValueDSN(dsn string) bool {
	for _, key := range []string{"host=", "dbname=", "user="} {
		if strings.HasPrefix(dsn, key) || strings.Contains(dsn, " "+key) {
			return true
		}
	}
	return false
}

// Open selects a backend from the connection string and opens a handle.
// It does not touch the network; Init reports an unreachable backend.
func Open(dsn string) (*DB, error) {
	backend, target := ParseDSN(dsn)
	switch backend {
	case BackendPostgres:
		db, err := sql.Open("postgres", target)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &DB{DB: db, backend: BackendPostgres}, nil
	default:
		return openSQLite(target)
	}
}

func openSQLite(path string) (*DB, error) {
	var dsn string
	if path == memoryDSN {
		dsn = memoryDSN + "?_busy_timeout=5000"
	} else {
		if !strings.HasPrefix(path, "file:") {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dsn = path + sep + "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite handles one writer at a time; a single connection also keeps an
	// in-memory database alive between operations.
	db.SetMaxOpenConns(1)

	return &DB{DB: db, backend: BackendSQLite}, nil
}

// Rebind rewrites ? placeholders to $n for PostgreSQL.
func (db *DB) Rebind(query string) string {
	if db.backend != BackendPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// idColumn is the auto-incrementing primary key definition for the backend.
func (db *DB) idColumn() string {
	if db.backend == BackendPostgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// Ping checks the backend is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

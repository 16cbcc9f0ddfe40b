package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/journal/internal/journal"
	"github.com/iammorganparry/journal/internal/models"
	"github.com/iammorganparry/journal/internal/store"
)

func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, k := range []string{"DATABASE_URL", "JOURNAL_CONFIG", "JOURNAL_PASSCODE", "JOURNAL_TZ", "LOG_FORMAT", "PORT"} {
		t.Setenv(k, "")
	}
	t.Setenv("JOURNAL_DB_PATH", filepath.Join(dir, "journal.db"))
	t.Setenv("JOURNAL_EXPORT_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seed(t *testing.T, dir string) {
	t.Helper()
	db, err := store.Open(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	defer db.Close()

	svc := journal.NewService(store.NewRecordStore(db), dir, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	require.NoError(t, svc.Init(ctx))
	_, err = svc.Submit(ctx, models.KindDailyMemo, map[string]string{"date": "2024-01-01", "fact": "f"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, models.KindWeeklyReport, map[string]string{"theme": "t"})
	require.NoError(t, err)
}

func TestInitCommand(t *testing.T) {
	testEnv(t)

	out, err := run(t, "init")
	require.NoError(t, err)
	assert.Equal(t, "tables ready (sqlite)\n", out)
}

func TestStatsCommand(t *testing.T) {
	dir := testEnv(t)
	seed(t, dir)

	out, err := run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "daily_memo")
	assert.Regexp(t, `total\s+2\n$`, out)
}

func TestExportMarkdownCommand(t *testing.T) {
	dir := testEnv(t)
	seed(t, dir)

	out, err := run(t, "export", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Liberal Arts Practice Export\n")
	assert.Contains(t, out, "### テーマ: t (ID: 1)\n")

	path := filepath.Join(dir, "out.md")
	_, err = run(t, "export", "markdown", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestExportCSVCommand(t *testing.T) {
	dir := testEnv(t)
	seed(t, dir)
	target := filepath.Join(dir, "csv")

	out, err := run(t, "export", "csv", "--dir", target)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(target, "daily_memo.csv"))

	data, err := os.ReadFile(filepath.Join(target, "weekly_report.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n1,t,")
}

func TestBadConfigFails(t *testing.T) {
	testEnv(t)
	t.Setenv("LOG_FORMAT", "xml")

	_, err := run(t, "stats")
	assert.Error(t, err)
}

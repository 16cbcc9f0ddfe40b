package journal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/journal/internal/models"
	"github.com/iammorganparry/journal/internal/store"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupService(t *testing.T) (*Service, *store.RecordStore) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rs := store.NewRecordStore(db)
	svc := NewService(rs, t.TempDir(), time.UTC, testLogger)
	require.NoError(t, svc.Init(context.Background()))
	return svc, rs
}

// failingStore fails every operation.
type failingStore struct{ err error }

func (f failingStore) Init(context.Context) error { return f.err }
func (f failingStore) Insert(context.Context, models.Kind, map[string]string) (int64, error) {
	return 0, f.err
}
func (f failingStore) ListAll(context.Context, models.Kind) ([]models.Record, error) {
	return nil, f.err
}
func (f failingStore) Count(context.Context, models.Kind) (int, error) { return 0, f.err }

func TestSubmitTrimsFreeText(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	id, err := svc.Submit(ctx, models.KindWeeklyReport, map[string]string{
		"theme":     "  なぜ意見が分かれるのか \n",
		"evidence1": "\t一つ目  ",
	})
	require.NoError(t, err)

	got, err := svc.List(ctx, models.KindWeeklyReport)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "なぜ意見が分かれるのか", got[0].Get("theme"))
	assert.Equal(t, "一つ目", got[0].Get("evidence1"))
	assert.Equal(t, "", got[0].Get("counter"))
}

func TestSubmitDefaultsDailyDate(t *testing.T) {
	svc, _ := setupService(t)
	tokyo := time.FixedZone("JST", 9*60*60)
	svc.loc = tokyo
	svc.now = func() time.Time { return time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC) }

	_, err := svc.Submit(context.Background(), models.KindDailyMemo, map[string]string{"fact": "f"})
	require.NoError(t, err)

	got, err := svc.List(context.Background(), models.KindDailyMemo)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-06-01", got[0].Get("date"))
}

func TestSubmitValidation(t *testing.T) {
	svc, rs := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		kind   models.Kind
		fields map[string]string
		want   string
	}{
		{"blank theme", models.KindWeeklyReport, map[string]string{"theme": "   "}, "theme is required"},
		{"missing title", models.KindMonthlyPresentation, map[string]string{"problem": "p"}, "title is required"},
		{"bad date", models.KindDailyMemo, map[string]string{"date": "2024/01/01"}, "date must be a date in YYYY-MM-DD format"},
		{"unknown field", models.KindDailyMemo, map[string]string{"date": "2024-01-01", "mood": "ok"}, "mood is not a field of daily_memo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.kind, tt.fields)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.want)

			n, err := rs.Count(ctx, tt.kind)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(failingStore{err: boom}, t.TempDir(), time.UTC, testLogger)

	_, err := svc.Submit(context.Background(), models.KindWeeklyReport, map[string]string{"theme": "x"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsValidation(err))
}

func TestListFailureReturnsEmpty(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(failingStore{err: boom}, t.TempDir(), time.UTC, testLogger)

	got, err := svc.List(context.Background(), models.KindDailyMemo)
	assert.ErrorIs(t, err, boom)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInitFailureIsReported(t *testing.T) {
	boom := errors.New("no route to host")
	svc := NewService(failingStore{err: boom}, t.TempDir(), time.UTC, testLogger)
	assert.ErrorIs(t, svc.Init(context.Background()), boom)
}

func TestDashboard(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(ctx, models.KindDailyMemo, map[string]string{"date": "2024-01-01"})
		require.NoError(t, err)
	}
	_, err := svc.Submit(ctx, models.KindMonthlyPresentation, map[string]string{"title": "t"})
	require.NoError(t, err)

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, stats.Counts, 3)
	assert.Equal(t, 2, stats.Counts[0].Count)
	assert.Equal(t, 0, stats.Counts[1].Count)
	assert.Equal(t, 1, stats.Counts[2].Count)
	assert.Equal(t, 3, stats.Total)

	boom := errors.New("down")
	failing := NewService(failingStore{err: boom}, t.TempDir(), time.UTC, testLogger)
	stats, err = failing.Dashboard(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, stats.Counts, 3)
	assert.Zero(t, stats.Total)
}

func TestExportMarkdown(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	md, err := svc.ExportMarkdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, "# Liberal Arts Practice Export\n", md)

	_, err = svc.Submit(ctx, models.KindDailyMemo, map[string]string{
		"date": "2024-01-01", "fact": "f", "question": "q", "conclusion": "c", "next_topic": "n",
	})
	require.NoError(t, err)

	md, err = svc.ExportMarkdown(ctx)
	require.NoError(t, err)
	assert.Contains(t, md, "### 2024-01-01 (ID: 1)\n")
	assert.Contains(t, md, "- 次に調べたいこと: n\n")

	again, err := svc.ExportMarkdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, md, again)
}

func TestWriteAndOpenCSVFiles(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.OpenCSV(models.KindDailyMemo)
	assert.ErrorIs(t, err, ErrExportMissing)
	assert.Empty(t, svc.AvailableCSV())

	_, err = svc.Submit(ctx, models.KindDailyMemo, map[string]string{"date": "2024-01-01", "fact": "f"})
	require.NoError(t, err)

	paths, err := svc.WriteCSVFiles(ctx)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, models.Kinds(), svc.AvailableCSV())

	f, err := svc.OpenCSV(models.KindDailyMemo)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,date,fact,question,conclusion,next_topic,created_at", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,2024-01-01,f,,,,"), lines[1])

	_, err = os.Stat(filepath.Join(svc.exportDir, "weekly_report.csv"))
	assert.NoError(t, err)
}

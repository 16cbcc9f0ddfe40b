package export

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/journal/internal/models"
	"github.com/iammorganparry/journal/internal/store"
)

type fakeLister struct {
	records map[models.Kind][]models.Record
	err     error
}

func (f *fakeLister) ListAll(_ context.Context, kind models.Kind) ([]models.Record, error) {
	if f.err != nil {
		return []models.Record{}, f.err
	}
	return f.records[kind], nil
}

func setupStore(t *testing.T) *store.RecordStore {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := store.NewRecordStore(db)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestMarkdownEmptyStore(t *testing.T) {
	out, err := Markdown(context.Background(), &fakeLister{})
	require.NoError(t, err)
	assert.Equal(t, "# Liberal Arts Practice Export\n", out)
}

func TestMarkdownSingleDailyMemo(t *testing.T) {
	src := &fakeLister{records: map[models.Kind][]models.Record{
		models.KindDailyMemo: {{
			ID:   1,
			Kind: models.KindDailyMemo,
			Fields: map[string]string{
				"date": "2024-01-01", "fact": "f", "question": "q", "conclusion": "c", "next_topic": "n",
			},
		}},
	}}

	out, err := Markdown(context.Background(), src)
	require.NoError(t, err)

	want := "# Liberal Arts Practice Export\n\n" +
		"## Daily Memos\n\n" +
		"### 2024-01-01 (ID: 1)\n\n" +
		"- 事実: f\n\n" +
		"- 問い: q\n\n" +
		"- 結論: c\n\n" +
		"- 次に調べたいこと: n\n\n"
	assert.Equal(t, want, out)
	assert.NotContains(t, out, "Weekly Reports")
	assert.NotContains(t, out, "Monthly Presentations")
}

func TestMarkdownAllKindsInFixedOrder(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, models.KindMonthlyPresentation, map[string]string{"title": "SNS", "problem": "p"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, models.KindWeeklyReport, map[string]string{"theme": "news", "counter": "x"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, models.KindDailyMemo, map[string]string{"date": "2024-02-02"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, models.KindDailyMemo, map[string]string{"date": "2024-02-03"})
	require.NoError(t, err)

	out, err := Markdown(ctx, s)
	require.NoError(t, err)

	daily := strings.Index(out, "## Daily Memos")
	weekly := strings.Index(out, "## Weekly Reports")
	monthly := strings.Index(out, "## Monthly Presentations")
	require.True(t, daily > 0 && weekly > daily && monthly > weekly, out)

	assert.Less(t, strings.Index(out, "### 2024-02-03 (ID: 2)"), strings.Index(out, "### 2024-02-02 (ID: 1)"))
	assert.Contains(t, out, "### テーマ: news (ID: 1)\n")
	assert.Contains(t, out, "- 反対意見/反論: x\n")
	assert.Contains(t, out, "### タイトル: SNS (ID: 1)\n")
	assert.Contains(t, out, "- 問題提起: p\n")
	assert.Contains(t, out, "- まとめ・学び・次の問い: \n")
}

func TestMarkdownEmptyOptionalFields(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, models.KindWeeklyReport, map[string]string{"theme": "only theme", "summary": ""})
	require.NoError(t, err)

	out, err := Markdown(ctx, s)
	require.NoError(t, err)

	for _, label := range []string{"結論", "根拠1", "根拠2", "根拠3", "反対意見/反論", "まとめ"} {
		assert.Contains(t, out, "- "+label+": \n")
	}
	assert.NotContains(t, out, "<nil>")
	assert.NotContains(t, out, "None")
}

func TestMarkdownIsRepeatable(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, models.KindDailyMemo, map[string]string{"date": "2024-01-01", "fact": "f"})
	require.NoError(t, err)

	first, err := Markdown(ctx, s)
	require.NoError(t, err)
	second, err := Markdown(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMarkdownListError(t *testing.T) {
	boom := errors.New("backend down")
	_, err := Markdown(context.Background(), &fakeLister{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestWriteCSV(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, models.KindWeeklyReport, map[string]string{"theme": "first", "summary": "line1\nline2"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, models.KindWeeklyReport, map[string]string{"theme": "second, with comma"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(ctx, &buf, s, models.KindWeeklyReport))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "id,theme,conclusion,evidence1,evidence2,evidence3,counter,summary,created_at\n"), out)
	assert.Less(t, strings.Index(out, "1,first"), strings.Index(out, `2,"second, with comma"`))
	assert.Contains(t, out, "\"line1\nline2\"")
}

func TestWriteCSVEmptyKindWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(context.Background(), &buf, &fakeLister{}, models.KindDailyMemo))
	assert.Equal(t, "id,date,fact,question,conclusion,next_topic,created_at\n", buf.String())
}

func TestWriteCSVUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteCSV(context.Background(), &buf, &fakeLister{}, models.Kind("nope")))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "monthly_presentation.csv", FileName(models.KindMonthlyPresentation))
}

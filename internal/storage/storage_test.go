package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/rohankatakam/insightify/internal/rollup"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDaily(date string, commits int) *models.DailyRecord {
	ts := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return &models.DailyRecord{
		Date:         date,
		TotalCommits: commits,
		Repositories: map[string]*models.RepositoryDailyStats{
			"api": {
				CommitsCount:  commits,
				Language:      "Go",
				LanguagesUsed: map[string]int{"Go": commits},
				URL:           "https://github.com/octo/api",
				Commits:       []models.CommitRef{{SHA: "abc1234", Message: "work", Timestamp: ts}},
			},
		},
		Languages:      map[string]int{"Go": commits},
		CommitsByHour:  map[int]int{10: commits},
		CommitMessages: []models.CommitMessage{{Repo: "api", SHA: "abc1234", Message: "work", Timestamp: ts}},
		TimeRange:      models.TimeRange{Start: ts.Add(-24 * time.Hour), End: ts},
		EstimatedHours: 1.5,
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.GetDaily(ctx, "2024-01-15")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveDaily(ctx, sampleDaily("2024-01-15", 3)))
	require.NoError(t, store.SaveDaily(ctx, sampleDaily("2024-01-02", 1)))
	require.NoError(t, store.SaveDaily(ctx, sampleDaily("2024-02-01", 7)))

	// second write of the same day replaces the first
	updated := sampleDaily("2024-01-15", 3)
	updated.AIInsights = "Solid day."
	require.NoError(t, store.SaveDaily(ctx, updated))

	got, err := store.GetDaily(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "Solid day.", got.AIInsights)
	assert.Equal(t, 3, got.TotalCommits)
	assert.Equal(t, 3, got.CommitsByHour[10])
	assert.Equal(t, "Go", got.Repositories["api"].Language)
	assert.True(t, updated.TimeRange.End.Equal(got.TimeRange.End))

	days, err := store.ListDays(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02", "2024-01-15"}, days)

	all, err := store.ListDays(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = store.GetMonthly(ctx, "2024-01")
	assert.ErrorIs(t, err, ErrNotFound)

	monthly := rollup.AggregateMonth(rollup.Month{Year: 2024, Month: time.January}, []*models.DailyRecord{got})
	monthly.AIInsights = "Great month."
	monthly.ChartPaths = []string{"charts/daily_commits_2024-01.svg"}
	require.NoError(t, store.SaveMonthly(ctx, monthly))

	back, err := store.GetMonthly(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, monthly, back)

	assert.Error(t, store.SaveDaily(ctx, sampleDaily("15/01/2024", 1)), "malformed keys are rejected")

	mismatched := sampleDaily("2024-01-16", 2)
	mismatched.TotalCommits = 5
	assert.Error(t, store.SaveDaily(ctx, mismatched), "totals must match the repository sum")
	_, err = store.GetDaily(ctx, "2024-01-16")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotEmpty(t, store.Describe())
}

func TestFileStore(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := filepath.Join(t.TempDir(), "data")
	store, err := NewFileStore(dir, logger)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)

	_, err = os.Stat(filepath.Join(dir, "2024-01-15.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "monthly_report_2024-01.json"))
	assert.NoError(t, err)

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "atomic writes must not leave temp files")
}

func TestFileStore_CorruptRecord(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	store, err := NewFileStore(dir, logger)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-03.json"), []byte(`{"date": "2024-01-03", "total_commits":`), 0644))

	_, err = store.GetDaily(context.Background(), "2024-01-03")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBoltStore(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "nested", "insightify.db"), logger)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "insightify.sqlite"), logger)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	logger, _ := test.NewNullLogger()
	store, err := NewPostgresStore(context.Background(), dsn, logger)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.db.Exec(`DELETE FROM daily_records WHERE date LIKE '2024-%'; DELETE FROM monthly_reports WHERE month LIKE '2024-%'`)
	require.NoError(t, err)

	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(ctx, config.StorageConfig{Type: "file", DataDirectory: filepath.Join(dir, "data")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = Open(ctx, config.StorageConfig{Type: "bolt", BoltPath: filepath.Join(dir, "b.db")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, config.StorageConfig{Type: "mongo"}, logger)
	assert.Error(t, err)
}

func TestLoadMonth(t *testing.T) {
	logger, hook := test.NewNullLogger()
	dir := t.TempDir()
	store, err := NewFileStore(dir, logger)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.SaveDaily(ctx, sampleDaily("2024-01-20", 2)))
	require.NoError(t, store.SaveDaily(ctx, sampleDaily("2024-01-05", 1)))
	require.NoError(t, store.SaveDaily(ctx, sampleDaily("2024-02-01", 9)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-10.json"), []byte("not json"), 0644))

	records, err := LoadMonth(ctx, store, rollup.Month{Year: 2024, Month: time.January}, logger)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-01-05", records[0].Date)
	assert.Equal(t, "2024-01-20", records[1].Date)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "2024-01-10", hook.LastEntry().Data["date"])

	empty, err := LoadMonth(ctx, store, rollup.Month{Year: 2023, Month: time.June}, logger)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

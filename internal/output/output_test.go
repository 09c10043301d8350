package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rohankatakam/insightify/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyRecord() *models.MonthlyRecord {
	return &models.MonthlyRecord{
		Month:            "January 2024",
		MonthStr:         "2024-01",
		TotalCommits:     42,
		TotalHours:       30.5,
		ActiveDays:       12,
		DaysLoaded:       14,
		AvgCommitsPerDay: 3.5,
		TotalRepos:       3,
		LongestStreak:    6,
		Languages:        map[string]int{"Go": 30, "Python": 12},
		TopRepositories:  []string{"api", "<script>"},
		AIInsights:       "Consistent month & steady output.",
		ChartPaths:       []string{"charts/daily_commits_2024-01.svg"},
	}
}

func TestPlainFormatter_Daily(t *testing.T) {
	var buf bytes.Buffer
	record := &models.DailyRecord{
		Date:           "2024-01-15",
		TotalCommits:   5,
		Repositories:   map[string]*models.RepositoryDailyStats{"api": {}, "web": {}},
		Languages:      map[string]int{"Go": 3, "TypeScript": 2},
		EstimatedHours: 2.25,
	}

	require.NoError(t, NewFormatter(StylePlain).Daily(&buf, record, "data/2024-01-15.json"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Daily summary\n"))
	assert.Contains(t, out, "Total commits:    5")
	assert.Contains(t, out, "Go (3), TypeScript (2)")
	assert.Contains(t, out, "data/2024-01-15.json")
	assert.NotContains(t, out, "\x1b[")
}

func TestPlainFormatter_Monthly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(StylePlain).Monthly(&buf, monthlyRecord(), "data/monthly_report_2024-01.json"))

	out := buf.String()
	assert.Contains(t, out, "January 2024")
	assert.Contains(t, out, "12/14")
	assert.Contains(t, out, "6 days")
}

func TestStyledFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(StyleStyled).Monthly(&buf, monthlyRecord(), "bolt.db"))
	assert.Contains(t, buf.String(), "January 2024")
	assert.Contains(t, buf.String(), "Monthly summary")
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	rows := []StatusRow{
		{Date: "2024-01-09", Commits: 2, Hours: 1.5},
		{Date: "2024-01-02", Commits: 3, Hours: 2},
	}
	require.NoError(t, WriteStatus(&buf, "2024-01", rows, false))

	out := buf.String()
	assert.Contains(t, out, "2024-01: 2 stored days")
	assert.Less(t, strings.Index(out, "2024-01-02"), strings.Index(out, "2024-01-09"))
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "Monthly report: not generated")
}

func TestMonthlyHTML(t *testing.T) {
	generated := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	html, err := MonthlyHTML(monthlyRecord(), generated)
	require.NoError(t, err)

	assert.Contains(t, html, "<div class=\"stat-value\">42</div>")
	assert.Contains(t, html, "<div class=\"stat-value\">30.5</div>")
	assert.Contains(t, html, "<li><span>Go</span><strong>30 commits</strong></li>")
	assert.Less(t, strings.Index(html, ">Go<"), strings.Index(html, ">Python<"))
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Consistent month &amp; steady output.")
	assert.Contains(t, html, "Your Personal Coding Analytics")
	assert.Contains(t, html, "Generated on 2024-02-01 09:00:00")
	assert.NotContains(t, html, "<img")
}

func TestMonthlyHTML_OmitsEmptySections(t *testing.T) {
	html, err := MonthlyHTML(&models.MonthlyRecord{Month: "June 2023", MonthStr: "2023-06"}, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, html, "Language Breakdown")
	assert.NotContains(t, html, "Top Repositories")
}

func TestWriteMonthlyHTML(t *testing.T) {
	root := t.TempDir()
	record := monthlyRecord()
	record.ChartPaths = []string{filepath.Join(root, "charts", "daily_commits_2024-01.svg")}

	path, err := WriteMonthlyHTML(filepath.Join(root, "reports"), record, time.Now())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "reports", "monthly_report_2024-01.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<img src="../charts/daily_commits_2024-01.svg"`)
}

package rollup

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name string
		days map[string]int
		want int
	}{
		{"empty", map[string]int{}, 0},
		{"single active day", map[string]int{"2024-01-01": 5}, 1},
		{"single idle day", map[string]int{"2024-01-01": 0}, 0},
		{"zero day breaks", map[string]int{"2024-01-01": 1, "2024-01-02": 1, "2024-01-03": 0, "2024-01-04": 1}, 2},
		{"absent day breaks", map[string]int{"2024-01-01": 1, "2024-01-03": 1, "2024-01-04": 1}, 2},
		{"month boundary", map[string]int{"2024-01-30": 2, "2024-01-31": 1, "2024-02-01": 4}, 3},
		{"leap day", map[string]int{"2024-02-28": 1, "2024-02-29": 1, "2024-03-01": 1}, 3},
		{"garbage breaks the run", map[string]int{"2024-01-01": 1, "2024-01-02": 1, "not-a-date": 3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LongestStreak(tt.days))
		})
	}
}

func TestFillMissingDays(t *testing.T) {
	days := map[string]int{"2024-01-01": 1, "2024-01-04": 2, "bogus": 1}
	filled := FillMissingDays(days)

	assert.Equal(t, map[string]int{
		"2024-01-01": 1, "2024-01-02": 0, "2024-01-03": 0, "2024-01-04": 2, "bogus": 1,
	}, filled)
	assert.Len(t, days, 3, "input must not change")

	// filling never changes the streak
	sparse := map[string]int{"2024-01-01": 1, "2024-01-03": 1, "2024-01-04": 1, "2024-01-09": 0}
	assert.Equal(t, LongestStreak(sparse), LongestStreak(FillMissingDays(sparse)))
	assert.Equal(t, 1, LongestStreak(FillMissingDays(map[string]int{"2024-01-01": 1, "2024-01-03": 1})))
	assert.Empty(t, FillMissingDays(nil))
}

func TestWeeklyBuckets(t *testing.T) {
	weeks := WeeklyBuckets(map[string]int{
		"2024-01-01": 2, // Monday, ISO week 1
		"2024-01-07": 3, // Sunday, still week 1
		"2024-01-08": 4, // week 2
		"2024/01/09": 9,
	})
	assert.Equal(t, map[string]int{"Week 1": 5, "Week 2": 4}, weeks)

	// 2021-01-01 belongs to ISO week 53 of 2020
	assert.Equal(t, map[string]int{"Week 53": 1}, WeeklyBuckets(map[string]int{"2021-01-01": 1}))
}

func TestMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02", m.Key())
	assert.Equal(t, "February 2024", m.Label())
	assert.Len(t, m.Days(), 29)
	assert.Equal(t, "2024-02-01", m.Days()[0])

	_, err = ParseMonth("Feb 2024")
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
	assert.False(t, errors.IsFatal(err))

	prev := PreviousMonth(time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, Month{Year: 2024, Month: time.December}, prev)
}

func daily(date string, commits int, hours float64, repos map[string]int) *models.DailyRecord {
	record := &models.DailyRecord{
		Date:           date,
		TotalCommits:   commits,
		EstimatedHours: hours,
		Repositories:   make(map[string]*models.RepositoryDailyStats),
		Languages:      make(map[string]int),
	}
	for name, n := range repos {
		record.Repositories[name] = &models.RepositoryDailyStats{CommitsCount: n}
		record.Languages["Go"] += n
	}
	return record
}

func TestAggregateMonth(t *testing.T) {
	month := Month{Year: 2024, Month: time.January}
	records := []*models.DailyRecord{
		daily("2024-01-01", 3, 1.25, map[string]int{"api": 2, "web": 1}),
		daily("2024-01-02", 0, 0, nil),
		daily("2024-01-03", 5, 2.5, map[string]int{"web": 4, "cli": 1}),
	}

	got := AggregateMonth(month, records)

	assert.Equal(t, "January 2024", got.Month)
	assert.Equal(t, "2024-01", got.MonthStr)
	assert.Equal(t, 8, got.TotalCommits)
	assert.Equal(t, 3.75, got.TotalHours)
	assert.Equal(t, 2, got.ActiveDays)
	assert.Equal(t, 2.67, got.AvgCommitsPerDay)
	assert.Equal(t, 3, got.TotalRepos)
	assert.Equal(t, map[string]int{"api": 2, "web": 5, "cli": 1}, got.Repositories)
	assert.Equal(t, []string{"web", "api", "cli"}, got.TopRepositories)
	assert.Equal(t, map[string]int{"Go": 8}, got.Languages)
	assert.Equal(t, map[string]int{"2024-01-01": 3, "2024-01-02": 0, "2024-01-03": 5}, got.CommitsByDay)
	assert.Equal(t, map[string]int{"Week 1": 8}, got.CommitsByWeek)
	assert.Equal(t, 1, got.LongestStreak)
	assert.Equal(t, 3, got.DaysLoaded)
	require.Len(t, got.DailyBreakdown, 3)
	assert.Equal(t, models.DailyBreakdown{Date: "2024-01-03", Commits: 5, Hours: 2.5}, got.DailyBreakdown[2])

	assert.LessOrEqual(t, got.LongestStreak, got.ActiveDays)
}

func TestAggregateMonth_Empty(t *testing.T) {
	got := AggregateMonth(Month{Year: 2024, Month: time.March}, nil)

	assert.Equal(t, 0, got.ActiveDays)
	assert.Equal(t, 0.0, got.AvgCommitsPerDay)
	assert.Equal(t, 0, got.LongestStreak)
	assert.Empty(t, got.TopRepositories)
	assert.NotNil(t, got.TopRepositories)
}

func TestAggregateMonth_IdleDayKeepsEmptyTopRepositories(t *testing.T) {
	got := AggregateMonth(Month{Year: 2024, Month: time.March}, []*models.DailyRecord{
		daily("2024-03-01", 0, 0, map[string]int{}),
	})

	assert.Equal(t, 1, got.DaysLoaded)
	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"top_repositories":[]`)
}

func TestAggregateMonth_SkipsNilRecords(t *testing.T) {
	month := Month{Year: 2024, Month: time.January}
	got := AggregateMonth(month, []*models.DailyRecord{
		daily("2024-01-01", 4, 1, map[string]int{"api": 4}),
		nil,
		daily("2024-01-02", 2, 1, map[string]int{"api": 2}),
	})

	assert.Equal(t, 2, got.DaysLoaded)
	assert.Equal(t, 6, got.TotalCommits)
	assert.Equal(t, 3.0, got.AvgCommitsPerDay)
	assert.Len(t, got.DailyBreakdown, 2)
}

func TestAggregateMonth_MissingDayBreaksStreak(t *testing.T) {
	month := Month{Year: 2024, Month: time.January}
	records := []*models.DailyRecord{
		daily("2024-01-01", 1, 0.5, map[string]int{"api": 1}),
		daily("2024-01-02", 1, 0.5, map[string]int{"api": 1}),
		daily("2024-01-04", 1, 0.5, map[string]int{"api": 1}),
		daily("2024-01-05", 1, 0.5, map[string]int{"api": 1}),
		daily("2024-01-06", 1, 0.5, map[string]int{"api": 1}),
	}

	got := AggregateMonth(month, records)
	assert.Equal(t, 3, got.LongestStreak)
	assert.NotContains(t, got.CommitsByDay, "2024-01-03", "missing days are not invented")
}

func TestAggregateMonth_TopRepositoriesCappedAndStable(t *testing.T) {
	month := Month{Year: 2024, Month: time.January}
	var records []*models.DailyRecord
	for i := 0; i < 12; i++ {
		repos := map[string]int{}
		for j := 0; j <= i; j++ {
			repos[fmt.Sprintf("repo-%02d", j)] = 1
		}
		records = append(records, daily(fmt.Sprintf("2024-01-%02d", i+1), len(repos), 1, repos))
	}

	first := AggregateMonth(month, records)
	require.Len(t, first.TopRepositories, TopRepositoriesLimit)
	assert.Equal(t, "repo-00", first.TopRepositories[0])
	assert.Equal(t, "repo-09", first.TopRepositories[9])
	for i := 1; i < len(first.TopRepositories); i++ {
		prev := first.Repositories[first.TopRepositories[i-1]]
		cur := first.Repositories[first.TopRepositories[i]]
		assert.GreaterOrEqual(t, prev, cur)
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, first.TopRepositories, AggregateMonth(month, records).TopRepositories)
	}
}

func TestAggregateMonth_TiesKeepFirstSeenOrder(t *testing.T) {
	month := Month{Year: 2024, Month: time.January}
	records := []*models.DailyRecord{
		daily("2024-01-01", 1, 0.5, map[string]int{"zeta": 1}),
		daily("2024-01-02", 2, 0.5, map[string]int{"alpha": 1, "mid": 1}),
	}

	got := AggregateMonth(month, records)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, got.TopRepositories)
}

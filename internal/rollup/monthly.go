package rollup

import (
	"fmt"
	"sort"
	"time"

	"github.com/rohankatakam/insightify/internal/activity"
	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/models"
)

// TopRepositoriesLimit caps top_repositories.
const TopRepositoriesLimit = 10

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth reads "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, errors.ParseErrorf("invalid month %q, expected YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// PreviousMonth returns the month before the one containing now.
func PreviousMonth(now time.Time) Month {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prev := first.AddDate(0, -1, 0)
	return Month{Year: prev.Year(), Month: prev.Month()}
}

// Key is the "YYYY-MM" form.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label is the "January 2025" form.
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// Days lists every date of the month as "YYYY-MM-DD".
func (m Month) Days() []string {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	var days []string
	for d := first; d.Month() == m.Month; d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}

// AggregateMonth folds the stored daily records of one month into a
// monthly record. Records are expected in date order.
func AggregateMonth(month Month, records []*models.DailyRecord) *models.MonthlyRecord {
	out := &models.MonthlyRecord{
		Month:           month.Label(),
		MonthStr:        month.Key(),
		Languages:       make(map[string]int),
		Repositories:    make(map[string]int),
		CommitsByDay:    make(map[string]int),
		CommitsByWeek:   make(map[string]int),
		DailyBreakdown:  []models.DailyBreakdown{},
		TopRepositories: []string{},
		ChartPaths:      []string{},
	}

	languages := models.NewTally[string]()
	repos := models.NewTally[string]()
	totalHours := 0.0

	for _, day := range records {
		if day == nil {
			continue
		}
		out.DaysLoaded++
		out.TotalCommits += day.TotalCommits
		totalHours += day.EstimatedHours
		if day.TotalCommits > 0 {
			out.ActiveDays++
		}

		for _, lang := range sortedKeys(day.Languages) {
			languages.Add(lang, day.Languages[lang])
		}
		for _, name := range sortedKeys(day.Repositories) {
			repos.Add(name, day.Repositories[name].CommitsCount)
		}

		out.CommitsByDay[day.Date] += day.TotalCommits
		out.DailyBreakdown = append(out.DailyBreakdown, models.DailyBreakdown{
			Date:    day.Date,
			Commits: day.TotalCommits,
			Hours:   day.EstimatedHours,
		})
	}

	out.TotalHours = activity.Round2(totalHours)
	out.Languages = languages.Map()
	out.Repositories = repos.Map()
	out.TotalRepos = repos.Len()
	out.TopRepositories = repos.Top(TopRepositoriesLimit)
	out.CommitsByWeek = WeeklyBuckets(out.CommitsByDay)

	if out.DaysLoaded > 0 {
		out.AvgCommitsPerDay = activity.Round2(float64(out.TotalCommits) / float64(out.DaysLoaded))
	}

	out.LongestStreak = LongestStreak(out.CommitsByDay)

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

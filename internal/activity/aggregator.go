package activity

import (
	"time"

	"github.com/rohankatakam/insightify/internal/models"
)

// AggregateDay folds the collected activity into one daily record. Commits
// outside window are ignored and repositories left with none are omitted.
// Entries sharing a repository name are merged into one.
// Hours of day are taken in loc and the record date is window.End in loc.
func AggregateDay(activity []RepositoryActivity, window Window, loc *time.Location) *models.DailyRecord {
	if loc == nil {
		loc = time.UTC
	}

	record := &models.DailyRecord{
		Date:           window.End.In(loc).Format("2006-01-02"),
		Repositories:   make(map[string]*models.RepositoryDailyStats),
		Languages:      make(map[string]int),
		CommitsByHour:  make(map[int]int),
		CommitMessages: []models.CommitMessage{},
		TimeRange:      models.TimeRange{Start: window.Start.In(loc), End: window.End.In(loc)},
	}

	languages := models.NewTally[string]()
	hours := models.NewTally[int]()
	var timestamps []time.Time

	for _, ra := range activity {
		var commits []models.Commit
		for _, c := range ra.Commits {
			if window.Contains(c.Timestamp) {
				commits = append(commits, c)
			}
		}
		if len(commits) == 0 {
			continue
		}

		stats := &models.RepositoryDailyStats{
			CommitsCount:  len(commits),
			Language:      PrimaryLanguage(ra.Repo.Language),
			LanguagesUsed: ClassifyRepository(commits, ra.Repo.Language),
			URL:           ra.Repo.URL,
			Commits:       make([]models.CommitRef, 0, len(commits)),
		}

		for _, c := range commits {
			sha := ShortSHA(c.SHA)
			ts := c.Timestamp.In(loc)
			stats.Commits = append(stats.Commits, models.CommitRef{
				SHA: sha, Message: c.Message, Timestamp: ts, URL: c.URL,
			})
			record.CommitMessages = append(record.CommitMessages, models.CommitMessage{
				Repo: ra.Repo.Name, SHA: sha, Message: c.Message, Timestamp: ts, URL: c.URL,
			})
			hours.Inc(ts.Hour())
			timestamps = append(timestamps, c.Timestamp)
		}

		for _, lang := range models.RankMap(stats.LanguagesUsed) {
			languages.Add(lang.Key, lang.Count)
		}

		record.Repositories[ra.Repo.Name] = mergeStats(record.Repositories[ra.Repo.Name], stats)
		record.TotalCommits += stats.CommitsCount
	}

	record.Languages = languages.Map()
	record.CommitsByHour = hours.Map()
	record.EstimatedHours = EstimateHours(timestamps)
	return record
}

// mergeStats folds next into prev, keeping prev's language and URL unless
// they are empty.
func mergeStats(prev, next *models.RepositoryDailyStats) *models.RepositoryDailyStats {
	if prev == nil {
		return next
	}
	prev.CommitsCount += next.CommitsCount
	prev.Commits = append(prev.Commits, next.Commits...)
	if prev.LanguagesUsed == nil {
		prev.LanguagesUsed = make(map[string]int)
	}
	for lang, n := range next.LanguagesUsed {
		prev.LanguagesUsed[lang] += n
	}
	if prev.Language == "" {
		prev.Language = next.Language
	}
	if prev.URL == "" {
		prev.URL = next.URL
	}
	return prev
}

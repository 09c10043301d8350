package models

import (
	"time"
)

// Repository is a source repository owned by the tracked user.
type Repository struct {
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	URL      string `json:"url"`
	Language string `json:"language"` // declared primary language, may be empty
	Private  bool   `json:"private"`
}

// Commit is one commit event authored by the tracked user.
type Commit struct {
	Repo      string    `json:"repo"`
	SHA       string    `json:"sha"`
	Message   string    `json:"message"` // first line only
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`

	// Files holds the changed paths; nil means the detail was unavailable.
	Files []string `json:"-"`
}

// CommitRef is a commit as listed under a repository in a daily record.
type CommitRef struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
}

// RepositoryDailyStats is one active repository's slice of a day.
type RepositoryDailyStats struct {
	CommitsCount  int            `json:"commits_count"`
	Language      string         `json:"language"`
	LanguagesUsed map[string]int `json:"languages_used"`
	URL           string         `json:"url"`
	Commits       []CommitRef    `json:"commits"`
}

// CommitMessage is the flattened per-day commit log entry.
type CommitMessage struct {
	Repo      string    `json:"repo"`
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
}

// TimeRange is the collection window of a daily record.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DailyRecord is the persisted artifact of one daily run.
type DailyRecord struct {
	Date           string                           `json:"date"`
	TotalCommits   int                              `json:"total_commits"`
	Repositories   map[string]*RepositoryDailyStats `json:"repositories"`
	Languages      map[string]int                   `json:"languages"`
	CommitsByHour  map[int]int                      `json:"commits_by_hour"`
	CommitMessages []CommitMessage                  `json:"commit_messages"`
	TimeRange      TimeRange                        `json:"time_range"`
	EstimatedHours float64                          `json:"estimated_hours"`
	AIInsights     string                           `json:"ai_insights,omitempty"`
}

// RepositoryCommits sums commit counts across repositories.
func (d *DailyRecord) RepositoryCommits() int {
	total := 0
	for _, repo := range d.Repositories {
		total += repo.CommitsCount
	}
	return total
}

// DailyBreakdown is one row of the monthly per-day table.
type DailyBreakdown struct {
	Date    string  `json:"date"`
	Commits int     `json:"commits"`
	Hours   float64 `json:"hours"`
}

// MonthlyRecord is the persisted artifact of one monthly run.
type MonthlyRecord struct {
	Month            string           `json:"month"`     // "January 2025"
	MonthStr         string           `json:"month_str"` // "2025-01"
	TotalCommits     int              `json:"total_commits"`
	TotalHours       float64          `json:"total_hours"`
	ActiveDays       int              `json:"active_days"`
	Languages        map[string]int   `json:"languages"`
	Repositories     map[string]int   `json:"repositories"`
	CommitsByDay     map[string]int   `json:"commits_by_day"`
	CommitsByWeek    map[string]int   `json:"commits_by_week"`
	DailyBreakdown   []DailyBreakdown `json:"daily_breakdown"`
	AvgCommitsPerDay float64          `json:"avg_commits_per_day"`
	TotalRepos       int              `json:"total_repos"`
	TopRepositories  []string         `json:"top_repositories"`
	LongestStreak    int              `json:"longest_streak"`
	AIInsights       string           `json:"ai_insights"`
	ChartPaths       []string         `json:"chart_paths"`

	// DaysLoaded is the number of stored daily records folded in.
	DaysLoaded int `json:"days_loaded"`
}

// UserProfile is the public profile of the tracked user.
type UserProfile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	HTMLURL     string `json:"html_url"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

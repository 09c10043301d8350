package llm

import (
	"fmt"
	"strings"

	"github.com/rohankatakam/insightify/internal/models"
)

// Output budgets per report kind, in tokens.
const (
	DailyMaxTokens   = 1000
	MonthlyMaxTokens = 2000
)

// MaxTokens returns the output budget for kind.
func MaxTokens(kind models.ReportKind) int {
	if kind == models.KindMonthly {
		return MonthlyMaxTokens
	}
	return DailyMaxTokens
}

// BuildPrompt renders the prompt for either report kind.
func BuildPrompt(report models.Report) (string, error) {
	if err := report.Validate(); err != nil {
		return "", err
	}
	if report.Kind == models.KindMonthly {
		return BuildMonthlyPrompt(report.Monthly), nil
	}
	return BuildDailyPrompt(report.Daily), nil
}

// BuildDailyPrompt renders the analyst prompt for one day of activity.
func BuildDailyPrompt(d *models.DailyRecord) string {
	languages := models.RankMap(d.Languages)
	names := make([]string, 0, len(languages))
	for _, l := range languages {
		names = append(names, l.Key)
	}
	used := "None"
	if len(names) > 0 {
		used = strings.Join(names, ", ")
	}

	var b strings.Builder
	b.WriteString("As a developer productivity analyst, analyze this developer's daily GitHub activity and provide concise, actionable insights.\n\n")
	fmt.Fprintf(&b, "**Daily Summary (%s)**\n", orNA(d.Date))
	fmt.Fprintf(&b, "- Total Commits: %d\n", d.TotalCommits)
	fmt.Fprintf(&b, "- Estimated Coding Time: %v hours\n", d.EstimatedHours)
	fmt.Fprintf(&b, "- Repositories Active: %d\n", len(d.Repositories))
	fmt.Fprintf(&b, "- Languages Used: %s\n\n", used)
	b.WriteString("**Language Breakdown:**\n")
	b.WriteString(formatDict(d.Languages))
	b.WriteString("\n\n**Repository Activity:**\n")
	b.WriteString(formatRepos(d.Repositories))
	b.WriteString("\n\nPlease provide:\n")
	b.WriteString("1. A brief productivity summary (2-3 sentences)\n")
	b.WriteString("2. Key highlights or patterns observed\n")
	b.WriteString("3. One suggestion for improvement or focus area\n\n")
	b.WriteString("Keep the response concise and motivating.")
	return b.String()
}

// BuildMonthlyPrompt renders the analyst prompt for a month rollup.
func BuildMonthlyPrompt(m *models.MonthlyRecord) string {
	var b strings.Builder
	b.WriteString("As a developer productivity analyst, analyze this developer's monthly GitHub activity and provide comprehensive insights.\n\n")
	fmt.Fprintf(&b, "**Monthly Summary (%s)**\n", orNA(m.Month))
	fmt.Fprintf(&b, "- Total Commits: %d\n", m.TotalCommits)
	fmt.Fprintf(&b, "- Total Coding Time: %v hours\n", m.TotalHours)
	fmt.Fprintf(&b, "- Active Days: %d\n", m.ActiveDays)
	fmt.Fprintf(&b, "- Longest Streak: %d days\n", m.LongestStreak)
	fmt.Fprintf(&b, "- Average Commits/Day: %v\n\n", m.AvgCommitsPerDay)
	b.WriteString("**Language Distribution:**\n")
	b.WriteString(formatDict(m.Languages))
	b.WriteString("\n\n**Top Repositories:**\n")
	b.WriteString(formatList(m.TopRepositories))
	b.WriteString("\n\n**Weekly Breakdown:**\n")
	b.WriteString(formatDict(m.CommitsByWeek))
	b.WriteString("\n\nPlease provide:\n")
	b.WriteString("1. Overall productivity assessment (3-4 sentences)\n")
	b.WriteString("2. Key achievements and milestones\n")
	b.WriteString("3. Technology focus and diversification analysis\n")
	b.WriteString("4. Consistency and streak analysis\n")
	b.WriteString("5. 2-3 actionable recommendations for the next month\n\n")
	b.WriteString("Keep the response comprehensive but well-structured.")
	return b.String()
}

// formatDict lists counts largest first, one "  - key: n" per line.
func formatDict(m map[string]int) string {
	if len(m) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(m))
	for _, e := range models.RankMap(m) {
		lines = append(lines, fmt.Sprintf("  - %s: %d", e.Key, e.Count))
	}
	return strings.Join(lines, "\n")
}

func formatRepos(repos map[string]*models.RepositoryDailyStats) string {
	if len(repos) == 0 {
		return "None"
	}
	counts := make(map[string]int, len(repos))
	for name, stats := range repos {
		counts[name] = stats.CommitsCount
	}
	lines := make([]string, 0, len(repos))
	for _, e := range models.RankMap(counts) {
		lines = append(lines, fmt.Sprintf("  - %s: %d commits (%s)", e.Key, e.Count, repos[e.Key].Language))
	}
	return strings.Join(lines, "\n")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "  - " + item
	}
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

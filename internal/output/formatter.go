// Package output renders run summaries for the terminal and the monthly
// HTML report.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rohankatakam/insightify/internal/models"
	"golang.org/x/term"
)

// Formatter prints the end-of-run console summary.
type Formatter interface {
	Daily(w io.Writer, record *models.DailyRecord, location string) error
	Monthly(w io.Writer, record *models.MonthlyRecord, location string) error
}

// Style selects how summaries are rendered.
type Style int

const (
	StylePlain  Style = iota // piped output, CI logs
	StyleStyled              // interactive terminal
)

// NewFormatter creates the formatter for style
func NewFormatter(style Style) Formatter {
	if style == StyleStyled {
		return &StyledFormatter{}
	}
	return &PlainFormatter{}
}

// DefaultStyle picks StyleStyled only for an interactive terminal outside CI.
func DefaultStyle(f *os.File) Style {
	if os.Getenv("CI") == "true" || os.Getenv("NO_COLOR") != "" {
		return StylePlain
	}
	if term.IsTerminal(int(f.Fd())) {
		return StyleStyled
	}
	return StylePlain
}

// summaryLine is one "label: value" row shared by both formatters.
type summaryLine struct {
	label string
	value string
}

func dailyLines(r *models.DailyRecord, location string) []summaryLine {
	return []summaryLine{
		{"Date", r.Date},
		{"Total commits", fmt.Sprint(r.TotalCommits)},
		{"Repositories", fmt.Sprint(len(r.Repositories))},
		{"Estimated hours", fmt.Sprint(r.EstimatedHours)},
		{"Languages", languageList(r.Languages)},
		{"Saved to", location},
	}
}

func monthlyLines(r *models.MonthlyRecord, location string) []summaryLine {
	return []summaryLine{
		{"Period", r.Month},
		{"Total commits", fmt.Sprint(r.TotalCommits)},
		{"Total hours", fmt.Sprint(r.TotalHours)},
		{"Active days", fmt.Sprintf("%d/%d", r.ActiveDays, r.DaysLoaded)},
		{"Longest streak", fmt.Sprintf("%d days", r.LongestStreak)},
		{"Saved to", location},
	}
}

func languageList(languages map[string]int) string {
	if len(languages) == 0 {
		return "none"
	}
	ranked := models.RankMap(languages)
	parts := make([]string, len(ranked))
	for i, e := range ranked {
		parts[i] = fmt.Sprintf("%s (%d)", e.Key, e.Count)
	}
	return strings.Join(parts, ", ")
}

// PlainFormatter writes aligned text with no escape codes.
type PlainFormatter struct{}

func (f *PlainFormatter) Daily(w io.Writer, r *models.DailyRecord, location string) error {
	return writePlain(w, "Daily summary", dailyLines(r, location))
}

func (f *PlainFormatter) Monthly(w io.Writer, r *models.MonthlyRecord, location string) error {
	return writePlain(w, "Monthly summary", monthlyLines(r, location))
}

func writePlain(w io.Writer, title string, lines []summaryLine) error {
	width := labelWidth(lines)
	var b strings.Builder
	b.WriteString(title + "\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "  %-*s  %s\n", width+1, l.label+":", l.value)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// StyledFormatter renders a bordered card for terminals.
type StyledFormatter struct{}

func (f *StyledFormatter) Daily(w io.Writer, r *models.DailyRecord, location string) error {
	return writeStyled(w, "📊 Daily summary", dailyLines(r, location))
}

func (f *StyledFormatter) Monthly(w io.Writer, r *models.MonthlyRecord, location string) error {
	return writeStyled(w, "🗓  Monthly summary", monthlyLines(r, location))
}

func writeStyled(w io.Writer, title string, lines []summaryLine) error {
	width := labelWidth(lines)
	rows := []string{titleStyle.Render(title), ""}
	for _, l := range lines {
		label := labelStyle.Render(fmt.Sprintf("%-*s", width, l.label))
		rows = append(rows, label+"  "+valueStyle.Render(l.value))
	}
	_, err := fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return err
}

func labelWidth(lines []summaryLine) int {
	width := 0
	for _, l := range lines {
		if len(l.label) > width {
			width = len(l.label)
		}
	}
	return width
}

// StatusRow is one stored day in the status listing.
type StatusRow struct {
	Date    string
	Commits int
	Hours   float64
}

// WriteStatus prints the stored days of a month and whether its monthly
// report exists.
func WriteStatus(w io.Writer, month string, rows []StatusRow, haveMonthly bool) error {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d stored days\n", month, len(rows))
	commits, hours := 0, 0.0
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s  %4d commits  %6.2f h\n", r.Date, r.Commits, r.Hours)
		commits += r.Commits
		hours += r.Hours
	}
	if len(rows) > 0 {
		fmt.Fprintf(&b, "  %-10s  %4d commits  %6.2f h\n", "total", commits, hours)
	}
	report := "not generated"
	if haveMonthly {
		report = "stored"
	}
	fmt.Fprintf(&b, "Monthly report: %s\n", report)
	_, err := io.WriteString(w, b.String())
	return err
}

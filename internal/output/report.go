package output

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
	"github.com/rohankatakam/insightify/internal/models"
)

//go:embed templates/monthly_report.html.tmpl
var templateFS embed.FS

var monthlyTemplate = template.Must(template.ParseFS(templateFS, "templates/monthly_report.html.tmpl"))

type monthlyView struct {
	Record      *models.MonthlyRecord
	Languages   []models.RankedEntry
	Charts      []string
	Insights    string
	GeneratedAt time.Time
}

// RenderMonthlyHTML writes the HTML report for r. chartRefs are image
// sources embedded as <img> tags; pass nil to leave charts out.
func RenderMonthlyHTML(w io.Writer, r *models.MonthlyRecord, chartRefs []string, generatedAt time.Time) error {
	view := monthlyView{
		Record:      r,
		Languages:   models.RankMap(r.Languages),
		Charts:      chartRefs,
		Insights:    r.AIInsights,
		GeneratedAt: generatedAt,
	}
	return monthlyTemplate.Execute(w, view)
}

// MonthlyHTML renders the report into a string.
func MonthlyHTML(r *models.MonthlyRecord, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	if err := RenderMonthlyHTML(&buf, r, nil, generatedAt); err != nil {
		return "", fmt.Errorf("render monthly report: %w", err)
	}
	return buf.String(), nil
}

// WriteMonthlyHTML saves the report as dir/monthly_report_YYYY-MM.html,
// linking the chart files relative to dir.
func WriteMonthlyHTML(dir string, r *models.MonthlyRecord, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	refs := make([]string, 0, len(r.ChartPaths))
	for _, p := range r.ChartPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(absDir, abs); err == nil {
			refs = append(refs, filepath.ToSlash(rel))
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("monthly_report_%s.html", r.MonthStr))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := RenderMonthlyHTML(f, r, refs, generatedAt); err != nil {
		return "", fmt.Errorf("render monthly report: %w", err)
	}
	return path, nil
}

// OpenReport opens a written report in the default browser.
var OpenReport = func(path string) error {
	return browser.OpenFile(path)
}

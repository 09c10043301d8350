// Package charts draws the monthly report charts as standalone SVG files.
package charts

import (
	"embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/rohankatakam/insightify/internal/models"
	"github.com/rohankatakam/insightify/internal/rollup"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.svg.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("charts").Funcs(template.FuncMap{
	"add": func(vals ...int) int {
		sum := 0
		for _, v := range vals {
			sum += v
		}
		return sum
	},
	"sub": func(a, b int) int { return a - b },
}).ParseFS(templateFS, "templates/*.svg.tmpl"))

var palette = []string{
	"#3498db", "#2ecc71", "#e74c3c", "#f39c12", "#9b59b6",
	"#1abc9c", "#34495e", "#e67e22", "#95a5a6", "#16a085",
}

// Options controls chart generation.
type Options struct {
	Directory string
	// FillMissingDays plots a zero for every calendar day between the first
	// and last stored day.
	FillMissingDays bool
}

// Render writes every chart that has data for record and returns the paths
// written, in a fixed order: daily commits, languages, top repositories.
func Render(record *models.MonthlyRecord, opts Options, logger logrus.FieldLogger) ([]string, error) {
	if err := os.MkdirAll(opts.Directory, 0755); err != nil {
		return nil, fmt.Errorf("create chart directory: %w", err)
	}

	var paths []string
	write := func(name string, view interface{}) error {
		path := filepath.Join(opts.Directory, fmt.Sprintf("%s_%s.svg", strings.TrimSuffix(name, ".svg.tmpl"), record.MonthStr))
		if err := writeChart(path, name, view); err != nil {
			return err
		}
		logger.WithField("path", path).Debug("chart written")
		paths = append(paths, path)
		return nil
	}

	if err := write("daily_commits.svg.tmpl", dailyView(record, opts.FillMissingDays)); err != nil {
		return paths, err
	}
	if len(record.Languages) > 0 {
		if err := write("languages.svg.tmpl", languagesView(record)); err != nil {
			return paths, err
		}
	}
	if len(record.Repositories) > 0 && len(record.TopRepositories) > 0 {
		if err := write("top_repos.svg.tmpl", topReposView(record)); err != nil {
			return paths, err
		}
	}
	return paths, nil
}

func writeChart(path, name string, view interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart %s: %w", path, err)
	}
	if err := templates.ExecuteTemplate(f, name, view); err != nil {
		f.Close()
		return fmt.Errorf("render chart %s: %w", path, err)
	}
	return f.Close()
}

type frame struct {
	Title                    string
	Width, Height            int
	Left, Right, Top, Bottom int
}

func (f frame) Center() int { return f.Width / 2 }
func (f frame) Middle() int { return (f.Top + f.Bottom) / 2 }

type point struct {
	X, Y  int
	Label string
}

type tick struct {
	Y     int
	Label string
}

type lineView struct {
	frame
	Points  string
	Markers []point
	XLabels []point
	YTicks  []tick
}

type series struct {
	date    string
	commits int
}

func dailySeries(record *models.MonthlyRecord, fill bool) []series {
	byDay := make(map[string]int, len(record.DailyBreakdown))
	for _, d := range record.DailyBreakdown {
		byDay[d.Date] += d.Commits
	}
	if fill {
		byDay = rollup.FillMissingDays(byDay)
	}

	out := make([]series, 0, len(byDay))
	for date, n := range byDay {
		out = append(out, series{date: date, commits: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date < out[j].date })
	return out
}

func dailyView(record *models.MonthlyRecord, fill bool) lineView {
	v := lineView{frame: frame{
		Title: "Daily Commits - " + record.Month,
		Width: 900, Height: 420,
		Left: 60, Right: 870, Top: 50, Bottom: 340,
	}}

	data := dailySeries(record, fill)
	maxCommits := 1
	for _, s := range data {
		if s.commits > maxCommits {
			maxCommits = s.commits
		}
	}

	plotW := v.Right - v.Left
	plotH := v.Bottom - v.Top
	step := niceStep(maxCommits)
	for n := 0; n <= maxCommits; n += step {
		v.YTicks = append(v.YTicks, tick{Y: v.Bottom - n*plotH/maxCommits, Label: fmt.Sprint(n)})
	}

	coords := make([]string, 0, len(data))
	labelEvery := int(math.Ceil(float64(len(data)) / 16))
	for i, s := range data {
		x := v.Left + plotW/2
		if len(data) > 1 {
			x = v.Left + i*plotW/(len(data)-1)
		}
		y := v.Bottom - s.commits*plotH/maxCommits
		coords = append(coords, fmt.Sprintf("%d,%d", x, y))
		v.Markers = append(v.Markers, point{X: x, Y: y, Label: fmt.Sprintf("%s: %d", s.date, s.commits)})
		if labelEvery <= 1 || i%labelEvery == 0 {
			v.XLabels = append(v.XLabels, point{X: x, Label: s.date})
		}
	}
	v.Points = strings.Join(coords, " ")
	return v
}

// niceStep spaces y-axis ticks so there are at most ten.
func niceStep(max int) int {
	step := 1
	for max/step > 10 {
		switch {
		case step*2 >= max/10:
			step *= 2
		default:
			step *= 5
		}
	}
	return step
}

type slice struct {
	Label   string
	Color   string
	Path    string
	Full    bool
	Percent string
	LegendY int
}

type pieView struct {
	frame
	CX, CY, Radius int
	LegendX        int
	Slices         []slice
}

func languagesView(record *models.MonthlyRecord) pieView {
	v := pieView{
		frame:   frame{Title: "Language Distribution - " + record.Month, Width: 700, Height: 460},
		CX:      240,
		CY:      250,
		Radius:  170,
		LegendX: 460,
	}

	ranked := models.RankMap(record.Languages)
	total := 0
	for _, e := range ranked {
		total += e.Count
	}
	if total == 0 {
		return v
	}

	angle := -math.Pi / 2
	for i, e := range ranked {
		frac := float64(e.Count) / float64(total)
		s := slice{
			Label:   e.Key,
			Color:   palette[i%len(palette)],
			Percent: fmt.Sprintf("%.1f", frac*100),
			LegendY: 80 + i*22,
			Full:    e.Count == total,
		}
		if !s.Full {
			end := angle + frac*2*math.Pi
			large := 0
			if frac > 0.5 {
				large = 1
			}
			r := float64(v.Radius)
			s.Path = fmt.Sprintf("M %d %d L %.2f %.2f A %d %d 0 %d 1 %.2f %.2f Z",
				v.CX, v.CY,
				float64(v.CX)+r*math.Cos(angle), float64(v.CY)+r*math.Sin(angle),
				v.Radius, v.Radius, large,
				float64(v.CX)+r*math.Cos(end), float64(v.CY)+r*math.Sin(end))
			angle = end
		}
		v.Slices = append(v.Slices, s)
	}
	return v
}

type bar struct {
	Label  string
	Count  int
	Y      int
	Length int
}

type barView struct {
	frame
	Bars []bar
}

func topReposView(record *models.MonthlyRecord) barView {
	v := barView{frame: frame{
		Title: "Top Repositories - " + record.Month,
		Width: 800,
		Left:  220, Right: 740, Top: 60,
	}}
	v.Height = v.Top + len(record.TopRepositories)*30 + 50

	maxCount := 1
	for _, name := range record.TopRepositories {
		if n := record.Repositories[name]; n > maxCount {
			maxCount = n
		}
	}
	for i, name := range record.TopRepositories {
		n := record.Repositories[name]
		v.Bars = append(v.Bars, bar{
			Label:  name,
			Count:  n,
			Y:      v.Top + i*30,
			Length: n * (v.Right - v.Left) / maxCount,
		})
	}
	return v
}

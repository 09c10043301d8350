// Package runner sequences the daily and monthly pipelines: collect,
// aggregate, persist, narrate, deliver.
package runner

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rohankatakam/insightify/internal/activity"
	"github.com/rohankatakam/insightify/internal/charts"
	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/insight"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/rohankatakam/insightify/internal/notify"
	"github.com/rohankatakam/insightify/internal/output"
	"github.com/rohankatakam/insightify/internal/rollup"
	"github.com/rohankatakam/insightify/internal/storage"
	"github.com/sirupsen/logrus"
)

// Runner holds the collaborators shared by both pipelines. Optional ones
// may be nil: no Source disables Daily, no Producer yields fallback
// insights, no Dispatcher skips delivery.
type Runner struct {
	Source     activity.Source
	Store      storage.Store
	Producer   insight.Producer
	Dispatcher *notify.Dispatcher
	Formatter  output.Formatter
	Out        io.Writer
	Location   *time.Location
	Now        func() time.Time
	Logger     logrus.FieldLogger
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now().In(r.loc())
	}
	return time.Now().In(r.loc())
}

func (r *Runner) loc() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

// DailyOptions tunes one daily run.
type DailyOptions struct {
	// Date, when set, ends the window at the last second of that day
	// instead of now.
	Date          string
	HoursLookback int
	SkipInsights  bool
	SkipNotify    bool
}

// DailyResult reports what a daily run produced.
type DailyResult struct {
	RunID            string
	Record           *models.DailyRecord
	Location         string
	InsightsFallback bool
	DeliveryFailures []error
}

// WindowEnd resolves the end of the collection window.
func (r *Runner) WindowEnd(date string) (time.Time, error) {
	if date == "" {
		return r.now(), nil
	}
	day, err := time.ParseInLocation(rollup.DateLayout, date, r.loc())
	if err != nil {
		return time.Time{}, errors.ValidationErrorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return day.AddDate(0, 0, 1).Add(-time.Second), nil
}

// Daily collects the window's activity, stores the day's record, then
// attaches insights and delivers it.
func (r *Runner) Daily(ctx context.Context, opts DailyOptions) (*DailyResult, error) {
	runID := uuid.NewString()
	log := r.Logger.WithFields(logrus.Fields{"run_id": runID, "run": "daily"})

	if r.Source == nil {
		return nil, errors.ConfigError("no activity source configured")
	}
	end, err := r.WindowEnd(opts.Date)
	if err != nil {
		return nil, err
	}
	hours := opts.HoursLookback
	if hours <= 0 {
		hours = 24
	}
	window := activity.WindowEnding(end, hours)
	log.WithFields(logrus.Fields{"start": window.Start, "end": window.End}).Info("starting daily run")

	collected, err := activity.Collect(ctx, r.Source, window, log)
	if err != nil {
		return nil, err
	}

	record := activity.AggregateDay(collected, window, r.loc())
	if err := r.Store.SaveDaily(ctx, record); err != nil {
		return nil, errors.StorageError(err, "failed to save daily record")
	}
	log.WithFields(logrus.Fields{
		"date":    record.Date,
		"commits": record.TotalCommits,
		"repos":   len(record.Repositories),
		"hours":   record.EstimatedHours,
	}).Info("daily record saved")

	result := &DailyResult{RunID: runID, Record: record, Location: dailyLocation(r.Store, record.Date)}
	report := models.DailyReport(record)

	if !opts.SkipInsights {
		res := insight.Produce(ctx, r.Producer, report, log)
		record.AIInsights = res.Text
		result.InsightsFallback = res.Fallback
		if err := r.Store.SaveDaily(ctx, record); err != nil {
			return result, errors.StorageError(err, "failed to save daily insights")
		}
	}

	if !opts.SkipNotify && r.Dispatcher != nil {
		result.DeliveryFailures = r.Dispatcher.Dispatch(ctx, report)
	}

	if r.Formatter != nil {
		if err := r.Formatter.Daily(r.out(), record, result.Location); err != nil {
			log.WithField("error", err).Warn("failed to print summary")
		}
	}
	return result, nil
}

// MonthlyOptions tunes one monthly run.
type MonthlyOptions struct {
	// Month as YYYY-MM; empty means the month before now.
	Month        string
	SkipInsights bool
	SkipNotify   bool
	Charts       *charts.Options
	// HTMLDirectory, when set, also writes the HTML report there.
	HTMLDirectory string
}

// MonthlyResult reports what a monthly run produced. Record is nil when
// the month had no stored days.
type MonthlyResult struct {
	RunID            string
	Month            rollup.Month
	Record           *models.MonthlyRecord
	Location         string
	HTMLPath         string
	InsightsFallback bool
	DeliveryFailures []error
}

// Monthly rolls the stored days of a month into a report. A month with no
// stored days is not an error.
func (r *Runner) Monthly(ctx context.Context, opts MonthlyOptions) (*MonthlyResult, error) {
	runID := uuid.NewString()
	log := r.Logger.WithFields(logrus.Fields{"run_id": runID, "run": "monthly"})

	month := rollup.PreviousMonth(r.now())
	if opts.Month != "" {
		m, err := rollup.ParseMonth(opts.Month)
		if err != nil {
			return nil, errors.ValidationErrorf("%v", err)
		}
		month = m
	}
	result := &MonthlyResult{RunID: runID, Month: month}
	log = log.WithField("month", month.Key())

	days, err := storage.LoadMonth(ctx, r.Store, month, log)
	if err != nil {
		return nil, errors.StorageError(err, "failed to load daily records")
	}
	if len(days) == 0 {
		log.Info("no daily records for month, nothing to report")
		return result, nil
	}

	record := rollup.AggregateMonth(month, days)
	result.Record = record
	log.WithFields(logrus.Fields{
		"days_loaded": record.DaysLoaded,
		"commits":     record.TotalCommits,
		"hours":       record.TotalHours,
		"streak":      record.LongestStreak,
	}).Info("month aggregated")

	if opts.Charts != nil {
		paths, err := charts.Render(record, *opts.Charts, log)
		if err != nil {
			log.WithField("error", err).Warn("chart generation failed")
		} else {
			record.ChartPaths = paths
		}
	}

	report := models.MonthlyReport(record)
	if !opts.SkipInsights {
		res := insight.Produce(ctx, r.Producer, report, log)
		record.AIInsights = res.Text
		result.InsightsFallback = res.Fallback
	}

	if err := r.Store.SaveMonthly(ctx, record); err != nil {
		return result, errors.StorageError(err, "failed to save monthly report")
	}
	result.Location = monthlyLocation(r.Store, record.MonthStr)

	if !opts.SkipNotify && r.Dispatcher != nil {
		result.DeliveryFailures = r.Dispatcher.Dispatch(ctx, report)
	}

	if opts.HTMLDirectory != "" {
		path, err := output.WriteMonthlyHTML(opts.HTMLDirectory, record, r.now())
		if err != nil {
			log.WithField("error", err).Warn("failed to write HTML report")
		} else {
			result.HTMLPath = path
		}
	}

	if r.Formatter != nil {
		if err := r.Formatter.Monthly(r.out(), record, result.Location); err != nil {
			log.WithField("error", err).Warn("failed to print summary")
		}
	}
	return result, nil
}

// Status lists the stored days of month for the status command.
func (r *Runner) Status(ctx context.Context, month rollup.Month) ([]output.StatusRow, bool, error) {
	days, err := r.Store.ListDays(ctx, month.Key())
	if err != nil {
		return nil, false, err
	}
	rows := make([]output.StatusRow, 0, len(days))
	for _, date := range days {
		record, err := r.Store.GetDaily(ctx, date)
		if err != nil {
			r.Logger.WithFields(logrus.Fields{"date": date, "error": err}).Warn("failed to read daily record")
			continue
		}
		rows = append(rows, output.StatusRow{Date: date, Commits: record.TotalCommits, Hours: record.EstimatedHours})
	}

	_, err = r.Store.GetMonthly(ctx, month.Key())
	switch {
	case err == nil:
		return rows, true, nil
	case stderrors.Is(err, storage.ErrNotFound):
		return rows, false, nil
	default:
		return rows, false, fmt.Errorf("read monthly report: %w", err)
	}
}

type dailyPather interface{ DailyPath(date string) string }
type monthlyPather interface{ MonthlyPath(month string) string }

func dailyLocation(store storage.Store, date string) string {
	if p, ok := store.(dailyPather); ok {
		return p.DailyPath(date)
	}
	return store.Describe()
}

func monthlyLocation(store storage.Store, month string) string {
	if p, ok := store.(monthlyPather); ok {
		return p.MonthlyPath(month)
	}
	return store.Describe()
}

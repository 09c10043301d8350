// Package insight turns a daily or monthly record into narrative text and
// guarantees a usable result even when the language model is unavailable.
package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
)

// FailurePrefix opens every fallback narrative.
const FailurePrefix = "Insights generation failed."

// Producer generates narrative insights for a report.
type Producer interface {
	Generate(ctx context.Context, report models.Report) (string, error)
}

// Result is the outcome of Produce. Text is always non-empty; Fallback
// reports whether it came from FallbackText.
type Result struct {
	Text     string
	Err      error
	Fallback bool
}

// Produce asks producer for insights and substitutes the deterministic
// fallback on any failure. An empty response counts as a failure.
func Produce(ctx context.Context, producer Producer, report models.Report, logger logrus.FieldLogger) Result {
	if err := report.Validate(); err != nil {
		return fallback(report, errors.InsightError(err, "invalid report"), logger)
	}
	if producer == nil {
		return fallback(report, errors.New(errors.ErrorTypeInsight, errors.SeverityLow, "no insight producer configured"), logger)
	}

	text, err := producer.Generate(ctx, report)
	if err != nil {
		return fallback(report, errors.InsightError(err, "insight generation failed"), logger)
	}
	if strings.TrimSpace(text) == "" {
		return fallback(report, errors.New(errors.ErrorTypeInsight, errors.SeverityLow, "insight producer returned empty text"), logger)
	}
	return Result{Text: strings.TrimSpace(text)}
}

func fallback(report models.Report, err error, logger logrus.FieldLogger) Result {
	logger.WithFields(logrus.Fields{
		"kind":   report.Kind,
		"period": report.Label(),
		"error":  err,
	}).Warn("using fallback insights")
	return Result{Text: FallbackText(report), Err: err, Fallback: true}
}

// FallbackText summarises a record without a model. It is a pure function
// of the record.
func FallbackText(report models.Report) string {
	switch {
	case report.Kind == models.KindDaily && report.Daily != nil:
		d := report.Daily
		return fmt.Sprintf("%s\n%s: %d commits across %d repositories, ~%.2f hours.",
			FailurePrefix, d.Date, d.TotalCommits, len(d.Repositories), d.EstimatedHours)
	case report.Kind == models.KindMonthly && report.Monthly != nil:
		m := report.Monthly
		return fmt.Sprintf("%s\n%s: %d commits, %.2f hours over %d active days, longest streak %d days.",
			FailurePrefix, m.Month, m.TotalCommits, m.TotalHours, m.ActiveDays, m.LongestStreak)
	}
	return FailurePrefix
}

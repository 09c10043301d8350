package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/rohankatakam/insightify/internal/models"
)

// Desktop raises a one-line system notification.
type Desktop struct {
	notify func(title, message string, icon any) error
}

func NewDesktop() *Desktop {
	beeep.AppName = "Insightify"
	return &Desktop{notify: beeep.Notify}
}

func (d *Desktop) Name() string { return "desktop" }

func (d *Desktop) Supports(kind models.ReportKind) bool { return true }

func (d *Desktop) Notify(ctx context.Context, report models.Report) error {
	title, message, err := DesktopMessage(report)
	if err != nil {
		return err
	}
	return d.notify(title, message, "")
}

// DesktopMessage is the alert title and body for report.
func DesktopMessage(report models.Report) (string, string, error) {
	if err := report.Validate(); err != nil {
		return "", "", err
	}
	if report.Kind == models.KindMonthly {
		m := report.Monthly
		return "Insightify monthly report",
			fmt.Sprintf("%s: %d commits, %v hours, %d active days", m.Month, m.TotalCommits, m.TotalHours, m.ActiveDays), nil
	}
	d := report.Daily
	return "Insightify daily report",
		fmt.Sprintf("%s: %d commits in %d repositories, ~%v hours", d.Date, d.TotalCommits, len(d.Repositories), d.EstimatedHours), nil
}

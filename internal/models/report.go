package models

import "fmt"

// ReportKind tags which record a Report carries.
type ReportKind string

const (
	KindDaily   ReportKind = "daily"
	KindMonthly ReportKind = "monthly"
)

// Report is the payload handed to insight producers and notifiers. Exactly
// one of Daily and Monthly is set, matching Kind.
type Report struct {
	Kind    ReportKind
	Daily   *DailyRecord
	Monthly *MonthlyRecord
}

func DailyReport(r *DailyRecord) Report {
	return Report{Kind: KindDaily, Daily: r}
}

func MonthlyReport(r *MonthlyRecord) Report {
	return Report{Kind: KindMonthly, Monthly: r}
}

// Label is the date or month the report covers.
func (r Report) Label() string {
	switch r.Kind {
	case KindDaily:
		if r.Daily != nil {
			return r.Daily.Date
		}
	case KindMonthly:
		if r.Monthly != nil {
			return r.Monthly.Month
		}
	}
	return ""
}

// Validate checks that the variant matches the tag.
func (r Report) Validate() error {
	switch r.Kind {
	case KindDaily:
		if r.Daily == nil || r.Monthly != nil {
			return fmt.Errorf("daily report must carry only a daily record")
		}
	case KindMonthly:
		if r.Monthly == nil || r.Daily != nil {
			return fmt.Errorf("monthly report must carry only a monthly record")
		}
	default:
		return fmt.Errorf("unknown report kind %q", r.Kind)
	}
	return nil
}

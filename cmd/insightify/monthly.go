package main

import (
	"github.com/rohankatakam/insightify/internal/charts"
	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/output"
	"github.com/rohankatakam/insightify/internal/runner"
	"github.com/spf13/cobra"
)

var (
	monthlyMonth      string
	monthlyNoNotify   bool
	monthlyNoInsights bool
	monthlyOpen       bool
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Roll stored days into the monthly report and deliver it",
	Long: `Load every stored day of a month, aggregate them, render charts,
generate insights and deliver the monthly report.

Examples:
  # Report on last month
  insightify monthly

  # Rebuild January and open the HTML report
  insightify monthly --month 2025-01 --no-notify --open`,
	Args: cobra.NoArgs,
	RunE: runMonthly,
}

func init() {
	monthlyCmd.Flags().StringVar(&monthlyMonth, "month", "", "month to report on (YYYY-MM, default: previous month)")
	monthlyCmd.Flags().BoolVar(&monthlyNoNotify, "no-notify", false, "skip Discord, email and desktop delivery")
	monthlyCmd.Flags().BoolVar(&monthlyNoInsights, "no-insights", false, "skip insight generation")
	monthlyCmd.Flags().BoolVar(&monthlyOpen, "open", false, "open the HTML report in the browser")
}

func runMonthly(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c := *cfg
	if monthlyNoInsights {
		c.LLM.Provider = "none"
	}
	if err := validate(&c, config.ValidationContextMonthly); err != nil {
		return err
	}

	r, store, err := newRunner(ctx, &c, !monthlyNoInsights)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := runner.MonthlyOptions{
		Month:         monthlyMonth,
		SkipInsights:  monthlyNoInsights,
		SkipNotify:    monthlyNoNotify,
		HTMLDirectory: c.Report.HTMLDirectory,
	}
	if c.Charts.Enabled {
		opts.Charts = &charts.Options{Directory: c.Charts.Directory, FillMissingDays: c.Report.FillMissingDays}
	}
	if monthlyOpen && opts.HTMLDirectory == "" {
		opts.HTMLDirectory = config.Default().Report.HTMLDirectory
	}

	res, err := r.Monthly(ctx, opts)
	if err != nil {
		return err
	}
	if res.Record == nil {
		return nil
	}

	if monthlyOpen && res.HTMLPath != "" {
		if err := output.OpenReport(res.HTMLPath); err != nil {
			logger.WithError(err).Warn("failed to open report in browser")
		}
	}
	logger.WithField("run_id", res.RunID).Info("monthly run complete")
	return nil
}

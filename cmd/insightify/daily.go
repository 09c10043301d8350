package main

import (
	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/runner"
	"github.com/spf13/cobra"
)

var (
	dailyDate       string
	dailySource     string
	dailyNoNotify   bool
	dailyNoInsights bool
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Collect the last day of activity and send the daily report",
	Long: `Collect commits from the configured source for the lookback window,
store the day's record, generate insights and deliver the daily report.

Examples:
  # Report on the last 24 hours
  insightify daily

  # Rebuild the record for a past day from local clones
  insightify daily --date 2025-01-14 --source local --no-notify`,
	Args: cobra.NoArgs,
	RunE: runDaily,
}

func init() {
	dailyCmd.Flags().StringVar(&dailyDate, "date", "", "collect the window ending at the end of this day (YYYY-MM-DD)")
	dailyCmd.Flags().StringVar(&dailySource, "source", "", "activity source: github or local (default from config)")
	dailyCmd.Flags().BoolVar(&dailyNoNotify, "no-notify", false, "skip Discord, email and desktop delivery")
	dailyCmd.Flags().BoolVar(&dailyNoInsights, "no-insights", false, "skip insight generation")
}

func runDaily(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c := *cfg
	if dailySource != "" {
		c.Source.Type = dailySource
	}
	if dailyNoInsights {
		c.LLM.Provider = "none"
	}
	if err := validate(&c, config.ValidationContextDaily); err != nil {
		return err
	}

	src, err := newSource(&c)
	if err != nil {
		return err
	}
	r, store, err := newRunner(ctx, &c, !dailyNoInsights)
	if err != nil {
		return err
	}
	defer store.Close()
	r.Source = src

	res, err := r.Daily(ctx, runner.DailyOptions{
		Date:          dailyDate,
		HoursLookback: c.GitHub.HoursLookback,
		SkipInsights:  dailyNoInsights,
		SkipNotify:    dailyNoNotify,
	})
	if err != nil {
		return err
	}

	logger.WithField("run_id", res.RunID).Info("daily run complete")
	return nil
}

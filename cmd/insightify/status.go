package main

import (
	"os"
	"time"

	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/output"
	"github.com/rohankatakam/insightify/internal/rollup"
	"github.com/rohankatakam/insightify/internal/runner"
	"github.com/rohankatakam/insightify/internal/storage"
	"github.com/spf13/cobra"
)

var statusMonth string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored daily records for a month",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusMonth, "month", "", "month to list (YYYY-MM, default: current month)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	loc, err := cfg.Location()
	if err != nil {
		return errors.ConfigError(err.Error())
	}
	now := time.Now().In(loc)
	month := rollup.Month{Year: now.Year(), Month: now.Month()}
	if statusMonth != "" {
		if month, err = rollup.ParseMonth(statusMonth); err != nil {
			return errors.ValidationErrorf("%v", err)
		}
	}

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return errors.StorageError(err, "failed to open storage")
	}
	defer store.Close()

	r := &runner.Runner{Store: store, Location: loc, Logger: logger}
	rows, haveMonthly, err := r.Status(ctx, month)
	if err != nil {
		return err
	}
	return output.WriteStatus(os.Stdout, month.Label(), rows, haveMonthly)
}

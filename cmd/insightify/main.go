package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logging.Logger
	cfg     *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logger != nil {
		logger.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "insightify",
	Short: "Insightify - daily and monthly insights from your GitHub activity",
	Long: `Insightify collects your commits, rolls them up into daily and monthly
records, asks a language model for a narrative and delivers the result to
Discord, email and the desktop.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logrus.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}

		// Initialize logger
		settings := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
		if verbose {
			settings.Level = "debug"
		}
		logger, err = logging.New(settings)
		if err != nil {
			logrus.WithError(err).Warn("Invalid logging settings, logging to stderr")
			logger, _ = logging.New(logging.DebugConfig())
			if !verbose {
				logger.SetLevel(logrus.InfoLevel)
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config/config.yml or ~/.insightify/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Set custom version template
	rootCmd.SetVersionTemplate(`Insightify {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	// Add subcommands
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(monthlyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
}

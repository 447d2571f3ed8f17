package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/headline-goat/lift-goat/internal/config"
)

// rootOptions is shared by every subcommand.
type rootOptions struct {
	cfg      *config.Config
	logLevel string
	logger   *slog.Logger
}

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree with defaults taken from the
// environment (and LG_ENV_FILE, ./.env by default).
func NewRootCmd() *cobra.Command {
	cfg, cfgErr := config.Load(getEnvOrDefault("LG_ENV_FILE", ".env"))
	if cfgErr != nil {
		cfg = config.Default()
	}
	opts := &rootOptions{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "lg",
		Short: "Lift Goat - sample sizes and significance for conversion A/B tests",
		Long: `🐐 Lift Goat plans and evaluates two-variant conversion experiments.

Design:   how many visitors each group needs to detect a lift.
Evaluate: whether the observed difference is statistically and
          financially significant.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return fmt.Errorf("invalid configuration: %w", cfgErr)
			}
			level, err := config.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.cfg.DBPath, "db", cfg.DBPath, "event log database path")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", cfg.LogLevel.String(), "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRateCmd(opts),
		newDesignCmd(opts),
		newEvaluateCmd(opts),
		newProjectCmd(opts),
		newResultsCmd(opts),
		newListCmd(opts),
	)

	return cmd
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

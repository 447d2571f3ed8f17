package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/headline-goat/lift-goat/internal/stats"
)

func newRateCmd(opts *rootOptions) *cobra.Command {
	var trials, successes int

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Estimate a conversion rate from raw counts",
		Long: `Estimate a conversion rate (successes / trials) with a Wilson
confidence interval at 1 - alpha.

Example:
  lg rate --trials 4600 --successes 1391`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := stats.EstimateRate(trials, successes)
			if err != nil {
				return explain(err)
			}

			confidence := 1 - opts.cfg.Alpha
			lower, upper := stats.WilsonInterval(successes, trials, confidence)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "RATE: %s (%s / %s)\n", formatPercent(rate), formatNumber(int64(successes)), formatNumber(int64(trials)))
			fmt.Fprintf(w, "%.0f%% CI: [%.2f%%, %.2f%%]\n", confidence*100, lower*100, upper*100)
			return nil
		},
	}

	cmd.Flags().IntVarP(&trials, "trials", "n", 0, "number of visitors (required)")
	cmd.Flags().IntVarP(&successes, "successes", "k", 0, "number of conversions (required)")
	cmd.MarkFlagRequired("trials")
	cmd.MarkFlagRequired("successes")

	return cmd
}

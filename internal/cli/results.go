package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/headline-goat/lift-goat/internal/experiment"
	"github.com/headline-goat/lift-goat/internal/revenue"
	"github.com/headline-goat/lift-goat/internal/stats"
	"github.com/headline-goat/lift-goat/internal/store"
)

func newResultsCmd(opts *rootOptions) *cobra.Command {
	var (
		treatmentVariant int
		from, to         string
		alpha            float64
		volume           float64
		aov              float64
		target           float64
		format           string
	)

	cmd := &cobra.Command{
		Use:   "results <name>",
		Short: "Evaluate a test recorded in an event log",
		Long: `Read a test's view/convert events from the event log database
(opened read-only), show per-variant conversion with confidence intervals,
and evaluate variant 0 (control) against the treatment variant.

Examples:
  lg results hero --db ./hlg.db
  lg results hero --from 2024-01-01 --to 2024-01-31 --volume 1462 --aov 2729.43`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := checkFormat(format); err != nil {
				return err
			}

			start, err := parseDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := parseDate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			r := store.Range{From: start, To: end}

			// the event log carries no order amounts to fall back on
			if volume != 0 && aov <= 0 {
				return fmt.Errorf("--aov is required with --volume")
			}

			return withStore(opts.cfg.DBPath, func(s *store.SQLiteStore) error {
				ctx := context.Background()

				// Get test
				test, err := s.GetTest(ctx, name)
				if err != nil {
					if err == store.ErrNotFound {
						return fmt.Errorf("test '%s' not found", name)
					}
					return fmt.Errorf("failed to get test: %w", err)
				}
				if treatmentVariant <= 0 || treatmentVariant >= len(test.Variants) {
					return fmt.Errorf("invalid treatment variant: %d (test has %d variants: 0-%d)", treatmentVariant, len(test.Variants), len(test.Variants)-1)
				}

				// Per-visitor outcomes
				control, err := s.GetOutcomes(ctx, name, 0, r)
				if err != nil {
					return err
				}
				treatment, err := s.GetOutcomes(ctx, name, treatmentVariant, r)
				if err != nil {
					return err
				}

				in := experiment.EvaluationInput{
					Control:       experiment.GroupSample{Label: test.Variants[0], Outcomes: control},
					Treatment:     experiment.GroupSample{Label: test.Variants[treatmentVariant], Outcomes: treatment},
					Alpha:         alpha,
					VisitorVolume: volume,
					AvgOrderValue: aov,
					TargetRevenue: target,
				}
				if volume != 0 {
					in.Projector = &revenue.Projector{MonthsPerYear: opts.cfg.MonthsPerYear, SpendCap: opts.cfg.SpendCap}
				}

				ev, err := experiment.Evaluate(in, opts.logger)
				if err != nil {
					return explain(err)
				}

				if format == "json" {
					return writeJSON(cmd.OutOrStdout(), ev)
				}

				variantStats, err := s.GetVariantStats(ctx, name, r)
				if err != nil {
					return fmt.Errorf("failed to get stats: %w", err)
				}

				out := cmd.OutOrStdout()
				printTestHeader(out, test)
				printVariantTable(out, test, variantStats, 1-alpha)
				fmt.Fprintln(out)
				printEvaluation(out, ev)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&treatmentVariant, "variant", "v", 1, "treatment variant index")
	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&alpha, "alpha", opts.cfg.Alpha, "significance threshold")
	cmd.Flags().Float64Var(&volume, "volume", 0, "monthly visitors to project revenue onto (0 skips the projection)")
	cmd.Flags().Float64Var(&aov, "aov", 0, "average order value for the projection (required with --volume)")
	cmd.Flags().Float64Var(&target, "target", opts.cfg.TargetRevenue, "monthly revenue increase that justifies the change")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text or json)")

	return cmd
}

func printTestHeader(out io.Writer, test *store.Test) {
	fmt.Fprintf(out, "TEST: %s\n", test.Name)
	fmt.Fprintf(out, "STATE: %s\n", test.State)
	if test.ConversionGoal != "" {
		fmt.Fprintf(out, "GOAL: %s\n", test.ConversionGoal)
	}
	fmt.Fprintf(out, "CREATED: %s\n", test.CreatedAt.Format("2006-01-02"))
	fmt.Fprintln(out)
}

func printVariantTable(out io.Writer, test *store.Test, variantStats []store.VariantStats, confidence float64) {
	byVariant := make(map[int]store.VariantStats)
	for _, vs := range variantStats {
		byVariant[vs.Variant] = vs
	}

	fmt.Fprintf(out, "VARIANT           VIEWS    CONVERSIONS  RATE     %.0f%% CI\n", confidence*100)
	rule(out)

	for i, name := range test.Variants {
		vs := byVariant[i] // Will be zero-valued if not present

		rate := 0.0
		ciStr := "N/A"
		if vs.Views > 0 {
			rate = float64(vs.Conversions) / float64(vs.Views)
			lower, upper := stats.WilsonInterval(vs.Conversions, vs.Views, confidence)
			ciStr = fmt.Sprintf("[%.1f%%, %.1f%%]", lower*100, upper*100)
		}

		// Truncate name if too long
		if len(name) > 16 {
			name = name[:13] + "..."
		}

		indicator := ""
		if i == 0 {
			indicator = " ← CONTROL"
		}

		fmt.Fprintf(out, "%-16s  %-7d  %-11d  %-7s  %s%s\n",
			name,
			vs.Views,
			vs.Conversions,
			formatPercent(rate),
			ciStr,
			indicator,
		)
	}
}

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/headline-goat/lift-goat/internal/dataload"
	"github.com/headline-goat/lift-goat/internal/experiment"
	"github.com/headline-goat/lift-goat/internal/revenue"
)

type evaluateFlags struct {
	control   string
	treatment string
	from      string
	to        string
	alpha     float64
	volume    float64
	aov       float64
	target    float64
	spendCap  float64
	format    string
}

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	f := &evaluateFlags{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Test whether a finished experiment is significant",
		Long: `Load per-visitor records for both groups and test whether the
difference in conversion is statistically significant (pooled t-test and the
equivalent linear probability model), then project it onto monthly revenue.

Each file (.csv or .xlsx) needs a timestamp column and an amount column; a
visitor converted when the amount is positive.

Examples:
  lg evaluate --control control.csv --treatment treatment.csv
  lg evaluate --control a.xlsx --treatment b.xlsx --from 2024-01-01 --to 2024-01-31 \
      --volume 1462 --target 100000 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(f.format); err != nil {
				return err
			}

			control, controlAmounts, err := loadGroup("control", f.control, f.from, f.to, opts.logger)
			if err != nil {
				return err
			}
			treatment, treatmentAmounts, err := loadGroup("treatment", f.treatment, f.from, f.to, opts.logger)
			if err != nil {
				return err
			}

			in := experiment.EvaluationInput{
				Control:       control,
				Treatment:     treatment,
				Alpha:         f.alpha,
				VisitorVolume: f.volume,
				AvgOrderValue: f.aov,
				TargetRevenue: f.target,
			}

			if f.volume != 0 {
				if in.AvgOrderValue == 0 {
					amounts := append(append([]float64{}, controlAmounts...), treatmentAmounts...)
					in.AvgOrderValue, err = revenue.AverageOrderValue(amounts)
					if err != nil {
						return explain(err)
					}
				}
				in.Projector = &revenue.Projector{MonthsPerYear: opts.cfg.MonthsPerYear, SpendCap: f.spendCap}
			}

			ev, err := experiment.Evaluate(in, opts.logger)
			if err != nil {
				return explain(err)
			}

			if f.format == "json" {
				return writeJSON(cmd.OutOrStdout(), ev)
			}
			printEvaluation(cmd.OutOrStdout(), ev)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.control, "control", "", "control group file (required)")
	cmd.Flags().StringVar(&f.treatment, "treatment", "", "treatment group file (required)")
	cmd.Flags().StringVar(&f.from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&f.alpha, "alpha", opts.cfg.Alpha, "significance threshold")
	cmd.Flags().Float64Var(&f.volume, "volume", 0, "monthly visitors to project revenue onto (0 skips the projection)")
	cmd.Flags().Float64Var(&f.aov, "aov", 0, "average order value (default: mean of positive amounts)")
	cmd.Flags().Float64Var(&f.target, "target", opts.cfg.TargetRevenue, "monthly revenue increase that justifies the change")
	cmd.Flags().Float64Var(&f.spendCap, "spend-cap", opts.cfg.SpendCap, "investment ceiling for ROI (0 disables ROI)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "output format (text or json)")
	cmd.MarkFlagRequired("control")
	cmd.MarkFlagRequired("treatment")

	return cmd
}

func loadGroup(label, path, from, to string, logger *slog.Logger) (experiment.GroupSample, []float64, error) {
	start, err := parseDate(from)
	if err != nil {
		return experiment.GroupSample{}, nil, fmt.Errorf("--from: %w", err)
	}
	end, err := parseDate(to)
	if err != nil {
		return experiment.GroupSample{}, nil, fmt.Errorf("--to: %w", err)
	}

	records, err := dataload.Load(path)
	if err != nil {
		return experiment.GroupSample{}, nil, fmt.Errorf("%s: %w", label, err)
	}
	filtered := dataload.Filter(records, start, end)
	if len(filtered) == 0 {
		return experiment.GroupSample{}, nil, fmt.Errorf("%s: no records between %s and %s", label, orOpen(from), orOpen(to))
	}

	if logger != nil {
		logger.Debug("group loaded",
			slog.String("group", label),
			slog.String("path", path),
			slog.Int("records", len(records)),
			slog.Int("in_range", len(filtered)),
		)
	}

	return experiment.GroupSample{Label: label, Outcomes: dataload.Outcomes(filtered)}, dataload.Amounts(filtered), nil
}

func orOpen(s string) string {
	if s == "" {
		return "(open)"
	}
	return s
}

func printEvaluation(out io.Writer, ev *experiment.Evaluation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	ci := fmt.Sprintf("%.0f%% CI", (1-ev.Alpha)*100)
	fmt.Fprintf(w, "GROUP\tVISITORS\tCONVERSIONS\tRATE\t%s\n", ci)
	for _, g := range []experiment.GroupSummary{ev.Control, ev.Treatment} {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t[%.2f%%, %.2f%%]\n",
			g.Label,
			formatNumber(int64(g.Visitors)),
			formatNumber(int64(g.Conversions)),
			formatPercent(g.Rate),
			g.CILower*100, g.CIUpper*100,
		)
	}
	w.Flush()
	fmt.Fprintln(out)

	t := ev.Test
	relative := "undefined (control rate is 0)"
	if t.RelativeDefined {
		relative = formatSignedPercent(t.RelativeEffect)
	}
	fmt.Fprintf(out, "Absolute impact: %+.2f pts\n", t.Estimate*100)
	fmt.Fprintf(out, "Relative impact: %s\n", relative)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "t-test (pooled):   t = %.4f, df = %.0f, p = %s\n", t.Statistic, t.DegreesOfFreedom, formatP(t.PValue))
	if r := t.Regression; r != nil {
		fmt.Fprintf(out, "Regression (LPM):  coef = %.6f, SE = %.6f, t = %.4f, p = %s\n", r.Coefficient, r.StandardError, r.Statistic, formatP(r.PValue))
	}
	if z := ev.ZTest; z != nil {
		fmt.Fprintf(out, "z-test:            z = %.4f, p = %s\n", z.Statistic, formatP(z.PValue))
	}
	fmt.Fprintln(out)

	if ev.Significant {
		fmt.Fprintf(out, "Statistical significance: YES (p < %.2f)\n", ev.Alpha)
	} else {
		fmt.Fprintf(out, "Statistical significance: NO (p >= %.2f)\n", ev.Alpha)
	}

	p := ev.Projection
	if p == nil {
		return
	}

	fmt.Fprintln(out)
	rule(out)
	fmt.Fprintf(out, "Visitors/month: %s at AOV %s\n", formatNumber(int64(p.VisitorVolume)), formatMoney(p.AvgOrderValue))
	fmt.Fprintf(out, "Current revenue: %s\n", formatMoney(p.CurrentRevenue))
	fmt.Fprintf(out, "New revenue:     %s\n", formatMoney(p.NewRevenue))
	fmt.Fprintf(out, "Monthly delta:   %s (annual %s)\n", formatMoney(p.DeltaRevenue), formatMoney(p.AnnualDelta))
	if p.HasROI {
		fmt.Fprintf(out, "ROI:             %s monthly, %s annual\n", formatSignedPercent(p.ROI), formatSignedPercent(p.AnnualROI))
	}

	verdict := "does not meet"
	if p.MeetsTarget {
		verdict = "meets"
	}
	fmt.Fprintf(out, "Financial significance: %s the %s target\n", strings.ToUpper(verdict[:1])+verdict[1:], formatMoney(p.TargetRevenue))
}

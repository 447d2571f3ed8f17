package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/headline-goat/lift-goat/internal/experiment"
	"github.com/headline-goat/lift-goat/internal/stats"
)

type designFlags struct {
	baselineTrials    int
	baselineSuccesses int
	baselineRate      float64
	mde               float64
	absolute          bool
	alpha             float64
	power             float64
	tails             string
	ratio             float64
	visitorsPerMonth  float64
	interactive       bool
	format            string
}

func newDesignCmd(opts *rootOptions) *cobra.Command {
	f := &designFlags{}

	cmd := &cobra.Command{
		Use:   "design",
		Short: "Compute the sample size an experiment needs",
		Long: `Compute the per-group sample size needed to detect a minimum
detectable effect (MDE) over a baseline conversion rate.

The baseline comes from historical counts (--baseline-trials and
--baseline-successes) or directly from --baseline-rate. The MDE is a
relative lift by default (0.10 = +10%); use --absolute for rate points.

Examples:
  lg design --baseline-trials 4600 --baseline-successes 1391 --mde 0.0837
  lg design --baseline-rate 0.30 --mde 0.03 --absolute --visitors-per-month 4600
  lg design --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(f.format); err != nil {
				return err
			}
			if f.interactive {
				if err := f.prompt(); err != nil {
					return err
				}
			}

			in, err := f.input(opts)
			if err != nil {
				return err
			}

			plan, err := experiment.Design(in, opts.logger)
			if err != nil {
				return explain(err)
			}

			if f.format == "json" {
				return writeJSON(cmd.OutOrStdout(), plan)
			}
			printPlan(cmd, plan, f.visitorsPerMonth)
			return nil
		},
	}

	cmd.Flags().IntVar(&f.baselineTrials, "baseline-trials", 0, "historical visitors")
	cmd.Flags().IntVar(&f.baselineSuccesses, "baseline-successes", 0, "historical conversions")
	cmd.Flags().Float64Var(&f.baselineRate, "baseline-rate", 0, "baseline conversion rate (instead of counts)")
	cmd.Flags().Float64Var(&f.mde, "mde", 0, "minimum detectable effect")
	cmd.Flags().BoolVar(&f.absolute, "absolute", false, "treat --mde as absolute rate points instead of relative lift")
	cmd.Flags().Float64Var(&f.alpha, "alpha", opts.cfg.Alpha, "significance threshold")
	cmd.Flags().Float64Var(&f.power, "power", opts.cfg.Power, "desired power")
	cmd.Flags().StringVar(&f.tails, "tails", opts.cfg.Tails.String(), "one or two")
	cmd.Flags().Float64Var(&f.ratio, "ratio", 1, "treatment size / control size")
	cmd.Flags().Float64Var(&f.visitorsPerMonth, "visitors-per-month", 0, "eligible traffic per month, for a duration estimate")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "prompt for baseline, MDE and test type")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "output format (text or json)")
	cmd.MarkFlagsMutuallyExclusive("baseline-rate", "baseline-trials")

	return cmd
}

func (f *designFlags) input(opts *rootOptions) (experiment.DesignInput, error) {
	tails, err := stats.ParseTails(f.tails)
	if err != nil {
		return experiment.DesignInput{}, err
	}
	if f.mde == 0 {
		return experiment.DesignInput{}, fmt.Errorf("--mde is required and must not be zero")
	}

	in := experiment.DesignInput{
		BaselineRate:     f.baselineRate,
		MDE:              f.mde,
		RelativeMDE:      !f.absolute,
		Alpha:            f.alpha,
		Power:            f.power,
		Tails:            tails,
		Ratio:            f.ratio,
		MaxSampleSize:    opts.cfg.MaxSampleSize,
		VisitorsPerMonth: f.visitorsPerMonth,
	}

	switch {
	case f.baselineTrials > 0 || f.baselineSuccesses > 0:
		in.Baseline = &stats.Observation{Trials: f.baselineTrials, Successes: f.baselineSuccesses}
	case f.baselineRate <= 0:
		return experiment.DesignInput{}, fmt.Errorf("need a baseline: --baseline-trials/--baseline-successes or --baseline-rate")
	}

	return in, nil
}

func (f *designFlags) prompt() error {
	var err error

	if f.baselineTrials == 0 && f.baselineRate == 0 {
		if f.baselineRate, err = promptFloat("Baseline conversion rate", 0.03, inUnitInterval); err != nil {
			return err
		}
	}
	if f.mde == 0 {
		label := "Minimum detectable lift (relative, 0.10 = +10%)"
		if f.absolute {
			label = "Minimum detectable change (rate points)"
		}
		if f.mde, err = promptFloat(label, 0.10, nonZero); err != nil {
			return err
		}
	}

	current, err := stats.ParseTails(f.tails)
	if err != nil {
		current = stats.TwoSided
	}
	tails, err := promptTails(current)
	if err != nil {
		return err
	}
	f.tails = tails.String()
	return nil
}

func printPlan(cmd *cobra.Command, plan *experiment.Plan, visitorsPerMonth float64) {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	relative := 0.0
	if plan.BaselineRate > 0 {
		relative = (plan.TargetRate - plan.BaselineRate) / plan.BaselineRate
	}

	fmt.Fprintf(w, "BASELINE RATE\t%s\n", formatPercent(plan.BaselineRate))
	fmt.Fprintf(w, "TARGET RATE\t%s (%s relative)\n", formatPercent(plan.TargetRate), formatSignedPercent(relative))
	fmt.Fprintf(w, "EFFECT SIZE (h)\t%.4f\n", plan.EffectSize)
	fmt.Fprintf(w, "ALPHA / POWER\t%.2f / %.2f (%s-sided)\n", plan.Alpha, plan.Power, plan.Tails)
	w.Flush()

	rule(out)

	fmt.Fprintf(w, "SAMPLE SIZE\t%s per group", formatNumber(plan.PerGroup))
	if plan.TreatmentSize != plan.PerGroup {
		fmt.Fprintf(w, " (control), %s (treatment)", formatNumber(plan.TreatmentSize))
	}
	fmt.Fprintf(w, ", %s total\n", formatNumber(plan.Total))
	fmt.Fprintf(w, "ACHIEVED POWER\t%.1f%%\n", plan.AchievedPower*100)
	if plan.HasDuration {
		fmt.Fprintf(w, "DURATION\t%.1f months (~%d days) at %s visitors/month\n",
			plan.DurationMonths, plan.DurationDays(), formatNumber(int64(visitorsPerMonth)))
		if plan.HasMonthlyTarget {
			fmt.Fprintf(w, "DETECTABLE IN 1 MONTH\t%s (h = %.4f)\n", formatPercent(plan.MonthlyTargetRate), plan.MonthlyEffectSize)
		}
	}
	w.Flush()
}

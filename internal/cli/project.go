package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/headline-goat/lift-goat/internal/revenue"
)

func newProjectCmd(opts *rootOptions) *cobra.Command {
	var (
		in       revenue.Input
		spendCap float64
		format   string
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project a conversion-rate change onto revenue",
		Long: `Project the monthly revenue impact of moving from a baseline
conversion rate to a new one.

Example:
  lg project --baseline 0.30 --new 0.33 --volume 1462 --aov 2729.43`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			p := &revenue.Projector{MonthsPerYear: opts.cfg.MonthsPerYear, SpendCap: spendCap}
			proj, err := p.Project(in)
			if err != nil {
				return explain(err)
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), proj)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "CURRENT\t%s customers\t%s\n", formatNumber(int64(proj.CurrentCustomers)), formatMoney(proj.CurrentRevenue))
			fmt.Fprintf(w, "NEW\t%s customers\t%s\n", formatNumber(int64(proj.NewCustomers)), formatMoney(proj.NewRevenue))
			fmt.Fprintf(w, "MONTHLY DELTA\t\t%s\n", formatMoney(proj.DeltaRevenue))
			fmt.Fprintf(w, "ANNUAL DELTA\t\t%s\n", formatMoney(proj.AnnualDelta))
			if proj.RelativeDefined {
				fmt.Fprintf(w, "RELATIVE\t\t%s\n", formatSignedPercent(proj.RelativeIncrease))
			}
			if proj.HasROI {
				fmt.Fprintf(w, "ROI (cap %s)\t\t%s monthly, %s annual\n", formatMoney(spendCap), formatSignedPercent(proj.ROI), formatSignedPercent(proj.AnnualROI))
			}
			target := "NO"
			if proj.MeetsTarget {
				target = "YES"
			}
			fmt.Fprintf(w, "MEETS TARGET\t%s\t%s\n", formatMoney(proj.TargetRevenue), target)
			return w.Flush()
		},
	}

	cmd.Flags().Float64Var(&in.BaselineRate, "baseline", 0, "current conversion rate (required)")
	cmd.Flags().Float64Var(&in.NewRate, "new", 0, "new conversion rate (required)")
	cmd.Flags().Float64Var(&in.VisitorVolume, "volume", 0, "visitors per month (required)")
	cmd.Flags().Float64Var(&in.AvgOrderValue, "aov", 0, "average order value (required)")
	cmd.Flags().Float64Var(&in.TargetRevenue, "target", opts.cfg.TargetRevenue, "monthly revenue increase that justifies the change")
	cmd.Flags().Float64Var(&spendCap, "spend-cap", opts.cfg.SpendCap, "investment ceiling for ROI (0 disables ROI)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text or json)")
	for _, name := range []string{"baseline", "new", "volume", "aov"} {
		cmd.MarkFlagRequired(name)
	}

	return cmd
}

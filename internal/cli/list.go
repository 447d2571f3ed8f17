package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/headline-goat/lift-goat/internal/store"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tests in the event log",
		Long:  `List all tests recorded in the event log database with their totals.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts.cfg.DBPath, func(s *store.SQLiteStore) error {
				ctx := context.Background()

				tests, err := s.ListTests(ctx)
				if err != nil {
					return fmt.Errorf("failed to list tests: %w", err)
				}

				if len(tests) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tests in this event log.")
					return nil
				}

				// Print table
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tSTATE\tVARIANTS\tVIEWS\tCONVERSIONS\tCREATED")

				for _, test := range tests {
					variantStats, err := s.GetVariantStats(ctx, test.Name, store.Range{})
					if err != nil {
						return fmt.Errorf("failed to get stats for test %s: %w", test.Name, err)
					}

					var totalViews, totalConversions int64
					for _, vs := range variantStats {
						totalViews += int64(vs.Views)
						totalConversions += int64(vs.Conversions)
					}

					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
						test.Name,
						strings.ToUpper(string(test.State)),
						len(test.Variants),
						formatNumber(totalViews),
						formatNumber(totalConversions),
						test.CreatedAt.Format("2006-01-02"),
					)
				}

				return w.Flush()
			})
		},
	}
}

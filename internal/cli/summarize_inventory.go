package cmd

import (
	"github.com/spf13/cobra"
)

func newSummarizeInventoryCmd(flags *rootFlags) *cobra.Command {
	var (
		filtersRaw []string
		groupBy    string
	)

	c := &cobra.Command{
		Use:   "summarize-inventory LOCATION [TERM]",
		Short: "Summarize inventory object counts, optionally grouped by a specifics field",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(filtersRaw)
			if err != nil {
				return &argError{err: err}
			}

			var term string
			if len(args) == 2 {
				term = args[1]
			}

			eng, closer, err := buildEngine(flags)
			defer closer()
			if err != nil {
				return err
			}

			res, err := eng.SummarizeInventory(cmd.Context(), args[0], term, groupBy, filters)
			return render(cmd.OutOrStdout(), flags.displayFormat, res, err)
		},
	}

	c.Flags().StringArrayVar(&filtersRaw, "filters", nil, "field=value constraint, repeatable")
	c.Flags().StringVar(&groupBy, "group-by", "", "specifics field to group counts by, e.g. domain")
	return c
}

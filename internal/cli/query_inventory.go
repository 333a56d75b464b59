package cmd

import (
	"github.com/spf13/cobra"
)

func newQueryInventoryCmd(flags *rootFlags) *cobra.Command {
	var (
		filtersRaw []string
		resultsMax int
		details    string
		mode       string
	)

	c := &cobra.Command{
		Use:   "query-inventory LOCATION TERM",
		Short: "List inventory objects matching TERM and any --filters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if details != "" && details != "documentation" && details != "full" {
				return &argError{err: cmdErrf("--details must be documentation or full, got %q", details)}
			}

			filters, err := parseFilters(filtersRaw)
			if err != nil {
				return &argError{err: err}
			}

			eng, closer, err := buildEngine(flags)
			defer closer()
			if err != nil {
				return err
			}

			res, err := eng.QueryInventory(cmd.Context(), args[0], args[1], filters, mode, resultsMax)
			return renderDetailed(cmd.OutOrStdout(), flags.displayFormat, details == "full", res, err)
		},
	}

	c.Flags().StringArrayVar(&filtersRaw, "filters", nil, "field=value constraint, repeatable")
	c.Flags().IntVar(&resultsMax, "results-max", 10, "maximum number of results")
	c.Flags().StringVar(&details, "details", "documentation", "result verbosity: documentation|full")
	c.Flags().StringVar(&mode, "mode", "similar", "match mode: exact|pattern|similar")
	return c
}

package cmd

import (
	"github.com/spf13/cobra"
)

func newQueryContentCmd(flags *rootFlags) *cobra.Command {
	var (
		filtersRaw []string
		resultsMax int
		linesMax   int
		contentID  string
	)

	c := &cobra.Command{
		Use:   "query-content LOCATION TERM",
		Short: "Extract rendered documentation content for the best-matching objects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(filtersRaw)
			if err != nil {
				return &argError{err: err}
			}

			eng, closer, err := buildEngine(flags)
			defer closer()
			if err != nil {
				return err
			}

			res, err := eng.QueryContent(cmd.Context(), args[0], args[1], filters, resultsMax, linesMax, contentID)
			return render(cmd.OutOrStdout(), flags.displayFormat, res, err)
		},
	}

	c.Flags().StringArrayVar(&filtersRaw, "filters", nil, "field=value constraint, repeatable")
	c.Flags().IntVar(&resultsMax, "results-max", 10, "maximum number of documents")
	c.Flags().IntVar(&linesMax, "lines-max", 40, "truncate each description to this many lines")
	c.Flags().StringVar(&contentID, "content-id", "", "select exactly the object this content_id names, skipping term search")
	return c
}

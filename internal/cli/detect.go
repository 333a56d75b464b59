package cmd

import (
	"github.com/spf13/cobra"
)

func newDetectCmd(flags *rootFlags) *cobra.Command {
	var genus string

	c := &cobra.Command{
		Use:   "detect LOCATION",
		Short: "Run the detection orchestrator against a location and report what was selected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if genus != "" && genus != "inventory" && genus != "structure" {
				return &argError{err: cmdErrf("--genus must be inventory or structure, got %q", genus)}
			}

			eng, closer, err := buildEngine(flags)
			defer closer()
			if err != nil {
				return err
			}

			res := eng.Detect(cmd.Context(), args[0])
			if genus != "" {
				filtered := res.Diagnostics[:0:0]
				for _, d := range res.Diagnostics {
					if d.Genus == genus {
						filtered = append(filtered, d)
					}
				}
				res.Diagnostics = filtered
			}
			return render(cmd.OutOrStdout(), flags.displayFormat, res, nil)
		},
	}

	c.Flags().StringVar(&genus, "genus", "", "restrict diagnostics to inventory|structure (default: both)")
	return c
}

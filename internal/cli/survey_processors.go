package cmd

import (
	"github.com/spf13/cobra"
)

func newSurveyProcessorsCmd(flags *rootFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "survey-processors [PROCESSOR_NAME]",
		Short: "Report every registered processor's self-described capabilities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}

			eng, closer, err := buildEngine(flags)
			defer closer()
			if err != nil {
				return err
			}

			res := eng.SurveyProcessors(name)
			return render(cmd.OutOrStdout(), flags.displayFormat, res, nil)
		},
	}
	return c
}

package cmd

import "fmt"

// cmdErrf is a thin fmt.Errorf alias kept local to internal/cli so
// argument-validation errors in subcommand files don't need to import fmt
// individually just for this one call each.
func cmdErrf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Package cmd implements the interactive command line: one cobra
// subcommand per query function, all sharing the same global flags and
// the same uniform error interceptor. This is the thin, out-of-core-scope
// interface layer the spec's § 6 describes — it never touches a cache or
// a processor directly, only the engine.Engine it constructs from flags.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/docsintel/internal/config"
	"github.com/rohmanhakim/docsintel/internal/engine"
	"github.com/rohmanhakim/docsintel/internal/telemetry"
)

// rootFlags holds the persistent flags shared by every subcommand. It is
// rebuilt fresh by newRootCmd for every invocation rather than living at
// package scope, so the CLI carries no mutable global state between runs
// (mirrors the engine's own "no process-wide state" discipline, spec § 5).
type rootFlags struct {
	cfgFile       string
	displayFormat string
	logFile       string
	logLevel      string
}

// newRootCmd constructs the full command tree: the root command, its
// persistent flags, and every subcommand wired against the same rootFlags
// instance.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "docsintel",
		Short: "A documentation intelligence engine.",
		Long: `docsintel discovers a published documentation site's machine-readable
object inventory and serves structured queries against it: list inventory
objects matching a term and filters, or extract the rendered documentation
content for the best-matching objects.

It speaks the same query set over an interactive command line and a
JSON-RPC tool server ("docsintel serve").`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.cfgFile, "config-file", "", "config file path (JSON)")
	root.PersistentFlags().StringVar(&flags.displayFormat, "display-format", "markdown", "output format: markdown|json")
	root.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "write structured telemetry events to this file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug|info|error")

	root.AddCommand(newDetectCmd(flags))
	root.AddCommand(newQueryInventoryCmd(flags))
	root.AddCommand(newQueryContentCmd(flags))
	root.AddCommand(newSummarizeInventoryCmd(flags))
	root.AddCommand(newSurveyProcessorsCmd(flags))
	root.AddCommand(newServeCmd(flags))

	return root
}

// Execute builds the command tree and runs it against os.Args, exiting the
// process with the interceptor's exit code on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// ExecuteForTest runs the command tree against explicit args with output
// captured to out, returning the error instead of calling os.Exit. It
// exists solely so internal/cli's tests can drive the real cobra wiring
// end to end.
func ExecuteForTest(out io.Writer, args []string) error {
	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	return root.Execute()
}

// buildEngine constructs the Engine and telemetry sink a command needs,
// loading config-file overrides if --config-file was given. The returned
// closer must be called (even on error) to flush and close the log file.
func buildEngine(flags *rootFlags) (*engine.Engine, func(), error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, func() {}, &argError{err: err}
	}
	cfg.WithDisplayFormat(flags.displayFormat)

	sink, closer, err := buildSink(flags)
	if err != nil {
		return nil, func() {}, &argError{err: err}
	}

	return engine.New(cfg, sink), closer, nil
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	if flags.cfgFile != "" {
		return config.WithConfigFile(flags.cfgFile)
	}
	return config.WithDefault().Build()
}

func buildSink(flags *rootFlags) (telemetry.Sink, func(), error) {
	if flags.logFile == "" {
		return telemetry.NopSink{}, func() {}, nil
	}
	f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, func() {}, fmt.Errorf("opening log file %q: %w", flags.logFile, err)
	}
	sink := telemetry.NewFileSink(f, telemetry.ParseLevel(flags.logLevel))
	return sink, func() { _ = f.Close() }, nil
}

// argError marks a failure as an argument/usage error (CLI exit code 2)
// rather than a domain Omnierror (exit code 1).
type argError struct{ err error }

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

// exitCodeFor implements the spec's exit-code contract: 0 on success
// (never reaches here), 1 on any Omnierror, 2 on argument errors.
func exitCodeFor(err error) int {
	var ae *argError
	if errors.As(err, &ae) {
		return 2
	}
	return 1
}

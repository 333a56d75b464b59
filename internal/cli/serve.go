package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/docsintel/internal/rpc"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		transport      string
		port           int
		extraFunctions bool
	)

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON-RPC tool server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch transport {
			case "stdio", "sse", "stdio-over-tcp":
			default:
				return &argError{err: cmdErrf("--transport must be stdio, sse, or stdio-over-tcp, got %q", transport)}
			}

			eng, closer, err := buildEngine(flags)
			defer closer()
			if err != nil {
				return err
			}

			server := rpc.New(eng, extraFunctions)
			addr := fmt.Sprintf(":%d", port)
			return server.Serve(cmd.Context(), transport, addr)
		},
	}

	c.Flags().StringVar(&transport, "transport", "stdio", "transport: stdio|sse|stdio-over-tcp")
	c.Flags().IntVar(&port, "port", 8765, "listen port for stdio-over-tcp")
	c.Flags().BoolVar(&extraFunctions, "extra-functions", false, "also expose detect and survey_processors as tools")

	return c
}

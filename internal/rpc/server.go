// Package rpc implements the JSON-RPC tool server: the same five query
// functions the CLI exposes, wired as MCP tools. This is the thin,
// out-of-core-scope RPC framing/transport layer the spec describes — every
// handler here does nothing but parse tool arguments, call engine.Engine,
// and render the result the same way engine.Engine would for any caller.
package rpc

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohmanhakim/docsintel/internal/build"
	"github.com/rohmanhakim/docsintel/internal/engine"
)

const (
	serverName = "docsintel"
)

// Server wraps an engine.Engine with the MCP tool registrations the spec's
// RPC surface requires. New's extraFunctions parameter mirrors the CLI's
// "--extra-functions" flag: with it set, detect and survey_processors are registered alongside
// the core query tools.
type Server struct {
	mcp *mcp.Server
}

// New builds a Server around eng. extraFunctions exposes detect and
// survey_processors as tools in addition to query_inventory, query_content,
// and summarize_inventory.
func New(eng *engine.Engine, extraFunctions bool) *Server {
	h := &handlers{engine: eng}

	s := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: build.FullVersion(),
	}, &mcp.ServerOptions{
		Instructions: "Use query_inventory to find documented objects by name/filters, then query_content to extract their rendered documentation.",
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "query_inventory",
		Description: "List inventory objects at a documentation location matching a term and optional filters.",
	}, h.QueryInventory)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "query_content",
		Description: "Extract the rendered documentation content (signature + description) for the best-matching inventory objects.",
	}, h.QueryContent)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "summarize_inventory",
		Description: "Summarize inventory object counts at a documentation location, optionally grouped by a specifics field.",
	}, h.SummarizeInventory)

	if extraFunctions {
		mcp.AddTool(s, &mcp.Tool{
			Name:        "detect",
			Description: "Report the inventory and structure processors selected for a documentation location, for diagnostics.",
		}, h.Detect)

		mcp.AddTool(s, &mcp.Tool{
			Name:        "survey_processors",
			Description: "Report every registered processor's self-described capabilities.",
		}, h.SurveyProcessors)
	}

	return &Server{mcp: s}
}

// Serve runs the server over transport, blocking until the context is
// canceled or the transport closes. Only "stdio" is implemented by this
// build of the SDK; "sse" and "stdio-over-tcp" are accepted by the CLI's
// flag but rejected here, same as the grounding example's own
// not-yet-implemented SSE transport (see DESIGN.md).
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case "stdio":
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	case "sse", "stdio-over-tcp":
		return fmt.Errorf("%s transport not yet implemented, use stdio", transport)
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio)", transport)
	}
}

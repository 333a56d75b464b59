package rpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/engine"
	"github.com/rohmanhakim/docsintel/internal/result"
)

type handlers struct {
	engine *engine.Engine
}

// QueryInventoryArgs defines the arguments for the query_inventory tool.
type QueryInventoryArgs struct {
	Location   string            `json:"location" jsonschema_description:"Base URL of the documentation site"`
	Term       string            `json:"term" jsonschema_description:"Search term to match inventory object names against"`
	Filters    map[string]string `json:"filters,omitempty" jsonschema_description:"Format-specific field constraints, e.g. {\"domain\": \"py\"}"`
	Mode       string            `json:"mode,omitempty" jsonschema_description:"Match mode: exact|pattern|similar (default similar)"`
	ResultsMax int               `json:"results_max,omitempty" jsonschema_description:"Maximum number of results (default 10)"`
}

// QueryContentArgs defines the arguments for the query_content tool.
type QueryContentArgs struct {
	Location   string            `json:"location" jsonschema_description:"Base URL of the documentation site"`
	Term       string            `json:"term,omitempty" jsonschema_description:"Search term, ignored when content_id is set"`
	Filters    map[string]string `json:"filters,omitempty" jsonschema_description:"Format-specific field constraints"`
	ResultsMax int               `json:"results_max,omitempty" jsonschema_description:"Maximum number of documents (default 10)"`
	LinesMax   int               `json:"lines_max,omitempty" jsonschema_description:"Truncate each description to this many lines (default 40)"`
	ContentID  string            `json:"content_id,omitempty" jsonschema_description:"Select exactly the object this content_id names"`
}

// SummarizeInventoryArgs defines the arguments for the summarize_inventory tool.
type SummarizeInventoryArgs struct {
	Location string            `json:"location" jsonschema_description:"Base URL of the documentation site"`
	Term     string            `json:"term,omitempty" jsonschema_description:"Optional search term narrowing the summarized set"`
	Filters  map[string]string `json:"filters,omitempty" jsonschema_description:"Format-specific field constraints"`
	GroupBy  string            `json:"group_by,omitempty" jsonschema_description:"Specifics field to group counts by, e.g. domain"`
}

// DetectArgs defines the arguments for the detect tool.
type DetectArgs struct {
	Location string `json:"location" jsonschema_description:"Base URL of the documentation site"`
}

// SurveyProcessorsArgs defines the arguments for the survey_processors tool.
type SurveyProcessorsArgs struct {
	ProcessorName string `json:"processor_name,omitempty" jsonschema_description:"Restrict the report to a single processor"`
}

func (h *handlers) QueryInventory(ctx context.Context, req *mcp.CallToolRequest, args QueryInventoryArgs) (*mcp.CallToolResult, any, error) {
	resultsMax := args.ResultsMax
	if resultsMax == 0 {
		resultsMax = 10
	}
	res, err := h.engine.QueryInventory(ctx, args.Location, args.Term, docmodel.Filters(args.Filters), args.Mode, resultsMax)
	return toolResult(res, err)
}

func (h *handlers) QueryContent(ctx context.Context, req *mcp.CallToolRequest, args QueryContentArgs) (*mcp.CallToolResult, any, error) {
	resultsMax := args.ResultsMax
	if resultsMax == 0 {
		resultsMax = 10
	}
	linesMax := args.LinesMax
	if linesMax == 0 {
		linesMax = 40
	}
	res, err := h.engine.QueryContent(ctx, args.Location, args.Term, docmodel.Filters(args.Filters), resultsMax, linesMax, args.ContentID)
	return toolResult(res, err)
}

func (h *handlers) SummarizeInventory(ctx context.Context, req *mcp.CallToolRequest, args SummarizeInventoryArgs) (*mcp.CallToolResult, any, error) {
	res, err := h.engine.SummarizeInventory(ctx, args.Location, args.Term, args.GroupBy, docmodel.Filters(args.Filters))
	return toolResult(res, err)
}

func (h *handlers) Detect(ctx context.Context, req *mcp.CallToolRequest, args DetectArgs) (*mcp.CallToolResult, any, error) {
	res := h.engine.Detect(ctx, args.Location)
	return toolResult(res, nil)
}

func (h *handlers) SurveyProcessors(ctx context.Context, req *mcp.CallToolRequest, args SurveyProcessorsArgs) (*mcp.CallToolResult, any, error) {
	res := h.engine.SurveyProcessors(args.ProcessorName)
	return toolResult(res, nil)
}

// toolResult renders a query's outcome as the tool's text content. Per the
// spec's RPC contract, a domain Omnierror is never a protocol-level fault:
// it is rendered to its JSON envelope and returned as ordinary tool output,
// same as a success result. Only a truly unexpected (non-Omnierror) failure
// is wrapped as a generic internal-error envelope, still without raising a
// protocol fault.
func toolResult(value result.Renderable, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		var omni result.Omnierror
		if errors.As(err, &omni) {
			data, _ := omni.RenderAsJSON()
			return textResult(data), nil, nil
		}
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{
				"type":    "internal_error",
				"title":   "Internal error",
				"message": err.Error(),
			},
		})
		return textResult(data), nil, nil
	}

	data, err := value.RenderAsJSON()
	if err != nil {
		data, _ = json.Marshal(map[string]any{
			"error": map[string]string{
				"type":    "internal_error",
				"title":   "Internal error",
				"message": "rendering result: " + err.Error(),
			},
		})
	}
	return textResult(data), nil, nil
}

func textResult(data []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}

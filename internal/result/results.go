package result

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
)

// Renderable is implemented by every success result type.
type Renderable interface {
	RenderAsJSON() ([]byte, error)
	RenderAsMarkdown(revealInternals bool) string
}

type searchMetadata struct {
	Mode      string `json:"mode"`
	Term      string `json:"term"`
	Threshold float64 `json:"threshold,omitempty"`
}

// InventoryQueryResult is the return value of query_inventory.
type InventoryQueryResult struct {
	Location       string                  `json:"location"`
	Term           string                  `json:"term"`
	Objects        []docmodel.SearchResult `json:"objects"`
	SearchMetadata searchMetadata          `json:"search_metadata"`
}

func NewInventoryQueryResult(location, term string, objects []docmodel.SearchResult, mode string, threshold float64) InventoryQueryResult {
	return InventoryQueryResult{
		Location:       location,
		Term:           term,
		Objects:        objects,
		SearchMetadata: searchMetadata{Mode: mode, Term: term, Threshold: threshold},
	}
}

func (r InventoryQueryResult) RenderAsJSON() ([]byte, error) { return json.Marshal(r) }

func (r InventoryQueryResult) RenderAsMarkdown(revealInternals bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Inventory: %s\n\n", r.Location)
	fmt.Fprintf(&b, "Term: `%s` (%d result(s))\n\n", r.Term, len(r.Objects))
	for _, sr := range r.Objects {
		fmt.Fprintf(&b, "- **%s** (score %.2f, %s) — `%s`\n", sr.Object.Name(), sr.Score, sr.Reason, sr.Object.URI())
	}
	if revealInternals {
		fmt.Fprintf(&b, "\n_mode=%s threshold=%.2f_\n", r.SearchMetadata.Mode, r.SearchMetadata.Threshold)
	}
	return b.String()
}

// ContentQueryResult is the return value of query_content.
type ContentQueryResult struct {
	Documents []docmodel.ContentDocument `json:"documents"`
}

func NewContentQueryResult(documents []docmodel.ContentDocument) ContentQueryResult {
	return ContentQueryResult{Documents: documents}
}

type contentDocumentJSON struct {
	Name             string `json:"name"`
	ContentID        string `json:"content_id"`
	Signature        string `json:"signature"`
	Description      string `json:"description"`
	DocumentationURL string `json:"documentation_url"`
}

func (r ContentQueryResult) RenderAsJSON() ([]byte, error) {
	docs := make([]contentDocumentJSON, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, contentDocumentJSON{
			Name:             d.InventoryObject().Name(),
			ContentID:        d.ContentID(),
			Signature:        d.Signature(),
			Description:      d.Description(),
			DocumentationURL: d.DocumentationURL(),
		})
	}
	return json.Marshal(struct {
		Documents []contentDocumentJSON `json:"documents"`
	}{Documents: docs})
}

func (r ContentQueryResult) RenderAsMarkdown(revealInternals bool) string {
	var b strings.Builder
	for _, d := range r.Documents {
		fmt.Fprintf(&b, "## %s\n\n```\n%s\n```\n\n%s\n\n", d.InventoryObject().Name(), d.Signature(), d.Description())
		if revealInternals {
			fmt.Fprintf(&b, "_content_id=%s url=%s_\n\n", d.ContentID(), d.DocumentationURL())
		}
	}
	return b.String()
}

// SummarizeInventoryResult is the return value of summarize_inventory.
type SummarizeInventoryResult struct {
	Location string         `json:"location"`
	Term     string         `json:"term,omitempty"`
	GroupBy  string         `json:"group_by,omitempty"`
	Counts   map[string]int `json:"counts"`
	Total    int            `json:"total"`
}

func NewSummarizeInventoryResult(location, term, groupBy string, counts map[string]int, total int) SummarizeInventoryResult {
	return SummarizeInventoryResult{Location: location, Term: term, GroupBy: groupBy, Counts: counts, Total: total}
}

func (r SummarizeInventoryResult) RenderAsJSON() ([]byte, error) { return json.Marshal(r) }

func (r SummarizeInventoryResult) RenderAsMarkdown(revealInternals bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Summary: %s\n\nTotal: %d\n\n", r.Location, r.Total)
	if r.GroupBy != "" {
		fmt.Fprintf(&b, "Grouped by `%s`:\n\n", r.GroupBy)
		for group, count := range r.Counts {
			fmt.Fprintf(&b, "- %s: %d\n", group, count)
		}
	}
	return b.String()
}

// DetectionDiagnostic is one genus's selected (or absent) detection,
// surfaced for the detect() diagnostic query.
type DetectionDiagnostic struct {
	Genus         string            `json:"genus"`
	ProcessorName string            `json:"processor_name,omitempty"`
	Confidence    float64           `json:"confidence"`
	BaseURL       string            `json:"base_url,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	FromCache     bool              `json:"from_cache"`
}

// DetectResult is the return value of detect().
type DetectResult struct {
	Location    string                `json:"location"`
	Diagnostics []DetectionDiagnostic `json:"diagnostics"`
}

func NewDetectResult(location string, diagnostics []DetectionDiagnostic) DetectResult {
	return DetectResult{Location: location, Diagnostics: diagnostics}
}

func (r DetectResult) RenderAsJSON() ([]byte, error) { return json.Marshal(r) }

func (r DetectResult) RenderAsMarkdown(revealInternals bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Detection: %s\n\n", r.Location)
	for _, d := range r.Diagnostics {
		if d.ProcessorName == "" {
			fmt.Fprintf(&b, "- %s: no qualifying processor\n", d.Genus)
			continue
		}
		fmt.Fprintf(&b, "- %s: **%s** (confidence %.2f, base_url=%s)\n", d.Genus, d.ProcessorName, d.Confidence, d.BaseURL)
	}
	return b.String()
}

// ProcessorCapabilities is one processor's self-described feature set,
// returned by survey_processors.
type ProcessorCapabilities struct {
	Name                        string            `json:"name"`
	Genus                       string            `json:"genus"`
	BuiltIn                     bool              `json:"built_in"`
	SupportedInventoryTypes     []string          `json:"supported_inventory_types,omitempty"`
	SupportedFilters            []string          `json:"supported_filters,omitempty"`
	ContentExtractionFeatures   []string          `json:"content_extraction_features,omitempty"`
	RecommendedConfidenceThreshold float64        `json:"recommended_confidence_threshold,omitempty"`
	ConfidenceByInventoryType   map[string]float64 `json:"confidence_by_inventory_type,omitempty"`
}

// SurveyProcessorsResult is the return value of survey_processors.
type SurveyProcessorsResult struct {
	Processors []ProcessorCapabilities `json:"processors"`
}

func NewSurveyProcessorsResult(processors []ProcessorCapabilities) SurveyProcessorsResult {
	return SurveyProcessorsResult{Processors: processors}
}

func (r SurveyProcessorsResult) RenderAsJSON() ([]byte, error) { return json.Marshal(r) }

func (r SurveyProcessorsResult) RenderAsMarkdown(revealInternals bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Processors\n\n")
	for _, p := range r.Processors {
		fmt.Fprintf(&b, "## %s (%s)\n\nbuilt_in=%v\n\n", p.Name, p.Genus, p.BuiltIn)
	}
	return b.String()
}

// Package structure implements the built-in structure processors: Sphinx,
// MkDocs, and Pydoctor. Each detects whether a location's rendered HTML
// matches its theme, and, once detected, extracts per-object signatures
// and Markdown descriptions from the live pages.
package structure

import (
	"context"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
)

// Capabilities describes what one processor supports, surfaced verbatim by
// survey_processors.
type Capabilities struct {
	SupportedInventoryTypes      []docmodel.InventoryType
	ContentExtractionFeatures    []string
	ConfidenceByInventoryType    map[string]float64
}

// Processor is the detection contract every built-in (and third-party)
// structure theme implements. Detect returns (nil, nil) when the theme is
// absent at location, rather than an error — only transport-level
// failures are errors.
type Processor interface {
	Name() string
	Capabilities() Capabilities
	Detect(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.StructureDetection, error)
}

// extractionConcurrency bounds how many objects a single ExtractContents
// call fetches at once, per spec's "N concurrent fetches (bounded)".
const extractionConcurrency = 10

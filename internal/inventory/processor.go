package inventory

import (
	"context"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
)

// Capabilities describes what one processor supports, surfaced verbatim by
// survey_processors.
type Capabilities struct {
	SupportedInventoryTypes        []docmodel.InventoryType
	SupportedFilters                []string
	RecommendedConfidenceThreshold float64
}

// Processor is the detection contract every built-in (and third-party)
// inventory format implements. Detect returns (nil, nil) when the format
// is absent at location, rather than an error — only transport-level or
// parse-level failures are errors.
type Processor interface {
	Name() string
	Capabilities() Capabilities
	Detect(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.InventoryDetection, error)
}

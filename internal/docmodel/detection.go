package docmodel

import "context"

// Genus is one of {inventory, structure} — which capability set a
// processor and its detections implement.
type Genus string

const (
	GenusInventory Genus = "inventory"
	GenusStructure Genus = "structure"
)

// Detection is the result of a processor's probe against a location: it
// carries confidence, the working base URL, and enough state to perform
// the genus-specific follow-up operation.
type Detection interface {
	ProcessorName() string
	Genus() Genus
	Confidence() float64
	BaseURL() string
	// Metadata returns format-specific detection context (theme, project,
	// version) surfaced to detect() diagnostics and survey_processors.
	Metadata() map[string]string
}

// Filters is a flat set of field=value constraints applied by
// InventoryDetection.FilterInventory, e.g. {"domain": "py", "role": "class"}.
type Filters map[string]string

// InventoryDetection is a Detection that can enumerate inventory objects
// matching a set of filters.
type InventoryDetection interface {
	Detection
	FilterInventory(ctx context.Context, filters Filters) ([]InventoryObject, error)
}

// StructureDetection is a Detection that can extract rendered content for
// a set of already-known inventory objects.
type StructureDetection interface {
	Detection
	ExtractContents(ctx context.Context, objects []InventoryObject) ([]ContentDocument, error)
}

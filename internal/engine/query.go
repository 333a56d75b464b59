package engine

import (
	"context"
	"strings"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/result"
	"github.com/rohmanhakim/docsintel/internal/search"
	"github.com/rohmanhakim/docsintel/pkg/contentid"
)

// resolveMode maps a caller-supplied mode string onto search.Mode,
// defaulting to similar (fuzzy) per spec 4.3.
func resolveMode(mode string) search.Mode {
	switch search.Mode(mode) {
	case search.ModeExact:
		return search.ModeExact
	case search.ModePattern:
		return search.ModePattern
	default:
		return search.ModeSimilar
	}
}

// resolveInventory runs the inventory half of determine_processor_optimal
// and returns the selected detection plus its filtered, location-rewritten
// objects (invariant: every object's location_url equals the detection's
// working base_url).
func (e *Engine) resolveInventory(ctx context.Context, location string, filters docmodel.Filters) (docmodel.InventoryDetection, []docmodel.InventoryObject, error) {
	det, err := e.inventoryOrch.Determine(ctx, location)
	if err != nil {
		return nil, nil, err
	}

	invDet, ok := det.(docmodel.InventoryDetection)
	if !ok {
		return nil, nil, &result.InventoryInvalidity{Source: location, Reason: "selected processor does not support inventory filtering"}
	}

	objects, err := invDet.FilterInventory(ctx, filters)
	if err != nil {
		return nil, nil, &result.InventoryInaccessibility{Source: location, Cause: err.Error()}
	}

	for i := range objects {
		objects[i] = objects[i].WithLocationURL(invDet.BaseURL())
	}

	return invDet, objects, nil
}

// QueryInventory implements query_inventory (spec 4.8): detect the
// inventory, apply filters, fuzzy-search by term, and cap at resultsMax.
// resultsMax == 0 returns zero objects, per the documented boundary
// behavior — it is not treated as "unset".
func (e *Engine) QueryInventory(ctx context.Context, location, term string, filters docmodel.Filters, mode string, resultsMax int) (result.InventoryQueryResult, error) {
	invDet, objects, err := e.resolveInventory(ctx, location, filters)
	if err != nil {
		return result.InventoryQueryResult{}, err
	}

	searchMode := resolveMode(mode)
	threshold := e.cfg.FuzzyThreshold()

	if resultsMax == 0 {
		return result.NewInventoryQueryResult(invDet.BaseURL(), term, nil, string(searchMode), threshold), nil
	}

	searchResults := search.Search(objects, term, search.Params{
		Mode:       searchMode,
		Threshold:  threshold,
		ResultsMax: resultsMax,
	})

	return result.NewInventoryQueryResult(invDet.BaseURL(), term, searchResults, string(searchMode), threshold), nil
}

// QueryContent implements query_content (spec 4.8). With contentID set, it
// selects exactly the object that content_id names (asserting it belongs
// to the resolved location) instead of running a term search.
func (e *Engine) QueryContent(ctx context.Context, location, term string, filters docmodel.Filters, resultsMax, linesMax int, contentID string) (result.ContentQueryResult, error) {
	if resultsMax == 0 {
		return result.NewContentQueryResult(nil), nil
	}

	invDet, objects, err := e.resolveInventory(ctx, location, filters)
	if err != nil {
		return result.ContentQueryResult{}, err
	}

	var candidates []docmodel.InventoryObject
	if contentID != "" {
		decodedLocation, decodedName, decodeErr := contentid.Decode(contentID)
		if decodeErr != nil {
			return result.ContentQueryResult{}, &result.InventoryInvalidity{Source: location, Reason: "malformed content_id: " + decodeErr.Error()}
		}
		if decodedLocation != invDet.BaseURL() {
			return result.ContentQueryResult{}, &result.InventoryInvalidity{Source: location, Reason: "content_id does not match the resolved location"}
		}

		allObjects, allErr := invDet.FilterInventory(ctx, docmodel.Filters{})
		if allErr != nil {
			return result.ContentQueryResult{}, &result.InventoryInaccessibility{Source: location, Cause: allErr.Error()}
		}
		var found *docmodel.InventoryObject
		for i := range allObjects {
			if allObjects[i].Name() == decodedName {
				obj := allObjects[i].WithLocationURL(invDet.BaseURL())
				found = &obj
				break
			}
		}
		if found == nil {
			return result.ContentQueryResult{}, &result.InventoryInvalidity{Source: location, Reason: "content_id names an object not present in the inventory"}
		}
		candidates = []docmodel.InventoryObject{*found}
	} else {
		overfetch := resultsMax * 3
		searchResults := search.Search(objects, term, search.Params{
			Mode:       search.ModeSimilar,
			Threshold:  e.cfg.FuzzyThreshold(),
			ResultsMax: overfetch,
		})
		candidates = make([]docmodel.InventoryObject, 0, len(searchResults))
		for _, sr := range searchResults {
			candidates = append(candidates, sr.Object)
		}
	}

	if len(candidates) == 0 {
		return result.NewContentQueryResult(nil), nil
	}

	structDetGeneric, err := e.structureOrch.Determine(ctx, location)
	if err != nil {
		return result.ContentQueryResult{}, err
	}
	structDet, ok := structDetGeneric.(docmodel.StructureDetection)
	if !ok {
		return result.ContentQueryResult{}, &result.DocumentationParseFailure{URL: location, Reason: "selected processor does not support content extraction"}
	}

	for i := range candidates {
		candidates[i] = candidates[i].WithLocationURL(structDet.BaseURL())
	}

	docs, err := structDet.ExtractContents(ctx, candidates)
	if err != nil {
		return result.ContentQueryResult{}, err
	}

	if len(docs) > resultsMax {
		docs = docs[:resultsMax]
	}

	for i := range docs {
		docs[i] = docs[i].WithDescription(truncateLines(docs[i].Description(), linesMax))
	}

	return result.NewContentQueryResult(docs), nil
}

// truncateLines caps s at linesMax lines. linesMax <= 0 means unbounded.
func truncateLines(s string, linesMax int) string {
	if linesMax <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= linesMax {
		return s
	}
	return strings.Join(lines[:linesMax], "\n")
}

// SummarizeInventory implements summarize_inventory (spec 4.8): an
// inventory query optionally narrowed by term, then grouped by a
// specifics field.
func (e *Engine) SummarizeInventory(ctx context.Context, location, term, groupBy string, filters docmodel.Filters) (result.SummarizeInventoryResult, error) {
	invDet, objects, err := e.resolveInventory(ctx, location, filters)
	if err != nil {
		return result.SummarizeInventoryResult{}, err
	}

	var matched []docmodel.InventoryObject
	if term == "" {
		matched = objects
	} else {
		searchResults := search.Search(objects, term, search.Params{
			Mode:      search.ModeSimilar,
			Threshold: e.cfg.FuzzyThreshold(),
		})
		matched = make([]docmodel.InventoryObject, 0, len(searchResults))
		for _, sr := range searchResults {
			matched = append(matched, sr.Object)
		}
	}

	counts := make(map[string]int)
	if groupBy != "" {
		for _, obj := range matched {
			value, _ := obj.Specific(groupBy)
			counts[value]++
		}
	}

	return result.NewSummarizeInventoryResult(invDet.BaseURL(), term, groupBy, counts, len(matched)), nil
}

// Detect implements the detect() diagnostic query (spec 4.8): the selected
// detection per genus, or its absence, along with cache provenance.
func (e *Engine) Detect(ctx context.Context, location string) result.DetectResult {
	invFromCache := e.inventoryOrch.HasFreshCacheEntry(location)
	invDet, _ := e.inventoryOrch.Determine(ctx, location)

	structFromCache := e.structureOrch.HasFreshCacheEntry(location)
	structDet, _ := e.structureOrch.Determine(ctx, location)

	diagnostics := []result.DetectionDiagnostic{
		diagnosticFor(string(docmodel.GenusInventory), invDet, invFromCache),
		diagnosticFor(string(docmodel.GenusStructure), structDet, structFromCache),
	}

	return result.NewDetectResult(location, diagnostics)
}

func diagnosticFor(genus string, det docmodel.Detection, fromCache bool) result.DetectionDiagnostic {
	if det == nil {
		return result.DetectionDiagnostic{Genus: genus, FromCache: fromCache}
	}
	return result.DetectionDiagnostic{
		Genus:         genus,
		ProcessorName: det.ProcessorName(),
		Confidence:    det.Confidence(),
		BaseURL:       det.BaseURL(),
		Metadata:      det.Metadata(),
		FromCache:     fromCache,
	}
}

// SurveyProcessors implements survey_processors (spec 4.8): every
// registered processor's self-described capabilities, optionally filtered
// to a single name.
func (e *Engine) SurveyProcessors(processorName string) result.SurveyProcessorsResult {
	var processors []result.ProcessorCapabilities

	for _, name := range e.inventoryRegistry.Names() {
		if processorName != "" && name != processorName {
			continue
		}
		proc, _ := e.inventoryRegistry.Get(name)
		caps := proc.Capabilities()
		types := make([]string, 0, len(caps.SupportedInventoryTypes))
		for _, t := range caps.SupportedInventoryTypes {
			types = append(types, string(t))
		}
		processors = append(processors, result.ProcessorCapabilities{
			Name:                           name,
			Genus:                          string(docmodel.GenusInventory),
			BuiltIn:                        true,
			SupportedInventoryTypes:        types,
			SupportedFilters:               caps.SupportedFilters,
			RecommendedConfidenceThreshold: caps.RecommendedConfidenceThreshold,
		})
	}

	for _, name := range e.structureRegistry.Names() {
		if processorName != "" && name != processorName {
			continue
		}
		proc, _ := e.structureRegistry.Get(name)
		caps := proc.Capabilities()
		types := make([]string, 0, len(caps.SupportedInventoryTypes))
		for _, t := range caps.SupportedInventoryTypes {
			types = append(types, string(t))
		}
		processors = append(processors, result.ProcessorCapabilities{
			Name:                      name,
			Genus:                     string(docmodel.GenusStructure),
			BuiltIn:                   true,
			SupportedInventoryTypes:   types,
			ContentExtractionFeatures: caps.ContentExtractionFeatures,
			ConfidenceByInventoryType: caps.ConfidenceByInventoryType,
		})
	}

	return result.NewSurveyProcessorsResult(processors)
}

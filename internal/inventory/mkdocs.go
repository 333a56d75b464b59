package inventory

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
)

// mkdocsCandidatePaths are probed in order; the first that yields a
// well-formed index wins.
var mkdocsCandidatePaths = []string{"search/search_index.json", "search_index.json"}

const mkdocsContentPreviewChars = 200

// MkDocsProcessor detects and parses MkDocs' search_index.json format.
type MkDocsProcessor struct{}

// NewMkDocsProcessor returns the MkDocs search_index.json processor.
func NewMkDocsProcessor() *MkDocsProcessor { return &MkDocsProcessor{} }

func (p *MkDocsProcessor) Name() string { return "mkdocs" }

func (p *MkDocsProcessor) Capabilities() Capabilities {
	return Capabilities{
		SupportedInventoryTypes:        []docmodel.InventoryType{docmodel.InventoryTypeMkDocsSearchIndex},
		SupportedFilters:                []string{"title", "uri"},
		RecommendedConfidenceThreshold: 0.6,
	}
}

type mkdocsSearchIndex struct {
	Config map[string]interface{} `json:"config"`
	Docs   []mkdocsDoc             `json:"docs"`
}

type mkdocsDoc struct {
	Location string `json:"location"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

func (p *MkDocsProcessor) Detect(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.InventoryDetection, error) {
	for _, candidate := range mkdocsCandidatePaths {
		url := joinLocation(location, candidate)

		exists, err := proxy.Probe(ctx, url)
		if err != nil {
			if httpcache.IsRobotsDisallowed(err) {
				return nil, err
			}
			continue
		}
		if !exists {
			continue
		}

		body, _, err := proxy.RetrieveBytes(ctx, url)
		if err != nil {
			if httpcache.IsRobotsDisallowed(err) {
				return nil, err
			}
			return nil, &Error{Processor: p.Name(), Location: location, Cause: ErrCauseFetchFailed, Reason: err.Error()}
		}

		var index mkdocsSearchIndex
		if err := json.Unmarshal(body, &index); err != nil {
			return nil, &Error{Processor: p.Name(), Location: location, Cause: ErrCauseParseFailed, Reason: err.Error()}
		}
		if len(index.Docs) == 0 {
			continue
		}

		objects := make([]docmodel.InventoryObject, 0, len(index.Docs))
		completeCount := 0
		for _, doc := range index.Docs {
			if doc.Location == "" {
				continue
			}
			if doc.Title != "" && doc.Text != "" {
				completeCount++
			}
			preview := doc.Text
			if len(preview) > mkdocsContentPreviewChars {
				preview = preview[:mkdocsContentPreviewChars]
			}
			specifics := map[string]string{
				"title":           doc.Title,
				"page_location":   doc.Location,
				"content_preview": preview,
			}
			objects = append(objects, docmodel.NewInventoryObject(doc.Title, doc.Location, docmodel.InventoryTypeMkDocsSearchIndex, location, specifics))
		}
		if len(objects) == 0 {
			continue
		}

		return &mkdocsDetection{
			baseURL:    location,
			confidence: mkdocsConfidence(len(objects), completeCount),
			objects:    objects,
		}, nil
	}
	return nil, nil
}

// mkdocsConfidence scores 0.6-0.9 by document count and schema completeness,
// per the spec's "confidence based on document count and schema completeness".
func mkdocsConfidence(docCount, completeCount int) float64 {
	confidence := 0.6
	if docCount >= 5 {
		confidence += 0.1
	}
	if docCount > 0 && completeCount == docCount {
		confidence += 0.2
	} else if completeCount > 0 {
		confidence += 0.1
	}
	if confidence > 0.9 {
		confidence = 0.9
	}
	return confidence
}

type mkdocsDetection struct {
	baseURL    string
	confidence float64
	objects    []docmodel.InventoryObject
}

func (d *mkdocsDetection) ProcessorName() string { return "mkdocs" }
func (d *mkdocsDetection) Genus() docmodel.Genus { return docmodel.GenusInventory }
func (d *mkdocsDetection) Confidence() float64   { return d.confidence }
func (d *mkdocsDetection) BaseURL() string       { return d.baseURL }
func (d *mkdocsDetection) Metadata() map[string]string {
	return map[string]string{}
}

func (d *mkdocsDetection) FilterInventory(_ context.Context, filters docmodel.Filters) ([]docmodel.InventoryObject, error) {
	out := make([]docmodel.InventoryObject, 0, len(d.objects))
	for _, obj := range d.objects {
		if mkdocsMatchesFilters(obj, filters) {
			out = append(out, obj.WithLocationURL(d.baseURL))
		}
	}
	return out, nil
}

func mkdocsMatchesFilters(obj docmodel.InventoryObject, filters docmodel.Filters) bool {
	title, _ := obj.Specific("title")
	for key, want := range filters {
		if want == "" {
			continue
		}
		switch key {
		case "title":
			if !strings.Contains(strings.ToLower(title), strings.ToLower(want)) {
				return false
			}
		case "uri":
			if !strings.Contains(strings.ToLower(obj.URI()), strings.ToLower(want)) {
				return false
			}
		default:
			if !strings.Contains(strings.ToLower(title), strings.ToLower(want)) &&
				!strings.Contains(strings.ToLower(obj.URI()), strings.ToLower(want)) {
				return false
			}
		}
	}
	return true
}

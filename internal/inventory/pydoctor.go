package inventory

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
)

const pydoctorConfidence = 0.9

// PydoctorProcessor detects and parses Pydoctor's Lunr.js-backed
// searchindex.json format.
type PydoctorProcessor struct{}

// NewPydoctorProcessor returns the Pydoctor searchindex.json processor.
func NewPydoctorProcessor() *PydoctorProcessor { return &PydoctorProcessor{} }

func (p *PydoctorProcessor) Name() string { return "pydoctor" }

func (p *PydoctorProcessor) Capabilities() Capabilities {
	return Capabilities{
		SupportedInventoryTypes:        []docmodel.InventoryType{docmodel.InventoryTypePydoctorSearchIndex},
		SupportedFilters:                []string{"qname", "type"},
		RecommendedConfidenceThreshold: 0.9,
	}
}

// pydoctorIndex models the slice of Lunr.js's serialized index that
// pydoctor populates with documentation entities: a document store keyed
// by an opaque document id, each entry carrying the entity's qualified
// name (or, in older pydoctor releases, a "names" array of aliases).
type pydoctorIndex struct {
	DocumentStore struct {
		Docs map[string]pydoctorDoc `json:"docs"`
	} `json:"documentStore"`
}

type pydoctorDoc struct {
	Name  string   `json:"name"`
	QName string   `json:"qname"`
	Names []string `json:"names"`
	Type  string   `json:"type"`
}

func (d pydoctorDoc) qualifiedName() string {
	if d.QName != "" {
		return d.QName
	}
	if d.Name != "" {
		return d.Name
	}
	if len(d.Names) > 0 {
		return d.Names[0]
	}
	return ""
}

func (p *PydoctorProcessor) Detect(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.InventoryDetection, error) {
	url := joinLocation(location, "searchindex.json")

	exists, err := proxy.Probe(ctx, url)
	if err != nil {
		if httpcache.IsRobotsDisallowed(err) {
			return nil, err
		}
		return nil, nil
	}
	if !exists {
		return nil, nil
	}

	body, _, err := proxy.RetrieveBytes(ctx, url)
	if err != nil {
		if httpcache.IsRobotsDisallowed(err) {
			return nil, err
		}
		return nil, &Error{Processor: p.Name(), Location: location, Cause: ErrCauseFetchFailed, Reason: err.Error()}
	}

	var index pydoctorIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, &Error{Processor: p.Name(), Location: location, Cause: ErrCauseParseFailed, Reason: err.Error()}
	}
	if len(index.DocumentStore.Docs) == 0 {
		return nil, nil
	}

	objects := make([]docmodel.InventoryObject, 0, len(index.DocumentStore.Docs))
	for _, doc := range index.DocumentStore.Docs {
		qname := doc.qualifiedName()
		if qname == "" {
			continue
		}
		entityType := doc.Type
		if entityType == "" {
			entityType = inferPydoctorType(qname)
		}
		uri := strings.ReplaceAll(qname, ".", "/") + ".html"
		specifics := map[string]string{"qname": qname, "type": entityType}
		objects = append(objects, docmodel.NewInventoryObject(qname, uri, docmodel.InventoryTypePydoctorSearchIndex, location, specifics))
	}
	if len(objects) == 0 {
		return nil, &Error{Processor: p.Name(), Location: location, Cause: ErrCauseEmptyResult, Reason: "no qualified names found in document store"}
	}

	return &pydoctorDetection{baseURL: location, objects: objects}, nil
}

// inferPydoctorType guesses a qualified name's entity kind when the index
// omits it: a capitalized final segment reads as a class; a name with no
// dots is a top-level module; anything else is treated as a function.
func inferPydoctorType(qname string) string {
	last := qname
	if idx := strings.LastIndex(qname, "."); idx >= 0 {
		last = qname[idx+1:]
	}
	if last == "" {
		return "module"
	}
	if r := rune(last[0]); unicode.IsUpper(r) {
		return "class"
	}
	if !strings.Contains(qname, ".") {
		return "module"
	}
	return "function"
}

type pydoctorDetection struct {
	baseURL string
	objects []docmodel.InventoryObject
}

func (d *pydoctorDetection) ProcessorName() string { return "pydoctor" }
func (d *pydoctorDetection) Genus() docmodel.Genus { return docmodel.GenusInventory }
func (d *pydoctorDetection) Confidence() float64   { return pydoctorConfidence }
func (d *pydoctorDetection) BaseURL() string       { return d.baseURL }
func (d *pydoctorDetection) Metadata() map[string]string {
	return map[string]string{}
}

func (d *pydoctorDetection) FilterInventory(_ context.Context, filters docmodel.Filters) ([]docmodel.InventoryObject, error) {
	out := make([]docmodel.InventoryObject, 0, len(d.objects))
	for _, obj := range d.objects {
		if pydoctorMatchesFilters(obj, filters) {
			out = append(out, obj.WithLocationURL(d.baseURL))
		}
	}
	return out, nil
}

func pydoctorMatchesFilters(obj docmodel.InventoryObject, filters docmodel.Filters) bool {
	for _, key := range []string{"qname", "type"} {
		want, ok := filters[key]
		if !ok || want == "" {
			continue
		}
		got, _ := obj.Specific(key)
		if got == want {
			continue
		}
		if key == "qname" && strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
			continue
		}
		return false
	}
	return true
}

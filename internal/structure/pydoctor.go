package structure

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
	"github.com/rohmanhakim/docsintel/internal/sanitizer"
)

var pydoctorSignatureClasses = []string{"moduleName", "classQualifiedName", "functionName"}

var pydoctorCleanupSelectors = []string{"nav.navbar", "div.sidebar", "footer"}

// PydoctorProcessor extracts signatures and docstrings from pydoctor's
// generated API reference pages.
type PydoctorProcessor struct{}

// NewPydoctorProcessor returns the pydoctor structure processor.
func NewPydoctorProcessor() *PydoctorProcessor { return &PydoctorProcessor{} }

func (p *PydoctorProcessor) Name() string { return "pydoctor" }

func (p *PydoctorProcessor) Capabilities() Capabilities {
	return Capabilities{
		SupportedInventoryTypes: []docmodel.InventoryType{docmodel.InventoryTypePydoctorSearchIndex},
		ContentExtractionFeatures: []string{
			"signatures", "descriptions", "parameter_docs", "return_docs",
		},
		ConfidenceByInventoryType: map[string]float64{
			string(docmodel.InventoryTypePydoctorSearchIndex): 0.9,
		},
	}
}

func (p *PydoctorProcessor) Detect(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.StructureDetection, error) {
	url := joinLocation(location, "index.html")

	exists, err := proxy.Probe(ctx, url)
	if err != nil || !exists {
		return nil, nil
	}

	body, _, err := proxy.RetrieveBytes(ctx, url)
	if err != nil {
		return nil, &Error{Processor: p.Name(), Location: location, Cause: ErrCauseFetchFailed, Reason: err.Error()}
	}

	doc, parseErr := html.Parse(strings.NewReader(string(body)))
	if parseErr != nil {
		return nil, nil
	}
	gq := goquery.NewDocumentFromNode(doc)

	confidence := pydoctorConfidence(gq)
	if confidence == 0 {
		return nil, nil
	}

	return &pydoctorStructureDetection{baseURL: location, proxy: proxy, confidence: confidence}, nil
}

// pydoctorConfidence favors the generator meta tag pydoctor emits; absent
// that, the apidocs stylesheet plus a navbar/page shell combination is
// treated as a weaker secondary signal.
func pydoctorConfidence(gq *goquery.Document) float64 {
	if generator, ok := gq.Find(`meta[name="generator"]`).Attr("content"); ok {
		if strings.Contains(strings.ToLower(generator), "pydoctor") {
			return 0.9
		}
	}
	if gq.Find(`link[href*="apidocs.css"]`).Length() > 0 && gq.Find("div.page, nav.navbar").Length() > 0 {
		return 0.7
	}
	return 0
}

type pydoctorStructureDetection struct {
	baseURL    string
	confidence float64
	proxy      *httpcache.Proxy
}

func (d *pydoctorStructureDetection) ProcessorName() string { return "pydoctor" }
func (d *pydoctorStructureDetection) Genus() docmodel.Genus { return docmodel.GenusStructure }
func (d *pydoctorStructureDetection) Confidence() float64   { return d.confidence }
func (d *pydoctorStructureDetection) BaseURL() string       { return d.baseURL }
func (d *pydoctorStructureDetection) Metadata() map[string]string {
	return map[string]string{"theme": "pydoctor"}
}

func (d *pydoctorStructureDetection) ExtractContents(ctx context.Context, objects []docmodel.InventoryObject) ([]docmodel.ContentDocument, error) {
	return extractConcurrently(ctx, d.proxy, objects, d.extractOne)
}

func (d *pydoctorStructureDetection) extractOne(ctx context.Context, obj docmodel.InventoryObject) (docmodel.ContentDocument, error) {
	pageURL, anchor := splitAnchor(joinLocation(d.baseURL, obj.URI()))

	body, _, err := d.proxy.RetrieveBytes(ctx, pageURL)
	if err != nil {
		return docmodel.ContentDocument{}, &Error{Processor: "pydoctor", Location: pageURL, Cause: ErrCauseFetchFailed, Reason: err.Error()}
	}

	doc, parseErr := html.Parse(strings.NewReader(string(body)))
	if parseErr != nil {
		return docmodel.ContentDocument{}, &Error{Processor: "pydoctor", Location: pageURL, Cause: ErrCauseNoStrategy, Reason: parseErr.Error()}
	}

	var scope *html.Node = doc
	if anchor != "" {
		if found := findByID(doc, anchor); found != nil {
			scope = found
		} else {
			return docmodel.ContentDocument{}, &Error{Processor: "pydoctor", Location: pageURL, Cause: ErrCauseAnchorNotFound, Reason: anchor}
		}
	}

	signature := pydoctorSignature(scope, obj.Name())

	descNode := firstByClass(scope, "docstring")
	if descNode == nil {
		if fh := ancestorWithTag(scope, "div"); fh != nil {
			descNode = firstByClass(fh, "docstring")
		}
	}
	if descNode == nil {
		return docmodel.ContentDocument{}, &Error{Processor: "pydoctor", Location: pageURL, Cause: ErrCauseNoStrategy, Reason: "div.docstring not found"}
	}

	sanitizer.RemoveBySelectors(descNode, append(pydoctorCleanupSelectors, sanitizer.UniversalCleanupSelectors...)...)

	description, convErr := convertDescription(descNode)
	if convErr != nil {
		return docmodel.ContentDocument{}, &Error{Processor: "pydoctor", Location: pageURL, Cause: ErrCauseMarkdownInvalid, Reason: convErr.Error()}
	}

	return docmodel.NewContentDocument(obj.WithLocationURL(d.baseURL), signature, description, pageURL), nil
}

// pydoctorSignature reads the entity's rendered signature from whichever
// name element pydoctor emitted for its kind, falling back to the
// function header's code element, and finally the object's own name.
func pydoctorSignature(scope *html.Node, fallback string) string {
	for _, class := range pydoctorSignatureClasses {
		if n := firstByClass(scope, class); n != nil {
			return textContent(n)
		}
	}
	if header := firstByClass(scope, "functionHeader"); header != nil {
		if code := firstDescendantWithTag(header, "code"); code != nil {
			return textContent(code)
		}
		return textContent(header)
	}
	return fallback
}

package structure

import (
	"context"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
	"github.com/rohmanhakim/docsintel/internal/inventory"
	"github.com/rohmanhakim/docsintel/internal/sanitizer"
)

// SphinxProcessor extracts signatures and descriptions from Sphinx's
// generated HTML: dt/dd definition pairs for API objects, <section>
// headings for narrative pages.
type SphinxProcessor struct{}

// NewSphinxProcessor returns the Sphinx structure processor.
func NewSphinxProcessor() *SphinxProcessor { return &SphinxProcessor{} }

func (p *SphinxProcessor) Name() string { return "sphinx" }

func (p *SphinxProcessor) Capabilities() Capabilities {
	return Capabilities{
		SupportedInventoryTypes: []docmodel.InventoryType{docmodel.InventoryTypeSphinxObjectsInv},
		ContentExtractionFeatures: []string{
			"signatures", "descriptions", "parameter_docs", "return_docs",
			"example_code", "cross_references",
		},
		ConfidenceByInventoryType: map[string]float64{
			string(docmodel.InventoryTypeSphinxObjectsInv): 1.0,
		},
	}
}

func (p *SphinxProcessor) Detect(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.StructureDetection, error) {
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

	confidence, theme := sphinxConfidence(gq)
	if confidence == 0 {
		return nil, nil
	}

	return &sphinxStructureDetection{
		baseURL:    location,
		theme:      theme,
		proxy:      proxy,
		confidence: confidence,
	}, nil
}

// sphinxConfidence scores detection signals in descending strength: the
// generator meta tag is conclusive, a pygments stylesheet is a strong
// hint, and bare sphinx-doc class markers are the weakest signal.
func sphinxConfidence(gq *goquery.Document) (float64, string) {
	if generator, ok := gq.Find(`meta[name="generator"]`).Attr("content"); ok {
		if strings.Contains(strings.ToLower(generator), "sphinx") {
			return 1.0, "sphinx"
		}
	}
	if gq.Find(`link[href*="pygments.css"]`).Length() > 0 {
		return 0.8, "sphinx"
	}
	if gq.Find(".sphinxsidebar, div.body, dl.py, dl.class").Length() > 0 {
		return 0.6, "sphinx"
	}
	return 0, ""
}

type sphinxStructureDetection struct {
	baseURL    string
	theme      string
	confidence float64
	proxy      *httpcache.Proxy
}

func (d *sphinxStructureDetection) ProcessorName() string { return "sphinx" }
func (d *sphinxStructureDetection) Genus() docmodel.Genus { return docmodel.GenusStructure }
func (d *sphinxStructureDetection) Confidence() float64   { return d.confidence }
func (d *sphinxStructureDetection) BaseURL() string       { return d.baseURL }
func (d *sphinxStructureDetection) Metadata() map[string]string {
	return map[string]string{"theme": d.theme}
}

func (d *sphinxStructureDetection) ExtractContents(ctx context.Context, objects []docmodel.InventoryObject) ([]docmodel.ContentDocument, error) {
	return extractConcurrently(ctx, d.proxy, objects, d.extractOne)
}

func (d *sphinxStructureDetection) extractOne(ctx context.Context, obj docmodel.InventoryObject) (docmodel.ContentDocument, error) {
	uri := inventory.SubstituteURIPlaceholder(obj.URI(), obj.Name())
	pageURL, anchor := splitAnchor(joinLocation(d.baseURL, uri))

	body, _, err := d.proxy.RetrieveBytes(ctx, pageURL)
	if err != nil {
		return docmodel.ContentDocument{}, &Error{Processor: "sphinx", Location: pageURL, Cause: ErrCauseFetchFailed, Reason: err.Error()}
	}

	doc, parseErr := html.Parse(strings.NewReader(string(body)))
	if parseErr != nil {
		return docmodel.ContentDocument{}, &Error{Processor: "sphinx", Location: pageURL, Cause: ErrCauseNoStrategy, Reason: parseErr.Error()}
	}

	target := doc
	if anchor != "" {
		if found := findByID(doc, anchor); found != nil {
			target = found
		} else {
			return docmodel.ContentDocument{}, &Error{Processor: "sphinx", Location: pageURL, Cause: ErrCauseAnchorNotFound, Reason: anchor}
		}
	}

	signature, descNode := sphinxContentStrategy(target)
	if descNode == nil {
		return docmodel.ContentDocument{}, &Error{Processor: "sphinx", Location: pageURL, Cause: ErrCauseNoStrategy, Reason: "no dt/section/anchor/paragraph strategy matched"}
	}

	sanitizer.RemoveBySelectors(descNode, sanitizer.UniversalCleanupSelectors...)

	description, convErr := convertDescription(descNode)
	if convErr != nil {
		return docmodel.ContentDocument{}, &Error{Processor: "sphinx", Location: pageURL, Cause: ErrCauseMarkdownInvalid, Reason: convErr.Error()}
	}

	if signature == "" {
		signature = obj.Name()
	}

	return docmodel.NewContentDocument(obj.WithLocationURL(d.baseURL), signature, description, pageURL), nil
}

// sphinxContentStrategy applies the dt/dd -> section -> anchor -> paragraph
// fallback chain documented for Sphinx pages.
func sphinxContentStrategy(target *html.Node) (signature string, description *html.Node) {
	if target.Type == html.ElementNode && target.Data == "dt" {
		if dd := nextElementSibling(target); dd != nil && dd.Data == "dd" {
			return textContent(target), dd
		}
	}

	if target.Type == html.ElementNode && target.Data == "section" {
		return sphinxSectionStrategy(target)
	}

	if target.Type == html.ElementNode && (target.Data == "span" || target.Data == "a") {
		if section := ancestorWithTag(target, "section"); section != nil {
			return sphinxSectionStrategy(section)
		}
	}

	if p := firstMeaningfulParagraph(target, skipInDescriptions); p != nil {
		return "", p
	}
	return "", nil
}

func sphinxSectionStrategy(section *html.Node) (string, *html.Node) {
	var heading string
	for _, tag := range []string{"h1", "h2", "h3", "h4"} {
		if h := firstDescendantWithTag(section, tag); h != nil {
			heading = textContent(h)
			break
		}
	}
	p := firstMeaningfulParagraph(section, skipInDescriptions)
	if p == nil {
		return heading, nil
	}
	return heading, p
}

// extractConcurrently fans out fn across objects with bounded parallelism,
// preserving input order in the returned slice and silently dropping
// (not logging, not erroring) any object whose extraction fails.
func extractConcurrently(
	ctx context.Context,
	proxy *httpcache.Proxy,
	objects []docmodel.InventoryObject,
	fn func(context.Context, docmodel.InventoryObject) (docmodel.ContentDocument, error),
) ([]docmodel.ContentDocument, error) {
	results := make([]*docmodel.ContentDocument, len(objects))
	sem := make(chan struct{}, extractionConcurrency)
	var wg sync.WaitGroup

	for i, obj := range objects {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, obj docmodel.InventoryObject) {
			defer wg.Done()
			defer func() { <-sem }()
			doc, err := fn(ctx, obj)
			if err != nil {
				return
			}
			results[i] = &doc
		}(i, obj)
	}
	wg.Wait()

	out := make([]docmodel.ContentDocument, 0, len(objects))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// splitAnchor separates a URL's fragment (after '#') from its page path.
func splitAnchor(u string) (page, anchor string) {
	if idx := strings.Index(u, "#"); idx >= 0 {
		return u[:idx], u[idx+1:]
	}
	return u, ""
}

// joinLocation appends a relative path to a location URL, ensuring
// exactly one separating slash.
func joinLocation(location, rel string) string {
	if strings.HasSuffix(location, "/") {
		return location + rel
	}
	return location + "/" + rel
}

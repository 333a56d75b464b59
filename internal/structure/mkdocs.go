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

// mkdocsCleanupSelectors strips theme chrome specific to the Material for
// MkDocs layout, beyond the universal selectors every processor applies.
var mkdocsCleanupSelectors = []string{"nav.md-nav", "div.md-sidebar", "div.md-footer", "button.md-clipboard"}

// MkDocsProcessor extracts content from MkDocs (Material theme) rendered
// pages: the .md-content__inner container, sectioned by heading, with
// admonition and mkdocstrings autodoc blocks rendered specially.
type MkDocsProcessor struct{}

// NewMkDocsProcessor returns the MkDocs structure processor.
func NewMkDocsProcessor() *MkDocsProcessor { return &MkDocsProcessor{} }

func (p *MkDocsProcessor) Name() string { return "mkdocs" }

func (p *MkDocsProcessor) Capabilities() Capabilities {
	return Capabilities{
		SupportedInventoryTypes: []docmodel.InventoryType{docmodel.InventoryTypeMkDocsSearchIndex},
		ContentExtractionFeatures: []string{
			"signatures", "descriptions", "example_code",
		},
		ConfidenceByInventoryType: map[string]float64{
			string(docmodel.InventoryTypeMkDocsSearchIndex): 0.8,
		},
	}
}

func (p *MkDocsProcessor) Detect(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.StructureDetection, error) {
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

	confidence := mkdocsConfidence(gq)
	if confidence == 0 {
		return nil, nil
	}

	return &mkdocsStructureDetection{baseURL: location, proxy: proxy, confidence: confidence}, nil
}

// mkdocsConfidence favors the generator meta tag; Material's characteristic
// body class and content container are a weaker but still distinctive hint.
func mkdocsConfidence(gq *goquery.Document) float64 {
	if generator, ok := gq.Find(`meta[name="generator"]`).Attr("content"); ok {
		if strings.Contains(strings.ToLower(generator), "mkdocs") {
			return 1.0
		}
	}
	if gq.Find("div.md-content__inner").Length() > 0 && gq.Find("header.md-header, nav.md-nav").Length() > 0 {
		return 0.75
	}
	return 0
}

type mkdocsStructureDetection struct {
	baseURL    string
	confidence float64
	proxy      *httpcache.Proxy
}

func (d *mkdocsStructureDetection) ProcessorName() string { return "mkdocs" }
func (d *mkdocsStructureDetection) Genus() docmodel.Genus { return docmodel.GenusStructure }
func (d *mkdocsStructureDetection) Confidence() float64   { return d.confidence }
func (d *mkdocsStructureDetection) BaseURL() string       { return d.baseURL }
func (d *mkdocsStructureDetection) Metadata() map[string]string {
	return map[string]string{"theme": "material"}
}

func (d *mkdocsStructureDetection) ExtractContents(ctx context.Context, objects []docmodel.InventoryObject) ([]docmodel.ContentDocument, error) {
	return extractConcurrently(ctx, d.proxy, objects, d.extractOne)
}

func (d *mkdocsStructureDetection) extractOne(ctx context.Context, obj docmodel.InventoryObject) (docmodel.ContentDocument, error) {
	pageURL, anchor := splitAnchor(joinLocation(d.baseURL, obj.URI()))

	body, _, err := d.proxy.RetrieveBytes(ctx, pageURL)
	if err != nil {
		return docmodel.ContentDocument{}, &Error{Processor: "mkdocs", Location: pageURL, Cause: ErrCauseFetchFailed, Reason: err.Error()}
	}

	doc, parseErr := html.Parse(strings.NewReader(string(body)))
	if parseErr != nil {
		return docmodel.ContentDocument{}, &Error{Processor: "mkdocs", Location: pageURL, Cause: ErrCauseNoStrategy, Reason: parseErr.Error()}
	}

	container := firstByClass(doc, "md-content__inner")
	if container == nil {
		return docmodel.ContentDocument{}, &Error{Processor: "mkdocs", Location: pageURL, Cause: ErrCauseNoStrategy, Reason: "md-content__inner not found"}
	}

	signature, descNode := mkdocsContentStrategy(container, anchor, obj.Name())
	if descNode == nil {
		return docmodel.ContentDocument{}, &Error{Processor: "mkdocs", Location: pageURL, Cause: ErrCauseAnchorNotFound, Reason: anchor}
	}

	renderMkdocsAdmonitions(descNode)
	renderMkdocstringsAutodoc(descNode)
	sanitizer.RemoveBySelectors(descNode, append(mkdocsCleanupSelectors, sanitizer.UniversalCleanupSelectors...)...)

	description, convErr := convertDescription(descNode)
	if convErr != nil {
		return docmodel.ContentDocument{}, &Error{Processor: "mkdocs", Location: pageURL, Cause: ErrCauseMarkdownInvalid, Reason: convErr.Error()}
	}

	if signature == "" {
		signature = obj.Name()
	}

	return docmodel.NewContentDocument(obj.WithLocationURL(d.baseURL), signature, description, pageURL), nil
}

// mkdocsContentStrategy resolves a section's content: when anchor names a
// heading inside container, the section runs from that heading up to (not
// including) the next heading at the same or shallower depth; with no
// anchor the whole container is the page's top-level content.
func mkdocsContentStrategy(container *html.Node, anchor, fallbackName string) (string, *html.Node) {
	if anchor == "" {
		return fallbackName, container
	}

	heading := findByID(container, anchor)
	if heading == nil {
		return "", nil
	}

	level := headingLevel(heading)
	if level == 0 {
		level = 6
	}
	siblings := collectSiblingsUntilHeading(heading, level)
	return textContent(heading), wrapNodes(siblings)
}

// renderMkdocsAdmonitions rewrites div.admonition blocks into a
// bold-title-then-body form that the Markdown converter preserves legibly,
// since an admonition's visual callout styling carries no HTML semantics.
func renderMkdocsAdmonitions(root *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.ElementNode && hasClass(c, "admonition") {
				rewriteAdmonition(c)
			} else {
				walk(c)
			}
			c = next
		}
	}
	walk(root)
}

func rewriteAdmonition(n *html.Node) {
	title := "Note"
	if t := firstByClass(n, "admonition-title"); t != nil {
		title = textContent(t)
	}
	strong := &html.Node{Type: html.ElementNode, Data: "strong"}
	strong.AppendChild(&html.Node{Type: html.TextNode, Data: title + ": "})
	n.InsertBefore(strong, n.FirstChild)
}

// renderMkdocstringsAutodoc flattens mkdocstrings output (autodoc-signature
// rendered as a <pre>, autodoc-docstring left as-is) so the signature reads
// as code and the docstring reads as prose instead of nested theme markup.
func renderMkdocstringsAutodoc(root *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "autodoc-signature") {
			pre := &html.Node{Type: html.ElementNode, Data: "pre"}
			code := &html.Node{Type: html.ElementNode, Data: "code"}
			code.AppendChild(&html.Node{Type: html.TextNode, Data: textContent(n)})
			pre.AppendChild(code)
			if n.Parent != nil {
				n.Parent.InsertBefore(pre, n)
				n.Parent.RemoveChild(n)
			}
			return
		}
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			walk(c)
			c = next
		}
	}
	walk(root)
}

package sanitizer

import (
	"net/url"

	"golang.org/x/net/html"
)

type SanitizedHTMLDoc struct {
	contentNode    *html.Node
	discoveredUrls []url.URL
}

// NewSanitizedHTMLDoc builds a SanitizedHTMLDoc directly from an already-clean
// content node, bypassing the whole-document repair invariants in Sanitize.
// Structure processors use this for content fragments (a <dd>, a <section>)
// that are not themselves standalone documents and would otherwise trip the
// "no structural anchor" / "competing roots" checks meant for full pages.
func NewSanitizedHTMLDoc(contentNode *html.Node, discoveredUrls []url.URL) SanitizedHTMLDoc {
	return SanitizedHTMLDoc{contentNode: contentNode, discoveredUrls: discoveredUrls}
}

func (s *SanitizedHTMLDoc) GetContentNode() *html.Node {
	return s.contentNode
}

func (s *SanitizedHTMLDoc) GetDiscoveredURLs() []url.URL {
	return s.discoveredUrls
}

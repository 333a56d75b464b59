package sanitizer

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// UniversalCleanupSelectors are the chrome fragments that commonly survive
// content-container extraction across documentation themes: permalink
// icons, sidebars, and skip-nav affordances that carry no documentation
// value of their own.
var UniversalCleanupSelectors = []string{
	"a.headerlink",
	"aside",
	"nav",
	".headerlink",
	"a.edit-link",
	"a.viewcode-link",
}

// RemoveBySelectors detaches every element matching any of selectors from
// node's subtree, in place. It is used by structure processors after
// content-container selection to strip theme chrome that a blanket
// main/article container still carries (permalink icons, embedded nav),
// distinct from the whole-document repair invariants enforced by Sanitize.
func RemoveBySelectors(node *html.Node, selectors ...string) {
	if node == nil || len(selectors) == 0 {
		return
	}
	doc := goquery.NewDocumentFromNode(node)
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			for _, n := range s.Nodes {
				if n.Parent != nil {
					n.Parent.RemoveChild(n)
				}
			}
		})
	}
}

package structure

import (
	"strings"

	"golang.org/x/net/html"
)

// textContent concatenates every descendant text node of n, collapsing
// runs of whitespace into single spaces.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// attr returns the value of the named attribute on n, if present.
func attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// hasClass reports whether n carries class as one of its space-separated
// class tokens.
func hasClass(n *html.Node, class string) bool {
	classAttr, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(classAttr) {
		if token == class {
			return true
		}
	}
	return false
}

// findByID walks root's subtree depth-first and returns the first element
// whose id attribute equals id, or nil.
func findByID(root *html.Node, id string) *html.Node {
	if root == nil || id == "" {
		return nil
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			if v, ok := attr(n, "id"); ok && v == id {
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if found != nil {
				return
			}
		}
	}
	walk(root)
	return found
}

// nextElementSibling returns n's next sibling that is an ElementNode,
// skipping text and comment nodes.
func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// ancestorWithTag climbs n's parent chain and returns the nearest ancestor
// element with the given tag, or nil.
func ancestorWithTag(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return p
		}
	}
	return nil
}

// firstDescendantWithTag returns the first element with the given tag
// found in a depth-first walk of n's subtree (n itself excluded).
func firstDescendantWithTag(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := firstDescendantWithTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// firstMeaningfulParagraph performs a depth-first search for the first
// <p> with non-empty text content, skipping entire subtrees rooted at a
// tag named in skipTags.
func firstMeaningfulParagraph(n *html.Node, skipTags map[string]bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if skipTags[c.Data] {
			continue
		}
		if c.Data == "p" && strings.TrimSpace(textContent(c)) != "" {
			return c
		}
		if found := firstMeaningfulParagraph(c, skipTags); found != nil {
			return found
		}
	}
	return nil
}

// firstByClass performs a depth-first search for the first element node
// (including n itself) carrying class as one of its class tokens.
func firstByClass(n *html.Node, class string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

// headingLevel returns the numeric level of an h1-h6 tag, or 0 if n is not
// a heading element.
func headingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode || len(n.Data) != 2 || n.Data[0] != 'h' {
		return 0
	}
	switch n.Data[1] {
	case '1', '2', '3', '4', '5', '6':
		return int(n.Data[1] - '0')
	default:
		return 0
	}
}

// collectSiblingsUntilHeading gathers start's following siblings up to (not
// including) the first heading element at depth <= maxLevel.
func collectSiblingsUntilHeading(start *html.Node, maxLevel int) []*html.Node {
	var out []*html.Node
	for s := start.NextSibling; s != nil; s = s.NextSibling {
		if lvl := headingLevel(s); lvl != 0 && lvl <= maxLevel {
			break
		}
		out = append(out, s)
	}
	return out
}

// collectSiblingsUntil gathers start's following siblings up to (not
// including) the first element whose tag equals stopTag, or the end of
// the sibling list if stopTag never occurs.
func collectSiblingsUntil(start *html.Node, stopTag string) []*html.Node {
	var out []*html.Node
	for s := start.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.Data == stopTag {
			break
		}
		out = append(out, s)
	}
	return out
}

// wrapNodes detaches each node in nodes from its current parent and
// reparents it under a freshly created <div>, preserving order. The
// caller must own a private parse tree (each extraction re-parses the
// source page), so this mutation never affects another object's view of
// the same page.
func wrapNodes(nodes []*html.Node) *html.Node {
	wrapper := &html.Node{Type: html.ElementNode, Data: "div"}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		wrapper.AppendChild(n)
	}
	return wrapper
}

// skipInDescriptions is the standard set of subtrees excluded when
// searching for a containing block's first meaningful paragraph.
var skipInDescriptions = map[string]bool{
	"aside": true,
	"nav":   true,
	"header": true,
}

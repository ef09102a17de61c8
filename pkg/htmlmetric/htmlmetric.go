// Package htmlmetric locates a labelled figure (for example "Monthly Visits")
// inside a loosely structured HTML page and parses the number printed next to it.
package htmlmetric

import (
	"bytes"
	"strings"

	"domaincheck/pkg/numparse"
	"domaincheck/pkg/serrors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MaxHops bounds how many elements after the label are inspected before giving up.
const MaxHops = 64

// Label matches the lower-cased content of a text node.
type Label func(text string) bool

// Phrase matches text nodes containing p (case-insensitive).
func Phrase(p string) Label {
	p = strings.ToLower(p)

	return func(text string) bool { return strings.Contains(text, p) }
}

// AllOf matches text nodes containing every one of words (case-insensitive).
func AllOf(words ...string) Label {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}

	return func(text string) bool {
		for _, w := range lowered {
			if !strings.Contains(text, w) {
				return false
			}
		}

		return true
	}
}

// Parse builds a document from an HTML body, dropping non-visible elements.
func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrParse, err, "could not parse html")
	}
	doc.Find("script, style, noscript, template").Remove()

	return doc, nil
}

// Extract finds the first text node matching one of labels (tried in order) and
// returns the first number found near it. Candidates are, in order: the
// enclosing element's visible text, the next text node after the enclosing
// element, and the visible text of up to MaxHops following elements.
func Extract(doc *goquery.Document, labels ...Label) (float64, bool) {
	if doc == nil || len(doc.Nodes) == 0 {
		return 0, false
	}
	root := doc.Nodes[0]

	var label *html.Node
	for _, match := range labels {
		if label = findText(root, match); label != nil {
			break
		}
	}
	if label == nil {
		return 0, false
	}

	parent := label.Parent
	if parent == nil {
		return numparse.Parse(label.Data)
	}

	if v, ok := numparse.Parse(VisibleText(parent)); ok {
		return v, true
	}

	after := nextAfter(parent)
	if txt := nextText(after); txt != "" {
		if v, ok := numparse.Parse(txt); ok {
			return v, true
		}
	}

	hops := 0
	for n := after; n != nil && hops < MaxHops; n = nextPreorder(n) {
		if n.Type != html.ElementNode || hidden(n) {
			continue
		}
		hops++
		if v, ok := numparse.Parse(VisibleText(n)); ok {
			return v, true
		}
	}

	return 0, false
}

// VisibleText joins the trimmed text nodes below n with single spaces.
func VisibleText(n *html.Node) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if hidden(n) {
			return
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}

			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(parts, " ")
}

func findText(root *html.Node, match Label) *html.Node {
	for n := root; n != nil; n = nextPreorder(n) {
		if n.Type == html.TextNode && !hidden(n.Parent) && match(strings.ToLower(n.Data)) {
			return n
		}
	}

	return nil
}

// nextText returns the first non-blank text node at or after n in document order.
func nextText(n *html.Node) string {
	for ; n != nil; n = nextPreorder(n) {
		if n.Type == html.TextNode && !hidden(n.Parent) {
			if s := strings.TrimSpace(n.Data); s != "" {
				return s
			}
		}
	}

	return ""
}

// nextPreorder walks the tree in document order.
func nextPreorder(n *html.Node) *html.Node {
	if n.FirstChild != nil && !hidden(n) {
		return n.FirstChild
	}

	return nextAfter(n)
}

// nextAfter returns the first node following n's subtree in document order.
func nextAfter(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}

	return nil
}

func hidden(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "script", "style", "noscript", "template", "head":
		return true
	}

	return false
}

package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns the lower-cased tag name, or "" for non-element nodes.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// LocalName returns the tag name exactly as the parser produced it
// (SVG keeps its camel case, e.g. clipPath).
func LocalName(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return n.Data
}

// IsForeign reports whether n lives in the SVG or MathML namespace.
func IsForeign(n *html.Node) bool {
	return IsElement(n) && n.Namespace != ""
}

func Attr(n *html.Node, key string) string {
	v, _ := LookupAttr(n, key)
	return v
}

func LookupAttr(n *html.Node, key string) (string, bool) {
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

func HasAttr(n *html.Node, key string) bool {
	_, ok := LookupAttr(n, key)
	return ok
}

func ID(n *html.Node) string {
	return Attr(n, "id")
}

func ClassName(n *html.Node) string {
	return Attr(n, "class")
}

// HasClass reports whether the class attribute contains any of the
// patterns as a case-insensitive substring.
func HasClass(n *html.Node, patterns ...string) bool {
	cls := strings.ToLower(ClassName(n))
	if cls == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(cls, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Parent returns the parent element, or nil at the top of the tree.
func Parent(n *html.Node) *html.Node {
	if n == nil || !IsElement(n.Parent) {
		return nil
	}
	return n.Parent
}

func PrevElementSibling(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func NextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// DirectText joins the text nodes that are immediate children of n, trimmed.
func DirectText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// Text returns the trimmed text content of n and all its descendants.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(selection(n).Text())
}

// QuerySelector returns the first descendant of n matching the CSS selector.
func QuerySelector(n *html.Node, selector string) *html.Node {
	if n == nil {
		return nil
	}
	return firstNode(selection(n).Find(selector))
}

// Closest returns n or its nearest ancestor matching the CSS selector.
func Closest(n *html.Node, selector string) *html.Node {
	if n == nil {
		return nil
	}
	return firstNode(selection(n).Closest(selector))
}

// HasAncestor reports whether some strict ancestor of n has the given tag.
func HasAncestor(n *html.Node, tag string) bool {
	for p := Parent(n); p != nil; p = Parent(p) {
		if Tag(p) == tag {
			return true
		}
	}
	return false
}

// NormalizeSpace collapses runs of Unicode white space. XPath
// normalize-space() in a browser only collapses space, tab, CR and LF; the
// other characters are listed in UnicodeSpace.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// UnicodeSpace holds the white space characters NormalizeSpace collapses
// but browsers keep in normalize-space(), such as the no-break space.
const UnicodeSpace = "\u0085\u00a0\u1680" +
	"\u2000\u2001\u2002\u2003\u2004\u2005\u2006\u2007\u2008\u2009\u200a" +
	"\u2028\u2029\u202f\u205f\u3000"

// HasUnicodeSpace reports whether a text node under n contains a character
// from UnicodeSpace.
func HasUnicodeSpace(n *html.Node) bool {
	found := false
	walk(n, func(c *html.Node) {
		if !found && c.Type == html.TextNode && strings.ContainsAny(c.Data, UnicodeSpace) {
			found = true
		}
	})
	return found
}

func selection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

func firstNode(s *goquery.Selection) *html.Node {
	if s.Length() == 0 {
		return nil
	}
	return s.Nodes[0]
}

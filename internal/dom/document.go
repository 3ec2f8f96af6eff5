// Package dom holds the parsed page snapshot the recorder reasons about:
// element accessors, CSS lookups through goquery and XPath evaluation.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is an immutable view over a parsed HTML tree.
type Document struct {
	root      *html.Node
	gq        *goquery.Document
	clickable map[*html.Node]bool
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return FromNode(root), nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// FromNode wraps an already parsed tree. root should be the document node.
func FromNode(root *html.Node) *Document {
	return &Document{
		root:      root,
		gq:        goquery.NewDocumentFromNode(root),
		clickable: make(map[*html.Node]bool),
	}
}

func (d *Document) Root() *html.Node {
	return d.root
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *html.Node {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// Select returns every element matching the CSS selector, in document order.
func (d *Document) Select(selector string) []*html.Node {
	return d.gq.Find(selector).Nodes
}

// First returns the first element matching the CSS selector or nil.
func (d *Document) First(selector string) *html.Node {
	nodes := d.gq.Find(selector).First().Nodes
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// LabelsFor returns the <label> elements whose for attribute equals id.
func (d *Document) LabelsFor(id string) []*html.Node {
	if id == "" {
		return nil
	}
	return d.gq.Find("label[for]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("for")
		return v == id
	}).Nodes
}

// HasClickHandler reports whether n had an onclick handler when the snapshot was taken.
func (d *Document) HasClickHandler(n *html.Node) bool {
	return d.clickable[n] || HasAttr(n, "onclick")
}

// MarkClickable records that n carries a script-assigned click handler.
func (d *Document) MarkClickable(n *html.Node) {
	d.clickable[n] = true
}

package dom

import (
	"errors"

	"golang.org/x/net/html"
)

// Attributes the capture script stamps on the live page right before it
// serializes a snapshot. They are removed again when the snapshot is parsed.
const (
	TargetMarker = "data-uir-target"
	ClickMarker  = "data-uir-click"
)

var ErrNoTarget = errors.New("snapshot has no event target marker")

// ParseSnapshot parses a captured outerHTML snapshot and returns the
// document together with the element that received the event.
func ParseSnapshot(src string) (*Document, *html.Node, error) {
	doc, err := ParseString(src)
	if err != nil {
		return nil, nil, err
	}

	var target *html.Node
	walk(doc.root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if removeAttr(n, TargetMarker) && target == nil {
			target = n
		}
		if removeAttr(n, ClickMarker) {
			doc.MarkClickable(n)
		}
	})
	if target == nil {
		return doc, nil, ErrNoTarget
	}
	return doc, target, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func removeAttr(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

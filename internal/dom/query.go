package dom

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Evaluate runs an XPath 1.0 expression against the whole document.
// Malformed expressions and evaluator panics are reported as errors.
func (d *Document) Evaluate(expr string) (nodes []*html.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			nodes, err = nil, fmt.Errorf("evaluate %q: %v", expr, r)
		}
	}()

	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	return htmlquery.QuerySelectorAll(d.root, compiled), nil
}

// Count returns how many nodes expr selects.
func (d *Document) Count(expr string) (int, error) {
	nodes, err := d.Evaluate(expr)
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

// IsUnique reports whether expr selects exactly one node. Errors count as not unique.
func (d *Document) IsUnique(expr string) bool {
	n, err := d.Count(expr)
	return err == nil && n == 1
}

// Resolve re-resolves a previously synthesized locator to its first match, or nil.
func (d *Document) Resolve(expr string) *html.Node {
	nodes, err := d.Evaluate(expr)
	if err != nil || len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Package locator synthesizes XPath locators that resolve to exactly one
// element of a page snapshot, preferring semantic attributes and visible
// text over document structure.
package locator

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"uirecorder/internal/dom"
	"uirecorder/internal/resolver"
)

// Result is a synthesized locator. Unique is false only when every
// strategy failed and Locator is a best-effort positional path.
type Result struct {
	Locator  string `json:"locator" yaml:"locator"`
	Strategy string `json:"strategy" yaml:"strategy"`
	Unique   bool   `json:"unique" yaml:"unique"`
}

// StrategyFallback names a result produced after every strategy failed.
const StrategyFallback = "fallback"

type Synthesizer struct {
	doc *dom.Document
	log logrus.FieldLogger
}

func New(doc *dom.Document, log logrus.FieldLogger) *Synthesizer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Synthesizer{doc: doc, log: log}
}

// target carries what every strategy needs to know about the element.
type target struct {
	doc  *dom.Document
	el   *html.Node
	tag  string
	step string
	text string

	// space is the expression for the context node's normalized text.
	space string
}

const plainSpace = "normalize-space()"

// foldedSpace maps Unicode spaces to plain ones before normalizing, so the
// browser compares the same string dom.NormalizeSpace produced.
var foldedSpace = "normalize-space(translate(., " + Literal(dom.UnicodeSpace) + ", " +
	Literal(strings.Repeat(" ", len(dom.UnicodeSpace))) + "))"

// Synthesize returns a locator for el. It never fails; see Result.Unique.
func (s *Synthesizer) Synthesize(el *html.Node) Result {
	if !dom.IsElement(el) {
		return Result{Locator: "//*", Strategy: StrategyFallback}
	}
	t := &target{
		doc:   s.doc,
		el:    el,
		tag:   dom.Tag(el),
		step:  nodeTest(el),
		text:  resolver.ExtractText(s.doc, el),
		space: plainSpace,
	}
	if dom.HasUnicodeSpace(s.doc.Root()) {
		t.space = foldedSpace
	}

	for _, st := range strategies {
		if x := st.try(t); x != "" {
			s.log.WithFields(logrus.Fields{"strategy": st.name, "locator": x}).Debug("locator synthesized")
			return Result{Locator: x, Strategy: st.name, Unique: true}
		}
	}

	x := positionalPath(t)
	if x == "" {
		x = "//" + t.step
	}
	s.log.WithFields(logrus.Fields{"tag": t.tag, "locator": x}).Warn("no unique locator found, using positional path")
	return Result{Locator: x, Strategy: StrategyFallback, Unique: false}
}

// unique reports whether expr selects exactly el.
func (t *target) unique(expr string) bool {
	return t.uniqueFor(expr, t.el)
}

func (t *target) uniqueFor(expr string, want *html.Node) bool {
	nodes, err := t.doc.Evaluate(expr)
	return err == nil && len(nodes) == 1 && nodes[0] == want
}

// first returns the first candidate that uniquely selects el.
func (t *target) first(candidates ...string) string {
	for _, x := range candidates {
		if x != "" && t.unique(x) {
			return x
		}
	}
	return ""
}

func (t *target) eq(s string) string {
	return t.space + "=" + Literal(s)
}

func (t *target) contains(s string) string {
	return "contains(" + t.space + ", " + Literal(s) + ")"
}

// path builds //step[predicate] for the target element.
func (t *target) path(predicate string) string {
	return fmt.Sprintf("//%s[%s]", t.step, predicate)
}

// nodeTest is the XPath step matching n's tag. Foreign (SVG) elements are
// matched by local-name() so the same locator works in browsers, where a
// bare name test does not match namespaced elements.
func nodeTest(n *html.Node) string {
	if dom.IsForeign(n) {
		return "*[local-name()=" + Literal(dom.LocalName(n)) + "]"
	}
	return dom.Tag(n)
}

func fits(s string) bool {
	return len([]rune(s)) <= resolver.MaxLabelLength
}

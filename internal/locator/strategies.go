package locator

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"uirecorder/internal/dom"
	"uirecorder/internal/resolver"
)

// Strategy names as reported in Result.Strategy.
const (
	StrategyTestAttr         = "test-attribute"
	StrategyIDWithText       = "id-with-text"
	StrategyNameWithText     = "name-with-text"
	StrategyText             = "text"
	StrategyPlaceholder      = "placeholder"
	StrategyChildPlaceholder = "child-placeholder"
	StrategyAriaLabel        = "aria-label"
	StrategyClassAndText     = "class-and-text"
	StrategyID               = "id"
	StrategyDataValue        = "data-value"
	StrategyName             = "name"
	StrategyTitle            = "title"
	StrategySVGContext       = "svg-context"
	StrategyAnchoredText     = "anchored-text"
	StrategyPosition         = "position"
)

type strategy struct {
	name string
	try  func(t *target) string
}

// strategies are tried in order; the first unique locator wins.
var strategies = []strategy{
	{StrategyTestAttr, byTestAttr},
	{StrategyIDWithText, byIDWithText},
	{StrategyNameWithText, byNameWithText},
	{StrategyText, byText},
	{StrategyPlaceholder, byPlaceholder},
	{StrategyChildPlaceholder, byChildPlaceholder},
	{StrategyAriaLabel, byAriaLabel},
	{StrategyClassAndText, byClassAndText},
	{StrategyID, byID},
	{StrategyDataValue, byDataValue},
	{StrategyName, byName},
	{StrategyTitle, byTitle},
	{StrategySVGContext, bySVGContext},
	{StrategyAnchoredText, byAnchoredText},
	{StrategyPosition, byPosition},
}

var (
	testAttrs = []string{"data-testid", "data-test", "data-cy", "data-qa"}

	textTags = map[string]bool{
		"button": true, "a": true, "label": true, "th": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"span": true, "li": true, "div": true, "option": true,
		"input": true, "textarea": true,
	}

	optionClasses = []string{"option", "item", "dropdown", "menu", "select"}

	svgHostTags = map[string]bool{"button": true, "a": true, "div": true, "span": true}

	anchorRoles = map[string]bool{
		"listbox": true, "menu": true, "list": true, "dialog": true,
		"dropdown": true, "presentation": true, "group": true,
	}
)

const (
	svgStep       = `//*[local-name()="svg"]`
	maxSVGAscent  = 5
	maxAnchorHops = 8
	maxPathHops   = 5
)

func isTextEntry(tag string) bool {
	return tag == "input" || tag == "textarea"
}

func normalizedText(n *html.Node) string {
	return dom.NormalizeSpace(dom.Text(n))
}

func attrEq(name, v string) string {
	return "@" + name + "=" + Literal(v)
}

func byTestAttr(t *target) string {
	for _, a := range testAttrs {
		if v := dom.Attr(t.el, a); v != "" {
			if x := t.first("//*[" + attrEq(a, v) + "]"); x != "" {
				return x
			}
		}
	}
	return ""
}

func byIDWithText(t *target) string {
	id := dom.ID(t.el)
	if id == "" {
		return ""
	}
	idp := attrEq("id", id)

	if isTextEntry(t.tag) {
		if ph := dom.Attr(t.el, "placeholder"); ph != "" && fits(ph) {
			if x := t.first(t.path(idp + " and " + attrEq("placeholder", ph))); x != "" {
				return x
			}
		}
		if al := dom.Attr(t.el, "aria-label"); al != "" && fits(al) {
			if x := t.first(t.path(idp + " and " + attrEq("aria-label", al))); x != "" {
				return x
			}
		}
	} else if text := dom.NormalizeSpace(t.text); text != "" && fits(text) {
		if x := t.first(t.path(idp + " and " + t.contains(text))); x != "" {
			return x
		}
	}

	// A globally unique id identifies the element on its own.
	return t.first(t.path(idp))
}

func byNameWithText(t *target) string {
	name := dom.Attr(t.el, "name")
	text := dom.NormalizeSpace(t.text)
	if name == "" || text == "" || !fits(text) {
		return ""
	}
	return t.first(t.path(attrEq("name", name) + " and " + t.contains(text)))
}

func byText(t *target) string {
	if !textTags[t.tag] {
		return ""
	}

	if isTextEntry(t.tag) {
		var candidates []string
		if ph := dom.Attr(t.el, "placeholder"); ph != "" && fits(ph) {
			candidates = append(candidates, t.path(attrEq("placeholder", ph)))
		}
		if al := dom.Attr(t.el, "aria-label"); al != "" && fits(al) {
			candidates = append(candidates, t.path(attrEq("aria-label", al)))
		}
		if label := dom.NormalizeSpace(resolver.AssociatedLabelText(t.doc, t.el)); label != "" {
			cond := t.contains(label)
			candidates = append(candidates, t.path("ancestor::label["+cond+"] or @id=//label["+cond+"]/@for"))
		}
		return t.first(candidates...)
	}

	if direct := dom.NormalizeSpace(dom.DirectText(t.el)); direct != "" && fits(direct) {
		if x := t.first(t.path(t.eq(direct))); x != "" {
			return x
		}
	}

	switch t.tag {
	case "div", "span", "li":
		if full := normalizedText(t.el); full != "" && fits(full) {
			return t.first(t.path(t.eq(full)), t.path(t.contains(full)))
		}
	}
	return ""
}

func byPlaceholder(t *target) string {
	ph := dom.Attr(t.el, "placeholder")
	if ph == "" {
		return ""
	}
	return t.first(t.path(attrEq("placeholder", ph)))
}

func byChildPlaceholder(t *target) string {
	child := dom.QuerySelector(t.el, "[placeholder]")
	if child == nil {
		return ""
	}
	ph := dom.Attr(child, "placeholder")
	if ph == "" {
		return ""
	}
	return t.first(
		t.path(".//*["+attrEq("placeholder", ph)+"]"),
		t.path("./"+nodeTest(child)+"["+attrEq("placeholder", ph)+"]"),
	)
}

func byAriaLabel(t *target) string {
	al := dom.Attr(t.el, "aria-label")
	if al == "" {
		return ""
	}
	return t.first(t.path(attrEq("aria-label", al)))
}

func byClassAndText(t *target) string {
	text := normalizedText(t.el)
	hasText := text != "" && fits(text)

	if dom.HasAttr(t.el, "data-attr-value") && hasText {
		v := dom.Attr(t.el, "data-attr-value")
		if x := t.first(
			"//*["+attrEq("data-attr-value", v)+" and "+t.eq(text)+"]",
			"//*["+attrEq("data-attr-value", v)+" and "+t.contains(text)+"]",
		); x != "" {
			return x
		}
	}

	if child := dom.QuerySelector(t.el, "[title]"); child != nil {
		if title := dom.Attr(child, "title"); title != "" && fits(title) {
			inner := ".//*[" + attrEq("title", title) + "]"
			var candidates []string
			if hasText {
				candidates = append(candidates, t.path(inner+" and "+t.contains(text)))
			}
			candidates = append(candidates, t.path(inner))
			if x := t.first(candidates...); x != "" {
				return x
			}
		}
	}

	if !hasText {
		return ""
	}
	if x := t.first(t.path(t.eq(text))); x != "" {
		return x
	}
	for _, cls := range optionClasses {
		if !dom.HasClass(t.el, cls) {
			continue
		}
		clsp := "contains(@class, " + Literal(cls) + ")"
		if x := t.first(t.path(clsp+" and "+t.eq(text)), t.path(clsp+" and "+t.contains(text))); x != "" {
			return x
		}
	}
	return ""
}

func byID(t *target) string {
	id := dom.ID(t.el)
	if id == "" {
		return ""
	}
	idp := attrEq("id", id)
	simple := "//*[" + idp + "]"
	candidates := []string{simple}

	if ph := dom.Attr(t.el, "placeholder"); ph != "" {
		candidates = append(candidates, t.path(idp+" and "+attrEq("placeholder", ph)))
	}
	if child := dom.QuerySelector(t.el, "[placeholder]"); child != nil {
		if ph := dom.Attr(child, "placeholder"); ph != "" {
			candidates = append(candidates, t.path(idp+" and .//*["+attrEq("placeholder", ph)+"]"))
		}
	}
	if label := dom.NormalizeSpace(resolver.AssociatedLabelText(t.doc, t.el)); label != "" {
		candidates = append(candidates, t.path(idp+" and ancestor::*["+t.contains(label)+"]"))
	}
	if name := dom.Attr(t.el, "name"); name != "" {
		candidates = append(candidates, t.path(idp+" and "+attrEq("name", name)))
	}
	if al := dom.Attr(t.el, "aria-label"); al != "" {
		candidates = append(candidates, t.path(idp+" and "+attrEq("aria-label", al)))
	}
	if x := t.first(candidates...); x != "" {
		return x
	}

	// Duplicate ids: pick this element by its position among them.
	same, err := t.doc.Evaluate(simple)
	if err != nil || len(same) < 2 {
		return ""
	}
	for i, n := range same {
		if n == t.el {
			return t.first(fmt.Sprintf("(%s)[%d]", simple, i+1))
		}
	}
	return ""
}

func byDataValue(t *target) string {
	v := dom.Attr(t.el, "data-attr-value")
	if v == "" {
		return ""
	}
	return t.first("//*[" + attrEq("data-attr-value", v) + "]")
}

func byName(t *target) string {
	name := dom.Attr(t.el, "name")
	if name == "" {
		return ""
	}
	return t.first(t.path(attrEq("name", name)))
}

func byTitle(t *target) string {
	title := dom.Attr(t.el, "title")
	if title == "" {
		return ""
	}
	return t.first(t.path(attrEq("title", title)))
}

// bySVGContext locates the svg the element belongs to through a nearby
// labelled host such as an icon button.
func bySVGContext(t *target) string {
	svg := enclosingSVG(t.el)
	if svg == nil {
		return ""
	}

	p := dom.Parent(t.el)
	for depth := 0; p != nil && depth < maxSVGAscent; depth++ {
		ptag := dom.Tag(p)
		text := dom.NormalizeSpace(dom.DirectText(p))
		if text == "" {
			text = normalizedText(p)
		}
		if svgHostTags[ptag] && text != "" && fits(text) {
			var candidates []string
			if id := dom.ID(p); id != "" {
				candidates = append(candidates,
					"//"+ptag+"["+attrEq("id", id)+" and "+t.contains(text)+"]"+svgStep)
			}
			if al := dom.Attr(p, "aria-label"); al != "" && fits(al) {
				candidates = append(candidates, "//"+ptag+"["+attrEq("aria-label", al)+"]"+svgStep)
			}
			candidates = append(candidates,
				"//"+ptag+"["+t.contains(text)+"]"+svgStep,
				"//"+ptag+"["+t.eq(text)+"]"+svgStep,
			)
			for _, x := range candidates {
				if t.uniqueFor(x, svg) {
					return x
				}
			}
		}
		p = dom.Parent(p)
	}
	return ""
}

func enclosingSVG(n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = dom.Parent(cur) {
		if dom.Tag(cur) == "svg" {
			return cur
		}
	}
	return nil
}

// byAnchoredText scopes a text match to a nearby ancestor carrying an id,
// a class token or a container role.
func byAnchoredText(t *target) string {
	text := normalizedText(t.el)
	if text == "" || !fits(text) {
		return ""
	}
	tagged := "//" + t.step + "[" + t.eq(text) + "]"
	anyTag := "//*[" + t.eq(text) + "]"

	p := dom.Parent(t.el)
	for depth := 0; p != nil && depth < maxAnchorHops; depth++ {
		var candidates []string
		if id := dom.ID(p); id != "" {
			anchor := "//*[" + attrEq("id", id) + "]"
			candidates = append(candidates, anchor+tagged, anchor+anyTag)
		}
		if cls := firstClassToken(p); cls != "" {
			anchor := "//*[contains(@class, " + Literal(cls) + ")]"
			candidates = append(candidates, anchor+tagged, anchor+anyTag)
		}
		if role := dom.Attr(p, "role"); anchorRoles[role] {
			candidates = append(candidates, "//*["+attrEq("role", role)+"]"+tagged)
		}
		if x := t.first(candidates...); x != "" {
			return x
		}
		p = dom.Parent(p)
	}
	return ""
}

func firstClassToken(n *html.Node) string {
	for _, c := range strings.Fields(dom.ClassName(n)) {
		if len(c) > 2 {
			return c
		}
	}
	return ""
}

// byPosition walks up to maxPathHops ancestors building a tag-indexed path,
// anchoring on the first ancestor whose id is unique in the document.
func byPosition(t *target) string {
	var parts []string
	cur := t.el
	root := t.doc.DocumentElement()
	for depth := 0; dom.IsElement(cur) && cur != root && depth < maxPathHops; depth++ {
		if id := dom.ID(cur); id != "" && depth > 0 {
			anchor := "//*[" + attrEq("id", id) + "]"
			if t.uniqueFor(anchor, cur) {
				if x := t.first(anchor + "/" + strings.Join(parts, "/")); x != "" {
					return x
				}
			}
		}
		parts = append([]string{segment(cur)}, parts...)
		if x := t.first("//" + strings.Join(parts, "/")); x != "" {
			return x
		}
		cur = dom.Parent(cur)
	}
	return ""
}

// positionalPath is the full positional path without any uniqueness
// requirement.
func positionalPath(t *target) string {
	var parts []string
	cur := t.el
	root := t.doc.DocumentElement()
	for depth := 0; dom.IsElement(cur) && cur != root && depth < maxPathHops; depth++ {
		parts = append([]string{segment(cur)}, parts...)
		cur = dom.Parent(cur)
	}
	if len(parts) == 0 {
		return ""
	}
	return "//" + strings.Join(parts, "/")
}

func segment(n *html.Node) string {
	step := nodeTest(n)
	if i := positionIndex(n); i > 0 {
		return fmt.Sprintf("%s[%d]", step, i)
	}
	return step
}

// positionIndex is n's 1-based index among same-tag siblings, or 0 when
// it has none.
func positionIndex(n *html.Node) int {
	name := dom.LocalName(n)
	prev := 0
	for s := dom.PrevElementSibling(n); s != nil; s = dom.PrevElementSibling(s) {
		if dom.LocalName(s) == name {
			prev++
		}
	}
	next := false
	for s := dom.NextElementSibling(n); s != nil; s = dom.NextElementSibling(s) {
		if dom.LocalName(s) == name {
			next = true
			break
		}
	}
	if prev == 0 && !next {
		return 0
	}
	return prev + 1
}

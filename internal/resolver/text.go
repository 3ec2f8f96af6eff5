package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"uirecorder/internal/dom"
)

// MaxLabelLength separates labels from paragraphs: longer text content is
// rejected and the next extraction step is tried.
const MaxLabelLength = 60

// ExtractText returns the best human-readable label for el, or "".
func ExtractText(doc *dom.Document, el *html.Node) string {
	if !dom.IsElement(el) {
		return ""
	}
	tag := dom.Tag(el)

	if ph := dom.Attr(el, "placeholder"); ph != "" {
		return ph
	}
	if child := dom.QuerySelector(el, "[placeholder]"); child != nil {
		if ph := dom.Attr(child, "placeholder"); ph != "" {
			return ph
		}
	}

	if aria := dom.Attr(el, "aria-label"); aria != "" {
		return aria
	}
	if title := dom.Attr(el, "title"); title != "" {
		return title
	}

	if opt := dom.QuerySelector(el, "[class*='option-text'], [class*='item-text'], [class*='option-label']"); opt != nil {
		if t := dom.Text(opt); t != "" {
			return t
		}
	}

	if val := dom.Attr(el, "data-attr-value"); val != "" {
		if inner := dom.QuerySelector(el, "[title]"); inner != nil {
			return dom.Attr(inner, "title")
		}
		if t := dom.Text(el); t != "" && fits(t) {
			return t
		}
		return Humanize(val)
	}

	if isInputLike(el, tag) {
		if label := AssociatedLabelText(doc, el); label != "" {
			return label
		}
		if span := dom.QuerySelector(el, "[class*='checkbox-text'], [class*='label-text']"); span != nil {
			t := dom.Attr(span, "title")
			if t == "" {
				t = dom.Text(span)
			}
			if t != "" {
				return t
			}
		}
		if near := dom.QuerySelector(el, "[title]"); near != nil {
			return dom.Attr(near, "title")
		}
		name := ""
		if nested := dom.QuerySelector(el, "input[name]"); nested != nil {
			name = dom.Attr(nested, "name")
		}
		if name == "" {
			name = dom.Attr(el, "name")
		}
		if name != "" {
			return Humanize(name)
		}
	}

	if direct := dom.DirectText(el); direct != "" && fits(direct) {
		return direct
	}

	if tag == "button" || tag == "a" {
		if full := dom.Text(el); full != "" && fits(full) {
			return full
		}
	}

	if alt := dom.Attr(el, "alt"); alt != "" {
		return alt
	}

	if label := AssociatedLabelText(doc, el); label != "" {
		return label
	}

	if titled := dom.QuerySelector(el, "[title]"); titled != nil {
		if t := dom.Attr(titled, "title"); t != "" {
			return t
		}
	}
	return ""
}

// AssociatedLabelText finds the label bound to el: a label[for] pointing at
// its id, an enclosing <label>, or a <label> immediately before it.
func AssociatedLabelText(doc *dom.Document, el *html.Node) string {
	if id := dom.ID(el); id != "" && doc != nil {
		if labels := doc.LabelsFor(id); len(labels) > 0 {
			if t := dom.Text(labels[0]); t != "" && fits(t) {
				return t
			}
		}
	}
	if label := dom.Closest(el, "label"); label != nil {
		if t := dom.DirectText(label); t != "" && fits(t) {
			return t
		}
	}
	if prev := dom.PrevElementSibling(el); prev != nil && dom.Tag(prev) == "label" {
		if t := dom.Text(prev); t != "" && fits(t) {
			return t
		}
	}
	return ""
}

// Humanize turns identifiers like "first_name" or "accept-terms" into
// "First Name" and "Accept Terms".
func Humanize(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	out := []rune(s)
	prevWord := false
	for i, r := range out {
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		if word && !prevWord {
			out[i] = unicode.ToUpper(r)
		}
		prevWord = word
	}
	return string(out)
}

func isInputLike(el *html.Node, tag string) bool {
	switch tag {
	case "input", "textarea", "select", "fieldset":
		return true
	}
	return dom.HasClass(el, "check-box", "checkbox")
}

func fits(s string) bool {
	return len([]rune(s)) <= MaxLabelLength
}

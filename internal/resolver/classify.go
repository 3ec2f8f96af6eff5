package resolver

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"uirecorder/internal/dom"
)

// MaxAscent caps how many ancestors Resolve visits above the raw target.
const MaxAscent = 10

var svgInternals = map[string]bool{
	"svg": true, "path": true, "g": true, "circle": true, "rect": true,
	"line": true, "polygon": true, "polyline": true, "use": true, "ellipse": true,
	"text": true, "tspan": true, "defs": true, "clippath": true, "mask": true,
}

var headingTag = regexp.MustCompile(`^h[1-6]$`)

// A rule classifies a single node. Rules are tried in table order and the
// first one that matches ends the ascent.
type rule struct {
	name  string
	match func(doc *dom.Document, n *html.Node, tag string) (Type, bool)
}

var rules = []rule{
	{name: "native", match: nativeRule},
	{name: "aria-role", match: roleRule},
	{name: "custom-widget", match: customWidgetRule},
	{name: "static", match: staticRule},
	{name: "interactive-hint", match: interactiveHintRule},
}

// Resolve walks from raw toward the root and returns the first ancestor
// (or raw itself) that represents a recognizable control. It never fails:
// without a match the raw target comes back tagged with its own tag name.
func Resolve(doc *dom.Document, raw *html.Node) Resolved {
	el := raw
	for depth := 0; el != nil && depth < MaxAscent; depth++ {
		tag := dom.Tag(el)
		if tag == "" {
			break
		}
		if !svgInternals[tag] {
			for _, r := range rules {
				if t, ok := r.match(doc, el, tag); ok {
					return Resolved{Node: el, Type: t}
				}
			}
		}
		el = dom.Parent(el)
	}
	return Resolved{Node: raw, Type: Generic(dom.Tag(raw))}
}

func nativeRule(_ *dom.Document, n *html.Node, tag string) (Type, bool) {
	switch tag {
	case "button":
		return buttonType(n), true
	case "a":
		return TypeLink, true
	case "input":
		return inputType(n), true
	case "textarea":
		return TypeTextArea, true
	case "select":
		return TypeDropdown, true
	case "option":
		return TypeDropdownOption, true
	case "label":
		return TypeLabel, true
	}
	return "", false
}

func roleRule(_ *dom.Document, n *html.Node, _ string) (Type, bool) {
	switch strings.ToLower(dom.Attr(n, "role")) {
	case "button":
		return buttonType(n), true
	case "tab":
		return TypeTab, true
	case "menuitem":
		return TypeMenuItem, true
	case "option", "listbox":
		return TypeDropdownOption, true
	case "checkbox":
		return TypeCheckbox, true
	case "radio":
		return TypeRadio, true
	case "link":
		return TypeLink, true
	}
	return "", false
}

var (
	optionClasses   = []string{"dropdown-box__option", "dropdown-item", "option-item", "select-option", "list-item", "menu-item"}
	checkboxClasses = []string{"check-box-wrapper", "checkbox-wrapper", "checkbox-item", "custom-checkbox"}
	triggerClasses  = []string{"dropdown-wrapper", "select-wrapper", "dropdown-trigger", "dropdown-toggle", "select-trigger"}
)

func customWidgetRule(_ *dom.Document, n *html.Node, _ string) (Type, bool) {
	switch {
	case dom.HasAttr(n, "data-attr-value"):
		return TypeDropdownOption, true
	case dom.HasClass(n, optionClasses...):
		return TypeDropdownOption, true
	case dom.HasClass(n, checkboxClasses...):
		return TypeCheckbox, true
	case dom.HasClass(n, triggerClasses...):
		return TypeDropdown, true
	}
	return "", false
}

func staticRule(_ *dom.Document, _ *html.Node, tag string) (Type, bool) {
	switch {
	case tag == "img":
		return TypeImage, true
	case headingTag.MatchString(tag):
		return TypeHeading, true
	case tag == "td" || tag == "th":
		return TypeTableCell, true
	}
	return "", false
}

// interactiveHintRule stops on generic elements that look clickable, but
// only when they carry a usable label.
func interactiveHintRule(doc *dom.Document, n *html.Node, tag string) (Type, bool) {
	if !doc.HasClickHandler(n) && !dom.HasAttr(n, "tabindex") && !dom.HasAttr(n, "data-action") {
		return "", false
	}
	if ExtractText(doc, n) == "" {
		return "", false
	}
	if t, ok := guessFromClasses(n); ok {
		return t, true
	}
	return Generic(tag), true
}

func buttonType(n *html.Node) Type {
	if dom.QuerySelector(n, "[placeholder]") != nil {
		return TypeDropdown
	}
	if dom.HasClass(n, "dropdown", "select", "combobox") {
		return TypeDropdown
	}
	return TypeButton
}

func inputType(n *html.Node) Type {
	t := strings.ToLower(dom.Attr(n, "type"))
	switch t {
	case "checkbox":
		return TypeCheckbox
	case "radio":
		return TypeRadio
	case "file":
		return TypeFileInput
	case "submit", "button":
		return TypeButton
	}
	return TypeTextField
}

func guessFromClasses(n *html.Node) (Type, bool) {
	switch {
	case dom.HasClass(n, "dropdown", "select"):
		return TypeDropdown, true
	case dom.HasClass(n, "checkbox", "check-box"):
		return TypeCheckbox, true
	case dom.HasClass(n, "radio"):
		return TypeRadio, true
	case dom.HasClass(n, "btn", "button"):
		return TypeButton, true
	case dom.HasClass(n, "tab"):
		return TypeTab, true
	}
	return "", false
}

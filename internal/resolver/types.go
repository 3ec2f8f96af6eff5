// Package resolver finds the semantically meaningful element behind a raw
// event target and extracts the human-readable label for it.
package resolver

import "golang.org/x/net/html"

// Type is the coarse interactive role of a resolved element. The named
// constants form the known set; any other value is a generic tag name.
type Type string

const (
	TypeButton         Type = "button"
	TypeLink           Type = "link"
	TypeDropdown       Type = "dropdown"
	TypeDropdownOption Type = "dropdown option"
	TypeCheckbox       Type = "checkbox"
	TypeRadio          Type = "radio"
	TypeTab            Type = "tab"
	TypeMenuItem       Type = "menu item"
	TypeTextField      Type = "text field"
	TypeTextArea       Type = "text area"
	TypeFileInput      Type = "file input"
	TypeLabel          Type = "label"
	TypeImage          Type = "image"
	TypeHeading        Type = "heading"
	TypeTableCell      Type = "table cell"
)

var knownTypes = map[Type]bool{
	TypeButton: true, TypeLink: true, TypeDropdown: true, TypeDropdownOption: true,
	TypeCheckbox: true, TypeRadio: true, TypeTab: true, TypeMenuItem: true,
	TypeTextField: true, TypeTextArea: true, TypeFileInput: true, TypeLabel: true,
	TypeImage: true, TypeHeading: true, TypeTableCell: true,
}

// Generic tags an element with its own tag name when no role applies.
func Generic(tag string) Type {
	if tag == "" {
		return "element"
	}
	return Type(tag)
}

// IsGeneric reports whether t is a plain tag name rather than a known role.
func (t Type) IsGeneric() bool {
	return !knownTypes[t]
}

func (t Type) String() string {
	return string(t)
}

// Resolved is the element chosen as the meaningful target of an event.
type Resolved struct {
	Node *html.Node
	Type Type
}

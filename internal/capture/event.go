package capture

import (
	"strings"
	"time"

	"golang.org/x/net/html"

	"uirecorder/internal/dom"
	"uirecorder/internal/models"
)

// RawEvent is a DOM event as observed on the page, with the live control
// state the snapshot cannot carry.
type RawEvent struct {
	Kind   models.ActionKind
	Doc    *dom.Document
	Target *html.Node
	URL    string
	At     time.Time

	Value        string
	Checked      *bool
	SelectedText string
	Key          string
	Ctrl         bool
	Shift        bool
	Alt          bool
}

// NotableKeys are the only keys whose keydown is recorded.
var NotableKeys = map[string]bool{
	"Enter":     true,
	"Tab":       true,
	"Escape":    true,
	"Delete":    true,
	"Backspace": true,
}

func isToggle(n *html.Node) bool {
	if dom.Tag(n) != "input" {
		return false
	}
	switch strings.ToLower(dom.Attr(n, "type")) {
	case "checkbox", "radio":
		return true
	}
	return false
}

func isCheckbox(n *html.Node) bool {
	return dom.Tag(n) == "input" && strings.EqualFold(dom.Attr(n, "type"), "checkbox")
}

// normalize keeps only the fields that belong to ev.Kind and reports
// whether the event should be recorded at all.
func normalize(ev RawEvent) (RawEvent, bool) {
	out := RawEvent{
		Kind:   ev.Kind,
		Doc:    ev.Doc,
		Target: ev.Target,
		URL:    ev.URL,
		At:     ev.At,
	}
	switch ev.Kind {
	case models.ActionClick:
		if isCheckbox(ev.Target) {
			out.Checked = copyBool(ev.Checked)
		}
	case models.ActionInput:
		out.Value = ev.Value
	case models.ActionChange:
		switch {
		case isToggle(ev.Target):
			out.Checked = copyBool(ev.Checked)
			out.Value = ev.Value
		case dom.Tag(ev.Target) == "select":
			out.Value = ev.Value
			out.SelectedText = ev.SelectedText
		default:
			return out, false
		}
	case models.ActionKeyDown:
		if !NotableKeys[ev.Key] {
			return out, false
		}
		out.Key = ev.Key
		out.Ctrl, out.Shift, out.Alt = ev.Ctrl, ev.Shift, ev.Alt
	case models.ActionDblClick, models.ActionSubmit, models.ActionContextMenu:
	default:
		return out, false
	}
	return out, true
}

// copyBool detaches an emitted record from the caller's flag.
func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

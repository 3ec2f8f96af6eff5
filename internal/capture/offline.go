package capture

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"uirecorder/internal/describe"
	"uirecorder/internal/dom"
	"uirecorder/internal/models"
)

var (
	ErrTargetNotFound = errors.New("target selector matches no element")
	ErrIgnoredEvent   = errors.New("event would not be recorded")
)

// PageAction is an action on a static page. Without a Target selector the
// page must be a capture snapshot carrying the target marker.
type PageAction struct {
	HTML         string            `json:"html"`
	Target       string            `json:"target"`
	Action       models.ActionKind `json:"action"`
	URL          string            `json:"url"`
	Value        string            `json:"value"`
	Checked      *bool             `json:"checked"`
	SelectedText string            `json:"selected_text"`
	Key          string            `json:"key"`
	Ctrl         bool              `json:"ctrl"`
	Shift        bool              `json:"shift"`
	Alt          bool              `json:"alt"`
	Language     string            `json:"language"`
}

// DescribePage parses the page, finds the target and describes the action
// the way a live recording would.
func DescribePage(a PageAction, log logrus.FieldLogger) (models.ActionRecord, error) {
	if a.Action == "" {
		a.Action = models.ActionClick
	}
	if !a.Action.Valid() {
		return models.ActionRecord{}, fmt.Errorf("unknown action %q", a.Action)
	}

	ev := RawEvent{
		Kind:         a.Action,
		URL:          a.URL,
		Value:        a.Value,
		Checked:      a.Checked,
		SelectedText: a.SelectedText,
		Key:          a.Key,
		Ctrl:         a.Ctrl,
		Shift:        a.Shift,
		Alt:          a.Alt,
	}
	if a.Target == "" {
		doc, target, err := dom.ParseSnapshot(a.HTML)
		if err != nil {
			return models.ActionRecord{}, err
		}
		ev.Doc, ev.Target = doc, target
	} else {
		doc, err := dom.ParseString(a.HTML)
		if err != nil {
			return models.ActionRecord{}, fmt.Errorf("parse html: %w", err)
		}
		ev.Doc, ev.Target = doc, doc.First(a.Target)
		if ev.Target == nil {
			return models.ActionRecord{}, fmt.Errorf("%w: %s", ErrTargetNotFound, a.Target)
		}
	}

	rec, ok := Describe(ev, describe.New(a.Language), log)
	if !ok {
		return models.ActionRecord{}, ErrIgnoredEvent
	}
	return rec, nil
}

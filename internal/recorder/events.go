package recorder

import (
	"fmt"
	"time"

	"uirecorder/internal/capture"
	"uirecorder/internal/dom"
	"uirecorder/internal/models"
)

// pageEvent is one entry of the capture script's queue.
type pageEvent struct {
	Kind         string  `json:"kind"`
	HTML         string  `json:"html"`
	URL          string  `json:"url"`
	Timestamp    float64 `json:"ts"`
	Value        string  `json:"value"`
	Checked      *bool   `json:"checked"`
	SelectedText string  `json:"selectedText"`
	Key          string  `json:"key"`
	Ctrl         bool    `json:"ctrl"`
	Shift        bool    `json:"shift"`
	Alt          bool    `json:"alt"`
}

func (e pageEvent) toRaw() (capture.RawEvent, error) {
	kind := models.ActionKind(e.Kind)
	if !kind.Valid() {
		return capture.RawEvent{}, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	doc, target, err := dom.ParseSnapshot(e.HTML)
	if err != nil {
		return capture.RawEvent{}, fmt.Errorf("parse %s snapshot: %w", e.Kind, err)
	}

	ev := capture.RawEvent{
		Kind:         kind,
		Doc:          doc,
		Target:       target,
		URL:          e.URL,
		Value:        e.Value,
		Checked:      e.Checked,
		SelectedText: e.SelectedText,
		Key:          e.Key,
		Ctrl:         e.Ctrl,
		Shift:        e.Shift,
		Alt:          e.Alt,
	}
	if e.Timestamp > 0 {
		ev.At = time.UnixMilli(int64(e.Timestamp))
	}
	return ev, nil
}

package models

import "time"

type ActionKind string

const (
	ActionClick       ActionKind = "click"
	ActionDblClick    ActionKind = "dblclick"
	ActionInput       ActionKind = "input"
	ActionChange      ActionKind = "change"
	ActionSubmit      ActionKind = "submit"
	ActionKeyDown     ActionKind = "keydown"
	ActionContextMenu ActionKind = "contextmenu"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

func (k ActionKind) Valid() bool {
	switch k {
	case ActionClick, ActionDblClick, ActionInput, ActionChange, ActionSubmit, ActionKeyDown, ActionContextMenu:
		return true
	}
	return false
}

// ActionRecord is one recorded user step.
type ActionRecord struct {
	Step            int        `json:"step" yaml:"step"`
	Timestamp       string     `json:"timestamp" yaml:"timestamp"`
	Action          ActionKind `json:"action" yaml:"action"`
	Description     string     `json:"description" yaml:"description"`
	Locator         string     `json:"locator" yaml:"locator"`
	LocatorStrategy string     `json:"locator_strategy,omitempty" yaml:"locator_strategy,omitempty"`
	LocatorUnique   bool       `json:"locator_unique" yaml:"locator_unique"`
	TagName         string     `json:"tag_name" yaml:"tag_name"`
	URL             string     `json:"url" yaml:"url"`

	Value        string `json:"value,omitempty" yaml:"value,omitempty"`
	Checked      *bool  `json:"checked,omitempty" yaml:"checked,omitempty"`
	SelectedText string `json:"selected_text,omitempty" yaml:"selected_text,omitempty"`
	Key          string `json:"key,omitempty" yaml:"key,omitempty"`
	CtrlKey      bool   `json:"ctrl_key,omitempty" yaml:"ctrl_key,omitempty"`
	ShiftKey     bool   `json:"shift_key,omitempty" yaml:"shift_key,omitempty"`
	AltKey       bool   `json:"alt_key,omitempty" yaml:"alt_key,omitempty"`

	Expectation string `json:"expectation,omitempty" yaml:"expectation,omitempty"`
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

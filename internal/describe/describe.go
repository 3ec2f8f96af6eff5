// Package describe renders localized, human-readable sentences for recorded
// actions.
package describe

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"uirecorder/internal/models"
	"uirecorder/internal/resolver"
)

// DefaultLanguage is used for empty or unsupported language codes.
const DefaultLanguage = "tr"

// MaxValueLength caps the typed value quoted in input descriptions.
const MaxValueLength = 40

var (
	supported = []language.Tag{language.Turkish, language.English}
	matcher   = language.NewMatcher(supported)
	cat       = newCatalog()
)

// clickKeys maps a semantic type to its click template.
var clickKeys = map[resolver.Type]string{
	resolver.TypeDropdown:       keyDropdownClicked,
	resolver.TypeDropdownOption: keyOptionClicked,
	resolver.TypeButton:         keyButtonClicked,
	resolver.TypeLink:           keyLinkClicked,
	resolver.TypeCheckbox:       keyCheckboxClicked,
	resolver.TypeRadio:          keyRadioSelected,
	resolver.TypeTab:            keyTabClicked,
	resolver.TypeTextField:      keyFieldClicked,
	resolver.TypeTextArea:       keyFieldClicked,
	resolver.TypeImage:          keyImageClicked,
	resolver.TypeMenuItem:       keyMenuItemClicked,
}

// Extra holds the action-specific fields a description may quote.
type Extra struct {
	Value        string
	Checked      *bool
	SelectedText string
	Key          string
	Ctrl         bool
	Shift        bool
	Alt          bool
}

// ExtraFrom copies the action-specific fields of rec.
func ExtraFrom(rec models.ActionRecord) Extra {
	return Extra{
		Value:        rec.Value,
		Checked:      rec.Checked,
		SelectedText: rec.SelectedText,
		Key:          rec.Key,
		Ctrl:         rec.CtrlKey,
		Shift:        rec.ShiftKey,
		Alt:          rec.AltKey,
	}
}

// Builder renders descriptions in a single language. The zero value is
// not usable; use New.
type Builder struct {
	lang    string
	printer *message.Printer
}

// Match returns the supported language code closest to code.
func Match(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Languages lists the supported language codes, default first.
func Languages() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		base, _ := t.Base()
		out[i] = base.String()
	}
	return out
}

func New(code string) *Builder {
	lang := Match(code)
	return &Builder{
		lang:    lang,
		printer: message.NewPrinter(language.Make(lang), message.Catalog(cat)),
	}
}

func (b *Builder) Language() string {
	return b.lang
}

// Build describes one action on an element of the given type. label is the
// extracted element text and may be empty.
func (b *Builder) Build(kind models.ActionKind, typ resolver.Type, label string, x Extra) string {
	p := b.printer
	switch kind {
	case models.ActionClick:
		if typ == resolver.TypeCheckbox && x.Checked != nil {
			return b.checkedSentence(labelOr(label, typ), *x.Checked)
		}
		if key, ok := clickKeys[typ]; ok {
			if label == "" {
				return p.Sprintf(key + noText)
			}
			return p.Sprintf(key, label)
		}
		if label != "" {
			return p.Sprintf(keyElementClicked, label)
		}
		return p.Sprintf(keyClickedGeneric, typ.String())

	case models.ActionDblClick:
		if label != "" {
			return p.Sprintf(keyDblClicked, label)
		}
		return p.Sprintf(keyDblGeneric, typ.String())

	case models.ActionInput:
		field := labelOr(label, typ)
		if x.Value == "" {
			return p.Sprintf(keyInputCleared, field)
		}
		return p.Sprintf(keyInputTyped, field, truncate(x.Value, MaxValueLength))

	case models.ActionChange:
		field := labelOr(label, typ)
		if x.SelectedText != "" {
			return p.Sprintf(keySelectChanged, field, x.SelectedText)
		}
		if x.Checked != nil {
			return b.checkedSentence(field, *x.Checked)
		}
		return p.Sprintf(keyFieldChanged, field)

	case models.ActionSubmit:
		if label != "" {
			return p.Sprintf(keySubmittedWith, label)
		}
		return p.Sprintf(keySubmitted)

	case models.ActionKeyDown:
		return p.Sprintf(keyKeyPressed, KeyCombo(x))

	case models.ActionContextMenu:
		if label != "" {
			return p.Sprintf(keyRightClicked, label)
		}
		return p.Sprintf(keyRightGeneric, typ.String())
	}
	return p.Sprintf(keyGenericAction, string(kind))
}

func (b *Builder) checkedSentence(label string, checked bool) string {
	if checked {
		return b.printer.Sprintf(keyChecked, label)
	}
	return b.printer.Sprintf(keyUnchecked, label)
}

// KeyCombo joins the held modifiers and the key, e.g. "Ctrl+Shift+Enter".
func KeyCombo(x Extra) string {
	var parts []string
	if x.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if x.Shift {
		parts = append(parts, "Shift")
	}
	if x.Alt {
		parts = append(parts, "Alt")
	}
	return strings.Join(append(parts, x.Key), "+")
}

func labelOr(label string, typ resolver.Type) string {
	if label != "" {
		return label
	}
	return typ.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

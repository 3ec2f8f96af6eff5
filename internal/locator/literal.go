package locator

import "strings"

// Literal encodes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so text holding both quote kinds is assembled with concat().
func Literal(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}

	var args []string
	for i, part := range strings.Split(s, `"`) {
		if i > 0 {
			args = append(args, `'"'`)
		}
		if part != "" {
			args = append(args, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}

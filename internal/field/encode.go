package field

import (
	"strings"
	"unicode"
)

// EncodeSelections flattens the selected option values of a multi-valued
// field into the comma-joined wire encoding. Output order follows the
// option definition order, never the order selections were made in.
// Option values must not contain commas; the editor enforces that.
func EncodeSelections(options []Option, selected map[string]bool) string {
	var parts []string
	for _, opt := range options {
		if selected[opt.Value] {
			parts = append(parts, opt.Value)
		}
	}
	return strings.Join(parts, ",")
}

// DecodeSelections splits a comma-joined encoding back into the selected
// option values, dropping empty segments.
func DecodeSelections(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ToggleSelection adds or removes one option value in a comma-joined
// encoding and re-encodes in definition order.
func ToggleSelection(options []Option, raw, value string, on bool) string {
	selected := make(map[string]bool)
	for _, v := range DecodeSelections(raw) {
		selected[v] = true
	}
	selected[value] = on
	return EncodeSelections(options, selected)
}

// DeriveOptionValue turns a human option label into a machine value:
// lowercased, whitespace runs collapsed to single underscores, everything
// outside [a-z0-9_] stripped. Re-deriving from its own output is a no-op.
func DeriveOptionValue(label string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case unicode.IsSpace(r):
			pendingSep = b.Len() > 0
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep {
				b.WriteByte('_')
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

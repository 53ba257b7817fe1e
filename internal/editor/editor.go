// Package editor implements the authoring workflow for a single field
// definition: option entry with label→value derivation, save-time
// validation, and normalization of the saved payload.
package editor

import (
	"strings"

	"github.com/mattlowe/formhall/internal/field"
)

// Draft is a field definition being authored. A zero-origin draft (New with
// nil) starts in the default state: an empty required-less text field.
type Draft struct {
	Def field.Definition
}

// New opens a draft over an existing definition, or a fresh default field
// when orig is nil. Edits never touch the original until the caller applies
// the normalized result.
func New(orig *field.Definition) *Draft {
	if orig == nil {
		return &Draft{Def: field.Definition{FieldType: field.TypeText, Width: field.WidthFull}}
	}
	d := &Draft{Def: *orig}
	d.Def.Options = append([]field.Option(nil), orig.Options...)
	return d
}

// SetType switches the field type. Switching into section_header hides the
// type-specific settings but does not clear them; they are dropped from the
// saved payload by Normalize instead.
func (d *Draft) SetType(t field.Type) {
	d.Def.FieldType = t
}

// AddOption appends an empty option row.
func (d *Draft) AddOption() {
	d.Def.Options = append(d.Def.Options, field.Option{})
}

// RemoveOption deletes the option at index i, ignoring out-of-range indexes.
func (d *Draft) RemoveOption(i int) {
	if i < 0 || i >= len(d.Def.Options) {
		return
	}
	d.Def.Options = append(d.Def.Options[:i], d.Def.Options[i+1:]...)
}

// SetOptionLabel updates an option's label, auto-deriving the machine value
// only while the value is still empty. A value that was typed or derived
// once is never re-derived, so manual edits survive later label changes.
func (d *Draft) SetOptionLabel(i int, label string) {
	if i < 0 || i >= len(d.Def.Options) {
		return
	}
	d.Def.Options[i].Label = label
	if d.Def.Options[i].Value == "" {
		d.Def.Options[i].Value = field.DeriveOptionValue(label)
	}
}

// SetOptionValue sets an option's machine value directly.
func (d *Draft) SetOptionValue(i int, value string) {
	if i < 0 || i >= len(d.Def.Options) {
		return
	}
	d.Def.Options[i].Value = value
}

// Validate reports authoring errors keyed by the offending control. An
// empty map means the draft may be saved. Saving with errors is a no-op at
// the caller; nothing here is fatal.
func (d *Draft) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(d.Def.Label) == "" {
		errs["label"] = "Label is required"
	}

	tr := field.TraitsOf(d.Def.FieldType)
	if tr.Choice {
		usable := 0
		for _, opt := range d.Def.Options {
			v, l := strings.TrimSpace(opt.Value), strings.TrimSpace(opt.Label)
			if v == "" || l == "" {
				continue
			}
			if strings.Contains(v, ",") {
				errs["options"] = "Option values must not contain commas"
				continue
			}
			usable++
		}
		if usable == 0 && errs["options"] == "" {
			errs["options"] = "At least one option with a label and value is required"
		}
	}
	return errs
}

// Normalize produces the definition to persist: trimmed label, empty option
// rows filtered out, and for section headers everything except label and
// help text dropped.
func (d *Draft) Normalize() field.Definition {
	out := d.Def
	out.Label = strings.TrimSpace(out.Label)

	if out.FieldType == field.TypeSectionHeader {
		return field.Definition{
			ID:        out.ID,
			Label:     out.Label,
			FieldType: field.TypeSectionHeader,
			HelpText:  out.HelpText,
			SortOrder: out.SortOrder,
		}
	}

	tr := field.TraitsOf(out.FieldType)
	if tr.Choice {
		kept := make([]field.Option, 0, len(out.Options))
		for _, opt := range out.Options {
			v, l := strings.TrimSpace(opt.Value), strings.TrimSpace(opt.Label)
			if v == "" || l == "" {
				continue
			}
			kept = append(kept, field.Option{Value: v, Label: l})
		}
		out.Options = kept
	} else {
		out.Options = nil
	}
	return out
}

// Package render maps field definitions and their current values to
// declarative control descriptors, validates whole forms, and assembles
// submissions. Controls carry everything an interactive surface needs; the
// engine itself never owns widget behavior.
package render

import (
	"sort"

	"github.com/mattlowe/formhall/internal/field"
)

// ControlOption is one selectable choice with its current checked state.
type ControlOption struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// Control is the rendered form of one field: widget kind, constraint
// attributes, current encoded value, and a pre-computed error supplied by
// the caller. The control never decides error text itself.
type Control struct {
	FieldID     string           `json:"field_id"`
	Label       string           `json:"label"`
	Widget      field.Widget     `json:"widget"`
	InputType   string           `json:"input_type,omitempty"`
	Value       string           `json:"value,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	HelpText    string           `json:"help_text,omitempty"`
	Required    bool             `json:"required,omitempty"`
	Disabled    bool             `json:"disabled,omitempty"`
	Error       string           `json:"error,omitempty"`
	MinLength   *int             `json:"min_length,omitempty"`
	MaxLength   *int             `json:"max_length,omitempty"`
	MinValue    *float64         `json:"min_value,omitempty"`
	MaxValue    *float64         `json:"max_value,omitempty"`
	Pattern     string           `json:"pattern,omitempty"`
	StepSecs    int              `json:"step_secs,omitempty"`
	Width       field.Width      `json:"width,omitempty"`
	Options     []ControlOption  `json:"options,omitempty"`
	File        *field.FileValue `json:"file,omitempty"`
}

// Opts carries caller-owned rendering state for one field.
type Opts struct {
	Disabled bool
	Error    string
}

// Field renders one definition with its current encoded value.
func Field(def field.Definition, value string, opts Opts) Control {
	tr := field.TraitsOf(def.FieldType)

	c := Control{
		FieldID:  def.ID,
		Label:    def.Label,
		Widget:   tr.Widget,
		HelpText: def.HelpText,
		Width:    def.Width,
		Disabled: opts.Disabled,
		Error:    opts.Error,
	}
	if tr.Valueless {
		// Section headers render label and help text only.
		return c
	}

	c.InputType = tr.InputType
	c.Value = value
	c.Placeholder = def.Placeholder
	c.Required = def.Required
	c.StepSecs = tr.StepSecs

	if tr.TextLike {
		c.MinLength = def.MinLength
		c.MaxLength = def.MaxLength
		c.Pattern = def.ValidationPattern
	}
	if tr.Numeric {
		c.MinValue = def.MinValue
		c.MaxValue = def.MaxValue
	}
	if tr.Choice {
		// An empty options list renders an empty control rather than
		// failing; option presence is an edit-time concern.
		selected := make(map[string]bool)
		if tr.Multi {
			for _, v := range field.DecodeSelections(value) {
				selected[v] = true
			}
		} else if value != "" {
			selected[value] = true
		}
		for _, opt := range def.Options {
			c.Options = append(c.Options, ControlOption{
				Value:   opt.Value,
				Label:   opt.Label,
				Checked: selected[opt.Value],
			})
		}
	}
	if def.FieldType == field.TypeFile && value != "" {
		if fv, err := field.ParseFileValue(value); err == nil {
			c.File = &fv
		}
	}
	return c
}

// Form renders every field in sort_order with its value and error from the
// supplied maps.
func Form(fields []field.Definition, values, errors map[string]string) []Control {
	ordered := make([]field.Definition, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	out := make([]Control, 0, len(ordered))
	for _, def := range ordered {
		out = append(out, Field(def, values[def.ID], Opts{Error: errors[def.ID]}))
	}
	return out
}

// Preview renders a read-only review of a field list: disabled controls
// with placeholder text and no live values.
func Preview(fields []field.Definition) []Control {
	out := Form(fields, nil, nil)
	for i := range out {
		out[i].Disabled = true
		if out[i].Placeholder == "" && out[i].Widget != field.WidgetHeader {
			out[i].Placeholder = out[i].Label
		}
	}
	return out
}

package field

import (
	"strings"
	"time"
)

// Widget names the concrete input a renderer should produce for a type.
type Widget string

const (
	WidgetInput     Widget = "input"
	WidgetTextarea  Widget = "textarea"
	WidgetSelect    Widget = "select"
	WidgetToggles   Widget = "toggles" // one independent toggle per option
	WidgetRadio     Widget = "radio"
	WidgetLookup    Widget = "lookup"
	WidgetHeader    Widget = "header"
	WidgetFile      Widget = "file"
	WidgetSignature Widget = "signature"
)

// Traits describe how the renderer, validator, and viewer treat a field
// type. One entry per type; dispatch anywhere in the engine goes through
// this table instead of switching on the type inline.
type Traits struct {
	Widget    Widget
	InputType string // HTML input type for WidgetInput ("", "email", "tel", ...)
	TextLike  bool   // honors min_length/max_length/validation_pattern
	Numeric   bool   // honors min_value/max_value
	Choice    bool   // requires options at edit time
	Multi     bool   // value is a comma-joined selection
	Valueless bool   // emits no value and skips validation entirely
	StepSecs  int    // quantization for time-based inputs, 0 = none

	// Display formats a raw stored value for human-readable output.
	// Nil means the value is shown verbatim.
	Display func(raw string) string
}

var registry = map[Type]Traits{
	TypeText:     {Widget: WidgetInput, InputType: "text", TextLike: true},
	TypeTextarea: {Widget: WidgetTextarea, TextLike: true},
	TypeEmail:    {Widget: WidgetInput, InputType: "email", TextLike: true},
	TypePhone:    {Widget: WidgetInput, InputType: "tel", TextLike: true},
	TypeNumber:   {Widget: WidgetInput, InputType: "number", Numeric: true},
	TypeDate:     {Widget: WidgetInput, InputType: "date", Display: displayDate},
	TypeTime:     {Widget: WidgetInput, InputType: "time", StepSecs: 900},
	TypeDatetime: {
		Widget: WidgetInput, InputType: "datetime-local",
		StepSecs: 900, Display: displayDatetime,
	},
	TypeSelect:        {Widget: WidgetSelect, Choice: true},
	TypeMultiselect:   {Widget: WidgetToggles, Choice: true, Multi: true, Display: displayMulti},
	TypeCheckbox:      {Widget: WidgetToggles, Choice: true, Multi: true, Display: displayMulti},
	TypeRadio:         {Widget: WidgetRadio, Choice: true},
	TypeMemberLookup:  {Widget: WidgetLookup},
	TypeSectionHeader: {Widget: WidgetHeader, Valueless: true},
	TypeFile:          {Widget: WidgetFile, Display: displayFile},
	TypeSignature:     {Widget: WidgetSignature},
}

// TraitsOf returns the traits for a type. Unknown types degrade to a plain
// text input so stored data never blocks rendering.
func TraitsOf(t Type) Traits {
	if tr, ok := registry[t]; ok {
		return tr
	}
	return registry[TypeText]
}

// Known reports whether t is a member of the closed type enumeration.
func Known(t Type) bool {
	_, ok := registry[t]
	return ok
}

// Types returns all registered types. Order is unspecified.
func Types() []Type {
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	return out
}

func displayDate(raw string) string {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("Jan 2, 2006")
	}
	return raw
}

func displayDatetime(raw string) string {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006 3:04 PM")
		}
	}
	return raw
}

func displayMulti(raw string) string {
	return strings.Join(DecodeSelections(raw), ", ")
}

func displayFile(raw string) string {
	fv, err := ParseFileValue(raw)
	if err != nil {
		return raw
	}
	return fv.Name
}

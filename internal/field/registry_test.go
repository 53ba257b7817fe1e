package field

import (
	"testing"
)

func TestRegistry_CoversAllTypes(t *testing.T) {
	all := []Type{
		TypeText, TypeTextarea, TypeEmail, TypePhone, TypeNumber,
		TypeDate, TypeTime, TypeDatetime, TypeSelect, TypeMultiselect,
		TypeCheckbox, TypeRadio, TypeMemberLookup, TypeSectionHeader,
		TypeFile, TypeSignature,
	}
	if len(all) != 16 {
		t.Fatalf("expected 16 types, have %d", len(all))
	}
	for _, typ := range all {
		if !Known(typ) {
			t.Errorf("type %q missing from registry", typ)
		}
	}
	if len(Types()) != 16 {
		t.Errorf("registry has %d entries, want 16", len(Types()))
	}
}

func TestTraitsOf_UnknownFallsBackToText(t *testing.T) {
	tr := TraitsOf(Type("hologram"))
	if tr.Widget != WidgetInput || !tr.TextLike {
		t.Errorf("unknown type should degrade to text traits, got %+v", tr)
	}
}

func TestTraits_ChoiceAndMultiFlags(t *testing.T) {
	for _, typ := range []Type{TypeSelect, TypeMultiselect, TypeCheckbox, TypeRadio} {
		if !TraitsOf(typ).Choice {
			t.Errorf("%q should be a choice type", typ)
		}
	}
	for _, typ := range []Type{TypeMultiselect, TypeCheckbox} {
		if !TraitsOf(typ).Multi {
			t.Errorf("%q should be multi-valued", typ)
		}
	}
	if TraitsOf(TypeRadio).Multi {
		t.Error("radio is single-valued")
	}
	if !TraitsOf(TypeSectionHeader).Valueless {
		t.Error("section_header emits no value")
	}
}

func TestTraits_Display(t *testing.T) {
	if got := TraitsOf(TypeDate).Display("2026-03-14"); got != "Mar 14, 2026" {
		t.Errorf("date display = %q", got)
	}
	if got := TraitsOf(TypeCheckbox).Display("a,c"); got != "a, c" {
		t.Errorf("checkbox display = %q", got)
	}
	// Unparseable input is shown verbatim.
	if got := TraitsOf(TypeDate).Display("whenever"); got != "whenever" {
		t.Errorf("date fallback = %q", got)
	}
}

// Package field provides the data vocabulary of the form engine: field
// types, field and form definitions, submission records, and the encoding
// rules that flatten every collected value into a plain string.
package field

import (
	"time"

	"github.com/google/uuid"
)

// Type is one of the fixed kinds of form field. The set is closed; adding a
// kind means adding a traits entry to the registry as well.
type Type string

const (
	TypeText          Type = "text"
	TypeTextarea      Type = "textarea"
	TypeEmail         Type = "email"
	TypePhone         Type = "phone"
	TypeNumber        Type = "number"
	TypeDate          Type = "date"
	TypeTime          Type = "time"
	TypeDatetime      Type = "datetime"
	TypeSelect        Type = "select"
	TypeMultiselect   Type = "multiselect"
	TypeCheckbox      Type = "checkbox"
	TypeRadio         Type = "radio"
	TypeMemberLookup  Type = "member_lookup"
	TypeSectionHeader Type = "section_header"
	TypeFile          Type = "file"
	TypeSignature     Type = "signature"
)

// Width is a layout hint with no effect on validation.
type Width string

const (
	WidthFull  Width = "full"
	WidthHalf  Width = "half"
	WidthThird Width = "third"
)

// Option is one selectable choice of a choice-based field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Definition is the authored schema for one form field.
type Definition struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	FieldType         Type     `json:"field_type"`
	Placeholder       string   `json:"placeholder,omitempty"`
	HelpText          string   `json:"help_text,omitempty"`
	DefaultValue      string   `json:"default_value,omitempty"`
	Required          bool     `json:"required"`
	MinLength         *int     `json:"min_length,omitempty"`
	MaxLength         *int     `json:"max_length,omitempty"`
	MinValue          *float64 `json:"min_value,omitempty"`
	MaxValue          *float64 `json:"max_value,omitempty"`
	ValidationPattern string   `json:"validation_pattern,omitempty"`
	Options           []Option `json:"options,omitempty"`
	SortOrder         int      `json:"sort_order"`
	Width             Width    `json:"width,omitempty"`
}

// Form is an ordered collection of field definitions.
type Form struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Fields      []Definition `json:"fields"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Submission is one completed, immutable set of field-id → encoded-value
// pairs. Values are always strings at the storage boundary; multi-valued
// types carry a comma-joined encoding and file/signature types carry JSON.
type Submission struct {
	ID                string            `json:"id"`
	FormID            string            `json:"form_id"`
	Data              map[string]string `json:"data"`
	SubmittedAt       time.Time         `json:"submitted_at"`
	Submitter         string            `json:"submitter,omitempty"`
	IntegrationResult string            `json:"integration_result,omitempty"`
}

// NewID returns a client-generated opaque field id, used for fields that
// have not round-tripped through a store yet.
func NewID() string {
	return uuid.NewString()
}

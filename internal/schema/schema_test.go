package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefinitionAccepts(t *testing.T) {
	payload := []byte(`{
		"name": "Membership Application",
		"description": "New member intake",
		"fields": [
			{"label": "Full Name", "field_type": "text", "required": true},
			{"label": "Email", "field_type": "email"},
			{"label": "Shift", "field_type": "select", "options": [
				{"value": "am", "label": "Morning"},
				{"value": "pm", "label": "Afternoon"}
			]},
			{"label": "Notes", "field_type": "textarea", "max_length": 500, "width": "half"}
		]
	}`)
	require.NoError(t, ValidateDefinition(payload))
}

func TestValidateDefinitionRejectsUnknownFieldType(t *testing.T) {
	payload := []byte(`{
		"name": "Bad Form",
		"fields": [{"label": "Mystery", "field_type": "hologram"}]
	}`)
	err := ValidateDefinition(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field_type")
}

func TestValidateDefinitionRejectsMissingLabel(t *testing.T) {
	payload := []byte(`{
		"name": "Bad Form",
		"fields": [{"field_type": "text"}]
	}`)
	require.Error(t, ValidateDefinition(payload))
}

func TestValidateDefinitionRejectsChoiceWithoutOptions(t *testing.T) {
	payload := []byte(`{
		"name": "Bad Form",
		"fields": [{"label": "Shift", "field_type": "select"}]
	}`)
	require.Error(t, ValidateDefinition(payload))
}

func TestValidateDefinitionRejectsEmptyName(t *testing.T) {
	err := ValidateDefinition([]byte(`{"name": "", "fields": []}`))
	require.Error(t, err)
}

func TestValidateDefinitionRejectsMalformedJSON(t *testing.T) {
	err := ValidateDefinition([]byte(`{"name": "Trunc`))
	require.Error(t, err)
}

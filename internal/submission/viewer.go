// Package submission renders stored submissions back into human-readable
// form and exports loaded pages to CSV or XLSX. It never mutates
// submissions; they are immutable once created, apart from deletion at the
// store.
package submission

import (
	"sort"

	"github.com/mattlowe/formhall/internal/field"
)

// Row is one resolved data entry of a submission.
type Row struct {
	FieldID string `json:"field_id"`
	Label   string `json:"label"`
	Value   string `json:"value"`
}

// Page is one loaded slice of a form's submissions.
type Page struct {
	Submissions []field.Submission `json:"submissions"`
	Total       int                `json:"total"`
}

// Resolve maps a submission's raw field-id → value pairs to labeled,
// type-formatted rows. Ids with no matching definition fall back to the raw
// id as the label and the raw string as the value; malformed stored data
// degrades the same way and never blocks the rest of the submission.
func Resolve(sub field.Submission, fields []field.Definition) []Row {
	byID := make(map[string]field.Definition, len(fields))
	for _, def := range fields {
		byID[def.ID] = def
	}

	rows := make([]Row, 0, len(sub.Data))
	for id, raw := range sub.Data {
		def, ok := byID[id]
		if !ok {
			rows = append(rows, Row{FieldID: id, Label: id, Value: raw})
			continue
		}
		rows = append(rows, Row{FieldID: id, Label: def.Label, Value: formatValue(def, raw)})
	}

	// Definition order first, unknown ids alphabetically after.
	sort.SliceStable(rows, func(i, j int) bool {
		di, iKnown := byID[rows[i].FieldID]
		dj, jKnown := byID[rows[j].FieldID]
		switch {
		case iKnown && jKnown:
			return di.SortOrder < dj.SortOrder
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return rows[i].FieldID < rows[j].FieldID
		}
	})
	return rows
}

func formatValue(def field.Definition, raw string) string {
	if display := field.TraitsOf(def.FieldType).Display; display != nil {
		return display(raw)
	}
	return raw
}

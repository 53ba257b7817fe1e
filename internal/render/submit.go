package render

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mattlowe/formhall/internal/field"
)

// tagPattern matches any markup tag. Stored free-text values are stripped
// of markup before submission as a defense against stored script injection.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Sanitize strips markup tags from every value in the map, returning a new
// map. Valueless fields never contribute entries, so every key is passed
// through unconditionally.
func Sanitize(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = tagPattern.ReplaceAllString(v, "")
	}
	return out
}

// Sink persists completed submissions. The sqlite store implements it; a
// caller-supplied handler can stand in for it in standalone use.
type Sink interface {
	SaveSubmission(ctx context.Context, sub field.Submission) (field.Submission, error)
}

// ValidationError carries the per-field error map of a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form validation failed for %d field(s)", len(e.Fields))
}

// Submit validates, sanitizes, and persists one value set against a form's
// field list. Valueless fields are excluded from the stored data map even
// if the caller supplied entries for them. A *ValidationError return means
// the caller should re-render with the embedded error map; any other error
// is a store failure and the submission was not persisted.
func Submit(ctx context.Context, sink Sink, formID, submitter string, fields []field.Definition, values map[string]string) (field.Submission, error) {
	if errs := Validate(fields, values); len(errs) > 0 {
		return field.Submission{}, &ValidationError{Fields: errs}
	}

	clean := Sanitize(values)
	data := make(map[string]string, len(clean))
	for _, def := range fields {
		if field.TraitsOf(def.FieldType).Valueless {
			continue
		}
		if v, ok := clean[def.ID]; ok && strings.TrimSpace(v) != "" {
			data[def.ID] = v
		}
	}

	sub := field.Submission{
		FormID:      formID,
		Data:        data,
		Submitter:   submitter,
		SubmittedAt: time.Now().UTC(),
	}
	saved, err := sink.SaveSubmission(ctx, sub)
	if err != nil {
		return field.Submission{}, fmt.Errorf("saving submission: %w", err)
	}
	return saved, nil
}

// InitialValues builds the starting value map for a fresh render, seeding
// each field with its default value. Used both on first render and when a
// resubmit-enabled form resets.
func InitialValues(fields []field.Definition) map[string]string {
	values := make(map[string]string)
	for _, def := range fields {
		if field.TraitsOf(def.FieldType).Valueless {
			continue
		}
		if def.DefaultValue != "" {
			values[def.ID] = def.DefaultValue
		}
	}
	return values
}

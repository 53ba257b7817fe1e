package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattlowe/formhall/internal/field"
)

// emailPattern is the standard local@domain.tld shape check.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate runs whole-form validation and returns every violation keyed by
// field id — it never stops at the first error. An empty map means the
// value set may be submitted.
func Validate(fields []field.Definition, values map[string]string) map[string]string {
	errs := make(map[string]string)
	for _, def := range fields {
		tr := field.TraitsOf(def.FieldType)
		if tr.Valueless {
			continue
		}
		value := strings.TrimSpace(values[def.ID])

		if def.Required && value == "" {
			errs[def.ID] = def.Label + " is required"
			continue
		}
		if value == "" {
			continue
		}

		switch {
		case tr.TextLike:
			if msg := validateTextLike(def, value); msg != "" {
				errs[def.ID] = msg
			}
		case tr.Numeric:
			if msg := validateNumber(def, value); msg != "" {
				errs[def.ID] = msg
			}
		}
		if def.FieldType == field.TypeEmail && !emailPattern.MatchString(value) {
			errs[def.ID] = def.Label + " must be a valid email address"
		}
	}
	return errs
}

func validateTextLike(def field.Definition, value string) string {
	n := len([]rune(value))
	if def.MinLength != nil && n < *def.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", def.Label, *def.MinLength)
	}
	if def.MaxLength != nil && n > *def.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", def.Label, *def.MaxLength)
	}
	if def.ValidationPattern != "" {
		// A pattern that fails to compile is treated as no constraint, so
		// an authoring mistake never blocks submission.
		re, err := regexp.Compile(def.ValidationPattern)
		if err == nil && !re.MatchString(value) {
			return fmt.Sprintf("%s has an invalid format", def.Label)
		}
	}
	return ""
}

func validateNumber(def field.Definition, value string) string {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def.Label + " must be a number"
	}
	if def.MinValue != nil && n < *def.MinValue {
		return fmt.Sprintf("%s must be at least %g", def.Label, *def.MinValue)
	}
	if def.MaxValue != nil && n > *def.MaxValue {
		return fmt.Sprintf("%s must be at most %g", def.Label, *def.MaxValue)
	}
	return ""
}

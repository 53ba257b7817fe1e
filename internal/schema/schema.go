// Package schema validates imported form definitions against a CUE schema,
// so bulk-authored definitions meet the same constraints the field editor
// enforces interactively.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed form.cue
var formSchema string

var (
	compileOnce sync.Once
	formDef     cue.Value
	compileErr  error
)

func compiled() (cue.Value, error) {
	compileOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(formSchema, cue.Filename("form.cue"))
		if err := v.Err(); err != nil {
			compileErr = fmt.Errorf("compiling form schema: %w", err)
			return
		}
		formDef = v.LookupPath(cue.ParsePath("#FormDefinition"))
		if err := formDef.Err(); err != nil {
			compileErr = fmt.Errorf("resolving #FormDefinition: %w", err)
		}
	})
	return formDef, compileErr
}

// ValidateDefinition checks a JSON-encoded form definition against the
// schema. A nil return means the payload may be imported.
func ValidateDefinition(data []byte) error {
	def, err := compiled()
	if err != nil {
		return err
	}

	ctx := def.Context()
	v := ctx.CompileBytes(data, cue.Filename("import.json"))
	if err := v.Err(); err != nil {
		return fmt.Errorf("parsing form definition: %s", cueerrors.Details(err, nil))
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid form definition: %s", cueerrors.Details(err, nil))
	}
	return nil
}

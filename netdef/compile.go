package netdef

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Compile parses a CUE value into a Definition. Uses the CUE SDK's Go
// API directly (not a CLI subprocess).
//
// The CUE value should be the network struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`network: { name: "toy", ... }`)
//	def, err := netdef.Compile(v.LookupPath(cue.ParsePath("network")))
func Compile(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{Field: "name", Message: "name is required", Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	def.Name = name

	def.Seeds, err = parseStrings(v, "seeds")
	if err != nil {
		return nil, err
	}
	if len(def.Seeds) == 0 {
		return nil, &CompileError{Field: "seeds", Message: "at least one seed molecule is required", Pos: v.Pos()}
	}

	def.Helpers, err = parseStrings(v, "helpers")
	if err != nil {
		return nil, err
	}
	seedSet := make(map[string]struct{}, len(def.Seeds))
	for _, s := range def.Seeds {
		seedSet[s] = struct{}{}
	}
	for _, h := range def.Helpers {
		if _, ok := seedSet[h]; !ok {
			return nil, &CompileError{
				Field:   "helpers",
				Message: fmt.Sprintf("helper %q is not a seed molecule", h),
				Pos:     v.Pos(),
			}
		}
	}

	def.Operators, err = parseOperators(v)
	if err != nil {
		return nil, err
	}
	if len(def.Operators) == 0 {
		return nil, &CompileError{Field: "operators", Message: "at least one operator is required", Pos: v.Pos()}
	}

	def.Limits, err = parseLimits(v)
	if err != nil {
		return nil, err
	}

	return def, nil
}

// CompileSource compiles CUE source text and extracts the definition
// under the top-level "network" field.
func CompileSource(src string) (*Definition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	netVal := v.LookupPath(cue.ParsePath("network"))
	if !netVal.Exists() {
		return nil, &CompileError{Field: "network", Message: "top-level network struct is required", Pos: v.Pos()}
	}
	return Compile(netVal)
}

// parseStrings reads an optional list of strings at path.
func parseStrings(v cue.Value, path string) ([]string, error) {
	listVal := v.LookupPath(cue.ParsePath(path))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// parseOperators extracts operator definitions.
func parseOperators(v cue.Value) ([]OperatorDef, error) {
	var ops []OperatorDef

	opsVal := v.LookupPath(cue.ParsePath("operators"))
	if !opsVal.Exists() {
		return ops, nil
	}
	iter, err := opsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		opVal := iter.Value()
		var op OperatorDef

		nameVal := opVal.LookupPath(cue.ParsePath("name"))
		if !nameVal.Exists() {
			return nil, &CompileError{Field: "operators.name", Message: "operator name is required", Pos: opVal.Pos()}
		}
		if op.Name, err = nameVal.String(); err != nil {
			return nil, formatCUEError(err)
		}

		if op.Patterns, err = parseStrings(opVal, "patterns"); err != nil {
			return nil, err
		}
		if len(op.Patterns) == 0 {
			return nil, &CompileError{
				Field:   fmt.Sprintf("operators.%s.patterns", op.Name),
				Message: "at least one reactant pattern is required",
				Pos:     opVal.Pos(),
			}
		}

		if op.Templates, err = parseStrings(opVal, "templates"); err != nil {
			return nil, err
		}
		if len(op.Templates) == 0 {
			return nil, &CompileError{
				Field:   fmt.Sprintf("operators.%s.templates", op.Name),
				Message: "at least one product template is required",
				Pos:     opVal.Pos(),
			}
		}

		orderedVal := opVal.LookupPath(cue.ParsePath("ordered"))
		if orderedVal.Exists() {
			if op.Ordered, err = orderedVal.Bool(); err != nil {
				return nil, formatCUEError(err)
			}
		}

		ops = append(ops, op)
	}
	return ops, nil
}

// parseLimits extracts the optional limits struct.
func parseLimits(v cue.Value) (Limits, error) {
	var limits Limits

	limVal := v.LookupPath(cue.ParsePath("limits"))
	if !limVal.Exists() {
		return limits, nil
	}

	readInt := func(path string, dst *int64) error {
		val := limVal.LookupPath(cue.ParsePath(path))
		if !val.Exists() {
			return nil
		}
		n, err := val.Int64()
		if err != nil {
			return formatCUEError(err)
		}
		if n < 0 {
			return &CompileError{
				Field:   "limits." + path,
				Message: "must not be negative",
				Pos:     val.Pos(),
			}
		}
		*dst = n
		return nil
	}

	var numIter, beam, heapSz, workers int64
	if err := readInt("num_iter", &numIter); err != nil {
		return limits, err
	}
	if err := readInt("max_recipes", &limits.MaxRecipes); err != nil {
		return limits, err
	}
	if err := readInt("beam_size", &beam); err != nil {
		return limits, err
	}
	if err := readInt("heap_size", &heapSz); err != nil {
		return limits, err
	}
	if err := readInt("workers", &workers); err != nil {
		return limits, err
	}
	limits.NumIter = int(numIter)
	limits.BeamSize = int(beam)
	limits.HeapSize = int(heapSz)
	limits.Workers = int(workers)

	singleVal := limVal.LookupPath(cue.ParsePath("single_reactant"))
	if singleVal.Exists() {
		single, err := singleVal.Bool()
		if err != nil {
			return limits, formatCUEError(err)
		}
		limits.SingleReactant = single
	}

	return limits, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

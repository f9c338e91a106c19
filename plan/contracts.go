package plan

import (
	"fmt"

	"github.com/roach88/retort/entity"
	"github.com/roach88/retort/network"
)

// Target addresses the destination of a metadata write. Calculators can
// write to committed molecules and operators, to a candidate's products
// by ordinal position, and to the candidate reaction itself. Product and
// reaction writes are staged until the candidate commits.
type Target struct {
	kind    targetKind
	mol     entity.MolRef
	op      entity.OpRef
	product int
}

type targetKind uint8

const (
	targetMolecule targetKind = iota + 1
	targetOperator
	targetProduct
	targetReaction
)

// MoleculeTarget addresses a committed molecule.
func MoleculeTarget(ref entity.MolRef) Target {
	return Target{kind: targetMolecule, mol: ref}
}

// OperatorTarget addresses a committed operator.
func OperatorTarget(ref entity.OpRef) Target {
	return Target{kind: targetOperator, op: ref}
}

// ProductTarget addresses the i-th product of the candidate under
// analysis, before that product has a committed ref.
func ProductTarget(i int) Target {
	return Target{kind: targetProduct, product: i}
}

// ReactionTarget addresses the candidate reaction record itself.
func ReactionTarget() Target {
	return Target{kind: targetReaction}
}

// String renders the target for error messages and logs.
func (t Target) String() string {
	switch t.kind {
	case targetMolecule:
		return fmt.Sprintf("molecule/%d", t.mol)
	case targetOperator:
		return fmt.Sprintf("operator/%d", t.op)
	case targetProduct:
		return fmt.Sprintf("product/%d", t.product)
	case targetReaction:
		return "reaction"
	default:
		return "invalid target"
	}
}

// Write is one metadata assignment produced by a calculator. The value is
// applied through the key's resolver, never assigned blindly.
type Write struct {
	Target Target
	Key    string
	Value  any
}

// Requirement declares the metadata a calculator reads. MoleculeKeys are
// checked on every reactant of the candidate before the calculator runs;
// ReactionKeys are checked on the staged reaction record. A missing key
// faults the candidate unless the calculator is Tolerant, in which case
// the calculator runs anyway and handles the absence itself.
type Requirement struct {
	MoleculeKeys []string
	ReactionKeys []string
	Tolerant     bool
}

// Calculator derives metadata for a candidate reaction. Compute observes
// the pre-step snapshot through the Context and returns writes; it must
// not mutate the network directly.
type Calculator interface {
	// MetaKey is the key this calculator is authoritative for. When the
	// calculator is first-listed for its key in a step, its Resolver
	// becomes the key's conflict resolver.
	MetaKey() string

	// Resolver returns the conflict resolver for the calculator's key, or
	// nil to keep the overwrite default.
	Resolver() network.Resolver

	// Requires declares the metadata the calculator reads.
	Requires() Requirement

	// Compute derives writes from the pre-step state.
	Compute(rc *Context) ([]Write, error)
}

// Predicate decides whether a candidate survives a filter step.
type Predicate interface {
	// Name identifies the predicate in rejection accounting.
	Name() string

	// Keep reports whether the candidate passes. An error faults the
	// candidate rather than rejecting it.
	Keep(rc *Context) (bool, error)
}

// PredicateFunc adapts a plain function into a Predicate.
func PredicateFunc(name string, fn func(rc *Context) (bool, error)) Predicate {
	return predicateFunc{name: name, fn: fn}
}

type predicateFunc struct {
	name string
	fn   func(rc *Context) (bool, error)
}

func (p predicateFunc) Name() string { return p.name }

func (p predicateFunc) Keep(rc *Context) (bool, error) { return p.fn(rc) }

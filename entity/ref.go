package entity

import "fmt"

// MolRef is a dense index into the molecule store.
// Refs are append-only: once assigned they are never reused or reassigned.
type MolRef int

// OpRef is a dense index into the operator store.
type OpRef int

// RxnRef is a dense index into the reaction store.
type RxnRef int

// Kind distinguishes the three entity stores.
type Kind uint8

const (
	// KindMolecule identifies the molecule store.
	KindMolecule Kind = iota + 1
	// KindOperator identifies the operator store.
	KindOperator
	// KindReaction identifies the reaction store.
	KindReaction
)

// String returns the lowercase store name.
func (k Kind) String() string {
	switch k {
	case KindMolecule:
		return "molecule"
	case KindOperator:
		return "operator"
	case KindReaction:
		return "reaction"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Ref identifies an entity of any kind. Used where a single handle must
// address molecules, operators, and reactions uniformly (metadata writes,
// diagnostics).
type Ref struct {
	Kind  Kind
	Index int
}

// MoleculeRef wraps a MolRef into a kinded Ref.
func MoleculeRef(m MolRef) Ref { return Ref{Kind: KindMolecule, Index: int(m)} }

// OperatorRef wraps an OpRef into a kinded Ref.
func OperatorRef(o OpRef) Ref { return Ref{Kind: KindOperator, Index: int(o)} }

// ReactionRef wraps an RxnRef into a kinded Ref.
func ReactionRef(r RxnRef) Ref { return Ref{Kind: KindReaction, Index: int(r)} }

// String renders the ref as "kind/index".
func (r Ref) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.Index)
}

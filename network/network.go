package network

import (
	"fmt"

	"github.com/roach88/retort/entity"
)

// Network is the shared object store for one expansion: the three entity
// arenas plus their metadata tables. Strategies own the network for the
// duration of an expansion call and hand it to collaborators explicitly;
// there is no ambient global.
type Network struct {
	mols *arena[entity.Molecule]
	ops  *arena[entity.Operator]
	rxns *arena[entity.Reaction]

	// MolMeta, OpMeta and RxnMeta are the per-store metadata tables.
	MolMeta *MetaTable
	OpMeta  *MetaTable
	RxnMeta *MetaTable
}

// New creates an empty network.
func New() *Network {
	return &Network{
		mols:    newArena[entity.Molecule](entity.KindMolecule),
		ops:     newArena[entity.Operator](entity.KindOperator),
		rxns:    newArena[entity.Reaction](entity.KindReaction),
		MolMeta: NewMetaTable(entity.KindMolecule),
		OpMeta:  NewMetaTable(entity.KindOperator),
		RxnMeta: NewMetaTable(entity.KindReaction),
	}
}

// AddMolecule inserts a molecule, returning its ref and whether a new
// insertion occurred. Idempotent under structural equality.
func (n *Network) AddMolecule(m entity.Molecule) (entity.MolRef, bool, error) {
	i, inserted, err := n.mols.add(m)
	return entity.MolRef(i), inserted, err
}

// AddOperator inserts an operator, returning its ref and whether a new
// insertion occurred.
func (n *Network) AddOperator(op entity.Operator) (entity.OpRef, bool, error) {
	i, inserted, err := n.ops.add(op)
	return entity.OpRef(i), inserted, err
}

// AddReaction commits a reaction record. All reactant and product refs
// must already exist in the molecule store; forward references are
// rejected.
func (n *Network) AddReaction(r entity.Reaction) (entity.RxnRef, bool, error) {
	if _, err := n.ops.get(int(r.Operator)); err != nil {
		return 0, false, fmt.Errorf("reaction operator: %w", err)
	}
	for _, ref := range r.Reactants {
		if _, err := n.mols.get(int(ref)); err != nil {
			return 0, false, fmt.Errorf("reaction reactant: %w", err)
		}
	}
	for _, ref := range r.Products {
		if _, err := n.mols.get(int(ref)); err != nil {
			return 0, false, fmt.Errorf("reaction product: %w", err)
		}
	}
	i, inserted, err := n.rxns.add(r)
	return entity.RxnRef(i), inserted, err
}

// Molecule returns the molecule at ref.
func (n *Network) Molecule(ref entity.MolRef) (entity.Molecule, error) {
	return n.mols.get(int(ref))
}

// Operator returns the operator at ref.
func (n *Network) Operator(ref entity.OpRef) (entity.Operator, error) {
	return n.ops.get(int(ref))
}

// Reaction returns the reaction at ref.
func (n *Network) Reaction(ref entity.RxnRef) (entity.Reaction, error) {
	return n.rxns.get(int(ref))
}

// LookupMolecule returns the ref for a canonical molecule key.
func (n *Network) LookupMolecule(key string) (entity.MolRef, bool) {
	i, ok := n.mols.lookup(key)
	return entity.MolRef(i), ok
}

// MoleculeCount returns the number of committed molecules.
func (n *Network) MoleculeCount() int { return n.mols.size() }

// OperatorCount returns the number of committed operators.
func (n *Network) OperatorCount() int { return n.ops.size() }

// ReactionCount returns the number of committed reactions.
func (n *Network) ReactionCount() int { return n.rxns.size() }

// EachMolecule iterates molecules in insertion order.
func (n *Network) EachMolecule(fn func(entity.MolRef, entity.Molecule) bool) {
	n.mols.each(func(i int, m entity.Molecule) bool { return fn(entity.MolRef(i), m) })
}

// EachOperator iterates operators in insertion order.
func (n *Network) EachOperator(fn func(entity.OpRef, entity.Operator) bool) {
	n.ops.each(func(i int, op entity.Operator) bool { return fn(entity.OpRef(i), op) })
}

// EachReaction iterates reactions in insertion order.
func (n *Network) EachReaction(fn func(entity.RxnRef, entity.Reaction) bool) {
	n.rxns.each(func(i int, r entity.Reaction) bool { return fn(entity.RxnRef(i), r) })
}

// Meta returns the metadata table for the given store kind.
func (n *Network) Meta(kind entity.Kind) *MetaTable {
	switch kind {
	case entity.KindMolecule:
		return n.MolMeta
	case entity.KindOperator:
		return n.OpMeta
	case entity.KindReaction:
		return n.RxnMeta
	default:
		panic(fmt.Sprintf("no metadata table for %s", kind))
	}
}

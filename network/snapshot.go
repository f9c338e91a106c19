package network

import (
	"github.com/roach88/retort/entity"
)

// Snapshot is a deterministic, canonically ordered export of the network:
// canonical keys in insertion order, reaction tuples by ref, and the full
// metadata set sorted by (kind, ref, key). Used for golden-file comparison
// and diagnostics; persistence walks the arenas directly.
type Snapshot struct {
	Molecules []string       `json:"molecules"`
	Operators []string       `json:"operators"`
	Reactions []ReactionLine `json:"reactions"`
	Metadata  []MetaLine     `json:"metadata"`
}

// ReactionLine is one committed reaction as ref tuples.
type ReactionLine struct {
	Operator  int   `json:"operator"`
	Reactants []int `json:"reactants"`
	Products  []int `json:"products"`
}

// MetaLine is one metadata triple.
type MetaLine struct {
	Kind  string `json:"kind"`
	Ref   int    `json:"ref"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Snapshot exports the current committed state. Must not run concurrently
// with an expansion round if a fully consistent view is required; strategy
// round boundaries provide that barrier.
func (n *Network) Snapshot() Snapshot {
	snap := Snapshot{
		Molecules: make([]string, 0, n.MoleculeCount()),
		Operators: make([]string, 0, n.OperatorCount()),
		Reactions: make([]ReactionLine, 0, n.ReactionCount()),
	}

	n.EachMolecule(func(_ entity.MolRef, m entity.Molecule) bool {
		snap.Molecules = append(snap.Molecules, m.Key())
		return true
	})
	n.EachOperator(func(_ entity.OpRef, op entity.Operator) bool {
		snap.Operators = append(snap.Operators, op.Key())
		return true
	})
	n.EachReaction(func(_ entity.RxnRef, r entity.Reaction) bool {
		line := ReactionLine{
			Operator:  int(r.Operator),
			Reactants: refInts(r.Reactants),
			Products:  refInts(r.Products),
		}
		snap.Reactions = append(snap.Reactions, line)
		return true
	})

	for _, kind := range []entity.Kind{entity.KindMolecule, entity.KindOperator, entity.KindReaction} {
		n.Meta(kind).Each(func(ref int, key string, value any) bool {
			snap.Metadata = append(snap.Metadata, MetaLine{
				Kind:  kind.String(),
				Ref:   ref,
				Key:   key,
				Value: value,
			})
			return true
		})
	}

	return snap
}

func refInts(refs []entity.MolRef) []int {
	out := make([]int, len(refs))
	for i, r := range refs {
		out[i] = int(r)
	}
	return out
}

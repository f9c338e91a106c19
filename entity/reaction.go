package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reaction is the immutable record of a committed transformation. Identity
// is the (operator, reactants, products) tuple; reactions deduplicate
// exactly like molecules and operators. Reactant and product refs must
// already exist in the molecule store at commit time.
type Reaction struct {
	Operator  OpRef    `json:"operator"`
	Reactants []MolRef `json:"reactants"`
	Products  []MolRef `json:"products"`
}

// Key returns the content-addressed identity of the reaction, a
// domain-separated hash of the ref tuple.
func (r Reaction) Key() string {
	return HashWithDomain(DomainReaction, []byte(r.signature()))
}

// Blob returns the JSON encoding of the ref tuple.
func (r Reaction) Blob() []byte {
	b, err := json.Marshal(r)
	if err != nil {
		// Reaction contains only ints and slices of ints; Marshal cannot fail.
		panic(fmt.Sprintf("marshal reaction: %v", err))
	}
	return b
}

// String renders the reaction as "op -> reactants => products" for logs.
func (r Reaction) String() string {
	return fmt.Sprintf("op/%d %s => %s", r.Operator, joinRefs(r.Reactants), joinRefs(r.Products))
}

// signature is the pre-hash canonical form: decimal refs with fixed
// separators so distinct tuples can never collide textually.
func (r Reaction) signature() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|", r.Operator)
	sb.WriteString(joinRefs(r.Reactants))
	sb.WriteByte('|')
	sb.WriteString(joinRefs(r.Products))
	return sb.String()
}

func joinRefs(refs []MolRef) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = fmt.Sprintf("%d", ref)
	}
	return strings.Join(parts, ",")
}

// DecodeReaction reconstructs a reaction from its blob.
func DecodeReaction(blob []byte) (Reaction, error) {
	var r Reaction
	if err := json.Unmarshal(blob, &r); err != nil {
		return Reaction{}, fmt.Errorf("decode reaction: %w", err)
	}
	return r, nil
}

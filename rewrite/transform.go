package rewrite

import (
	"fmt"
	"strings"

	"github.com/roach88/retort/entity"
)

// Transform applies Rules to molecule tuples. Stateless; safe for
// concurrent use.
type Transform struct{}

// Apply evaluates a rule against a reactant tuple. Returns ok=false when
// the rule does not match (not applicable); an error only for misuse
// (wrong operator type, arity mismatch at the call site).
func (Transform) Apply(op entity.Operator, reactants []entity.Molecule) ([][]entity.Molecule, bool, error) {
	rule, ok := op.(Rule)
	if !ok {
		return nil, false, fmt.Errorf("rewrite transform: unsupported operator type %T", op)
	}
	if !rule.Arity().Accepts(len(reactants)) {
		return nil, false, fmt.Errorf("rewrite transform: rule %q wants %d reactants, got %d",
			rule.Name(), rule.Arity().Min, len(reactants))
	}

	texts := make([]string, len(reactants))
	for i, m := range reactants {
		texts[i] = m.Key()
	}

	assigned, matched := assignRoles(rule, texts)
	if !matched {
		return nil, false, nil
	}

	products := make([]entity.Molecule, len(rule.templates))
	for i, tpl := range rule.templates {
		products[i] = NewMol(substitute(tpl, assigned))
	}
	return [][]entity.Molecule{products}, true, nil
}

// assignRoles maps reactant texts onto rule roles. Ordered rules match
// positionally; unordered rules search permutations for a consistent
// assignment, taking the first in lexicographic permutation order so the
// result is deterministic.
func assignRoles(rule Rule, texts []string) ([]string, bool) {
	n := len(texts)
	if rule.ordered {
		for i, text := range texts {
			if !rule.matchRole(i, text) {
				return nil, false
			}
		}
		return texts, true
	}

	assigned := make([]string, n)
	used := make([]bool, n)
	var fill func(role int) bool
	fill = func(role int) bool {
		if role == n {
			return true
		}
		for i := 0; i < n; i++ {
			if used[i] || !rule.matchRole(role, texts[i]) {
				continue
			}
			used[i] = true
			assigned[role] = texts[i]
			if fill(role + 1) {
				return true
			}
			used[i] = false
		}
		return false
	}
	if !fill(0) {
		return nil, false
	}
	return assigned, true
}

// substitute replaces $1..$n references in a template with assigned
// reactant texts. Highest indices are substituted first so $12 is never
// clobbered by $1.
func substitute(tpl string, assigned []string) string {
	out := tpl
	for i := len(assigned); i >= 1; i-- {
		out = strings.ReplaceAll(out, fmt.Sprintf("$%d", i), assigned[i-1])
	}
	return out
}

// Decoder reconstructs rewrite values from persisted blobs.
type Decoder struct{}

// Molecule decodes a molecule blob.
func (Decoder) Molecule(blob []byte) (entity.Molecule, error) {
	return NewMol(string(blob)), nil
}

// Operator decodes a rule blob.
func (Decoder) Operator(blob []byte) (entity.Operator, error) {
	return DecodeRule(blob)
}

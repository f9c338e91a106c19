package enumerate

import (
	"fmt"
	"strings"

	"github.com/roach88/retort/entity"
)

// Recipe pairs an operator with a reactant tuple that has not yet been
// attempted. Recipes are value objects; identity is the (operator, tuple)
// pair in order.
type Recipe struct {
	Operator  entity.OpRef
	Reactants []entity.MolRef
}

// Key returns the stable identity used by the tried set and frontier
// dedup: "op|r1,r2,...".
func (r Recipe) Key() string {
	parts := make([]string, len(r.Reactants))
	for i, ref := range r.Reactants {
		parts[i] = fmt.Sprintf("%d", ref)
	}
	return fmt.Sprintf("%d|%s", r.Operator, strings.Join(parts, ","))
}

// String renders the recipe for logs and fault reports.
func (r Recipe) String() string { return r.Key() }

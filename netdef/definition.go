package netdef

import (
	"fmt"

	"github.com/roach88/retort/entity"
	"github.com/roach88/retort/network"
	"github.com/roach88/retort/plan"
	"github.com/roach88/retort/rewrite"
	"github.com/roach88/retort/strategy"
)

// Definition is a compiled network definition.
type Definition struct {
	Name      string
	Seeds     []string
	Helpers   []string
	Operators []OperatorDef
	Limits    Limits
}

// OperatorDef declares one rewrite rule.
type OperatorDef struct {
	Name      string
	Patterns  []string
	Templates []string
	Ordered   bool
}

// Limits carries the strategy-level knobs. Zero values mean uncapped or
// default throughout, matching the strategy options.
type Limits struct {
	NumIter    int
	MaxRecipes int64
	BeamSize   int
	HeapSize   int
	Workers    int

	// SingleReactant restricts recipes to at most one non-helper
	// molecule.
	SingleReactant bool
}

// Seed commits the definition's molecules and operators into net. Seed
// molecules are assigned generation zero so generation calculators can
// run from the first round.
func (d *Definition) Seed(net *network.Network) error {
	for _, text := range d.Seeds {
		ref, _, err := net.AddMolecule(rewrite.NewMol(text))
		if err != nil {
			return fmt.Errorf("seed %q: %w", text, err)
		}
		if err := net.MolMeta.Set(int(ref), plan.DefaultGenerationKey, 0); err != nil {
			return fmt.Errorf("seed %q generation: %w", text, err)
		}
	}
	for _, op := range d.Operators {
		rule := rewrite.NewRule(op.Name, op.Patterns, op.Templates, op.Ordered)
		if _, _, err := net.AddOperator(rule); err != nil {
			return fmt.Errorf("operator %q: %w", op.Name, err)
		}
	}
	return nil
}

// HelperRefs resolves the helper set against a seeded network.
func (d *Definition) HelperRefs(net *network.Network) ([]entity.MolRef, error) {
	refs := make([]entity.MolRef, 0, len(d.Helpers))
	for _, text := range d.Helpers {
		ref, ok := net.LookupMolecule(rewrite.NewMol(text).Key())
		if !ok {
			return nil, fmt.Errorf("helper %q is not a committed molecule", text)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Options translates the limits into strategy options against a seeded
// network.
func (d *Definition) Options(net *network.Network) ([]strategy.Option, error) {
	var opts []strategy.Option
	if d.Limits.MaxRecipes > 0 {
		opts = append(opts, strategy.WithMaxRecipes(d.Limits.MaxRecipes))
	}
	if d.Limits.BeamSize > 0 {
		opts = append(opts, strategy.WithBeamSize(d.Limits.BeamSize))
	}
	if d.Limits.HeapSize > 0 {
		opts = append(opts, strategy.WithHeapSize(d.Limits.HeapSize))
	}
	if d.Limits.Workers > 0 {
		opts = append(opts, strategy.WithWorkers(d.Limits.Workers))
	}
	if d.Limits.SingleReactant {
		helpers, err := d.HelperRefs(net)
		if err != nil {
			return nil, err
		}
		opts = append(opts, strategy.WithoutMultipleReactants(helpers...))
	}
	return opts, nil
}

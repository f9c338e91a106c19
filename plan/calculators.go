package plan

import (
	"fmt"

	"github.com/roach88/retort/network"
)

// MinInt resolves two integer values to the smaller one. Non-integer
// operands panic, which surfaces as a fatal ResolverError: generation
// numbers are engine-managed and must stay integral.
func MinInt(existing, incoming any) any {
	a, ok := asInt(existing)
	if !ok {
		panic(fmt.Sprintf("min resolver: existing value %v (%T) is not an integer", existing, existing))
	}
	b, ok := asInt(incoming)
	if !ok {
		panic(fmt.Sprintf("min resolver: incoming value %v (%T) is not an integer", incoming, incoming))
	}
	if b < a {
		return b
	}
	return a
}

// asInt coerces the integer shapes metadata values take in practice:
// native ints from calculators and float64 from JSON round-trips through
// persistence.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// GenerationCalculator assigns each product a generation number: one more
// than the highest generation among the reactants. Seed molecules carry
// generation zero, set by the strategy before the first round. The min
// resolver keeps the earliest generation when a molecule is rediscovered
// by a later reaction.
type GenerationCalculator struct {
	// Key is the metadata key for generation numbers. Empty means
	// DefaultGenerationKey.
	Key string
}

// DefaultGenerationKey is the metadata key generation numbers live under
// when a GenerationCalculator is not configured otherwise.
const DefaultGenerationKey = "generation"

// MetaKey returns the configured generation key.
func (g GenerationCalculator) MetaKey() string {
	if g.Key == "" {
		return DefaultGenerationKey
	}
	return g.Key
}

// Resolver returns the min resolver.
func (g GenerationCalculator) Resolver() network.Resolver { return MinInt }

// Requires declares that every reactant must already carry a generation.
func (g GenerationCalculator) Requires() Requirement {
	return Requirement{MoleculeKeys: []string{g.MetaKey()}}
}

// Compute derives the product generation from the reactant generations.
func (g GenerationCalculator) Compute(rc *Context) ([]Write, error) {
	key := g.MetaKey()
	highest := 0
	for _, ref := range rc.Candidate().Reactants {
		v, ok := rc.Molecule(ref, key)
		if !ok {
			// Requires() makes this unreachable; kept as a guard against
			// tolerant subclassing mistakes.
			return nil, &MissingMetadataError{Calculator: key, Target: MoleculeTarget(ref).String(), MetaKey: key}
		}
		gen, ok := asInt(v)
		if !ok {
			return nil, fmt.Errorf("generation on %s is %v (%T), want integer", MoleculeTarget(ref), v, v)
		}
		if gen > highest {
			highest = gen
		}
	}

	writes := make([]Write, 0, len(rc.Candidate().Products)+1)
	for i := range rc.Candidate().Products {
		writes = append(writes, Write{Target: ProductTarget(i), Key: key, Value: highest + 1})
	}
	writes = append(writes, Write{Target: ReactionTarget(), Key: key, Value: highest + 1})
	return writes, nil
}

// MaxGeneration builds a predicate that rejects candidates whose products
// would exceed the given generation. It reads the staged generation
// written by a GenerationCalculator in an earlier step.
func MaxGeneration(key string, max int) Predicate {
	if key == "" {
		key = DefaultGenerationKey
	}
	return PredicateFunc("max-generation", func(rc *Context) (bool, error) {
		v, ok := rc.Reaction(key)
		if !ok {
			return false, &MissingMetadataError{Calculator: "max-generation", Target: ReactionTarget().String(), MetaKey: key}
		}
		gen, ok := asInt(v)
		if !ok {
			return false, fmt.Errorf("generation on reaction is %v (%T), want integer", v, v)
		}
		return gen <= max, nil
	})
}

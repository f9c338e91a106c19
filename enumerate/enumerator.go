package enumerate

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/roach88/retort/entity"
	"github.com/roach88/retort/network"
)

// Enumerator generates untried recipes over a network and runs the
// transformation collaborator against them, tracking attempts for cap
// enforcement. Safe for concurrent Apply from evaluation workers;
// Untried is called between rounds, single-threaded.
type Enumerator struct {
	net *network.Network

	triedMu sync.Mutex
	tried   map[string]struct{}

	attempts atomic.Int64
	cap      int64 // 0 = uncapped

	allowMultiple bool
	helpers       map[entity.MolRef]struct{}
}

// Option configures an Enumerator.
type Option func(*Enumerator)

// WithAttemptCap bounds the total number of transformation attempts across
// the enumerator's lifetime. 0 means uncapped.
func WithAttemptCap(n int64) Option {
	return func(e *Enumerator) { e.cap = n }
}

// WithoutMultipleReactants restricts generated combinations to at most one
// molecule drawn from outside the helper set.
func WithoutMultipleReactants(helpers ...entity.MolRef) Option {
	return func(e *Enumerator) {
		e.allowMultiple = false
		e.helpers = make(map[entity.MolRef]struct{}, len(helpers))
		for _, h := range helpers {
			e.helpers[h] = struct{}{}
		}
	}
}

// WithTried preloads the already-attempted set, e.g. when resuming from a
// persisted network.
func WithTried(keys []string) Option {
	return func(e *Enumerator) {
		for _, k := range keys {
			e.tried[k] = struct{}{}
		}
	}
}

// New creates an enumerator over net.
func New(net *network.Network, opts ...Option) *Enumerator {
	e := &Enumerator{
		net:           net,
		tried:         make(map[string]struct{}),
		allowMultiple: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Attempts returns the monotonically increasing count of transformation
// attempts made through this enumerator.
func (e *Enumerator) Attempts() int64 { return e.attempts.Load() }

// TriedKeys returns the attempted recipe keys in sorted order, for
// persistence.
func (e *Enumerator) TriedKeys() []string {
	e.triedMu.Lock()
	defer e.triedMu.Unlock()
	keys := make([]string, 0, len(e.tried))
	for k := range e.tried {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Untried returns every recipe over the current molecule set that has not
// yet been attempted, in deterministic order: operators in insertion
// order, tuples in lexicographic ref order.
func (e *Enumerator) Untried() []Recipe {
	molCount := e.net.MoleculeCount()
	var out []Recipe

	e.net.EachOperator(func(opRef entity.OpRef, op entity.Operator) bool {
		arity := op.Arity()
		for size := arity.Min; size <= arity.Max; size++ {
			if size < 1 || molCount == 0 {
				continue
			}
			e.generate(opRef, op.Ordered(), size, molCount, &out)
		}
		return true
	})
	return out
}

// generate emits all tuples of the given size for one operator, honoring
// ordering semantics, the multiple-reactant constraint, and the tried set.
func (e *Enumerator) generate(op entity.OpRef, ordered bool, size, molCount int, out *[]Recipe) {
	tuple := make([]entity.MolRef, size)

	var rec func(pos int, start int, outside int)
	rec = func(pos, start, outside int) {
		if pos == size {
			r := Recipe{Operator: op, Reactants: append([]entity.MolRef(nil), tuple...)}
			if !e.wasTried(r.Key()) {
				*out = append(*out, r)
			}
			return
		}
		first := start
		if ordered {
			first = 0
		}
		for i := first; i < molCount; i++ {
			ref := entity.MolRef(i)
			next := outside
			if !e.allowMultiple {
				if _, helper := e.helpers[ref]; !helper {
					next = outside + 1
					if next > 1 {
						continue // more than one non-helper reactant
					}
				}
			}
			tuple[pos] = ref
			rec(pos+1, i, next)
		}
	}
	rec(0, 0, 0)
}

func (e *Enumerator) wasTried(key string) bool {
	e.triedMu.Lock()
	defer e.triedMu.Unlock()
	_, ok := e.tried[key]
	return ok
}

func (e *Enumerator) markTried(key string) {
	e.triedMu.Lock()
	defer e.triedMu.Unlock()
	e.tried[key] = struct{}{}
}

// Apply runs the transformation collaborator against a recipe.
//
// attempted=false means the attempt cap was already exhausted and the
// recipe was not evaluated (and is not marked tried). A nil candidate
// slice with attempted=true is the silent "not applicable" outcome.
func (e *Enumerator) Apply(t entity.Transform, r Recipe) (candidates []entity.Candidate, attempted bool, err error) {
	// Reserve an attempt slot; max_recipes is enforced at generation time,
	// so in-flight work never exceeds the cap.
	for {
		cur := e.attempts.Load()
		if e.cap > 0 && cur >= e.cap {
			return nil, false, nil
		}
		if e.attempts.CompareAndSwap(cur, cur+1) {
			break
		}
	}
	e.markTried(r.Key())

	op, err := e.net.Operator(r.Operator)
	if err != nil {
		return nil, true, err
	}
	reactants := make([]entity.Molecule, len(r.Reactants))
	for i, ref := range r.Reactants {
		m, err := e.net.Molecule(ref)
		if err != nil {
			return nil, true, err
		}
		reactants[i] = m
	}

	tuples, ok, err := t.Apply(op, reactants)
	if err != nil {
		return nil, true, err
	}
	if !ok {
		return nil, true, nil
	}

	candidates = make([]entity.Candidate, 0, len(tuples))
	for _, products := range tuples {
		candidates = append(candidates, entity.Candidate{
			Operator:  r.Operator,
			Reactants: append([]entity.MolRef(nil), r.Reactants...),
			Products:  products,
		})
	}
	return candidates, true, nil
}

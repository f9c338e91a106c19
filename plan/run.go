package plan

import (
	"fmt"
	"sort"

	"github.com/roach88/retort/entity"
	"github.com/roach88/retort/network"
)

// Status classifies the result of running a plan over one candidate.
type Status int

const (
	// StatusCommitted means every step passed and the reaction, its
	// products and all staged metadata are now in the network.
	StatusCommitted Status = iota + 1

	// StatusRejected means a filter step dropped the candidate. Nothing
	// was committed; the rejection is tallied by predicate name.
	StatusRejected

	// StatusFaulted means a step failed. Whether the fault is confined to
	// this candidate or fatal to the expansion is decided by the caller
	// from the error's type.
	StatusFaulted
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusCommitted:
		return "committed"
	case StatusRejected:
		return "rejected"
	case StatusFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of running a plan over one candidate.
type Outcome struct {
	Status    Status
	Candidate entity.Candidate

	// Reaction and Products are populated only when Status is
	// StatusCommitted.
	Reaction entity.RxnRef
	Products []entity.MolRef

	// RejectedBy names the predicate that dropped the candidate when
	// Status is StatusRejected.
	RejectedBy string

	// Err carries the failure when Status is StatusFaulted.
	Err error
}

// Run evaluates the plan over one candidate against the network. Steps
// run strictly in order; a rejecting filter short-circuits the remainder.
// Writes to committed molecules and operators land immediately after
// their step; product and reaction metadata stay staged until every step
// has passed and the reaction commits.
func (p Plan) Run(net *network.Network, cand entity.Candidate) Outcome {
	rc := newContext(net, cand)
	resolvers := make(map[string]network.Resolver)

	for _, step := range p.steps {
		if step.pred != nil {
			keep, err := step.pred.Keep(rc)
			if err != nil {
				return fault(cand, fmt.Errorf("filter %q: %w", step.pred.Name(), err))
			}
			if !keep {
				return Outcome{Status: StatusRejected, Candidate: cand, RejectedBy: step.pred.Name()}
			}
			continue
		}

		snapshot := rc.clone()
		var writes []Write
		for _, c := range step.calcs {
			if err := checkRequirement(snapshot, c); err != nil {
				return fault(cand, err)
			}
			out, err := c.Compute(snapshot)
			if err != nil {
				return fault(cand, fmt.Errorf("calculator %q: %w", c.MetaKey(), err))
			}
			writes = append(writes, out...)

			// First-listed calculator for a key owns its resolver.
			if _, claimed := resolvers[c.MetaKey()]; !claimed {
				resolvers[c.MetaKey()] = c.Resolver()
			}
		}

		for _, w := range writes {
			if err := rc.apply(w, resolvers[w.Key]); err != nil {
				return fault(cand, err)
			}
		}
	}

	return commit(rc, resolvers)
}

// checkRequirement verifies a calculator's declared reads against the
// pre-step snapshot. Tolerant calculators skip the check.
func checkRequirement(snap *Context, c Calculator) error {
	req := c.Requires()
	if req.Tolerant {
		return nil
	}
	for _, ref := range snap.cand.Reactants {
		for _, key := range req.MoleculeKeys {
			if _, ok := snap.Molecule(ref, key); !ok {
				return &MissingMetadataError{
					Calculator: c.MetaKey(),
					Target:     MoleculeTarget(ref).String(),
					MetaKey:    key,
				}
			}
		}
	}
	for _, key := range req.ReactionKeys {
		if _, ok := snap.Reaction(key); !ok {
			return &MissingMetadataError{
				Calculator: c.MetaKey(),
				Target:     ReactionTarget().String(),
				MetaKey:    key,
			}
		}
	}
	return nil
}

// apply routes one write. Committed targets go straight to the network's
// metadata tables; product and reaction targets accumulate in the staged
// overlay, resolved against any value staged earlier.
func (rc *Context) apply(w Write, r network.Resolver) error {
	switch w.Target.kind {
	case targetMolecule:
		rc.net.MolMeta.BindResolver(w.Key, r)
		return rc.net.MolMeta.Set(int(w.Target.mol), w.Key, w.Value)
	case targetOperator:
		rc.net.OpMeta.BindResolver(w.Key, r)
		return rc.net.OpMeta.Set(int(w.Target.op), w.Key, w.Value)
	case targetProduct:
		i := w.Target.product
		if i < 0 || i >= len(rc.productMeta) {
			return fmt.Errorf("write to %s: candidate has %d products", w.Target, len(rc.productMeta))
		}
		return stage(rc.productMeta[i], w.Key, w.Value, r, entity.KindMolecule, i)
	case targetReaction:
		return stage(rc.rxnMeta, w.Key, w.Value, r, entity.KindReaction, -1)
	default:
		return fmt.Errorf("write with invalid target for key %q", w.Key)
	}
}

// stage resolves a write into a staged overlay map, recovering resolver
// panics into the same fatal error shape the tables produce.
func stage(m map[string]any, key string, value any, r network.Resolver, kind entity.Kind, ref int) (err error) {
	existing, present := m[key]
	if !present {
		m[key] = value
		return nil
	}
	if r == nil {
		r = network.Overwrite
	}
	defer func() {
		if cause := recover(); cause != nil {
			err = &network.ResolverError{Kind: kind, Ref: ref, MetaKey: key, Cause: cause}
		}
	}()
	m[key] = r(existing, value)
	return nil
}

// commit inserts the products and the reaction record, then lands the
// staged metadata through the tables so values merge correctly with any
// previously committed state for rediscovered molecules.
func commit(rc *Context, resolvers map[string]network.Resolver) Outcome {
	cand := rc.cand

	refs := make([]entity.MolRef, len(cand.Products))
	for i, m := range cand.Products {
		ref, _, err := rc.net.AddMolecule(m)
		if err != nil {
			return fault(cand, fmt.Errorf("commit product %d: %w", i, err))
		}
		refs[i] = ref
	}

	rxnRef, _, err := rc.net.AddReaction(entity.Reaction{
		Operator:  cand.Operator,
		Reactants: cand.Reactants,
		Products:  refs,
	})
	if err != nil {
		return fault(cand, fmt.Errorf("commit reaction: %w", err))
	}

	for i, staged := range rc.productMeta {
		for _, key := range sortedKeys(staged) {
			rc.net.MolMeta.BindResolver(key, resolvers[key])
			if err := rc.net.MolMeta.Set(int(refs[i]), key, staged[key]); err != nil {
				return fault(cand, err)
			}
		}
	}
	for _, key := range sortedKeys(rc.rxnMeta) {
		rc.net.RxnMeta.BindResolver(key, resolvers[key])
		if err := rc.net.RxnMeta.Set(int(rxnRef), key, rc.rxnMeta[key]); err != nil {
			return fault(cand, err)
		}
	}

	return Outcome{
		Status:    StatusCommitted,
		Candidate: cand,
		Reaction:  rxnRef,
		Products:  refs,
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fault(cand entity.Candidate, err error) Outcome {
	return Outcome{Status: StatusFaulted, Candidate: cand, Err: err}
}

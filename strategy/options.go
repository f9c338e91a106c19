package strategy

import (
	"log/slog"

	"github.com/roach88/retort/entity"
)

// Option configures an expansion.
type Option func(*Expansion)

// WithRanker sets the frontier ranking function. Higher-ranked recipes
// are evaluated first; the default is no ranking (insertion order).
func WithRanker(r Ranker) Option {
	return func(e *Expansion) { e.ranker = r }
}

// WithBeamSize bounds how many top-ranked recipes each round evaluates.
// 0 means uncapped: a round drains the whole frontier.
func WithBeamSize(n int) Option {
	return func(e *Expansion) { e.beamSize = n }
}

// WithHeapSize bounds the frontier itself; recipes ranking below the
// bounded frontier's worst entry are dropped. 0 means unbounded.
func WithHeapSize(n int) Option {
	return func(e *Expansion) { e.heapSize = n }
}

// WithMaxRecipes caps total transformation attempts across the whole run.
// The cap is enforced at candidate-generation time and can truncate a
// round mid-way. 0 means uncapped.
func WithMaxRecipes(n int64) Option {
	return func(e *Expansion) { e.maxRecipes = n }
}

// WithHooks appends global hooks, run in order between rounds.
func WithHooks(hooks ...Hook) Option {
	return func(e *Expansion) { e.hooks = append(e.hooks, hooks...) }
}

// WithWorkers sets the candidate evaluation worker count. Values below 1
// are treated as 1; a single worker makes commit order deterministic.
func WithWorkers(n int) Option {
	return func(e *Expansion) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithoutMultipleReactants restricts enumeration to recipes drawing at
// most one molecule from outside the helper set.
func WithoutMultipleReactants(helpers ...entity.MolRef) Option {
	return func(e *Expansion) {
		e.allowMultiple = false
		e.helpers = append([]entity.MolRef(nil), helpers...)
	}
}

// WithTried preloads already-attempted recipe keys, e.g. when resuming an
// expansion from a persisted network.
func WithTried(keys []string) Option {
	return func(e *Expansion) { e.tried = append([]string(nil), keys...) }
}

// WithLogger sets the structured logger for the run loop.
func WithLogger(log *slog.Logger) Option {
	return func(e *Expansion) { e.log = log }
}

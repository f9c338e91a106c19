package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/retort/entity"
	"github.com/roach88/retort/enumerate"
	"github.com/roach88/retort/network"
	"github.com/roach88/retort/plan"
)

// Expansion is one configured expansion over a network. It owns the
// network for the duration of Run and hands it to collaborators
// explicitly; a single Expansion runs at most one Run at a time.
type Expansion struct {
	net       *network.Network
	transform entity.Transform
	plan      plan.Plan

	ranker        Ranker
	beamSize      int
	heapSize      int
	maxRecipes    int64
	hooks         []Hook
	workers       int
	allowMultiple bool
	helpers       []entity.MolRef
	tried         []string
	log           *slog.Logger

	enum *enumerate.Enumerator

	mu     sync.Mutex
	status Status
}

// New builds a priority-queue expansion over net. The zero configuration
// is an unranked, unbounded, single-worker search that runs to fixed
// point.
func New(net *network.Network, transform entity.Transform, p plan.Plan, opts ...Option) *Expansion {
	e := &Expansion{
		net:           net,
		transform:     transform,
		plan:          p,
		workers:       1,
		allowMultiple: true,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	var eopts []enumerate.Option
	if e.maxRecipes > 0 {
		eopts = append(eopts, enumerate.WithAttemptCap(e.maxRecipes))
	}
	if !e.allowMultiple {
		eopts = append(eopts, enumerate.WithoutMultipleReactants(e.helpers...))
	}
	if len(e.tried) > 0 {
		eopts = append(eopts, enumerate.WithTried(e.tried))
	}
	e.enum = enumerate.New(net, eopts...)
	return e
}

// Cartesian builds the exhaustive strategy: no ranker, unbounded beam and
// heap, and a built-in hook halting after the given number of rounds.
// rounds <= 0 runs until no new recipes are produced.
func Cartesian(net *network.Network, transform entity.Transform, p plan.Plan, rounds int, opts ...Option) *Expansion {
	if rounds > 0 {
		opts = append(opts, WithHooks(HaltAfter(rounds)))
	}
	return New(net, transform, p, opts...)
}

// Status returns the expansion's lifecycle state.
func (e *Expansion) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Expansion) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Network returns the expansion's network.
func (e *Expansion) Network() *network.Network { return e.net }

// TriedKeys returns the attempted recipe keys in sorted order, for
// persisting alongside the network.
func (e *Expansion) TriedKeys() []string { return e.enum.TriedKeys() }

// Run expands the network until a stopping condition: fixed point, the
// attempt cap, a stopping hook, context cancellation or a fatal fault.
// Cancellation is cooperative and observed only at round boundaries;
// in-flight candidate evaluation always completes. On a fatal fault the
// error is returned, the faulting round's partial commits are flagged
// discarded, and every previously completed round's commits stay intact.
func (e *Expansion) Run(ctx context.Context) (*Report, error) {
	e.mu.Lock()
	if e.status == StatusExpanding {
		e.mu.Unlock()
		return nil, fmt.Errorf("expansion already running")
	}
	e.status = StatusExpanding
	e.mu.Unlock()

	rep := &Report{RunID: newRunID(), RejectedBy: make(map[string]int)}
	defer func() { rep.Attempts = e.enum.Attempts() }()

	log := e.log.With("run_id", rep.RunID)
	log.Info("expansion starting",
		"molecules", e.net.MoleculeCount(),
		"operators", e.net.OperatorCount(),
		"workers", e.workers)

	front := newFrontier(e.net, e.ranker, e.heapSize)
	final := StatusHalted
	defer func() { e.setStatus(final) }()

	for {
		if err := ctx.Err(); err != nil {
			rep.StopReason = StopCanceled
			log.Info("expansion canceled", "rounds", rep.Rounds)
			return rep, err
		}
		if e.maxRecipes > 0 && e.enum.Attempts() >= e.maxRecipes {
			rep.StopReason = StopMaxRecipes
			break
		}

		// Ranks read metadata the previous round or its hooks may have
		// mutated, so retained frontier items are rescored first.
		front.rerank()
		for _, r := range e.enum.Untried() {
			front.push(r)
		}
		batch := front.pop(e.beamSize)
		if len(batch) == 0 {
			rep.StopReason = StopFixedPoint
			final = StatusIdle
			break
		}

		// Pre-round store sizes delimit this round's commits for discard.
		molStart := e.net.MoleculeCount()
		rxnStart := e.net.ReactionCount()

		stat, fatal := e.evaluate(batch, rep)
		rep.Rounds++
		stat.Round = rep.Rounds
		rep.PerRound = append(rep.PerRound, stat)
		log.Info("round complete",
			"round", stat.Round,
			"recipes", stat.Recipes,
			"committed", stat.Committed,
			"rejected", stat.Rejected,
			"faults", stat.Faults,
			"frontier", front.len())
		if fatal != nil {
			// The store is append-only, so the aborted round's partial
			// commits cannot be rolled back; they are flagged instead and
			// only fully completed rounds read as live.
			rep.StopReason = StopFault
			rep.DiscardedRound = true
			if derr := e.discardSince(molStart, rxnStart); derr != nil {
				log.Warn("flagging faulted round", "error", derr)
			}
			return rep, fatal
		}

		action, hookName, err := e.runHooks(log)
		if err != nil {
			rep.StopReason = StopFault
			return rep, err
		}
		if action == Continue {
			continue
		}

		rep.StopReason = StopHook
		rep.StoppedBy = hookName
		if action == StopAndDiscardRound {
			rep.DiscardedRound = true
			if err := e.discardSince(molStart, rxnStart); err != nil {
				return rep, err
			}
		}
		break
	}

	log.Info("expansion stopped",
		"reason", rep.StopReason,
		"rounds", rep.Rounds,
		"committed", rep.Committed,
		"molecules", e.net.MoleculeCount())
	return rep, nil
}

// evaluate runs one round's batch through the worker pool. All in-flight
// work completes even after a fatal fault; the fault is reported only at
// the round barrier.
func (e *Expansion) evaluate(batch []enumerate.Recipe, rep *Report) (RoundStat, error) {
	stat := RoundStat{Recipes: len(batch)}

	jobs := make(chan enumerate.Recipe)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var fatal error

	record := func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				cands, attempted, err := e.enum.Apply(e.transform, r)
				if err != nil {
					record(func() {
						if fatal == nil {
							fatal = fmt.Errorf("transform on recipe %s: %w", r, err)
						}
					})
					continue
				}
				if !attempted {
					continue // attempt cap exhausted mid-round
				}
				for _, cand := range cands {
					out := e.plan.Run(e.net, cand)
					record(func() { e.tally(out, r, &stat, rep, &fatal) })
				}
			}
		}()
	}

	for _, r := range batch {
		jobs <- r
	}
	close(jobs)
	wg.Wait()
	return stat, fatal
}

// tally folds one pipeline outcome into the round and run accounting.
// Caller holds the round mutex.
func (e *Expansion) tally(out plan.Outcome, r enumerate.Recipe, stat *RoundStat, rep *Report, fatal *error) {
	switch out.Status {
	case plan.StatusCommitted:
		stat.Committed++
		rep.Committed++
	case plan.StatusRejected:
		stat.Rejected++
		rep.Rejected++
		rep.RejectedBy[out.RejectedBy]++
	case plan.StatusFaulted:
		if plan.IsMissingMetadata(out.Err) {
			stat.Faults++
			rep.Faults = append(rep.Faults, Fault{Recipe: r.Key(), Err: out.Err})
			return
		}
		if *fatal == nil {
			*fatal = fmt.Errorf("recipe %s: %w", r, out.Err)
		}
	}
}

// runHooks evaluates the global hooks in list order, short-circuiting on
// the first stopping action.
func (e *Expansion) runHooks(log *slog.Logger) (Action, string, error) {
	for _, h := range e.hooks {
		action, err := h.Run(e.net)
		if err != nil {
			return Continue, h.Name(), fmt.Errorf("hook %q: %w", h.Name(), err)
		}
		if action != Continue {
			log.Info("hook stopped expansion", "hook", h.Name(), "action", action.String())
			return action, h.Name(), nil
		}
	}
	return Continue, "", nil
}

// discardSince flags every molecule and reaction committed at or after
// the given store sizes. Refs are dense and append-only, so the round's
// commits are exactly the tail of each store.
func (e *Expansion) discardSince(molStart, rxnStart int) error {
	for i := molStart; i < e.net.MoleculeCount(); i++ {
		if err := e.net.MolMeta.Set(i, DiscardedKey, true); err != nil {
			return err
		}
	}
	for i := rxnStart; i < e.net.ReactionCount(); i++ {
		if err := e.net.RxnMeta.Set(i, DiscardedKey, true); err != nil {
			return err
		}
	}
	return nil
}

// newRunID returns a time-ordered unique run token.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

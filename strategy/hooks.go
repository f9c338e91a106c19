package strategy

import (
	"github.com/roach88/retort/network"
)

// Action is a global hook's verdict on the expansion.
type Action int

const (
	// Continue lets the expansion proceed to the next round.
	Continue Action = iota

	// Stop ends the expansion, keeping everything committed so far.
	Stop

	// StopAndDiscardRound ends the expansion and flags the just-finished
	// round's commits as discarded. The store is append-only, so discard
	// is a metadata flag, not deletion; readers filter on DiscardedKey.
	StopAndDiscardRound
)

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	case StopAndDiscardRound:
		return "stop-and-discard-round"
	default:
		return "invalid action"
	}
}

// DiscardedKey is the metadata key flagged true on entities committed by
// a discarded round: one a hook chose to discard, or one aborted by a
// fatal fault.
const DiscardedKey = "discarded"

// Hook is a global hook, run single-threaded between rounds after the
// round barrier, in list order. The first hook returning a stopping
// action short-circuits the rest of the list for that round. Hooks may
// mutate metadata through the tables' resolver path.
type Hook interface {
	Name() string
	Run(net *network.Network) (Action, error)
}

// HookFunc adapts a plain function into a Hook.
func HookFunc(name string, fn func(net *network.Network) (Action, error)) Hook {
	return hookFunc{name: name, fn: fn}
}

type hookFunc struct {
	name string
	fn   func(net *network.Network) (Action, error)
}

func (h hookFunc) Name() string { return h.name }

func (h hookFunc) Run(net *network.Network) (Action, error) { return h.fn(net) }

// HaltAfter returns a hook that stops the expansion once the given number
// of rounds has completed. This is the Cartesian iteration bound; it is
// stateful and must not be shared between expansions.
func HaltAfter(rounds int) Hook {
	return &haltAfter{limit: rounds}
}

type haltAfter struct {
	limit int
	seen  int
}

func (h *haltAfter) Name() string { return "halt-after" }

func (h *haltAfter) Run(*network.Network) (Action, error) {
	h.seen++
	if h.seen >= h.limit {
		return Stop, nil
	}
	return Continue, nil
}

package strategy

// Stop reasons recorded on a report.
const (
	StopFixedPoint = "fixed-point"
	StopHook       = "hook"
	StopMaxRecipes = "max-recipes"
	StopCanceled   = "canceled"
	StopFault      = "fault"
)

// Fault records a per-candidate failure that did not abort the run.
type Fault struct {
	Recipe string
	Err    error
}

// RoundStat summarizes one completed round.
type RoundStat struct {
	Round     int
	Recipes   int
	Committed int
	Rejected  int
	Faults    int
}

// Report is the accounting surface of one expansion run.
type Report struct {
	// RunID is a time-ordered unique token for correlating logs.
	RunID string

	Rounds    int
	Attempts  int64
	Committed int
	Rejected  int

	// RejectedBy tallies rejections per filter predicate name.
	RejectedBy map[string]int

	// Faults lists per-candidate faults; fatal faults are returned as the
	// Run error instead.
	Faults []Fault

	// StopReason is one of the Stop* constants. StoppedBy names the hook
	// when StopReason is StopHook.
	StopReason string
	StoppedBy  string

	// DiscardedRound is true when the final round's commits were flagged
	// discarded, either by a hook or because a fatal fault aborted the
	// round.
	DiscardedRound bool

	PerRound []RoundStat
}

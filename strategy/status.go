package strategy

import "fmt"

// Status is the lifecycle state of an expansion. A fresh expansion is
// idle; Run moves it to expanding; on return it is halted if the run was
// stopped by a hook, a limit or a fault, and idle again if it reached a
// fixed point and may meaningfully be resumed.
type Status int

const (
	StatusIdle Status = iota
	StatusExpanding
	StatusHalted
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusExpanding:
		return "expanding"
	case StatusHalted:
		return "halted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

package plan

// Step is one pipeline stage: either a calculation step carrying one or
// more calculators, or a filter step carrying a predicate. Zero value is
// invalid; build steps with Calc and Filter.
type Step struct {
	calcs []Calculator
	pred  Predicate
}

// Calc builds a calculation step from the given calculators. Order
// matters: the first-listed calculator for a key is authoritative for
// that key's resolver.
func Calc(calcs ...Calculator) Step {
	return Step{calcs: calcs}
}

// AndWith returns a copy of the step with an additional calculator
// appended. The receiver is unchanged.
func (s Step) AndWith(c Calculator) Step {
	combined := make([]Calculator, 0, len(s.calcs)+1)
	combined = append(combined, s.calcs...)
	combined = append(combined, c)
	return Step{calcs: combined}
}

// Filter builds a filter step from a predicate.
func Filter(p Predicate) Step {
	return Step{pred: p}
}

// Plan is an immutable ordered sequence of steps. A Plan value can be
// shared and replayed across candidates and runs; Then never mutates the
// receiver.
type Plan struct {
	steps []Step
}

// New builds a plan from the given steps.
func New(steps ...Step) Plan {
	owned := make([]Step, len(steps))
	copy(owned, steps)
	return Plan{steps: owned}
}

// Then returns a new plan with one more step appended.
func (p Plan) Then(s Step) Plan {
	extended := make([]Step, 0, len(p.steps)+1)
	extended = append(extended, p.steps...)
	extended = append(extended, s)
	return Plan{steps: extended}
}

// Len reports the number of steps.
func (p Plan) Len() int { return len(p.steps) }

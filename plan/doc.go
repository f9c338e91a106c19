// Package plan implements the reaction analysis pipeline: an immutable,
// replayable, ordered sequence of steps applied to each candidate reaction
// before it is committed.
//
// A step is either a calculation step (one or more calculators that all
// observe the same pre-step snapshot and whose writes are applied through
// each key's resolver) or a filter step (a predicate that rejects the
// candidate immediately, before any later step runs).
//
// Plans are built purely by composition: Calc(...).AndWith(...) combines
// calculators into one step, Plan.Then chains steps. A calculator that
// needs another calculator's output must be placed in a strictly later
// step; the engine never synthesizes defaults for missing metadata.
package plan

// Package strategy drives network expansion: rounds of recipe
// enumeration, concurrent candidate evaluation through an analysis plan,
// commitment of survivors, and between-round global hooks.
//
// The general form is a priority-queue search over a recipe frontier with
// an injectable ranker and beam, heap and attempt bounds. The Cartesian
// strategy is the same machine with no ranker and no bounds, which makes
// every round an exact generation: all untried combinations over the
// current molecule set are evaluated before the next round begins.
//
// A strategy owns its network for the duration of one Run call. Within a
// round, candidate evaluation is the only parallel region; rounds are
// separated by a full barrier and hooks run single-threaded after it.
package strategy

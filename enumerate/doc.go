// Package enumerate produces candidate recipes: (operator, reactant-tuple)
// combinations consistent with each operator's arity, restricted to
// molecules currently in the network, excluding combinations already
// attempted in a prior round.
//
// Unordered operators are enumerated over combinations with repetition in
// nondecreasing ref order; operators that distinguish reactant roles get
// the full Cartesian power. The multiple-reactant constraint is applied
// during generation, not as a post-filter, so inapplicable combinations
// never cost a transformation call.
package enumerate

package entity

// Datum is the minimal contract every stored value satisfies.
//
// Key is the canonical identity key produced by the canonicalization
// collaborator that built the value. It must be a total function of the
// value, stable across process runs, and consistent with structural
// equality: equal keys mean the same network entity.
//
// Blob is a stable binary encoding of the value, sufficient to reconstruct
// it through a Decoder. Two values with equal keys must have equal blobs;
// a mismatch indicates a canonicalization bug and is surfaced as an
// identity collision.
type Datum interface {
	Key() string
	Blob() []byte
}

// Molecule is an opaque, immutable, canonically-keyed reactable object.
type Molecule interface {
	Datum
}

// Operator is an opaque, immutable transformation rule. Beyond identity it
// advertises how many reactant roles it consumes and whether those roles
// are positional.
type Operator interface {
	Datum

	// Arity reports the reactant tuple sizes the operator accepts.
	Arity() Arity

	// Ordered reports whether reactant roles are positional. Ordered
	// operators are enumerated over full Cartesian tuples; unordered
	// operators over combinations with repetition.
	Ordered() bool
}

// Arity describes the reactant tuple sizes an operator accepts as an
// inclusive range. Fixed-arity operators have Min == Max; variable-arity
// operators accept any size in [Min, Max]. The explicit Accepts check is
// the only arity probe the engine performs.
type Arity struct {
	Min int
	Max int
}

// Fixed returns the arity accepting exactly n reactants.
func Fixed(n int) Arity { return Arity{Min: n, Max: n} }

// Between returns the arity accepting between min and max reactants.
func Between(min, max int) Arity { return Arity{Min: min, Max: max} }

// Accepts reports whether a reactant tuple of size n satisfies the arity.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && n <= a.Max
}

// Transform is the opaque transformation collaborator. Apply evaluates an
// operator against an ordered reactant tuple and returns zero or more
// ordered product tuples.
//
// ok=false signals "not applicable"; it is an expected outcome, not an
// error, and the candidate is dropped silently. Apply must be deterministic
// for identical inputs and safe to call concurrently for distinct inputs.
type Transform interface {
	Apply(op Operator, reactants []Molecule) (products [][]Molecule, ok bool, err error)
}

// Decoder reconstructs opaque values from their blobs. Supplied by the
// same collaborator that produced the values; used when loading a
// persisted network.
type Decoder interface {
	Molecule(blob []byte) (Molecule, error)
	Operator(blob []byte) (Operator, error)
}

// Candidate is a transformation attempt that produced products but has not
// been committed: the operator and reactants are committed refs, the
// products are raw molecule values awaiting pipeline survival.
type Candidate struct {
	Operator  OpRef
	Reactants []MolRef
	Products  []Molecule
}

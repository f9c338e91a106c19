package rewrite

import "github.com/roach88/retort/entity"

// Mol is a molecule whose canonical key is its NFC-normalized text.
type Mol struct {
	s string
}

// NewMol builds a molecule from raw text, normalizing at the boundary so
// visually identical strings dedup to one network entity.
func NewMol(s string) Mol {
	return Mol{s: entity.NormalizeKey(s)}
}

// Key returns the canonical identity key.
func (m Mol) Key() string { return m.s }

// Blob returns the canonical text as bytes.
func (m Mol) Blob() []byte { return []byte(m.s) }

// String implements fmt.Stringer.
func (m Mol) String() string { return m.s }

package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArity_Fixed(t *testing.T) {
	a := Fixed(2)

	assert.True(t, a.Accepts(2))
	assert.False(t, a.Accepts(1))
	assert.False(t, a.Accepts(3))
}

func TestArity_Between(t *testing.T) {
	a := Between(1, 3)

	assert.False(t, a.Accepts(0))
	assert.True(t, a.Accepts(1))
	assert.True(t, a.Accepts(2))
	assert.True(t, a.Accepts(3))
	assert.False(t, a.Accepts(4))
}

func TestReaction_Key_Stable(t *testing.T) {
	r1 := Reaction{Operator: 0, Reactants: []MolRef{0, 1}, Products: []MolRef{2}}
	r2 := Reaction{Operator: 0, Reactants: []MolRef{0, 1}, Products: []MolRef{2}}

	assert.Equal(t, r1.Key(), r2.Key(), "structurally equal reactions must share a key")
}

func TestReaction_Key_DistinguishesTuples(t *testing.T) {
	base := Reaction{Operator: 0, Reactants: []MolRef{0, 1}, Products: []MolRef{2}}

	variants := []Reaction{
		{Operator: 1, Reactants: []MolRef{0, 1}, Products: []MolRef{2}},
		{Operator: 0, Reactants: []MolRef{1, 0}, Products: []MolRef{2}},
		{Operator: 0, Reactants: []MolRef{0}, Products: []MolRef{12}},
		{Operator: 0, Reactants: []MolRef{0, 1}, Products: []MolRef{3}},
		{Operator: 0, Reactants: []MolRef{0, 1, 2}, Products: []MolRef{}},
	}

	for _, v := range variants {
		assert.NotEqual(t, base.Key(), v.Key(), "tuple %v must not collide with %v", v, base)
	}
}

func TestReaction_BlobRoundTrip(t *testing.T) {
	r := Reaction{Operator: 3, Reactants: []MolRef{5, 7}, Products: []MolRef{9}}

	decoded, err := DecodeReaction(r.Blob())
	require.NoError(t, err)
	assert.Equal(t, r, decoded)
}

func TestHashWithDomain_Separation(t *testing.T) {
	// "ab"+"c" under one domain must not equal "a"+"bc" under another split;
	// the null separator prevents boundary ambiguity.
	h1 := HashWithDomain("ab", []byte("c"))
	h2 := HashWithDomain("a", []byte("bc"))
	assert.NotEqual(t, h1, h2)
}

func TestNormalizeKey_NFC(t *testing.T) {
	// U+0065 U+0301 (e + combining acute) normalizes to U+00E9.
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	assert.Equal(t, NormalizeKey(composed), NormalizeKey(decomposed))
}

func TestRef_String(t *testing.T) {
	assert.Equal(t, "molecule/3", MoleculeRef(3).String())
	assert.Equal(t, "operator/0", OperatorRef(0).String())
	assert.Equal(t, "reaction/12", ReactionRef(12).String())
}

package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/retort/entity"
)

func TestMol_Normalization(t *testing.T) {
	composed := NewMol("caf\u00e9")
	decomposed := NewMol("cafe\u0301")

	assert.Equal(t, composed.Key(), decomposed.Key(), "NFC-equivalent text is one molecule")
}

func TestRule_KeyDistinguishesRules(t *testing.T) {
	a := NewRule("combine", []string{"", ""}, []string{"$1$2"}, false)
	b := NewRule("combine", []string{"", ""}, []string{"$1$2"}, true)
	c := NewRule("combine", []string{"", ""}, []string{"$2$1"}, false)

	assert.NotEqual(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestRule_BlobRoundTrip(t *testing.T) {
	r := NewRule("glue", []string{"a", "b"}, []string{"$1-$2"}, true)

	decoded, err := DecodeRule(r.Blob())
	require.NoError(t, err)
	assert.Equal(t, r.Key(), decoded.Key())
}

func TestTransform_Concat(t *testing.T) {
	rule := NewRule("combine", []string{"", ""}, []string{"$1$2"}, false)

	tuples, ok, err := Transform{}.Apply(rule, []entity.Molecule{NewMol("A"), NewMol("B")})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, tuples, 1)
	require.Len(t, tuples[0], 1)
	assert.Equal(t, "AB", tuples[0][0].Key())
}

func TestTransform_OrderedIsPositional(t *testing.T) {
	// Role 1 must contain "x", role 2 must contain "y".
	rule := NewRule("pair", []string{"x", "y"}, []string{"$1+$2"}, true)

	_, ok, err := Transform{}.Apply(rule, []entity.Molecule{NewMol("why"), NewMol("box")})
	require.NoError(t, err)
	assert.False(t, ok, "ordered rule must not permute reactants")

	tuples, ok, err := Transform{}.Apply(rule, []entity.Molecule{NewMol("box"), NewMol("why")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "box+why", tuples[0][0].Key())
}

func TestTransform_UnorderedPermutes(t *testing.T) {
	rule := NewRule("pair", []string{"x", "y"}, []string{"$1+$2"}, false)

	tuples, ok, err := Transform{}.Apply(rule, []entity.Molecule{NewMol("why"), NewMol("box")})
	require.NoError(t, err)
	require.True(t, ok, "unordered rule finds the role assignment")
	assert.Equal(t, "box+why", tuples[0][0].Key())
}

func TestTransform_NotApplicable(t *testing.T) {
	rule := NewRule("never", []string{"z"}, []string{"$1"}, false)

	tuples, ok, err := Transform{}.Apply(rule, []entity.Molecule{NewMol("A")})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, tuples)
}

func TestTransform_MultipleProducts(t *testing.T) {
	rule := NewRule("split", []string{""}, []string{"$1-left", "$1-right"}, false)

	tuples, ok, err := Transform{}.Apply(rule, []entity.Molecule{NewMol("M")})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, tuples[0], 2)
	assert.Equal(t, "M-left", tuples[0][0].Key())
	assert.Equal(t, "M-right", tuples[0][1].Key())
}

func TestTransform_Deterministic(t *testing.T) {
	rule := NewRule("combine", []string{"", ""}, []string{"$1$2"}, false)
	in := []entity.Molecule{NewMol("A"), NewMol("B")}

	first, ok, err := Transform{}.Apply(rule, in)
	require.NoError(t, err)
	require.True(t, ok)

	for i := 0; i < 10; i++ {
		again, ok, err := Transform{}.Apply(rule, in)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, first[0][0].Key(), again[0][0].Key())
	}
}

func TestDecoder_RoundTrip(t *testing.T) {
	d := Decoder{}

	m, err := d.Molecule(NewMol("AB").Blob())
	require.NoError(t, err)
	assert.Equal(t, "AB", m.Key())

	rule := NewRule("combine", []string{"", ""}, []string{"$1$2"}, false)
	op, err := d.Operator(rule.Blob())
	require.NoError(t, err)
	assert.Equal(t, rule.Key(), op.Key())
	assert.Equal(t, entity.Fixed(2), op.Arity())
}

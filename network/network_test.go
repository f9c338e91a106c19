package network

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/retort/entity"
)

// testMol is a minimal molecule for store tests.
type testMol struct {
	key  string
	blob string
}

func (m testMol) Key() string  { return m.key }
func (m testMol) Blob() []byte { return []byte(m.blob) }

func mol(key string) testMol { return testMol{key: key, blob: key} }

// testOp is a minimal operator for store tests.
type testOp struct {
	key string
}

func (o testOp) Key() string         { return o.key }
func (o testOp) Blob() []byte        { return []byte(o.key) }
func (o testOp) Arity() entity.Arity { return entity.Fixed(2) }
func (o testOp) Ordered() bool       { return false }

func TestNetwork_AddMolecule_Idempotent(t *testing.T) {
	n := New()

	ref1, inserted1, err := n.AddMolecule(mol("A"))
	require.NoError(t, err)
	assert.True(t, inserted1)

	ref2, inserted2, err := n.AddMolecule(mol("A"))
	require.NoError(t, err)
	assert.False(t, inserted2, "re-adding a structurally equal molecule is a no-op")
	assert.Equal(t, ref1, ref2, "both inserts must yield the same ref")
	assert.Equal(t, 1, n.MoleculeCount())
}

func TestNetwork_AddMolecule_DenseRefs(t *testing.T) {
	n := New()

	for i, key := range []string{"A", "B", "C"} {
		ref, inserted, err := n.AddMolecule(mol(key))
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, entity.MolRef(i), ref)
	}
}

func TestNetwork_IdentityCollision(t *testing.T) {
	n := New()

	_, _, err := n.AddMolecule(testMol{key: "A", blob: "one"})
	require.NoError(t, err)

	// Same canonical key, different structure: canonicalization bug.
	_, _, err = n.AddMolecule(testMol{key: "A", blob: "two"})
	require.Error(t, err)
	assert.True(t, IsIdentityCollision(err))
}

func TestNetwork_AddReaction_RejectsForwardRefs(t *testing.T) {
	n := New()

	a, _, err := n.AddMolecule(mol("A"))
	require.NoError(t, err)
	op, _, err := n.AddOperator(testOp{key: "op"})
	require.NoError(t, err)

	_, _, err = n.AddReaction(entity.Reaction{
		Operator:  op,
		Reactants: []entity.MolRef{a},
		Products:  []entity.MolRef{99},
	})
	require.Error(t, err, "product ref not yet in the molecule store")
}

func TestNetwork_AddReaction_Dedup(t *testing.T) {
	n := New()

	a, _, _ := n.AddMolecule(mol("A"))
	b, _, _ := n.AddMolecule(mol("B"))
	c, _, _ := n.AddMolecule(mol("C"))
	op, _, _ := n.AddOperator(testOp{key: "op"})

	r := entity.Reaction{Operator: op, Reactants: []entity.MolRef{a, b}, Products: []entity.MolRef{c}}

	ref1, inserted1, err := n.AddReaction(r)
	require.NoError(t, err)
	assert.True(t, inserted1)

	ref2, inserted2, err := n.AddReaction(r)
	require.NoError(t, err)
	assert.False(t, inserted2)
	assert.Equal(t, ref1, ref2)
}

func TestNetwork_ConcurrentAdd_SingleInsertion(t *testing.T) {
	n := New()
	const goroutines = 50

	var wg sync.WaitGroup
	refs := make(chan entity.MolRef, goroutines)
	insertions := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref, inserted, err := n.AddMolecule(mol("shared"))
			assert.NoError(t, err)
			refs <- ref
			insertions <- inserted
		}()
	}
	wg.Wait()
	close(refs)
	close(insertions)

	first := <-refs
	for ref := range refs {
		assert.Equal(t, first, ref, "all workers must receive the same ref")
	}

	insertedCount := 0
	for inserted := range insertions {
		if inserted {
			insertedCount++
		}
	}
	assert.Equal(t, 1, insertedCount, "exactly one logical insertion event")
	assert.Equal(t, 1, n.MoleculeCount())
}

func TestNetwork_EachMolecule_InsertionOrder(t *testing.T) {
	n := New()
	keys := []string{"C", "A", "B"}
	for _, k := range keys {
		_, _, err := n.AddMolecule(mol(k))
		require.NoError(t, err)
	}

	var seen []string
	n.EachMolecule(func(_ entity.MolRef, m entity.Molecule) bool {
		seen = append(seen, m.Key())
		return true
	})
	assert.Equal(t, keys, seen, "iteration must replay insertion order")
}

func TestMetaTable_DefaultOverwrite(t *testing.T) {
	tbl := NewMetaTable(entity.KindMolecule)

	require.NoError(t, tbl.Set(0, "x", 1))
	require.NoError(t, tbl.Set(0, "x", 2))

	v, ok := tbl.Get(0, "x")
	require.True(t, ok)
	assert.Equal(t, 2, v, "unbound keys overwrite")
}

func TestMetaTable_BoundResolver(t *testing.T) {
	tbl := NewMetaTable(entity.KindMolecule)
	tbl.BindResolver("gen", func(existing, incoming any) any {
		if existing.(int) < incoming.(int) {
			return existing
		}
		return incoming
	})

	require.NoError(t, tbl.Set(3, "gen", 5))
	require.NoError(t, tbl.Set(3, "gen", 2))
	require.NoError(t, tbl.Set(3, "gen", 9))

	v, _ := tbl.Get(3, "gen")
	assert.Equal(t, 2, v, "min resolver keeps the smallest value")
}

func TestMetaTable_FirstBindingWins(t *testing.T) {
	tbl := NewMetaTable(entity.KindMolecule)
	tbl.BindResolver("x", func(existing, _ any) any { return existing })
	tbl.BindResolver("x", Overwrite) // ignored

	require.NoError(t, tbl.Set(0, "x", "first"))
	require.NoError(t, tbl.Set(0, "x", "second"))

	v, _ := tbl.Get(0, "x")
	assert.Equal(t, "first", v)
}

func TestMetaTable_ResolverPanicIsFatal(t *testing.T) {
	tbl := NewMetaTable(entity.KindReaction)
	tbl.BindResolver("bad", func(_, _ any) any { panic("boom") })

	require.NoError(t, tbl.Set(0, "bad", 1), "first write has no existing value, resolver not invoked")

	err := tbl.Set(0, "bad", 2)
	require.Error(t, err)
	assert.True(t, IsResolverError(err))
}

func TestMetaTable_ConcurrentWrites_PairwiseResolution(t *testing.T) {
	tbl := NewMetaTable(entity.KindMolecule)
	// Sum resolver: commutative, so the end state is deterministic even
	// though the winner order under races is not.
	tbl.BindResolver("count", func(existing, incoming any) any {
		return existing.(int) + incoming.(int)
	})

	const writers = 100
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, tbl.Set(7, "count", 1))
		}()
	}
	wg.Wait()

	v, _ := tbl.Get(7, "count")
	assert.Equal(t, writers, v, "every write must pass through the pairwise resolver exactly once")
}

func TestMetaTable_GetAll(t *testing.T) {
	tbl := NewMetaTable(entity.KindMolecule)
	require.NoError(t, tbl.Set(1, "a", 10))
	require.NoError(t, tbl.Set(1, "b", 20))

	got := tbl.GetAll(1, []string{"a", "b", "missing"})
	assert.Equal(t, map[string]any{"a": 10, "b": 20}, got, "absent keys are omitted, not defaulted")
}

func TestMetaTable_Each_DeterministicOrder(t *testing.T) {
	tbl := NewMetaTable(entity.KindMolecule)
	require.NoError(t, tbl.Set(2, "b", 1))
	require.NoError(t, tbl.Set(0, "z", 2))
	require.NoError(t, tbl.Set(2, "a", 3))
	require.NoError(t, tbl.Set(0, "a", 4))

	var order []string
	tbl.Each(func(ref int, key string, _ any) bool {
		order = append(order, fmt.Sprintf("%d/%s", ref, key))
		return true
	})
	assert.Equal(t, []string{"0/a", "0/z", "2/a", "2/b"}, order)
}

func TestSnapshot_Deterministic(t *testing.T) {
	n := New()
	a, _, _ := n.AddMolecule(mol("A"))
	b, _, _ := n.AddMolecule(mol("B"))
	op, _, _ := n.AddOperator(testOp{key: "combine"})
	c, _, _ := n.AddMolecule(mol("AB"))
	_, _, err := n.AddReaction(entity.Reaction{Operator: op, Reactants: []entity.MolRef{a, b}, Products: []entity.MolRef{c}})
	require.NoError(t, err)
	require.NoError(t, n.MolMeta.Set(int(c), "generation", 1))

	snap := n.Snapshot()
	assert.Equal(t, []string{"A", "B", "AB"}, snap.Molecules)
	assert.Equal(t, []string{"combine"}, snap.Operators)
	require.Len(t, snap.Reactions, 1)
	assert.Equal(t, ReactionLine{Operator: 0, Reactants: []int{0, 1}, Products: []int{2}}, snap.Reactions[0])
	require.Len(t, snap.Metadata, 1)
	assert.Equal(t, MetaLine{Kind: "molecule", Ref: 2, Key: "generation", Value: 1}, snap.Metadata[0])
}

package netdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/retort/network"
	"github.com/roach88/retort/plan"
)

const fullSource = `
network: {
	name: "toy"
	seeds: ["A", "B"]
	helpers: ["B"]
	operators: [{
		name:      "combine"
		patterns:  ["", ""]
		templates: ["$1$2"]
	}, {
		name:      "wrap"
		patterns:  ["A"]
		templates: ["($1)"]
		ordered:   true
	}]
	limits: {
		num_iter:        2
		max_recipes:     100
		beam_size:       5
		heap_size:       50
		workers:         4
		single_reactant: true
	}
}
`

func TestCompileSource_Full(t *testing.T) {
	def, err := CompileSource(fullSource)
	require.NoError(t, err)

	assert.Equal(t, "toy", def.Name)
	assert.Equal(t, []string{"A", "B"}, def.Seeds)
	assert.Equal(t, []string{"B"}, def.Helpers)

	require.Len(t, def.Operators, 2)
	assert.Equal(t, "combine", def.Operators[0].Name)
	assert.False(t, def.Operators[0].Ordered)
	assert.Equal(t, []string{"A"}, def.Operators[1].Patterns)
	assert.True(t, def.Operators[1].Ordered)

	assert.Equal(t, 2, def.Limits.NumIter)
	assert.Equal(t, int64(100), def.Limits.MaxRecipes)
	assert.Equal(t, 5, def.Limits.BeamSize)
	assert.Equal(t, 50, def.Limits.HeapSize)
	assert.Equal(t, 4, def.Limits.Workers)
	assert.True(t, def.Limits.SingleReactant)
}

func TestCompileSource_Minimal(t *testing.T) {
	def, err := CompileSource(`
network: {
	name:  "min"
	seeds: ["X"]
	operators: [{name: "id", patterns: [""], templates: ["$1"]}]
}
`)
	require.NoError(t, err)

	assert.Empty(t, def.Helpers)
	assert.Zero(t, def.Limits)
	assert.False(t, def.Operators[0].Ordered)
}

func TestCompileSource_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing network struct",
			src:  `x: 1`,
			want: "network struct is required",
		},
		{
			name: "missing name",
			src:  `network: {seeds: ["A"], operators: [{name: "o", patterns: [""], templates: ["$1"]}]}`,
			want: "name is required",
		},
		{
			name: "missing seeds",
			src:  `network: {name: "n", operators: [{name: "o", patterns: [""], templates: ["$1"]}]}`,
			want: "at least one seed",
		},
		{
			name: "missing operators",
			src:  `network: {name: "n", seeds: ["A"]}`,
			want: "at least one operator",
		},
		{
			name: "operator without templates",
			src:  `network: {name: "n", seeds: ["A"], operators: [{name: "o", patterns: [""]}]}`,
			want: "product template",
		},
		{
			name: "helper outside seeds",
			src:  `network: {name: "n", seeds: ["A"], helpers: ["Z"], operators: [{name: "o", patterns: [""], templates: ["$1"]}]}`,
			want: "not a seed molecule",
		},
		{
			name: "negative limit",
			src:  `network: {name: "n", seeds: ["A"], operators: [{name: "o", patterns: [""], templates: ["$1"]}], limits: {workers: -1}}`,
			want: "must not be negative",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileSource(tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDefinition_SeedsNetwork(t *testing.T) {
	def, err := CompileSource(fullSource)
	require.NoError(t, err)

	net := network.New()
	require.NoError(t, def.Seed(net))

	assert.Equal(t, 2, net.MoleculeCount())
	assert.Equal(t, 2, net.OperatorCount())

	a, found := net.LookupMolecule("A")
	require.True(t, found)
	gen, ok := net.MolMeta.Get(int(a), plan.DefaultGenerationKey)
	require.True(t, ok)
	assert.Equal(t, 0, gen, "seed molecules start at generation zero")

	helpers, err := def.HelperRefs(net)
	require.NoError(t, err)
	require.Len(t, helpers, 1)

	b, _ := net.LookupMolecule("B")
	assert.Equal(t, b, helpers[0])

	opts, err := def.Options(net)
	require.NoError(t, err)
	assert.Len(t, opts, 5)
}

func TestDefinition_HelperRefsRequireSeeding(t *testing.T) {
	def, err := CompileSource(fullSource)
	require.NoError(t, err)

	_, err = def.HelperRefs(network.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a committed molecule")
}

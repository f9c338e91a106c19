package persist

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/retort/network"
	"github.com/roach88/retort/plan"
	"github.com/roach88/retort/rewrite"
	"github.com/roach88/retort/strategy"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "net.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// expand runs one Cartesian round over seeds A, B with a concat rule.
func expand(t *testing.T) (*network.Network, *strategy.Expansion) {
	t.Helper()
	net := network.New()
	for _, text := range []string{"A", "B"} {
		ref, _, err := net.AddMolecule(rewrite.NewMol(text))
		require.NoError(t, err)
		require.NoError(t, net.MolMeta.Set(int(ref), plan.DefaultGenerationKey, 0))
	}
	_, _, err := net.AddOperator(rewrite.NewRule("combine", []string{"", ""}, []string{"$1$2"}, false))
	require.NoError(t, err)

	exp := strategy.Cartesian(net, rewrite.Transform{}, plan.New(plan.Calc(plan.GenerationCalculator{})), 1)
	_, err = exp.Run(context.Background())
	require.NoError(t, err)
	return net, exp
}

// snapshotJSON renders a snapshot for comparison. JSON normalizes the
// int/float64 split that metadata values pick up crossing persistence.
func snapshotJSON(t *testing.T, net *network.Network) string {
	t.Helper()
	b, err := json.Marshal(net.Snapshot())
	require.NoError(t, err)
	return string(b)
}

func TestStore_RoundTrip(t *testing.T) {
	net, exp := expand(t)
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, net, WithTried(exp.TriedKeys())))

	loaded, tried, err := s.Load(ctx, rewrite.Decoder{})
	require.NoError(t, err)

	assert.Equal(t, snapshotJSON(t, net), snapshotJSON(t, loaded))
	assert.Equal(t, exp.TriedKeys(), tried)
	assert.Equal(t, net.MoleculeCount(), loaded.MoleculeCount())
	assert.Equal(t, net.ReactionCount(), loaded.ReactionCount())
}

func TestStore_ResumeSkipsTriedRecipes(t *testing.T) {
	net, exp := expand(t)
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, net, WithTried(exp.TriedKeys())))
	loaded, tried, err := s.Load(ctx, rewrite.Decoder{})
	require.NoError(t, err)

	resumed := strategy.Cartesian(loaded, rewrite.Transform{},
		plan.New(plan.Calc(plan.GenerationCalculator{})), 1, strategy.WithTried(tried))
	rep, err := resumed.Run(ctx)
	require.NoError(t, err)

	// Round one over {A,B,AA,AB,BB} has 15 pairs, 3 already tried.
	assert.Equal(t, int64(12), rep.Attempts)
	assert.Equal(t, 15, loaded.ReactionCount())
}

func TestStore_SaveReplacesPriorContents(t *testing.T) {
	net, exp := expand(t)
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, net, WithTried(exp.TriedKeys())))
	require.NoError(t, s.Save(ctx, net, WithTried(exp.TriedKeys())))

	loaded, tried, err := s.Load(ctx, rewrite.Decoder{})
	require.NoError(t, err)
	assert.Equal(t, net.MoleculeCount(), loaded.MoleculeCount())
	assert.Len(t, tried, 3)
}

func TestStore_LoadEmpty(t *testing.T) {
	s := openStore(t)

	loaded, tried, err := s.Load(context.Background(), rewrite.Decoder{})
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.MoleculeCount())
	assert.Empty(t, tried)
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

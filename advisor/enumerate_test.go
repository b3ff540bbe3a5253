package advisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbrainlab/autoindex/workload"
)

func testAdvisor(catalog *workload.Catalog, fake *fakeOptimizer, knobs Knobs) *advisor {
	return &advisor{
		catalog:   catalog,
		pool:      NewIndexObjectPool(),
		evaluator: newCostEvaluator(fake),
		knobs:     validateKnobs(knobs),
	}
}

func admissibleOf(t *testing.T, a *advisor, queries ...*workload.Query) *IndexConfiguration {
	cfg := NewIndexConfiguration()
	for _, q := range queries {
		c, err := extractAdmissibleIndexes(q, a.catalog, a.pool)
		require.NoError(t, err)
		cfg.Merge(c)
	}
	return cfg
}

func configStrings(cfg *IndexConfiguration) []string {
	var got []string
	for _, idx := range cfg.List() {
		got = append(got, idx.String())
	}
	return got
}

func TestEnumerateGreedyExtension(t *testing.T) {
	catalog := testCatalog(t)
	fake := newFakeOptimizer()
	a := testAdvisor(catalog, fake, Knobs{MaxIndexCols: 1, EnumerationThreshold: 1, NumIndexes: 3})

	q1 := mustQuery(t, `select * from t where a = 1`)
	q2 := mustQuery(t, `select * from t where b = 2`)
	q3 := mustQuery(t, `select * from t where c = 3`)
	fake.setGain(q1.Text, "t(a)", 50)
	fake.setGain(q2.Text, "t(b)", 60)
	// no index ever helps q3

	w := workload.NewWorkload(q1, q2, q3)
	candidates := admissibleOf(t, a, q1, q2, q3)
	require.Equal(t, 3, candidates.Count())

	got, err := a.enumerate(context.Background(), candidates, w, 3)
	require.NoError(t, err)

	// the seed is {a}; greedy adopts b (strict improvement) and then stops:
	// adding c cannot reduce the workload cost
	require.Equal(t, []string{"test.t(a)", "test.t(b)"}, configStrings(got))
}

func TestEnumerateTruncatesSeed(t *testing.T) {
	catalog := testCatalog(t)
	fake := newFakeOptimizer()
	a := testAdvisor(catalog, fake, Knobs{MaxIndexCols: 1, EnumerationThreshold: 2, NumIndexes: 1})

	q1 := mustQuery(t, `select * from t where a = 1`)
	q2 := mustQuery(t, `select * from t where b = 2`)
	fake.setGain(q1.Text, "t(a)", 50)
	fake.setGain(q2.Text, "t(b)", 50)

	w := workload.NewWorkload(q1, q2)
	candidates := admissibleOf(t, a, q1, q2)

	// the exhaustive seed is {a, b}; k=1 truncates by the stable-key order
	got, err := a.enumerate(context.Background(), candidates, w, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"test.t(a)"}, configStrings(got))
}

func TestEnumerateEmptyCandidates(t *testing.T) {
	catalog := testCatalog(t)
	fake := newFakeOptimizer()
	a := testAdvisor(catalog, fake, Knobs{MaxIndexCols: 1, EnumerationThreshold: 2, NumIndexes: 3})

	got, err := a.enumerate(context.Background(), NewIndexConfiguration(), workload.NewWorkload(), 3)
	require.NoError(t, err)
	require.Equal(t, 0, got.Count())
}

func TestScoredConfigOrdering(t *testing.T) {
	cheapSmall := &scoredConfig{cost: 10, count: 1, key: "a"}
	cheapLarge := &scoredConfig{cost: 10, count: 2, key: "a;b"}
	costly := &scoredConfig{cost: 20, count: 1, key: "a"}
	cheapLater := &scoredConfig{cost: 10, count: 1, key: "b"}

	require.True(t, cheapSmall.betterThan(nil))
	require.True(t, cheapSmall.betterThan(cheapLarge))  // fewer indexes first
	require.True(t, cheapSmall.betterThan(costly))      // cost first
	require.True(t, cheapSmall.betterThan(cheapLater))  // then the stable key
	require.False(t, cheapLater.betterThan(cheapSmall)) // the order is total
}

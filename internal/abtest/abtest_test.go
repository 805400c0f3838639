package abtest

import (
	"fmt"
	"testing"

	"FTJ-Ads-Backend/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAssigner() *Assigner {
	return New(platform.NewMemoryStore(), platform.NewMemoryStore(), DefaultExperiments, zap.NewNop())
}

func TestAssigner_VisitorIDStable(t *testing.T) {
	primary := platform.NewMemoryStore()
	secondary := platform.NewMemoryStore()

	a := New(primary, secondary, DefaultExperiments, zap.NewNop())
	id := a.VisitorID()
	require.NotEmpty(t, id)
	assert.Equal(t, id, a.VisitorID())

	// A fresh assigner over the same stores recovers the same id
	b := New(primary, secondary, DefaultExperiments, zap.NewNop())
	assert.Equal(t, id, b.VisitorID())
}

func TestAssigner_VisitorIDRecoveredFromBackup(t *testing.T) {
	primary := platform.NewMemoryStore()
	secondary := platform.NewMemoryStore()

	a := New(primary, secondary, DefaultExperiments, zap.NewNop())
	id := a.VisitorID()

	// Primary store wiped (cookies cleared); backup still has the id
	require.NoError(t, primary.Delete("ftj_visitor_id"))
	b := New(primary, secondary, DefaultExperiments, zap.NewNop())
	assert.Equal(t, id, b.VisitorID())

	// And the primary is repopulated
	restored, ok := primary.Get("ftj_visitor_id")
	assert.True(t, ok)
	assert.Equal(t, id, restored)
}

func TestAssigner_GetVariantDeterministic(t *testing.T) {
	a := newAssigner()

	first := a.GetVariant("ad_layout")
	require.Contains(t, []string{"control", "compact", "expanded"}, first)

	for i := 0; i < 1000; i++ {
		assert.Equal(t, first, a.GetVariant("ad_layout"))
	}

	// Dropping the cache must not change the assignment
	a.ClearCache()
	assert.Equal(t, first, a.GetVariant("ad_layout"))
}

func TestAssigner_UnknownExperiment(t *testing.T) {
	a := newAssigner()
	assert.Equal(t, "", a.GetVariant("does_not_exist"))
}

func TestAssigner_ForceVariant(t *testing.T) {
	a := newAssigner()

	a.ForceVariant("ad_layout", "expanded")
	assert.Equal(t, "expanded", a.GetVariant("ad_layout"))

	// ClearCache drops the override
	a.ClearCache()
	assert.Equal(t, a.VariantFor(a.VisitorID(), DefaultExperiments[0]), a.GetVariant("ad_layout"))
}

func TestVariantFor_WeightedDistribution(t *testing.T) {
	a := newAssigner()
	exp := Experiment{
		Name:     "ad_layout",
		Variants: []string{"control", "compact", "expanded"},
		Weights:  []float64{0.6, 0.2, 0.2},
	}

	const n = 10000
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		counts[a.VariantFor(fmt.Sprintf("visitor-%d", i), exp)]++
	}

	// FNV spreads uniformly enough that 10k samples land within a few
	// percent of the configured weights
	assert.InDelta(t, 0.6, float64(counts["control"])/n, 0.05)
	assert.InDelta(t, 0.2, float64(counts["compact"])/n, 0.05)
	assert.InDelta(t, 0.2, float64(counts["expanded"])/n, 0.05)
}

func TestVariantFor_UniformWhenWeightsMissing(t *testing.T) {
	a := newAssigner()
	exp := Experiment{Name: "sticky_delay", Variants: []string{"short", "long"}}

	const n = 10000
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		counts[a.VariantFor(fmt.Sprintf("visitor-%d", i), exp)]++
	}

	assert.InDelta(t, 0.5, float64(counts["short"])/n, 0.05)
	assert.InDelta(t, 0.5, float64(counts["long"])/n, 0.05)
}

func TestVariantFor_MismatchedWeightsFallBackToUniform(t *testing.T) {
	a := newAssigner()
	exp := Experiment{
		Name:     "broken",
		Variants: []string{"a", "b"},
		Weights:  []float64{0.5}, // wrong length
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[a.VariantFor(fmt.Sprintf("v-%d", i), exp)] = true
	}
	assert.True(t, seen["a"] && seen["b"])
}

func TestVariantFor_EmptyVariants(t *testing.T) {
	a := newAssigner()
	assert.Equal(t, "", a.VariantFor("anyone", Experiment{Name: "empty"}))
}

func TestVariantFor_IndependentAcrossExperiments(t *testing.T) {
	a := newAssigner()
	expA := Experiment{Name: "exp_a", Variants: []string{"x", "y"}}
	expB := Experiment{Name: "exp_b", Variants: []string{"x", "y"}}

	// The hash input includes the experiment name, so assignments are not
	// correlated across experiments
	diff := 0
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("visitor-%d", i)
		if a.VariantFor(id, expA) != a.VariantFor(id, expB) {
			diff++
		}
	}
	assert.Greater(t, diff, 300)
}

package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/redistrict/grid"
	"github.com/katalvlaran/redistrict/metrics"
	"github.com/katalvlaran/redistrict/relax"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg)

	m, err := grid.FullMask(8, 8)
	require.NoError(t, err)
	g, err := grid.New(m, 2)
	require.NoError(t, err)
	require.NoError(t, g.SetLabel(0, 0, 2)) // 31 vs 33, and district 2 now fragmented

	c.Observe(relax.Stats{
		Iterations:     10,
		Interior:       4,
		ScoreRejected:  3,
		Accepted:       3,
		RandomAccepted: 1,
		Elapsed:        2 * time.Millisecond,
		Stop:           relax.StopDeadline,
	}, g)
	c.Observe(relax.Stats{Iterations: 1, Inactive: 1}, nil)

	expected := `
# HELP redistrict_iterations_total Relaxation iterations by outcome
# TYPE redistrict_iterations_total counter
redistrict_iterations_total{outcome="accepted"} 2
redistrict_iterations_total{outcome="guard_rejected"} 0
redistrict_iterations_total{outcome="inactive"} 1
redistrict_iterations_total{outcome="interior"} 4
redistrict_iterations_total{outcome="no_candidate"} 0
redistrict_iterations_total{outcome="random_accepted"} 1
redistrict_iterations_total{outcome="score_rejected"} 3
# HELP redistrict_district_population Number of cells per district
# TYPE redistrict_district_population gauge
redistrict_district_population{district="1"} 31
redistrict_district_population{district="2"} 33
# HELP redistrict_population_spread Largest minus smallest district population
# TYPE redistrict_population_spread gauge
redistrict_population_spread 2
# HELP redistrict_fragmented_districts Districts that are not a single 8-connected region
# TYPE redistrict_fragmented_districts gauge
redistrict_fragmented_districts 1
# HELP redistrict_updates_total Engine updates by stop reason
# TYPE redistrict_updates_total counter
redistrict_updates_total{stop="budget"} 1
redistrict_updates_total{stop="deadline"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"redistrict_iterations_total",
		"redistrict_district_population",
		"redistrict_population_spread",
		"redistrict_fragmented_districts",
		"redistrict_updates_total",
	))

	n, err := testutil.GatherAndCount(reg, "redistrict_update_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c.Reset()
	n, err = testutil.GatherAndCount(reg, "redistrict_district_population")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New(prometheus.NewRegistry())
		metrics.New(prometheus.NewRegistry())
	})
}

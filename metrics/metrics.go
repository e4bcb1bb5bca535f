// Package metrics exports relaxation progress as Prometheus metrics.
//
// A Collector registers its series on the registry it is given, so several
// sessions (or tests) never collide on the default registry. Observe is
// shaped to be passed to session.Observe directly.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/redistrict/grid"
	"github.com/katalvlaran/redistrict/relax"
)

const namespace = "redistrict"

// Outcome label values for iterationsTotal.
const (
	OutcomeInactive      = "inactive"
	OutcomeInterior      = "interior"
	OutcomeNoCandidate   = "no_candidate"
	OutcomeGuardRejected = "guard_rejected"
	OutcomeScoreRejected = "score_rejected"
	OutcomeAccepted      = "accepted"
	OutcomeRandom        = "random_accepted"
)

// Collector holds the relaxation series.
type Collector struct {
	// iterationsTotal counts iterations by outcome
	iterationsTotal *prometheus.CounterVec

	// updatesTotal counts Update calls by stop reason
	updatesTotal *prometheus.CounterVec

	// updateDuration tracks wall-clock time per Update
	updateDuration prometheus.Histogram

	// population is the current size of each district
	population *prometheus.GaugeVec

	// spread is max minus min district population
	spread prometheus.Gauge

	// fragmented counts districts split into several 8-connected parts
	fragmented prometheus.Gauge
}

// New registers the relaxation series on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		iterationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Relaxation iterations by outcome",
		}, []string{"outcome"}),
		updatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Engine updates by stop reason",
		}, []string{"stop"}),
		updateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Engine update duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms to ~250ms
		}),
		population: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "district_population",
			Help:      "Number of cells per district",
		}, []string{"district"}),
		spread: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "population_spread",
			Help:      "Largest minus smallest district population",
		}),
		fragmented: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fragmented_districts",
			Help:      "Districts that are not a single 8-connected region",
		}),
	}
}

// Observe records one Update's stats and the grid's district sizes.
// A nil grid records only the stats.
// Complexity: O(K + W×H); fragmentation is one labelling sweep over the grid.
func (c *Collector) Observe(st relax.Stats, g *grid.Grid) {
	c.iterationsTotal.WithLabelValues(OutcomeInactive).Add(float64(st.Inactive))
	c.iterationsTotal.WithLabelValues(OutcomeInterior).Add(float64(st.Interior))
	c.iterationsTotal.WithLabelValues(OutcomeNoCandidate).Add(float64(st.NoCandidate))
	c.iterationsTotal.WithLabelValues(OutcomeGuardRejected).Add(float64(st.GuardRejected))
	c.iterationsTotal.WithLabelValues(OutcomeScoreRejected).Add(float64(st.ScoreRejected))
	c.iterationsTotal.WithLabelValues(OutcomeAccepted).Add(float64(st.Accepted - st.RandomAccepted))
	c.iterationsTotal.WithLabelValues(OutcomeRandom).Add(float64(st.RandomAccepted))
	c.updatesTotal.WithLabelValues(st.Stop.String()).Inc()
	c.updateDuration.Observe(st.Elapsed.Seconds())

	if g == nil {
		return
	}
	lo, hi := -1, 0
	for l := 1; l <= g.Districts(); l++ {
		p := g.Population(l)
		c.population.WithLabelValues(strconv.Itoa(l)).Set(float64(p))
		if lo < 0 || p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	c.spread.Set(float64(hi - lo))
	c.fragmented.Set(float64(len(g.Fragmented())))
}

// Reset clears per-district gauges, e.g. after the district count changed.
func (c *Collector) Reset() {
	c.population.Reset()
	c.spread.Set(0)
	c.fragmented.Set(0)
}

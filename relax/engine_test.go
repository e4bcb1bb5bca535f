package relax_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/redistrict/grid"
	"github.com/katalvlaran/redistrict/guard"
	"github.com/katalvlaran/redistrict/metric"
	"github.com/katalvlaran/redistrict/relax"
)

// fullGrid builds a fully active w×h grid with k districts.
func fullGrid(t testing.TB, w, h, k int) *grid.Grid {
	t.Helper()
	m, err := grid.FullMask(w, h)
	require.NoError(t, err)
	g, err := grid.New(m, k)
	require.NoError(t, err)

	return g
}

// diff returns the indices where a and b disagree.
func diff(a, b []int32) []int {
	var out []int
	for i := range a {
		if a[i] != b[i] {
			out = append(out, i)
		}
	}

	return out
}

// checkTotals asserts that the outcome counters sum to Iterations.
func checkTotals(t *testing.T, st relax.Stats) {
	t.Helper()
	sum := st.Inactive + st.Interior + st.NoCandidate + st.GuardRejected + st.ScoreRejected + st.Accepted
	assert.Equal(t, st.Iterations, sum)
	assert.LessOrEqual(t, st.RandomAccepted, st.Accepted)
}

//----------------------------------------------------------------------------//
// Construction
//----------------------------------------------------------------------------//

// TestNew_Errors checks the nil grid and every invalid option.
func TestNew_Errors(t *testing.T) {
	_, err := relax.New(nil)
	assert.ErrorIs(t, err, relax.ErrNilGrid)

	g := fullGrid(t, 8, 8, 2)
	bad := map[string]relax.Option{
		"metric":     relax.WithMetric(metric.Metric(42)),
		"policy":     relax.WithPolicy(guard.Policy(-3)),
		"randomLow":  relax.WithRandomness(-0.1),
		"randomHigh": relax.WithRandomness(1.5),
		"budget":     relax.WithIterationBudget(-1),
		"timeLimit":  relax.WithTimeLimit(-time.Second),
	}
	for name, opt := range bad {
		_, err := relax.New(g, opt)
		assert.ErrorIs(t, err, relax.ErrOptionViolation, name)
	}
}

// TestDefaultOptions pins the interactive defaults.
func TestDefaultOptions(t *testing.T) {
	e, err := relax.New(fullGrid(t, 8, 8, 2))
	require.NoError(t, err)
	o := e.Options()
	assert.Equal(t, metric.Chebyshev, o.Metric)
	assert.Equal(t, guard.NoChecks, o.Policy)
	assert.Zero(t, o.Randomness)
	assert.Equal(t, relax.DefaultIterationBudget, o.IterationBudget)
	assert.Equal(t, relax.DefaultTimeLimit, o.TimeLimit)
	assert.Equal(t, relax.DefaultSeed, o.Seed)
}

// TestSetters applies live changes and rejects invalid ones unchanged.
func TestSetters(t *testing.T) {
	g := fullGrid(t, 8, 8, 2)
	e, err := relax.New(g)
	require.NoError(t, err)
	before := g.Snapshot()

	require.NoError(t, e.SetMetric(metric.Quartic))
	require.NoError(t, e.SetPolicy(guard.ExpensivePathfinding))
	require.NoError(t, e.SetRandomness(0.25))
	require.NoError(t, e.SetIterationBudget(7))
	require.NoError(t, e.SetTimeLimit(0))

	assert.ErrorIs(t, e.SetMetric(metric.Metric(-1)), relax.ErrOptionViolation)
	assert.ErrorIs(t, e.SetPolicy(guard.Policy(99)), relax.ErrOptionViolation)
	assert.ErrorIs(t, e.SetRandomness(2), relax.ErrOptionViolation)
	assert.ErrorIs(t, e.SetIterationBudget(-5), relax.ErrOptionViolation)
	assert.ErrorIs(t, e.SetTimeLimit(-1), relax.ErrOptionViolation)

	o := e.Options()
	assert.Equal(t, metric.Quartic, o.Metric)
	assert.Equal(t, guard.ExpensivePathfinding, o.Policy)
	assert.Equal(t, 0.25, o.Randomness)
	assert.Equal(t, 7, o.IterationBudget)
	assert.Zero(t, o.TimeLimit)
	assert.Equal(t, before, g.Snapshot(), "setters never touch the grid")
}

//----------------------------------------------------------------------------//
// Update scenarios
//----------------------------------------------------------------------------//

// TestUpdate_SingleRandomFlip runs one iteration on a 4×4 grid with two
// horizontal districts. Every sampleable cell borders the other district, so
// exactly one cell must flip.
func TestUpdate_SingleRandomFlip(t *testing.T) {
	g := fullGrid(t, 4, 4, 2)
	before := g.Snapshot()
	p1, p2 := g.Population(1), g.Population(2)
	sx1, sy1 := g.Sums(1)
	sx2, sy2 := g.Sums(2)

	e, err := relax.New(g,
		relax.WithRandomness(1),
		relax.WithIterationBudget(1),
		relax.WithTimeLimit(0),
		relax.WithSeed(99),
	)
	require.NoError(t, err)
	st, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Iterations)
	assert.Equal(t, 1, st.RandomAccepted)
	checkTotals(t, st)

	changed := diff(before, g.Snapshot())
	require.Len(t, changed, 1)
	x, y := g.Coordinate(changed[0])
	from, to := int(before[changed[0]]), g.Label(x, y)
	assert.NotEqual(t, from, to)

	if from == 1 {
		assert.Equal(t, p1-1, g.Population(1))
		assert.Equal(t, p2+1, g.Population(2))
		nx1, ny1 := g.Sums(1)
		nx2, ny2 := g.Sums(2)
		assert.Equal(t, [4]int64{sx1 - int64(x), sy1 - int64(y), sx2 + int64(x), sy2 + int64(y)}, [4]int64{nx1, ny1, nx2, ny2})
	} else {
		assert.Equal(t, p1+1, g.Population(1))
		assert.Equal(t, p2-1, g.Population(2))
		nx1, ny1 := g.Sums(1)
		nx2, ny2 := g.Sums(2)
		assert.Equal(t, [4]int64{sx1 + int64(x), sy1 + int64(y), sx2 - int64(x), sy2 - int64(y)}, [4]int64{nx1, ny1, nx2, ny2})
	}
	require.NoError(t, g.Verify())
}

// TestUpdate_FullyInactive leaves an all-background grid untouched.
func TestUpdate_FullyInactive(t *testing.T) {
	m, err := grid.NewMask(12, 12)
	require.NoError(t, err)
	g, err := grid.New(m, 4)
	require.NoError(t, err)
	before := g.Snapshot()

	e, err := relax.New(g, relax.WithIterationBudget(5000), relax.WithTimeLimit(0))
	require.NoError(t, err)
	st, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000, st.Inactive)
	assert.Equal(t, before, g.Snapshot())
	require.NoError(t, g.Verify())
}

// TestUpdate_IsolatedCell never moves a lone active cell.
func TestUpdate_IsolatedCell(t *testing.T) {
	m, err := grid.NewMask(7, 7)
	require.NoError(t, err)
	m.Set(3, 3, true)
	g, err := grid.New(m, 3)
	require.NoError(t, err)
	before := g.Snapshot()

	e, err := relax.New(g, relax.WithRandomness(1), relax.WithIterationBudget(2000), relax.WithTimeLimit(0))
	require.NoError(t, err)
	st, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Accepted)
	assert.Equal(t, before, g.Snapshot())
	checkTotals(t, st)
}

// TestUpdate_ZeroBudget is a no-op.
func TestUpdate_ZeroBudget(t *testing.T) {
	g := fullGrid(t, 16, 16, 4)
	before := g.Snapshot()
	e, err := relax.New(g, relax.WithIterationBudget(0))
	require.NoError(t, err)
	st, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Iterations)
	assert.Equal(t, relax.StopBudget, st.Stop)
	assert.Equal(t, before, g.Snapshot())
}

// TestUpdate_TinyGrid has no interior to sample.
func TestUpdate_TinyGrid(t *testing.T) {
	g := fullGrid(t, 2, 9, 2)
	e, err := relax.New(g, relax.WithRandomness(1))
	require.NoError(t, err)
	st, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Iterations)
}

// TestUpdate_Deterministic replays the same seed twice.
func TestUpdate_Deterministic(t *testing.T) {
	run := func() ([]int32, relax.Stats) {
		g := fullGrid(t, 24, 24, 5)
		e, err := relax.New(g,
			relax.WithSeed(42),
			relax.WithRandomness(0.1),
			relax.WithPolicy(guard.LocalPathfinding),
			relax.WithIterationBudget(20000),
			relax.WithTimeLimit(0),
		)
		require.NoError(t, err)
		st, err := e.Update(context.Background())
		require.NoError(t, err)
		st.Elapsed = 0

		return g.Snapshot(), st
	}
	a, sa := run()
	b, sb := run()
	assert.Equal(t, a, b)
	assert.Equal(t, sa, sb)
	assert.Positive(t, sa.Accepted)
}

// TestUpdate_Canceled returns immediately on a cancelled context.
func TestUpdate_Canceled(t *testing.T) {
	g := fullGrid(t, 16, 16, 4)
	e, err := relax.New(g)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := e.Update(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, relax.StopCanceled, st.Stop)
	assert.Zero(t, st.Iterations)
}

// TestUpdate_Deadline stops at the first check after the limit elapsed.
func TestUpdate_Deadline(t *testing.T) {
	g := fullGrid(t, 64, 64, 8)
	e, err := relax.New(g, relax.WithIterationBudget(50_000_000), relax.WithTimeLimit(time.Nanosecond))
	require.NoError(t, err)
	st, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, relax.StopDeadline, st.Stop)
	assert.Equal(t, 1024, st.Iterations)
	checkTotals(t, st)
}

// TestStats_Add accumulates counters and keeps the last stop reason.
func TestStats_Add(t *testing.T) {
	var total relax.Stats
	assert.Zero(t, total.AcceptanceRate())
	total.Add(relax.Stats{Iterations: 10, Accepted: 4, Interior: 6, Stop: relax.StopDeadline})
	total.Add(relax.Stats{Iterations: 10, Accepted: 1, ScoreRejected: 9, Stop: relax.StopBudget})
	assert.Equal(t, 20, total.Iterations)
	assert.Equal(t, 5, total.Accepted)
	assert.Equal(t, relax.StopBudget, total.Stop)
	assert.InDelta(t, 0.25, total.AcceptanceRate(), 1e-12)
	assert.Equal(t, "deadline", relax.StopDeadline.String())
	assert.Equal(t, "canceled", relax.StopCanceled.String())
}

//----------------------------------------------------------------------------//
// Long runs under every policy
//----------------------------------------------------------------------------//

// PolicySuite runs many iterations per policy and checks the aggregates.
type PolicySuite struct {
	suite.Suite
}

func (s *PolicySuite) TestAggregatesHold() {
	for _, p := range guard.Policies() {
		for _, m := range metric.All() {
			g := fullGrid(s.T(), 20, 16, 6)
			e, err := relax.New(g,
				relax.WithPolicy(p),
				relax.WithMetric(m),
				relax.WithRandomness(0.05),
				relax.WithIterationBudget(4000),
				relax.WithTimeLimit(0),
			)
			s.Require().NoError(err)
			for round := 0; round < 3; round++ {
				st, err := e.Update(context.Background())
				s.Require().NoError(err)
				s.Equal(4000, st.Iterations)
			}
			s.Require().NoError(g.Verify(), "policy %v metric %v", p, m)
			total := 0
			for l := 1; l <= g.Districts(); l++ {
				total += g.Population(l)
			}
			s.Equal(20*16, total)
		}
	}
}

// TestLocalPathfindingKeepsWindowConnectivity diffs consecutive one-step
// updates and re-checks every accepted change by brute force.
func (s *PolicySuite) TestLocalPathfindingKeepsWindowConnectivity() {
	g := fullGrid(s.T(), 14, 14, 4)
	e, err := relax.New(g,
		relax.WithPolicy(guard.LocalPathfinding),
		relax.WithRandomness(0.5),
		relax.WithIterationBudget(1),
		relax.WithTimeLimit(0),
		relax.WithSeed(5),
	)
	s.Require().NoError(err)

	accepted := 0
	for step := 0; step < 3000; step++ {
		before := g.Snapshot()
		_, err := e.Update(context.Background())
		s.Require().NoError(err)
		changed := diff(before, g.Snapshot())
		if len(changed) == 0 {
			continue
		}
		s.Require().Len(changed, 1)
		accepted++
		x, y := g.Coordinate(changed[0])
		win := window(before, g.Width(), g.Height(), x, y)
		s.False(splitsPair(win, int(before[changed[0]]), g.Label(x, y)), "step %d at (%d,%d)", step, x, y)
	}
	s.Positive(accepted)
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

// window copies the 5×5 neighborhood of (x,y) from a label snapshot; cells
// outside the grid read as Background.
func window(labels []int32, w, h, x, y int) []int {
	win := make([]int, 0, 25)
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			vx, vy := x+dx, y+dy
			if vx < 0 || vx >= w || vy < 0 || vy >= h {
				win = append(win, grid.Background)
				continue
			}
			win = append(win, int(labels[vy*w+vx]))
		}
	}

	return win
}

// splitsPair reports whether some pair of oldLabel cells connected inside the
// 5×5 window stops being connected once the center takes newLabel.
func splitsPair(win []int, oldLabel, newLabel int) bool {
	const side, mid = 5, 12
	after := append([]int(nil), win...)
	after[mid] = newLabel
	reach := func(cells []int, from int) []bool {
		seen := make([]bool, len(cells))
		seen[from] = true
		queue := []int{from}
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			for _, d := range grid.Neighbors8 {
				vx, vy := u%side+d[0], u/side+d[1]
				if vx < 0 || vx >= side || vy < 0 || vy >= side {
					continue
				}
				v := vy*side + vx
				if cells[v] == oldLabel && !seen[v] {
					seen[v] = true
					queue = append(queue, v)
				}
			}
		}
		return seen
	}
	for a := range win {
		if a == mid || win[a] != oldLabel {
			continue
		}
		rb, ra := reach(win, a), reach(after, a)
		for b := range win {
			if b != mid && win[b] == oldLabel && rb[b] && !ra[b] {
				return true
			}
		}
	}

	return false
}

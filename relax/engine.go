package relax

import (
	"context"
	"math/rand"
	"time"

	"github.com/katalvlaran/redistrict/grid"
	"github.com/katalvlaran/redistrict/guard"
	"github.com/katalvlaran/redistrict/metric"
)

// checkMask throttles deadline and context checks to every 1024 iterations.
const checkMask = 1023

// outcome classifies one iteration.
type outcome uint8

const (
	outInactive outcome = iota
	outInterior
	outNoCandidate
	outGuard
	outScore
	outAccepted
	outRandom
)

// Engine runs the relaxation loop over one grid.
type Engine struct {
	grid  *grid.Grid
	opts  Options
	guard *guard.Guard
	rng   *rand.Rand

	// sampling window: x in [marginX, width-marginX), same for y
	marginX, marginY int
	spanX, spanY     int

	candidates [4]int32
}

// New builds an Engine over g, applying any number of functional Options on
// top of DefaultOptions. The engine takes ownership of g: all mutations go
// through it from now on.
// Returns ErrNilGrid or ErrOptionViolation.
func New(g *grid.Grid, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, ErrNilGrid
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	e := &Engine{
		grid:  g,
		opts:  o,
		guard: guard.New(o.Policy),
		rng:   rngFromSeed(o.Seed),
	}
	e.marginX, e.spanX = sampleRange(g.Width())
	e.marginY, e.spanY = sampleRange(g.Height())

	return e, nil
}

// sampleRange returns the border excluded from sampling along an axis of
// length n and the number of sampleable positions (0 when none).
func sampleRange(n int) (margin, span int) {
	switch {
	case n > 2*guard.Radius:
		return guard.Radius, n - 2*guard.Radius
	case n > 2:
		return 1, n - 2
	default:
		return 0, 0
	}
}

// Grid returns the grid the engine mutates.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// Options returns a copy of the active options.
func (e *Engine) Options() Options { return e.opts }

// SetMetric switches the scoring metric without touching the grid.
func (e *Engine) SetMetric(m metric.Metric) error {
	o := e.opts
	WithMetric(m)(&o)
	if o.err != nil {
		return o.err
	}
	e.opts.Metric = m

	return nil
}

// SetPolicy switches the connectivity policy without touching the grid.
func (e *Engine) SetPolicy(p guard.Policy) error {
	o := e.opts
	WithPolicy(p)(&o)
	if o.err != nil {
		return o.err
	}
	e.opts.Policy = p
	e.guard.SetPolicy(p)

	return nil
}

// SetRandomness changes the acceptance override probability.
func (e *Engine) SetRandomness(r float64) error {
	if err := checkRandomness(r); err != nil {
		return err
	}
	e.opts.Randomness = r

	return nil
}

// SetIterationBudget changes the iterations per Update.
func (e *Engine) SetIterationBudget(n int) error {
	o := e.opts
	WithIterationBudget(n)(&o)
	if o.err != nil {
		return o.err
	}
	e.opts.IterationBudget = n

	return nil
}

// SetTimeLimit changes the wall-clock budget per Update.
func (e *Engine) SetTimeLimit(d time.Duration) error {
	o := e.opts
	WithTimeLimit(d)(&o)
	if o.err != nil {
		return o.err
	}
	e.opts.TimeLimit = d

	return nil
}

// Update runs up to IterationBudget relaxation iterations and returns their
// Stats. It stops early when TimeLimit elapses (Stop == StopDeadline, nil
// error) or ctx is cancelled (Stop == StopCanceled, ctx.Err()). Checks happen
// between iterations only, so the grid is always left consistent.
//
// Complexity: O(IterationBudget) iterations, each O(1) plus the guard cost.
func (e *Engine) Update(ctx context.Context) (st Stats, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	defer func() { st.Elapsed = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		st.Stop = StopCanceled
		return st, err
	}
	budget := e.opts.IterationBudget
	if budget <= 0 || e.spanX == 0 || e.spanY == 0 {
		st.Stop = StopBudget
		return st, nil
	}

	var (
		useDeadline bool      // whether we enforce a wall-clock time budget
		deadline    time.Time // absolute deadline if enabled
	)
	if e.opts.TimeLimit > 0 {
		useDeadline = true
		deadline = start.Add(e.opts.TimeLimit)
	}

	for st.Iterations < budget {
		if st.Iterations&checkMask == 0 && st.Iterations > 0 {
			if err := ctx.Err(); err != nil {
				st.Stop = StopCanceled
				return st, err
			}
			if useDeadline && time.Now().After(deadline) {
				st.Stop = StopDeadline
				return st, nil
			}
		}

		x := e.marginX + e.rng.Intn(e.spanX)
		y := e.marginY + e.rng.Intn(e.spanY)
		st.record(e.tryCell(x, y))
	}
	st.Stop = StopBudget

	return st, nil
}

// record bumps the counter for one iteration outcome.
func (s *Stats) record(o outcome) {
	s.Iterations++
	switch o {
	case outInactive:
		s.Inactive++
	case outInterior:
		s.Interior++
	case outNoCandidate:
		s.NoCandidate++
	case outGuard:
		s.GuardRejected++
	case outScore:
		s.ScoreRejected++
	case outRandom:
		s.RandomAccepted++
		s.Accepted++
	case outAccepted:
		s.Accepted++
	}
}

// tryCell performs one relaxation iteration on the interior cell (x,y):
// propose, guard, decide, and apply.
func (e *Engine) tryCell(x, y int) outcome {
	g := e.grid
	labels := g.Labels()
	w := g.Width()
	i := y*w + x

	old := labels[i]
	if old == grid.Background {
		return outInactive
	}
	left, right, up, down := labels[i-1], labels[i+1], labels[i-w], labels[i+w]
	if left == old && right == old && up == old && down == old {
		return outInterior
	}

	n := 0
	for _, c := range [4]int32{left, right, up, down} {
		if c == old || c == grid.Background {
			continue
		}
		dup := false
		for _, seen := range e.candidates[:n] {
			if seen == c {
				dup = true
				break
			}
		}
		if !dup {
			e.candidates[n] = c
			n++
		}
	}
	if n == 0 {
		return outNoCandidate
	}
	cand := e.candidates[e.rng.Intn(n)]
	if cand == old {
		return outNoCandidate
	}

	newLabel, oldLabel := int(cand), int(old)
	if !e.guard.Allow(g, x, y, newLabel, oldLabel) {
		return outGuard
	}

	result := outAccepted
	r := e.opts.Randomness
	if r >= 1 || (r > 0 && e.rng.Float64() < r) {
		result = outRandom
	} else {
		oldScore := Score(g, e.opts.Metric, x, y, oldLabel)
		newScore := Score(g, e.opts.Metric, x, y, newLabel)
		if !(newScore > oldScore) {
			return outScore
		}
	}

	if err := g.SetLabel(x, y, newLabel); err != nil {
		// unreachable for an active cell and a neighbor label in [1,K]
		return outNoCandidate
	}

	return result
}

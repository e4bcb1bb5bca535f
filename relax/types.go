package relax

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/katalvlaran/redistrict/guard"
	"github.com/katalvlaran/redistrict/metric"
)

// Sentinel errors for engine construction and configuration.
var (
	// ErrNilGrid is returned when New receives a nil grid.
	ErrNilGrid = errors.New("relax: grid is nil")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("relax: invalid option supplied")
)

// Defaults mirror an interactive session: one Update per frame.
const (
	DefaultIterationBudget = 100000
	DefaultTimeLimit       = 30 * time.Millisecond
	DefaultSeed            = int64(1234)
)

// Option configures an Engine via functional arguments.
// Invalid values are recorded and surfaced as ErrOptionViolation by New.
type Option func(*Options)

// Options holds the tunables of a relaxation run.
type Options struct {
	// Metric scores distance from a district centroid.
	Metric metric.Metric

	// Policy selects the connectivity guard.
	Policy guard.Policy

	// Randomness is the probability in [0,1] of accepting a guarded proposal
	// without scoring it. 1 accepts every proposal that passes the guard.
	Randomness float64

	// IterationBudget is the number of iterations one Update runs (≥ 0).
	IterationBudget int

	// TimeLimit, if > 0, ends an Update early once elapsed.
	TimeLimit time.Duration

	// Seed initialises the random source; 0 selects defaultRNGSeed.
	Seed int64

	// internal error recorded during option parsing
	err error
}

// DefaultOptions returns Options with:
//   - metric.Chebyshev scoring
//   - guard.NoChecks
//   - Randomness 0 (pure greedy)
//   - DefaultIterationBudget iterations and DefaultTimeLimit per Update
//   - DefaultSeed
func DefaultOptions() Options {
	return Options{
		Metric:          metric.Chebyshev,
		Policy:          guard.NoChecks,
		Randomness:      0,
		IterationBudget: DefaultIterationBudget,
		TimeLimit:       DefaultTimeLimit,
		Seed:            DefaultSeed,
	}
}

// WithMetric selects the distance metric.
func WithMetric(m metric.Metric) Option {
	return func(o *Options) {
		if !m.Valid() {
			o.err = fmt.Errorf("%w: unknown metric %d", ErrOptionViolation, int(m))
			return
		}
		o.Metric = m
	}
}

// WithPolicy selects the connectivity policy.
func WithPolicy(p guard.Policy) Option {
	return func(o *Options) {
		if !p.Valid() {
			o.err = fmt.Errorf("%w: unknown policy %d", ErrOptionViolation, int(p))
			return
		}
		o.Policy = p
	}
}

// WithRandomness sets the acceptance override probability.
//
//	r in [0,1]: valid
//	otherwise (or NaN): ErrOptionViolation
func WithRandomness(r float64) Option {
	return func(o *Options) {
		if err := checkRandomness(r); err != nil {
			o.err = err
			return
		}
		o.Randomness = r
	}
}

// WithIterationBudget sets the iterations per Update. 0 makes Update a no-op.
func WithIterationBudget(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: IterationBudget cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.IterationBudget = n
	}
}

// WithTimeLimit sets the wall-clock budget per Update. 0 disables it.
func WithTimeLimit(d time.Duration) Option {
	return func(o *Options) {
		if d < 0 {
			o.err = fmt.Errorf("%w: TimeLimit cannot be negative (%v)", ErrOptionViolation, d)
			return
		}
		o.TimeLimit = d
	}
}

// WithSeed sets the random seed.
func WithSeed(seed int64) Option {
	return func(o *Options) {
		o.Seed = seed
	}
}

func checkRandomness(r float64) error {
	if math.IsNaN(r) || r < 0 || r > 1 {
		return fmt.Errorf("%w: Randomness must be in [0,1] (%v)", ErrOptionViolation, r)
	}

	return nil
}

// StopReason tells why an Update returned.
type StopReason int

const (
	// StopBudget: the iteration budget was exhausted (or the grid has no interior).
	StopBudget StopReason = iota
	// StopDeadline: TimeLimit elapsed.
	StopDeadline
	// StopCanceled: the context was cancelled.
	StopCanceled
)

// String returns a short lower-case name.
func (r StopReason) String() string {
	switch r {
	case StopDeadline:
		return "deadline"
	case StopCanceled:
		return "canceled"
	default:
		return "budget"
	}
}

// Stats counts the outcome of every iteration of one or more Update calls.
// Iterations equals the sum of all outcome counters.
type Stats struct {
	Iterations int

	Inactive      int // sampled a Background cell
	Interior      int // all four axis neighbors share the label
	NoCandidate   int // no differing non-zero axis neighbor
	GuardRejected int // connectivity guard refused the change
	ScoreRejected int // new score did not strictly improve

	Accepted       int // changes applied, including RandomAccepted
	RandomAccepted int // changes applied by the randomness override

	Elapsed time.Duration
	Stop    StopReason
}

// Add accumulates o into s. Stop takes o's value.
func (s *Stats) Add(o Stats) {
	s.Iterations += o.Iterations
	s.Inactive += o.Inactive
	s.Interior += o.Interior
	s.NoCandidate += o.NoCandidate
	s.GuardRejected += o.GuardRejected
	s.ScoreRejected += o.ScoreRejected
	s.Accepted += o.Accepted
	s.RandomAccepted += o.RandomAccepted
	s.Elapsed += o.Elapsed
	s.Stop = o.Stop
}

// AcceptanceRate returns Accepted / Iterations, or 0 before any iteration.
func (s Stats) AcceptanceRate() float64 {
	if s.Iterations == 0 {
		return 0
	}

	return float64(s.Accepted) / float64(s.Iterations)
}

// Package metric defines the closed set of distance metrics used to score how
// far a cell lies from a district centroid.
//
// Every metric is a pure function of two non-negative deltas a = |x - cx| and
// b = |y - cy|:
//
//	Euclidean  a² + b²
//	Manhattan  (a + b)²
//	Chebyshev  max(a, b)²
//	Cubic      a³ + b³
//	Quartic    a⁴ + b⁴
//
// Dispatch is a switch over the Metric tag, so the type stays comparable and
// free of function values. Higher powers penalise outlying cells more and
// produce rounder districts; Chebyshev favours square-ish shapes.
package metric

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMetric is returned by Parse for unrecognised names.
var ErrUnknownMetric = errors.New("metric: unknown distance metric")

// Metric selects a distance function.
type Metric int

const (
	// Euclidean scores a² + b².
	Euclidean Metric = iota
	// Manhattan scores (a + b)².
	Manhattan
	// Chebyshev (max-norm) scores max(a, b)².
	Chebyshev
	// Cubic scores a³ + b³.
	Cubic
	// Quartic scores a⁴ + b⁴.
	Quartic
)

var names = [...]string{
	Euclidean: "euclidean",
	Manhattan: "manhattan",
	Chebyshev: "chebyshev",
	Cubic:     "cubic",
	Quartic:   "quartic",
}

// aliases maps alternative spellings onto canonical metrics.
var aliases = map[string]Metric{
	"euclidian":  Euclidean,
	"l2":         Euclidean,
	"manhatten":  Manhattan,
	"l1":         Manhattan,
	"max":        Chebyshev,
	"max-norm":   Chebyshev,
	"max_norm":   Chebyshev,
	"linf":       Chebyshev,
	"power3":     Cubic,
	"power_3":    Cubic,
	"power4":     Quartic,
	"power_4":    Quartic,
	"euclidean":  Euclidean,
	"manhattan":  Manhattan,
	"chebyshev":  Chebyshev,
	"cubic":      Cubic,
	"quartic":    Quartic,
}

// All returns every metric in declaration order.
func All() []Metric {
	return []Metric{Euclidean, Manhattan, Chebyshev, Cubic, Quartic}
}

// Valid reports whether m is one of the declared metrics.
func (m Metric) Valid() bool {
	return m >= Euclidean && m <= Quartic
}

// String returns the canonical lower-case name.
func (m Metric) String() string {
	if !m.Valid() {
		return fmt.Sprintf("metric(%d)", int(m))
	}

	return names[m]
}

// Next returns the following metric, wrapping after Quartic.
func (m Metric) Next() Metric {
	if !m.Valid() || m == Quartic {
		return Euclidean
	}

	return m + 1
}

// Parse resolves a metric name case-insensitively, accepting the canonical
// names and common aliases ("max-norm", "power3", "l1", ...).
func Parse(s string) (Metric, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if m, ok := aliases[key]; ok {
		return m, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Eval computes the metric over non-negative deltas a and b.
// An invalid Metric evaluates as Euclidean.
// Complexity: O(1), no allocations.
func (m Metric) Eval(a, b float64) float64 {
	switch m {
	case Manhattan:
		s := a + b
		return s * s
	case Chebyshev:
		if b > a {
			a = b
		}
		return a * a
	case Cubic:
		return a*a*a + b*b*b
	case Quartic:
		a2, b2 := a*a, b*b
		return a2*a2 + b2*b2
	default:
		return a*a + b*b
	}
}

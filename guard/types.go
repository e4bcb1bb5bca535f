package guard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned by Parse for unrecognised names.
var ErrUnknownPolicy = errors.New("guard: unknown connectivity policy")

// Radius is the half-width of the local window and the line-of-sight reach.
const Radius = 2

const (
	windowSide  = 2*Radius + 1
	windowCells = windowSide * windowSide
	windowMid   = windowCells / 2
)

// Policy selects how strictly a proposed change is checked.
type Policy int

const (
	// NoChecks accepts every change.
	NoChecks Policy = iota
	// LineOfSight probes one cell toward the new district's centroid.
	LineOfSight
	// LocalPathfinding preserves 8-connectivity inside the local window.
	LocalPathfinding
	// ExpensivePathfinding verifies centroid reachability for the 3×3 neighborhood.
	ExpensivePathfinding
)

var policyNames = [...]string{
	NoChecks:             "none",
	LineOfSight:          "line-of-sight",
	LocalPathfinding:     "local-pathfinding",
	ExpensivePathfinding: "expensive-pathfinding",
}

var policyAliases = map[string]Policy{
	"none":                  NoChecks,
	"no-checks":             NoChecks,
	"no_checks":             NoChecks,
	"line-of-sight":         LineOfSight,
	"line_of_sight":         LineOfSight,
	"los":                   LineOfSight,
	"local-pathfinding":     LocalPathfinding,
	"local_pathfinding":     LocalPathfinding,
	"local":                 LocalPathfinding,
	"expensive-pathfinding": ExpensivePathfinding,
	"expensive_pathfinding": ExpensivePathfinding,
	"expensive":             ExpensivePathfinding,
}

// Policies returns every policy in declaration order.
func Policies() []Policy {
	return []Policy{NoChecks, LineOfSight, LocalPathfinding, ExpensivePathfinding}
}

// Valid reports whether p is a declared policy.
func (p Policy) Valid() bool {
	return p >= NoChecks && p <= ExpensivePathfinding
}

// String returns the canonical kebab-case name.
func (p Policy) String() string {
	if !p.Valid() {
		return fmt.Sprintf("policy(%d)", int(p))
	}

	return policyNames[p]
}

// Next returns the following policy, wrapping after ExpensivePathfinding.
func (p Policy) Next() Policy {
	if !p.Valid() || p == ExpensivePathfinding {
		return NoChecks
	}

	return p + 1
}

// Parse resolves a policy name case-insensitively.
func Parse(s string) (Policy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if p, ok := policyAliases[key]; ok {
		return p, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

package guard

import "github.com/katalvlaran/redistrict/grid"

// Guard evaluates one Policy and owns the scratch space its checks need.
type Guard struct {
	policy Policy

	// local window scratch
	window  [windowCells]int32
	visited [windowCells]bool
	stack   [windowCells]int8
	before  [windowCells]int8
	after   [windowCells]int8
	pairing [windowCells]int8

	// full-grid BFS scratch; stamp[i]==gen marks i as visited in the current search
	stamp []uint32
	gen   uint32
	queue []int32
}

// New returns a Guard for policy. An invalid policy behaves as NoChecks.
func New(policy Policy) *Guard {
	if !policy.Valid() {
		policy = NoChecks
	}

	return &Guard{policy: policy}
}

// Policy returns the active policy.
func (gd *Guard) Policy() Policy { return gd.policy }

// SetPolicy switches the active policy. An invalid policy is ignored.
func (gd *Guard) SetPolicy(p Policy) {
	if p.Valid() {
		gd.policy = p
	}
}

// Allow reports whether relabeling (x,y) from oldLabel to newLabel is
// admissible under the active policy. Callers pass a border cell with
// newLabel != oldLabel, both labels non-zero and populated.
// The grid is never modified.
func (gd *Guard) Allow(g *grid.Grid, x, y, newLabel, oldLabel int) bool {
	switch gd.policy {
	case LineOfSight:
		return lineOfSight(g, x, y, newLabel)
	case LocalPathfinding:
		return gd.localConnected(g, x, y, newLabel, oldLabel)
	case ExpensivePathfinding:
		return gd.reachesCentroids(g, x, y, newLabel)
	default:
		return true
	}
}

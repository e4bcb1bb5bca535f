package guard_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/redistrict/grid"
	"github.com/katalvlaran/redistrict/guard"
)

//----------------------------------------------------------------------------//
// Policy names
//----------------------------------------------------------------------------//

// TestParse verifies canonical names, aliases and unknown names.
func TestParse(t *testing.T) {
	for _, p := range guard.Policies() {
		got, err := guard.Parse(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	for name, want := range map[string]guard.Policy{
		"NO_CHECKS":             guard.NoChecks,
		"LINE_OF_SIGHT":         guard.LineOfSight,
		"LOCAL_PATHFINDING":     guard.LocalPathfinding,
		"EXPENSIVE_PATHFINDING": guard.ExpensivePathfinding,
		" los ":                 guard.LineOfSight,
	} {
		got, err := guard.Parse(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := guard.Parse("strict")
	assert.ErrorIs(t, err, guard.ErrUnknownPolicy)
	assert.Equal(t, guard.NoChecks, guard.ExpensivePathfinding.Next())
}

// TestNew_InvalidPolicy falls back to NoChecks and ignores invalid switches.
func TestNew_InvalidPolicy(t *testing.T) {
	gd := guard.New(guard.Policy(9))
	assert.Equal(t, guard.NoChecks, gd.Policy())
	gd.SetPolicy(guard.Policy(-1))
	assert.Equal(t, guard.NoChecks, gd.Policy())
	gd.SetPolicy(guard.LocalPathfinding)
	assert.Equal(t, guard.LocalPathfinding, gd.Policy())
}

//----------------------------------------------------------------------------//
// NoChecks / LineOfSight
//----------------------------------------------------------------------------//

// TestNoChecks always admits the change.
func TestNoChecks(t *testing.T) {
	g := paint(t, halves(9, 5), 2)
	assert.True(t, guard.New(guard.NoChecks).Allow(g, 4, 4, 2, 1))
}

// TestLineOfSight_Accepts probes two cells toward the neighbor centroid.
//
// Columns 0..4 hold 1, columns 5..8 hold 2. From (4,4) the centroid of 2 lies
// at x=6.5, so the probe lands on (6,4), which holds 2. Symmetrically (5,4)
// probes (3,4) toward the centroid of 1.
func TestLineOfSight_Accepts(t *testing.T) {
	g := paint(t, halves(9, 5), 2)
	gd := guard.New(guard.LineOfSight)
	assert.True(t, gd.Allow(g, 4, 4, 2, 1))
	assert.True(t, gd.Allow(g, 5, 4, 1, 2))
}

// TestLineOfSight_Rejects blocks the probe cell with the old label.
func TestLineOfSight_Rejects(t *testing.T) {
	rows := halves(9, 5)
	rows[4][6] = 1
	g := paint(t, rows, 2)
	gd := guard.New(guard.LineOfSight)
	assert.False(t, gd.Allow(g, 4, 4, 2, 1))
}

//----------------------------------------------------------------------------//
// LocalPathfinding
//----------------------------------------------------------------------------//

// TestLocalPathfinding_RejectsCut removes the middle of a one-cell-thick line.
//
//	2 2 2 2 2 2 2
//	2 2 2 2 2 2 2
//	2 2 2 2 2 2 2
//	1 1 1 X 1 1 1   X: (3,3) would become 2
//	2 2 2 2 2 2 2
//	...
func TestLocalPathfinding_RejectsCut(t *testing.T) {
	rows := make([][]int, 7)
	for y := range rows {
		rows[y] = []int{2, 2, 2, 2, 2, 2, 2}
	}
	rows[3] = []int{1, 1, 1, 1, 1, 1, 1}
	g := paint(t, rows, 2)

	gd := guard.New(guard.LocalPathfinding)
	before := g.Snapshot()
	assert.False(t, gd.Allow(g, 3, 3, 2, 1))
	assert.Equal(t, before, g.Snapshot(), "guard must not mutate the grid")
}

// TestLocalPathfinding_AcceptsThickBand keeps a diagonal bridge alive: in a
// two-row band, removing (3,3) leaves (2,3)-(3,4)-(4,3) connected.
func TestLocalPathfinding_AcceptsThickBand(t *testing.T) {
	rows := make([][]int, 7)
	for y := range rows {
		rows[y] = []int{2, 2, 2, 2, 2, 2, 2}
	}
	rows[3] = []int{1, 1, 1, 1, 1, 1, 1}
	rows[4] = []int{1, 1, 1, 1, 1, 1, 1}
	g := paint(t, rows, 2)

	assert.True(t, guard.New(guard.LocalPathfinding).Allow(g, 3, 3, 2, 1))
}

// TestLocalPathfinding_MatchesPairwise compares the guard against a brute
// force pairwise reachability check on random 5×5 windows.
func TestLocalPathfinding_MatchesPairwise(t *testing.T) {
	const side = 5
	r := rand.New(rand.NewSource(7))
	gd := guard.New(guard.LocalPathfinding)

	checked := 0
	for trial := 0; trial < 400; trial++ {
		rows := make([][]int, side)
		win := make([]int, 0, side*side)
		for y := range rows {
			rows[y] = make([]int, side)
			for x := range rows[y] {
				rows[y][x] = 1 + r.Intn(3)
				win = append(win, rows[y][x])
			}
		}
		oldLabel := rows[2][2]
		for _, d := range grid.Neighbors4 {
			newLabel := rows[2+d[1]][2+d[0]]
			if newLabel == oldLabel {
				continue
			}
			g := paint(t, rows, 3)
			want := !splitsPair(win, side, oldLabel, newLabel)
			assert.Equal(t, want, gd.Allow(g, 2, 2, newLabel, oldLabel), "trial %d: %v", trial, rows)
			checked++
		}
	}
	require.Positive(t, checked)
}

//----------------------------------------------------------------------------//
// ExpensivePathfinding
//----------------------------------------------------------------------------//

// stripe returns a 7×7 layout of 2 with row 3 holding 1.
func stripe() [][]int {
	rows := make([][]int, 7)
	for y := range rows {
		rows[y] = []int{2, 2, 2, 2, 2, 2, 2}
	}
	rows[3] = []int{1, 1, 1, 1, 1, 1, 1}

	return rows
}

// TestExpensivePathfinding_RejectsCutOff: turning (1,3) into 2 strands (0,3)
// away from the centroid (3,3) of district 1.
func TestExpensivePathfinding_RejectsCutOff(t *testing.T) {
	g := paint(t, stripe(), 2)
	gd := guard.New(guard.ExpensivePathfinding)
	before := g.Snapshot()
	assert.False(t, gd.Allow(g, 1, 3, 2, 1))
	assert.Equal(t, before, g.Snapshot(), "tentative change must be reverted")
	require.NoError(t, g.Verify())
}

// TestExpensivePathfinding_Accepts: growing district 1 upward at (3,2) keeps
// all nine neighborhood cells connected to their centroids.
func TestExpensivePathfinding_Accepts(t *testing.T) {
	g := paint(t, stripe(), 2)
	gd := guard.New(guard.ExpensivePathfinding)
	assert.True(t, gd.Allow(g, 3, 2, 1, 2))
	// Repeated searches reuse the stamp buffer.
	for i := 0; i < 10; i++ {
		assert.True(t, gd.Allow(g, 3, 4, 1, 2))
		assert.False(t, gd.Allow(g, 5, 3, 2, 1))
	}
}

// TestExpensivePathfinding_GridResize reallocates scratch for a new grid size.
func TestExpensivePathfinding_GridResize(t *testing.T) {
	gd := guard.New(guard.ExpensivePathfinding)
	small := paint(t, stripe(), 2)
	assert.False(t, gd.Allow(small, 1, 3, 2, 1))

	big := paint(t, halves(11, 6), 2)
	assert.True(t, gd.Allow(big, 5, 5, 2, 1))
}

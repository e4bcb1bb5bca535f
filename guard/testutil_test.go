// Package guard_test provides helpers shared across the guard tests.
package guard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/redistrict/grid"
)

// paint builds a Grid whose labels equal rows[y][x]. Zero cells are inactive;
// every other cell is relabeled through SetLabel so aggregates stay exact.
func paint(t *testing.T, rows [][]int, k int) *grid.Grid {
	t.Helper()
	active := make([][]bool, len(rows))
	for y, row := range rows {
		active[y] = make([]bool, len(row))
		for x, l := range row {
			active[y][x] = l != grid.Background
		}
	}
	m, err := grid.MaskFrom2D(active)
	require.NoError(t, err)
	g, err := grid.New(m, k)
	require.NoError(t, err)
	for y, row := range rows {
		for x, l := range row {
			if l != grid.Background {
				require.NoError(t, g.SetLabel(x, y, l))
			}
		}
	}
	require.NoError(t, g.Verify())

	return g
}

// halves returns an n×n layout with columns < split holding 1 and the rest 2.
func halves(n, split int) [][]int {
	rows := make([][]int, n)
	for y := range rows {
		rows[y] = make([]int, n)
		for x := range rows[y] {
			if x < split {
				rows[y][x] = 1
			} else {
				rows[y][x] = 2
			}
		}
	}

	return rows
}

// windowConnected reports whether window cells a and b (indices into a
// side×side window) are 8-connected through cells equal to label.
func windowConnected(win []int, side, label, a, b int) bool {
	seen := make([]bool, len(win))
	queue := []int{a}
	seen[a] = true
	for qi := 0; qi < len(queue); qi++ {
		u := queue[qi]
		if u == b {
			return true
		}
		ux, uy := u%side, u/side
		for _, d := range grid.Neighbors8 {
			vx, vy := ux+d[0], uy+d[1]
			if vx < 0 || vx >= side || vy < 0 || vy >= side {
				continue
			}
			v := vy*side + vx
			if win[v] == label && !seen[v] {
				seen[v] = true
				queue = append(queue, v)
			}
		}
	}

	return false
}

// splitsPair reports whether relabeling the window center from oldLabel to
// newLabel disconnects some pair of oldLabel cells that were connected.
func splitsPair(win []int, side, oldLabel, newLabel int) bool {
	mid := len(win) / 2
	before := append([]int(nil), win...)
	before[mid] = oldLabel
	after := append([]int(nil), win...)
	after[mid] = newLabel
	for a := 0; a < len(win); a++ {
		for b := 0; b < a; b++ {
			if a == mid || b == mid || before[a] != oldLabel || before[b] != oldLabel {
				continue
			}
			if windowConnected(before, side, oldLabel, a, b) && !windowConnected(after, side, oldLabel, a, b) {
				return true
			}
		}
	}

	return false
}

package guard

import "github.com/katalvlaran/redistrict/grid"

// localConnected snapshots the window around (x,y), labels the 8-connected
// components of oldLabel before and after the center takes newLabel, and
// rejects the change if any component splits.
//
// Window layout (windowMid is the candidate cell):
//
//	 0  1  2  3  4
//	 5  6  7  8  9
//	10 11 12 13 14
//	15 16 17 18 19
//	20 21 22 23 24
//
// Cells outside the grid read as Background.
func (gd *Guard) localConnected(g *grid.Grid, x, y, newLabel, oldLabel int) bool {
	for dy := -Radius; dy <= Radius; dy++ {
		row := (dy + Radius) * windowSide
		for dx := -Radius; dx <= Radius; dx++ {
			gd.window[row+dx+Radius] = int32(g.Label(x+dx, y+dy))
		}
	}

	old := int32(oldLabel)
	gd.window[windowMid] = old
	gd.components(old, &gd.before)
	gd.window[windowMid] = int32(newLabel)
	gd.components(old, &gd.after)

	// Every before-component must land in exactly one after-component.
	for i := range gd.pairing {
		gd.pairing[i] = -1
	}
	for i := 0; i < windowCells; i++ {
		b := gd.before[i]
		if i == windowMid || b < 0 {
			continue
		}
		a := gd.after[i]
		switch gd.pairing[b] {
		case -1:
			gd.pairing[b] = a
		case a:
		default:
			return false
		}
	}

	return true
}

// components writes into comp the component id of every window cell holding
// label, or -1 for other cells, using an explicit-stack DFS over the shared
// visited flags. Returns the number of components.
func (gd *Guard) components(label int32, comp *[windowCells]int8) int {
	for i := range gd.visited {
		gd.visited[i] = false
		comp[i] = -1
	}

	var n int8
	for start := 0; start < windowCells; start++ {
		if gd.window[start] != label || gd.visited[start] {
			continue
		}
		gd.visited[start] = true
		gd.stack[0] = int8(start)
		top := 1
		for top > 0 {
			top--
			u := int(gd.stack[top])
			comp[u] = n
			ux, uy := u%windowSide, u/windowSide
			for _, d := range grid.Neighbors8 {
				vx, vy := ux+d[0], uy+d[1]
				if vx < 0 || vx >= windowSide || vy < 0 || vy >= windowSide {
					continue
				}
				v := vy*windowSide + vx
				if gd.window[v] == label && !gd.visited[v] {
					gd.visited[v] = true
					gd.stack[top] = int8(v)
					top++
				}
			}
		}
		n++
	}

	return int(n)
}

package guard

import "github.com/katalvlaran/redistrict/grid"

// reachesCentroids runs, for each cell of the 3×3 neighborhood of (x,y), a
// full-grid BFS toward its district's integer centroid while treating (x,y)
// as already holding newLabel. Centroids are taken from the current
// aggregates, i.e. before the change.
func (gd *Guard) reachesCentroids(g *grid.Grid, x, y, newLabel int) bool {
	if n := g.Width() * g.Height(); len(gd.stamp) != n {
		gd.stamp = make([]uint32, n)
		gd.queue = make([]int32, 0, 64)
		gd.gen = 0
	}
	center := g.Index(x, y)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if !gd.reachesCentroid(g, x+dx, y+dy, center, int32(newLabel)) {
				return false
			}
		}
	}

	return true
}

// reachesCentroid reports whether (sx,sy) can reach its district's centroid
// through 8-connected cells of the same label. The search succeeds as soon
// as the centroid cell is adjacent to a reached cell, whatever the centroid
// cell's own label. Background and out-of-grid cells trivially succeed.
// Complexity: O(W·H·8) time; memory is the Guard's reusable stamp and queue.
func (gd *Guard) reachesCentroid(g *grid.Grid, sx, sy, center int, override int32) bool {
	if !g.InBounds(sx, sy) {
		return true
	}
	w := g.Width()
	labels := g.Labels()
	at := func(i int) int32 {
		if i == center {
			return override
		}
		return labels[i]
	}

	si := sy*w + sx
	label := at(si)
	if label == grid.Background {
		return true
	}
	tx, ty, ok := g.Centroid(int(label))
	if !ok || (tx == sx && ty == sy) {
		return true
	}

	gd.gen++
	if gd.gen == 0 {
		// stamp counter wrapped; clear so stale marks cannot alias
		for i := range gd.stamp {
			gd.stamp[i] = 0
		}
		gd.gen = 1
	}
	gen := gd.gen
	gd.stamp[si] = gen
	queue := append(gd.queue[:0], int32(si))

	for qi := 0; qi < len(queue); qi++ {
		ux, uy := g.Coordinate(int(queue[qi]))
		for _, d := range grid.Neighbors8 {
			vx, vy := ux+d[0], uy+d[1]
			if vx == tx && vy == ty {
				gd.queue = queue
				return true
			}
			if !g.InBounds(vx, vy) {
				continue
			}
			vi := vy*w + vx
			if gd.stamp[vi] != gen && at(vi) == label {
				gd.stamp[vi] = gen
				queue = append(queue, int32(vi))
			}
		}
	}
	gd.queue = queue

	return false
}

package grid

// Components finds all 8-connected regions of cells holding label.
// Returns a slice of components; each component is a slice of row-major
// cell indices in BFS order. Components are ordered by their first cell in
// row-major scan order. Use Coordinate to convert an index back to (x,y).
//
// Time:   O(W·H·8).
// Memory: O(W·H) for visited flags and output.
func (g *Grid) Components(label int) [][]int {
	total := g.width * g.height
	seen := make([]bool, total)
	want := int32(label)
	var comps [][]int

	for i0 := 0; i0 < total; i0++ {
		if g.labels[i0] != want || seen[i0] {
			continue
		}
		// BFS to collect component
		queue := []int{i0}
		seen[i0] = true
		for qi := 0; qi < len(queue); qi++ {
			ux, uy := g.Coordinate(queue[qi])
			for _, d := range Neighbors8 {
				vx, vy := ux+d[0], uy+d[1]
				if !g.InBounds(vx, vy) {
					continue
				}
				vi := vx + vy*g.width
				if g.labels[vi] == want && !seen[vi] {
					seen[vi] = true
					queue = append(queue, vi)
				}
			}
		}
		comps = append(comps, queue)
	}

	return comps
}

// Fragmented returns, in ascending order, every district label whose cells
// form more than one 8-connected component.
// It labels all districts in one sweep with a single visited buffer.
// Complexity: O(W·H·8) time, O(W·H) memory.
func (g *Grid) Fragmented() []int {
	total := g.width * g.height
	seen := make([]bool, total)
	count := make([]int, g.districts+1)
	var queue []int

	for i0 := 0; i0 < total; i0++ {
		want := g.labels[i0]
		if want == Background || seen[i0] {
			continue
		}
		count[want]++
		queue = append(queue[:0], i0)
		seen[i0] = true
		for qi := 0; qi < len(queue); qi++ {
			ux, uy := g.Coordinate(queue[qi])
			for _, d := range Neighbors8 {
				vx, vy := ux+d[0], uy+d[1]
				if !g.InBounds(vx, vy) {
					continue
				}
				vi := vx + vy*g.width
				if g.labels[vi] == want && !seen[vi] {
					seen[vi] = true
					queue = append(queue, vi)
				}
			}
		}
	}

	var out []int
	for l := 1; l <= g.districts; l++ {
		if count[l] > 1 {
			out = append(out, l)
		}
	}

	return out
}

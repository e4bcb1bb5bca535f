package grid

import (
	"fmt"
	"math"
)

// New builds a Grid from mask with k districts. k < 1 is clamped to 1.
// Active cells receive an initial label by spatial bucketing (see package doc);
// inactive cells receive Background. Aggregates for every label, including
// Background, are then filled by one full scan.
//
// Returns ErrEmptyMask or ErrMaskShape for a malformed mask; on error no Grid
// is returned, so callers never observe a partially built state.
// Complexity: O(W×H) time and memory.
func New(mask Mask, k int) (*Grid, error) {
	if err := mask.validate(); err != nil {
		return nil, err
	}
	if k < 1 {
		k = 1
	}

	w, h := mask.Width, mask.Height
	dcx := int(math.Round(math.Sqrt(float64(k))))
	if dcx < 1 {
		dcx = 1
	}
	dcy := (k + dcx - 1) / dcx

	g := &Grid{
		width:      w,
		height:     h,
		districts:  k,
		labels:     make([]int32, w*h),
		population: make([]int, k+1),
		sumX:       make([]int64, k+1),
		sumY:       make([]int64, k+1),
	}

	for y := 0; y < h; y++ {
		cellY := y * dcy / h
		for x := 0; x < w; x++ {
			i := y*w + x
			if !mask.Active[i] {
				continue
			}
			label := 1 + x*dcx/w + cellY*dcx
			if label > k {
				label = k
			}
			g.labels[i] = int32(label)
		}
	}
	g.recount()

	return g, nil
}

// recount rebuilds population and centroid sums from the labels.
func (g *Grid) recount() {
	for l := range g.population {
		g.population[l] = 0
		g.sumX[l] = 0
		g.sumY[l] = 0
	}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			l := g.labels[y*g.width+x]
			g.population[l]++
			g.sumX[l] += int64(x)
			g.sumY[l] += int64(y)
		}
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Districts returns K, the highest valid district label.
func (g *Grid) Districts() int { return g.districts }

// InBounds reports whether (x,y) lies within the grid boundaries.
// Complexity: O(1).
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Index maps (x,y) to a row-major index: y*Width + x.
func (g *Grid) Index(x, y int) int {
	return y*g.width + x
}

// Coordinate converts a row-major index back to (x,y).
func (g *Grid) Coordinate(idx int) (x, y int) {
	return idx % g.width, idx / g.width
}

// Label returns the label at (x,y), or Background when out of bounds.
func (g *Grid) Label(x, y int) int {
	if !g.InBounds(x, y) {
		return Background
	}

	return int(g.labels[y*g.width+x])
}

// Labels exposes the row-major label array for read-only hot-path access.
// Callers must not modify it; use SetLabel.
func (g *Grid) Labels() []int32 {
	return g.labels
}

// Snapshot returns a copy of the label array.
func (g *Grid) Snapshot() []int32 {
	out := make([]int32, len(g.labels))
	copy(out, g.labels)

	return out
}

// Population returns the number of cells holding label, 0 for labels outside [0, K].
func (g *Grid) Population(label int) int {
	if label < 0 || label > g.districts {
		return 0
	}

	return g.population[label]
}

// Sums returns the coordinate sums of label.
func (g *Grid) Sums(label int) (sumX, sumY int64) {
	if label < 0 || label > g.districts {
		return 0, 0
	}

	return g.sumX[label], g.sumY[label]
}

// Centroid returns the integer-divided centroid of label. ok is false when
// the label is empty or out of range.
func (g *Grid) Centroid(label int) (x, y int, ok bool) {
	if label < 0 || label > g.districts || g.population[label] == 0 {
		return 0, 0, false
	}
	p := int64(g.population[label])

	return int(g.sumX[label] / p), int(g.sumY[label] / p), true
}

// CentroidF returns the real-valued centroid of label. The result is
// undefined (NaN) for an empty label; callers must check Population first.
func (g *Grid) CentroidF(label int) (x, y float64) {
	p := float64(g.population[label])

	return float64(g.sumX[label]) / p, float64(g.sumY[label]) / p
}

// SetLabel relabels the active cell (x,y) to label, moving the cell's
// contribution between the aggregates of the old and the new label.
// Setting the current label is a no-op.
//
// Returns ErrOutOfBounds, ErrInactiveCell (current label is Background) or
// ErrLabelRange (label outside [1, K]); the grid is untouched on error.
// Complexity: O(1).
func (g *Grid) SetLabel(x, y, label int) error {
	if !g.InBounds(x, y) {
		return ErrOutOfBounds
	}
	if label < 1 || label > g.districts {
		return ErrLabelRange
	}
	i := y*g.width + x
	old := int(g.labels[i])
	if old == Background {
		return ErrInactiveCell
	}
	if old == label {
		return nil
	}

	g.population[old]--
	g.sumX[old] -= int64(x)
	g.sumY[old] -= int64(y)
	g.population[label]++
	g.sumX[label] += int64(x)
	g.sumY[label] += int64(y)
	g.labels[i] = int32(label)

	return nil
}

// Verify recomputes every aggregate from the labels and compares it with the
// maintained values. It returns an error wrapping ErrInvariant on the first
// mismatch, or nil when population is conserved, every label is within
// [0, K], and all centroid sums agree.
// Complexity: O(W×H + K).
func (g *Grid) Verify() error {
	k := g.districts
	pop := make([]int, k+1)
	sx := make([]int64, k+1)
	sy := make([]int64, k+1)
	for i, l := range g.labels {
		if l < 0 || int(l) > k {
			x, y := g.Coordinate(i)
			return fmt.Errorf("%w: label %d at (%d,%d) outside [0,%d]", ErrInvariant, l, x, y, k)
		}
		x, y := g.Coordinate(i)
		pop[l]++
		sx[l] += int64(x)
		sy[l] += int64(y)
	}

	total := 0
	for l := 0; l <= k; l++ {
		total += g.population[l]
		if pop[l] != g.population[l] {
			return fmt.Errorf("%w: population[%d]=%d, counted %d", ErrInvariant, l, g.population[l], pop[l])
		}
		if sx[l] != g.sumX[l] || sy[l] != g.sumY[l] {
			return fmt.Errorf("%w: centroid sums of %d are (%d,%d), counted (%d,%d)",
				ErrInvariant, l, g.sumX[l], g.sumY[l], sx[l], sy[l])
		}
	}
	if total != g.width*g.height {
		return fmt.Errorf("%w: total population %d != %d", ErrInvariant, total, g.width*g.height)
	}

	return nil
}

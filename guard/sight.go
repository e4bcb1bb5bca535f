package guard

import (
	"math"

	"github.com/katalvlaran/redistrict/grid"
)

// sightReach is the probe length in cells; the extra 0.49 lets a diagonal
// direction still round to a full Radius step on both axes.
const sightReach = Radius + 0.49

// lineOfSight probes the cell sightReach steps from (x,y) toward the centroid
// of newLabel and accepts only if that cell already holds newLabel.
// A cell sitting exactly on the centroid has no direction and is rejected.
func lineOfSight(g *grid.Grid, x, y, newLabel int) bool {
	cx, cy := g.CentroidF(newLabel)
	ncx := float64(x) - cx
	ncy := float64(y) - cy
	d := math.Hypot(ncx, ncy)
	if d == 0 || math.IsNaN(d) {
		return false
	}
	scale := -sightReach / d
	dx := roundHalfUp(ncx * scale)
	dy := roundHalfUp(ncy * scale)

	return g.Label(x+dx, y+dy) == newLabel
}

// roundHalfUp rounds to the nearest integer with ties toward +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

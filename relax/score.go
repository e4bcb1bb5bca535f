package relax

import (
	"math"

	"github.com/katalvlaran/redistrict/grid"
	"github.com/katalvlaran/redistrict/metric"
)

// Score rates how well (x,y) fits district label under metric m:
//
//	-population(label) - m(|x - cx|, |y - cy|)
//
// where (cx, cy) is the real-valued centroid of label. Higher is better.
// The first term favours balance, the second compactness.
// Undefined (NaN) when label has zero population; the engine only scores
// labels present on or next to the sampled cell.
func Score(g *grid.Grid, m metric.Metric, x, y, label int) float64 {
	cx, cy := g.CentroidF(label)
	dx := math.Abs(float64(x) - cx)
	dy := math.Abs(float64(y) - cy)

	return -float64(g.Population(label)) - m.Eval(dx, dy)
}

package mask

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/redistrict/grid"
)

// shape reports whether the normalised point (u,v), both in [-1,1] with the
// origin at the image center, lies inside.
type shape func(u, v float64) bool

var builtins = map[string]shape{
	"star":   star,
	"circle": func(u, v float64) bool { return u*u+v*v <= 0.9*0.9 },
	"square": func(u, v float64) bool { return math.Abs(u) <= 0.8 && math.Abs(v) <= 0.8 },
	"ring": func(u, v float64) bool {
		r2 := u*u + v*v
		return r2 <= 0.9*0.9 && r2 >= 0.45*0.45
	},
}

// Builtins lists the generated shape names in sorted order.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// Builtin renders the named shape on a w×h mask, sampling each cell at its
// center.
// Returns ErrUnknownSource for an unknown name, grid.ErrEmptyMask for a
// non-positive size.
func Builtin(name string, w, h int) (grid.Mask, error) {
	fn, ok := builtins[name]
	if !ok {
		return grid.Mask{}, fmt.Errorf("%w: builtin %q", ErrUnknownSource, name)
	}
	m, err := grid.NewMask(w, h)
	if err != nil {
		return grid.Mask{}, err
	}
	for y := 0; y < h; y++ {
		v := 2*(float64(y)+0.5)/float64(h) - 1
		for x := 0; x < w; x++ {
			u := 2*(float64(x)+0.5)/float64(w) - 1
			m.Active[y*w+x] = fn(u, v)
		}
	}

	return m, nil
}

// starVertices is a five-pointed star, tip up, outer radius 0.95 and inner
// radius 0.4, in image orientation (v grows downward).
var starVertices = func() [10][2]float64 {
	var pts [10][2]float64
	for i := range pts {
		r := 0.95
		if i%2 == 1 {
			r = 0.4
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		pts[i] = [2]float64{r * math.Cos(a), r * math.Sin(a)}
	}
	return pts
}()

// star is an even-odd point-in-polygon test against starVertices.
func star(u, v float64) bool {
	in := false
	j := len(starVertices) - 1
	for i := range starVertices {
		xi, yi := starVertices[i][0], starVertices[i][1]
		xj, yj := starVertices[j][0], starVertices[j][1]
		if (yi > v) != (yj > v) && u < (xj-xi)*(v-yi)/(yj-yi)+xi {
			in = !in
		}
		j = i
	}

	return in
}

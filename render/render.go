package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/katalvlaran/redistrict/grid"
)

// Palette colours, exported for hosts that draw their own overlays.
var (
	Background = color.NRGBA{A: 255}
	Marker     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	saturation = 0.7
	lightness  = 0.7
	markerHalf = 2
)

// Palette returns k+1 colours indexed by label. k < 1 is treated as 1.
func Palette(k int) []color.NRGBA {
	if k < 1 {
		k = 1
	}
	p := make([]color.NRGBA, k+1)
	p[0] = Background
	for i := 1; i <= k; i++ {
		r, g, b := colorful.HSLuv(360*float64(i)/float64(k), saturation, lightness).RGB255()
		p[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}

	return p
}

// Image paints one pixel per cell. A palette shorter than K+1 entries is
// replaced by Palette(K).
func Image(g *grid.Grid, palette []color.NRGBA, markCentroids bool) *image.NRGBA {
	k := g.Districts()
	if len(palette) < k+1 {
		palette = Palette(k)
	}
	w, h := g.Width(), g.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, l := range g.Labels() {
		c := palette[l]
		o := i * 4
		img.Pix[o+0] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = c.A
	}

	if markCentroids {
		for l := 1; l <= k; l++ {
			cx, cy, ok := g.Centroid(l)
			if !ok {
				continue
			}
			for y := cy - markerHalf; y <= cy+markerHalf; y++ {
				for x := cx - markerHalf; x <= cx+markerHalf; x++ {
					if g.InBounds(x, y) {
						img.SetNRGBA(x, y, Marker)
					}
				}
			}
		}
	}

	return img
}

// Upscale enlarges img by an integer factor with nearest-neighbour sampling.
// factor ≤ 1 returns img unchanged.
func Upscale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	return dst
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}

	return nil
}

// SavePNG writes img to path, replacing any existing file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

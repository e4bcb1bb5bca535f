package mask

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/katalvlaran/redistrict/grid"
)

// Load resolves source into a mask. Builtin sources are generated at
// opts.Width (DefaultSize when 0); other sources are opened as files.
// ctx is checked before any file I/O; decoding itself is not interruptible.
func Load(ctx context.Context, source string, opts Options) (grid.Mask, error) {
	if err := ctx.Err(); err != nil {
		return grid.Mask{}, err
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return grid.Mask{}, fmt.Errorf("%w: empty source", ErrUnknownSource)
	}

	if name, ok := strings.CutPrefix(source, BuiltinPrefix); ok {
		size := opts.Width
		if size <= 0 {
			size = DefaultSize
		}
		return Builtin(name, size, size)
	}

	f, err := os.Open(source)
	if err != nil {
		return grid.Mask{}, fmt.Errorf("mask: open %s: %w", source, err)
	}
	defer f.Close()

	return Decode(f, opts)
}

// Decode reads one image from r, resamples it when opts.Width is set and
// thresholds it.
func Decode(r io.Reader, opts Options) (grid.Mask, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return grid.Mask{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if opts.Width > 0 && opts.Width != img.Bounds().Dx() {
		img = resample(img, opts.Width)
	}
	m, err := FromImage(img, opts.Threshold)
	if err != nil {
		return grid.Mask{}, fmt.Errorf("%w: %s image: %v", ErrDecode, format, err)
	}

	return m, nil
}

// resample scales img to width columns, keeping the aspect ratio.
func resample(img image.Image, width int) image.Image {
	b := img.Bounds()
	height := (b.Dy()*width + b.Dx()/2) / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	return dst
}

// FromImage marks a cell active when the pixel's non-premultiplied
// red*alpha/255 exceeds threshold. Negative thresholds act as 0.
// Complexity: O(W×H).
func FromImage(img image.Image, threshold int) (grid.Mask, error) {
	if threshold < 0 {
		threshold = 0
	}
	b := img.Bounds()
	m, err := grid.NewMask(b.Dx(), b.Dy())
	if err != nil {
		return grid.Mask{}, err
	}

	w := b.Dx()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if int(c.R)*int(c.A)/255 > threshold {
				m.Active[(y-b.Min.Y)*w+(x-b.Min.X)] = true
			}
		}
	}

	return m, nil
}

// ABOUTME: Raster renderer for track waveforms
// ABOUTME: Paints layers into an RGBA image at the device pixel ratio
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
)

// Canvas is a drawing surface measured in logical pixels
type Canvas struct {
	Width      int
	Height     int
	PixelRatio float64
}

func (c Canvas) logical() (float64, float64) {
	w, h := c.Width, c.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return float64(w), float64(h)
}

func (c Canvas) scale() float64 {
	if c.PixelRatio <= 0 || math.IsNaN(c.PixelRatio) || math.IsInf(c.PixelRatio, 0) {
		return 1
	}
	return c.PixelRatio
}

// Resize returns the device pixel size of the canvas
func (c Canvas) Resize() (int, int) {
	w, h := c.logical()
	s := c.scale()
	dw := int(w * s)
	dh := int(h * s)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	return dw, dh
}

// Track paints a full track picture
func Track(c Canvas, view TrackView, colors Colors) *image.RGBA {
	dw, dh := c.Resize()
	img := image.NewRGBA(image.Rect(0, 0, dw, dh))

	w, h := c.logical()
	s := c.scale()
	m := image.NewAlpha(img.Bounds())
	for i, l := range view.layers(w, h, gridInset) {
		if i > 0 {
			clear(m.Pix)
		}
		for _, seg := range l.segs {
			stroke(m, seg, l.width, s)
		}
		paint(img, m, colors.of(l.kind), l.alpha)
	}

	return img
}

// Playhead draws a vertical marker at progress (0..1) of the image width
func Playhead(img *image.RGBA, progress float64, col color.NRGBA) {
	if img == nil || math.IsNaN(progress) {
		return
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	b := img.Bounds()
	x := progress * float64(b.Dx()-1)
	col0 := b.Min.X + int(x)
	m := image.NewAlpha(image.Rect(col0-3, b.Min.Y, col0+4, b.Max.Y).Intersect(b))
	stroke(m, segment{x, 0, x, float64(b.Dy())}, 1.5, 1)
	paint(img, m, col, 1)
}

// EncodePNG writes img as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// stroke adds an anti-aliased line of the given logical width to m.
// Coverage takes the max so overlapping segments do not darken.
func stroke(m *image.Alpha, seg segment, width, scale float64) {
	x0, y0 := seg.x0*scale, seg.y0*scale
	x1, y1 := seg.x1*scale, seg.y1*scale
	half := width * scale / 2

	b := m.Bounds()
	minX := int(math.Floor(math.Min(x0, x1) - half - 1))
	maxX := int(math.Ceil(math.Max(x0, x1) + half + 1))
	minY := int(math.Floor(math.Min(y0, y1) - half - 1))
	maxY := int(math.Ceil(math.Max(y0, y1) + half + 1))
	r := image.Rect(minX, minY, maxX, maxY).Intersect(b)

	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy

	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			cx, cy := float64(px)+0.5, float64(py)+0.5

			t := 0.0
			if lenSq > 0 {
				t = ((cx-x0)*dx + (cy-y0)*dy) / lenSq
				t = math.Max(0, math.Min(1, t))
			}
			d := math.Hypot(cx-(x0+t*dx), cy-(y0+t*dy))

			cov := half + 0.5 - d
			if cov <= 0 {
				continue
			}
			if cov > 1 {
				cov = 1
			}
			a := uint8(cov*255 + 0.5)
			if a > m.AlphaAt(px, py).A {
				m.SetAlpha(px, py, color.Alpha{A: a})
			}
		}
	}
}

// paint composites col through mask onto img with a global alpha
func paint(img *image.RGBA, mask *image.Alpha, col color.NRGBA, alpha float64) {
	col.A = uint8(float64(col.A)*alpha + 0.5)
	if col.A == 0 {
		return
	}
	draw.DrawMask(img, mask.Bounds(), image.NewUniform(col), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

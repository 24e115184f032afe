// ABOUTME: Layer geometry shared by the raster and terminal renderers
// ABOUTME: Grid, centre line, difference overlay and both traces as segments
package render

import (
	"github.com/harperreed/flipit/pkg/transport"
)

const (
	tickCount    = 8
	gridInset    = 6
	traceScale   = 0.45
	diffScale    = 0.42
	traceWidth   = 1.4
	diffWidth    = 2
	gridWidth    = 1
	alphaPrimary = 0.9
	alphaOther   = 0.45
)

type layerKind int

const (
	layerGrid layerKind = iota
	layerLine
	layerDiff
	layerOriginal
	layerMimic
)

type segment struct {
	x0, y0, x1, y1 float64
}

type layer struct {
	kind  layerKind
	alpha float64
	width float64
	segs  []segment
}

// TrackView is everything needed to draw one track
type TrackView struct {
	ID              transport.TrackID
	PrimarySelected bool
	Original        []float32
	Mimic           []float32
}

// NewTrackView marks the original as primary when the track plays it
func NewTrackView(id transport.TrackID, sel transport.Selection, original, mimic []float32) TrackView {
	primary := sel == transport.Original
	if id == transport.TrackB {
		primary = sel == transport.OriginalReverse
	}
	return TrackView{
		ID:              id,
		PrimarySelected: primary,
		Original:        original,
		Mimic:           mimic,
	}
}

// layers lays out the view in a width×height box, in paint order
func (v TrackView) layers(width, height, inset float64) []layer {
	mid := height / 2
	out := make([]layer, 0, 5)

	grid := layer{kind: layerGrid, alpha: 1, width: gridWidth}
	for i := 0; i <= tickCount; i++ {
		x := float64(i) / tickCount * width
		grid.segs = append(grid.segs, segment{x, inset, x, height - inset})
	}
	out = append(out, grid)

	out = append(out, layer{
		kind:  layerLine,
		alpha: 1,
		width: gridWidth,
		segs:  []segment{{0, mid, width, mid}},
	})

	originalFlip := v.ID == transport.TrackB
	mimicFlip := v.ID == transport.TrackA

	if len(v.Original) > 0 && len(v.Mimic) > 0 {
		n := len(v.Original)
		if len(v.Mimic) < n {
			n = len(v.Mimic)
		}
		if n > 1 {
			diff := layer{kind: layerDiff, alpha: 1, width: diffWidth}
			for i := 0; i < n; i++ {
				oi, mi := i, i
				if originalFlip {
					oi = n - 1 - i
				}
				if mimicFlip {
					mi = n - 1 - i
				}
				d := float64(v.Original[oi] - v.Mimic[mi])
				if d < 0 {
					d = -d
				}
				d *= height * diffScale
				x := float64(i) / float64(n-1) * width
				diff.segs = append(diff.segs, segment{x, mid - d, x, mid + d})
			}
			out = append(out, diff)
		}
	}

	primaryAlpha, secondaryAlpha := alphaPrimary, alphaOther
	if !v.PrimarySelected {
		primaryAlpha, secondaryAlpha = alphaOther, alphaPrimary
	}

	if t, ok := trace(layerOriginal, v.Original, originalFlip, primaryAlpha, width, height); ok {
		out = append(out, t)
	}
	if t, ok := trace(layerMimic, v.Mimic, mimicFlip, secondaryAlpha, width, height); ok {
		out = append(out, t)
	}

	return out
}

// trace draws one vertical bar per sample
func trace(kind layerKind, data []float32, flip bool, alpha, width, height float64) (layer, bool) {
	if len(data) == 0 {
		return layer{}, false
	}

	mid := height / 2
	n := len(data)
	l := layer{kind: kind, alpha: alpha, width: traceWidth, segs: make([]segment, 0, n)}
	for i := 0; i < n; i++ {
		idx := i
		if flip {
			idx = n - 1 - i
		}
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1) * width
		}
		amp := float64(data[idx]) * height * traceScale
		l.segs = append(l.segs, segment{x, mid - amp, x, mid + amp})
	}
	return l, true
}

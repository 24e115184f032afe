// ABOUTME: Terminal renderer for track waveforms
// ABOUTME: Rasterizes the same layers into styled character cells
package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cell struct {
	ch    rune
	kind  layerKind
	faint bool
	set   bool
}

// Terminal renders a track as height rows of width cells
func Terminal(view TrackView, width, height int) []string {
	return TerminalWithColors(view, width, height, DefaultTerminalColors)
}

// TerminalWithColors renders a track with an explicit palette
func TerminalWithColors(view TrackView, width, height int, colors TerminalColors) []string {
	if width < 1 || height < 1 {
		return nil
	}

	grid := make([][]cell, height)
	for r := range grid {
		grid[r] = make([]cell, width)
	}

	for _, l := range view.layers(float64(width), float64(height), 0) {
		ch := glyph(l)
		for _, seg := range l.segs {
			fillCells(grid, seg, cell{ch: ch, kind: l.kind, faint: l.alpha < alphaPrimary, set: true})
		}
	}

	rows := make([]string, height)
	for r, row := range grid {
		rows[r] = renderRow(row, colors)
	}
	return rows
}

// PlayheadColumn returns the cell column for progress (0..1)
func PlayheadColumn(progress float64, width int) int {
	if width < 1 || math.IsNaN(progress) {
		return 0
	}
	col := int(math.Round(progress * float64(width-1)))
	if col < 0 {
		return 0
	}
	if col >= width {
		return width - 1
	}
	return col
}

func glyph(l layer) rune {
	switch l.kind {
	case layerGrid:
		return '┊'
	case layerLine:
		return '─'
	case layerDiff:
		return '░'
	default:
		if l.alpha < alphaPrimary {
			return '▒'
		}
		return '█'
	}
}

func fillCells(grid [][]cell, seg segment, c cell) {
	height := len(grid)
	width := len(grid[0])

	if seg.y0 == seg.y1 && seg.x0 != seg.x1 {
		r := clampInt(int(seg.y0), 0, height-1)
		c0 := clampInt(int(math.Min(seg.x0, seg.x1)), 0, width-1)
		c1 := clampInt(int(math.Ceil(math.Max(seg.x0, seg.x1)))-1, 0, width-1)
		for col := c0; col <= c1; col++ {
			grid[r][col] = c
		}
		return
	}

	col := clampInt(int(seg.x0), 0, width-1)
	top := math.Min(seg.y0, seg.y1)
	bottom := math.Max(seg.y0, seg.y1)
	r0 := int(math.Floor(top))
	r1 := int(math.Ceil(bottom)) - 1
	if r1 < r0 {
		r1 = r0
	}
	r0 = clampInt(r0, 0, height-1)
	r1 = clampInt(r1, 0, height-1)
	for r := r0; r <= r1; r++ {
		grid[r][col] = c
	}
}

// renderRow styles runs of identical cells together
func renderRow(row []cell, colors TerminalColors) string {
	var b strings.Builder
	i := 0
	for i < len(row) {
		j := i
		for j < len(row) && sameStyle(row[i], row[j]) {
			j++
		}

		run := make([]rune, 0, j-i)
		for _, c := range row[i:j] {
			if c.set {
				run = append(run, c.ch)
			} else {
				run = append(run, ' ')
			}
		}

		if !row[i].set {
			b.WriteString(string(run))
		} else {
			style := lipgloss.NewStyle().Foreground(colors.of(row[i].kind))
			if row[i].faint {
				style = style.Faint(true)
			}
			b.WriteString(style.Render(string(run)))
		}
		i = j
	}
	return b.String()
}

func sameStyle(a, b cell) bool {
	if !a.set || !b.set {
		return a.set == b.set
	}
	return a.kind == b.kind && a.faint == b.faint
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

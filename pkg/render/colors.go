// ABOUTME: Colour palettes for waveform rendering
// ABOUTME: Raster colours and their terminal equivalents
package render

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
)

// Colors is the raster palette
type Colors struct {
	Primary   color.NRGBA
	Secondary color.NRGBA
	Line      color.NRGBA
	Grid      color.NRGBA
	Diff      color.NRGBA
	Playhead  color.NRGBA
}

// DefaultColors returns the stock palette
func DefaultColors() Colors {
	return Colors{
		Primary:   color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1c, A: 0xff},
		Secondary: color.NRGBA{R: 0xc4, G: 0x51, B: 0x2f, A: 0xff},
		Line:      color.NRGBA{A: alpha8(0.1)},
		Grid:      color.NRGBA{A: alpha8(0.06)},
		Diff:      color.NRGBA{R: 229, G: 183, B: 94, A: alpha8(0.5)},
		Playhead:  color.NRGBA{R: 0xc4, G: 0x51, B: 0x2f, A: 0xff},
	}
}

func (c Colors) of(k layerKind) color.NRGBA {
	switch k {
	case layerGrid:
		return c.Grid
	case layerLine:
		return c.Line
	case layerDiff:
		return c.Diff
	case layerOriginal:
		return c.Primary
	default:
		return c.Secondary
	}
}

// TerminalColors is the palette used for terminal rows
type TerminalColors struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Line      lipgloss.Color
	Grid      lipgloss.Color
	Diff      lipgloss.Color
	Playhead  lipgloss.Color
}

// DefaultTerminalColors reads well on dark and light terminals
var DefaultTerminalColors = TerminalColors{
	Primary:   lipgloss.Color("252"),
	Secondary: lipgloss.Color("208"),
	Line:      lipgloss.Color("240"),
	Grid:      lipgloss.Color("236"),
	Diff:      lipgloss.Color("221"),
	Playhead:  lipgloss.Color("205"),
}

func (c TerminalColors) of(k layerKind) lipgloss.Color {
	switch k {
	case layerGrid:
		return c.Grid
	case layerLine:
		return c.Line
	case layerDiff:
		return c.Diff
	case layerOriginal:
		return c.Primary
	default:
		return c.Secondary
	}
}

func alpha8(a float64) uint8 {
	return uint8(a*255 + 0.5)
}

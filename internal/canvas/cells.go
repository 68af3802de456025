// Package canvas turns the snow field's pixel-space paint calls into something a
// frontend can show: a coarse intensity grid for the terminal and an RGBA image
// for snapshots.
package canvas

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/1broseidon/winterdesk/internal/snow"
)

var _ snow.Surface = (*Cells)(nil)

// Glyph ramp from empty to brightest.
var snowRamp = []rune{' ', '.', '·', '+', '*'}

var rampThresholds = []float64{0.06, 0.22, 0.45, 0.7}

const (
	// fullCoverageRadius is the disc radius, in pixels, that lights a whole cell.
	fullCoverageRadius = 3.0
	// glowSpread is the share of a glow that leaks into each neighbouring cell.
	glowSpread = 0.25
)

// Cells implements snow.Surface on a grid of terminal cells. Every cell stands for
// CellW x CellH device pixels and stores a brightness in [0,1].
type Cells struct {
	cols  int
	rows  int
	cellW float64
	cellH float64
	v     []float64
}

// NewCells allocates a dark grid. Non-positive cell sizes fall back to 8x16.
func NewCells(cols, rows int, cellW, cellH float64) *Cells {
	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}
	c := &Cells{cellW: cellW, cellH: cellH}
	c.Resize(cols, rows)
	return c
}

// Resize reallocates the grid and clears it.
func (c *Cells) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols = cols
	c.rows = rows
	c.v = make([]float64, cols*rows)
}

func (c *Cells) Size() (cols, rows int) { return c.cols, c.rows }

// PixelSize is the device-pixel extent covered by the grid.
func (c *Cells) PixelSize() (w, h float64) {
	return float64(c.cols) * c.cellW, float64(c.rows) * c.cellH
}

// CellSize reports how many pixels one cell covers.
func (c *Cells) CellSize() (w, h float64) { return c.cellW, c.cellH }

// Fade darkens every cell, which leaves a trail behind moving bodies.
func (c *Cells) Fade(alpha float64) {
	keep := 1 - clamp01(alpha)
	for i := range c.v {
		c.v[i] *= keep
	}
}

// Disc lights the cell containing (x, y) in proportion to the disc's area and
// alpha. A glow bleeds a little light into the four neighbours.
func (c *Cells) Disc(x, y, radius, alpha float64, glow snow.Glow) {
	col := int(math.Floor(x / c.cellW))
	row := int(math.Floor(y / c.cellH))

	coverage := math.Min(1, (radius*radius)/(fullCoverageRadius*fullCoverageRadius))
	c.add(col, row, clamp01(alpha)*coverage)

	if glow.Alpha <= 0 || glow.Blur <= 0 {
		return
	}
	spill := clamp01(glow.Alpha) * math.Min(1, glow.Blur/c.cellW) * glowSpread
	c.add(col-1, row, spill)
	c.add(col+1, row, spill)
	c.add(col, row-1, spill)
	c.add(col, row+1, spill)
}

// add composites a over the existing brightness.
func (c *Cells) add(col, row int, a float64) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows || a <= 0 {
		return
	}
	i := row*c.cols + col
	c.v[i] += a * (1 - c.v[i])
}

// At returns the brightness of a cell, or zero outside the grid.
func (c *Cells) At(col, row int) float64 {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0
	}
	return c.v[row*c.cols+col]
}

// Clear sets every cell back to dark.
func (c *Cells) Clear() {
	for i := range c.v {
		c.v[i] = 0
	}
}

// Glyph picks the ramp rune for a brightness.
func Glyph(v float64) rune {
	for i, t := range rampThresholds {
		if v < t {
			return snowRamp[i]
		}
	}
	return snowRamp[len(snowRamp)-1]
}

// Tint blends from the background colour toward white by v and returns a hex
// colour. An unparseable background is treated as black.
func Tint(background string, v float64) string {
	bg, err := colorful.Hex(background)
	if err != nil {
		bg = colorful.Color{}
	}
	white := colorful.Color{R: 1, G: 1, B: 1}
	return bg.BlendRgb(white, clamp01(v)).Clamped().Hex()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

package canvas

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Style is the visual attribute set of one cell. It is comparable so runs of
// equal cells can share a rendered lipgloss style.
type Style struct {
	FG      string
	BG      string
	Bold    bool
	Reverse bool
}

// Cell is one terminal cell. A zero Rune marks the right half of a wide glyph.
type Cell struct {
	Rune  rune
	Style Style
}

// Grid is a fixed-size cell compositor. Later writes cover earlier ones, so
// callers paint back to front.
type Grid struct {
	width  int
	height int
	cells  []Cell
	styles map[Style]lipgloss.Style
}

// NewGrid returns a grid filled with spaces in the given style.
func NewGrid(width, height int, base Style) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		styles: make(map[Style]lipgloss.Style),
	}
	g.Fill(0, 0, width, height, ' ', base)
	return g
}

func (g *Grid) Size() (width, height int) { return g.width, g.height }

func (g *Grid) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Set writes a single-width rune. Writes outside the grid are dropped. Covering
// either half of a wide glyph blanks the other half.
func (g *Grid) Set(x, y int, r rune, s Style) {
	if !g.inside(x, y) {
		return
	}
	i := y*g.width + x
	old := g.cells[i]
	if r != 0 {
		if old.Rune == 0 && x > 0 {
			g.cells[i-1].Rune = ' '
		}
		if x+1 < g.width && g.cells[i+1].Rune == 0 && runewidth.RuneWidth(old.Rune) == 2 {
			g.cells[i+1].Rune = ' '
		}
	}
	g.cells[i] = Cell{Rune: r, Style: s}
}

// At returns the cell at (x, y), or the zero cell outside the grid.
func (g *Grid) At(x, y int) Cell {
	if !g.inside(x, y) {
		return Cell{}
	}
	return g.cells[y*g.width+x]
}

// Fill paints a rectangle with one rune.
func (g *Grid) Fill(x, y, w, h int, r rune, s Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			g.Set(col, row, r, s)
		}
	}
}

// Text writes s starting at (x, y), clipped to maxWidth cells (or the grid edge
// when maxWidth is not positive). Wide runes take two cells and are dropped
// rather than split at the clip edge. It returns the number of cells written.
func (g *Grid) Text(x, y int, s string, st Style, maxWidth int) int {
	limit := g.width - x
	if maxWidth > 0 && maxWidth < limit {
		limit = maxWidth
	}
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if used+w > limit {
			break
		}
		g.Set(x+used, y, r, st)
		if w == 2 {
			g.Set(x+used+1, y, 0, st)
		}
		used += w
	}
	return used
}

// PaintSnow copies a snow intensity grid onto the cells it overlaps. Cells that
// are dark keep the background.
func (g *Grid) PaintSnow(c *Cells, background string) {
	cols, rows := c.Size()
	for row := 0; row < rows && row < g.height; row++ {
		for col := 0; col < cols && col < g.width; col++ {
			v := c.At(col, row)
			r := Glyph(v)
			if r == ' ' {
				g.Set(col, row, ' ', Style{BG: background})
				continue
			}
			g.Set(col, row, r, Style{FG: Tint(background, v), BG: background})
		}
	}
}

func (g *Grid) style(s Style) lipgloss.Style {
	if ls, ok := g.styles[s]; ok {
		return ls
	}
	ls := lipgloss.NewStyle().Bold(s.Bold).Reverse(s.Reverse)
	if s.FG != "" {
		ls = ls.Foreground(lipgloss.Color(s.FG))
	}
	if s.BG != "" {
		ls = ls.Background(lipgloss.Color(s.BG))
	}
	g.styles[s] = ls
	return ls
}

// String renders the grid row by row, grouping runs of equal style.
func (g *Grid) String() string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < g.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		var cur Style
		run.Reset()
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(g.style(cur).Render(run.String()))
			run.Reset()
		}
		for x := 0; x < g.width; x++ {
			c := g.cells[y*g.width+x]
			if c.Rune == 0 {
				continue
			}
			if c.Style != cur {
				flush()
				cur = c.Style
			}
			run.WriteRune(c.Rune)
		}
		flush()
	}
	return b.String()
}

// Plain renders the grid without any styling.
func (g *Grid) Plain() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < g.width; x++ {
			if r := g.cells[y*g.width+x].Rune; r != 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// Line returns one row of Plain output.
func (g *Grid) Line(y int) string {
	if y < 0 || y >= g.height {
		return ""
	}
	var b strings.Builder
	for x := 0; x < g.width; x++ {
		if r := g.cells[y*g.width+x].Rune; r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

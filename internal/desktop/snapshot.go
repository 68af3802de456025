package desktop

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/1broseidon/winterdesk/internal/canvas"
	"github.com/1broseidon/winterdesk/internal/config"
)

// ErrNotSized is returned when a snapshot is requested before the first Resize.
var ErrNotSized = errors.New("desktop has no size yet")

var (
	chromeFace    = color.NRGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}
	chromeShadow  = color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	titleActive   = color.NRGBA{R: 0x00, G: 0x00, B: 0x80, A: 0xff}
	titleInactive = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	bodyFill      = color.NRGBA{R: 0xf4, G: 0xf8, B: 0xff, A: 0xff}
	terminalFill  = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	ink           = color.NRGBA{A: 0xff}
	paper         = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	phosphor      = color.NRGBA{R: 0x33, G: 0xff, B: 0x66, A: 0xff}
)

// glyphWidth is the advance of the snapshot's bitmap face.
const glyphWidth = 7

// Snapshot renders the desktop as a picture: the snow field, the shown windows
// from bottom to top and the taskbar. Cells become cell_width x cell_height
// pixel blocks before scaling.
func (s *Session) Snapshot(scale float64) (*image.NRGBA, error) {
	if s.Field == nil {
		return nil, ErrNotSized
	}
	bg, err := colorful.Hex(s.cfg.Snow.Background)
	if err != nil {
		return nil, fmt.Errorf("snow.background: %w", err)
	}
	cw, ch := int(s.cfg.Snow.CellWidth), int(s.cfg.Snow.CellHeight)
	img := canvas.NewImage(s.cols*cw, s.rows*ch, bg)
	s.Field.Render(img)

	px := func(x, y, w, h int) image.Rectangle {
		return image.Rect(x*cw, y*ch, (x+w)*cw, (y+h)*ch)
	}
	label := func(col, row int, text string, maxCols int, c color.Color) {
		maxChars := maxCols * cw / glyphWidth
		if maxChars <= 0 {
			return
		}
		img.Label(col*cw, row*ch+ch*3/4, runewidth.Truncate(text, maxChars, ""), c)
	}

	focused, _ := s.Windows.Focused()
	for _, w := range s.Windows.Stack() {
		r := w.Rect
		img.Rect(px(r.X+1, r.Y+1, r.Width, r.Height), chromeShadow)
		img.Rect(px(r.X, r.Y, r.Width, r.Height), chromeFace)

		title := titleInactive
		if w.ID == focused {
			title = titleActive
		}
		img.Rect(px(r.X, r.Y, r.Width, 1), title)
		label(r.X+1, r.Y, w.Title, r.Width-8, paper)
		label(r.X+r.Width-7, r.Y, "_ o x", 6, paper)

		body := px(r.X+1, r.Y+1, r.Width-2, r.Height-2)
		fg := color.Color(ink)
		if s.Kind(w.ID) == config.KindTerminal {
			img.Rect(body, terminalFill)
			fg = phosphor
		} else {
			img.Rect(body, bodyFill)
		}
		for i, line := range s.Content(w.ID, r.Height-2) {
			label(r.X+1, r.Y+1+i, line, r.Width-2, fg)
		}
	}

	rows := s.cfg.Desktop.TaskbarRows
	top := s.rows - rows
	img.Rect(px(0, top, s.cols, rows), chromeFace)
	label(1, top, "Start", 6, ink)
	col := 9
	for _, e := range s.Windows.Taskbar() {
		width := min(runewidth.StringWidth(e.Title)+2, 20)
		if col+width > s.cols-10 {
			break
		}
		if e.Active {
			img.Rect(px(col, top, width, 1), titleInactive)
		}
		label(col+1, top, e.Title, width-2, ink)
		col += width + 1
	}
	clock := s.now().Format("15:04:05")
	img.Label(s.cols*cw-canvas.LabelWidth(clock)-cw, top*ch+ch*3/4, clock, ink)

	return img.Result(scale), nil
}

// WriteSnapshot encodes Snapshot(scale) as PNG.
func (s *Session) WriteSnapshot(w io.Writer, scale float64) error {
	if s.Field == nil {
		return ErrNotSized
	}
	img, err := s.Snapshot(scale)
	if err != nil {
		return err
	}
	return canvas.WritePNG(w, img)
}

package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/1broseidon/winterdesk/internal/snow"
)

var _ snow.Surface = (*Image)(nil)

const (
	// imagePad surrounds the visible area so discs near an edge never need
	// clipping. Bodies leave the field by at most a few dozen pixels.
	imagePad = 32

	circleSegments = 24
	glowRings      = 3
)

// Image is a snow.Surface backed by an RGBA buffer, used for headless snapshots.
// Coordinates are visible-area pixels; the buffer carries a hidden border.
type Image struct {
	width  int
	height int
	bg     color.NRGBA
	buf    *image.RGBA
	rast   *vector.Rasterizer
}

// NewImage allocates a width x height image filled with the background.
func NewImage(width, height int, background color.Color) *Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	im := &Image{
		width:  width,
		height: height,
		bg:     color.NRGBAModel.Convert(background).(color.NRGBA),
		buf:    image.NewRGBA(image.Rect(0, 0, width+2*imagePad, height+2*imagePad)),
		rast:   vector.NewRasterizer(1, 1),
	}
	bg := im.bg
	bg.A = 0xff
	draw.Draw(im.buf, im.buf.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return im
}

// Fade covers the image with the background at the given alpha.
func (im *Image) Fade(alpha float64) {
	c := im.bg
	c.A = uint8(clamp01(alpha) * 0xff)
	draw.Draw(im.buf, im.buf.Bounds(), image.NewUniform(c), image.Point{}, draw.Over)
}

// Disc draws an antialiased white circle. A glow is approximated by a few
// widening translucent rings underneath.
func (im *Image) Disc(x, y, radius, alpha float64, glow snow.Glow) {
	if glow.Alpha > 0 && glow.Blur > 0 {
		for i := glowRings; i >= 1; i-- {
			r := radius + glow.Blur*float64(i)/glowRings
			im.fillCircle(x, y, r, glow.Alpha/(glowRings*2))
		}
	}
	im.fillCircle(x, y, radius, alpha)
}

func (im *Image) fillCircle(cx, cy, r, alpha float64) {
	if r <= 0 || alpha <= 0 {
		return
	}
	cx += imagePad
	cy += imagePad
	box := image.Rect(
		int(math.Floor(cx-r)), int(math.Floor(cy-r)),
		int(math.Ceil(cx+r))+1, int(math.Ceil(cy+r))+1,
	)
	if !box.In(im.buf.Bounds()) {
		return
	}

	im.rast.Reset(box.Dx(), box.Dy())
	ox := float32(cx) - float32(box.Min.X)
	oy := float32(cy) - float32(box.Min.Y)
	im.rast.MoveTo(ox+float32(r), oy)
	for i := 1; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		im.rast.LineTo(ox+float32(r*math.Cos(a)), oy+float32(r*math.Sin(a)))
	}
	im.rast.ClosePath()

	src := image.NewUniform(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: uint8(clamp01(alpha) * 0xff)})
	im.rast.Draw(im.buf, box, src, image.Point{})
}

// Rect fills a visible-area rectangle.
func (im *Image) Rect(r image.Rectangle, c color.Color) {
	draw.Draw(im.buf, r.Add(image.Pt(imagePad, imagePad)).Intersect(im.visible()), image.NewUniform(c), image.Point{}, draw.Over)
}

// Label draws s with its baseline at (x, y) in the 7x13 bitmap face.
func (im *Image) Label(x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  im.buf,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x+imagePad, y+imagePad),
	}
	d.DrawString(s)
}

// LabelWidth is the advance of s in pixels.
func LabelWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

func (im *Image) visible() image.Rectangle {
	return image.Rect(imagePad, imagePad, imagePad+im.width, imagePad+im.height)
}

// Bounds is the visible area.
func (im *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.width, im.height)
}

// Result crops away the hidden border and scales the picture by scale when it
// is not 1.
func (im *Image) Result(scale float64) *image.NRGBA {
	out := imaging.Crop(im.buf, im.visible())
	if scale > 0 && scale != 1 {
		w := int(math.Round(float64(im.width) * scale))
		h := int(math.Round(float64(im.height) * scale))
		out = imaging.Resize(out, max(w, 1), max(h, 1), imaging.Lanczos)
	}
	return out
}

// EncodePNG writes the scaled result as PNG.
func (im *Image) EncodePNG(w io.Writer, scale float64) error {
	return WritePNG(w, im.Result(scale))
}

func WritePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

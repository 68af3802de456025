package snow

import (
	"math/rand/v2"
	"time"
)

const (
	DefaultCount        = 200
	DefaultBurstSurplus = 100
	DefaultTrailAlpha   = 0.05

	// MaxCount and MaxBurstSurplus bound what a config may ask of a field.
	MaxCount        = 10000
	MaxBurstSurplus = 10000
)

// Glow describes a soft shadow drawn around a disc. The zero value means no glow.
type Glow struct {
	Blur  float64
	Alpha float64
}

// Surface is the paint target of a field. Implementations decide how pixels map
// onto their own resolution.
type Surface interface {
	// Fade paints a translucent rectangle over the whole field so earlier frames
	// leave a trail.
	Fade(alpha float64)
	// Disc paints a filled circle centred at (x, y).
	Disc(x, y, radius, alpha float64, glow Glow)
}

// Params configures a Field.
type Params struct {
	Width            float64
	Height           float64
	Count            int
	BurstSurplus     int
	TrailAlpha       float64
	WindRate         float64
	WindChangeChance float64
}

// Field owns the particle collection and the wind that pushes it around.
// It is not safe for concurrent use; callers drive it from a single loop.
type Field struct {
	width      float64
	height     float64
	count      int
	surplus    int
	trailAlpha float64

	particles []Particle
	wind      *Wind
	rng       *rand.Rand
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}

// NewField creates a field and seeds p.Count bodies across it. A nil rng uses a
// time-seeded source.
func NewField(p Params, rng *rand.Rand) *Field {
	if rng == nil {
		rng = newRand()
	}
	if p.Count < 0 {
		p.Count = 0
	}
	if p.BurstSurplus <= 0 {
		p.BurstSurplus = DefaultBurstSurplus
	}
	if p.TrailAlpha <= 0 || p.TrailAlpha > 1 {
		p.TrailAlpha = DefaultTrailAlpha
	}

	f := &Field{
		width:      p.Width,
		height:     p.Height,
		count:      p.Count,
		surplus:    p.BurstSurplus,
		trailAlpha: p.TrailAlpha,
		wind:       NewWind(p.WindRate, p.WindChangeChance, rng),
		rng:        rng,
	}
	f.Initialize(p.Count)
	return f
}

// Initialize discards every body and seeds count new ones uniformly over the
// visible area.
func (f *Field) Initialize(count int) {
	if count < 0 {
		count = 0
	}
	f.particles = make([]Particle, 0, count)
	for i := 0; i < count; i++ {
		f.particles = append(f.particles, seed(f.rng, f.width, f.height, false))
	}
}

// Advance moves every body one frame. Bodies that fall below the field are
// reseeded just above it; bodies leaving a side re-enter on the other side.
func (f *Field) Advance() {
	wind := f.wind.Current()
	for i := range f.particles {
		p := &f.particles[i]
		p.step(wind)

		if p.Y > f.height+edgeMargin {
			*p = seed(f.rng, f.width, f.height, true)
		}

		if p.X > f.width+edgeMargin {
			p.X = -edgeMargin
		} else if p.X < -edgeMargin {
			p.X = f.width + edgeMargin
		}
	}
}

// Render paints the trail fade and then every body onto s.
func (f *Field) Render(s Surface) {
	s.Fade(f.trailAlpha)

	for i := range f.particles {
		p := &f.particles[i]

		var glow Glow
		if p.Radius > glowRadiusThreshold {
			glow = Glow{Blur: glowBlurScale * p.Depth, Alpha: p.Opacity * glowAlphaScale}
		}

		s.Disc(p.X, p.Y, p.Radius, p.Opacity, glow)

		if p.Blur > haloBlurThreshold {
			s.Disc(p.X, p.Y, p.Radius+1, p.Opacity*haloAlphaScale, glow)
		}
	}
}

// Frame runs one full animation step: wind, physics, paint.
func (f *Field) Frame(s Surface) {
	f.wind.Tick()
	f.Advance()
	if s != nil {
		f.Render(s)
	}
}

// SetCount stores n as the configured count and reinitializes. Range checks are
// the caller's job.
func (f *Field) SetCount(n int) {
	f.count = n
	f.Initialize(n)
}

// SetWindTarget steers the wind toward v.
func (f *Field) SetWindTarget(v float64) {
	f.wind.SetTarget(v)
}

// Burst injects count bodies at (x, y) with an outward horizontal kick, then
// runs the maintenance pass.
func (f *Field) Burst(x, y float64, count int) {
	for i := 0; i < count; i++ {
		p := seed(f.rng, f.width, f.height, false)
		p.X = x
		p.Y = y
		p.SpeedX = (f.rng.Float64() - 0.5) * 3
		p.SpeedY = f.rng.Float64() * 2
		f.particles = append(f.particles, p)
	}
	f.maintain()
}

// maintain trims a burst surplus. Once the collection exceeds the configured
// count by more than the allowed surplus, the oldest bodies at the front are
// dropped until exactly the configured count remains.
func (f *Field) maintain() {
	if len(f.particles) <= f.count+f.surplus {
		return
	}
	excess := len(f.particles) - f.count
	f.particles = append(f.particles[:0], f.particles[excess:]...)
}

// Resize changes the visible area. Existing bodies keep their positions and
// settle in through the normal reset and wrap rules.
func (f *Field) Resize(width, height float64) {
	f.width = width
	f.height = height
}

// SetTrailAlpha changes the fade applied at the start of every render.
func (f *Field) SetTrailAlpha(alpha float64) {
	if alpha > 0 && alpha <= 1 {
		f.trailAlpha = alpha
	}
}

// Len is the number of live bodies, burst surplus included.
func (f *Field) Len() int { return len(f.particles) }

// Count is the configured body count.
func (f *Field) Count() int { return f.count }

// Wind returns the field's oscillator.
func (f *Field) Wind() *Wind { return f.wind }

// Size is the visible area in pixels.
func (f *Field) Size() (w, h float64) { return f.width, f.height }

// Particles returns a copy of the current bodies in collection order.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Package snow implements the falling-snow particle field drawn behind the
// desktop: independent bodies with simple kinematics, a shared wind scalar and
// a render pass against an abstract Surface.
package snow

import (
	"math"
	"math/rand/v2"
)

// Particle is one falling body. Positions are in device pixels.
type Particle struct {
	X          float64
	Y          float64
	Radius     float64
	SpeedY     float64
	SpeedX     float64
	Opacity    float64
	Swing      float64 // horizontal swing amplitude
	Angle      float64 // swing phase in radians
	SwingSpeed float64
	Blur       float64
	Depth      float64 // parallax weight in [0,1)
}

const (
	// edgeMargin is how far a body may leave the field before it is reset or wrapped.
	edgeMargin = 10.0

	glowRadiusThreshold = 2.0
	haloBlurThreshold   = 0.5
	glowBlurScale       = 10.0
	glowAlphaScale      = 0.5
	haloAlphaScale      = 0.3
)

// seed returns a freshly randomized body. When atTop is set the body starts just
// above the visible area instead of anywhere inside it.
func seed(rng *rand.Rand, width, height float64, atTop bool) Particle {
	y := rng.Float64() * height
	if atTop {
		y = -edgeMargin
	}
	return Particle{
		X:          rng.Float64() * width,
		Y:          y,
		Radius:     rng.Float64()*3 + 1,
		SpeedY:     rng.Float64() + 0.5,
		SpeedX:     rng.Float64()*0.5 - 0.25,
		Opacity:    rng.Float64()*0.6 + 0.4,
		Swing:      rng.Float64() * 0.5,
		SwingSpeed: rng.Float64()*0.01 + 0.005,
		Angle:      rng.Float64() * math.Pi * 2,
		Blur:       rng.Float64() * 2,
		Depth:      rng.Float64(),
	}
}

// step advances p by one frame under the given wind.
func (p *Particle) step(wind float64) {
	p.Angle += p.SwingSpeed
	p.X += math.Sin(p.Angle) * p.Swing

	p.X += wind * p.Depth

	p.Y += p.SpeedY * (0.5 + p.Depth*0.5)
	p.X += p.SpeedX
}

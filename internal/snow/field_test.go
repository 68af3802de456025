package snow

import (
	"math"
	"math/rand/v2"
	"testing"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

type paintCall struct {
	fade   bool
	alpha  float64
	x, y   float64
	radius float64
	glow   Glow
}

// recordingSurface keeps every paint call in order.
type recordingSurface struct {
	calls []paintCall
}

func (r *recordingSurface) Fade(alpha float64) {
	r.calls = append(r.calls, paintCall{fade: true, alpha: alpha})
}

func (r *recordingSurface) Disc(x, y, radius, alpha float64, glow Glow) {
	r.calls = append(r.calls, paintCall{x: x, y: y, radius: radius, alpha: alpha, glow: glow})
}

func newTestField(count int) *Field {
	return NewField(Params{Width: 800, Height: 600, Count: count}, testRand())
}

func TestInitialize_SeedsInsideVisibleArea(t *testing.T) {
	f := newTestField(0)
	f.Initialize(150)

	if f.Len() != 150 {
		t.Fatalf("expected 150 bodies, got %d", f.Len())
	}
	for i, p := range f.Particles() {
		if p.X < 0 || p.X >= 800 || p.Y < 0 || p.Y >= 600 {
			t.Fatalf("body %d outside field: (%v,%v)", i, p.X, p.Y)
		}
		if p.Radius < 1 || p.Radius >= 4 {
			t.Fatalf("body %d radius %v out of [1,4)", i, p.Radius)
		}
		if p.Depth < 0 || p.Depth >= 1 {
			t.Fatalf("body %d depth %v out of [0,1)", i, p.Depth)
		}
	}
}

func TestInitialize_DiscardsExistingBodies(t *testing.T) {
	f := newTestField(50)
	f.Burst(10, 10, 5)
	f.Initialize(7)
	if f.Len() != 7 {
		t.Fatalf("expected 7 bodies after reinitialize, got %d", f.Len())
	}
}

func TestAdvance_VerticalPositionNeverDecreasesExceptOnReset(t *testing.T) {
	f := newTestField(300)
	f.SetWindTarget(1.5)

	resets := 0
	for frame := 0; frame < 2000; frame++ {
		before := f.Particles()
		f.Frame(nil)
		after := f.Particles()
		if len(after) != len(before) {
			t.Fatalf("frame %d: size changed from %d to %d", frame, len(before), len(after))
		}
		for i := range after {
			if after[i].Y >= before[i].Y {
				continue
			}
			if after[i].Y != -edgeMargin {
				t.Fatalf("frame %d body %d: y went from %v to %v without a reset", frame, i, before[i].Y, after[i].Y)
			}
			resets++
		}
	}
	if resets == 0 {
		t.Fatalf("expected at least one body to fall off and reset")
	}
}

func TestAdvance_WrapsHorizontally(t *testing.T) {
	f := newTestField(2)
	f.particles[0] = Particle{X: 800 + edgeMargin + 0.5, Y: 100}
	f.particles[1] = Particle{X: -edgeMargin - 0.5, Y: 100}

	f.Advance()

	if got := f.particles[0].X; got != -edgeMargin {
		t.Fatalf("expected right exit to re-enter at %v, got %v", -edgeMargin, got)
	}
	if got := f.particles[1].X; got != 800+edgeMargin {
		t.Fatalf("expected left exit to re-enter at %v, got %v", 800+edgeMargin, got)
	}
}

func TestAdvance_ResetPreservesCollectionSize(t *testing.T) {
	f := newTestField(3)
	f.particles[1].Y = 600 + edgeMargin + 5

	f.Advance()

	if f.Len() != 3 {
		t.Fatalf("expected size 3, got %d", f.Len())
	}
	if f.particles[1].Y != -edgeMargin {
		t.Fatalf("expected reset body at y=%v, got %v", -edgeMargin, f.particles[1].Y)
	}
}

func TestAdvance_AppliesKinematics(t *testing.T) {
	f := newTestField(1)
	f.particles[0] = Particle{
		X: 100, Y: 100,
		SpeedY: 1, SpeedX: 0.2,
		Swing: 0.5, SwingSpeed: 0.01, Angle: 0,
		Depth: 0.5,
	}
	f.wind.current = 0.4

	f.Advance()

	p := f.particles[0]
	wantX := 100 + math.Sin(0.01)*0.5 + 0.4*0.5 + 0.2
	wantY := 100 + 1*(0.5+0.5*0.5)
	if math.Abs(p.X-wantX) > 1e-12 {
		t.Fatalf("x: want %v, got %v", wantX, p.X)
	}
	if math.Abs(p.Y-wantY) > 1e-12 {
		t.Fatalf("y: want %v, got %v", wantY, p.Y)
	}
	if p.Angle != 0.01 {
		t.Fatalf("angle: want 0.01, got %v", p.Angle)
	}
}

func TestBurst_BelowSurplusKeepsEveryBody(t *testing.T) {
	f := newTestField(200)

	f.Burst(400, 300, 20)

	if f.Len() != 220 {
		t.Fatalf("expected 220 bodies after burst, got %d", f.Len())
	}
	for _, p := range f.Particles()[200:] {
		if p.X != 400 || p.Y != 300 {
			t.Fatalf("burst body not at origin: (%v,%v)", p.X, p.Y)
		}
		if p.SpeedX < -1.5 || p.SpeedX >= 1.5 {
			t.Fatalf("burst speedX %v out of range", p.SpeedX)
		}
		if p.SpeedY < 0 || p.SpeedY >= 2 {
			t.Fatalf("burst speedY %v out of range", p.SpeedY)
		}
	}
}

func TestBurst_TrimsOldestWhenSurplusExceeded(t *testing.T) {
	f := newTestField(200)
	for i := 0; i < 5; i++ {
		f.Burst(1, 1, 20)
	}
	if f.Len() != 300 {
		t.Fatalf("expected 300 bodies at exactly the surplus limit, got %d", f.Len())
	}
	newest := f.Particles()[f.Len()-1]

	f.Burst(2, 2, 20)

	if f.Len() != 200 {
		t.Fatalf("expected trim back to 200, got %d", f.Len())
	}
	// Trimming removes from the front, so the newest bodies survive at the back.
	last := f.Particles()[f.Len()-1]
	if last.X != 2 || last.Y != 2 {
		t.Fatalf("expected newest burst body at the back, got (%v,%v)", last.X, last.Y)
	}
	found := false
	for _, p := range f.Particles() {
		if p == newest {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected previous burst body to survive the trim")
	}
}

func TestSetCount_ReinitializesWithoutClamping(t *testing.T) {
	f := newTestField(200)
	f.SetCount(100)
	if f.Len() != 100 || f.Count() != 100 {
		t.Fatalf("expected 100 bodies, got len=%d count=%d", f.Len(), f.Count())
	}
	f.SetCount(900)
	if f.Len() != 900 {
		t.Fatalf("expected field to accept 900 unclamped, got %d", f.Len())
	}
}

func TestRender_FadesThenDrawsDiscsHalosAndGlow(t *testing.T) {
	f := newTestField(2)
	f.particles[0] = Particle{X: 1, Y: 2, Radius: 3, Opacity: 0.8, Blur: 1.5, Depth: 0.5}
	f.particles[1] = Particle{X: 5, Y: 6, Radius: 1.5, Opacity: 0.6, Blur: 0.2, Depth: 0.9}

	rec := &recordingSurface{}
	f.Render(rec)

	if len(rec.calls) != 4 {
		t.Fatalf("expected fade + 3 discs, got %d calls", len(rec.calls))
	}
	if !rec.calls[0].fade || rec.calls[0].alpha != DefaultTrailAlpha {
		t.Fatalf("expected first call to fade with %v, got %+v", DefaultTrailAlpha, rec.calls[0])
	}

	body := rec.calls[1]
	if body.radius != 3 || body.alpha != 0.8 {
		t.Fatalf("unexpected body disc %+v", body)
	}
	if body.glow.Blur != 5 || body.glow.Alpha != 0.4 {
		t.Fatalf("expected glow {5 0.4}, got %+v", body.glow)
	}

	halo := rec.calls[2]
	if halo.radius != 4 || math.Abs(halo.alpha-0.24) > 1e-12 {
		t.Fatalf("unexpected halo disc %+v", halo)
	}

	small := rec.calls[3]
	if small.glow != (Glow{}) {
		t.Fatalf("expected no glow for small body, got %+v", small.glow)
	}
}

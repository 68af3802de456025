package snow

import "math/rand/v2"

const (
	DefaultWindRate         = 0.01
	DefaultWindChangeChance = 0.01
)

// Wind is a scalar random walk. The current value eases toward a target which is
// occasionally replaced by a new uniform value in [-1, 1].
type Wind struct {
	current      float64
	target       float64
	rate         float64
	changeChance float64
	rng          *rand.Rand
}

// NewWind creates a calm wind. A non-positive rate or a negative change chance
// selects the defaults.
func NewWind(rate, changeChance float64, rng *rand.Rand) *Wind {
	if rate <= 0 || rate > 1 {
		rate = DefaultWindRate
	}
	if changeChance < 0 || changeChance > 1 {
		changeChance = DefaultWindChangeChance
	}
	if rng == nil {
		rng = newRand()
	}
	return &Wind{rate: rate, changeChance: changeChance, rng: rng}
}

// Tick runs one frame of the oscillator. The target is rolled before the ease
// step, so the new current value is always strictly closer to the target in
// effect after the call.
func (w *Wind) Tick() {
	if w.rng.Float64() < w.changeChance {
		w.target = (w.rng.Float64() - 0.5) * 2
	}
	w.current += (w.target - w.current) * w.rate
}

// SetTarget overrides the target only; the current value follows on later ticks.
func (w *Wind) SetTarget(v float64) {
	w.target = v
}

// SetTuning replaces the ease rate and change chance, ignoring invalid values.
func (w *Wind) SetTuning(rate, changeChance float64) {
	if rate > 0 && rate <= 1 {
		w.rate = rate
	}
	if changeChance >= 0 && changeChance <= 1 {
		w.changeChance = changeChance
	}
}

// Current is the wind applied this frame.
func (w *Wind) Current() float64 { return w.current }

// Target is the value Current is easing toward.
func (w *Wind) Target() float64 { return w.target }

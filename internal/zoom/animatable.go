package zoom

import (
	"math"
	"time"
)

const (
	springStiffness        = 1500.0 // medium stiffness, critically damped
	springThreshold        = 0.001
	decayVelocityThreshold = 0.1
	decayFrictionScale     = 4.2 // per-second decay rate of friction multiplier 1
)

type animMode uint8

const (
	animIdle animMode = iota
	animSpring
	animDecay
)

// Animatable is a float value kept inside [lower, upper] that can either be
// snapped to a new value or advanced over time by a spring or a decay.
type Animatable struct {
	value    float32
	target   float32
	velocity float32
	lower    float32
	upper    float32
	decayK   float64
	mode     animMode
}

// NewAnimatable returns an idle Animatable with unbounded limits.
func NewAnimatable(value float32) *Animatable {
	return &Animatable{
		value: value,
		lower: float32(math.Inf(-1)),
		upper: float32(math.Inf(1)),
	}
}

func (a *Animatable) Value() float32      { return a.value }
func (a *Animatable) Velocity() float32   { return a.velocity }
func (a *Animatable) LowerBound() float32 { return a.lower }
func (a *Animatable) UpperBound() float32 { return a.upper }
func (a *Animatable) IsRunning() bool     { return a.mode != animIdle }

// UpdateBounds changes the limits and clamps the current value into them.
// A decay that gets clamped stops where it hits the bound.
func (a *Animatable) UpdateBounds(lower, upper float32) {
	a.lower, a.upper = lower, upper
	v := Clamp(a.value, lower, upper)
	if v != a.value {
		a.value = v
		if a.mode == animDecay {
			a.Stop()
		}
	}
	if a.mode == animSpring {
		a.target = Clamp(a.target, lower, upper)
	}
}

// SnapTo cancels any running animation and jumps to v (clamped).
func (a *Animatable) SnapTo(v float32) {
	a.Stop()
	a.value = Clamp(v, a.lower, a.upper)
}

// AnimateTo starts a spring towards target, keeping the current velocity.
func (a *Animatable) AnimateTo(target float32) {
	a.target = Clamp(target, a.lower, a.upper)
	a.mode = animSpring
}

// AnimateDecay starts an exponential decay with the given initial velocity
// (units per second). friction is the multiplier of the base decay rate.
func (a *Animatable) AnimateDecay(velocity, friction float32) {
	if friction <= 0 {
		friction = 1
	}
	a.velocity = velocity
	a.decayK = float64(friction) * decayFrictionScale
	a.mode = animDecay
	if math.Abs(float64(velocity)) < decayVelocityThreshold {
		a.Stop()
	}
}

// Stop halts the animation at the current value.
func (a *Animatable) Stop() {
	a.mode = animIdle
	a.velocity = 0
}

// Step advances the running animation by dt and reports whether it is still
// running afterwards.
func (a *Animatable) Step(dt time.Duration) bool {
	t := dt.Seconds()
	if t <= 0 {
		return a.IsRunning()
	}
	switch a.mode {
	case animSpring:
		a.stepSpring(t)
	case animDecay:
		a.stepDecay(t)
	}
	return a.IsRunning()
}

func (a *Animatable) stepSpring(t float64) {
	omega := math.Sqrt(springStiffness)
	x0 := float64(a.value - a.target)
	v0 := float64(a.velocity)
	c2 := v0 + omega*x0
	e := math.Exp(-omega * t)
	x := (x0 + c2*t) * e
	v := (c2 - omega*(x0+c2*t)) * e
	if math.Abs(x) < springThreshold && math.Abs(v) < springThreshold*10 {
		a.value = a.target
		a.Stop()
		return
	}
	a.value = Clamp(a.target+float32(x), a.lower, a.upper)
	a.velocity = float32(v)
}

func (a *Animatable) stepDecay(t float64) {
	v0 := float64(a.velocity)
	e := math.Exp(-a.decayK * t)
	next := float64(a.value) + v0/a.decayK*(1-e)
	a.velocity = float32(v0 * e)
	a.value = float32(next)
	if a.value <= a.lower || a.value >= a.upper {
		a.value = Clamp(a.value, a.lower, a.upper)
		a.Stop()
		return
	}
	if math.Abs(float64(a.velocity)) < decayVelocityThreshold {
		a.Stop()
	}
}

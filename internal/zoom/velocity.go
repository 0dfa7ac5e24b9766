package zoom

import "fyne.io/fyne/v2"

const (
	velocitySamples      = 20
	velocityHorizonMs    = 100
	pointerStoppedGapMs  = 40
	minSamplesForFitting = 2
)

type velocitySample struct {
	t   int64
	pos fyne.Position
}

// VelocityTracker keeps the most recent pointer positions of a gesture and
// estimates the release velocity from them.
type VelocityTracker struct {
	samples [velocitySamples]velocitySample
	head    int // index of the newest sample
	n       int
}

// AddPosition records the position at timestamp tMillis.
func (vt *VelocityTracker) AddPosition(tMillis int64, pos fyne.Position) {
	vt.head = (vt.head + 1) % velocitySamples
	vt.samples[vt.head] = velocitySample{t: tMillis, pos: pos}
	if vt.n < velocitySamples {
		vt.n++
	}
}

// Reset drops all samples.
func (vt *VelocityTracker) Reset() {
	vt.n = 0
	vt.head = 0
}

// Velocity returns the estimated velocity in units per second on each axis.
// Samples older than 100ms relative to the newest, or separated from the
// next one by a pause of more than 40ms, are ignored.
func (vt *VelocityTracker) Velocity() (vx, vy float32) {
	if vt.n < minSamplesForFitting {
		return 0, 0
	}
	newest := vt.samples[vt.head]
	ts := make([]float64, 0, vt.n)
	xs := make([]float64, 0, vt.n)
	ys := make([]float64, 0, vt.n)
	prevT := newest.t
	for i := 0; i < vt.n; i++ {
		s := vt.samples[(vt.head-i+velocitySamples)%velocitySamples]
		age := newest.t - s.t
		if age > velocityHorizonMs || prevT-s.t > pointerStoppedGapMs {
			break
		}
		prevT = s.t
		ts = append(ts, float64(-age))
		xs = append(xs, float64(s.pos.X))
		ys = append(ys, float64(s.pos.Y))
	}
	if len(ts) < minSamplesForFitting {
		return 0, 0
	}
	return float32(slope(ts, xs) * 1000), float32(slope(ts, ys) * 1000)
}

// slope is the least-squares gradient of ys over ts.
func slope(ts, ys []float64) float64 {
	var mt, my float64
	for i := range ts {
		mt += ts[i]
		my += ys[i]
	}
	n := float64(len(ts))
	mt /= n
	my /= n
	var num, den float64
	for i := range ts {
		dt := ts[i] - mt
		num += dt * (ys[i] - my)
		den += dt * dt
	}
	if den == 0 {
		return 0
	}
	return num / den
}

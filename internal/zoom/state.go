package zoom

import (
	"math"
	"time"

	"fyne.io/fyne/v2"
)

const (
	// DefaultMaxScale is the zoom limit used by the image viewer.
	DefaultMaxScale float32 = 8
	// softFloorFactor leaves room below the minimum scale so the spring back
	// to the minimum is visible.
	softFloorFactor float32 = 0.9
	flingFriction   float32 = 3
	// A one-finger drag is horizontal when |dx| exceeds this many times |dy|.
	horizontalDragRatio float32 = 5
)

// State owns the scale and offset of one zoomable image page.
//
// Scale and offsets change only inside ApplyGesture (while a gesture session
// is active) and Step (while an animation runs). State is not safe for
// concurrent use; it belongs to the UI goroutine.
type State struct {
	minScale float32
	maxScale float32

	scale   *Animatable
	offsetX *Animatable
	offsetY *Animatable

	elementSize fyne.Size
	contentSize fyne.Size

	tracker   VelocityTracker
	willFling bool
	consume   *bool // decision for the current session, nil until decided

	listeners []func()
}

// NewState returns a State at scale 1 and offset (0,0).
func NewState(minScale, maxScale float32) *State {
	if minScale <= 0 {
		minScale = 1
	}
	if maxScale < minScale {
		maxScale = minScale
	}
	s := &State{
		minScale:  minScale,
		maxScale:  maxScale,
		scale:     NewAnimatable(1),
		offsetX:   NewAnimatable(0),
		offsetY:   NewAnimatable(0),
		willFling: true,
	}
	s.scale.UpdateBounds(minScale*softFloorFactor, maxScale)
	s.updateOffsetBounds()
	return s
}

// SetElementSize records the viewport size. It only affects later bound
// computations.
func (s *State) SetElementSize(size fyne.Size) {
	s.elementSize = size
}

// SetContentSize records the displayed size of the content at scale 1.
func (s *State) SetContentSize(size fyne.Size) {
	s.contentSize = size
}

// Scale reports the scale for layout and hit-testing; it never goes below
// the nominal minimum even while a spring back is running.
func (s *State) Scale() float32 {
	return max(s.scale.Value(), s.minScale)
}

// RawScale is the animated scale including the transient below the minimum.
func (s *State) RawScale() float32 {
	return s.scale.Value()
}

// Offset returns the current translation of the content centre.
func (s *State) Offset() fyne.Position {
	return fyne.NewPos(s.offsetX.Value(), s.offsetY.Value())
}

// OffsetBounds returns the current per-axis pan limit.
func (s *State) OffsetBounds() (bx, by float32) {
	return s.offsetX.UpperBound(), s.offsetY.UpperBound()
}

// AddListener registers fn to be called whenever scale or offset changes.
func (s *State) AddListener(fn func()) {
	s.listeners = append(s.listeners, fn)
}

// StartGesture begins a new gesture session: the consumption decision is
// recomputed and any fling in progress is superseded.
func (s *State) StartGesture() {
	s.consume = nil
	s.tracker.Reset()
	s.scale.Stop()
	s.offsetX.Stop()
	s.offsetY.Stop()
}

// CanConsumeGesture reports whether the current session belongs to this
// State or should be left to an enclosing pager. The first call of a session
// decides for the whole session.
func (s *State) CanConsumeGesture(pan fyne.Delta, zoom float32) bool {
	if s.consume != nil {
		return *s.consume
	}
	consume := true
	if zoom == 1 {
		if s.Scale() == s.minScale {
			consume = false
		} else {
			ratio := float32(math.Abs(float64(pan.DX)) / math.Abs(float64(pan.DY)))
			if ratio > horizontalDragRatio {
				if pan.DX < 0 && s.offsetX.Value() == s.offsetX.LowerBound() {
					// dragging right to left with the right edge already shown
					consume = false
				}
				if pan.DX > 0 && s.offsetX.Value() == s.offsetX.UpperBound() {
					// dragging left to right with the left edge already shown
					consume = false
				}
			}
		}
	}
	s.consume = &consume
	return consume
}

// ApplyGesture integrates one gesture sample. Offset bounds are recomputed
// from the new scale before the pan is added.
func (s *State) ApplyGesture(centroid fyne.Position, pan fyne.Delta, zoom float32, tMillis int64) {
	s.scale.SnapTo(s.scale.Value() * zoom)
	s.updateOffsetBounds()
	s.offsetX.SnapTo(s.offsetX.Value() + pan.DX)
	s.offsetY.SnapTo(s.offsetY.Value() + pan.DY)
	s.tracker.AddPosition(tMillis, centroid)
	if zoom != 1 {
		s.willFling = false
	}
	s.notify()
}

// Fling ends the session: a one-finger session continues with a decay on
// each offset axis and a scale below the minimum springs back to it.
func (s *State) Fling() {
	if s.willFling {
		vx, vy := s.tracker.Velocity()
		s.offsetX.AnimateDecay(vx, flingFriction)
		s.offsetY.AnimateDecay(vy, flingFriction)
	}
	s.willFling = true

	if s.scale.Value() < s.minScale {
		s.scale.AnimateTo(s.minScale)
	}
}

// IsAnimating reports whether Step has work to do.
func (s *State) IsAnimating() bool {
	return s.scale.IsRunning() || s.offsetX.IsRunning() || s.offsetY.IsRunning()
}

// Step advances running animations by dt and reports whether any is still
// running.
func (s *State) Step(dt time.Duration) bool {
	if !s.IsAnimating() {
		return false
	}
	if s.scale.IsRunning() {
		s.scale.Step(dt)
		s.updateOffsetBounds()
	}
	s.offsetX.Step(dt)
	s.offsetY.Step(dt)
	s.notify()
	return s.IsAnimating()
}

func (s *State) updateOffsetBounds() {
	bx, by := Bounds(s.contentSize, s.elementSize, s.scale.Value())
	s.offsetX.UpdateBounds(-bx, bx)
	s.offsetY.UpdateBounds(-by, by)
}

func (s *State) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

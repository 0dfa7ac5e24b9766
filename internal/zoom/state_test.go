package zoom

import (
	"math/rand"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 16 * time.Millisecond

func newTestState(content, element fyne.Size) *State {
	s := NewState(1, DefaultMaxScale)
	s.SetContentSize(content)
	s.SetElementSize(element)
	return s
}

// settle runs Step until every animation stops.
func settle(t *testing.T, s *State) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if !s.Step(frame) {
			return
		}
	}
	t.Fatal("animation did not settle")
}

func assertWithinBounds(t *testing.T, s *State, content, element fyne.Size) {
	t.Helper()
	bx, by := Bounds(content, element, s.RawScale())
	off := s.Offset()
	assert.LessOrEqual(t, abs32(off.X), bx+1e-3, "offsetX out of bounds at scale %v", s.RawScale())
	assert.LessOrEqual(t, abs32(off.Y), by+1e-3, "offsetY out of bounds at scale %v", s.RawScale())
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestBoundsHalfOverflow(t *testing.T) {
	tests := []struct {
		name    string
		content fyne.Size
		element fyne.Size
		scale   float32
		wantX   float32
		wantY   float32
	}{
		{"fits", fyne.NewSize(400, 300), fyne.NewSize(500, 500), 1, 0, 0},
		{"zoomed", fyne.NewSize(500, 250), fyne.NewSize(500, 500), 2, 250, 0},
		{"both axes", fyne.NewSize(500, 500), fyne.NewSize(500, 500), 3, 500, 500},
		{"zero content", fyne.Size{}, fyne.NewSize(500, 500), 4, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bx, by := Bounds(tt.content, tt.element, tt.scale)
			assert.Equal(t, tt.wantX, bx)
			assert.Equal(t, tt.wantY, by)
		})
	}
}

func TestFitSize(t *testing.T) {
	assert.Equal(t, fyne.NewSize(500, 250), FitSize(fyne.NewSize(2000, 1000), fyne.NewSize(500, 500)))
	assert.Equal(t, fyne.NewSize(250, 500), FitSize(fyne.NewSize(100, 200), fyne.NewSize(500, 500)))
	assert.Equal(t, fyne.Size{}, FitSize(fyne.Size{}, fyne.NewSize(500, 500)))
}

func TestNewStateStartsAtIdentity(t *testing.T) {
	s := NewState(1, DefaultMaxScale)
	assert.Equal(t, float32(1), s.Scale())
	assert.Equal(t, fyne.NewPos(0, 0), s.Offset())
	assert.False(t, s.IsAnimating())
}

func TestOffsetStaysWithinBounds(t *testing.T) {
	content := fyne.NewSize(600, 400)
	element := fyne.NewSize(600, 800)
	s := newTestState(content, element)
	rng := rand.New(rand.NewSource(7))

	var ts int64
	for session := 0; session < 20; session++ {
		s.StartGesture()
		for i := 0; i < 15; i++ {
			ts += 10
			zoom := float32(1)
			if rng.Intn(3) == 0 {
				zoom = 0.7 + rng.Float32()*0.8
			}
			pan := fyne.Delta{DX: rng.Float32()*400 - 200, DY: rng.Float32()*400 - 200}
			s.ApplyGesture(fyne.NewPos(300, 400), pan, zoom, ts)
			assertWithinBounds(t, s, content, element)
		}
		s.Fling()
		for s.Step(frame) {
			assertWithinBounds(t, s, content, element)
		}
		assertWithinBounds(t, s, content, element)
	}
}

func TestPanRecomputesBoundsBeforeApplying(t *testing.T) {
	content := fyne.NewSize(500, 500)
	element := fyne.NewSize(500, 500)
	s := newTestState(content, element)

	s.StartGesture()
	// at scale 1 there is nothing to pan, but zooming in the same sample
	// opens room for the pan
	s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{DX: 100}, 2, 0)
	assert.Equal(t, float32(2), s.Scale())
	assert.Equal(t, float32(100), s.Offset().X)

	s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{DX: 1000}, 1, 10)
	assert.Equal(t, float32(250), s.Offset().X)
}

func TestZeroContentMakesPanNoOp(t *testing.T) {
	s := newTestState(fyne.Size{}, fyne.NewSize(500, 500))
	s.StartGesture()
	s.ApplyGesture(fyne.NewPos(0, 0), fyne.Delta{DX: 50, DY: 50}, 2, 0)
	assert.Equal(t, fyne.NewPos(0, 0), s.Offset())
}

func TestScaleFloorAfterFling(t *testing.T) {
	starts := []float32{0.9, 0.93, 0.99, 1, 1.5, 4, DefaultMaxScale}
	for _, start := range starts {
		s := newTestState(fyne.NewSize(500, 500), fyne.NewSize(500, 500))
		s.StartGesture()
		s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{}, start, 0)
		require.InDelta(t, start, s.RawScale(), 1e-5)

		s.Fling()
		assert.GreaterOrEqual(t, s.Scale(), float32(1), "reported scale during spring back")
		settle(t, s)
		assert.GreaterOrEqual(t, s.Scale(), float32(1))
		assert.GreaterOrEqual(t, s.RawScale(), float32(1)-1e-4, "start %v", start)
		if start < 1 {
			assert.Equal(t, float32(1), s.RawScale())
		}
	}
}

func TestScaleClampedToSoftFloorAndMax(t *testing.T) {
	s := newTestState(fyne.NewSize(500, 500), fyne.NewSize(500, 500))
	s.StartGesture()
	s.ApplyGesture(fyne.NewPos(0, 0), fyne.Delta{}, 0.1, 0)
	assert.InDelta(t, 0.9, s.RawScale(), 1e-6)
	assert.Equal(t, float32(1), s.Scale())

	s.ApplyGesture(fyne.NewPos(0, 0), fyne.Delta{}, 100, 10)
	assert.Equal(t, DefaultMaxScale, s.RawScale())
}

func TestArbitrationIsCachedPerSession(t *testing.T) {
	s := newTestState(fyne.NewSize(500, 500), fyne.NewSize(500, 500))

	// not zoomed: a one finger drag is left to the pager
	s.StartGesture()
	assert.False(t, s.CanConsumeGesture(fyne.Delta{DX: 5, DY: 40}, 1))
	assert.False(t, s.CanConsumeGesture(fyne.Delta{DX: 5, DY: 40}, 1.4), "later pinch must not flip the decision")

	// a pinch is always consumed and stays consumed
	s.StartGesture()
	assert.True(t, s.CanConsumeGesture(fyne.Delta{}, 1.2))
	s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{}, 2, 0)
	s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{DX: 1000}, 1, 10)
	for i := 0; i < 5; i++ {
		assert.True(t, s.CanConsumeGesture(fyne.Delta{DX: 80, DY: 1}, 1))
	}

	// a fresh session decides again: now at the upper edge with a
	// horizontal drag, so the pager gets it
	s.StartGesture()
	assert.False(t, s.CanConsumeGesture(fyne.Delta{DX: 80, DY: 1}, 1))
	assert.False(t, s.CanConsumeGesture(fyne.Delta{DX: 0, DY: 80}, 2))
}

func TestEdgeHandOff(t *testing.T) {
	content := fyne.NewSize(500, 500)
	element := fyne.NewSize(500, 500)

	zoomedAtUpperEdge := func() *State {
		s := newTestState(content, element)
		s.StartGesture()
		s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{}, 2, 0)
		s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{DX: 10000}, 1, 10)
		bx, _ := s.OffsetBounds()
		require.Equal(t, bx, s.Offset().X)
		s.StartGesture()
		return s
	}

	tests := []struct {
		name string
		pan  fyne.Delta
		want bool
	}{
		{"horizontal towards edge", fyne.Delta{DX: 60, DY: 10}, false},
		{"pure horizontal towards edge", fyne.Delta{DX: 60}, false},
		{"horizontal away from edge", fyne.Delta{DX: -60, DY: 10}, true},
		{"ratio exactly five", fyne.Delta{DX: 50, DY: 10}, true},
		{"mostly vertical", fyne.Delta{DX: 20, DY: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := zoomedAtUpperEdge()
			assert.Equal(t, tt.want, s.CanConsumeGesture(tt.pan, 1))
		})
	}

	t.Run("lower edge", func(t *testing.T) {
		s := newTestState(content, element)
		s.StartGesture()
		s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{}, 2, 0)
		s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{DX: -10000}, 1, 10)
		s.StartGesture()
		assert.False(t, s.CanConsumeGesture(fyne.Delta{DX: -60, DY: 5}, 1))
	})
}

func TestFlingContinuesSingleFingerPan(t *testing.T) {
	s := newTestState(fyne.NewSize(500, 500), fyne.NewSize(500, 500))
	s.StartGesture()
	s.ApplyGesture(fyne.NewPos(250, 250), fyne.Delta{}, 2, 0)
	s.Fling()
	settle(t, s)

	s.StartGesture()
	for i := 0; i <= 5; i++ {
		// 1 unit per ms to the right
		s.ApplyGesture(fyne.NewPos(float32(i*10), 0), fyne.Delta{DX: 10}, 1, int64(i*10))
	}
	require.Equal(t, float32(60), s.Offset().X)

	s.Fling()
	assert.True(t, s.IsAnimating())
	settle(t, s)
	assert.InDelta(t, 60+1000/(flingFriction*decayFrictionScale), s.Offset().X, 1)
	assert.Equal(t, float32(0), s.Offset().Y)
}

func TestPinchDisablesFlingForOneSession(t *testing.T) {
	s := newTestState(fyne.NewSize(500, 500), fyne.NewSize(500, 500))
	s.StartGesture()
	for i := 0; i <= 5; i++ {
		zoom := float32(1)
		if i == 0 {
			zoom = 2
		}
		s.ApplyGesture(fyne.NewPos(float32(i*10), 0), fyne.Delta{DX: 10}, zoom, int64(i*10))
	}
	s.Fling()
	assert.False(t, s.IsAnimating())

	s.StartGesture()
	for i := 0; i <= 5; i++ {
		s.ApplyGesture(fyne.NewPos(float32(i*10), 0), fyne.Delta{DX: -10}, 1, int64(1000+i*10))
	}
	s.Fling()
	assert.True(t, s.IsAnimating())
}

func TestStartGestureSupersedesFling(t *testing.T) {
	s := newTestState(fyne.NewSize(500, 500), fyne.NewSize(500, 500))
	s.StartGesture()
	s.ApplyGesture(fyne.NewPos(0, 0), fyne.Delta{}, 0.9, 0)
	s.Fling()
	require.True(t, s.IsAnimating())

	s.StartGesture()
	assert.False(t, s.IsAnimating())
	assert.False(t, s.Step(frame))
}

func TestListenersNotified(t *testing.T) {
	s := newTestState(fyne.NewSize(500, 500), fyne.NewSize(500, 500))
	calls := 0
	s.AddListener(func() { calls++ })

	s.StartGesture()
	assert.Equal(t, 0, calls)
	s.ApplyGesture(fyne.NewPos(0, 0), fyne.Delta{}, 0.95, 0)
	assert.Equal(t, 1, calls)

	s.Fling()
	settle(t, s)
	assert.Greater(t, calls, 1)
}

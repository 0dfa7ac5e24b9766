package ui

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"viewonly/internal/zoom"
)

const frameInterval = 16 * time.Millisecond

const (
	defaultZoomScrollStep float32 = 1.1 // scale factor per scroll notch
	defaultSwipeThreshold float32 = 60
	defaultMinZoom        float32 = 1
)

// ZoomPanArea is a custom widget for displaying an image with zoom, pan and
// fling. Drags the zoom state does not claim are reported through OnSwipe so
// the viewer can page to the neighbouring item.
type ZoomPanArea struct {
	widget.BaseWidget

	originalImg image.Image
	raster      *canvas.Raster
	state       *zoom.State
	epoch       time.Time

	dragging bool
	consumed bool
	swipeDX  float32

	stop chan struct{} // non-nil while the animation loop runs

	OnTapped func()
	OnSwipe  func(dx float32)
}

// NewZoomPanArea creates a new ZoomPanArea widget. img may be nil until the
// image has been decoded.
func NewZoomPanArea(img image.Image, maxZoom float32) *ZoomPanArea {
	if maxZoom < defaultMinZoom {
		maxZoom = zoom.DefaultMaxScale
	}
	zpa := &ZoomPanArea{
		originalImg: img,
		state:       zoom.NewState(defaultMinZoom, maxZoom),
		epoch:       time.Now(),
	}
	zpa.raster = canvas.NewRaster(zpa.draw)
	zpa.state.AddListener(func() { canvas.Refresh(zpa.raster) })
	zpa.ExtendBaseWidget(zpa)
	return zpa
}

// State exposes the zoom state driving this widget.
func (zpa *ZoomPanArea) State() *zoom.State { return zpa.state }

// SetImage updates the image displayed by the widget.
func (zpa *ZoomPanArea) SetImage(img image.Image) {
	zpa.originalImg = img
	zpa.updateContentSize()
	zpa.Refresh()
}

// Resize keeps the zoom state's element and content sizes in step with the
// widget.
func (zpa *ZoomPanArea) Resize(size fyne.Size) {
	zpa.BaseWidget.Resize(size)
	zpa.state.SetElementSize(size)
	zpa.updateContentSize()
}

func (zpa *ZoomPanArea) imageSize() fyne.Size {
	if zpa.originalImg == nil {
		return fyne.Size{}
	}
	b := zpa.originalImg.Bounds()
	return fyne.NewSize(float32(b.Dx()), float32(b.Dy()))
}

// updateContentSize sets the content size to the image fitted into the
// widget, which is how it is drawn at scale 1.
func (zpa *ZoomPanArea) updateContentSize() {
	zpa.state.SetContentSize(zoom.FitSize(zpa.imageSize(), zpa.Size()))
}

// draw is the rendering function for the canvas.Raster.
func (zpa *ZoomPanArea) draw(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	size := zpa.Size()
	if zpa.originalImg == nil || w <= 0 || h <= 0 || size.Width <= 0 || size.Height <= 0 {
		return dst
	}

	src := zpa.originalImg.Bounds()
	fit := zoom.FitSize(zpa.imageSize(), size)
	px := float64(w) / float64(size.Width)
	k := float64(fit.Width) / float64(src.Dx()) * float64(zpa.state.RawScale()) * px
	off := zpa.state.Offset()
	cx := (float64(size.Width)/2 + float64(off.X)) * px
	cy := (float64(size.Height)/2 + float64(off.Y)) * px
	srcCX := float64(src.Min.X) + float64(src.Dx())/2
	srcCY := float64(src.Min.Y) + float64(src.Dy())/2

	m := f64.Aff3{
		k, 0, cx - k*srcCX,
		0, k, cy - k*srcCY,
	}
	draw.ApproxBiLinear.Transform(dst, m, zpa.originalImg, src, draw.Src, nil)
	return dst
}

// CreateRenderer is a Fyne lifecycle method.
func (zpa *ZoomPanArea) CreateRenderer() fyne.WidgetRenderer {
	return &zoomPanAreaRenderer{zpa: zpa}
}

func (zpa *ZoomPanArea) now() int64 {
	return time.Since(zpa.epoch).Milliseconds()
}

// Tapped forwards single taps to OnTapped.
func (zpa *ZoomPanArea) Tapped(_ *fyne.PointEvent) {
	if zpa.OnTapped != nil {
		zpa.OnTapped()
	}
}

// Scrolled zooms around the pointer. Each scroll notch is a gesture session
// of its own, so zooming below the minimum springs back immediately.
func (zpa *ZoomPanArea) Scrolled(ev *fyne.ScrollEvent) {
	var factor float32
	switch {
	case ev.Scrolled.DY > 0:
		factor = defaultZoomScrollStep
	case ev.Scrolled.DY < 0:
		factor = 1 / defaultZoomScrollStep
	default:
		return
	}

	zpa.stopAnimation()
	zpa.state.StartGesture()
	zpa.state.CanConsumeGesture(fyne.Delta{}, factor)

	// keep the content point under the pointer in place
	size := zpa.Size()
	off := zpa.state.Offset()
	px := ev.Position.X - size.Width/2
	py := ev.Position.Y - size.Height/2
	pan := fyne.NewDelta((px-off.X)*(1-factor), (py-off.Y)*(1-factor))

	zpa.state.ApplyGesture(ev.Position, pan, factor, zpa.now())
	zpa.state.Fling()
	zpa.startAnimation()
}

// Dragged pans the image, or accumulates a swipe when the zoom state leaves
// the drag to the pager.
func (zpa *ZoomPanArea) Dragged(ev *fyne.DragEvent) {
	if !zpa.dragging {
		zpa.dragging = true
		zpa.swipeDX = 0
		zpa.stopAnimation()
		zpa.state.StartGesture()
		zpa.consumed = zpa.state.CanConsumeGesture(ev.Dragged, 1)
	}
	if !zpa.consumed {
		zpa.swipeDX += ev.Dragged.DX
		return
	}
	zpa.state.ApplyGesture(ev.Position, ev.Dragged, 1, zpa.now())
}

// DragEnd flings a consumed drag or reports an unconsumed one as a swipe.
func (zpa *ZoomPanArea) DragEnd() {
	if !zpa.dragging {
		return
	}
	zpa.dragging = false
	if zpa.consumed {
		zpa.state.Fling()
		zpa.startAnimation()
		return
	}
	if zpa.OnSwipe != nil {
		zpa.OnSwipe(zpa.swipeDX)
	}
}

// startAnimation steps the zoom state once per frame on the main goroutine
// until every animation has settled.
func (zpa *ZoomPanArea) startAnimation() {
	if zpa.stop != nil || !zpa.state.IsAnimating() {
		return
	}
	stop := make(chan struct{})
	zpa.stop = stop
	go func() {
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				dt := now.Sub(last)
				last = now
				running := true
				fyne.DoAndWait(func() {
					if zpa.stop != stop {
						running = false
						return
					}
					running = zpa.state.Step(dt)
					if !running {
						zpa.stop = nil
					}
				})
				if !running {
					return
				}
			}
		}
	}()
}

func (zpa *ZoomPanArea) stopAnimation() {
	if zpa.stop != nil {
		close(zpa.stop)
		zpa.stop = nil
	}
}

// Close stops any running animation. The widget must not be used afterwards.
func (zpa *ZoomPanArea) Close() {
	zpa.stopAnimation()
}

type zoomPanAreaRenderer struct{ zpa *ZoomPanArea }

func (r *zoomPanAreaRenderer) Layout(size fyne.Size)        { r.zpa.raster.Resize(size) }
func (r *zoomPanAreaRenderer) MinSize() fyne.Size           { return fyne.NewSize(100, 100) }
func (r *zoomPanAreaRenderer) Refresh()                     { canvas.Refresh(r.zpa.raster) }
func (r *zoomPanAreaRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.zpa.raster} }
func (r *zoomPanAreaRenderer) Destroy()                     { r.zpa.stopAnimation() }

var _ fyne.Widget = (*ZoomPanArea)(nil)
var _ fyne.Scrollable = (*ZoomPanArea)(nil)
var _ fyne.Draggable = (*ZoomPanArea)(nil)
var _ fyne.Tappable = (*ZoomPanArea)(nil)

package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"viewonly/internal/media"
	"viewonly/internal/nav"
	"viewonly/internal/service"
)

// viewerScreen pages through the gallery items one at a time. Every page
// gets a fresh zoom area or video page; nothing survives paging away.
type viewerScreen struct {
	a       *App
	items   []media.Entry
	index   int
	visible bool

	area    *ZoomPanArea
	video   *videoPage
	loadSeq int

	controlsVisible bool
	wasFullScreen   bool

	title   *widget.Label
	prevBtn *widget.Button
	nextBtn *widget.Button
	topBar  *fyne.Container
	page    *fyne.Container
	root    *fyne.Container
}

func newViewerScreen(a *App) *viewerScreen {
	v := &viewerScreen{a: a, controlsVisible: true}
	v.title = widget.NewLabel("")
	v.title.Truncation = fyne.TextTruncateEllipsis
	back := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), a.goBack)
	v.prevBtn = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), v.previous)
	v.nextBtn = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), v.next)
	v.topBar = container.NewBorder(nil, nil, back, container.NewHBox(v.prevBtn, v.nextBtn), v.title)
	v.page = container.NewStack()
	v.root = container.NewBorder(v.topBar, nil, nil, nil, v.page)
	return v
}

func (v *viewerScreen) content() fyne.CanvasObject { return v.root }

func (v *viewerScreen) show(r nav.Route) {
	v.visible = true
	v.wasFullScreen = v.a.win.FullScreen()
	v.items = v.a.state.Items
	v.setControlsVisible(true)
	v.showPage(r.Index)
}

func (v *viewerScreen) hide() {
	v.visible = false
	v.closePage()
	v.a.win.SetFullScreen(v.wasFullScreen)
}

// setItems follows a reloaded gallery. The viewer stays on the same item
// when it is still present and leaves when the list became empty.
func (v *viewerScreen) setItems(items []media.Entry) {
	if !v.visible {
		v.items = items
		return
	}
	var uri string
	if v.index < len(v.items) {
		uri = v.items[v.index].URI
	}
	v.items = items
	if len(items) == 0 {
		v.a.goBack()
		return
	}
	if i := service.IndexOf(items, uri); i >= 0 {
		v.index = i
		v.a.nav.SetIndex(i)
		v.updateTitle()
		return
	}
	v.showPage(min(v.index, len(items)-1))
}

func (v *viewerScreen) closePage() {
	v.loadSeq++
	if v.area != nil {
		v.area.Close()
		v.area = nil
	}
	if v.video != nil {
		v.video.Close()
		v.video = nil
	}
	v.page.Objects = nil
}

func (v *viewerScreen) showPage(index int) {
	if len(v.items) == 0 {
		return
	}
	index = max(0, min(index, len(v.items)-1))
	v.closePage()
	v.index = index
	v.a.nav.SetIndex(index)
	e := v.items[index]

	if e.IsVideo {
		v.video = newVideoPage(v.a, e)
		v.video.OnTapped = v.toggleControls
		v.video.setControlsVisible(v.controlsVisible)
		v.page.Objects = []fyne.CanvasObject{v.video.content()}
	} else {
		area := NewZoomPanArea(nil, v.a.cfg.Viewer.MaxZoom)
		area.OnTapped = v.toggleControls
		area.OnSwipe = v.swiped
		v.area = area
		v.page.Objects = []fyne.CanvasObject{area}
		v.loadImage(area, e)
	}
	v.page.Refresh()
	v.updateTitle()
}

func (v *viewerScreen) loadImage(area *ZoomPanArea, e media.Entry) {
	seq := v.loadSeq
	go func() {
		_, img, err := v.a.images.Load(e.Path)
		fyne.Do(func() {
			if seq != v.loadSeq {
				return
			}
			if err != nil {
				v.a.logf("Unable to display %s: %v", e.Name(), err)
				return
			}
			area.SetImage(img)
		})
	}()
}

func (v *viewerScreen) updateTitle() {
	if len(v.items) == 0 {
		v.title.SetText("")
		return
	}
	v.title.SetText(fmt.Sprintf("%s  (%d / %d)", v.items[v.index].Name(), v.index+1, len(v.items)))
	if v.index > 0 {
		v.prevBtn.Enable()
	} else {
		v.prevBtn.Disable()
	}
	if v.index < len(v.items)-1 {
		v.nextBtn.Enable()
	} else {
		v.nextBtn.Disable()
	}
}

func (v *viewerScreen) next() {
	if v.index < len(v.items)-1 {
		v.showPage(v.index + 1)
	}
}

func (v *viewerScreen) previous() {
	if v.index > 0 {
		v.showPage(v.index - 1)
	}
}

// swiped pages on a horizontal drag the zoom area did not claim.
func (v *viewerScreen) swiped(dx float32) {
	switch {
	case dx <= -defaultSwipeThreshold:
		v.next()
	case dx >= defaultSwipeThreshold:
		v.previous()
	}
}

// toggleControls hides or shows the bars and switches full screen with
// them.
func (v *viewerScreen) toggleControls() {
	v.setControlsVisible(!v.controlsVisible)
	v.a.win.SetFullScreen(!v.controlsVisible || v.wasFullScreen)
}

func (v *viewerScreen) setControlsVisible(visible bool) {
	v.controlsVisible = visible
	if visible {
		v.topBar.Show()
	} else {
		v.topBar.Hide()
	}
	if v.video != nil {
		v.video.setControlsVisible(visible)
	}
}

// togglePlayback pauses or resumes the video page, if one is showing.
func (v *viewerScreen) togglePlayback() {
	if v.video != nil {
		v.video.toggle()
	}
}


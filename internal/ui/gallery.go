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

const (
	loadingMsg = "Loading media..."
	noMediaMsg = "No photos or videos found. Check the media folders in the configuration or the folder settings."
)

type galleryScreen struct {
	a     *App
	items []media.Entry

	grid     *widget.GridWrap
	message  *widget.Label
	count    *widget.Label
	settings *multiTapButton
	root     fyne.CanvasObject
}

func newGalleryScreen(a *App) *galleryScreen {
	g := &galleryScreen{a: a}

	g.grid = widget.NewGridWrap(
		func() int { return len(g.items) },
		func() fyne.CanvasObject { return newThumbCell(a.thumbs, ThumbnailWidth) },
		func(id widget.GridWrapItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(g.items) {
				return
			}
			e := g.items[id]
			obj.(*thumbCell).set(e.Path, e.IsVideo)
		},
	)
	g.grid.OnSelected = func(id widget.GridWrapItemID) {
		g.grid.UnselectAll()
		a.openViewer(id)
	}

	g.message = widget.NewLabel(loadingMsg)
	g.message.Alignment = fyne.TextAlignCenter
	g.message.Wrapping = fyne.TextWrapWord

	g.count = widget.NewLabel("")
	g.settings = newMultiTapButton(theme.SettingsIcon(), a.tapGate)

	title := widget.NewLabelWithStyle(appTitle, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	top := container.NewBorder(nil, nil, title, container.NewHBox(g.count, g.settings))
	g.root = container.NewBorder(top, nil, nil, nil, container.NewStack(g.grid, container.NewCenter(g.message)))
	g.grid.Hide()
	return g
}

func (g *galleryScreen) content() fyne.CanvasObject { return g.root }

func (g *galleryScreen) show(_ nav.Route) {}

func (g *galleryScreen) hide() {
	g.a.tapGate.Reset()
}

func (g *galleryScreen) setState(st service.GalleryState) {
	g.items = st.Items
	switch {
	case !st.Loaded:
		g.message.SetText(loadingMsg)
		g.message.Show()
		g.grid.Hide()
	case len(st.Items) == 0:
		g.message.SetText(noMediaMsg)
		g.message.Show()
		g.grid.Hide()
	default:
		g.message.Hide()
		g.grid.Show()
	}
	g.count.SetText(fmt.Sprintf("%d items", len(st.Items)))
	g.grid.Refresh()
}

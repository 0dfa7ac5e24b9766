package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"viewonly/internal/gate"
)

// multiTapButton is an icon that counts taps towards a TapGate and shows
// the progress in a small badge while a sequence is running.
type multiTapButton struct {
	widget.BaseWidget
	image *canvas.Image
	badge *canvas.Text
	gate  *gate.TapGate
}

func newMultiTapButton(res fyne.Resource, g *gate.TapGate) *multiTapButton {
	b := &multiTapButton{
		image: canvas.NewImageFromResource(res),
		badge: canvas.NewText("", theme.Color(theme.ColorNamePrimary)),
		gate:  g,
	}
	b.image.FillMode = canvas.ImageFillContain
	b.image.SetMinSize(fyne.NewSquareSize(theme.IconInlineSize() * 1.5))
	b.badge.TextSize = theme.CaptionTextSize()
	b.badge.TextStyle.Bold = true
	g.AddListener(b.setCount)
	b.ExtendBaseWidget(b)
	return b
}

func (b *multiTapButton) CreateRenderer() fyne.WidgetRenderer {
	corner := container.NewVBox(layout.NewSpacer(), container.NewHBox(layout.NewSpacer(), b.badge))
	return widget.NewSimpleRenderer(container.NewStack(b.image, corner))
}

// Tapped counts one trigger.
func (b *multiTapButton) Tapped(_ *fyne.PointEvent) {
	b.gate.Trigger()
}

func (b *multiTapButton) setCount(count int) {
	if count == 0 || b.gate.Required() <= 1 {
		b.badge.Text = ""
	} else {
		b.badge.Text = fmt.Sprintf("%d/%d", count, b.gate.Required())
	}
	b.badge.Refresh()
}

var _ fyne.Tappable = (*multiTapButton)(nil)

package ui

import (
	"context"
	"errors"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"viewonly/internal/media"
	"viewonly/internal/video"
)

// videoPage plays one video in an external mpv window and mirrors its state
// in a play button, position labels and a seek bar.
type videoPage struct {
	a      *App
	entry  media.Entry
	ctl    *video.Controller
	ctx    context.Context
	cancel context.CancelFunc

	updating bool // the seek bar is being set from a poll

	status   *widget.Label
	external *widget.Button
	playBtn  *widget.Button
	position *widget.Label
	duration *widget.Label
	seek     *widget.Slider
	controls *fyne.Container
	root     *tapArea

	OnTapped func()
}

func newVideoPage(a *App, e media.Entry) *videoPage {
	p := &videoPage{
		a:     a,
		entry: e,
		ctl:   video.NewController(a.cfg.VideoPollInterval()),
	}
	p.ctx, p.cancel = context.WithCancel(a.ctx)

	p.status = widget.NewLabel("Opening " + e.Name() + "...")
	p.status.Alignment = fyne.TextAlignCenter
	p.status.Wrapping = fyne.TextWrapWord
	p.external = widget.NewButtonWithIcon("Open with system player", theme.MediaVideoIcon(), p.openExternally)
	p.external.Hide()

	p.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), p.toggle)
	p.playBtn.Disable()
	p.position = widget.NewLabel(video.FormatPosition(0))
	p.duration = widget.NewLabel(video.FormatPosition(0))
	p.seek = widget.NewSlider(0, 1)
	p.seek.Step = 0.1
	p.seek.OnChanged = func(v float64) {
		if p.updating {
			return
		}
		pos := time.Duration(v * float64(time.Second))
		p.position.SetText(video.FormatPosition(pos))
		go p.ctl.Seek(pos)
	}
	p.seek.OnChangeEnded = func(float64) {
		if p.updating {
			return
		}
		go p.ctl.SeekFinished()
	}

	p.controls = container.NewBorder(nil, nil,
		container.NewHBox(p.playBtn, p.position),
		p.duration,
		p.seek,
	)
	icon := widget.NewIcon(theme.FileVideoIcon())
	center := container.NewCenter(container.NewVBox(icon, p.status, p.external))
	p.root = newTapArea(container.NewBorder(nil, p.controls, nil, nil, center), func() {
		if p.OnTapped != nil {
			p.OnTapped()
		}
	})

	p.ctl.AddListener(func(s video.Status) {
		fyne.Do(func() { p.render(s) })
	})
	go p.open()
	return p
}

func (p *videoPage) content() fyne.CanvasObject { return p.root }

func (p *videoPage) open() {
	player, err := video.OpenMPV(p.ctx, p.a.cfg.Video.Player, p.entry.URI, p.ctl.Callbacks())
	if err != nil {
		if errors.Is(err, context.Canceled) || p.ctx.Err() != nil {
			return
		}
		fyne.Do(func() {
			p.status.SetText("Playback unavailable: " + err.Error())
			p.external.Show()
		})
		return
	}
	if p.ctx.Err() != nil {
		player.Close()
		return
	}
	p.ctl.Attach(player)
	if p.ctx.Err() != nil {
		p.ctl.Detach()
		return
	}
	fyne.Do(func() { p.status.SetText(p.entry.Name()) })
	p.ctl.Monitor(p.ctx)
}

func (p *videoPage) openExternally() {
	u, err := url.Parse(p.entry.URI)
	if err != nil {
		p.a.logf("Invalid video location %s: %v", p.entry.URI, err)
		return
	}
	if err := p.a.app.OpenURL(u); err != nil {
		p.a.logf("Unable to open %s: %v", p.entry.Name(), err)
	}
}

func (p *videoPage) render(s video.Status) {
	if s.Prepared {
		p.playBtn.Enable()
	} else {
		p.playBtn.Disable()
	}
	if s.Playing {
		p.playBtn.SetIcon(theme.MediaPauseIcon())
	} else {
		p.playBtn.SetIcon(theme.MediaPlayIcon())
	}
	p.position.SetText(video.FormatPosition(s.Position))
	p.duration.SetText(video.FormatPosition(s.Duration))

	p.updating = true
	p.seek.Max = max(s.Duration.Seconds(), 1)
	p.seek.SetValue(s.Position.Seconds())
	p.updating = false
}

func (p *videoPage) toggle() {
	go p.ctl.Toggle()
}

func (p *videoPage) setControlsVisible(visible bool) {
	if visible {
		p.controls.Show()
	} else {
		p.controls.Hide()
	}
}

// Close stops polling and quits the player.
func (p *videoPage) Close() {
	p.cancel()
	go p.ctl.Detach()
}

// tapArea makes its content respond to taps.
type tapArea struct {
	widget.BaseWidget
	content  fyne.CanvasObject
	onTapped func()
}

func newTapArea(content fyne.CanvasObject, onTapped func()) *tapArea {
	t := &tapArea{content: content, onTapped: onTapped}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tapArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

func (t *tapArea) Tapped(_ *fyne.PointEvent) {
	if t.onTapped != nil {
		t.onTapped()
	}
}

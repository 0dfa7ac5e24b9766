package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"viewonly/internal/gate"
	"viewonly/internal/nav"
	"viewonly/internal/settings"
)

var (
	darkThemeLabels  = []string{"Off", "On", "Follow system"}
	colorThemeLabels = []string{"App colors", "System accent"}
)

func countOptions() []string {
	opts := make([]string, 0, gate.MaxRequiredCount)
	for n := gate.MinRequiredCount; n <= gate.MaxRequiredCount; n++ {
		opts = append(opts, strconv.Itoa(n))
	}
	return opts
}

type settingsScreen struct {
	a        *App
	updating bool

	dark  *widget.RadioGroup
	color *widget.RadioGroup
	taps  *widget.Select
	backs *widget.Select
	root  fyne.CanvasObject
}

func newSettingsScreen(a *App) *settingsScreen {
	s := &settingsScreen{a: a}

	s.dark = widget.NewRadioGroup(darkThemeLabels, func(label string) {
		if s.updating {
			return
		}
		s.save(a.repo.SetDarkTheme(settings.DarkTheme(indexOf(darkThemeLabels, label))))
	})
	s.dark.Required = true
	s.color = widget.NewRadioGroup(colorThemeLabels, func(label string) {
		if s.updating {
			return
		}
		s.save(a.repo.SetColorTheme(settings.ColorTheme(indexOf(colorThemeLabels, label))))
	})
	s.color.Required = true
	s.taps = widget.NewSelect(countOptions(), func(v string) {
		if s.updating {
			return
		}
		n, _ := strconv.Atoi(v)
		s.save(a.repo.SetTapCountToOpenSettings(n))
	})
	s.backs = widget.NewSelect(countOptions(), func(v string) {
		if s.updating {
			return
		}
		n, _ := strconv.Atoi(v)
		s.save(a.repo.SetMultiGoBack(n))
	})

	form := widget.NewForm(
		widget.NewFormItem("Dark theme", s.dark),
		widget.NewFormItem("Color theme", s.color),
		widget.NewFormItem("Taps to open settings", s.taps),
		widget.NewFormItem("Back presses to exit", s.backs),
	)
	folders := widget.NewButtonWithIcon("Folders", theme.FolderIcon(), func() {
		a.nav.Push(nav.Route{Screen: nav.FolderSettings})
	})
	shortcuts := widget.NewButtonWithIcon("Keyboard shortcuts", theme.ComputerIcon(), a.showShortcuts)
	about := widget.NewButtonWithIcon("About", theme.InfoIcon(), func() {
		NewAbout(a.win, appTitle, appVersion, resourceIconPng).Show()
	})

	back := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), a.goBack)
	title := widget.NewLabelWithStyle("Settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	top := container.NewBorder(nil, nil, back, nil, title)
	body := container.NewVBox(form, widget.NewSeparator(), folders, shortcuts, about)
	s.root = container.NewBorder(top, nil, nil, nil, container.NewVScroll(body))
	s.refresh(a.repo.Settings())
	return s
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return 0
}

func (s *settingsScreen) content() fyne.CanvasObject { return s.root }

func (s *settingsScreen) show(_ nav.Route) { s.refresh(s.a.repo.Settings()) }

func (s *settingsScreen) hide() {}

// refresh shows st without writing it back.
func (s *settingsScreen) refresh(st settings.AppSettings) {
	s.updating = true
	defer func() { s.updating = false }()
	s.dark.SetSelected(darkThemeLabels[st.DarkTheme])
	s.color.SetSelected(colorThemeLabels[st.ColorTheme])
	s.taps.SetSelected(strconv.Itoa(st.TapCountToOpenSettings))
	s.backs.SetSelected(strconv.Itoa(st.MultiGoBack))
}

func (s *settingsScreen) save(err error) {
	if err != nil {
		dialog.ShowError(err, s.a.win)
	}
}

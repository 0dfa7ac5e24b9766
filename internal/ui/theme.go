package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"viewonly/internal/settings"
)

// appPrimary is the accent used when the color theme is set to the app's own.
var appPrimary = color.NRGBA{R: 0x19, G: 0x76, B: 0xd2, A: 0xff}

// appTheme wraps an existing theme and applies the dark and color theme
// preferences on top of it.
type appTheme struct {
	fyne.Theme
	dark  settings.DarkTheme
	color settings.ColorTheme
}

var _ fyne.Theme = (*appTheme)(nil)

// Color forces the variant unless the preference follows the system, and
// replaces the primary color when the app palette is selected.
func (t *appTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch t.dark {
	case settings.DarkThemeOff:
		variant = theme.VariantLight
	case settings.DarkThemeOn:
		variant = theme.VariantDark
	}
	if t.color == settings.ColorThemeApp {
		switch name {
		case theme.ColorNamePrimary, theme.ColorNameFocus, theme.ColorNameHyperlink:
			return appPrimary
		}
	}
	return t.Theme.Color(name, variant)
}

func (t *appTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.Theme.Font(style)
}

func (t *appTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.Theme.Icon(name)
}

func (t *appTheme) Size(name fyne.ThemeSizeName) float32 {
	return t.Theme.Size(name)
}

// NewAppTheme creates a theme wrapper for the given preferences.
func NewAppTheme(base fyne.Theme, dark settings.DarkTheme, colorTheme settings.ColorTheme) fyne.Theme {
	return &appTheme{Theme: base, dark: dark, color: colorTheme}
}

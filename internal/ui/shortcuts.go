// Package ui  Shortcuts for keyboard actions
package ui

import (
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"viewonly/internal/nav"
)

func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}
	return falseVal
}

func (a *App) buildKeyboardShortcuts() {
	if runtime.GOOS == "darwin" {
		a.mainModKey = fyne.KeyModifierSuper
	} else {
		a.mainModKey = fyne.KeyModifierControl
	}

	// ctrl+q to quit application
	a.win.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyQ,
		Modifier: a.mainModKey,
	}, func(_ fyne.Shortcut) { a.quit() })

	a.win.Canvas().SetOnTypedKey(a.typedKey)
}

func (a *App) typedKey(key *fyne.KeyEvent) {
	switch key.Name {
	// back closes dialogs first, then walks the navigation stack
	case fyne.KeyEscape, fyne.KeyBackspace, mobile.KeyBack:
		if top := a.win.Canvas().Overlays().Top(); top != nil {
			top.Hide()
			return
		}
		a.goBack()
	case fyne.KeyF11:
		a.win.SetFullScreen(!a.win.FullScreen())
	}

	if a.nav.Current().Screen != nav.Viewer {
		return
	}
	switch key.Name {
	case fyne.KeyRight, fyne.KeyPageDown:
		a.viewer.next()
	case fyne.KeyLeft, fyne.KeyPageUp:
		a.viewer.previous()
	case fyne.KeyHome:
		a.viewer.showPage(0)
	case fyne.KeyEnd:
		a.viewer.showPage(len(a.viewer.items) - 1)
	case fyne.KeySpace, fyne.KeyP:
		a.viewer.togglePlayback()
	case fyne.KeyReturn, fyne.KeyEnter:
		a.viewer.toggleControls()
	}
}

func (a *App) showShortcuts() {
	shortcuts := []string{
		"Ctrl+Q",
		"Esc, Backspace",
		"F11",
		"Arrow Right, Page Down", "Arrow Left, Page Up",
		"Home", "End",
		"Space or P",
		"Enter",
		"Mouse wheel",
		"Drag",
	}
	descriptions := []string{
		"Quit Application",
		"Back (press repeatedly at the gallery to exit)",
		"Toggle Full Screen",
		"Next Item", "Previous Item",
		"First Item", "Last Item",
		"Play / Pause Video",
		"Show / Hide Controls",
		"Zoom Image",
		"Pan Image, or Swipe When Not Zoomed",
	}

	win := a.app.NewWindow("Keyboard Shortcuts")
	table := widget.NewTable(
		func() (int, int) { return len(descriptions) + 1, 2 }, // +1 for header row
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			isHeader := id.Row == 0 // First row is header
			dataRowIndex := id.Row - 1

			if id.Col == 0 { // Description column
				label.SetText(ternary(isHeader, "Description", descriptions[max(dataRowIndex, 0)]))
			} else { // Shortcut column
				label.SetText(ternary(isHeader, "Shortcut", shortcuts[max(dataRowIndex, 0)]))
			}
			label.TextStyle.Bold = isHeader
		},
	)
	table.SetColumnWidth(0, 340)
	table.SetColumnWidth(1, 220)
	win.SetContent(table)
	win.Resize(fyne.NewSize(580, 420))
	win.Show()
}

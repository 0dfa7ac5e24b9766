package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"viewonly/internal/nav"
	"viewonly/internal/service"
)

const (
	folderThumbSize = 56
	noFoldersMsg    = "No folders with photos or videos."
)

// foldersScreen lists every media folder with a switch that hides it from
// the gallery.
type foldersScreen struct {
	a      *App
	items  []service.FolderItem
	cancel context.CancelFunc

	list    *widget.List
	message *widget.Label
	root    fyne.CanvasObject
}

func newFoldersScreen(a *App) *foldersScreen {
	f := &foldersScreen{a: a}

	f.list = widget.NewList(
		func() int { return len(f.items) },
		func() fyne.CanvasObject {
			name := widget.NewLabelWithStyle("folder", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
			parent := widget.NewLabel("parent")
			parent.Truncation = fyne.TextTruncateEllipsis
			check := widget.NewCheck("", nil)
			return container.NewBorder(nil, nil,
				newThumbCell(a.thumbs, folderThumbSize),
				check,
				container.NewVBox(name, parent),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(f.items) {
				return
			}
			f.updateRow(f.items[id], obj.(*fyne.Container))
		},
	)
	f.list.OnSelected = func(id widget.ListItemID) { f.list.UnselectAll() }

	f.message = widget.NewLabel(loadingMsg)
	f.message.Alignment = fyne.TextAlignCenter

	back := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), a.goBack)
	title := widget.NewLabelWithStyle("Folders", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	top := container.NewBorder(nil, nil, back, nil, title)
	f.root = container.NewBorder(top, nil, nil, nil, container.NewStack(f.list, container.NewCenter(f.message)))
	return f
}

// updateRow fills a row built by the list's create function. Border puts
// the center object first, followed by the leading and trailing ones.
func (f *foldersScreen) updateRow(item service.FolderItem, row *fyne.Container) {
	texts := row.Objects[0].(*fyne.Container)
	texts.Objects[0].(*widget.Label).SetText(item.Name)
	texts.Objects[1].(*widget.Label).SetText(item.ParentPath)
	row.Objects[1].(*thumbCell).set(item.ThumbnailPath, item.IsVideo)

	check := row.Objects[2].(*widget.Check)
	check.OnChanged = nil
	check.SetChecked(item.Visible)
	id := item.ID
	check.OnChanged = func(visible bool) {
		if err := f.a.Service.SetFolderVisibility(id, visible); err != nil {
			dialog.ShowError(err, f.a.win)
		}
	}
}

func (f *foldersScreen) content() fyne.CanvasObject { return f.root }

func (f *foldersScreen) show(_ nav.Route) {
	f.items = nil
	f.message.SetText(loadingMsg)
	f.message.Show()
	f.list.Refresh()

	ctx, cancel := context.WithCancel(f.a.ctx)
	f.cancel = cancel
	model := f.a.Service.NewFolders()
	states, unsubscribe := model.State().Subscribe()
	go func() {
		defer model.Close()
		if err := model.Run(ctx); err != nil && ctx.Err() == nil {
			f.a.logf("Folder list stopped: %v", err)
		}
	}()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case items, ok := <-states:
				if !ok {
					return
				}
				fyne.Do(func() {
					if ctx.Err() == nil {
						f.setItems(items)
					}
				})
			}
		}
	}()
}

func (f *foldersScreen) setItems(items []service.FolderItem) {
	f.items = items
	if len(items) == 0 {
		f.message.SetText(noFoldersMsg)
		f.message.Show()
	} else {
		f.message.Hide()
	}
	f.list.Refresh()
}

func (f *foldersScreen) hide() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

package service

import (
	"context"
	"errors"

	"viewonly/internal/media"
	"viewonly/internal/settings"
	"viewonly/internal/stream"
)

// FolderItem is one row of the folder settings screen.
type FolderItem struct {
	media.Folder
	Visible bool
}

// Folders lists every folder with its visibility.
type Folders struct {
	svc    *Service
	state  *stream.Latest[[]FolderItem]
	reload chan struct{}
}

func (s *Service) NewFolders() *Folders {
	return &Folders{
		svc:    s,
		state:  stream.NewLatest[[]FolderItem](),
		reload: make(chan struct{}, 1),
	}
}

func (f *Folders) State() *stream.Latest[[]FolderItem] { return f.state }

func (f *Folders) Reload() {
	select {
	case f.reload <- struct{}{}:
	default:
	}
}

// Run loads the folder list once, then republishes it whenever the hidden
// set changes. The list itself is only queried again on Reload.
func (f *Folders) Run(ctx context.Context) error {
	updates, cancel := f.svc.Settings.Watch()
	defer cancel()

	folders, err := f.svc.Catalog.LoadFolders(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		f.svc.logf("Error loading folders: %v", err)
	}
	cur := f.svc.Settings.Settings()
	f.state.Publish(combine(folders, cur))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			cur = st
		case <-f.reload:
			list, err := f.svc.Catalog.LoadFolders(ctx)
			if err != nil {
				f.svc.logf("Error loading folders: %v", err)
				continue
			}
			folders = list
		}
		f.state.Publish(combine(folders, cur))
	}
}

func (f *Folders) Close() { f.state.Close() }

func combine(folders []media.Folder, st settings.AppSettings) []FolderItem {
	items := make([]FolderItem, 0, len(folders))
	for _, folder := range folders {
		items = append(items, FolderItem{Folder: folder, Visible: !st.IsHidden(folder.ID)})
	}
	return items
}

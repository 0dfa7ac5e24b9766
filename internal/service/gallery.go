package service

import (
	"context"
	"errors"
	"slices"

	"viewonly/internal/media"
	"viewonly/internal/settings"
	"viewonly/internal/stream"
)

// GalleryState is everything the gallery and the viewer pager render.
type GalleryState struct {
	Loaded                 bool
	Items                  []media.Entry
	TapCountToOpenSettings int
	MultiGoBack            int
}

// Gallery keeps the item list in sync with the hidden folder set.
type Gallery struct {
	svc    *Service
	state  *stream.Latest[GalleryState]
	reload chan struct{}
}

// NewGallery returns a gallery model. Nothing is loaded until Run.
func (s *Service) NewGallery() *Gallery {
	return &Gallery{
		svc:    s,
		state:  stream.NewLatest[GalleryState](),
		reload: make(chan struct{}, 1),
	}
}

// State is the replay-latest stream of gallery states.
func (g *Gallery) State() *stream.Latest[GalleryState] { return g.state }

// Current returns the last published state, or an unloaded one.
func (g *Gallery) Current() GalleryState {
	st, _ := g.state.Value()
	return st
}

// Reload asks Run to query the catalog again, e.g. when the application
// returns to the foreground or the watcher saw a change. Requests made while
// one is pending are merged.
func (g *Gallery) Reload() {
	select {
	case g.reload <- struct{}{}:
	default:
	}
}

// Run follows the settings until ctx is done. The catalog is queried on the
// first settings value, whenever the hidden folder set changes, and on
// Reload. Other settings changes are republished without a query.
func (g *Gallery) Run(ctx context.Context) error {
	updates, cancel := g.svc.Settings.Watch()
	defer cancel()

	var (
		cur    settings.AppSettings
		have   bool
		items  []media.Entry
		loaded bool
	)
	for {
		query := false
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			query = !have || !slices.Equal(st.HiddenFolderIDs, cur.HiddenFolderIDs)
			cur, have = st, true
		case <-g.reload:
			if !have {
				cur, have = g.svc.Settings.Settings(), true
			}
			query = true
		}

		if query {
			list, err := g.svc.Catalog.Load(ctx, hiddenSet(cur))
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			case err != nil:
				g.svc.logf("Error loading media: %v", err)
			default:
				items = list
			}
			loaded = true
		}
		g.state.Publish(GalleryState{
			Loaded:                 loaded,
			Items:                  items,
			TapCountToOpenSettings: cur.TapCountToOpenSettings,
			MultiGoBack:            cur.MultiGoBack,
		})
	}
}

// Close ends all subscriptions to the gallery state.
func (g *Gallery) Close() { g.state.Close() }

// IndexOf returns the position of uri in items, or -1.
func IndexOf(items []media.Entry, uri string) int {
	return slices.IndexFunc(items, func(e media.Entry) bool { return e.URI == uri })
}

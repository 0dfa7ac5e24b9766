package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewonly/internal/media"
	"viewonly/internal/settings"
	"viewonly/internal/stream"
)

type fakeCatalog struct {
	mu      sync.Mutex
	entries []media.Entry
	folders []media.Folder
	loads   []media.FolderSet
	err     error
}

func (c *fakeCatalog) Load(ctx context.Context, hidden media.FolderSet) ([]media.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads = append(c.loads, hidden)
	if c.err != nil {
		return nil, c.err
	}
	var out []media.Entry
	for _, e := range c.entries {
		if !hidden.Contains(e.FolderID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *fakeCatalog) LoadFolders(ctx context.Context) ([]media.Folder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.folders, nil
}

func (c *fakeCatalog) loadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.loads)
}

type fakeSettings struct {
	mu     sync.Mutex
	cur    settings.AppSettings
	latest *stream.Latest[settings.AppSettings]
}

func newFakeSettings() *fakeSettings {
	f := &fakeSettings{cur: settings.Defaults(), latest: stream.NewLatest[settings.AppSettings]()}
	f.latest.Publish(f.cur)
	return f
}

func (f *fakeSettings) Settings() settings.AppSettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur
}

func (f *fakeSettings) Watch() (<-chan settings.AppSettings, func()) { return f.latest.Subscribe() }

func (f *fakeSettings) SetFolderHidden(id int64, hidden bool) error {
	f.mu.Lock()
	ids := slices.Clone(f.cur.HiddenFolderIDs)
	if hidden && !slices.Contains(ids, id) {
		ids = append(ids, id)
		slices.Sort(ids)
	}
	if !hidden {
		ids = slices.DeleteFunc(ids, func(v int64) bool { return v == id })
	}
	f.cur.HiddenFolderIDs = ids
	s := f.cur
	f.mu.Unlock()
	f.latest.Publish(s)
	return nil
}

func (f *fakeSettings) update(fn func(*settings.AppSettings)) {
	f.mu.Lock()
	fn(&f.cur)
	s := f.cur
	f.mu.Unlock()
	f.latest.Publish(s)
}

func entries() []media.Entry {
	return []media.Entry{
		{URI: "file:///a/1.png", FolderID: 1},
		{URI: "file:///b/2.mp4", FolderID: 2, IsVideo: true},
		{URI: "file:///a/3.png", FolderID: 1},
	}
}

// next waits for a state matching ok.
func next[T any](t *testing.T, ch <-chan T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-ch:
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func startGallery(t *testing.T, cat *fakeCatalog, src *fakeSettings) *Gallery {
	t.Helper()
	g := NewService(cat, src, func(string) {}).NewGallery()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
	return g
}

func TestGalleryLoadsOnStart(t *testing.T) {
	cat := &fakeCatalog{entries: entries()}
	g := startGallery(t, cat, newFakeSettings())
	ch, cancel := g.State().Subscribe()
	defer cancel()

	st := next(t, ch, func(s GalleryState) bool { return s.Loaded })
	assert.Len(t, st.Items, 3)
	assert.Equal(t, 1, st.TapCountToOpenSettings)
	assert.Equal(t, 1, st.MultiGoBack)
}

func TestGalleryRequeriesOnHiddenChange(t *testing.T) {
	cat := &fakeCatalog{entries: entries()}
	src := newFakeSettings()
	g := startGallery(t, cat, src)
	ch, cancel := g.State().Subscribe()
	defer cancel()
	next(t, ch, func(s GalleryState) bool { return s.Loaded })

	require.NoError(t, NewService(cat, src, nil).SetFolderVisibility(1, false))
	st := next(t, ch, func(s GalleryState) bool { return len(s.Items) == 1 })
	assert.Equal(t, "file:///b/2.mp4", st.Items[0].URI)
	assert.Equal(t, 2, cat.loadCount())

	// a non-folder change is republished without another query
	src.update(func(s *settings.AppSettings) { s.TapCountToOpenSettings = 3 })
	st = next(t, ch, func(s GalleryState) bool { return s.TapCountToOpenSettings == 3 })
	assert.Len(t, st.Items, 1)
	assert.Equal(t, 2, cat.loadCount())
}

func TestGalleryReload(t *testing.T) {
	cat := &fakeCatalog{entries: entries()}
	g := startGallery(t, cat, newFakeSettings())
	ch, cancel := g.State().Subscribe()
	defer cancel()
	next(t, ch, func(s GalleryState) bool { return s.Loaded })

	cat.mu.Lock()
	cat.entries = append(cat.entries, media.Entry{URI: "file:///a/4.png", FolderID: 1})
	cat.mu.Unlock()
	g.Reload()
	st := next(t, ch, func(s GalleryState) bool { return len(s.Items) == 4 })
	assert.Equal(t, 3, IndexOf(st.Items, "file:///a/4.png"))
	assert.Equal(t, -1, IndexOf(st.Items, "file:///missing"))
}

func TestGalleryKeepsItemsOnError(t *testing.T) {
	cat := &fakeCatalog{entries: entries()}
	g := startGallery(t, cat, newFakeSettings())
	ch, cancel := g.State().Subscribe()
	defer cancel()
	next(t, ch, func(s GalleryState) bool { return s.Loaded })

	cat.mu.Lock()
	cat.err = errors.New("disk gone")
	cat.mu.Unlock()
	g.Reload()
	require.Eventually(t, func() bool { return cat.loadCount() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, g.Current().Items, 3)
}

func TestFoldersVisibility(t *testing.T) {
	cat := &fakeCatalog{folders: []media.Folder{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}}
	src := newFakeSettings()
	svc := NewService(cat, src, func(string) {})
	f := svc.NewFolders()
	ctx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go f.Run(ctx)

	ch, cancel := f.State().Subscribe()
	defer cancel()
	items := next(t, ch, func(v []FolderItem) bool { return len(v) == 2 })
	assert.True(t, items[0].Visible)
	assert.True(t, items[1].Visible)

	require.NoError(t, svc.SetFolderVisibility(2, false))
	items = next(t, ch, func(v []FolderItem) bool { return len(v) == 2 && !v[1].Visible })
	assert.True(t, items[0].Visible)
	assert.Equal(t, "b", items[1].Name)
	assert.Equal(t, []int64{2}, src.Settings().HiddenFolderIDs)

	require.NoError(t, svc.SetFolderVisibility(2, true))
	next(t, ch, func(v []FolderItem) bool { return len(v) == 2 && v[1].Visible })
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(2, 1, color.NRGBA{B: 255, A: 255})
	return img
}

func TestImageServiceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.png")
	writePNG(t, path, testImage())

	info, img, err := NewImageService().Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Width)
	assert.Equal(t, 2, info.Height)
	assert.Equal(t, 1, info.Orientation)
	assert.Nil(t, info.EXIFData)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	_, _, err = NewImageService().Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestOrient(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	tests := []struct {
		o            int
		w, h         int
		redX, redY   int
		blueX, blueY int
	}{
		{1, 3, 2, 0, 0, 2, 1},
		{2, 3, 2, 2, 0, 0, 1},
		{3, 3, 2, 2, 1, 0, 0},
		{4, 3, 2, 0, 1, 2, 0},
		{5, 2, 3, 0, 0, 1, 2},
		{6, 2, 3, 1, 0, 0, 2},
		{7, 2, 3, 1, 2, 0, 0},
		{8, 2, 3, 0, 2, 1, 0},
	}
	for _, tt := range tests {
		out := Orient(testImage(), tt.o)
		b := out.Bounds()
		assert.Equal(t, tt.w, b.Dx(), "orientation %d width", tt.o)
		assert.Equal(t, tt.h, b.Dy(), "orientation %d height", tt.o)
		assert.Equal(t, red, color.NRGBAModel.Convert(out.At(tt.redX, tt.redY)), "orientation %d red", tt.o)
		assert.Equal(t, blue, color.NRGBAModel.Convert(out.At(tt.blueX, tt.blueY)), "orientation %d blue", tt.o)
	}
}

package ui

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"runtime"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/nfnt/resize"

	"viewonly/internal/service"
)

const (
	// ThumbnailWidth is the width of the thumbnails in the gallery.
	ThumbnailWidth = 160
	// ThumbnailHeight is the height of the thumbnails in the gallery.
	ThumbnailHeight = 160
)

// ThumbnailManager handles generation and caching of image thumbnails.
type ThumbnailManager struct {
	cache      map[string]fyne.Resource
	pending    map[string][]func(fyne.Resource)
	cacheMutex sync.Mutex
	images     *service.ImageService
	logger     func(string)
	sem        chan struct{} // bounds concurrent decodes
}

// NewThumbnailManager creates a new thumbnail manager.
func NewThumbnailManager(images *service.ImageService, logger func(string)) *ThumbnailManager {
	return &ThumbnailManager{
		cache:   make(map[string]fyne.Resource),
		pending: make(map[string][]func(fyne.Resource)),
		images:  images,
		logger:  logger,
		sem:     make(chan struct{}, runtime.NumCPU()),
	}
}

// imageToBytes is a helper to convert image.Image to []byte for Fyne resources.
func imageToBytes(img image.Image) []byte {
	buf := new(bytes.Buffer)
	err := png.Encode(buf, img)
	if err != nil {
		return nil
	}
	return buf.Bytes()
}

// GetThumbnail returns a cached thumbnail for path, or a placeholder while
// the thumbnail is generated; onComplete then receives it on the main
// goroutine. Videos always use the video icon.
func (tm *ThumbnailManager) GetThumbnail(path string, isVideo bool, onComplete func(fyne.Resource)) fyne.Resource {
	if isVideo {
		return theme.FileVideoIcon()
	}
	tm.cacheMutex.Lock()
	if res, ok := tm.cache[path]; ok {
		tm.cacheMutex.Unlock()
		return res
	}
	waiting, inFlight := tm.pending[path]
	tm.pending[path] = append(waiting, onComplete)
	tm.cacheMutex.Unlock()

	if !inFlight {
		go tm.generate(path)
	}
	return theme.FileImageIcon()
}

func (tm *ThumbnailManager) generate(path string) {
	tm.sem <- struct{}{}
	res := tm.render(path)
	<-tm.sem

	tm.cacheMutex.Lock()
	waiting := tm.pending[path]
	delete(tm.pending, path)
	if res != nil {
		tm.cache[path] = res
	}
	tm.cacheMutex.Unlock()

	if res == nil {
		return
	}
	fyne.Do(func() {
		for _, fn := range waiting {
			if fn != nil {
				fn(res)
			}
		}
	})
}

func (tm *ThumbnailManager) render(path string) fyne.Resource {
	_, imgDecoded, err := tm.images.Load(path)
	if err != nil {
		if tm.logger != nil {
			tm.logger("Thumbnail error for " + filepath.Base(path) + ": " + err.Error())
		}
		return nil
	}

	thumbImg := resize.Thumbnail(ThumbnailWidth, ThumbnailHeight, imgDecoded, resize.Lanczos3)
	thumbBytes := imageToBytes(thumbImg)
	if thumbBytes == nil {
		return nil
	}
	return fyne.NewStaticResource(filepath.Base(path), thumbBytes)
}

// thumbCell shows one thumbnail, with a play badge for videos. It ignores
// thumbnails that arrive after the cell was reused for another path.
type thumbCell struct {
	widget.BaseWidget
	tm    *ThumbnailManager
	path  string
	image *canvas.Image
	badge *widget.Icon
}

func newThumbCell(tm *ThumbnailManager, size float32) *thumbCell {
	c := &thumbCell{
		tm:    tm,
		image: canvas.NewImageFromResource(theme.FileImageIcon()),
		badge: widget.NewIcon(theme.MediaPlayIcon()),
	}
	c.image.FillMode = canvas.ImageFillContain
	c.image.SetMinSize(fyne.NewSquareSize(size))
	c.badge.Hide()
	c.ExtendBaseWidget(c)
	return c
}

func (c *thumbCell) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(c.image, container.NewCenter(c.badge)))
}

func (c *thumbCell) set(path string, isVideo bool) {
	if isVideo {
		c.badge.Show()
	} else {
		c.badge.Hide()
	}
	if path == c.path {
		return
	}
	c.path = path
	c.image.Resource = c.tm.GetThumbnail(path, isVideo, func(res fyne.Resource) {
		if c.path == path {
			c.image.Resource = res
			c.image.Refresh()
		}
	})
	c.image.Refresh()
}

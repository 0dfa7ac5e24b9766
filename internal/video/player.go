// Package video drives an external video player and exposes its transient
// state (playing, position, duration) to the viewer by polling.
package video

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotPrepared is returned by a Player queried before its media is loaded.
var ErrNotPrepared = errors.New("player not prepared")

// ErrClosed is returned by a Player after Close.
var ErrClosed = errors.New("player closed")

// Player is the playback widget contract. Queries may fail with
// ErrNotPrepared while the media is still loading.
type Player interface {
	IsPlaying() (bool, error)
	Duration() (time.Duration, error)
	Position() (time.Duration, error)
	Start() error
	Pause() error
	SeekTo(pos time.Duration) error
	Close() error
}

// Callbacks receive the player's lifecycle events. They may be called from
// any goroutine.
type Callbacks struct {
	Prepared         func()
	RenderingStarted func()
}

// FormatPosition renders d as m:ss.
func FormatPosition(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d", ms/60000, (ms/1000)%60)
}

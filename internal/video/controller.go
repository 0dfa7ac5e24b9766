package video

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval matches the cadence at which the viewer refreshes the
// position label and seek bar.
const DefaultPollInterval = 30 * time.Millisecond

// Status is a snapshot of the attached player.
type Status struct {
	Attached  bool
	Prepared  bool
	Rendering bool
	Playing   bool
	Position  time.Duration
	Duration  time.Duration
}

// Controller polls a Player and forwards user actions to it. Errors from the
// player are never returned to the caller: a failing query reads as "not
// playing, position zero".
type Controller struct {
	interval time.Duration

	mu        sync.Mutex
	player    Player
	status    Status
	listeners []func(Status)
}

func NewController(interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Controller{interval: interval}
}

// AddListener registers fn to receive the status whenever it changes.
func (c *Controller) AddListener(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Callbacks returns the lifecycle callbacks to hand to the player being
// opened for this controller. Playback starts as soon as the media is
// prepared.
func (c *Controller) Callbacks() Callbacks {
	return Callbacks{
		Prepared:         c.prepared,
		RenderingStarted: c.renderingStarted,
	}
}

// Attach makes p the controlled player. A previously attached player is
// closed.
func (c *Controller) Attach(p Player) {
	c.mu.Lock()
	old := c.player
	c.player = p
	c.status = Status{Attached: p != nil}
	c.mu.Unlock()
	if old != nil && old != p {
		old.Close()
	}
	c.publish()
}

// Detach closes the attached player, if any.
func (c *Controller) Detach() {
	c.Attach(nil)
}

func (c *Controller) current() Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player
}

func (c *Controller) prepared() {
	p := c.current()
	if p == nil {
		return
	}
	d, err := p.Duration()
	if err != nil {
		d = 0
	}
	c.update(func(s *Status) {
		s.Prepared = true
		s.Duration = d
		s.Position = 0
	})
	p.Start()
}

func (c *Controller) renderingStarted() {
	c.update(func(s *Status) { s.Rendering = true })
}

// Poll queries the player once and returns the refreshed status.
func (c *Controller) Poll() Status {
	p := c.current()
	if p == nil {
		return c.Snapshot()
	}
	playing, err := p.IsPlaying()
	if err != nil {
		playing = false
	}
	pos, err := p.Position()
	if err != nil {
		pos = 0
	}
	var dur time.Duration
	if c.Snapshot().Duration == 0 {
		if d, err := p.Duration(); err == nil {
			dur = d
		}
	}
	c.update(func(s *Status) {
		s.Playing = playing
		s.Position = pos
		if dur > 0 {
			s.Duration = dur
		}
	})
	return c.Snapshot()
}

// Monitor polls at the controller's interval until ctx is done.
func (c *Controller) Monitor(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Poll()
		}
	}
}

// Toggle pauses a playing player and starts a paused one.
func (c *Controller) Toggle() {
	p := c.current()
	if p == nil {
		return
	}
	playing, err := p.IsPlaying()
	if err != nil {
		return
	}
	if playing {
		p.Pause()
	} else {
		p.Start()
	}
	c.Poll()
}

// Seek is called while the user drags the seek bar: playback pauses and
// jumps to pos.
func (c *Controller) Seek(pos time.Duration) {
	p := c.current()
	if p == nil {
		return
	}
	p.Pause()
	p.SeekTo(pos)
	c.update(func(s *Status) {
		s.Playing = false
		s.Position = pos
	})
}

// SeekFinished resumes playback when the user releases the seek bar.
func (c *Controller) SeekFinished() {
	if p := c.current(); p != nil {
		p.Start()
	}
}

// Snapshot returns the last known status.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) update(fn func(*Status)) {
	c.mu.Lock()
	before := c.status
	fn(&c.status)
	changed := before != c.status
	c.mu.Unlock()
	if changed {
		c.publish()
	}
}

func (c *Controller) publish() {
	c.mu.Lock()
	s := c.status
	listeners := append([]func(Status){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

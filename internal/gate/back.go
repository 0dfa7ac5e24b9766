package gate

import "time"

// BackGate intercepts back presses until the user has pressed back
// required-1 times within perBack*required; the press after that is left to
// the host so it performs its native back action. A required count of 1
// disables the gate.
type BackGate struct {
	sched     Scheduler
	perBack   time.Duration
	required  int
	count     int
	armed     bool
	timer     Timer
	timerID   uint64
	onCancel  func(required int)
	listeners []func(count int)
}

// NewBackGate returns an armed gate. onCancel is called when a sequence
// times out, with the number of presses that would have been needed.
func NewBackGate(sched Scheduler, perBack time.Duration, required int, onCancel func(required int)) *BackGate {
	if perBack <= 0 {
		perBack = DefaultPerBackTimeout
	}
	return &BackGate{
		sched:    sched,
		perBack:  perBack,
		required: ClampRequiredCount(required),
		armed:    true,
		onCancel: onCancel,
	}
}

func (g *BackGate) Count() int    { return g.count }
func (g *BackGate) Required() int { return g.required }
func (g *BackGate) Armed() bool   { return g.armed }

// Intercepting reports whether the next back press would be consumed.
func (g *BackGate) Intercepting() bool {
	return g.required > 1 && g.armed
}

// AddListener registers fn to receive the count after every change.
func (g *BackGate) AddListener(fn func(count int)) {
	g.listeners = append(g.listeners, fn)
}

// SetRequiredCount changes the number of presses and resets the gate.
func (g *BackGate) SetRequiredCount(n int) {
	n = ClampRequiredCount(n)
	if n == g.required {
		return
	}
	g.required = n
	g.Pause()
}

// HandleBack records one back press and reports whether the gate consumed
// it. When it returns false the caller performs the native back action.
func (g *BackGate) HandleBack() bool {
	if !g.Intercepting() {
		// final press of a sequence, or gate disabled
		g.Pause()
		return false
	}
	g.count++
	if g.count == 1 {
		g.armTimer()
	}
	if g.count == g.required-1 {
		g.armed = false
	}
	g.notify()
	return true
}

// Pause abandons any sequence in progress. Hosts call it when the screen
// goes to the background.
func (g *BackGate) Pause() {
	g.cancelTimer()
	changed := g.count != 0 || !g.armed
	g.count = 0
	g.armed = true
	if changed {
		g.notify()
	}
}

func (g *BackGate) armTimer() {
	g.cancelTimer()
	id := g.timerID
	g.timer = g.sched.AfterFunc(g.perBack*time.Duration(g.required), func() {
		g.expire(id)
	})
}

func (g *BackGate) cancelTimer() {
	g.timerID++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *BackGate) expire(id uint64) {
	if id != g.timerID {
		return
	}
	g.timer = nil
	g.count = 0
	g.armed = true
	g.notify()
	if g.onCancel != nil {
		g.onCancel(g.required)
	}
}

func (g *BackGate) notify() {
	for _, fn := range g.listeners {
		fn(g.count)
	}
}

package gate

import "time"

// TapGate requires a number of taps before reporting success. A single
// timer of perTap*required, armed on the first tap, bounds the whole
// sequence; it is not extended by later taps.
type TapGate struct {
	sched      Scheduler
	perTap     time.Duration
	required   int
	count      int
	timer      Timer
	timerID    uint64
	onComplete func(success bool)
	listeners  []func(count int)
}

// NewTapGate returns an idle gate. onComplete is called with true when the
// required count is reached and with false when the window expires first.
func NewTapGate(sched Scheduler, perTap time.Duration, required int, onComplete func(success bool)) *TapGate {
	if perTap <= 0 {
		perTap = DefaultPerTapTimeout
	}
	return &TapGate{
		sched:      sched,
		perTap:     perTap,
		required:   ClampRequiredCount(required),
		onComplete: onComplete,
	}
}

func (g *TapGate) Count() int    { return g.count }
func (g *TapGate) Required() int { return g.required }

// AddListener registers fn to receive the count after every change.
func (g *TapGate) AddListener(fn func(count int)) {
	g.listeners = append(g.listeners, fn)
}

// SetRequiredCount changes the number of taps needed and drops any sequence
// in progress.
func (g *TapGate) SetRequiredCount(n int) {
	n = ClampRequiredCount(n)
	if n == g.required {
		return
	}
	g.required = n
	g.Reset()
}

// Trigger records one tap.
func (g *TapGate) Trigger() {
	g.count++
	if g.count >= g.required {
		g.cancelTimer()
		g.count = 0
		g.notify()
		g.complete(true)
		return
	}
	if g.count == 1 {
		g.armTimer()
	}
	g.notify()
}

// Reset cancels a pending sequence without reporting anything.
func (g *TapGate) Reset() {
	g.cancelTimer()
	if g.count != 0 {
		g.count = 0
		g.notify()
	}
}

func (g *TapGate) armTimer() {
	g.cancelTimer()
	id := g.timerID
	g.timer = g.sched.AfterFunc(g.perTap*time.Duration(g.required), func() {
		g.expire(id)
	})
}

func (g *TapGate) cancelTimer() {
	g.timerID++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *TapGate) expire(id uint64) {
	if id != g.timerID {
		return
	}
	g.timer = nil
	g.count = 0
	g.notify()
	g.complete(false)
}

func (g *TapGate) complete(success bool) {
	if g.onComplete != nil {
		g.onComplete(success)
	}
}

func (g *TapGate) notify() {
	for _, fn := range g.listeners {
		fn(g.count)
	}
}

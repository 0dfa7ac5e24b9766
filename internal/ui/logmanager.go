package ui

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	DefaultMaxLogMessages = 100
	// DefaultMessageDuration is how long a transient message stays visible.
	DefaultMessageDuration = 3 * time.Second
)

// MessageBar shows transient messages at the bottom of the window and keeps
// a short history that can be paged through while it is visible.
type MessageBar struct {
	mu              sync.Mutex
	logMessages     []string
	currentLogIndex int
	maxLogMessages  int
	duration        time.Duration
	generation      int

	label   *widget.Label
	upBtn   *widget.Button
	downBtn *widget.Button
	bar     *fyne.Container
}

func NewMessageBar(maxMessages int, duration time.Duration) *MessageBar {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxLogMessages
	}
	if duration <= 0 {
		duration = DefaultMessageDuration
	}
	mb := &MessageBar{
		logMessages:     make([]string, 0, maxMessages),
		currentLogIndex: -1,
		maxLogMessages:  maxMessages,
		duration:        duration,
	}
	mb.label = widget.NewLabel("")
	mb.label.Truncation = fyne.TextTruncateEllipsis
	mb.upBtn = widget.NewButtonWithIcon("", theme.MoveUpIcon(), mb.ShowPrevious)
	mb.downBtn = widget.NewButtonWithIcon("", theme.MoveDownIcon(), mb.ShowNext)
	mb.bar = container.NewBorder(nil, nil, nil, container.NewHBox(mb.upBtn, mb.downBtn), mb.label)
	mb.bar.Hide()
	return mb
}

// Content returns the bar's canvas object.
func (mb *MessageBar) Content() fyne.CanvasObject { return mb.bar }

// AddMessage records message and shows it. It may be called from any
// goroutine.
func (mb *MessageBar) AddMessage(message string) {
	mb.mu.Lock()
	mb.logMessages = append(mb.logMessages, message)
	if len(mb.logMessages) > mb.maxLogMessages {
		mb.logMessages = mb.logMessages[len(mb.logMessages)-mb.maxLogMessages:]
	}
	mb.currentLogIndex = len(mb.logMessages) - 1
	mb.generation++
	gen := mb.generation
	mb.mu.Unlock()

	fyne.Do(func() {
		mb.updateDisplay()
		mb.bar.Show()
	})
	time.AfterFunc(mb.duration, func() {
		fyne.Do(func() { mb.hideIfCurrent(gen) })
	})
}

// Messages returns a copy of the recorded history.
func (mb *MessageBar) Messages() []string {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return append([]string(nil), mb.logMessages...)
}

func (mb *MessageBar) hideIfCurrent(gen int) {
	mb.mu.Lock()
	stale := gen != mb.generation
	mb.mu.Unlock()
	if !stale {
		mb.bar.Hide()
	}
}

func (mb *MessageBar) updateDisplay() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.logMessages) == 0 {
		mb.label.SetText("")
		mb.upBtn.Disable()
		mb.downBtn.Disable()
		return
	}

	if mb.currentLogIndex < 0 {
		mb.currentLogIndex = 0
	} else if mb.currentLogIndex >= len(mb.logMessages) {
		mb.currentLogIndex = len(mb.logMessages) - 1
	}

	text := mb.logMessages[mb.currentLogIndex]
	if len(mb.logMessages) > 1 {
		text = fmt.Sprintf("[%d/%d] %s", mb.currentLogIndex+1, len(mb.logMessages), text)
	}
	mb.label.SetText(text)
	if mb.currentLogIndex <= 0 {
		mb.upBtn.Disable()
	} else {
		mb.upBtn.Enable()
	}
	if mb.currentLogIndex >= len(mb.logMessages)-1 {
		mb.downBtn.Disable()
	} else {
		mb.downBtn.Enable()
	}
}

func (mb *MessageBar) ShowPrevious() {
	mb.mu.Lock()
	if len(mb.logMessages) == 0 || mb.currentLogIndex <= 0 {
		mb.mu.Unlock()
		return
	}
	mb.currentLogIndex--
	mb.generation++
	mb.mu.Unlock()
	mb.updateDisplay()
}

func (mb *MessageBar) ShowNext() {
	mb.mu.Lock()
	if len(mb.logMessages) == 0 || mb.currentLogIndex >= len(mb.logMessages)-1 {
		mb.mu.Unlock()
		return
	}
	mb.currentLogIndex++
	mb.generation++
	mb.mu.Unlock()
	mb.updateDisplay()
}

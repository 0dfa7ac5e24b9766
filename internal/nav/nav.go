// Package nav keeps the stack of screens the user has opened.
package nav

// Screen identifies one of the application's screens.
type Screen int

const (
	Gallery Screen = iota
	Viewer
	Settings
	FolderSettings
)

func (s Screen) String() string {
	switch s {
	case Gallery:
		return "gallery"
	case Viewer:
		return "viewer"
	case Settings:
		return "settings"
	case FolderSettings:
		return "folders"
	default:
		return "unknown"
	}
}

// Route is a screen plus its argument. Index is the selected gallery item
// for the viewer and unused elsewhere.
type Route struct {
	Screen Screen
	Index  int
}

// Stack is a navigation back stack whose bottom is always the gallery.
type Stack struct {
	routes    []Route
	listeners []func(Route)
}

// NewStack returns a stack holding only the gallery.
func NewStack() *Stack {
	return &Stack{routes: []Route{{Screen: Gallery}}}
}

// OnChange registers fn to be called with the new top route after Push,
// Back or Reset.
func (s *Stack) OnChange(fn func(Route)) {
	s.listeners = append(s.listeners, fn)
}

// Current returns the top route.
func (s *Stack) Current() Route {
	return s.routes[len(s.routes)-1]
}

// Depth returns the number of routes on the stack.
func (s *Stack) Depth() int { return len(s.routes) }

// AtRoot reports whether only the gallery is on the stack.
func (s *Stack) AtRoot() bool { return len(s.routes) == 1 }

// Push opens r on top of the current route. Pushing the route that is
// already on top does nothing.
func (s *Stack) Push(r Route) {
	if s.Current() == r {
		return
	}
	s.routes = append(s.routes, r)
	s.notify()
}

// Back pops the top route. It returns the new top and false when already at
// the root.
func (s *Stack) Back() (Route, bool) {
	if s.AtRoot() {
		return s.Current(), false
	}
	s.routes = s.routes[:len(s.routes)-1]
	s.notify()
	return s.Current(), true
}

// SetIndex updates the argument of the top route without notifying, used
// when the viewer pages to another item.
func (s *Stack) SetIndex(index int) {
	s.routes[len(s.routes)-1].Index = index
}

// Reset drops everything above the gallery.
func (s *Stack) Reset() {
	if s.AtRoot() {
		return
	}
	s.routes = s.routes[:1]
	s.notify()
}

func (s *Stack) notify() {
	top := s.Current()
	for _, fn := range s.listeners {
		fn(top)
	}
}

// Package stream provides a replay-latest value stream.
package stream

import "sync"

// Latest holds the most recent published value and delivers it to
// subscribers. A slow subscriber only ever sees the newest value; older
// undelivered values are dropped. New subscribers receive the current value
// immediately.
type Latest[T any] struct {
	mu     sync.Mutex
	value  T
	has    bool
	subs   map[int]chan T
	nextID int
	closed bool
}

func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{subs: make(map[int]chan T)}
}

// Publish replaces the current value and notifies subscribers.
func (l *Latest[T]) Publish(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.value = v
	l.has = true
	for _, ch := range l.subs {
		offer(ch, v)
	}
}

// Value returns the current value, if any was published.
func (l *Latest[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.has
}

// Subscribe returns a channel of values and a function that ends the
// subscription and closes the channel.
func (l *Latest[T]) Subscribe() (<-chan T, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan T, 1)
	if l.closed {
		close(ch)
		return ch, func() {}
	}
	if l.has {
		ch <- l.value
	}
	id := l.nextID
	l.nextID++
	l.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if c, ok := l.subs[id]; ok {
				delete(l.subs, id)
				close(c)
			}
		})
	}
}

// Close ends every subscription. Later publishes are ignored.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}

// offer replaces any undelivered value in ch with v. Callers hold the lock,
// so ch has no other sender.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

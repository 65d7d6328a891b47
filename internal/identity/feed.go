package identity

import "sync"

// Feed delivers session changes for one device session. Observers receive
// the current principal on every change; nil means signed out.
type Feed struct {
	mu        sync.Mutex
	current   *Principal
	started   bool
	nextID    int
	observers map[int]func(*Principal)
}

func NewFeed() *Feed {
	return &Feed{observers: map[int]func(*Principal){}}
}

// Observe registers a callback and returns its unsubscribe function. If the
// feed has already emitted, the callback is invoked immediately with the
// current value.
func (f *Feed) Observe(fn func(*Principal)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.observers[id] = fn
	started, current := f.started, f.current
	f.mu.Unlock()

	if started {
		fn(current)
	}
	return func() {
		f.mu.Lock()
		delete(f.observers, id)
		f.mu.Unlock()
	}
}

// Push records the new session state and notifies every observer.
func (f *Feed) Push(p *Principal) {
	f.mu.Lock()
	f.current = p
	f.started = true
	fns := make([]func(*Principal), 0, len(f.observers))
	for _, fn := range f.observers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// Current returns the last pushed principal, or nil before the first push
// or after sign-out.
func (f *Feed) Current() *Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

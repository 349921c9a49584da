package keys

import "sync"

// Listener handles an event and reports whether it consumed it.
type Listener func(Event) bool

// Bus is the host's key event source. Listeners run in subscription order
// until one consumes the event.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners []busEntry
}

type busEntry struct {
	id int
	fn Listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function removing it. Calling the
// returned function more than once is safe.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, busEntry{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, e := range b.listeners {
				if e.id == id {
					b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers ev and reports whether any listener consumed it.
func (b *Bus) Publish(ev Event) bool {
	b.mu.Lock()
	snapshot := make([]busEntry, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, e := range snapshot {
		if e.fn(ev) {
			return true
		}
	}
	return false
}

// Len returns the number of live listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

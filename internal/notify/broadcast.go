package notify

import (
	"sync"
	"sync/atomic"

	"github.com/antonymarion/forkQGroundControl/internal/channel"
)

// Broadcaster fans events out to subscribers. Publishing never blocks;
// a subscriber that falls behind loses events and the drop is counted.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]channel.Channel[Event]
	nextID int
	closed bool

	dropped atomic.Uint64
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]channel.Channel[Event])}
}

// Subscribe registers a subscriber with the given buffer size and
// returns its receiver plus a cancel function. Cancel is idempotent.
func (b *Broadcaster) Subscribe(buffer int) (channel.Receiver[Event], func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := channel.New[Event](buffer)
	id := b.nextID
	b.nextID++

	if b.closed {
		ch.Close()
		return ch, func() {}
	}
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				ch.Close()
			}
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber that has room.
func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		if !ch.TrySend(e) {
			b.dropped.Add(1)
		}
	}
}

// Dropped returns the number of events lost to full subscriber buffers.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Subscribers returns the current subscriber count.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Publish after Close is a no-op.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		ch.Close()
	}
}

package stream

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Pop once the bus is closed and drained.
var ErrClosed = errors.New("stream: bus closed")

// MessageKind classifies pipeline bus messages.
type MessageKind int

const (
	KindInfo MessageKind = iota
	KindStateChanged
	KindEOS
	KindError
)

func (k MessageKind) String() string {
	switch k {
	case KindStateChanged:
		return "state-changed"
	case KindEOS:
		return "eos"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

// Message is a single event observed on a pipeline bus.
type Message struct {
	Kind MessageKind
	Text string
}

// Bus carries messages from a running pipeline to its worker.
type Bus struct {
	ch     chan Message
	closed chan struct{}
	once   sync.Once
}

// NewBus creates a bus buffering up to size messages.
func NewBus(size int) *Bus {
	return &Bus{
		ch:     make(chan Message, size),
		closed: make(chan struct{}),
	}
}

// Push delivers a message. Pushes after Close are dropped.
func (b *Bus) Push(m Message) {
	select {
	case <-b.closed:
		return
	default:
	}
	select {
	case <-b.closed:
	case b.ch <- m:
	}
}

// Pop blocks until a message arrives, the bus closes or ctx is done.
// Messages buffered before the close are still delivered.
func (b *Bus) Pop(ctx context.Context) (Message, error) {
	select {
	case m := <-b.ch:
		return m, nil
	case <-b.closed:
		select {
		case m := <-b.ch:
			return m, nil
		default:
			return Message{}, ErrClosed
		}
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Close wakes all blocked producers and consumers.
func (b *Bus) Close() {
	b.once.Do(func() { close(b.closed) })
}

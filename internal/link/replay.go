package link

import (
	"io"
	"sync/atomic"
)

// ReplayLink replays a recorded raw byte stream, typically a session
// recording. Writes are swallowed so command paths can run against a
// recording without a vehicle.
type ReplayLink struct {
	name      string
	r         io.Reader
	discarded atomic.Int64
}

// NewReplay wraps a recorded stream as a link.
func NewReplay(name string, r io.Reader) *ReplayLink {
	return &ReplayLink{name: name, r: r}
}

// Name returns the configured link name.
func (l *ReplayLink) Name() string {
	return l.name
}

// Read reads from the recording.
func (l *ReplayLink) Read(p []byte) (int, error) {
	return l.r.Read(p)
}

// Write discards p and reports full success.
func (l *ReplayLink) Write(p []byte) (int, error) {
	l.discarded.Add(int64(len(p)))
	return len(p), nil
}

// Discarded returns the number of command bytes swallowed so far.
func (l *ReplayLink) Discarded() int64 {
	return l.discarded.Load()
}

// Close closes the recording when it is closable.
func (l *ReplayLink) Close() error {
	if c, ok := l.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Package link provides the transports frames travel over: UDP and
// serial ports toward vehicles, plus replay from recorded streams. A
// vehicle holds a Set of the links it has been heard on and commands go
// out to every member.
package link

import (
	"errors"
	"io"
	"sync"
)

// ErrNoPeer is returned by a UDP link written before any inbound
// traffic taught it the remote address.
var ErrNoPeer = errors.New("link: no peer address known yet")

// Link is a bidirectional byte transport toward one vehicle endpoint.
type Link interface {
	io.ReadWriteCloser
	Name() string
}

// Set is the deduplicated collection of links a vehicle was heard on.
type Set struct {
	mu    sync.RWMutex
	links []Link
}

// NewSet creates an empty link set.
func NewSet() *Set {
	return &Set{}
}

// Add inserts the link unless it is already present. Reports whether it
// was added.
func (s *Set) Add(l Link) bool {
	if l == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, have := range s.links {
		if have == l {
			return false
		}
	}
	s.links = append(s.links, l)
	return true
}

// Remove drops the named link. Reports whether it was present.
func (s *Set) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, have := range s.links {
		if have.Name() == name {
			s.links = append(s.links[:i], s.links[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the link is in the set.
func (s *Set) Contains(l Link) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, have := range s.links {
		if have == l {
			return true
		}
	}
	return false
}

// Links returns a snapshot of the current members.
func (s *Set) Links() []Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Link, len(s.links))
	copy(out, s.links)
	return out
}

// Len returns the member count.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links)
}

// WriteAll writes p to every link. An empty set is a silent no-op.
// Failures are joined; the write still reaches the remaining links.
func (s *Set) WriteAll(p []byte) error {
	return s.writeTo(nil, p)
}

// WriteExcept writes p to every link but skip. Used to relay position
// frames from the vehicle link to antenna-tracker links.
func (s *Set) WriteExcept(skip Link, p []byte) error {
	return s.writeTo(skip, p)
}

func (s *Set) writeTo(skip Link, p []byte) error {
	var errs []error
	for _, l := range s.Links() {
		if l == skip {
			continue
		}
		if _, err := l.Write(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package session tracks the active recording session and the operator
// identity attached to it.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// Context holds the current session state
type Context struct {
	mu      sync.RWMutex
	session *core.Session
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		session: &core.Session{Name: "No session started"},
	}
}

// Session returns the current session
func (c *Context) Session() *core.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Begin starts a new session for the given station and operator.
// Any previous session is replaced.
func (c *Context) Begin(station, name string, pilot core.RemotePilot) *core.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = &core.Session{
		ID:        uuid.NewString(),
		Station:   station,
		Name:      name,
		StartedAt: time.Now().UTC(),
		Pilot:     pilot,
	}
	return c.session
}

// End closes the current session and returns it. Ending twice keeps
// the first end time.
func (c *Context) End() *core.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.EndedAt.IsZero() {
		c.session.EndedAt = time.Now().UTC()
	}
	return c.session
}

// SetPilot updates the operator identity, typically after the frontend
// lookup completes.
func (c *Context) SetPilot(pilot core.RemotePilot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Pilot = pilot
}

package camera

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/antonymarion/forkQGroundControl/internal/wire"
)

// Range bounds one gimbal axis in degrees. A zero range leaves the axis
// unconstrained.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) clamp(deg float64) float64 {
	if r.Max <= r.Min {
		return deg
	}
	if deg < r.Min {
		return r.Min
	}
	if deg > r.Max {
		return r.Max
	}
	return deg
}

// GimbalSpec declares one mount component in the station device
// profile.
type GimbalSpec struct {
	Component uint8
	Model     string
	Pitch     Range
	Yaw       Range
	Roll      Range
}

// Gimbal encodes mount-control commands for one gimbal component and
// tracks the commanded attitude in degrees.
type Gimbal struct {
	sender CommandSender
	logger *slog.Logger

	mu    sync.Mutex
	spec  GimbalSpec
	pitch float64
	yaw   float64
	roll  float64
}

func NewGimbal(sender CommandSender, spec GimbalSpec, logger *slog.Logger) *Gimbal {
	if spec.Component == 0 {
		spec.Component = wire.CompIDGimbal
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gimbal{sender: sender, spec: spec, logger: logger}
}

func (g *Gimbal) Component() uint8 { return g.spec.Component }
func (g *Gimbal) Model() string    { return g.spec.Model }

// Capabilities returns the per-axis travel limits.
func (g *Gimbal) Capabilities() (pitch, yaw, roll Range) {
	return g.spec.Pitch, g.spec.Yaw, g.spec.Roll
}

// Attitude returns the last commanded attitude in degrees.
func (g *Gimbal) Attitude() (pitch, yaw, roll float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pitch, g.yaw, g.roll
}

// Every setter re-sends the full commanded attitude: MOUNT_CONTROL
// carries all three axes, so a single-axis message would zero the
// others.
func (g *Gimbal) send() error {
	return g.sender.ExecuteCommandLong(wire.CmdDoMountControl, 0,
		float32(g.pitch), float32(g.roll), float32(g.yaw),
		0, 0, 0, wire.MountModeMavlinkTargeting, g.spec.Component)
}

// SetPitch commands an absolute pitch in degrees, clamped to the axis
// range.
func (g *Gimbal) SetPitch(deg float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pitch = g.spec.Pitch.clamp(deg)
	return g.send()
}

// SetYaw commands a yaw in degrees relative to the airframe nose,
// clamped to the axis range.
func (g *Gimbal) SetYaw(deg float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.yaw = g.spec.Yaw.clamp(deg)
	return g.send()
}

// SetRoll commands an absolute roll in degrees, clamped to the axis
// range.
func (g *Gimbal) SetRoll(deg float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roll = g.spec.Roll.clamp(deg)
	return g.send()
}

// Move drives one named axis. "thrust" is accepted as an alias for
// pitch, matching the remote-control request vocabulary.
func (g *Gimbal) Move(axis string, deg float64) error {
	switch axis {
	case "pitch", "thrust":
		return g.SetPitch(deg)
	case "yaw":
		return g.SetYaw(deg)
	case "roll":
		return g.SetRoll(deg)
	default:
		return fmt.Errorf("unknown gimbal axis %q", axis)
	}
}

// Reset recenters all three axes, one command per axis.
func (g *Gimbal) Reset() error {
	return errors.Join(g.SetPitch(0), g.SetYaw(0), g.SetRoll(0))
}

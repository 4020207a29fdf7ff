// Package camera encodes payload commands for camera and mount
// components aboard an airframe. Controllers track the last commanded
// state; the airframe's acknowledgments and telemetry remain the
// authority on what the device actually did.
package camera

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/antonymarion/forkQGroundControl/internal/wire"
)

// CommandSender issues COMMAND_LONG messages toward one airframe. A
// *vehicle.Vehicle satisfies it.
type CommandSender interface {
	ExecuteCommandLong(command uint16, confirmation uint8, p1, p2, p3, p4, p5, p6, p7 float32, component uint8) error
}

// Mode is the capture mode of a camera component.
type Mode uint8

const (
	ModePhoto Mode = 0
	ModeVideo Mode = 1
)

// Zoom commands address the continuous range selector, not step zoom.
const zoomTypeRange = 1

var ErrNoZoom = errors.New("camera has no zoom")

// Intrinsics are the exposure values echoed in the frontend snapshot.
type Intrinsics struct {
	ISO          string `json:"ISO"`
	WhiteBalance string `json:"whiteBalance"`
	Aperture     string `json:"aperture"`
}

// Spec declares one camera component in the station device profile.
type Spec struct {
	Component  uint8
	Model      string
	HasZoom    bool
	Intrinsics Intrinsics
}

// Camera encodes capture commands for one camera component.
type Camera struct {
	sender CommandSender
	logger *slog.Logger

	mu        sync.Mutex
	spec      Spec
	mode      Mode
	recording bool
	zoom      float64
}

func New(sender CommandSender, spec Spec, logger *slog.Logger) *Camera {
	if spec.Component == 0 {
		spec.Component = wire.CompIDCamera
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Camera{sender: sender, spec: spec, logger: logger}
}

func (c *Camera) Component() uint8 { return c.spec.Component }
func (c *Camera) Model() string    { return c.spec.Model }
func (c *Camera) HasZoom() bool    { return c.spec.HasZoom }

func (c *Camera) Intrinsics() Intrinsics { return c.spec.Intrinsics }

// Mode returns the last commanded capture mode.
func (c *Camera) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Recording reports whether a video capture command is outstanding.
func (c *Camera) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// SetMode switches the camera between photo and video capture.
func (c *Camera) SetMode(mode Mode) error {
	err := c.sender.ExecuteCommandLong(wire.CmdSetCameraMode, 0,
		0, float32(mode), 0, 0, 0, 0, 0, c.spec.Component)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	c.logger.Info("camera mode commanded", "component", c.spec.Component, "mode", mode)
	return nil
}

// TakePhoto triggers a single image capture. The camera must already be
// in photo mode.
func (c *Camera) TakePhoto() error {
	return c.sender.ExecuteCommandLong(wire.CmdImageStartCapture, 0,
		0, 0, 1, 0, 0, 0, 0, c.spec.Component)
}

// StartRecording begins video capture on all streams.
func (c *Camera) StartRecording() error {
	err := c.sender.ExecuteCommandLong(wire.CmdVideoStartCapture, 0,
		0, 0, 0, 0, 0, 0, 0, c.spec.Component)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.recording = true
	c.mu.Unlock()
	return nil
}

// StopRecording ends video capture.
func (c *Camera) StopRecording() error {
	err := c.sender.ExecuteCommandLong(wire.CmdVideoStopCapture, 0,
		0, 0, 0, 0, 0, 0, 0, c.spec.Component)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.recording = false
	c.mu.Unlock()
	return nil
}

// ZoomLevel returns the last commanded zoom on the range scale.
func (c *Camera) ZoomLevel() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// Zoom moves the zoom to an absolute level on the camera's range scale.
func (c *Camera) Zoom(level float32) error {
	if !c.spec.HasZoom {
		return ErrNoZoom
	}
	err := c.sender.ExecuteCommandLong(wire.CmdSetCameraZoom, 0,
		zoomTypeRange, level, 0, 0, 0, 0, 0, c.spec.Component)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.zoom = float64(level)
	c.mu.Unlock()
	return nil
}

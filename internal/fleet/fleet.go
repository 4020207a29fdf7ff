// Package fleet tracks every system heard on the wire and routes
// decoded frames to the vehicle owning them. Vehicles come into
// existence on their first heartbeat and leave on request or on a
// POWEROFF heartbeat. A watchdog raises a notification when a vehicle
// goes silent.
package fleet

import (
	"log/slog"
	"sync"
	"time"

	"github.com/antonymarion/forkQGroundControl/internal/camera"
	"github.com/antonymarion/forkQGroundControl/internal/link"
	"github.com/antonymarion/forkQGroundControl/internal/notify"
	"github.com/antonymarion/forkQGroundControl/internal/vehicle"
	"github.com/antonymarion/forkQGroundControl/internal/wire"
)

const (
	// DefaultTimeout is how long a vehicle may stay silent before the
	// watchdog raises a heartbeat timeout.
	DefaultTimeout = 3500 * time.Millisecond

	// DefaultWatchdogInterval is the watchdog poll period.
	DefaultWatchdogInterval = 500 * time.Millisecond
)

// DeviceProfile declares the payload hardware mounted on each airframe.
// The wire catalog carries no camera discovery, so the station attaches
// the declared devices to every vehicle it registers.
type DeviceProfile struct {
	Cameras []camera.Spec
	Gimbals []camera.GimbalSpec
}

// Fleet is the vehicle registry. All methods are safe for concurrent
// use.
type Fleet struct {
	enc    *wire.Encoder
	events *notify.Broadcaster
	audio  notify.Audio
	logger *slog.Logger

	timeout     time.Duration
	interval    time.Duration
	now         func() time.Time
	profile     DeviceProfile
	vehicleOpts []vehicle.Option

	mu       sync.RWMutex
	vehicles map[int]*vehicle.Vehicle
	order    []int
	cameras  map[int][]*camera.Camera
	gimbals  map[int][]*camera.Gimbal
	silent   map[int]bool

	stopc chan struct{}
	done  chan struct{}
}

// Option configures the fleet.
type Option func(*Fleet)

// WithTimeout overrides the heartbeat timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fleet) { f.timeout = d }
}

// WithWatchdogInterval overrides the watchdog poll period.
func WithWatchdogInterval(d time.Duration) Option {
	return func(f *Fleet) { f.interval = d }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Fleet) { f.now = now }
}

// WithDeviceProfile declares the cameras and gimbals attached to each
// registered vehicle.
func WithDeviceProfile(p DeviceProfile) Option {
	return func(f *Fleet) { f.profile = p }
}

// WithVehicleOptions passes options through to every vehicle the fleet
// creates.
func WithVehicleOptions(opts ...vehicle.Option) Option {
	return func(f *Fleet) { f.vehicleOpts = opts }
}

// New creates an empty fleet. The encoder carries the station identity
// and is shared by every vehicle.
func New(enc *wire.Encoder, events *notify.Broadcaster, audio notify.Audio, logger *slog.Logger, opts ...Option) *Fleet {
	if audio == nil {
		audio = notify.NopAudio{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fleet{
		enc:      enc,
		events:   events,
		audio:    audio,
		logger:   logger,
		timeout:  DefaultTimeout,
		interval: DefaultWatchdogInterval,
		now:      time.Now,
		vehicles: make(map[int]*vehicle.Vehicle),
		cameras:  make(map[int][]*camera.Camera),
		gimbals:  make(map[int][]*camera.Gimbal),
		silent:   make(map[int]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HandleFrame routes a decoded frame to the vehicle owning its system
// id. A heartbeat from an unknown system registers a new vehicle; any
// other frame from an unknown system is dropped.
func (f *Fleet) HandleFrame(l link.Link, fr *wire.Frame) {
	var hb wire.Heartbeat
	isHeartbeat := fr.MsgID == wire.MsgIDHeartbeat && hb.Unpack(fr.Payload) == nil

	id := int(fr.SysID)

	f.mu.Lock()
	v, ok := f.vehicles[id]
	if !ok {
		if !isHeartbeat {
			f.mu.Unlock()
			f.logger.Debug("frame from unregistered system dropped",
				"system_id", id, "msg_id", fr.MsgID)
			return
		}
		v = f.registerLocked(fr.SysID, &hb)
	}
	f.mu.Unlock()

	v.HandleFrame(l, fr)

	// The vehicle raises its own removal notification while handling a
	// POWEROFF heartbeat, so the registry drop stays quiet.
	if isHeartbeat && hb.SystemStatus == wire.StatePoweroff {
		f.drop(id)
	}
}

func (f *Fleet) registerLocked(systemID uint8, hb *wire.Heartbeat) *vehicle.Vehicle {
	id := int(systemID)
	v := vehicle.New(systemID, f.enc, f.events, f.audio, f.logger, f.vehicleOpts...)
	f.vehicles[id] = v
	f.order = append(f.order, id)
	for _, spec := range f.profile.Cameras {
		f.cameras[id] = append(f.cameras[id], camera.New(v, spec, f.logger))
	}
	for _, spec := range f.profile.Gimbals {
		f.gimbals[id] = append(f.gimbals[id], camera.NewGimbal(v, spec, f.logger))
	}
	f.logger.Info("new vehicle registered", "system_id", id,
		"type", hb.Type, "autopilot", hb.Autopilot)
	return v
}

// Remove drops a vehicle from the registry and raises the removal
// notification. Links stay open; they are shared across systems.
func (f *Fleet) Remove(systemID int) bool {
	if !f.drop(systemID) {
		return false
	}
	f.events.Publish(notify.SystemRemoved{SystemID: systemID})
	return true
}

func (f *Fleet) drop(systemID int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[systemID]; !ok {
		return false
	}
	delete(f.vehicles, systemID)
	delete(f.cameras, systemID)
	delete(f.gimbals, systemID)
	delete(f.silent, systemID)
	for i, id := range f.order {
		if id == systemID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	f.logger.Info("vehicle removed", "system_id", systemID)
	return true
}

// Vehicle returns the vehicle with the given system id, or nil.
func (f *Fleet) Vehicle(systemID int) *vehicle.Vehicle {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.vehicles[systemID]
}

// Vehicles returns all registered vehicles in registration order.
func (f *Fleet) Vehicles() []*vehicle.Vehicle {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*vehicle.Vehicle, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.vehicles[id])
	}
	return out
}

// Len returns the number of registered vehicles.
func (f *Fleet) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vehicles)
}

// ActiveVehicle returns the first vehicle heard from, or nil.
func (f *Fleet) ActiveVehicle() *vehicle.Vehicle {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.order) == 0 {
		f.logger.Warn("No vehicle found")
		return nil
	}
	return f.vehicles[f.order[0]]
}

// ActiveCamera returns the first camera of the active vehicle, or nil.
func (f *Fleet) ActiveCamera() *camera.Camera {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.order) == 0 {
		f.logger.Warn("No vehicle found")
		return nil
	}
	cams := f.cameras[f.order[0]]
	if len(cams) == 0 {
		f.logger.Warn("No camera available")
		return nil
	}
	return cams[0]
}

// ActiveGimbal returns the first gimbal of the active vehicle, or nil.
func (f *Fleet) ActiveGimbal() *camera.Gimbal {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.order) == 0 {
		f.logger.Warn("No vehicle found")
		return nil
	}
	gims := f.gimbals[f.order[0]]
	if len(gims) == 0 {
		f.logger.Warn("No gimbal available")
		return nil
	}
	return gims[0]
}

// Cameras returns the cameras attached to the given system.
func (f *Fleet) Cameras(systemID int) []*camera.Camera {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]*camera.Camera(nil), f.cameras[systemID]...)
}

// Gimbals returns the gimbals attached to the given system.
func (f *Fleet) Gimbals(systemID int) []*camera.Gimbal {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]*camera.Gimbal(nil), f.gimbals[systemID]...)
}

// Start launches the heartbeat watchdog.
func (f *Fleet) Start() {
	f.stopc = make(chan struct{})
	f.done = make(chan struct{})
	go f.watch()
}

// Stop tears the watchdog down and waits for it to exit.
func (f *Fleet) Stop() {
	if f.stopc == nil {
		return
	}
	close(f.stopc)
	<-f.done
	f.stopc = nil
}

func (f *Fleet) watch() {
	defer close(f.done)
	t := time.NewTicker(f.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			f.checkHeartbeats()
		case <-f.stopc:
			return
		}
	}
}

// checkHeartbeats raises the timeout notification once per silence
// span. The vehicle stays registered; its links may come back.
func (f *Fleet) checkHeartbeats() {
	now := f.now()

	var timeouts []notify.HeartbeatTimeout
	var resumed []int

	f.mu.Lock()
	for id, v := range f.vehicles {
		hb := v.LastHeartbeat()
		if hb.IsZero() {
			continue
		}
		since := now.Sub(hb)
		if since > f.timeout {
			if !f.silent[id] {
				f.silent[id] = true
				timeouts = append(timeouts, notify.HeartbeatTimeout{
					SystemID: id, SinceMs: uint64(since.Milliseconds()),
				})
			}
		} else if f.silent[id] {
			delete(f.silent, id)
			resumed = append(resumed, id)
		}
	}
	f.mu.Unlock()

	for _, e := range timeouts {
		f.logger.Warn("heartbeat timeout", "system_id", e.SystemID, "since_ms", e.SinceMs)
		f.events.Publish(e)
	}
	for _, id := range resumed {
		f.logger.Info("heartbeat resumed", "system_id", id)
	}
}

// Package vehicle tracks the state of one airframe from its decoded
// telemetry stream and issues commands back over its links. A Vehicle
// owns the link set it was heard on; the fleet registry owns the
// vehicles and routes frames to them.
package vehicle

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/antonymarion/forkQGroundControl/internal/link"
	"github.com/antonymarion/forkQGroundControl/internal/notify"
	"github.com/antonymarion/forkQGroundControl/internal/wire"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// Per-cell voltage bounds for lithium-polymer packs.
const (
	lipoFullVolts  = 4.2
	lipoEmptyVolts = 3.5
)

// Vehicle is the state machine for one remote system id. All telemetry
// mutation happens through HandleFrame; reads go through Snapshot and
// the typed accessors. Safe for concurrent use.
type Vehicle struct {
	systemID int
	enc      *wire.Encoder
	events   *notify.Broadcaster
	audio    notify.Audio
	logger   *slog.Logger
	links    *link.Set
	now      func() time.Time

	mu sync.Mutex

	// Identity as reported by HEARTBEAT. Starts at -1 so the first
	// heartbeat always registers as a change.
	vehicleType int
	autopilot   int
	status      int
	mode        int
	navMode     int64
	statusText  string

	startTime     time.Time
	lastHeartbeat time.Time

	attitudeStamped bool
	attitudeKnown   bool
	lastAttitudeMs  uint64
	timeOffsetMs    int64

	// Battery model. All level arithmetic runs on the filtered
	// voltage, never the raw sample.
	batteryCells    int
	fullVoltage     float64
	emptyVoltage    float64
	warnVoltage     float64
	warnLevelPct    float64
	startVoltage    float64
	currentVoltage  float64
	lpVoltage       float64
	currentAmps     float64
	chargeLevel     float64
	timeRemaining   float64
	estimateEnabled bool
	lowBattAlarm    bool

	lat, lon, alt float64
	relativeAlt   float64
	localX        float64
	localY        float64
	localZ        float64
	vx, vy, vz    float64

	roll, pitch, yaw float64
	rollRate         float64
	pitchRate        float64
	yawRate          float64
	headingDeg       float64

	airspeed    float64
	groundspeed float64
	throttle    float64
	climb       float64

	gpsFix       uint8
	satellites   int
	positionLock bool

	load     float64
	dropRate float64

	params     map[int]map[string]float32
	unknownIDs map[uint8]bool
}

// Option configures a Vehicle at construction.
type Option func(*Vehicle)

// WithAttitudeStamped moves every resolved telemetry timestamp to the
// last attitude measurement. Only for setups with a broken onboard
// clock; it distorts all recorded timestamps.
func WithAttitudeStamped() Option {
	return func(v *Vehicle) { v.attitudeStamped = true }
}

// WithClock overrides the wall-clock source.
func WithClock(now func() time.Time) Option {
	return func(v *Vehicle) { v.now = now }
}

// New creates the state machine for one system id. The encoder stamps
// outbound frames with the station identity; events and audio receive
// the dispatch side effects.
func New(systemID uint8, enc *wire.Encoder, events *notify.Broadcaster, audio notify.Audio, logger *slog.Logger, opts ...Option) *Vehicle {
	if audio == nil {
		audio = notify.NopAudio{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	v := &Vehicle{
		systemID:     int(systemID),
		enc:          enc,
		events:       events,
		audio:        audio,
		logger:       logger,
		links:        link.NewSet(),
		now:          time.Now,
		vehicleType:  -1,
		autopilot:    -1,
		status:       -1,
		mode:         -1,
		navMode:      -1,
		warnVoltage:  9.5,
		warnLevelPct: 20.0,
		params:       make(map[int]map[string]float32),
		unknownIDs:   make(map[uint8]bool),
	}
	v.setBatteryCellsLocked(3)
	v.currentVoltage = 12.0
	v.lpVoltage = 12.0

	for _, opt := range opts {
		opt(v)
	}
	v.startTime = v.now()

	if v.attitudeStamped {
		v.logger.Warn("attitude-stamped timestamps enabled, recorded times will follow the attitude stream",
			"system_id", v.systemID)
	}
	return v
}

// SystemID returns the remote system id this vehicle tracks.
func (v *Vehicle) SystemID() int { return v.systemID }

// Name returns the display name used in narration.
func (v *Vehicle) Name() string {
	return fmt.Sprintf("MAV %03d", v.systemID)
}

// Links exposes the link set for the registry.
func (v *Vehicle) Links() *link.Set { return v.links }

// SendMessage encodes msg with the station identity and writes it to
// every link the vehicle was heard on. An empty link set is a silent
// no-op.
func (v *Vehicle) SendMessage(msg wire.Message) error {
	buf, err := v.enc.Encode(msg)
	if err != nil {
		return err
	}
	return v.links.WriteAll(buf)
}

// LastHeartbeat returns the arrival time of the newest heartbeat, zero
// before the first one.
func (v *Vehicle) LastHeartbeat() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastHeartbeat
}

// Uptime is the time since the vehicle object was created.
func (v *Vehicle) Uptime() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now().Sub(v.startTime)
}

// Parameter reads one onboard parameter received via PARAM_VALUE.
func (v *Vehicle) Parameter(component int, name string) (float32, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	comp, ok := v.params[component]
	if !ok {
		return 0, false
	}
	val, ok := comp[name]
	return val, ok
}

// ParameterComponents lists the component ids that reported parameters.
func (v *Vehicle) ParameterComponents() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	ids := make([]int, 0, len(v.params))
	for id := range v.params {
		ids = append(ids, id)
	}
	return ids
}

// Parameters copies the parameter map of one component.
func (v *Vehicle) Parameters(component int) map[string]float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]float32, len(v.params[component]))
	for name, val := range v.params[component] {
		out[name] = val
	}
	return out
}

// Snapshot returns a consistent copy of the vehicle state.
func (v *Vehicle) Snapshot() core.VehicleSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	mode := uint8(0)
	if v.mode >= 0 {
		mode = uint8(v.mode)
	}
	navMode := uint32(0)
	if v.navMode >= 0 {
		navMode = uint32(v.navMode)
	}

	return core.VehicleSnapshot{
		SystemID:    v.systemID,
		Autopilot:   clampID(v.autopilot),
		Type:        clampID(v.vehicleType),
		Status:      clampID(v.status),
		StatusText:  v.statusText,
		Mode:        mode,
		NavMode:     navMode,
		Armed:       mode&wire.ModeFlagSafetyArmed != 0,
		Flying:      v.status == int(wire.StateActive),
		Position:    core.Position3D{Lat: v.lat, Lon: v.lon, Alt: v.alt},
		RelativeAlt: v.relativeAlt,
		LocalPosition: core.LocalPosition{
			X: v.localX, Y: v.localY, Z: v.localZ,
		},
		Velocity: core.Velocity{Vx: v.vx, Vy: v.vy, Vz: v.vz},
		Attitude: core.Attitude{
			Roll: v.roll, Pitch: v.pitch, Yaw: v.yaw,
			RollRate: v.rollRate, PitchRate: v.pitchRate, YawRate: v.yawRate,
		},
		HeadingDeg: v.headingDeg,
		GPSFix:     v.gpsFix,
		Satellites: v.satellites,
		Battery: core.BatteryState{
			Voltage:       v.lpVoltage,
			Current:       v.currentAmps,
			ChargeLevel:   v.chargeLevel,
			TimeRemaining: v.timeRemaining,
			Low:           v.lowBattAlarm,
		},
		Airspeed:      v.airspeed,
		Groundspeed:   v.groundspeed,
		Throttle:      v.throttle,
		Climb:         v.climb,
		PositionLock:  v.positionLock,
		LastHeartbeat: v.lastHeartbeat,
	}
}

func clampID(v int) uint8 {
	if v < 0 {
		return 0
	}
	return uint8(v)
}

// lockPosition latches the position fix once per transition and
// narrates the acquisition.
func (v *Vehicle) lockPosition() {
	if v.positionLock {
		return
	}
	v.positionLock = true
	v.audio.Say("GPS lock acquired")
	v.events.Publish(notify.PositionLock{SystemID: v.systemID})
}

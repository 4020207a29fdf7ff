// Package notify carries typed vehicle events from the dispatch loop to
// subscribers (storage writers, the bridge, the frontend stream) and
// defines the audio sink used for operator narration.
package notify

// Event is implemented by every notification type.
type Event interface {
	Kind() string
}

// AttitudeChanged reports a new attitude solution in radians.
type AttitudeChanged struct {
	SystemID  int
	TimeMs    uint64
	Roll      float64
	Pitch     float64
	Yaw       float64
	RollRate  float64
	PitchRate float64
	YawRate   float64
}

func (AttitudeChanged) Kind() string { return "attitude" }

// HeadingChanged reports the yaw converted to a compass heading.
type HeadingChanged struct {
	SystemID   int
	TimeMs     uint64
	HeadingDeg float64
	HeadingRad float64
}

func (HeadingChanged) Kind() string { return "heading" }

// GlobalPositionChanged reports a WGS84 fix in degrees and meters.
type GlobalPositionChanged struct {
	SystemID    int
	TimeMs      uint64
	Lat         float64
	Lon         float64
	Alt         float64
	RelativeAlt float64
	Vx          float64
	Vy          float64
	Vz          float64
}

func (GlobalPositionChanged) Kind() string { return "global_position" }

// LocalPositionChanged reports a local NED solution in meters.
type LocalPositionChanged struct {
	SystemID int
	TimeMs   uint64
	X        float64
	Y        float64
	Z        float64
	Vx       float64
	Vy       float64
	Vz       float64
}

func (LocalPositionChanged) Kind() string { return "local_position" }

// SatelliteStatus reports one satellite from the GNSS constellation
// view.
type SatelliteStatus struct {
	SystemID  int
	PRN       uint8
	Elevation uint8
	Azimuth   uint8
	SNR       uint8
	Used      bool
}

func (SatelliteStatus) Kind() string { return "satellite" }

// HomeChanged reports the vehicle's announced local-frame origin.
type HomeChanged struct {
	SystemID int
	Lat      float64
	Lon      float64
	Alt      float64
}

func (HomeChanged) Kind() string { return "home" }

// GPSFixChanged reports raw GNSS status.
type GPSFixChanged struct {
	SystemID   int
	TimeMs     uint64
	FixType    uint8
	Lat        float64
	Lon        float64
	Alt        float64
	Satellites int
}

func (GPSFixChanged) Kind() string { return "gps_fix" }

// BatteryChanged carries the filtered pack state.
type BatteryChanged struct {
	SystemID      int
	TimeMs        uint64
	Voltage       float64 // low-pass filtered, volts
	Current       float64 // amps, negative when unknown
	ChargeLevel   float64 // percent
	TimeRemaining float64 // seconds
}

func (BatteryChanged) Kind() string { return "battery" }

// LowBattery is raised once when the filtered voltage crosses below the
// warn threshold, and again only after recovery.
type LowBattery struct {
	SystemID int
	Voltage  float64
}

func (LowBattery) Kind() string { return "low_battery" }

// StatusChanged reports a new system status from HEARTBEAT.
type StatusChanged struct {
	SystemID int
	Status   uint8
	Text     string
}

func (StatusChanged) Kind() string { return "status" }

// ModeChanged reports a new base mode from HEARTBEAT.
type ModeChanged struct {
	SystemID int
	Mode     uint8
	Text     string
}

func (ModeChanged) Kind() string { return "mode" }

// NavModeChanged reports a new autopilot custom mode from HEARTBEAT.
type NavModeChanged struct {
	SystemID int
	NavMode  uint32
	Text     string
}

func (NavModeChanged) Kind() string { return "nav_mode" }

// SpeedChanged carries the VFR HUD values.
type SpeedChanged struct {
	SystemID    int
	TimeMs      uint64
	Airspeed    float64
	Groundspeed float64
	Heading     float64
	Throttle    float64
	Climb       float64
}

func (SpeedChanged) Kind() string { return "speed" }

// HeartbeatTimeout is raised by the fleet watchdog when a vehicle goes
// silent for longer than the configured timeout.
type HeartbeatTimeout struct {
	SystemID int
	SinceMs  uint64
}

func (HeartbeatTimeout) Kind() string { return "heartbeat_timeout" }

// SystemRemoved is raised when a vehicle leaves the fleet, either on
// request or on a POWEROFF heartbeat.
type SystemRemoved struct {
	SystemID int
}

func (SystemRemoved) Kind() string { return "system_removed" }

// PositionLock is raised once per transition into a valid global fix.
type PositionLock struct {
	SystemID int
}

func (PositionLock) Kind() string { return "position_lock" }

// TextMessage carries a STATUSTEXT or a locally generated message.
type TextMessage struct {
	SystemID    int
	ComponentID int
	Severity    uint8
	Text        string
}

func (TextMessage) Kind() string { return "text" }

// UnknownMessage is raised once per unhandled message id per vehicle.
type UnknownMessage struct {
	SystemID int
	MsgID    uint8
}

func (UnknownMessage) Kind() string { return "unknown_message" }

// ParamChanged reports an onboard parameter value.
type ParamChanged struct {
	SystemID    int
	ComponentID int
	Name        string
	Value       float32
	Index       uint16
	Count       uint16
}

func (ParamChanged) Kind() string { return "param" }

// WaypointReached reports mission progress.
type WaypointReached struct {
	SystemID int
	Seq      uint16
}

func (WaypointReached) Kind() string { return "waypoint_reached" }

// CommandAck reports the autopilot's verdict on a COMMAND_LONG.
type CommandAck struct {
	SystemID int
	Command  uint16
	Result   uint8
}

func (CommandAck) Kind() string { return "command_ack" }

// ValueChanged carries a named scalar from instrument messages (IMU,
// pressure, RC, servo, debug vectors) for generic plotting and storage.
type ValueChanged struct {
	SystemID int
	TimeMs   uint64
	Name     string
	Unit     string
	Value    float64
}

func (ValueChanged) Kind() string { return "value" }

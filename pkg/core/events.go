package core

import "time"

// TelemetrySample is one periodic state row bound for storage.
type TelemetrySample struct {
	Time        time.Time    `json:"time"`
	SystemID    int          `json:"systemId"`
	Position    Position3D   `json:"position"`
	RelativeAlt float64      `json:"relativeAlt"`
	Velocity    Velocity     `json:"velocity"`
	Attitude    Attitude     `json:"attitude"`
	HeadingDeg  float64      `json:"headingDeg"`
	Battery     BatteryState `json:"battery"`
	GPSFix      uint8        `json:"gpsFix"`
	Satellites  int          `json:"satellites"`
	Airspeed    float64      `json:"airspeed"`
	Groundspeed float64      `json:"groundspeed"`
	Throttle    float64      `json:"throttle"`
	Climb       float64      `json:"climb"`
}

// FlightEvent is a discrete occurrence recorded during a session:
// mode changes, alarms, waypoints reached, operator commands.
type FlightEvent struct {
	Time      time.Time      `json:"time"`
	SystemID  int            `json:"systemId"`
	Name      string         `json:"name"`
	Message   string         `json:"message"`
	ExtraData map[string]any `json:"extraData,omitempty"`
}

// ParamValue is one onboard parameter reading.
type ParamValue struct {
	Time        time.Time `json:"time"`
	SystemID    int       `json:"systemId"`
	ComponentID int       `json:"componentId"`
	Name        string    `json:"name"`
	Value       float32   `json:"value"`
	Index       uint16    `json:"index"`
	Count       uint16    `json:"count"`
}

// RawFrame preserves an undecoded or relayed frame for replay.
type RawFrame struct {
	Time     time.Time `json:"time"`
	SystemID int       `json:"systemId"`
	MsgID    uint8     `json:"msgId"`
	Payload  []byte    `json:"payload"`
}

// NamedValue is a generic instrument reading for plotting.
type NamedValue struct {
	Time     time.Time `json:"time"`
	SystemID int       `json:"systemId"`
	Name     string    `json:"name"`
	Unit     string    `json:"unit"`
	Value    float64   `json:"value"`
}

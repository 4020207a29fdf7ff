package core

import "time"

// BatteryState is the filtered battery estimate.
type BatteryState struct {
	Voltage       float64 `json:"voltage"`       // low-pass filtered, volts
	Current       float64 `json:"current"`       // amps, negative when unknown
	ChargeLevel   float64 `json:"chargeLevel"`   // percent
	TimeRemaining float64 `json:"timeRemaining"` // seconds
	Low           bool    `json:"low"`
}

// VehicleSnapshot is the read-only state readout the bridge snapshot
// publisher and the frontend stream consume.
type VehicleSnapshot struct {
	SystemID      int           `json:"systemId"`
	Autopilot     uint8         `json:"autopilot"`
	Type          uint8         `json:"type"`
	Status        uint8         `json:"status"`
	StatusText    string        `json:"statusText"`
	Mode          uint8         `json:"mode"`
	NavMode       uint32        `json:"navMode"`
	Armed         bool          `json:"armed"`
	Flying        bool          `json:"flying"`
	Position      Position3D    `json:"position"`
	RelativeAlt   float64       `json:"relativeAlt"`
	LocalPosition LocalPosition `json:"localPosition"`
	Velocity      Velocity      `json:"velocity"`
	Attitude      Attitude      `json:"attitude"`
	HeadingDeg    float64       `json:"headingDeg"`
	GPSFix        uint8         `json:"gpsFix"`
	Satellites    int           `json:"satellites"`
	Battery       BatteryState  `json:"battery"`
	Airspeed      float64       `json:"airspeed"`
	Groundspeed   float64       `json:"groundspeed"`
	Throttle      float64       `json:"throttle"`
	Climb         float64       `json:"climb"`
	PositionLock  bool          `json:"positionLock"`
	LastHeartbeat time.Time     `json:"lastHeartbeat"`
}

// CameraInfo describes a mounted camera for the bridge.
type CameraInfo struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Zoom      float64 `json:"zoom"`
	Recording bool    `json:"recording"`
	HasGimbal bool    `json:"hasGimbal"`
}

// GimbalState reports the gimbal axes in degrees.
type GimbalState struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Package core holds the plain data types shared by the dispatch loop,
// telemetry storage, the bridge, and the frontend stream.
package core

import "math"

// Position3D is a WGS84 fix, degrees and meters above sea level.
type Position3D struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// Valid reports whether the fix is finite, nonzero, and inside WGS84
// bounds. The zero origin is treated as "no fix yet".
func (p Position3D) Valid() bool {
	for _, v := range [...]float64{p.Lat, p.Lon, p.Alt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if p.Lat == 0 && p.Lon == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// LocalPosition is a local NED solution in meters.
type LocalPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Velocity is a NED velocity in m/s.
type Velocity struct {
	Vx float64 `json:"vx"`
	Vy float64 `json:"vy"`
	Vz float64 `json:"vz"`
}

// Ground returns the horizontal speed.
func (v Velocity) Ground() float64 {
	return math.Hypot(v.Vx, v.Vy)
}

// Attitude is the vehicle orientation in radians, plus body rates.
type Attitude struct {
	Roll      float64 `json:"roll"`
	Pitch     float64 `json:"pitch"`
	Yaw       float64 `json:"yaw"`
	RollRate  float64 `json:"rollRate"`
	PitchRate float64 `json:"pitchRate"`
	YawRate   float64 `json:"yawRate"`
}

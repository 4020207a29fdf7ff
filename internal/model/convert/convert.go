// Package convert maps core telemetry types onto GORM models.
package convert

import (
	"database/sql"
	"encoding/json"

	"github.com/antonymarion/forkQGroundControl/internal/geo"
	"github.com/antonymarion/forkQGroundControl/internal/model"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
	"gorm.io/datatypes"
)

// mapToJSON converts a map to datatypes.JSON for DB storage.
func mapToJSON(m map[string]any) datatypes.JSON {
	if len(m) == 0 {
		return datatypes.JSON("{}")
	}
	data, _ := json.Marshal(m)
	return datatypes.JSON(data)
}

// bytesToJSON stores a raw payload as a base64 JSON string.
func bytesToJSON(b []byte) datatypes.JSON {
	if len(b) == 0 {
		return datatypes.JSON(`""`)
	}
	data, _ := json.Marshal(b)
	return datatypes.JSON(data)
}

// CoreToSession converts a core.Session to a GORM model.Session.
// core.Session.ID maps to GORM Session.SessionUID.
func CoreToSession(s core.Session) model.Session {
	var endTime sql.NullTime
	if !s.EndedAt.IsZero() {
		endTime = sql.NullTime{Time: s.EndedAt, Valid: true}
	}

	return model.Session{
		SessionUID:        s.ID,
		Station:           s.Station,
		Name:              s.Name,
		StartTime:         s.StartedAt,
		EndTime:           endTime,
		PilotEmail:        s.Pilot.Email,
		PilotRegistration: s.Pilot.RegistrationNumber,
	}
}

// CoreToTelemetry converts a core.TelemetrySample to a GORM model.Telemetry.
// The WGS84 fix is stored twice, once as-is and once projected to web
// mercator for the map columns.
func CoreToTelemetry(s core.TelemetrySample) model.Telemetry {
	return model.Telemetry{
		Time:             s.Time,
		SystemID:         uint8(s.SystemID),
		Position:         geo.PointWGS84(s.Position.Lat, s.Position.Lon, s.Position.Alt),
		PositionMercator: geo.Point3857(s.Position.Lat, s.Position.Lon),
		RelativeAlt:      float32(s.RelativeAlt),
		VelocityX:        float32(s.Velocity.Vx),
		VelocityY:        float32(s.Velocity.Vy),
		VelocityZ:        float32(s.Velocity.Vz),
		Roll:             float32(s.Attitude.Roll),
		Pitch:            float32(s.Attitude.Pitch),
		Yaw:              float32(s.Attitude.Yaw),
		HeadingDeg:       float32(s.HeadingDeg),
		Battery: model.BatteryReadout{
			Voltage:       float32(s.Battery.Voltage),
			Current:       float32(s.Battery.Current),
			ChargeLevel:   float32(s.Battery.ChargeLevel),
			TimeRemaining: float32(s.Battery.TimeRemaining),
			Low:           s.Battery.Low,
		},
		GPSFix:      s.GPSFix,
		Satellites:  uint8(s.Satellites),
		Airspeed:    float32(s.Airspeed),
		Groundspeed: float32(s.Groundspeed),
		Throttle:    float32(s.Throttle),
		Climb:       float32(s.Climb),
	}
}

// CoreToFlightEvent converts a core.FlightEvent to a GORM model.FlightEvent.
func CoreToFlightEvent(e core.FlightEvent) model.FlightEvent {
	return model.FlightEvent{
		Time:      e.Time,
		SystemID:  uint8(e.SystemID),
		Name:      e.Name,
		Message:   e.Message,
		ExtraData: mapToJSON(e.ExtraData),
	}
}

// CoreToRawFrame converts a core.RawFrame to a GORM model.RawFrame.
func CoreToRawFrame(f core.RawFrame) model.RawFrame {
	return model.RawFrame{
		Time:     f.Time,
		SystemID: uint8(f.SystemID),
		MsgID:    f.MsgID,
		Payload:  bytesToJSON(f.Payload),
	}
}

// CoreToParamValue converts a core.ParamValue to a GORM model.ParamValue.
func CoreToParamValue(p core.ParamValue) model.ParamValue {
	return model.ParamValue{
		Time:        p.Time,
		SystemID:    uint8(p.SystemID),
		ComponentID: uint8(p.ComponentID),
		Name:        p.Name,
		Value:       p.Value,
		ParamIndex:  p.Index,
		ParamCount:  p.Count,
	}
}

package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/antonymarion/forkQGroundControl/internal/geo"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

func TestCoreToSession(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	end := start.Add(25 * time.Minute)

	s := core.Session{
		ID:        "b1c2d3",
		Station:   "gcs-0",
		Name:      "morning survey",
		StartedAt: start,
		EndedAt:   end,
		Pilot: core.RemotePilot{
			Email:              "ops@example.com",
			RegistrationNumber: "FRA-ops123",
		},
	}

	m := CoreToSession(s)
	assert.Equal(t, "b1c2d3", m.SessionUID)
	assert.Equal(t, "gcs-0", m.Station)
	assert.Equal(t, "morning survey", m.Name)
	assert.Equal(t, start, m.StartTime)
	require.True(t, m.EndTime.Valid)
	assert.Equal(t, end, m.EndTime.Time)
	assert.Equal(t, "ops@example.com", m.PilotEmail)
	assert.Equal(t, "FRA-ops123", m.PilotRegistration)
}

func TestCoreToSession_StillOpen(t *testing.T) {
	s := core.Session{ID: "b1c2d3", StartedAt: time.Now()}
	m := CoreToSession(s)
	assert.False(t, m.EndTime.Valid)
}

func TestCoreToTelemetry(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)

	s := core.TelemetrySample{
		Time:        now,
		SystemID:    7,
		Position:    core.Position3D{Lat: 47.5, Lon: 8.25, Alt: 412.5},
		RelativeAlt: 100.25,
		Velocity:    core.Velocity{Vx: 1.5, Vy: -2.25, Vz: 0.5},
		Attitude:    core.Attitude{Roll: 0.25, Pitch: -0.125, Yaw: 1.5},
		HeadingDeg:  90.5,
		Battery: core.BatteryState{
			Voltage:       11.5,
			Current:       4.25,
			ChargeLevel:   76.5,
			TimeRemaining: 540,
			Low:           true,
		},
		GPSFix:      3,
		Satellites:  12,
		Airspeed:    14.5,
		Groundspeed: 13.25,
		Throttle:    55,
		Climb:       -0.75,
	}

	m := CoreToTelemetry(s)
	assert.Equal(t, now, m.Time)
	assert.Equal(t, uint8(7), m.SystemID)

	coord, ok := m.Position.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 8.25, coord.XY.X) // lon is X
	assert.Equal(t, 47.5, coord.XY.Y)
	assert.Equal(t, 412.5, coord.Z)

	mx, my := geo.WebMercator(47.5, 8.25)
	mcoord, ok := m.PositionMercator.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, mx, mcoord.XY.X, 1e-6)
	assert.InDelta(t, my, mcoord.XY.Y, 1e-6)

	assert.Equal(t, float32(100.25), m.RelativeAlt)
	assert.Equal(t, float32(1.5), m.VelocityX)
	assert.Equal(t, float32(-2.25), m.VelocityY)
	assert.Equal(t, float32(0.5), m.VelocityZ)
	assert.Equal(t, float32(0.25), m.Roll)
	assert.Equal(t, float32(-0.125), m.Pitch)
	assert.Equal(t, float32(1.5), m.Yaw)
	assert.Equal(t, float32(90.5), m.HeadingDeg)
	assert.Equal(t, float32(11.5), m.Battery.Voltage)
	assert.Equal(t, float32(4.25), m.Battery.Current)
	assert.Equal(t, float32(76.5), m.Battery.ChargeLevel)
	assert.Equal(t, float32(540), m.Battery.TimeRemaining)
	assert.True(t, m.Battery.Low)
	assert.Equal(t, uint8(3), m.GPSFix)
	assert.Equal(t, uint8(12), m.Satellites)
	assert.Equal(t, float32(14.5), m.Airspeed)
	assert.Equal(t, float32(13.25), m.Groundspeed)
	assert.Equal(t, float32(55), m.Throttle)
	assert.Equal(t, float32(-0.75), m.Climb)
}

func TestCoreToFlightEvent(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)

	e := core.FlightEvent{
		Time:     now,
		SystemID: 7,
		Name:     "mode_changed",
		Message:  "GUIDED",
		ExtraData: map[string]any{
			"baseMode": float64(81),
		},
	}

	m := CoreToFlightEvent(e)
	assert.Equal(t, now, m.Time)
	assert.Equal(t, uint8(7), m.SystemID)
	assert.Equal(t, "mode_changed", m.Name)
	assert.Equal(t, "GUIDED", m.Message)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(m.ExtraData, &extra))
	assert.Equal(t, e.ExtraData, extra)
}

func TestCoreToFlightEvent_NoExtraData(t *testing.T) {
	m := CoreToFlightEvent(core.FlightEvent{Name: "armed"})
	assert.Equal(t, datatypes.JSON("{}"), m.ExtraData)
}

func TestCoreToRawFrame(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	payload := []byte{0xFE, 0x09, 0x01, 0x02}

	m := CoreToRawFrame(core.RawFrame{
		Time:     now,
		SystemID: 7,
		MsgID:    150,
		Payload:  payload,
	})
	assert.Equal(t, uint8(150), m.MsgID)

	// payload survives the base64 JSON round trip
	var decoded []byte
	require.NoError(t, json.Unmarshal(m.Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestCoreToRawFrame_EmptyPayload(t *testing.T) {
	m := CoreToRawFrame(core.RawFrame{MsgID: 0})
	assert.Equal(t, datatypes.JSON(`""`), m.Payload)
}

func TestCoreToParamValue(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)

	m := CoreToParamValue(core.ParamValue{
		Time:        now,
		SystemID:    7,
		ComponentID: 1,
		Name:        "BAT_CAPACITY",
		Value:       5200,
		Index:       12,
		Count:       950,
	})
	assert.Equal(t, uint8(7), m.SystemID)
	assert.Equal(t, uint8(1), m.ComponentID)
	assert.Equal(t, "BAT_CAPACITY", m.Name)
	assert.Equal(t, float32(5200), m.Value)
	assert.Equal(t, uint16(12), m.ParamIndex)
	assert.Equal(t, uint16(950), m.ParamCount)
}

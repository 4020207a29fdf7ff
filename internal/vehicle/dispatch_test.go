package vehicle

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonymarion/forkQGroundControl/internal/notify"
	"github.com/antonymarion/forkQGroundControl/internal/wire"
)

func valueMap(events []notify.Event) map[string]notify.ValueChanged {
	out := make(map[string]notify.ValueChanged)
	for _, e := range eventsOf[notify.ValueChanged](events) {
		out[e.Name] = e
	}
	return out
}

func TestHeartbeat_FirstContact(t *testing.T) {
	f := newFixture(t)

	hb := &wire.Heartbeat{
		Type:         2,
		Autopilot:    12,
		BaseMode:     wire.ModeFlagCustomModeEnabled | wire.ModeFlagGuidedEnabled | wire.ModeFlagStabilizeEnabled | wire.ModeFlagManualInput,
		SystemStatus: wire.StateActive,
	}
	f.v.HandleFrame(nil, testFrame(t, 7, 1, hb))

	events := f.drain()
	statuses := eventsOf[notify.StatusChanged](events)
	require.Len(t, statuses, 1)
	assert.Equal(t, wire.StateActive, statuses[0].Status)
	assert.Equal(t, "ACTIVE", statuses[0].Text)

	modes := eventsOf[notify.ModeChanged](events)
	require.Len(t, modes, 1)
	assert.Equal(t, hb.BaseMode, modes[0].Mode)
	assert.Equal(t, "GUIDED", modes[0].Text)

	navModes := eventsOf[notify.NavModeChanged](events)
	require.Len(t, navModes, 1)
	assert.Equal(t, "PREFLIGHT", navModes[0].Text)

	require.Len(t, f.audio.said, 1)
	assert.Equal(t, "System MAV 007 is now in GUIDED and  changed status to ACTIVE", f.audio.said[0])

	snap := f.v.Snapshot()
	assert.True(t, snap.Flying)
	assert.False(t, snap.Armed)
	assert.Equal(t, f.clock.now, snap.LastHeartbeat)

	// Repeating the same heartbeat changes nothing but the timestamp.
	f.clock.Advance(time.Second)
	f.v.HandleFrame(nil, testFrame(t, 7, 1, hb))

	events = f.drain()
	assert.Empty(t, eventsOf[notify.StatusChanged](events))
	assert.Empty(t, eventsOf[notify.ModeChanged](events))
	assert.Empty(t, eventsOf[notify.NavModeChanged](events))
	assert.Len(t, f.audio.said, 1)
	assert.Equal(t, f.clock.now, f.v.LastHeartbeat())
}

func TestHeartbeat_NavModeChangeAloneIsSilent(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Heartbeat{SystemStatus: wire.StateActive}))
	f.drain()
	saysBefore := len(f.audio.said)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Heartbeat{SystemStatus: wire.StateActive, CustomMode: 4}))

	navModes := eventsOf[notify.NavModeChanged](f.drain())
	require.Len(t, navModes, 1)
	assert.Equal(t, uint32(4), navModes[0].NavMode)
	assert.Equal(t, "MISSION", navModes[0].Text)
	assert.Len(t, f.audio.said, saysBefore)
}

func TestHeartbeat_EmergencyCycle(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Heartbeat{SystemStatus: wire.StateEmergency}))
	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Heartbeat{SystemStatus: wire.StateEmergency}))

	// Emergency repeats with every heartbeat and suppresses narration.
	assert.Equal(t, 2, f.audio.starts)
	assert.Empty(t, f.audio.said)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Heartbeat{SystemStatus: wire.StateActive}))

	assert.Equal(t, 1, f.audio.stops)
	require.Len(t, f.audio.said, 1)
	assert.Equal(t, "System MAV 007 changed status to ACTIVE", f.audio.said[0])
}

func TestHeartbeat_PoweroffPublishesRemoval(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Heartbeat{SystemStatus: wire.StatePoweroff}))

	removed := eventsOf[notify.SystemRemoved](f.drain())
	require.Len(t, removed, 1)
	assert.Equal(t, 7, removed[0].SystemID)
}

func TestHeartbeat_ArmedFlag(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Heartbeat{
		BaseMode:     wire.ModeFlagSafetyArmed | wire.ModeFlagManualInput,
		SystemStatus: wire.StateActive,
	}))

	assert.True(t, f.v.Snapshot().Armed)
}

func TestGlobalPosition_ScalingAndLock(t *testing.T) {
	f := newFixture(t)

	m := &wire.GlobalPositionInt{
		Lat:         473977420,
		Lon:         85601520,
		Alt:         412000,
		RelativeAlt: 50000,
		Vx:          300,
		Vy:          400,
	}
	f.v.HandleFrame(nil, testFrame(t, 7, 1, m))
	f.v.HandleFrame(nil, testFrame(t, 7, 1, m))

	events := f.drain()
	positions := eventsOf[notify.GlobalPositionChanged](events)
	require.Len(t, positions, 2)
	assert.InDelta(t, 47.397742, positions[0].Lat, 1e-9)
	assert.InDelta(t, 8.560152, positions[0].Lon, 1e-9)
	assert.InDelta(t, 412.0, positions[0].Alt, 1e-9)
	assert.InDelta(t, 50.0, positions[0].RelativeAlt, 1e-9)

	values := valueMap(events)
	assert.InDelta(t, 5.0, values["gps speed"].Value, 1e-9)

	// The lock latches on first fix and is narrated once.
	assert.Len(t, eventsOf[notify.PositionLock](events), 1)
	require.Len(t, f.audio.said, 1)
	assert.Equal(t, "GPS lock acquired", f.audio.said[0])

	snap := f.v.Snapshot()
	assert.True(t, snap.PositionLock)
	assert.InDelta(t, 47.397742, snap.Position.Lat, 1e-9)
}

func TestGlobalPosition_RelaysRawToOtherLinks(t *testing.T) {
	f := newFixture(t)
	a := &fakeLink{name: "udp0"}
	b := &fakeLink{name: "radio0"}
	f.v.Links().Add(b)

	frame := testFrame(t, 7, 1, &wire.GlobalPositionInt{Lat: 473977420})
	frame.Raw = []byte{0xFE, 9, 1, 7}
	f.v.HandleFrame(a, frame)

	assert.Equal(t, frame.Raw, b.buf.Bytes())
	assert.Zero(t, a.buf.Len())
}

func TestGPSRaw_FixGate(t *testing.T) {
	f := newFixture(t)

	noFix := &wire.GPSRawInt{
		Lat: 473977420, Lon: 85601520, Alt: 412000,
		FixType: 2, Vel: 500, SatellitesVisible: 5,
	}
	f.v.HandleFrame(nil, testFrame(t, 7, 1, noFix))

	events := f.drain()
	fixes := eventsOf[notify.GPSFixChanged](events)
	require.Len(t, fixes, 1)
	assert.Equal(t, uint8(2), fixes[0].FixType)
	assert.Equal(t, 5, fixes[0].Satellites)

	// Coordinates are reported but not trusted below a 3D fix.
	values := valueMap(events)
	assert.InDelta(t, 47.397742, values["latitude"].Value, 1e-9)
	assert.InDelta(t, 8.560152, values["longitude"].Value, 1e-9)
	assert.NotContains(t, values, "altitude")
	assert.NotContains(t, values, "speed")
	assert.Empty(t, eventsOf[notify.PositionLock](events))
	assert.Zero(t, f.v.Snapshot().Position.Lat)

	fix := *noFix
	fix.FixType = wire.Fix3D
	f.v.HandleFrame(nil, testFrame(t, 7, 1, &fix))

	events = f.drain()
	values = valueMap(events)
	assert.InDelta(t, 412.0, values["altitude"].Value, 1e-9)
	assert.InDelta(t, 5.0, values["speed"].Value, 1e-9)
	assert.Len(t, eventsOf[notify.PositionLock](events), 1)

	snap := f.v.Snapshot()
	assert.InDelta(t, 47.397742, snap.Position.Lat, 1e-9)
	assert.Equal(t, wire.Fix3D, snap.GPSFix)
}

func TestGPSRaw_InvalidSpeedSentinel(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.GPSRawInt{
		Lat: 473977420, Lon: 85601520, Alt: 412000,
		FixType: wire.Fix3D, Vel: 0xFFFF,
	}))

	events := f.drain()
	texts := eventsOf[notify.TextMessage](events)
	require.Len(t, texts, 1)
	assert.Equal(t, uint8(255), texts[0].Severity)
	assert.Equal(t, "GCS ERROR: RECEIVED INVALID SPEED OF 655.35 m/s", texts[0].Text)
	assert.NotContains(t, valueMap(events), "speed")
}

func TestGPSStatus_PerSatellite(t *testing.T) {
	f := newFixture(t)

	m := &wire.GPSStatus{SatellitesVisible: 3}
	m.SatellitePRN[0], m.SatellitePRN[1], m.SatellitePRN[2] = 7, 12, 19
	m.SatelliteSNR[0], m.SatelliteSNR[1], m.SatelliteSNR[2] = 40, 35, 28
	m.SatelliteUsed[1] = 1
	f.v.HandleFrame(nil, testFrame(t, 7, 1, m))

	sats := eventsOf[notify.SatelliteStatus](f.drain())
	require.Len(t, sats, 3)
	assert.Equal(t, uint8(12), sats[1].PRN)
	assert.Equal(t, uint8(35), sats[1].SNR)
	assert.True(t, sats[1].Used)
	assert.False(t, sats[0].Used)
	assert.Equal(t, 3, f.v.Snapshot().Satellites)
}

func TestAttitude_WrapAndCompass(t *testing.T) {
	f := newFixture(t)
	ground := f.groundMs()

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Attitude{
		TimeBootMs: 1000,
		Roll:       0.1,
		Pitch:      -0.2,
		Yaw:        4.8,
		Rollspeed:  0.01,
		Pitchspeed: 0.02,
		Yawspeed:   0.03,
	}))

	wantYaw := 4.8 - 2*math.Pi
	wantCompass := (wantYaw/math.Pi)*180 + 360

	events := f.drain()
	atts := eventsOf[notify.AttitudeChanged](events)
	require.Len(t, atts, 1)
	assert.InDelta(t, 0.1, atts[0].Roll, 1e-6)
	assert.InDelta(t, -0.2, atts[0].Pitch, 1e-6)
	assert.InDelta(t, wantYaw, atts[0].Yaw, 1e-6)
	assert.Equal(t, ground, atts[0].TimeMs)

	heads := eventsOf[notify.HeadingChanged](events)
	require.Len(t, heads, 1)
	assert.InDelta(t, wantCompass, heads[0].HeadingDeg, 1e-6)
	assert.InDelta(t, wantYaw, heads[0].HeadingRad, 1e-6)
	assert.InDelta(t, wantCompass, f.v.Snapshot().HeadingDeg, 1e-6)
}

func TestVFRHud_YawFallback(t *testing.T) {
	f := newFixture(t)

	hud := &wire.VFRHud{
		Airspeed:    12.5,
		Groundspeed: 11,
		Alt:         420,
		Climb:       1.5,
		Heading:     90,
		Throttle:    65,
	}
	f.v.HandleFrame(nil, testFrame(t, 7, 1, hud))

	events := f.drain()
	atts := eventsOf[notify.AttitudeChanged](events)
	require.Len(t, atts, 1)
	assert.InDelta(t, -math.Pi/4, atts[0].Yaw, 1e-6)

	speeds := eventsOf[notify.SpeedChanged](events)
	require.Len(t, speeds, 1)
	assert.InDelta(t, 12.5, speeds[0].Airspeed, 1e-6)
	assert.InDelta(t, 90, speeds[0].Heading, 1e-6)
	assert.InDelta(t, 65, speeds[0].Throttle, 1e-6)
	assert.InDelta(t, 420, valueMap(events)["altitude"].Value, 1e-6)

	// Once a real attitude arrives the HUD heading no longer drives yaw.
	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Attitude{TimeBootMs: 1000}))
	f.drain()
	f.v.HandleFrame(nil, testFrame(t, 7, 1, hud))

	events = f.drain()
	assert.Empty(t, eventsOf[notify.AttitudeChanged](events))
	assert.Len(t, eventsOf[notify.SpeedChanged](events), 1)
}

func TestLocalPosition(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.LocalPositionNED{
		X: 1.5, Y: -2.5, Z: -10, Vx: 0.1, Vy: 0.2, Vz: -0.3,
	}))

	events := f.drain()
	locals := eventsOf[notify.LocalPositionChanged](events)
	require.Len(t, locals, 1)
	assert.InDelta(t, -10, locals[0].Z, 1e-6)
	assert.Len(t, eventsOf[notify.PositionLock](events), 1)

	snap := f.v.Snapshot()
	assert.InDelta(t, 1.5, snap.LocalPosition.X, 1e-6)
	assert.InDelta(t, 0.2, snap.Velocity.Vy, 1e-6)
}

func TestTelemetryValueStreams(t *testing.T) {
	f := newFixture(t)

	t.Run("nav controller", func(t *testing.T) {
		f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.NavControllerOutput{
			NavRoll: 1.5, NavPitch: -2.5, AltError: 7.5, AspdError: 1.25,
			XtrackError: 0.5, NavBearing: 90, TargetBearing: 95, WpDist: 120,
		}))
		values := valueMap(f.drain())
		assert.InDelta(t, 7.5, values["alt err"].Value, 1e-6)
		assert.InDelta(t, 1.25, values["airspeed err"].Value, 1e-6)
		assert.InDelta(t, 120, values["wp dist"].Value, 1e-6)
		assert.Equal(t, "deg", values["nav bearing"].Unit)
	})

	t.Run("scaled imu", func(t *testing.T) {
		f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.ScaledIMU{
			XAcc: 1500, XGyro: 500, ZMag: 250,
		}))
		values := valueMap(f.drain())
		assert.InDelta(t, 1.5, values["accel x"].Value, 1e-6)
		assert.Equal(t, "g", values["accel x"].Unit)
		assert.InDelta(t, 0.5, values["gyro roll"].Value, 1e-6)
		assert.Equal(t, "rad/s", values["gyro roll"].Unit)
		assert.InDelta(t, 2.5, values["mag z"].Value, 1e-6)
		assert.Equal(t, "uTesla", values["mag z"].Unit)
	})

	t.Run("raw imu", func(t *testing.T) {
		f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.RawIMU{XAcc: -100, ZGyro: 42}))
		values := valueMap(f.drain())
		assert.InDelta(t, -100, values["accel x"].Value, 1e-6)
		assert.Equal(t, "raw", values["accel x"].Unit)
		assert.InDelta(t, 42, values["gyro yaw"].Value, 1e-6)
	})

	t.Run("scaled pressure", func(t *testing.T) {
		f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.ScaledPressure{
			PressAbs: 1013.25, PressDiff: 0.5, Temperature: 2250,
		}))
		values := valueMap(f.drain())
		assert.InDelta(t, 1013.25, values["abs pressure"].Value, 1e-4)
		assert.Equal(t, "hPa", values["abs pressure"].Unit)
		assert.InDelta(t, 22.5, values["temperature"].Value, 1e-6)
	})

	t.Run("rc channels", func(t *testing.T) {
		f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.RCChannelsRaw{Chan3: 1500, RSSI: 204}))
		values := valueMap(f.drain())
		assert.InDelta(t, 0.8, values["rc rssi"].Value, 1e-6)
		assert.InDelta(t, 1500, values["rc in #3"].Value, 1e-6)

		f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.RCChannelsScaled{Chan2: 5000}))
		values = valueMap(f.drain())
		assert.InDelta(t, 0.5, values["rc scaled #2"].Value, 1e-6)
	})

	t.Run("servo output", func(t *testing.T) {
		f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.ServoOutputRaw{Servo8: 2000}))
		values := valueMap(f.drain())
		assert.InDelta(t, 2000, values["servo #8"].Value, 1e-6)
		assert.Equal(t, "us", values["servo #8"].Unit)
	})

	t.Run("debug vect", func(t *testing.T) {
		dv := &wire.DebugVect{X: 1, Y: 2, Z: 3}
		copy(dv.NameRaw[:], "wind")
		f.v.HandleFrame(nil, testFrame(t, 7, 1, dv))
		values := valueMap(f.drain())
		assert.InDelta(t, 1, values["wind.x"].Value, 1e-6)
		assert.InDelta(t, 3, values["wind.z"].Value, 1e-6)
	})

	t.Run("named values", func(t *testing.T) {
		nf := &wire.NamedValueFloat{Value: 0.52}
		copy(nf.NameRaw[:], "cpu_load")
		f.v.HandleFrame(nil, testFrame(t, 7, 1, nf))

		ni := &wire.NamedValueInt{Value: -4}
		copy(ni.NameRaw[:], "errors")
		f.v.HandleFrame(nil, testFrame(t, 7, 1, ni))

		f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Debug{Value: 9.5, Ind: 2}))

		values := valueMap(f.drain())
		assert.InDelta(t, 0.52, values["cpu_load"].Value, 1e-6)
		assert.InDelta(t, -4, values["errors"].Value, 1e-6)
		assert.InDelta(t, 9.5, values["debug 2"].Value, 1e-6)
	})
}

func TestCommandAckTexts(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.CommandAck{Command: 400, Result: wire.ResultAccepted}))
	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.CommandAck{Command: 400, Result: 2}))

	events := f.drain()
	acks := eventsOf[notify.CommandAck](events)
	require.Len(t, acks, 2)
	assert.Equal(t, uint16(400), acks[0].Command)

	texts := eventsOf[notify.TextMessage](events)
	require.Len(t, texts, 2)
	assert.Equal(t, "SUCCESS: Executed CMD: 400", texts[0].Text)
	assert.Equal(t, "FAILURE: Rejected CMD: 400", texts[1].Text)
	assert.Equal(t, uint8(0), texts[0].Severity)
}

func TestStatustext(t *testing.T) {
	f := newFixture(t)

	st := &wire.Statustext{Severity: 4}
	st.SetText("EKF variance spike")
	f.v.HandleFrame(nil, testFrame(t, 7, 50, st))

	texts := eventsOf[notify.TextMessage](f.drain())
	require.Len(t, texts, 1)
	assert.Equal(t, "EKF variance spike", texts[0].Text)
	assert.Equal(t, uint8(4), texts[0].Severity)
	assert.Equal(t, 50, texts[0].ComponentID)
}

func TestMissionItemReached(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.MissionItemReached{Seq: 3}))

	events := f.drain()
	reached := eventsOf[notify.WaypointReached](events)
	require.Len(t, reached, 1)
	assert.Equal(t, uint16(3), reached[0].Seq)

	require.Len(t, f.audio.said, 1)
	assert.Equal(t, "System MAV 007 reached waypoint 3", f.audio.said[0])

	texts := eventsOf[notify.TextMessage](events)
	require.Len(t, texts, 1)
	assert.Equal(t, f.audio.said[0], texts[0].Text)
}

func TestParamValueEvent(t *testing.T) {
	f := newFixture(t)

	pv := &wire.ParamValue{ParamValue: 2.5, ParamIndex: 4, ParamCount: 120}
	pv.SetName("WPNAV_SPEED")
	f.v.HandleFrame(nil, testFrame(t, 7, 1, pv))

	params := eventsOf[notify.ParamChanged](f.drain())
	require.Len(t, params, 1)
	assert.Equal(t, "WPNAV_SPEED", params[0].Name)
	assert.Equal(t, float32(2.5), params[0].Value)
	assert.Equal(t, uint16(4), params[0].Index)
	assert.Equal(t, uint16(120), params[0].Count)
	assert.Equal(t, 1, params[0].ComponentID)
}

func TestHomePosition(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.GPSGlobalOrigin{
		Latitude: 473977420, Longitude: 85601520, Altitude: 412000,
	}))

	homes := eventsOf[notify.HomeChanged](f.drain())
	require.Len(t, homes, 1)
	assert.InDelta(t, 47.397742, homes[0].Lat, 1e-9)
	assert.InDelta(t, 8.560152, homes[0].Lon, 1e-9)
	assert.InDelta(t, 412.0, homes[0].Alt, 1e-9)
}

func TestUnknownMessage_DeduplicatedPerID(t *testing.T) {
	f := newFixture(t)

	ping := &wire.Frame{SysID: 7, CompID: 1, MsgID: wire.MsgIDPing, Payload: make([]byte, 14)}
	for i := 0; i < 5; i++ {
		f.v.HandleFrame(nil, ping)
	}
	f.v.HandleFrame(nil, &wire.Frame{SysID: 7, CompID: 1, MsgID: wire.MsgIDMissionCurrent, Payload: make([]byte, 2)})

	events := f.drain()
	unknown := eventsOf[notify.UnknownMessage](events)
	require.Len(t, unknown, 2)
	assert.Equal(t, wire.MsgIDPing, unknown[0].MsgID)
	assert.Equal(t, wire.MsgIDMissionCurrent, unknown[1].MsgID)

	require.Len(t, f.audio.said, 2)
	assert.Equal(t, "UNABLE TO DECODE MESSAGE NUMBER 4, please check console for details.", f.audio.said[0])

	texts := eventsOf[notify.TextMessage](events)
	require.Len(t, texts, 2)
	assert.Equal(t, "UNABLE TO DECODE MESSAGE NUMBER 4", texts[0].Text)
	assert.Equal(t, uint8(255), texts[0].Severity)
}

func TestAttitudeStamped_GateAndTimestamping(t *testing.T) {
	f := newFixture(t, WithAttitudeStamped())

	// Anything before the first attitude has no resolvable timestamp.
	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.VFRHud{Airspeed: 10}))
	assert.Empty(t, f.drain())

	ground := f.groundMs()
	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Attitude{TimeBootMs: 2000}))
	require.NotEmpty(t, f.drain())

	f.clock.Advance(time.Minute)
	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.SysStatus{VoltageBattery: 12000, BatteryRemaining: 50}))

	batts := eventsOf[notify.BatteryChanged](f.drain())
	require.Len(t, batts, 1)
	assert.Equal(t, ground, batts[0].TimeMs)
}

func TestMalformedPayloadDropped(t *testing.T) {
	f := newFixture(t)

	f.v.HandleFrame(nil, &wire.Frame{SysID: 7, CompID: 1, MsgID: wire.MsgIDHeartbeat, Payload: []byte{1, 2}})

	assert.Empty(t, f.drain())
	assert.True(t, f.v.LastHeartbeat().IsZero())
}

package vehicle

import (
	"fmt"
	"math"

	"github.com/antonymarion/forkQGroundControl/internal/link"
	"github.com/antonymarion/forkQGroundControl/internal/notify"
	"github.com/antonymarion/forkQGroundControl/internal/util"
	"github.com/antonymarion/forkQGroundControl/internal/wire"
)

// HandleFrame applies one decoded frame to the vehicle state. The link
// the frame arrived on joins the vehicle's link set before any
// filtering, so replies reach the vehicle even when the frame itself is
// rejected. Frames from other system ids are ignored; in
// attitude-stamped mode everything before the first attitude is dropped
// because its timestamp would be unresolvable.
func (v *Vehicle) HandleFrame(l link.Link, f *wire.Frame) {
	if l != nil {
		v.links.Add(l)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if int(f.SysID) != v.systemID {
		return
	}
	if v.attitudeStamped && v.lastAttitudeMs == 0 && f.MsgID != wire.MsgIDAttitude {
		return
	}

	switch f.MsgID {
	case wire.MsgIDHeartbeat:
		v.handleHeartbeat(f)
	case wire.MsgIDSysStatus:
		v.handleSysStatus(f)
	case wire.MsgIDAttitude:
		v.handleAttitude(f)
	case wire.MsgIDVFRHud:
		v.handleVFRHud(f)
	case wire.MsgIDLocalPositionNED:
		v.handleLocalPosition(f)
	case wire.MsgIDGlobalPositionInt:
		v.handleGlobalPosition(l, f)
	case wire.MsgIDGPSRawInt:
		v.handleGPSRaw(f)
	case wire.MsgIDGPSStatus:
		v.handleGPSStatus(f)
	case wire.MsgIDNavControllerOutput:
		v.handleNavController(f)
	case wire.MsgIDRawIMU:
		v.handleRawIMU(f)
	case wire.MsgIDScaledIMU:
		v.handleScaledIMU(f)
	case wire.MsgIDRawPressure:
		v.handleRawPressure(f)
	case wire.MsgIDScaledPressure:
		v.handleScaledPressure(f)
	case wire.MsgIDRCChannelsRaw:
		v.handleRCRaw(f)
	case wire.MsgIDRCChannelsScaled:
		v.handleRCScaled(f)
	case wire.MsgIDServoOutputRaw:
		v.handleServoOutput(f)
	case wire.MsgIDParamValue:
		v.handleParamValue(f)
	case wire.MsgIDCommandAck:
		v.handleCommandAck(f)
	case wire.MsgIDStatustext:
		v.handleStatustext(f)
	case wire.MsgIDMissionItemReached:
		v.handleMissionItemReached(f)
	case wire.MsgIDDebugVect:
		v.handleDebugVect(f)
	case wire.MsgIDNamedValueFloat:
		v.handleNamedValueFloat(f)
	case wire.MsgIDNamedValueInt:
		v.handleNamedValueInt(f)
	case wire.MsgIDDebug:
		v.handleDebug(f)
	case wire.MsgIDGPSGlobalOrigin:
		v.handleGPSGlobalOrigin(f)
	default:
		v.handleUnknown(f)
	}
}

func (v *Vehicle) unpack(f *wire.Frame, m interface{ Unpack([]byte) error }) bool {
	if err := m.Unpack(f.Payload); err != nil {
		v.logger.Warn("dropping malformed payload",
			"system_id", v.systemID, "msg", f.Name(), "error", err)
		return false
	}
	return true
}

func (v *Vehicle) emitValue(t uint64, name, unit string, value float64) {
	v.events.Publish(notify.ValueChanged{
		SystemID: v.systemID, TimeMs: t, Name: name, Unit: unit, Value: value,
	})
}

func (v *Vehicle) emitText(component int, severity uint8, text string) {
	v.events.Publish(notify.TextMessage{
		SystemID: v.systemID, ComponentID: component, Severity: severity, Text: text,
	})
}

func (v *Vehicle) handleHeartbeat(f *wire.Frame) {
	var m wire.Heartbeat
	if !v.unpack(f, &m) {
		return
	}

	v.lastHeartbeat = v.now()

	if v.vehicleType != int(m.Type) {
		v.vehicleType = int(m.Type)
		v.autopilot = int(m.Autopilot)
		v.logger.Info("vehicle type identified",
			"system_id", v.systemID, "type", m.Type, "autopilot", m.Autopilot)
	}

	audioText := "System " + v.Name()
	stateAudio := ""
	modeAudio := ""
	navModeAudio := ""
	stateChanged := false
	modeChanged := false

	if v.status != int(m.SystemStatus) {
		stateChanged = true
		v.status = int(m.SystemStatus)
		v.statusText = statusName(m.SystemStatus)
		v.events.Publish(notify.StatusChanged{
			SystemID: v.systemID, Status: m.SystemStatus, Text: v.statusText,
		})
		v.logger.Info("status changed", "system_id", v.systemID,
			"status", v.statusText, "detail", statusDescription(m.SystemStatus))
		stateAudio = " changed status to " + v.statusText
	}

	if v.mode != int(m.BaseMode) {
		modeChanged = true
		v.mode = int(m.BaseMode)
		text := modeName(m.BaseMode)
		v.events.Publish(notify.ModeChanged{
			SystemID: v.systemID, Mode: m.BaseMode, Text: text,
		})
		modeAudio = " is now in " + text
	}

	if v.navMode != int64(m.CustomMode) {
		v.navMode = int64(m.CustomMode)
		text := navModeName(m.CustomMode)
		v.events.Publish(notify.NavModeChanged{
			SystemID: v.systemID, NavMode: m.CustomMode, Text: text,
		})
		navModeAudio = " changed nav mode to " + text
	}

	// A nav-mode change alone is not narrated.
	if modeChanged && stateChanged {
		audioText += modeAudio + " and " + stateAudio
	} else if modeChanged || stateChanged {
		audioText += modeAudio + stateAudio + navModeAudio
	}

	if m.SystemStatus == wire.StateCritical || m.SystemStatus == wire.StateEmergency {
		v.audio.StartEmergency()
	} else if modeChanged || stateChanged {
		v.audio.StopEmergency()
		v.audio.Say(audioText)
	}

	if m.SystemStatus == wire.StatePoweroff {
		v.events.Publish(notify.SystemRemoved{SystemID: v.systemID})
	}
}

func (v *Vehicle) handleSysStatus(f *wire.Frame) {
	var m wire.SysStatus
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(0)

	v.load = float64(m.Load) / 10
	v.emitValue(t, "Load", "%", v.load)

	v.currentVoltage = float64(m.VoltageBattery) / 1000
	v.lpVoltage = v.filterVoltage(v.currentVoltage)
	if v.startVoltage == 0 {
		v.startVoltage = v.currentVoltage
	}
	v.timeRemaining = v.calcTimeRemaining()
	if m.CurrentBattery < 0 {
		v.currentAmps = -1
	} else {
		v.currentAmps = float64(m.CurrentBattery) / 100
	}
	if !v.estimateEnabled && m.BatteryRemaining >= 0 {
		v.chargeLevel = float64(m.BatteryRemaining)
	}

	v.events.Publish(notify.BatteryChanged{
		SystemID:      v.systemID,
		TimeMs:        t,
		Voltage:       v.lpVoltage,
		Current:       v.currentAmps,
		ChargeLevel:   v.chargeLevelLocked(),
		TimeRemaining: v.timeRemaining,
	})

	if v.lpVoltage < v.warnVoltage {
		v.startLowBattAlarm()
	} else {
		v.stopLowBattAlarm()
	}

	v.dropRate = float64(m.DropRateComm) / 100
	v.emitValue(t, "drop rate", "%", v.dropRate)
}

func (v *Vehicle) handleAttitude(f *wire.Frame) {
	var m wire.Attitude
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveReferenceTime(uint64(m.TimeBootMs) * 1000)
	v.lastAttitudeMs = t
	v.attitudeKnown = true

	v.roll = util.WrapPi(float64(m.Roll))
	v.pitch = util.WrapPi(float64(m.Pitch))
	v.yaw = util.WrapPi(float64(m.Yaw))
	v.rollRate = float64(m.Rollspeed)
	v.pitchRate = float64(m.Pitchspeed)
	v.yawRate = float64(m.Yawspeed)

	compass := (v.yaw/math.Pi)*180 + 360
	for compass > 360 {
		compass -= 360
	}
	v.headingDeg = compass

	v.events.Publish(notify.AttitudeChanged{
		SystemID: v.systemID, TimeMs: t,
		Roll: v.roll, Pitch: v.pitch, Yaw: v.yaw,
		RollRate: v.rollRate, PitchRate: v.pitchRate, YawRate: v.yawRate,
	})
	v.events.Publish(notify.HeadingChanged{
		SystemID: v.systemID, TimeMs: t,
		HeadingDeg: compass, HeadingRad: v.yaw,
	})
}

func (v *Vehicle) handleVFRHud(f *wire.Frame) {
	var m wire.VFRHud
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(0)

	v.airspeed = float64(m.Airspeed)
	v.groundspeed = float64(m.Groundspeed)
	v.throttle = float64(m.Throttle)
	v.climb = float64(m.Climb)

	v.emitValue(t, "altitude", "m", float64(m.Alt))

	// Without an attitude source the HUD heading stands in for yaw.
	if !v.attitudeKnown {
		v.yaw = util.WrapPi((float64(m.Heading) - 180) / 360 * math.Pi)
		v.events.Publish(notify.AttitudeChanged{
			SystemID: v.systemID, TimeMs: t,
			Roll: v.roll, Pitch: v.pitch, Yaw: v.yaw,
		})
	}

	v.events.Publish(notify.SpeedChanged{
		SystemID: v.systemID, TimeMs: t,
		Airspeed:    v.airspeed,
		Groundspeed: v.groundspeed,
		Heading:     float64(m.Heading),
		Throttle:    v.throttle,
		Climb:       v.climb,
	})
}

func (v *Vehicle) handleLocalPosition(f *wire.Frame) {
	var m wire.LocalPositionNED
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(uint64(m.TimeBootMs) * 1000)

	v.localX = float64(m.X)
	v.localY = float64(m.Y)
	v.localZ = float64(m.Z)
	v.vx = float64(m.Vx)
	v.vy = float64(m.Vy)
	v.vz = float64(m.Vz)

	v.events.Publish(notify.LocalPositionChanged{
		SystemID: v.systemID, TimeMs: t,
		X: v.localX, Y: v.localY, Z: v.localZ,
		Vx: v.vx, Vy: v.vy, Vz: v.vz,
	})
	v.lockPosition()
}

func (v *Vehicle) handleGlobalPosition(l link.Link, f *wire.Frame) {
	var m wire.GlobalPositionInt
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(0)

	v.lat = float64(m.Lat) / 1e7
	v.lon = float64(m.Lon) / 1e7
	v.alt = float64(m.Alt) / 1000
	v.relativeAlt = float64(m.RelativeAlt) / 1000
	v.vx = float64(m.Vx) / 100
	v.vy = float64(m.Vy) / 100
	v.vz = float64(m.Vz) / 100

	v.events.Publish(notify.GlobalPositionChanged{
		SystemID: v.systemID, TimeMs: t,
		Lat: v.lat, Lon: v.lon, Alt: v.alt, RelativeAlt: v.relativeAlt,
		Vx: v.vx, Vy: v.vy, Vz: v.vz,
	})
	v.emitValue(t, "gps speed", "m/s",
		math.Sqrt(v.vx*v.vx+v.vy*v.vy+v.vz*v.vz))

	v.lockPosition()

	// Verbatim relay to the other links for antenna tracking.
	if l != nil && len(f.Raw) > 0 {
		if err := v.links.WriteExcept(l, f.Raw); err != nil {
			v.logger.Debug("position relay failed",
				"system_id", v.systemID, "error", err)
		}
	}
}

func (v *Vehicle) handleGPSRaw(f *wire.Frame) {
	var m wire.GPSRawInt
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(0)
	lat := float64(m.Lat) / 1e7
	lon := float64(m.Lon) / 1e7
	alt := float64(m.Alt) / 1000

	v.emitValue(t, "latitude", "deg", lat)
	v.emitValue(t, "longitude", "deg", lon)

	v.gpsFix = m.FixType
	if m.SatellitesVisible != 255 {
		v.satellites = int(m.SatellitesVisible)
	}
	v.events.Publish(notify.GPSFixChanged{
		SystemID: v.systemID, TimeMs: t,
		FixType: m.FixType, Lat: lat, Lon: lon, Alt: alt,
		Satellites: v.satellites,
	})

	if m.FixType < wire.Fix3D {
		return
	}

	v.lat = lat
	v.lon = lon
	v.alt = alt
	v.lockPosition()
	v.emitValue(t, "altitude", "m", alt)

	// 0xFFFF means the receiver reports no speed.
	if m.Vel != math.MaxUint16 {
		v.emitValue(t, "speed", "m/s", float64(m.Vel)/100)
	} else {
		v.emitText(int(f.CompID), 255,
			fmt.Sprintf("GCS ERROR: RECEIVED INVALID SPEED OF %.2f m/s", float64(m.Vel)/100))
	}
}

func (v *Vehicle) handleGPSStatus(f *wire.Frame) {
	var m wire.GPSStatus
	if !v.unpack(f, &m) {
		return
	}

	n := int(m.SatellitesVisible)
	if n > len(m.SatellitePRN) {
		n = len(m.SatellitePRN)
	}
	v.satellites = n

	for i := 0; i < n; i++ {
		v.events.Publish(notify.SatelliteStatus{
			SystemID:  v.systemID,
			PRN:       m.SatellitePRN[i],
			Elevation: m.SatelliteElevation[i],
			Azimuth:   m.SatelliteAzimuth[i],
			SNR:       m.SatelliteSNR[i],
			Used:      m.SatelliteUsed[i] != 0,
		})
	}
}

func (v *Vehicle) handleNavController(f *wire.Frame) {
	var m wire.NavControllerOutput
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(0)
	v.emitValue(t, "nav roll", "deg", float64(m.NavRoll))
	v.emitValue(t, "nav pitch", "deg", float64(m.NavPitch))
	v.emitValue(t, "nav bearing", "deg", float64(m.NavBearing))
	v.emitValue(t, "target bearing", "deg", float64(m.TargetBearing))
	v.emitValue(t, "wp dist", "m", float64(m.WpDist))
	v.emitValue(t, "alt err", "m", float64(m.AltError))
	v.emitValue(t, "airspeed err", "m/s", float64(m.AspdError))
	v.emitValue(t, "xtrack err", "m", float64(m.XtrackError))
}

func (v *Vehicle) handleRawIMU(f *wire.Frame) {
	var m wire.RawIMU
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(m.TimeUsec)
	v.emitValue(t, "accel x", "raw", float64(m.XAcc))
	v.emitValue(t, "accel y", "raw", float64(m.YAcc))
	v.emitValue(t, "accel z", "raw", float64(m.ZAcc))
	v.emitValue(t, "gyro roll", "raw", float64(m.XGyro))
	v.emitValue(t, "gyro pitch", "raw", float64(m.YGyro))
	v.emitValue(t, "gyro yaw", "raw", float64(m.ZGyro))
	v.emitValue(t, "mag x", "raw", float64(m.XMag))
	v.emitValue(t, "mag y", "raw", float64(m.YMag))
	v.emitValue(t, "mag z", "raw", float64(m.ZMag))
}

func (v *Vehicle) handleScaledIMU(f *wire.Frame) {
	var m wire.ScaledIMU
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(uint64(m.TimeBootMs) * 1000)
	v.emitValue(t, "accel x", "g", float64(m.XAcc)/1000)
	v.emitValue(t, "accel y", "g", float64(m.YAcc)/1000)
	v.emitValue(t, "accel z", "g", float64(m.ZAcc)/1000)
	v.emitValue(t, "gyro roll", "rad/s", float64(m.XGyro)/1000)
	v.emitValue(t, "gyro pitch", "rad/s", float64(m.YGyro)/1000)
	v.emitValue(t, "gyro yaw", "rad/s", float64(m.ZGyro)/1000)
	v.emitValue(t, "mag x", "uTesla", float64(m.XMag)/100)
	v.emitValue(t, "mag y", "uTesla", float64(m.YMag)/100)
	v.emitValue(t, "mag z", "uTesla", float64(m.ZMag)/100)
}

func (v *Vehicle) handleRawPressure(f *wire.Frame) {
	var m wire.RawPressure
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(m.TimeUsec)
	v.emitValue(t, "abs pressure", "raw", float64(m.PressAbs))
	v.emitValue(t, "diff pressure 1", "raw", float64(m.PressDiff1))
	v.emitValue(t, "diff pressure 2", "raw", float64(m.PressDiff2))
	v.emitValue(t, "temperature", "raw", float64(m.Temperature))
}

func (v *Vehicle) handleScaledPressure(f *wire.Frame) {
	var m wire.ScaledPressure
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(uint64(m.TimeBootMs) * 1000)
	v.emitValue(t, "abs pressure", "hPa", float64(m.PressAbs))
	v.emitValue(t, "diff pressure", "hPa", float64(m.PressDiff))
	v.emitValue(t, "temperature", "C", float64(m.Temperature)/100)
}

func (v *Vehicle) handleRCRaw(f *wire.Frame) {
	var m wire.RCChannelsRaw
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(0)
	v.emitValue(t, "rc rssi", "0-1", float64(m.RSSI)/255)
	chans := [...]uint16{m.Chan1, m.Chan2, m.Chan3, m.Chan4, m.Chan5, m.Chan6, m.Chan7, m.Chan8}
	for i, raw := range chans {
		v.emitValue(t, fmt.Sprintf("rc in #%d", i+1), "us", float64(raw))
	}
}

func (v *Vehicle) handleRCScaled(f *wire.Frame) {
	var m wire.RCChannelsScaled
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(0)
	v.emitValue(t, "rc rssi", "0-1", float64(m.RSSI)/255)
	chans := [...]int16{m.Chan1, m.Chan2, m.Chan3, m.Chan4, m.Chan5, m.Chan6, m.Chan7, m.Chan8}
	for i, scaled := range chans {
		v.emitValue(t, fmt.Sprintf("rc scaled #%d", i+1), "0-1", float64(scaled)/10000)
	}
}

func (v *Vehicle) handleServoOutput(f *wire.Frame) {
	var m wire.ServoOutputRaw
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(0)
	servos := [...]uint16{m.Servo1, m.Servo2, m.Servo3, m.Servo4, m.Servo5, m.Servo6, m.Servo7, m.Servo8}
	for i, pwm := range servos {
		v.emitValue(t, fmt.Sprintf("servo #%d", i+1), "us", float64(pwm))
	}
}

func (v *Vehicle) handleParamValue(f *wire.Frame) {
	var m wire.ParamValue
	if !v.unpack(f, &m) {
		return
	}

	component := int(f.CompID)
	name := m.Name()
	if v.params[component] == nil {
		v.params[component] = make(map[string]float32)
	}
	v.params[component][name] = m.ParamValue

	v.events.Publish(notify.ParamChanged{
		SystemID:    v.systemID,
		ComponentID: component,
		Name:        name,
		Value:       m.ParamValue,
		Index:       m.ParamIndex,
		Count:       m.ParamCount,
	})
}

func (v *Vehicle) handleCommandAck(f *wire.Frame) {
	var m wire.CommandAck
	if !v.unpack(f, &m) {
		return
	}

	v.events.Publish(notify.CommandAck{
		SystemID: v.systemID, Command: m.Command, Result: m.Result,
	})
	if m.Result == wire.ResultAccepted {
		v.emitText(int(f.CompID), 0, fmt.Sprintf("SUCCESS: Executed CMD: %d", m.Command))
	} else {
		v.emitText(int(f.CompID), 0, fmt.Sprintf("FAILURE: Rejected CMD: %d", m.Command))
	}
}

func (v *Vehicle) handleStatustext(f *wire.Frame) {
	var m wire.Statustext
	if !v.unpack(f, &m) {
		return
	}
	v.emitText(int(f.CompID), m.Severity, m.Text())
}

func (v *Vehicle) handleMissionItemReached(f *wire.Frame) {
	var m wire.MissionItemReached
	if !v.unpack(f, &m) {
		return
	}

	text := fmt.Sprintf("System %s reached waypoint %d", v.Name(), m.Seq)
	v.audio.Say(text)
	v.events.Publish(notify.WaypointReached{SystemID: v.systemID, Seq: m.Seq})
	v.emitText(int(f.CompID), 0, text)
}

func (v *Vehicle) handleDebugVect(f *wire.Frame) {
	var m wire.DebugVect
	if !v.unpack(f, &m) {
		return
	}

	t := v.resolveTime(m.TimeUsec)
	name := m.VectName()
	v.emitValue(t, name+".x", "raw", float64(m.X))
	v.emitValue(t, name+".y", "raw", float64(m.Y))
	v.emitValue(t, name+".z", "raw", float64(m.Z))
}

func (v *Vehicle) handleNamedValueFloat(f *wire.Frame) {
	var m wire.NamedValueFloat
	if !v.unpack(f, &m) {
		return
	}
	v.emitValue(v.resolveTime(0), m.Name(), "raw", float64(m.Value))
}

func (v *Vehicle) handleNamedValueInt(f *wire.Frame) {
	var m wire.NamedValueInt
	if !v.unpack(f, &m) {
		return
	}
	v.emitValue(v.resolveTime(0), m.Name(), "raw", float64(m.Value))
}

func (v *Vehicle) handleDebug(f *wire.Frame) {
	var m wire.Debug
	if !v.unpack(f, &m) {
		return
	}
	v.emitValue(v.resolveTime(0), fmt.Sprintf("debug %d", m.Ind), "raw", float64(m.Value))
}

func (v *Vehicle) handleGPSGlobalOrigin(f *wire.Frame) {
	var m wire.GPSGlobalOrigin
	if !v.unpack(f, &m) {
		return
	}

	v.events.Publish(notify.HomeChanged{
		SystemID: v.systemID,
		Lat:      float64(m.Latitude) / 1e7,
		Lon:      float64(m.Longitude) / 1e7,
		Alt:      float64(m.Altitude) / 1000,
	})
}

// handleUnknown notifies about an undecodable message id once per id
// per vehicle lifetime.
func (v *Vehicle) handleUnknown(f *wire.Frame) {
	if v.unknownIDs[f.MsgID] {
		return
	}
	v.unknownIDs[f.MsgID] = true

	text := fmt.Sprintf("UNABLE TO DECODE MESSAGE NUMBER %d", f.MsgID)
	v.audio.Say(text + ", please check console for details.")
	v.events.Publish(notify.UnknownMessage{SystemID: v.systemID, MsgID: f.MsgID})
	v.emitText(int(f.CompID), 255, text)
	v.logger.Warn("unable to decode message",
		"system_id", f.SysID, "msg_id", f.MsgID)
}

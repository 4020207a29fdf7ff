package vehicle

import (
	"errors"

	"github.com/antonymarion/forkQGroundControl/internal/wire"
)

// Type mask for SET_POSITION_TARGET_LOCAL_NED selecting position and
// yaw, ignoring velocity, acceleration and yaw rate.
const setpointMaskPositionYaw uint16 = 0x09F8

// Onboard parameter ids are at most 15 characters so the 16-byte wire
// field always carries a terminator.
const maxParamIDLen = 15

var errEmptyParamID = errors.New("empty parameter id")

// SetMode requests a new base mode from the autopilot. The vehicle's
// own mode field only changes when a heartbeat confirms it.
func (v *Vehicle) SetMode(mode uint8) error {
	return v.SendMessage(&wire.SetMode{
		TargetSystem: uint8(v.systemID),
		BaseMode:     mode,
	})
}

// currentMode returns the last confirmed base mode, zero before the
// first heartbeat.
func (v *Vehicle) currentMode() uint8 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode < 0 {
		return 0
	}
	return uint8(v.mode)
}

// ArmSystem requests the safety-armed flag. Depending on the airframe
// this spins up the motors.
func (v *Vehicle) ArmSystem() error {
	return v.SetMode(v.currentMode() | wire.ModeFlagSafetyArmed)
}

// DisarmSystem clears the safety-armed flag. This may stop all motors.
func (v *Vehicle) DisarmSystem() error {
	return v.SetMode(v.currentMode() &^ wire.ModeFlagSafetyArmed)
}

// EnableHIL switches hardware-in-the-loop simulation on or off.
func (v *Vehicle) EnableHIL(enable bool) error {
	if enable {
		return v.SetMode(v.currentMode() | wire.ModeFlagHILEnabled)
	}
	return v.SetMode(v.currentMode() &^ wire.ModeFlagHILEnabled)
}

// SetParameter writes one onboard parameter. The id is truncated to the
// wire limit; the new value only counts once the vehicle echoes it back
// in a PARAM_VALUE.
func (v *Vehicle) SetParameter(component int, id string, value float32) error {
	if id == "" {
		return errEmptyParamID
	}
	if len(id) > maxParamIDLen {
		id = id[:maxParamIDLen]
	}

	m := &wire.ParamSet{
		ParamValue:      value,
		TargetSystem:    uint8(v.systemID),
		TargetComponent: uint8(component),
		ParamType:       9, // MAV_PARAM_TYPE_REAL32
	}
	m.SetName(id)
	return v.SendMessage(m)
}

// RequestParameters asks every component for its full parameter list.
func (v *Vehicle) RequestParameters() error {
	return v.SendMessage(&wire.ParamRequestList{
		TargetSystem:    uint8(v.systemID),
		TargetComponent: wire.CompIDAll,
	})
}

// RequestParameter asks one component to retransmit a parameter by
// index.
func (v *Vehicle) RequestParameter(component, index int) error {
	return v.SendMessage(&wire.ParamRequestRead{
		ParamIndex:      int16(index),
		TargetSystem:    uint8(v.systemID),
		TargetComponent: uint8(component),
	})
}

// ExecuteCommand sends a command with no parameters to component zero.
func (v *Vehicle) ExecuteCommand(command uint16) error {
	return v.ExecuteCommandShort(command, 0, 0, 0, 0, 0, wire.CompIDAll)
}

// ExecuteCommandShort sends a command carrying four parameters.
func (v *Vehicle) ExecuteCommandShort(command uint16, confirmation uint8, p1, p2, p3, p4 float32, component uint8) error {
	return v.SendMessage(&wire.CommandLong{
		Param1:          p1,
		Param2:          p2,
		Param3:          p3,
		Param4:          p4,
		Command:         command,
		TargetSystem:    uint8(v.systemID),
		TargetComponent: component,
		Confirmation:    confirmation,
	})
}

// ExecuteCommandLong sends a command carrying the full seven
// parameters.
func (v *Vehicle) ExecuteCommandLong(command uint16, confirmation uint8, p1, p2, p3, p4, p5, p6, p7 float32, component uint8) error {
	return v.SendMessage(&wire.CommandLong{
		Param1:          p1,
		Param2:          p2,
		Param3:          p3,
		Param4:          p4,
		Param5:          p5,
		Param6:          p6,
		Param7:          p7,
		Command:         command,
		TargetSystem:    uint8(v.systemID),
		TargetComponent: component,
		Confirmation:    confirmation,
	})
}

// enableStream requests one telemetry stream. The request is sent twice
// because it has no acknowledgment.
func (v *Vehicle) enableStream(streamID uint8, rate uint16) error {
	startStop := uint8(0)
	if rate != 0 {
		startStop = 1
	}
	m := &wire.RequestDataStream{
		ReqMessageRate:  rate,
		TargetSystem:    uint8(v.systemID),
		TargetComponent: 0,
		ReqStreamID:     streamID,
		StartStop:       startStop,
	}
	if err := v.SendMessage(m); err != nil {
		return err
	}
	return v.SendMessage(m)
}

// EnableAllDataTransmission switches the standard message set on or
// off. Stream id zero is the magic all-streams selector; the rate field
// stays zero so every message keeps its default rate, only start/stop
// carries the intent.
func (v *Vehicle) EnableAllDataTransmission(rate int) error {
	startStop := uint8(0)
	if rate != 0 {
		startStop = 1
	}
	m := &wire.RequestDataStream{
		ReqMessageRate:  0,
		TargetSystem:    uint8(v.systemID),
		TargetComponent: 0,
		ReqStreamID:     wire.DataStreamAll,
		StartStop:       startStop,
	}
	if err := v.SendMessage(m); err != nil {
		return err
	}
	return v.SendMessage(m)
}

// EnableRawSensorDataTransmission requests raw IMU and pressure data at
// the given rate in Hz. Zero stops the stream.
func (v *Vehicle) EnableRawSensorDataTransmission(rate int) error {
	return v.enableStream(wire.DataStreamRawSensors, uint16(rate))
}

// EnableExtendedSystemStatusTransmission requests SYS_STATUS and GPS
// data at the given rate in Hz. Zero stops the stream.
func (v *Vehicle) EnableExtendedSystemStatusTransmission(rate int) error {
	return v.enableStream(wire.DataStreamExtendedStatus, uint16(rate))
}

// EnableRCChannelDataTransmission requests RC channel data at the given
// rate in Hz. Zero stops the stream.
func (v *Vehicle) EnableRCChannelDataTransmission(rate int) error {
	return v.enableStream(wire.DataStreamRCChannels, uint16(rate))
}

// EnableRawControllerDataTransmission requests controller output at the
// given rate in Hz. Zero stops the stream.
func (v *Vehicle) EnableRawControllerDataTransmission(rate int) error {
	return v.enableStream(wire.DataStreamRawController, uint16(rate))
}

// EnablePositionTransmission requests local and global position data at
// the given rate in Hz. Zero stops the stream.
func (v *Vehicle) EnablePositionTransmission(rate int) error {
	return v.enableStream(wire.DataStreamPosition, uint16(rate))
}

// EnableExtra1Transmission requests the attitude stream at the given
// rate in Hz. Zero stops the stream.
func (v *Vehicle) EnableExtra1Transmission(rate int) error {
	return v.enableStream(wire.DataStreamExtra1, uint16(rate))
}

// EnableExtra2Transmission requests the VFR HUD stream at the given
// rate in Hz. Zero stops the stream.
func (v *Vehicle) EnableExtra2Transmission(rate int) error {
	return v.enableStream(wire.DataStreamExtra2, uint16(rate))
}

// EnableExtra3Transmission requests the extra status stream at the
// given rate in Hz. Zero stops the stream.
func (v *Vehicle) EnableExtra3Transmission(rate int) error {
	return v.enableStream(wire.DataStreamExtra3, uint16(rate))
}

// SetLocalPositionSetpoint commands a position and yaw target in the
// local NED frame.
func (v *Vehicle) SetLocalPositionSetpoint(x, y, z, yaw float32) error {
	return v.SendMessage(&wire.SetPositionTargetLocalNED{
		X:               x,
		Y:               y,
		Z:               z,
		Yaw:             yaw,
		TypeMask:        setpointMaskPositionYaw,
		TargetSystem:    uint8(v.systemID),
		CoordinateFrame: wire.FrameLocalNED,
	})
}

// SetHomePosition sends a new world coordinate frame origin in degrees
// and meters.
func (v *Vehicle) SetHomePosition(lat, lon, alt float64) error {
	return v.SendMessage(&wire.SetGPSGlobalOrigin{
		Latitude:     int32(lat * 1e7),
		Longitude:    int32(lon * 1e7),
		Altitude:     int32(alt * 1000),
		TargetSystem: uint8(v.systemID),
	})
}

// Preflight calibration selectors: param1 gyro, param2 magnetometer,
// param3 pressure, param4 radio.

// StartGyroscopeCalibration asks the IMU to recalibrate its gyros. The
// vehicle must sit still until a completion STATUSTEXT arrives.
func (v *Vehicle) StartGyroscopeCalibration() error {
	return v.ExecuteCommandShort(wire.CmdPreflightCalibration, 1, 1, 0, 0, 0, wire.CompIDIMU)
}

// StartMagnetometerCalibration asks the IMU to recalibrate its compass.
func (v *Vehicle) StartMagnetometerCalibration() error {
	return v.ExecuteCommandShort(wire.CmdPreflightCalibration, 1, 0, 1, 0, 0, wire.CompIDIMU)
}

// StartPressureCalibration zeroes the barometric altitude at the
// current level.
func (v *Vehicle) StartPressureCalibration() error {
	return v.ExecuteCommandShort(wire.CmdPreflightCalibration, 1, 0, 0, 1, 0, wire.CompIDIMU)
}

// StartRadioControlCalibration begins the RC stick range sweep.
func (v *Vehicle) StartRadioControlCalibration() error {
	return v.ExecuteCommandShort(wire.CmdPreflightCalibration, 1, 0, 0, 0, 1, wire.CompIDIMU)
}

// WriteParametersToStorage persists the onboard parameters to
// non-volatile memory.
func (v *Vehicle) WriteParametersToStorage() error {
	return v.ExecuteCommandShort(wire.CmdPreflightStorage, 1, 1, -1, -1, -1, wire.CompIDAll)
}

// ReadParametersFromStorage reloads the onboard parameters from
// non-volatile memory.
func (v *Vehicle) ReadParametersFromStorage() error {
	return v.ExecuteCommandShort(wire.CmdPreflightStorage, 1, 0, -1, -1, -1, wire.CompIDAll)
}

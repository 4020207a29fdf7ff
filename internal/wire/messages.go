package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

var le = binary.LittleEndian

func errShort(name string, got int) error {
	return fmt.Errorf("wire: %s payload truncated at %d bytes", name, got)
}

func f32(b []byte) float32       { return math.Float32frombits(le.Uint32(b)) }
func putF32(b []byte, v float32) { le.PutUint32(b, math.Float32bits(v)) }

// cstr interprets a fixed-size char field, stopping at the first NUL.
func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// setCstr copies s into the fixed-size char field dst, NUL-padded.
func setCstr(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// Heartbeat reports vehicle type, autopilot, flight mode and system status.
type Heartbeat struct {
	CustomMode     uint32
	Type           uint8
	Autopilot      uint8
	BaseMode       uint8
	SystemStatus   uint8
	MavlinkVersion uint8
}

func (m *Heartbeat) ID() uint8 { return MsgIDHeartbeat }

func (m *Heartbeat) Pack() ([]byte, error) {
	b := make([]byte, 9)
	le.PutUint32(b[0:], m.CustomMode)
	b[4] = m.Type
	b[5] = m.Autopilot
	b[6] = m.BaseMode
	b[7] = m.SystemStatus
	b[8] = m.MavlinkVersion
	return b, nil
}

func (m *Heartbeat) Unpack(p []byte) error {
	if len(p) < 9 {
		return errShort("HEARTBEAT", len(p))
	}
	m.CustomMode = le.Uint32(p[0:])
	m.Type = p[4]
	m.Autopilot = p[5]
	m.BaseMode = p[6]
	m.SystemStatus = p[7]
	m.MavlinkVersion = p[8]
	return nil
}

// SysStatus carries sensor health, load, and battery readings.
type SysStatus struct {
	SensorsPresent   uint32
	SensorsEnabled   uint32
	SensorsHealth    uint32
	Load             uint16 // 0..1000, percent times ten
	VoltageBattery   uint16 // millivolts
	CurrentBattery   int16  // 10 mA units, -1 unknown
	DropRateComm     uint16 // 0..10000, percent times hundred
	ErrorsComm       uint16
	ErrorsCount1     uint16
	ErrorsCount2     uint16
	ErrorsCount3     uint16
	ErrorsCount4     uint16
	BatteryRemaining int8 // percent, -1 unknown
}

func (m *SysStatus) ID() uint8 { return MsgIDSysStatus }

func (m *SysStatus) Pack() ([]byte, error) {
	b := make([]byte, 31)
	le.PutUint32(b[0:], m.SensorsPresent)
	le.PutUint32(b[4:], m.SensorsEnabled)
	le.PutUint32(b[8:], m.SensorsHealth)
	le.PutUint16(b[12:], m.Load)
	le.PutUint16(b[14:], m.VoltageBattery)
	le.PutUint16(b[16:], uint16(m.CurrentBattery))
	le.PutUint16(b[18:], m.DropRateComm)
	le.PutUint16(b[20:], m.ErrorsComm)
	le.PutUint16(b[22:], m.ErrorsCount1)
	le.PutUint16(b[24:], m.ErrorsCount2)
	le.PutUint16(b[26:], m.ErrorsCount3)
	le.PutUint16(b[28:], m.ErrorsCount4)
	b[30] = byte(m.BatteryRemaining)
	return b, nil
}

func (m *SysStatus) Unpack(p []byte) error {
	if len(p) < 31 {
		return errShort("SYS_STATUS", len(p))
	}
	m.SensorsPresent = le.Uint32(p[0:])
	m.SensorsEnabled = le.Uint32(p[4:])
	m.SensorsHealth = le.Uint32(p[8:])
	m.Load = le.Uint16(p[12:])
	m.VoltageBattery = le.Uint16(p[14:])
	m.CurrentBattery = int16(le.Uint16(p[16:]))
	m.DropRateComm = le.Uint16(p[18:])
	m.ErrorsComm = le.Uint16(p[20:])
	m.ErrorsCount1 = le.Uint16(p[22:])
	m.ErrorsCount2 = le.Uint16(p[24:])
	m.ErrorsCount3 = le.Uint16(p[26:])
	m.ErrorsCount4 = le.Uint16(p[28:])
	m.BatteryRemaining = int8(p[30])
	return nil
}

// SetMode requests a new base/custom mode on the target system.
type SetMode struct {
	CustomMode   uint32
	TargetSystem uint8
	BaseMode     uint8
}

func (m *SetMode) ID() uint8 { return MsgIDSetMode }

func (m *SetMode) Pack() ([]byte, error) {
	b := make([]byte, 6)
	le.PutUint32(b[0:], m.CustomMode)
	b[4] = m.TargetSystem
	b[5] = m.BaseMode
	return b, nil
}

func (m *SetMode) Unpack(p []byte) error {
	if len(p) < 6 {
		return errShort("SET_MODE", len(p))
	}
	m.CustomMode = le.Uint32(p[0:])
	m.TargetSystem = p[4]
	m.BaseMode = p[5]
	return nil
}

// ParamRequestRead asks for a single parameter by name or index.
type ParamRequestRead struct {
	ParamIndex      int16 // -1 to select by name
	TargetSystem    uint8
	TargetComponent uint8
	ParamID         [16]byte
}

func (m *ParamRequestRead) ID() uint8 { return MsgIDParamRequestRead }

// SetName sets the parameter id, truncated to the wire field size.
func (m *ParamRequestRead) SetName(s string) { setCstr(m.ParamID[:], s) }

func (m *ParamRequestRead) Pack() ([]byte, error) {
	b := make([]byte, 20)
	le.PutUint16(b[0:], uint16(m.ParamIndex))
	b[2] = m.TargetSystem
	b[3] = m.TargetComponent
	copy(b[4:20], m.ParamID[:])
	return b, nil
}

func (m *ParamRequestRead) Unpack(p []byte) error {
	if len(p) < 20 {
		return errShort("PARAM_REQUEST_READ", len(p))
	}
	m.ParamIndex = int16(le.Uint16(p[0:]))
	m.TargetSystem = p[2]
	m.TargetComponent = p[3]
	copy(m.ParamID[:], p[4:20])
	return nil
}

// ParamRequestList asks the target to stream all parameters.
type ParamRequestList struct {
	TargetSystem    uint8
	TargetComponent uint8
}

func (m *ParamRequestList) ID() uint8 { return MsgIDParamRequestList }

func (m *ParamRequestList) Pack() ([]byte, error) {
	return []byte{m.TargetSystem, m.TargetComponent}, nil
}

func (m *ParamRequestList) Unpack(p []byte) error {
	if len(p) < 2 {
		return errShort("PARAM_REQUEST_LIST", len(p))
	}
	m.TargetSystem = p[0]
	m.TargetComponent = p[1]
	return nil
}

// ParamValue announces one onboard parameter value.
type ParamValue struct {
	ParamValue float32
	ParamCount uint16
	ParamIndex uint16
	ParamID    [16]byte
	ParamType  uint8
}

func (m *ParamValue) ID() uint8 { return MsgIDParamValue }

// Name returns the parameter id as a string.
func (m *ParamValue) Name() string { return cstr(m.ParamID[:]) }

// SetName sets the parameter id, truncated to the wire field size.
func (m *ParamValue) SetName(s string) { setCstr(m.ParamID[:], s) }

func (m *ParamValue) Pack() ([]byte, error) {
	b := make([]byte, 25)
	putF32(b[0:], m.ParamValue)
	le.PutUint16(b[4:], m.ParamCount)
	le.PutUint16(b[6:], m.ParamIndex)
	copy(b[8:24], m.ParamID[:])
	b[24] = m.ParamType
	return b, nil
}

func (m *ParamValue) Unpack(p []byte) error {
	if len(p) < 25 {
		return errShort("PARAM_VALUE", len(p))
	}
	m.ParamValue = f32(p[0:])
	m.ParamCount = le.Uint16(p[4:])
	m.ParamIndex = le.Uint16(p[6:])
	copy(m.ParamID[:], p[8:24])
	m.ParamType = p[24]
	return nil
}

// ParamSet writes one onboard parameter.
type ParamSet struct {
	ParamValue      float32
	TargetSystem    uint8
	TargetComponent uint8
	ParamID         [16]byte
	ParamType       uint8
}

func (m *ParamSet) ID() uint8 { return MsgIDParamSet }

// Name returns the parameter id as a string.
func (m *ParamSet) Name() string { return cstr(m.ParamID[:]) }

// SetName sets the parameter id, truncated to the wire field size.
func (m *ParamSet) SetName(s string) { setCstr(m.ParamID[:], s) }

func (m *ParamSet) Pack() ([]byte, error) {
	b := make([]byte, 23)
	putF32(b[0:], m.ParamValue)
	b[4] = m.TargetSystem
	b[5] = m.TargetComponent
	copy(b[6:22], m.ParamID[:])
	b[22] = m.ParamType
	return b, nil
}

func (m *ParamSet) Unpack(p []byte) error {
	if len(p) < 23 {
		return errShort("PARAM_SET", len(p))
	}
	m.ParamValue = f32(p[0:])
	m.TargetSystem = p[4]
	m.TargetComponent = p[5]
	copy(m.ParamID[:], p[6:22])
	m.ParamType = p[22]
	return nil
}

// GPSRawInt is the raw GNSS solution, integer-scaled.
type GPSRawInt struct {
	TimeUsec          uint64
	Lat               int32 // degrees * 1e7
	Lon               int32 // degrees * 1e7
	Alt               int32 // millimeters
	Eph               uint16
	Epv               uint16
	Vel               uint16 // cm/s
	Cog               uint16 // centidegrees
	FixType           uint8
	SatellitesVisible uint8
}

func (m *GPSRawInt) ID() uint8 { return MsgIDGPSRawInt }

func (m *GPSRawInt) Pack() ([]byte, error) {
	b := make([]byte, 30)
	le.PutUint64(b[0:], m.TimeUsec)
	le.PutUint32(b[8:], uint32(m.Lat))
	le.PutUint32(b[12:], uint32(m.Lon))
	le.PutUint32(b[16:], uint32(m.Alt))
	le.PutUint16(b[20:], m.Eph)
	le.PutUint16(b[22:], m.Epv)
	le.PutUint16(b[24:], m.Vel)
	le.PutUint16(b[26:], m.Cog)
	b[28] = m.FixType
	b[29] = m.SatellitesVisible
	return b, nil
}

func (m *GPSRawInt) Unpack(p []byte) error {
	if len(p) < 30 {
		return errShort("GPS_RAW_INT", len(p))
	}
	m.TimeUsec = le.Uint64(p[0:])
	m.Lat = int32(le.Uint32(p[8:]))
	m.Lon = int32(le.Uint32(p[12:]))
	m.Alt = int32(le.Uint32(p[16:]))
	m.Eph = le.Uint16(p[20:])
	m.Epv = le.Uint16(p[22:])
	m.Vel = le.Uint16(p[24:])
	m.Cog = le.Uint16(p[26:])
	m.FixType = p[28]
	m.SatellitesVisible = p[29]
	return nil
}

// GPSStatus reports the satellite constellation in view.
type GPSStatus struct {
	SatellitesVisible  uint8
	SatellitePRN       [20]uint8
	SatelliteUsed      [20]uint8
	SatelliteElevation [20]uint8
	SatelliteAzimuth   [20]uint8
	SatelliteSNR       [20]uint8
}

func (m *GPSStatus) ID() uint8 { return MsgIDGPSStatus }

func (m *GPSStatus) Pack() ([]byte, error) {
	b := make([]byte, 101)
	b[0] = m.SatellitesVisible
	copy(b[1:21], m.SatellitePRN[:])
	copy(b[21:41], m.SatelliteUsed[:])
	copy(b[41:61], m.SatelliteElevation[:])
	copy(b[61:81], m.SatelliteAzimuth[:])
	copy(b[81:101], m.SatelliteSNR[:])
	return b, nil
}

func (m *GPSStatus) Unpack(p []byte) error {
	if len(p) < 101 {
		return errShort("GPS_STATUS", len(p))
	}
	m.SatellitesVisible = p[0]
	copy(m.SatellitePRN[:], p[1:21])
	copy(m.SatelliteUsed[:], p[21:41])
	copy(m.SatelliteElevation[:], p[41:61])
	copy(m.SatelliteAzimuth[:], p[61:81])
	copy(m.SatelliteSNR[:], p[81:101])
	return nil
}

// ScaledIMU carries calibrated 9-axis IMU readings.
type ScaledIMU struct {
	TimeBootMs uint32
	XAcc       int16 // mg
	YAcc       int16
	ZAcc       int16
	XGyro      int16 // mrad/s
	YGyro      int16
	ZGyro      int16
	XMag       int16 // mgauss
	YMag       int16
	ZMag       int16
}

func (m *ScaledIMU) ID() uint8 { return MsgIDScaledIMU }

func (m *ScaledIMU) Pack() ([]byte, error) {
	b := make([]byte, 22)
	le.PutUint32(b[0:], m.TimeBootMs)
	for i, v := range []int16{m.XAcc, m.YAcc, m.ZAcc, m.XGyro, m.YGyro, m.ZGyro, m.XMag, m.YMag, m.ZMag} {
		le.PutUint16(b[4+2*i:], uint16(v))
	}
	return b, nil
}

func (m *ScaledIMU) Unpack(p []byte) error {
	if len(p) < 22 {
		return errShort("SCALED_IMU", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.XAcc = int16(le.Uint16(p[4:]))
	m.YAcc = int16(le.Uint16(p[6:]))
	m.ZAcc = int16(le.Uint16(p[8:]))
	m.XGyro = int16(le.Uint16(p[10:]))
	m.YGyro = int16(le.Uint16(p[12:]))
	m.ZGyro = int16(le.Uint16(p[14:]))
	m.XMag = int16(le.Uint16(p[16:]))
	m.YMag = int16(le.Uint16(p[18:]))
	m.ZMag = int16(le.Uint16(p[20:]))
	return nil
}

// RawIMU carries uncalibrated 9-axis IMU readings.
type RawIMU struct {
	TimeUsec uint64
	XAcc     int16
	YAcc     int16
	ZAcc     int16
	XGyro    int16
	YGyro    int16
	ZGyro    int16
	XMag     int16
	YMag     int16
	ZMag     int16
}

func (m *RawIMU) ID() uint8 { return MsgIDRawIMU }

func (m *RawIMU) Pack() ([]byte, error) {
	b := make([]byte, 26)
	le.PutUint64(b[0:], m.TimeUsec)
	for i, v := range []int16{m.XAcc, m.YAcc, m.ZAcc, m.XGyro, m.YGyro, m.ZGyro, m.XMag, m.YMag, m.ZMag} {
		le.PutUint16(b[8+2*i:], uint16(v))
	}
	return b, nil
}

func (m *RawIMU) Unpack(p []byte) error {
	if len(p) < 26 {
		return errShort("RAW_IMU", len(p))
	}
	m.TimeUsec = le.Uint64(p[0:])
	m.XAcc = int16(le.Uint16(p[8:]))
	m.YAcc = int16(le.Uint16(p[10:]))
	m.ZAcc = int16(le.Uint16(p[12:]))
	m.XGyro = int16(le.Uint16(p[14:]))
	m.YGyro = int16(le.Uint16(p[16:]))
	m.ZGyro = int16(le.Uint16(p[18:]))
	m.XMag = int16(le.Uint16(p[20:]))
	m.YMag = int16(le.Uint16(p[22:]))
	m.ZMag = int16(le.Uint16(p[24:]))
	return nil
}

// RawPressure carries raw barometer ADC readings.
type RawPressure struct {
	TimeUsec    uint64
	PressAbs    int16
	PressDiff1  int16
	PressDiff2  int16
	Temperature int16
}

func (m *RawPressure) ID() uint8 { return MsgIDRawPressure }

func (m *RawPressure) Pack() ([]byte, error) {
	b := make([]byte, 16)
	le.PutUint64(b[0:], m.TimeUsec)
	le.PutUint16(b[8:], uint16(m.PressAbs))
	le.PutUint16(b[10:], uint16(m.PressDiff1))
	le.PutUint16(b[12:], uint16(m.PressDiff2))
	le.PutUint16(b[14:], uint16(m.Temperature))
	return b, nil
}

func (m *RawPressure) Unpack(p []byte) error {
	if len(p) < 16 {
		return errShort("RAW_PRESSURE", len(p))
	}
	m.TimeUsec = le.Uint64(p[0:])
	m.PressAbs = int16(le.Uint16(p[8:]))
	m.PressDiff1 = int16(le.Uint16(p[10:]))
	m.PressDiff2 = int16(le.Uint16(p[12:]))
	m.Temperature = int16(le.Uint16(p[14:]))
	return nil
}

// ScaledPressure carries calibrated barometer readings.
type ScaledPressure struct {
	TimeBootMs  uint32
	PressAbs    float32 // hPa
	PressDiff   float32 // hPa
	Temperature int16   // centidegrees C
}

func (m *ScaledPressure) ID() uint8 { return MsgIDScaledPressure }

func (m *ScaledPressure) Pack() ([]byte, error) {
	b := make([]byte, 14)
	le.PutUint32(b[0:], m.TimeBootMs)
	putF32(b[4:], m.PressAbs)
	putF32(b[8:], m.PressDiff)
	le.PutUint16(b[12:], uint16(m.Temperature))
	return b, nil
}

func (m *ScaledPressure) Unpack(p []byte) error {
	if len(p) < 14 {
		return errShort("SCALED_PRESSURE", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.PressAbs = f32(p[4:])
	m.PressDiff = f32(p[8:])
	m.Temperature = int16(le.Uint16(p[12:]))
	return nil
}

// Attitude carries the vehicle attitude and body rates in radians.
type Attitude struct {
	TimeBootMs uint32
	Roll       float32
	Pitch      float32
	Yaw        float32
	Rollspeed  float32
	Pitchspeed float32
	Yawspeed   float32
}

func (m *Attitude) ID() uint8 { return MsgIDAttitude }

func (m *Attitude) Pack() ([]byte, error) {
	b := make([]byte, 28)
	le.PutUint32(b[0:], m.TimeBootMs)
	putF32(b[4:], m.Roll)
	putF32(b[8:], m.Pitch)
	putF32(b[12:], m.Yaw)
	putF32(b[16:], m.Rollspeed)
	putF32(b[20:], m.Pitchspeed)
	putF32(b[24:], m.Yawspeed)
	return b, nil
}

func (m *Attitude) Unpack(p []byte) error {
	if len(p) < 28 {
		return errShort("ATTITUDE", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.Roll = f32(p[4:])
	m.Pitch = f32(p[8:])
	m.Yaw = f32(p[12:])
	m.Rollspeed = f32(p[16:])
	m.Pitchspeed = f32(p[20:])
	m.Yawspeed = f32(p[24:])
	return nil
}

// LocalPositionNED is the filtered local position and velocity.
type LocalPositionNED struct {
	TimeBootMs uint32
	X          float32
	Y          float32
	Z          float32
	Vx         float32
	Vy         float32
	Vz         float32
}

func (m *LocalPositionNED) ID() uint8 { return MsgIDLocalPositionNED }

func (m *LocalPositionNED) Pack() ([]byte, error) {
	b := make([]byte, 28)
	le.PutUint32(b[0:], m.TimeBootMs)
	putF32(b[4:], m.X)
	putF32(b[8:], m.Y)
	putF32(b[12:], m.Z)
	putF32(b[16:], m.Vx)
	putF32(b[20:], m.Vy)
	putF32(b[24:], m.Vz)
	return b, nil
}

func (m *LocalPositionNED) Unpack(p []byte) error {
	if len(p) < 28 {
		return errShort("LOCAL_POSITION_NED", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.X = f32(p[4:])
	m.Y = f32(p[8:])
	m.Z = f32(p[12:])
	m.Vx = f32(p[16:])
	m.Vy = f32(p[20:])
	m.Vz = f32(p[24:])
	return nil
}

// GlobalPositionInt is the fused global position, integer-scaled.
type GlobalPositionInt struct {
	TimeBootMs  uint32
	Lat         int32 // degrees * 1e7
	Lon         int32 // degrees * 1e7
	Alt         int32 // millimeters AMSL
	RelativeAlt int32 // millimeters above home
	Vx          int16 // cm/s
	Vy          int16
	Vz          int16
	Hdg         uint16 // centidegrees, 65535 unknown
}

func (m *GlobalPositionInt) ID() uint8 { return MsgIDGlobalPositionInt }

func (m *GlobalPositionInt) Pack() ([]byte, error) {
	b := make([]byte, 28)
	le.PutUint32(b[0:], m.TimeBootMs)
	le.PutUint32(b[4:], uint32(m.Lat))
	le.PutUint32(b[8:], uint32(m.Lon))
	le.PutUint32(b[12:], uint32(m.Alt))
	le.PutUint32(b[16:], uint32(m.RelativeAlt))
	le.PutUint16(b[20:], uint16(m.Vx))
	le.PutUint16(b[22:], uint16(m.Vy))
	le.PutUint16(b[24:], uint16(m.Vz))
	le.PutUint16(b[26:], m.Hdg)
	return b, nil
}

func (m *GlobalPositionInt) Unpack(p []byte) error {
	if len(p) < 28 {
		return errShort("GLOBAL_POSITION_INT", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.Lat = int32(le.Uint32(p[4:]))
	m.Lon = int32(le.Uint32(p[8:]))
	m.Alt = int32(le.Uint32(p[12:]))
	m.RelativeAlt = int32(le.Uint32(p[16:]))
	m.Vx = int16(le.Uint16(p[20:]))
	m.Vy = int16(le.Uint16(p[22:]))
	m.Vz = int16(le.Uint16(p[24:]))
	m.Hdg = le.Uint16(p[26:])
	return nil
}

// RCChannelsScaled carries normalized RC channel values.
type RCChannelsScaled struct {
	TimeBootMs uint32
	Chan1      int16 // -10000..10000
	Chan2      int16
	Chan3      int16
	Chan4      int16
	Chan5      int16
	Chan6      int16
	Chan7      int16
	Chan8      int16
	Port       uint8
	RSSI       uint8
}

func (m *RCChannelsScaled) ID() uint8 { return MsgIDRCChannelsScaled }

func (m *RCChannelsScaled) Pack() ([]byte, error) {
	b := make([]byte, 22)
	le.PutUint32(b[0:], m.TimeBootMs)
	for i, v := range []int16{m.Chan1, m.Chan2, m.Chan3, m.Chan4, m.Chan5, m.Chan6, m.Chan7, m.Chan8} {
		le.PutUint16(b[4+2*i:], uint16(v))
	}
	b[20] = m.Port
	b[21] = m.RSSI
	return b, nil
}

func (m *RCChannelsScaled) Unpack(p []byte) error {
	if len(p) < 22 {
		return errShort("RC_CHANNELS_SCALED", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.Chan1 = int16(le.Uint16(p[4:]))
	m.Chan2 = int16(le.Uint16(p[6:]))
	m.Chan3 = int16(le.Uint16(p[8:]))
	m.Chan4 = int16(le.Uint16(p[10:]))
	m.Chan5 = int16(le.Uint16(p[12:]))
	m.Chan6 = int16(le.Uint16(p[14:]))
	m.Chan7 = int16(le.Uint16(p[16:]))
	m.Chan8 = int16(le.Uint16(p[18:]))
	m.Port = p[20]
	m.RSSI = p[21]
	return nil
}

// RCChannelsRaw carries raw RC channel pulse widths.
type RCChannelsRaw struct {
	TimeBootMs uint32
	Chan1      uint16 // microseconds
	Chan2      uint16
	Chan3      uint16
	Chan4      uint16
	Chan5      uint16
	Chan6      uint16
	Chan7      uint16
	Chan8      uint16
	Port       uint8
	RSSI       uint8
}

func (m *RCChannelsRaw) ID() uint8 { return MsgIDRCChannelsRaw }

func (m *RCChannelsRaw) Pack() ([]byte, error) {
	b := make([]byte, 22)
	le.PutUint32(b[0:], m.TimeBootMs)
	for i, v := range []uint16{m.Chan1, m.Chan2, m.Chan3, m.Chan4, m.Chan5, m.Chan6, m.Chan7, m.Chan8} {
		le.PutUint16(b[4+2*i:], v)
	}
	b[20] = m.Port
	b[21] = m.RSSI
	return b, nil
}

func (m *RCChannelsRaw) Unpack(p []byte) error {
	if len(p) < 22 {
		return errShort("RC_CHANNELS_RAW", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.Chan1 = le.Uint16(p[4:])
	m.Chan2 = le.Uint16(p[6:])
	m.Chan3 = le.Uint16(p[8:])
	m.Chan4 = le.Uint16(p[10:])
	m.Chan5 = le.Uint16(p[12:])
	m.Chan6 = le.Uint16(p[14:])
	m.Chan7 = le.Uint16(p[16:])
	m.Chan8 = le.Uint16(p[18:])
	m.Port = p[20]
	m.RSSI = p[21]
	return nil
}

// ServoOutputRaw carries the servo outputs as pulse widths.
type ServoOutputRaw struct {
	TimeUsec uint32
	Servo1   uint16
	Servo2   uint16
	Servo3   uint16
	Servo4   uint16
	Servo5   uint16
	Servo6   uint16
	Servo7   uint16
	Servo8   uint16
	Port     uint8
}

func (m *ServoOutputRaw) ID() uint8 { return MsgIDServoOutputRaw }

func (m *ServoOutputRaw) Pack() ([]byte, error) {
	b := make([]byte, 21)
	le.PutUint32(b[0:], m.TimeUsec)
	for i, v := range []uint16{m.Servo1, m.Servo2, m.Servo3, m.Servo4, m.Servo5, m.Servo6, m.Servo7, m.Servo8} {
		le.PutUint16(b[4+2*i:], v)
	}
	b[20] = m.Port
	return b, nil
}

func (m *ServoOutputRaw) Unpack(p []byte) error {
	if len(p) < 21 {
		return errShort("SERVO_OUTPUT_RAW", len(p))
	}
	m.TimeUsec = le.Uint32(p[0:])
	m.Servo1 = le.Uint16(p[4:])
	m.Servo2 = le.Uint16(p[6:])
	m.Servo3 = le.Uint16(p[8:])
	m.Servo4 = le.Uint16(p[10:])
	m.Servo5 = le.Uint16(p[12:])
	m.Servo6 = le.Uint16(p[14:])
	m.Servo7 = le.Uint16(p[16:])
	m.Servo8 = le.Uint16(p[18:])
	m.Port = p[20]
	return nil
}

// MissionItemReached announces arrival at a mission waypoint.
type MissionItemReached struct {
	Seq uint16
}

func (m *MissionItemReached) ID() uint8 { return MsgIDMissionItemReached }

func (m *MissionItemReached) Pack() ([]byte, error) {
	b := make([]byte, 2)
	le.PutUint16(b, m.Seq)
	return b, nil
}

func (m *MissionItemReached) Unpack(p []byte) error {
	if len(p) < 2 {
		return errShort("MISSION_ITEM_REACHED", len(p))
	}
	m.Seq = le.Uint16(p)
	return nil
}

// SetGPSGlobalOrigin sets the vehicle's global origin (home position).
type SetGPSGlobalOrigin struct {
	Latitude     int32 // degrees * 1e7
	Longitude    int32 // degrees * 1e7
	Altitude     int32 // millimeters
	TargetSystem uint8
}

func (m *SetGPSGlobalOrigin) ID() uint8 { return MsgIDSetGPSGlobalOrigin }

func (m *SetGPSGlobalOrigin) Pack() ([]byte, error) {
	b := make([]byte, 13)
	le.PutUint32(b[0:], uint32(m.Latitude))
	le.PutUint32(b[4:], uint32(m.Longitude))
	le.PutUint32(b[8:], uint32(m.Altitude))
	b[12] = m.TargetSystem
	return b, nil
}

func (m *SetGPSGlobalOrigin) Unpack(p []byte) error {
	if len(p) < 13 {
		return errShort("SET_GPS_GLOBAL_ORIGIN", len(p))
	}
	m.Latitude = int32(le.Uint32(p[0:]))
	m.Longitude = int32(le.Uint32(p[4:]))
	m.Altitude = int32(le.Uint32(p[8:]))
	m.TargetSystem = p[12]
	return nil
}

// NavControllerOutput carries navigation controller tracking errors.
type NavControllerOutput struct {
	NavRoll       float32
	NavPitch      float32
	AltError      float32
	AspdError     float32
	XtrackError   float32
	NavBearing    int16
	TargetBearing int16
	WpDist        uint16
}

func (m *NavControllerOutput) ID() uint8 { return MsgIDNavControllerOutput }

func (m *NavControllerOutput) Pack() ([]byte, error) {
	b := make([]byte, 26)
	putF32(b[0:], m.NavRoll)
	putF32(b[4:], m.NavPitch)
	putF32(b[8:], m.AltError)
	putF32(b[12:], m.AspdError)
	putF32(b[16:], m.XtrackError)
	le.PutUint16(b[20:], uint16(m.NavBearing))
	le.PutUint16(b[22:], uint16(m.TargetBearing))
	le.PutUint16(b[24:], m.WpDist)
	return b, nil
}

func (m *NavControllerOutput) Unpack(p []byte) error {
	if len(p) < 26 {
		return errShort("NAV_CONTROLLER_OUTPUT", len(p))
	}
	m.NavRoll = f32(p[0:])
	m.NavPitch = f32(p[4:])
	m.AltError = f32(p[8:])
	m.AspdError = f32(p[12:])
	m.XtrackError = f32(p[16:])
	m.NavBearing = int16(le.Uint16(p[20:]))
	m.TargetBearing = int16(le.Uint16(p[22:]))
	m.WpDist = le.Uint16(p[24:])
	return nil
}

// RequestDataStream asks the vehicle to start or stop a telemetry stream.
type RequestDataStream struct {
	ReqMessageRate  uint16 // Hz
	TargetSystem    uint8
	TargetComponent uint8
	ReqStreamID     uint8
	StartStop       uint8
}

func (m *RequestDataStream) ID() uint8 { return MsgIDRequestDataStream }

func (m *RequestDataStream) Pack() ([]byte, error) {
	b := make([]byte, 6)
	le.PutUint16(b[0:], m.ReqMessageRate)
	b[2] = m.TargetSystem
	b[3] = m.TargetComponent
	b[4] = m.ReqStreamID
	b[5] = m.StartStop
	return b, nil
}

func (m *RequestDataStream) Unpack(p []byte) error {
	if len(p) < 6 {
		return errShort("REQUEST_DATA_STREAM", len(p))
	}
	m.ReqMessageRate = le.Uint16(p[0:])
	m.TargetSystem = p[2]
	m.TargetComponent = p[3]
	m.ReqStreamID = p[4]
	m.StartStop = p[5]
	return nil
}

// VFRHud carries the head-up display values.
type VFRHud struct {
	Airspeed    float32 // m/s
	Groundspeed float32 // m/s
	Alt         float32 // meters AMSL
	Climb       float32 // m/s
	Heading     int16   // degrees 0..360
	Throttle    uint16  // percent
}

func (m *VFRHud) ID() uint8 { return MsgIDVFRHud }

func (m *VFRHud) Pack() ([]byte, error) {
	b := make([]byte, 20)
	putF32(b[0:], m.Airspeed)
	putF32(b[4:], m.Groundspeed)
	putF32(b[8:], m.Alt)
	putF32(b[12:], m.Climb)
	le.PutUint16(b[16:], uint16(m.Heading))
	le.PutUint16(b[18:], m.Throttle)
	return b, nil
}

func (m *VFRHud) Unpack(p []byte) error {
	if len(p) < 20 {
		return errShort("VFR_HUD", len(p))
	}
	m.Airspeed = f32(p[0:])
	m.Groundspeed = f32(p[4:])
	m.Alt = f32(p[8:])
	m.Climb = f32(p[12:])
	m.Heading = int16(le.Uint16(p[16:]))
	m.Throttle = le.Uint16(p[18:])
	return nil
}

// CommandLong carries a command with up to seven float parameters.
type CommandLong struct {
	Param1          float32
	Param2          float32
	Param3          float32
	Param4          float32
	Param5          float32
	Param6          float32
	Param7          float32
	Command         uint16
	TargetSystem    uint8
	TargetComponent uint8
	Confirmation    uint8
}

func (m *CommandLong) ID() uint8 { return MsgIDCommandLong }

func (m *CommandLong) Pack() ([]byte, error) {
	b := make([]byte, 33)
	putF32(b[0:], m.Param1)
	putF32(b[4:], m.Param2)
	putF32(b[8:], m.Param3)
	putF32(b[12:], m.Param4)
	putF32(b[16:], m.Param5)
	putF32(b[20:], m.Param6)
	putF32(b[24:], m.Param7)
	le.PutUint16(b[28:], m.Command)
	b[30] = m.TargetSystem
	b[31] = m.TargetComponent
	b[32] = m.Confirmation
	return b, nil
}

func (m *CommandLong) Unpack(p []byte) error {
	if len(p) < 33 {
		return errShort("COMMAND_LONG", len(p))
	}
	m.Param1 = f32(p[0:])
	m.Param2 = f32(p[4:])
	m.Param3 = f32(p[8:])
	m.Param4 = f32(p[12:])
	m.Param5 = f32(p[16:])
	m.Param6 = f32(p[20:])
	m.Param7 = f32(p[24:])
	m.Command = le.Uint16(p[28:])
	m.TargetSystem = p[30]
	m.TargetComponent = p[31]
	m.Confirmation = p[32]
	return nil
}

// CommandAck reports acceptance or rejection of a command.
type CommandAck struct {
	Command uint16
	Result  uint8
}

func (m *CommandAck) ID() uint8 { return MsgIDCommandAck }

func (m *CommandAck) Pack() ([]byte, error) {
	b := make([]byte, 3)
	le.PutUint16(b[0:], m.Command)
	b[2] = m.Result
	return b, nil
}

func (m *CommandAck) Unpack(p []byte) error {
	if len(p) < 3 {
		return errShort("COMMAND_ACK", len(p))
	}
	m.Command = le.Uint16(p[0:])
	m.Result = p[2]
	return nil
}

// SetPositionTargetLocalNED commands a local-frame position setpoint.
type SetPositionTargetLocalNED struct {
	TimeBootMs      uint32
	X               float32
	Y               float32
	Z               float32
	Vx              float32
	Vy              float32
	Vz              float32
	Afx             float32
	Afy             float32
	Afz             float32
	Yaw             float32
	YawRate         float32
	TypeMask        uint16
	TargetSystem    uint8
	TargetComponent uint8
	CoordinateFrame uint8
}

func (m *SetPositionTargetLocalNED) ID() uint8 { return MsgIDSetPositionTargetLocalNED }

func (m *SetPositionTargetLocalNED) Pack() ([]byte, error) {
	b := make([]byte, 53)
	le.PutUint32(b[0:], m.TimeBootMs)
	for i, v := range []float32{m.X, m.Y, m.Z, m.Vx, m.Vy, m.Vz, m.Afx, m.Afy, m.Afz, m.Yaw, m.YawRate} {
		putF32(b[4+4*i:], v)
	}
	le.PutUint16(b[48:], m.TypeMask)
	b[50] = m.TargetSystem
	b[51] = m.TargetComponent
	b[52] = m.CoordinateFrame
	return b, nil
}

func (m *SetPositionTargetLocalNED) Unpack(p []byte) error {
	if len(p) < 53 {
		return errShort("SET_POSITION_TARGET_LOCAL_NED", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.X = f32(p[4:])
	m.Y = f32(p[8:])
	m.Z = f32(p[12:])
	m.Vx = f32(p[16:])
	m.Vy = f32(p[20:])
	m.Vz = f32(p[24:])
	m.Afx = f32(p[28:])
	m.Afy = f32(p[32:])
	m.Afz = f32(p[36:])
	m.Yaw = f32(p[40:])
	m.YawRate = f32(p[44:])
	m.TypeMask = le.Uint16(p[48:])
	m.TargetSystem = p[50]
	m.TargetComponent = p[51]
	m.CoordinateFrame = p[52]
	return nil
}

// DebugVect is a named 3-vector for onboard debugging.
type DebugVect struct {
	TimeUsec uint64
	X        float32
	Y        float32
	Z        float32
	NameRaw  [10]byte
}

func (m *DebugVect) ID() uint8 { return MsgIDDebugVect }

// VectName returns the vector name as a string.
func (m *DebugVect) VectName() string { return cstr(m.NameRaw[:]) }

// SetVectName sets the vector name, truncated to the wire field size.
func (m *DebugVect) SetVectName(s string) { setCstr(m.NameRaw[:], s) }

func (m *DebugVect) Pack() ([]byte, error) {
	b := make([]byte, 30)
	le.PutUint64(b[0:], m.TimeUsec)
	putF32(b[8:], m.X)
	putF32(b[12:], m.Y)
	putF32(b[16:], m.Z)
	copy(b[20:30], m.NameRaw[:])
	return b, nil
}

func (m *DebugVect) Unpack(p []byte) error {
	if len(p) < 30 {
		return errShort("DEBUG_VECT", len(p))
	}
	m.TimeUsec = le.Uint64(p[0:])
	m.X = f32(p[8:])
	m.Y = f32(p[12:])
	m.Z = f32(p[16:])
	copy(m.NameRaw[:], p[20:30])
	return nil
}

// Statustext is a severity-tagged status message from the vehicle.
type Statustext struct {
	Severity uint8
	TextRaw  [50]byte
}

func (m *Statustext) ID() uint8 { return MsgIDStatustext }

// Text returns the status text up to the first NUL.
func (m *Statustext) Text() string { return cstr(m.TextRaw[:]) }

// SetText sets the status text, truncated to the wire field size.
func (m *Statustext) SetText(s string) { setCstr(m.TextRaw[:], s) }

func (m *Statustext) Pack() ([]byte, error) {
	b := make([]byte, 51)
	b[0] = m.Severity
	copy(b[1:51], m.TextRaw[:])
	return b, nil
}

func (m *Statustext) Unpack(p []byte) error {
	if len(p) < 51 {
		return errShort("STATUSTEXT", len(p))
	}
	m.Severity = p[0]
	copy(m.TextRaw[:], p[1:51])
	return nil
}

// NamedValueFloat carries one named float for debugging and plotting.
type NamedValueFloat struct {
	TimeBootMs uint32
	Value      float32
	NameRaw    [10]byte
}

func (m *NamedValueFloat) ID() uint8 { return MsgIDNamedValueFloat }

// Name returns the value name up to the first NUL.
func (m *NamedValueFloat) Name() string { return cstr(m.NameRaw[:]) }

// SetName sets the value name, truncated to the wire field size.
func (m *NamedValueFloat) SetName(s string) { setCstr(m.NameRaw[:], s) }

func (m *NamedValueFloat) Pack() ([]byte, error) {
	b := make([]byte, 18)
	le.PutUint32(b[0:], m.TimeBootMs)
	putF32(b[4:], m.Value)
	copy(b[8:18], m.NameRaw[:])
	return b, nil
}

func (m *NamedValueFloat) Unpack(p []byte) error {
	if len(p) < 18 {
		return errShort("NAMED_VALUE_FLOAT", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.Value = f32(p[4:])
	copy(m.NameRaw[:], p[8:18])
	return nil
}

// NamedValueInt carries one named integer for debugging and plotting.
type NamedValueInt struct {
	TimeBootMs uint32
	Value      int32
	NameRaw    [10]byte
}

func (m *NamedValueInt) ID() uint8 { return MsgIDNamedValueInt }

// Name returns the value name up to the first NUL.
func (m *NamedValueInt) Name() string { return cstr(m.NameRaw[:]) }

// SetName sets the value name, truncated to the wire field size.
func (m *NamedValueInt) SetName(s string) { setCstr(m.NameRaw[:], s) }

func (m *NamedValueInt) Pack() ([]byte, error) {
	b := make([]byte, 18)
	le.PutUint32(b[0:], m.TimeBootMs)
	le.PutUint32(b[4:], uint32(m.Value))
	copy(b[8:18], m.NameRaw[:])
	return b, nil
}

func (m *NamedValueInt) Unpack(p []byte) error {
	if len(p) < 18 {
		return errShort("NAMED_VALUE_INT", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.Value = int32(le.Uint32(p[4:]))
	copy(m.NameRaw[:], p[8:18])
	return nil
}

// Debug carries one indexed debug value.
type Debug struct {
	TimeBootMs uint32
	Value      float32
	Ind        uint8
}

func (m *Debug) ID() uint8 { return MsgIDDebug }

func (m *Debug) Pack() ([]byte, error) {
	b := make([]byte, 9)
	le.PutUint32(b[0:], m.TimeBootMs)
	putF32(b[4:], m.Value)
	b[8] = m.Ind
	return b, nil
}

func (m *Debug) Unpack(p []byte) error {
	if len(p) < 9 {
		return errShort("DEBUG", len(p))
	}
	m.TimeBootMs = le.Uint32(p[0:])
	m.Value = f32(p[4:])
	m.Ind = p[8]
	return nil
}

// GPSGlobalOrigin announces the vehicle's local-frame origin.
type GPSGlobalOrigin struct {
	Latitude  int32 // degrees * 1e7
	Longitude int32 // degrees * 1e7
	Altitude  int32 // millimeters
}

func (m *GPSGlobalOrigin) ID() uint8 { return MsgIDGPSGlobalOrigin }

func (m *GPSGlobalOrigin) Pack() ([]byte, error) {
	b := make([]byte, 12)
	le.PutUint32(b[0:], uint32(m.Latitude))
	le.PutUint32(b[4:], uint32(m.Longitude))
	le.PutUint32(b[8:], uint32(m.Altitude))
	return b, nil
}

func (m *GPSGlobalOrigin) Unpack(p []byte) error {
	if len(p) < 12 {
		return errShort("GPS_GLOBAL_ORIGIN", len(p))
	}
	m.Latitude = int32(le.Uint32(p[0:]))
	m.Longitude = int32(le.Uint32(p[4:]))
	m.Altitude = int32(le.Uint32(p[8:]))
	return nil
}

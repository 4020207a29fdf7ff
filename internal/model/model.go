package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&StationInfo{},
	&Session{},
	&Telemetry{},
	&FlightEvent{},
	&RawFrame{},
	&ParamValue{},
	&StationPerformance{},
}

var DatabaseModelsSQLite = []interface{}{
	&StationInfo{},
	&Session{},
	&Telemetry{},
	&FlightEvent{},
	&RawFrame{},
	&ParamValue{},
	&StationPerformance{},
}

////////////////////////
// STATION MODELS
////////////////////////

// StationInfo identifies this ground station install
type StationInfo struct {
	gorm.Model
	StationName string `json:"stationName" gorm:"size:127"`
	Description string `json:"description" gorm:"size:255"`
	Serial      string `json:"serial" gorm:"size:64"`
	FrontendURL string `json:"frontendUrl" gorm:"size:255"`
}

func (*StationInfo) TableName() string {
	return "station_infos"
}

func (s *StationInfo) GetOrInsert(db *gorm.DB) (
	created bool,
	err error,
) {
	var existing StationInfo
	err = db.Where("serial = ?", s.Serial).First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// insert
			err = db.Create(s).Error
			return true, err
		}
		return false, err
	}
	// overwrite with db record if found
	*s = existing
	return false, nil
}

// StationPerformance is the model for recorder performance metrics
type StationPerformance struct {
	Time                time.Time         `json:"time" gorm:"type:timestamptz;index:idx_time"`
	SessionID           uint              `json:"sessionId" gorm:"index:idx_stationperformance_session_id"`
	Session             Session           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	BufferLengths       BufferLengths     `json:"bufferLengths" gorm:"embedded;embeddedPrefix:buffer_"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*StationPerformance) TableName() string {
	return "station_performances"
}

// BufferLengths is the model for the recorder-side buffer lengths
type BufferLengths struct {
	Telemetry    uint16 `json:"telemetry"`
	FlightEvents uint16 `json:"flightEvents"`
	RawFrames    uint16 `json:"rawFrames"`
	ParamValues  uint16 `json:"paramValues"`
}

// WriteQueueLengths is the model for the backend write queue lengths
type WriteQueueLengths struct {
	Telemetry    uint16 `json:"telemetry"`
	FlightEvents uint16 `json:"flightEvents"`
	RawFrames    uint16 `json:"rawFrames"`
	ParamValues  uint16 `json:"paramValues"`
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Session is the main model for a recording session
type Session struct {
	gorm.Model
	SessionUID        string       `json:"sessionUid" gorm:"size:64;uniqueIndex:idx_session_uid"`
	Station           string       `json:"station" gorm:"size:64"`
	Name              string       `json:"name" gorm:"size:200"`
	StartTime         time.Time    `json:"startTime" gorm:"type:timestamptz;index:idx_session_start"`
	EndTime           sql.NullTime `json:"endTime" gorm:"type:timestamptz;default:NULL"`
	PilotEmail        string       `json:"pilotEmail" gorm:"size:127"`
	PilotRegistration string       `json:"pilotRegistration" gorm:"size:64"`
	Tag               string       `json:"tag" gorm:"size:127"`

	Telemetry    []Telemetry
	FlightEvents []FlightEvent
	RawFrames    []RawFrame
	ParamValues  []ParamValue
}

func (*Session) TableName() string {
	return "sessions"
}

// Telemetry is one periodic vehicle state row
//
// Sourced from GLOBAL_POSITION_INT, ATTITUDE, VFR_HUD, GPS_RAW_INT and
// SYS_STATUS, merged at the time of the position fix.
type Telemetry struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time" gorm:"type:timestamptz;index:idx_telemetry_time"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_telemetry_session_id"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	SystemID  uint8     `json:"systemId" gorm:"index:idx_telemetry_system_id"`

	Position         geom.Point `json:"position"`         // WGS84 lon/lat/alt
	PositionMercator geom.Point `json:"positionMercator"` // EPSG 3857, for map tiling
	RelativeAlt      float32    `json:"relativeAlt"`      // Meters above home
	VelocityX        float32    `json:"vx"`               // NED m/s
	VelocityY        float32    `json:"vy"`
	VelocityZ        float32    `json:"vz"`
	Roll             float32    `json:"roll"` // Radians
	Pitch            float32    `json:"pitch"`
	Yaw              float32    `json:"yaw"`
	HeadingDeg       float32    `json:"headingDeg"` // 0-360 degrees

	Battery BatteryReadout `json:"battery" gorm:"embedded;embeddedPrefix:battery_"`

	GPSFix     uint8 `json:"gpsFix" gorm:"default:0"` // GPS_FIX_TYPE enum value
	Satellites uint8 `json:"satellites" gorm:"default:0"`

	Airspeed    float32 `json:"airspeed"` // m/s
	Groundspeed float32 `json:"groundspeed"`
	Throttle    float32 `json:"throttle"` // Percent
	Climb       float32 `json:"climb"`    // m/s, negative when descending
}

func (*Telemetry) TableName() string {
	return "telemetry_samples"
}

// BatteryReadout stores the filtered battery estimate
type BatteryReadout struct {
	Voltage       float32 `json:"voltage"`       // Volts, low-pass filtered
	Current       float32 `json:"current"`       // Amps, negative when unknown
	ChargeLevel   float32 `json:"chargeLevel"`   // Percent
	TimeRemaining float32 `json:"timeRemaining"` // Seconds
	Low           bool    `json:"low" gorm:"default:false"`
}

// FlightEvent is a discrete occurrence during a session: mode changes,
// state transitions, alarms, operator commands, status texts
type FlightEvent struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time      `json:"time" gorm:"type:timestamptz;"`
	SessionID uint           `json:"sessionId" gorm:"index:idx_flightevent_session_id"`
	Session   Session        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	SystemID  uint8          `json:"systemId" gorm:"index:idx_flightevent_system_id"`
	Name      string         `json:"name" gorm:"size:64;index:idx_flightevent_name"`
	Message   string         `json:"message"`
	ExtraData datatypes.JSON `json:"extraData" gorm:"type:jsonb;default:'{}'"`
}

func (*FlightEvent) TableName() string {
	return "flight_events"
}

// RawFrame preserves an undecoded frame payload for later replay
type RawFrame struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time      `json:"time" gorm:"type:timestamptz;"`
	SessionID uint           `json:"sessionId" gorm:"index:idx_rawframe_session_id"`
	Session   Session        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	SystemID  uint8          `json:"systemId"`
	MsgID     uint8          `json:"msgId" gorm:"index:idx_rawframe_msg_id"`
	Payload   datatypes.JSON `json:"payload"` // Base64 of the wire payload
}

func (*RawFrame) TableName() string {
	return "raw_frames"
}

// ParamValue is one onboard parameter reading
//
// Param ids are at most 16 chars on the wire.
type ParamValue struct {
	ID          uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time        time.Time `json:"time" gorm:"type:timestamptz;"`
	SessionID   uint      `json:"sessionId" gorm:"index:idx_paramvalue_session_id"`
	Session     Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	SystemID    uint8     `json:"systemId" gorm:"index:idx_paramvalue_system_id"`
	ComponentID uint8     `json:"componentId"`
	Name        string    `json:"name" gorm:"size:16;index:idx_paramvalue_name"`
	Value       float32   `json:"value"`
	ParamIndex  uint16    `json:"paramIndex"`
	ParamCount  uint16    `json:"paramCount"`
}

func (*ParamValue) TableName() string {
	return "param_values"
}

package wire

// System status values carried in HEARTBEAT.
const (
	StateUninit      uint8 = 0
	StateBoot        uint8 = 1
	StateCalibrating uint8 = 2
	StateStandby     uint8 = 3
	StateActive      uint8 = 4
	StateCritical    uint8 = 5
	StateEmergency   uint8 = 6
	StatePoweroff    uint8 = 7
)

// Base-mode flag bits.
const (
	ModeFlagCustomModeEnabled uint8 = 1
	ModeFlagTestEnabled       uint8 = 2
	ModeFlagAutoEnabled       uint8 = 4
	ModeFlagGuidedEnabled     uint8 = 8
	ModeFlagStabilizeEnabled  uint8 = 16
	ModeFlagHILEnabled        uint8 = 32
	ModeFlagManualInput       uint8 = 64
	ModeFlagSafetyArmed       uint8 = 128
)

// Vehicle types.
const (
	TypeGeneric    uint8 = 0
	TypeFixedWing  uint8 = 1
	TypeQuadrotor  uint8 = 2
	TypeCoaxial    uint8 = 3
	TypeHelicopter uint8 = 4
	TypeGCS        uint8 = 6
	TypeHexarotor  uint8 = 13
	TypeOctorotor  uint8 = 14
)

// Autopilot types.
const (
	AutopilotGeneric       uint8 = 0
	AutopilotPixhawk       uint8 = 1
	AutopilotArdupilotMega uint8 = 3
	AutopilotPX4           uint8 = 12
	AutopilotInvalid       uint8 = 8
)

// Commands carried in COMMAND_LONG.
const (
	CmdDoSetHome             uint16 = 179
	CmdDoSetServo            uint16 = 183
	CmdDoDigicamControl      uint16 = 203
	CmdDoMountControl        uint16 = 205
	CmdPreflightCalibration  uint16 = 241
	CmdPreflightStorage      uint16 = 245
	CmdComponentArmDisarm    uint16 = 400
	CmdSetCameraMode         uint16 = 530
	CmdSetCameraZoom         uint16 = 531
	CmdImageStartCapture     uint16 = 2000
	CmdVideoStartCapture     uint16 = 2500
	CmdVideoStopCapture      uint16 = 2501
)

// Data stream ids for REQUEST_DATA_STREAM. Stream 0 is the magic "all
// standard messages except heartbeat" selector.
const (
	DataStreamAll            uint8 = 0
	DataStreamRawSensors     uint8 = 1
	DataStreamExtendedStatus uint8 = 2
	DataStreamRCChannels     uint8 = 3
	DataStreamRawController  uint8 = 4
	DataStreamPosition       uint8 = 6
	DataStreamExtra1         uint8 = 10
	DataStreamExtra2         uint8 = 11
	DataStreamExtra3         uint8 = 12
)

// Command ack results.
const (
	ResultAccepted            uint8 = 0
	ResultTemporarilyRejected uint8 = 1
	ResultDenied              uint8 = 2
	ResultUnsupported         uint8 = 3
	ResultFailed              uint8 = 4
)

// Well-known component ids.
const (
	CompIDAll            uint8 = 0
	CompIDCamera         uint8 = 100
	CompIDMissionPlanner uint8 = 190
	CompIDIMU            uint8 = 200
	CompIDGimbal         uint8 = 154
)

// Statustext severities, RFC 5424 ordering.
const (
	SeverityEmergency uint8 = 0
	SeverityAlert     uint8 = 1
	SeverityCritical  uint8 = 2
	SeverityError     uint8 = 3
	SeverityWarning   uint8 = 4
	SeverityNotice    uint8 = 5
	SeverityInfo      uint8 = 6
	SeverityDebug     uint8 = 7
)

// GPS fix types from GPS_RAW_INT.
const (
	FixNone uint8 = 1
	Fix2D   uint8 = 2
	Fix3D   uint8 = 3
)

// Coordinate frames.
const (
	FrameGlobal            uint8 = 0
	FrameLocalNED          uint8 = 1
	FrameMission           uint8 = 2
	FrameGlobalRelativeAlt uint8 = 3
)

// Camera modes for SET_CAMERA_MODE.
const (
	CameraModeImage uint8 = 0
	CameraModeVideo uint8 = 1
)

// Mount mode for DO_MOUNT_CONTROL.
const MountModeMavlinkTargeting = 2

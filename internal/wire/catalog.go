package wire

// Message ids in the supported catalog.
const (
	MsgIDHeartbeat                 uint8 = 0
	MsgIDSysStatus                 uint8 = 1
	MsgIDSystemTime                uint8 = 2
	MsgIDPing                      uint8 = 4
	MsgIDSetMode                   uint8 = 11
	MsgIDParamRequestRead          uint8 = 20
	MsgIDParamRequestList          uint8 = 21
	MsgIDParamValue                uint8 = 22
	MsgIDParamSet                  uint8 = 23
	MsgIDGPSRawInt                 uint8 = 24
	MsgIDGPSStatus                 uint8 = 25
	MsgIDScaledIMU                 uint8 = 26
	MsgIDRawIMU                    uint8 = 27
	MsgIDRawPressure               uint8 = 28
	MsgIDScaledPressure            uint8 = 29
	MsgIDAttitude                  uint8 = 30
	MsgIDAttitudeQuaternion        uint8 = 31
	MsgIDLocalPositionNED          uint8 = 32
	MsgIDGlobalPositionInt         uint8 = 33
	MsgIDRCChannelsScaled          uint8 = 34
	MsgIDRCChannelsRaw             uint8 = 35
	MsgIDServoOutputRaw            uint8 = 36
	MsgIDMissionCurrent            uint8 = 42
	MsgIDMissionItemReached        uint8 = 46
	MsgIDSetGPSGlobalOrigin        uint8 = 48
	MsgIDGPSGlobalOrigin           uint8 = 49
	MsgIDNavControllerOutput       uint8 = 62
	MsgIDRequestDataStream         uint8 = 66
	MsgIDDataStream                uint8 = 67
	MsgIDManualControl             uint8 = 69
	MsgIDRCChannelsOverride        uint8 = 70
	MsgIDVFRHud                    uint8 = 74
	MsgIDCommandLong               uint8 = 76
	MsgIDCommandAck                uint8 = 77
	MsgIDSetPositionTargetLocalNED uint8 = 84
	MsgIDBatteryStatus             uint8 = 147
	MsgIDAutopilotVersion          uint8 = 148
	MsgIDVibration                 uint8 = 241
	MsgIDHomePosition              uint8 = 242
	MsgIDExtendedSysState          uint8 = 245
	MsgIDDebugVect                 uint8 = 250
	MsgIDNamedValueFloat           uint8 = 251
	MsgIDNamedValueInt             uint8 = 252
	MsgIDStatustext                uint8 = 253
	MsgIDDebug                     uint8 = 254
)

// Info describes one catalog entry: the wire name, the fixed payload
// length, and the checksum seed byte for the message id.
type Info struct {
	Name string
	Len  uint8
	Seed uint8
}

// Catalog is the fixed message-type catalog. Ids outside it cannot be
// checksum-verified and are rejected at the decoder.
var Catalog = map[uint8]Info{
	MsgIDHeartbeat:                 {"HEARTBEAT", 9, 50},
	MsgIDSysStatus:                 {"SYS_STATUS", 31, 124},
	MsgIDSystemTime:                {"SYSTEM_TIME", 12, 137},
	MsgIDPing:                      {"PING", 14, 237},
	MsgIDSetMode:                   {"SET_MODE", 6, 89},
	MsgIDParamRequestRead:          {"PARAM_REQUEST_READ", 20, 214},
	MsgIDParamRequestList:          {"PARAM_REQUEST_LIST", 2, 159},
	MsgIDParamValue:                {"PARAM_VALUE", 25, 220},
	MsgIDParamSet:                  {"PARAM_SET", 23, 168},
	MsgIDGPSRawInt:                 {"GPS_RAW_INT", 30, 24},
	MsgIDGPSStatus:                 {"GPS_STATUS", 101, 23},
	MsgIDScaledIMU:                 {"SCALED_IMU", 22, 170},
	MsgIDRawIMU:                    {"RAW_IMU", 26, 144},
	MsgIDRawPressure:               {"RAW_PRESSURE", 16, 67},
	MsgIDScaledPressure:            {"SCALED_PRESSURE", 14, 115},
	MsgIDAttitude:                  {"ATTITUDE", 28, 39},
	MsgIDAttitudeQuaternion:        {"ATTITUDE_QUATERNION", 32, 246},
	MsgIDLocalPositionNED:          {"LOCAL_POSITION_NED", 28, 185},
	MsgIDGlobalPositionInt:         {"GLOBAL_POSITION_INT", 28, 104},
	MsgIDRCChannelsScaled:          {"RC_CHANNELS_SCALED", 22, 237},
	MsgIDRCChannelsRaw:             {"RC_CHANNELS_RAW", 22, 244},
	MsgIDServoOutputRaw:            {"SERVO_OUTPUT_RAW", 21, 222},
	MsgIDMissionCurrent:            {"MISSION_CURRENT", 2, 28},
	MsgIDMissionItemReached:        {"MISSION_ITEM_REACHED", 2, 11},
	MsgIDSetGPSGlobalOrigin:        {"SET_GPS_GLOBAL_ORIGIN", 13, 41},
	MsgIDGPSGlobalOrigin:           {"GPS_GLOBAL_ORIGIN", 12, 39},
	MsgIDNavControllerOutput:       {"NAV_CONTROLLER_OUTPUT", 26, 183},
	MsgIDRequestDataStream:         {"REQUEST_DATA_STREAM", 6, 148},
	MsgIDDataStream:                {"DATA_STREAM", 4, 21},
	MsgIDManualControl:             {"MANUAL_CONTROL", 11, 243},
	MsgIDRCChannelsOverride:        {"RC_CHANNELS_OVERRIDE", 18, 124},
	MsgIDVFRHud:                    {"VFR_HUD", 20, 20},
	MsgIDCommandLong:               {"COMMAND_LONG", 33, 152},
	MsgIDCommandAck:                {"COMMAND_ACK", 3, 143},
	MsgIDSetPositionTargetLocalNED: {"SET_POSITION_TARGET_LOCAL_NED", 53, 143},
	MsgIDBatteryStatus:             {"BATTERY_STATUS", 36, 154},
	MsgIDAutopilotVersion:          {"AUTOPILOT_VERSION", 60, 178},
	MsgIDVibration:                 {"VIBRATION", 32, 90},
	MsgIDHomePosition:              {"HOME_POSITION", 52, 104},
	MsgIDExtendedSysState:          {"EXTENDED_SYS_STATE", 2, 130},
	MsgIDDebugVect:                 {"DEBUG_VECT", 30, 49},
	MsgIDNamedValueFloat:           {"NAMED_VALUE_FLOAT", 18, 170},
	MsgIDNamedValueInt:             {"NAMED_VALUE_INT", 18, 44},
	MsgIDStatustext:                {"STATUSTEXT", 51, 83},
	MsgIDDebug:                     {"DEBUG", 9, 46},
}

package vehicle

import "github.com/antonymarion/forkQGroundControl/internal/wire"

// statusName maps a HEARTBEAT system status to its display name.
func statusName(status uint8) string {
	switch status {
	case wire.StateUninit:
		return "UNINIT"
	case wire.StateBoot:
		return "BOOT"
	case wire.StateCalibrating:
		return "CALIBRATING"
	case wire.StateStandby:
		return "STANDBY"
	case wire.StateActive:
		return "ACTIVE"
	case wire.StateCritical:
		return "CRITICAL"
	case wire.StateEmergency:
		return "EMERGENCY"
	case wire.StatePoweroff:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// statusDescription maps a system status to the operator-facing detail
// line.
func statusDescription(status uint8) string {
	switch status {
	case wire.StateUninit:
		return "Uninitialized, booting up."
	case wire.StateBoot:
		return "Booting system, please wait."
	case wire.StateCalibrating:
		return "Calibrating sensors, please wait."
	case wire.StateStandby:
		return "Standby mode, ready for liftoff."
	case wire.StateActive:
		return "Active, normal operation."
	case wire.StateCritical:
		return "FAILURE: Continuing operation."
	case wire.StateEmergency:
		return "EMERGENCY: Land Immediately!"
	case wire.StatePoweroff:
		return "Powering off system."
	default:
		return "Unknown system state"
	}
}

// modeName renders a base-mode bitfield as a short display name. Auto
// implies guided implies stabilized, so the strongest flag wins.
func modeName(mode uint8) string {
	switch {
	case mode == 0:
		return "PREFLIGHT"
	case mode&wire.ModeFlagAutoEnabled != 0:
		return "AUTO"
	case mode&wire.ModeFlagGuidedEnabled != 0:
		return "GUIDED"
	case mode&wire.ModeFlagStabilizeEnabled != 0:
		return "STABILIZED"
	case mode&wire.ModeFlagTestEnabled != 0:
		return "TEST"
	case mode&wire.ModeFlagManualInput != 0:
		return "MANUAL"
	default:
		return "UNKNOWN"
	}
}

// Autopilot-specific custom-mode names. Unknown values render as
// UNKNOWN rather than a number so narration stays speakable.
var navModeNames = map[uint32]string{
	0:  "PREFLIGHT",
	1:  "MANUAL",
	2:  "TAKEOFF",
	3:  "HOLDING",
	4:  "MISSION",
	5:  "VECTOR",
	6:  "RETURNING",
	7:  "LANDING",
	8:  "LOST",
	9:  "S: RATE/ACRO",
	10: "S: LEVELING",
	11: "S: R/P ABS",
	12: "S: R/Y ALT",
	13: "S: R/P/Y ALT",
	14: "S: CURSOR",
}

func navModeName(mode uint32) string {
	if name, ok := navModeNames[mode]; ok {
		return name
	}
	return "UNKNOWN"
}

package vehicle

import (
	"strconv"
	"strings"

	"github.com/antonymarion/forkQGroundControl/internal/notify"
)

// filterVoltage low-passes a raw pack sample. The coefficients are
// fixed; every level and alarm decision runs on the filtered value.
func (v *Vehicle) filterVoltage(value float64) float64 {
	return v.lpVoltage*0.7 + value*0.3
}

// calcTimeRemaining estimates seconds of flight left from the discharge
// rate observed since startup.
func (v *Vehicle) calcTimeRemaining() float64 {
	seconds := v.now().Sub(v.startTime).Seconds()
	voltDiff := v.startVoltage - v.currentVoltage
	if voltDiff <= 0 {
		voltDiff = 1e-11
	}
	remaining := (v.currentVoltage - v.emptyVoltage) / (voltDiff / seconds)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// chargeLevelLocked returns the charge estimate in percent. With the
// voltage estimate enabled the level is recomputed from the filtered
// voltage against the pack thresholds; otherwise the last reported
// percentage stands.
func (v *Vehicle) chargeLevelLocked() float64 {
	if v.estimateEnabled {
		switch {
		case v.lpVoltage < v.emptyVoltage:
			v.chargeLevel = 0
		case v.lpVoltage > v.fullVoltage:
			v.chargeLevel = 100
		default:
			v.chargeLevel = 100 * (v.lpVoltage - v.emptyVoltage) / (v.fullVoltage - v.emptyVoltage)
		}
	}
	return v.chargeLevel
}

// startLowBattAlarm raises the alarm once per downward crossing of the
// warn threshold.
func (v *Vehicle) startLowBattAlarm() {
	if v.lowBattAlarm {
		return
	}
	v.lowBattAlarm = true
	v.audio.Alert("SYSTEM " + v.Name() + " HAS LOW BATTERY")
	v.audio.StartEmergency()
	v.events.Publish(notify.LowBattery{SystemID: v.systemID, Voltage: v.lpVoltage})
}

func (v *Vehicle) stopLowBattAlarm() {
	if !v.lowBattAlarm {
		return
	}
	v.lowBattAlarm = false
	v.audio.StopEmergency()
}

func (v *Vehicle) setBatteryCellsLocked(cells int) {
	v.batteryCells = cells
	v.fullVoltage = float64(cells) * lipoFullVolts
	v.emptyVoltage = float64(cells) * lipoEmptyVolts
}

// SetBatteryCells derives the pack thresholds from a lithium-polymer
// cell count.
func (v *Vehicle) SetBatteryCells(cells int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setBatteryCellsLocked(cells)
}

// SetBatterySpecs configures the battery model from an operator string.
// "empty,warn,full" in volts (a trailing V per value is accepted)
// enables the voltage-based charge estimate; "nn%" or an empty string
// disables it and sets the warn percentage. Malformed input raises a
// text notification and leaves the thresholds unchanged.
func (v *Vehicle) SetBatterySpecs(specs string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if specs == "" || strings.Contains(specs, "%") {
		v.estimateEnabled = false
		pct, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(specs, "%", "")), 64)
		if err != nil {
			v.publishSpecsError()
			return
		}
		v.warnLevelPct = pct
		return
	}

	v.estimateEnabled = true
	cleaned := strings.ReplaceAll(strings.ReplaceAll(specs, "V", ""), "v", "")
	parts := strings.Split(cleaned, ",")
	if len(parts) != 3 {
		v.publishSpecsError()
		return
	}
	// Fields parse independently; a bad one keeps its previous value.
	if val, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err == nil {
		v.emptyVoltage = val
	}
	if val, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
		v.warnVoltage = val
	}
	if val, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
		v.fullVoltage = val
	}
}

func (v *Vehicle) publishSpecsError() {
	v.events.Publish(notify.TextMessage{
		SystemID: v.systemID,
		Text:     "Could not set battery options, format is wrong",
	})
}

// BatterySpecs echoes the current battery configuration in the
// SetBatterySpecs input format.
func (v *Vehicle) BatterySpecs() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.estimateEnabled {
		return fmtVolts(v.emptyVoltage) + "V," + fmtVolts(v.warnVoltage) + "V," + fmtVolts(v.fullVoltage) + "V"
	}
	return fmtVolts(v.warnLevelPct) + "%"
}

func fmtVolts(val float64) string {
	return strconv.FormatFloat(val, 'g', -1, 64)
}

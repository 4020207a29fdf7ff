package vehicle

// Onboard timestamps below this are boot-relative microsecond counters;
// above it they are absolute epoch microseconds. 40 years: no system
// without a real clock runs that long without a reboot.
const bootTimeThresholdUs = 1261440000000000

func (v *Vehicle) groundTimeMs() uint64 {
	return uint64(v.now().UnixMilli())
}

// resolveReferenceTime converts a raw onboard microsecond timestamp to
// epoch milliseconds. A zero timestamp means the message carried none
// and ground time is used. Boot-relative counters are shifted by an
// offset computed once from the first such timestamp; recomputing it
// per call would fold onboard/ground clock drift into every later
// timestamp.
func (v *Vehicle) resolveReferenceTime(rawUs uint64) uint64 {
	if rawUs == 0 {
		return v.groundTimeMs()
	}
	if rawUs < bootTimeThresholdUs {
		if v.timeOffsetMs == 0 {
			v.timeOffsetMs = int64(v.groundTimeMs()) - int64(rawUs/1000)
		}
		return uint64(int64(rawUs/1000) + v.timeOffsetMs)
	}
	return rawUs / 1000
}

// resolveTime is resolveReferenceTime plus the attitude-stamped mode:
// when enabled, every measurement is moved in time to the last attitude
// so datasets from clockless systems stay roughly aligned.
func (v *Vehicle) resolveTime(rawUs uint64) uint64 {
	if v.attitudeStamped {
		return v.lastAttitudeMs
	}
	return v.resolveReferenceTime(rawUs)
}

// ResolveTime converts a raw onboard microsecond timestamp to epoch
// milliseconds, honoring the attitude-stamped mode.
func (v *Vehicle) ResolveTime(rawUs uint64) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resolveTime(rawUs)
}

// ResolveReferenceTime converts a raw onboard microsecond timestamp to
// epoch milliseconds, ignoring the attitude-stamped mode. The attitude
// stream itself is resolved through this variant.
func (v *Vehicle) ResolveReferenceTime(rawUs uint64) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resolveReferenceTime(rawUs)
}

package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/antonymarion/forkQGroundControl/internal/channel"
	"github.com/antonymarion/forkQGroundControl/internal/notify"
	"github.com/antonymarion/forkQGroundControl/internal/telemetry"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

const (
	// recorderBuffer sizes the subscription; the broadcaster drops
	// events for subscribers that fall this far behind.
	recorderBuffer = 1024

	// liveStateInterval throttles per-vehicle state pushes to the live
	// feed. Samples are recorded at full rate regardless.
	liveStateInterval = 1 * time.Second
)

// RecorderDependencies holds the recorder's inputs.
type RecorderDependencies struct {
	Events   *notify.Broadcaster
	Snapshot func(systemID int) (core.VehicleSnapshot, bool)
	Clock    func() time.Time // defaults to time.Now
	Logger   *slog.Logger
}

// Recorder subscribes to vehicle notifications and translates them into
// storage records on the manager's queues. Position fixes become full
// telemetry samples via the fleet snapshot; discrete events become
// flight events; parameter and named value readings pass through
// directly.
type Recorder struct {
	manager *Manager
	deps    RecorderDependencies
	live    telemetry.LiveFeed

	stateInterval time.Duration
	lastState     map[int]time.Time

	cancel func()
	done   chan struct{}
}

// NewRecorder creates a recorder feeding the given manager.
func NewRecorder(manager *Manager, deps RecorderDependencies) *Recorder {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Recorder{
		manager:       manager,
		deps:          deps,
		live:          manager.LiveFeed(),
		stateInterval: liveStateInterval,
		lastState:     make(map[int]time.Time),
	}
}

// Start subscribes to the broadcaster and begins translating events.
func (r *Recorder) Start() {
	if r.done != nil {
		return
	}
	events, cancel := r.deps.Events.Subscribe(recorderBuffer)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.consume(events)
}

// Stop unsubscribes and waits for buffered events to drain.
func (r *Recorder) Stop() {
	if r.done == nil {
		return
	}
	r.cancel()
	<-r.done
	r.done = nil
}

func (r *Recorder) consume(events channel.Receiver[notify.Event]) {
	defer close(r.done)
	for e := range events.Receive() {
		r.handleEvent(e)
	}
}

// handleEvent maps one notification onto the staging queues. Attitude,
// heading, speed, battery and GNSS updates are not recorded on their
// own; they fold into the sample taken on the next position fix.
func (r *Recorder) handleEvent(e notify.Event) {
	switch ev := e.(type) {
	case notify.GlobalPositionChanged:
		r.handlePosition(ev)
	case notify.ParamChanged:
		r.manager.RecordParamValue(core.ParamValue{
			Time:        r.deps.Clock(),
			SystemID:    ev.SystemID,
			ComponentID: ev.ComponentID,
			Name:        ev.Name,
			Value:       ev.Value,
			Index:       ev.Index,
			Count:       ev.Count,
		})
	case notify.ValueChanged:
		r.handleNamedValue(ev)
	case notify.TextMessage:
		r.pushEvent(ev.SystemID, ev.Kind(), ev.Text, map[string]any{
			"severity":    int(ev.Severity),
			"componentId": ev.ComponentID,
		})
		if r.live != nil {
			if err := r.live.SendTextMessage(ev.SystemID, ev.Severity, ev.Text); err != nil {
				r.deps.Logger.Debug("live text send failed", "error", err)
			}
		}
	case notify.StatusChanged:
		r.pushEvent(ev.SystemID, ev.Kind(), ev.Text, map[string]any{"status": int(ev.Status)})
	case notify.ModeChanged:
		r.pushEvent(ev.SystemID, ev.Kind(), ev.Text, map[string]any{"mode": int(ev.Mode)})
	case notify.NavModeChanged:
		r.pushEvent(ev.SystemID, ev.Kind(), ev.Text, map[string]any{"navMode": int64(ev.NavMode)})
	case notify.LowBattery:
		r.pushEvent(ev.SystemID, ev.Kind(),
			fmt.Sprintf("Battery low: %.2f V", ev.Voltage),
			map[string]any{"voltage": ev.Voltage})
	case notify.PositionLock:
		r.pushEvent(ev.SystemID, ev.Kind(), "Position lock acquired", nil)
	case notify.HomeChanged:
		r.pushEvent(ev.SystemID, ev.Kind(), "Home position set",
			map[string]any{"lat": ev.Lat, "lon": ev.Lon, "alt": ev.Alt})
	case notify.WaypointReached:
		r.pushEvent(ev.SystemID, ev.Kind(),
			fmt.Sprintf("Reached waypoint %d", ev.Seq),
			map[string]any{"seq": int(ev.Seq)})
	case notify.CommandAck:
		r.pushEvent(ev.SystemID, ev.Kind(),
			fmt.Sprintf("Command %d acknowledged with result %d", ev.Command, ev.Result),
			map[string]any{"command": int(ev.Command), "result": int(ev.Result)})
	case notify.HeartbeatTimeout:
		r.pushEvent(ev.SystemID, ev.Kind(),
			fmt.Sprintf("No heartbeat for %d ms", ev.SinceMs),
			map[string]any{"sinceMs": int64(ev.SinceMs)})
	case notify.SystemRemoved:
		r.pushEvent(ev.SystemID, ev.Kind(), "Vehicle left the fleet", nil)
	}
}

func (r *Recorder) handlePosition(ev notify.GlobalPositionChanged) {
	if r.deps.Snapshot == nil {
		return
	}
	snap, ok := r.deps.Snapshot(ev.SystemID)
	if !ok {
		return
	}
	r.manager.RecordTelemetry(sampleFromSnapshot(r.deps.Clock(), snap))

	if r.live == nil {
		return
	}
	now := r.deps.Clock()
	if last, ok := r.lastState[snap.SystemID]; ok && now.Sub(last) < r.stateInterval {
		return
	}
	r.lastState[snap.SystemID] = now
	if err := r.live.SendVehicleState(&snap); err != nil {
		r.deps.Logger.Debug("live state send failed", "error", err)
	}
}

func (r *Recorder) handleNamedValue(ev notify.ValueChanged) {
	value := core.NamedValue{
		Time:     r.deps.Clock(),
		SystemID: ev.SystemID,
		Name:     ev.Name,
		Unit:     ev.Unit,
		Value:    ev.Value,
	}
	r.manager.RecordNamedValue(value)
	if r.live != nil {
		if err := r.live.SendNamedValue(&value); err != nil {
			r.deps.Logger.Debug("live value send failed", "error", err)
		}
	}
}

func (r *Recorder) pushEvent(systemID int, name, message string, extra map[string]any) {
	r.manager.RecordFlightEvent(core.FlightEvent{
		Time:      r.deps.Clock(),
		SystemID:  systemID,
		Name:      name,
		Message:   message,
		ExtraData: extra,
	})
}

// sampleFromSnapshot flattens a state readout into one track sample.
func sampleFromSnapshot(t time.Time, snap core.VehicleSnapshot) core.TelemetrySample {
	return core.TelemetrySample{
		Time:        t,
		SystemID:    snap.SystemID,
		Position:    snap.Position,
		RelativeAlt: snap.RelativeAlt,
		Velocity:    snap.Velocity,
		Attitude:    snap.Attitude,
		HeadingDeg:  snap.HeadingDeg,
		Battery:     snap.Battery,
		GPSFix:      snap.GPSFix,
		Satellites:  snap.Satellites,
		Airspeed:    snap.Airspeed,
		Groundspeed: snap.Groundspeed,
		Throttle:    snap.Throttle,
		Climb:       snap.Climb,
	}
}

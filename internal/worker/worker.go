// Package worker stages recorded vehicle data between the dispatch loop
// and the storage backend. The recorder translates notifications into
// core records and pushes them onto the manager's queues; a flush loop
// drains the queues into the backend and the optional time-series sink.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/antonymarion/forkQGroundControl/internal/influx"
	"github.com/antonymarion/forkQGroundControl/internal/logging"
	"github.com/antonymarion/forkQGroundControl/internal/model"
	"github.com/antonymarion/forkQGroundControl/internal/queue"
	"github.com/antonymarion/forkQGroundControl/internal/telemetry"
	"github.com/antonymarion/forkQGroundControl/internal/wire"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// flushInterval is how often the staging queues drain into the backend.
const flushInterval = 1 * time.Second

// Dependencies holds all dependencies for the worker manager.
type Dependencies struct {
	LogManager *logging.SlogManager
	Influx     *influx.Manager // optional, nil when disabled
}

// Queues are the staging buffers between the dispatch loop and the
// storage backend.
type Queues struct {
	Telemetry    *queue.Queue[core.TelemetrySample]
	FlightEvents *queue.Queue[core.FlightEvent]
	RawFrames    *queue.Queue[core.RawFrame]
	ParamValues  *queue.Queue[core.ParamValue]
}

func newQueues() *Queues {
	return &Queues{
		Telemetry:    queue.New[core.TelemetrySample](),
		FlightEvents: queue.New[core.FlightEvent](),
		RawFrames:    queue.New[core.RawFrame](),
		ParamValues:  queue.New[core.ParamValue](),
	}
}

// Manager owns the staging queues and the flush loop feeding the
// storage backend.
type Manager struct {
	deps    Dependencies
	backend telemetry.Backend
	queues  *Queues

	interval time.Duration
	mu       sync.Mutex
	stopChan chan struct{}
}

// NewManager creates a new worker manager.
func NewManager(deps Dependencies, backend telemetry.Backend) *Manager {
	return &Manager{
		deps:     deps,
		backend:  backend,
		queues:   newQueues(),
		interval: flushInterval,
	}
}

// Start launches the flush loop.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopChan != nil {
		return
	}
	m.stopChan = make(chan struct{})
	go m.run(m.stopChan)
}

// Stop halts the flush loop and drains whatever is still staged.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopChan == nil {
		m.mu.Unlock()
		return
	}
	close(m.stopChan)
	m.stopChan = nil
	m.mu.Unlock()

	m.Flush()
}

func (m *Manager) run(stop chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.Flush()
		}
	}
}

// RecordTelemetry stages one telemetry sample.
func (m *Manager) RecordTelemetry(sample core.TelemetrySample) {
	m.queues.Telemetry.Push(sample)
}

// RecordFlightEvent stages one flight event.
func (m *Manager) RecordFlightEvent(event core.FlightEvent) {
	m.queues.FlightEvents.Push(event)
}

// RecordParamValue stages one onboard parameter reading.
func (m *Manager) RecordParamValue(value core.ParamValue) {
	m.queues.ParamValues.Push(value)
}

// RecordNamedValue forwards a named value float to the time-series
// sink. Named values are plotted live, not archived with the session.
func (m *Manager) RecordNamedValue(value core.NamedValue) {
	if m.deps.Influx == nil {
		return
	}
	if err := m.deps.Influx.WriteNamedValue(context.Background(), &value); err != nil {
		m.logError("RecordNamedValue", err)
	}
}

// OfferRawFrame stages an undecoded frame for replay storage. The
// payload is copied because decoder buffers are reused.
func (m *Manager) OfferRawFrame(frame *wire.Frame) {
	m.queues.RawFrames.Push(core.RawFrame{
		Time:     time.Now(),
		SystemID: int(frame.SysID),
		MsgID:    frame.MsgID,
		Payload:  append([]byte(nil), frame.Payload...),
	})
}

// Flush drains the staging queues into the backend and the time-series
// sink. Safe to call concurrently with the flush loop.
func (m *Manager) Flush() {
	ctx := context.Background()

	for _, sample := range m.queues.Telemetry.GetAndEmpty() {
		s := sample
		if err := m.backend.RecordTelemetry(&s); err != nil {
			m.logError("RecordTelemetry", err)
		}
		if m.deps.Influx != nil {
			if err := m.deps.Influx.WriteTelemetry(ctx, &s); err != nil {
				m.logError("WriteTelemetry", err)
			}
			if err := m.deps.Influx.WriteBattery(ctx, s.SystemID, s.Time, s.Battery); err != nil {
				m.logError("WriteBattery", err)
			}
		}
	}

	for _, event := range m.queues.FlightEvents.GetAndEmpty() {
		e := event
		if err := m.backend.RecordFlightEvent(&e); err != nil {
			m.logError("RecordFlightEvent", err)
		}
		if m.deps.Influx != nil {
			if err := m.deps.Influx.WriteFlightEvent(ctx, &e); err != nil {
				m.logError("WriteFlightEvent", err)
			}
		}
	}

	for _, value := range m.queues.ParamValues.GetAndEmpty() {
		p := value
		if err := m.backend.RecordParamValue(&p); err != nil {
			m.logError("RecordParamValue", err)
		}
	}

	for _, frame := range m.queues.RawFrames.GetAndEmpty() {
		f := frame
		if err := m.backend.RecordRawFrame(&f); err != nil {
			m.logError("RecordRawFrame", err)
		}
	}
}

func (m *Manager) logError(op string, err error) {
	m.deps.LogManager.WriteLog(op, fmt.Sprintf("%v", err), "ERROR")
}

// BufferLengths reports the staging queue depths for monitoring.
func (m *Manager) BufferLengths() model.BufferLengths {
	return model.BufferLengths{
		Telemetry:    uint16(m.queues.Telemetry.Len()),
		FlightEvents: uint16(m.queues.FlightEvents.Len()),
		RawFrames:    uint16(m.queues.RawFrames.Len()),
		ParamValues:  uint16(m.queues.ParamValues.Len()),
	}
}

// DBWriteDurationProvider is an optional interface that backends can
// implement to expose their last DB write duration for monitoring.
type DBWriteDurationProvider interface {
	GetLastDBWriteDuration() time.Duration
}

// GetLastDBWriteDuration returns the duration of the last DB write
// cycle. Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.GetLastDBWriteDuration()
	}
	return 0
}

// WriteQueueLengthsProvider is an optional interface for backends with
// internal write queues of their own.
type WriteQueueLengthsProvider interface {
	WriteQueueLengths() model.WriteQueueLengths
}

// WriteQueueLengths returns the backend's internal write queue depths.
// Returns zeros for backends that record synchronously.
func (m *Manager) WriteQueueLengths() model.WriteQueueLengths {
	if p, ok := m.backend.(WriteQueueLengthsProvider); ok {
		return p.WriteQueueLengths()
	}
	return model.WriteQueueLengths{}
}

// LiveFeed returns the backend's live view surface, or nil when the
// backend does not stream.
func (m *Manager) LiveFeed() telemetry.LiveFeed {
	if lf, ok := m.backend.(telemetry.LiveFeed); ok {
		return lf
	}
	return nil
}

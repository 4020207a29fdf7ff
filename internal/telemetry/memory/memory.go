// Package memory buffers one recording session in RAM and writes it out
// as a JSON document when the session ends.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/antonymarion/forkQGroundControl/internal/config"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// VehicleRecord groups one airframe with all its time-series data
type VehicleRecord struct {
	SystemID int
	Samples  []core.TelemetrySample
	Params   []core.ParamValue
}

// Backend stores session data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session

	vehicles map[int]*VehicleRecord // keyed by system ID

	flightEvents []core.FlightEvent

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		vehicles: make(map[int]*VehicleRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins buffering a new session
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = s

	// Reset all collections
	b.vehicles = make(map[int]*VehicleRecord)
	b.flightEvents = nil
	b.lastExportPath = ""

	return nil
}

// EndSession finalizes and exports the session data
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return fmt.Errorf("no session to end")
	}
	return b.exportJSON()
}

// vehicleRecord returns the record for a system, creating it on first use.
// Callers must hold the write lock.
func (b *Backend) vehicleRecord(systemID int) *VehicleRecord {
	record, ok := b.vehicles[systemID]
	if !ok {
		record = &VehicleRecord{
			SystemID: systemID,
			Samples:  make([]core.TelemetrySample, 0),
		}
		b.vehicles[systemID] = record
	}
	return record
}

// RecordTelemetry appends a telemetry sample to its vehicle track
func (b *Backend) RecordTelemetry(s *core.TelemetrySample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record := b.vehicleRecord(s.SystemID)
	record.Samples = append(record.Samples, *s)
	return nil
}

// RecordFlightEvent records a flight event
func (b *Backend) RecordFlightEvent(e *core.FlightEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flightEvents = append(b.flightEvents, *e)
	return nil
}

// RecordParamValue appends a parameter value to its vehicle track
func (b *Backend) RecordParamValue(p *core.ParamValue) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record := b.vehicleRecord(p.SystemID)
	record.Params = append(record.Params, *p)
	return nil
}

// RecordRawFrame is a no-op. Raw frames are not part of the JSON export
func (b *Backend) RecordRawFrame(f *core.RawFrame) error {
	return nil
}

// GetExportedFilePath returns the path of the last export, empty until
// a session has ended
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the buffered session for upload
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.session == nil {
		return core.UploadMetadata{}
	}

	return core.UploadMetadata{
		Station:     b.session.Station,
		SessionName: b.session.Name,
		DurationSec: b.sessionDuration(),
		Tag:         config.GetStation().Tag,
	}
}

// sessionDuration computes the recorded timespan. The session end time
// wins when set, otherwise the telemetry track span is used.
// Callers must hold at least the read lock.
func (b *Backend) sessionDuration() float64 {
	if b.session == nil {
		return 0
	}
	if !b.session.EndedAt.IsZero() {
		return b.session.EndedAt.Sub(b.session.StartedAt).Seconds()
	}

	var first, last time.Time
	for _, record := range b.vehicles {
		for _, s := range record.Samples {
			if first.IsZero() || s.Time.Before(first) {
				first = s.Time
			}
			if s.Time.After(last) {
				last = s.Time
			}
		}
	}
	if first.IsZero() {
		return 0
	}
	return last.Sub(first).Seconds()
}

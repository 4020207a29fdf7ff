// Package telemetry defines the recording backend contract. A backend
// receives the session lifecycle plus a stream of typed samples from
// the dispatch loop and persists them however it sees fit.
package telemetry

import "github.com/antonymarion/forkQGroundControl/pkg/core"

// Backend is the interface all recording implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *core.Session) error
	EndSession() error

	// Sample recording
	RecordTelemetry(s *core.TelemetrySample) error
	RecordFlightEvent(e *core.FlightEvent) error
	RecordParamValue(p *core.ParamValue) error
	RecordRawFrame(f *core.RawFrame) error
}

// Uploadable is an optional interface for recording backends that produce
// files suitable for upload to the fleet web frontend.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}

// LiveFeed is an optional interface for backends that stream vehicle
// state to a live viewer on top of the recorded samples.
type LiveFeed interface {
	SendVehicleState(s *core.VehicleSnapshot) error
	SendNamedValue(v *core.NamedValue) error
	SendTextMessage(systemID int, severity uint8, text string) error
}

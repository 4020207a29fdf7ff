// Package websocket streams session data to the fleet web frontend over
// a WebSocket connection. It implements the recording backend and live
// feed interfaces but not Uploadable.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/antonymarion/forkQGroundControl/internal/config"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
	"github.com/antonymarion/forkQGroundControl/pkg/streaming"
)

// Backend streams session data over WebSocket.
type Backend struct {
	conn *connection
	cfg  config.WebsocketConfig

	mu        sync.Mutex
	sessionID string
}

// New creates a new WebSocket recording backend.
func New(cfg config.WebsocketConfig) *Backend {
	return &Backend{
		conn: newConnection(slog.Default()),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// sendEnvelopeAndWait marshals the payload and waits for a server ack.
func (b *Backend) sendEnvelopeAndWait(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return b.conn.sendAndWait(data, msgType, ackTimeout)
}

// StartSession sends the session record and waits for server ack.
func (b *Backend) StartSession(s *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.sessionID = s.ID
	b.mu.Unlock()

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends end_session and waits for server ack.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	sessionID := b.sessionID
	b.sessionID = ""
	b.mu.Unlock()

	err := b.sendEnvelopeAndWait(streaming.TypeEndSession, streaming.EndSessionPayload{SessionID: sessionID})

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) RecordTelemetry(s *core.TelemetrySample) error {
	return b.sendEnvelope(streaming.TypeTelemetry, s)
}

func (b *Backend) RecordFlightEvent(e *core.FlightEvent) error {
	return b.sendEnvelope(streaming.TypeFlightEvent, e)
}

func (b *Backend) RecordParamValue(p *core.ParamValue) error {
	return b.sendEnvelope(streaming.TypeParamValue, p)
}

func (b *Backend) RecordRawFrame(f *core.RawFrame) error {
	return b.sendEnvelope(streaming.TypeRawFrame, f)
}

// SendVehicleState streams a live vehicle snapshot to the viewer.
func (b *Backend) SendVehicleState(s *core.VehicleSnapshot) error {
	return b.sendEnvelope(streaming.TypeVehicleState, s)
}

// SendNamedValue streams a generic instrument reading to the viewer.
func (b *Backend) SendNamedValue(v *core.NamedValue) error {
	return b.sendEnvelope(streaming.TypeNamedValue, v)
}

// SendTextMessage streams vehicle status text to the viewer.
func (b *Backend) SendTextMessage(systemID int, severity uint8, text string) error {
	return b.sendEnvelope(streaming.TypeTextMessage, streaming.TextMessagePayload{
		SystemID: systemID,
		Severity: severity,
		Text:     text,
	})
}

package streaming

import (
	"encoding/json"

	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeVehicleState = "vehicle_state"
	TypeTelemetry    = "telemetry"
	TypeFlightEvent  = "flight_event"
	TypeParamValue   = "param_value"
	TypeNamedValue   = "named_value"
	TypeTextMessage  = "text_message"
	TypeRawFrame     = "raw_frame"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries the session record.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// EndSessionPayload closes the session on the frontend.
type EndSessionPayload struct {
	SessionID string `json:"sessionId"`
}

// TextMessagePayload carries vehicle status text.
type TextMessagePayload struct {
	SystemID int    `json:"systemId"`
	Severity uint8  `json:"severity"`
	Text     string `json:"text"`
}

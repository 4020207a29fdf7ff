// Package wire implements the binary telemetry protocol: frame
// encode/decode with X.25 checksums and typed payload packing for the
// fixed message catalog.
package wire

import "fmt"

// Framing constants.
const (
	Magic       = 0xFE // start-of-frame marker
	HeaderLen   = 6    // magic through msgid
	ChecksumLen = 2
	MaxPayload  = 255
	MaxFrameLen = HeaderLen + MaxPayload + ChecksumLen
)

// Frame is one complete checksummed wire frame as received or sent.
type Frame struct {
	Len      uint8
	Seq      uint8
	SysID    uint8
	CompID   uint8
	MsgID    uint8
	Payload  []byte
	Checksum uint16

	// Raw holds the exact bytes of the frame as they appeared on the
	// wire, used for verbatim re-broadcast to other links.
	Raw []byte
}

// Name returns the catalog name for the frame's message id, or a
// hex-formatted placeholder for ids outside the catalog.
func (f *Frame) Name() string {
	if info, ok := Catalog[f.MsgID]; ok {
		return info.Name
	}
	return fmt.Sprintf("MSG_0x%02X", f.MsgID)
}

// Known reports whether the frame's message id is in the catalog.
func (f *Frame) Known() bool {
	_, ok := Catalog[f.MsgID]
	return ok
}

// Message is a typed payload that knows its message id and wire layout.
type Message interface {
	ID() uint8
	Pack() ([]byte, error)
}

package wire

import (
	"fmt"
	"sync"
)

// Encoder builds wire frames stamped with the ground station's own
// system/component identity. The sequence counter is shared across all
// messages the encoder produces, matching one outbound channel per
// station. Safe for concurrent use.
type Encoder struct {
	mu     sync.Mutex
	seq    uint8
	sysID  uint8
	compID uint8
}

// NewEncoder creates an encoder for the given local identity.
func NewEncoder(systemID, componentID uint8) *Encoder {
	return &Encoder{sysID: systemID, compID: componentID}
}

// SystemID returns the local system id stamped on outbound frames.
func (e *Encoder) SystemID() uint8 { return e.sysID }

// ComponentID returns the local component id stamped on outbound frames.
func (e *Encoder) ComponentID() uint8 { return e.compID }

// Encode packs the message payload and wraps it in a finalized frame.
func (e *Encoder) Encode(msg Message) ([]byte, error) {
	payload, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", Catalog[msg.ID()].Name, err)
	}

	info, ok := Catalog[msg.ID()]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownMsgID, msg.ID())
	}
	if int(info.Len) != len(payload) {
		return nil, fmt.Errorf("%w: %s packs %d bytes, catalog says %d",
			ErrLengthInvalid, info.Name, len(payload), info.Len)
	}

	e.mu.Lock()
	seq := e.seq
	e.seq++
	e.mu.Unlock()

	buf := make([]byte, 0, HeaderLen+len(payload)+ChecksumLen)
	buf = append(buf, Magic, uint8(len(payload)), seq, e.sysID, e.compID, msg.ID())
	buf = append(buf, payload...)

	crc := ChecksumFrame(uint8(len(payload)), seq, e.sysID, e.compID, msg.ID(), payload, info.Seed)
	buf = append(buf, byte(crc&0xFF), byte(crc>>8))
	return buf, nil
}

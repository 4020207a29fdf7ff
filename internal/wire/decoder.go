package wire

import (
	"errors"
	"fmt"
)

// Decode errors. Frames that fail are dropped; the stream keeps going.
var (
	ErrBadChecksum   = errors.New("wire: checksum mismatch")
	ErrUnknownMsgID  = errors.New("wire: message id outside catalog")
	ErrLengthInvalid = errors.New("wire: payload length does not match catalog")
)

// Decoder states.
const (
	stateIdle = iota
	stateLen
	stateSeq
	stateSysID
	stateCompID
	stateMsgID
	statePayload
	stateCRC1
	stateCRC2
)

// Stats counts decoder outcomes since creation.
type Stats struct {
	Frames       uint64
	ChecksumErrs uint64
	UnknownIDs   uint64
	LengthErrs   uint64
	SkippedBytes uint64
}

// Decoder assembles frames from a raw byte stream, one byte at a time.
// A Decoder is stateful and not safe for concurrent use; each link owns
// its own.
type Decoder struct {
	state   int
	frame   *Frame
	seed    uint8
	crc     uint16
	ckLow   uint8
	raw     []byte
	stats   Stats
}

// NewDecoder creates a decoder in the idle state.
func NewDecoder() *Decoder {
	return &Decoder{raw: make([]byte, 0, MaxFrameLen)}
}

// Reset drops any partially assembled frame and returns to idle.
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.frame = nil
	d.crc = 0
	d.ckLow = 0
	d.seed = 0
	d.raw = d.raw[:0]
}

// Stats returns a copy of the decoder's counters.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// PushByte feeds one byte through the decoder. It returns a completed
// frame when the byte finishes a valid frame, an error when the byte
// invalidates the frame being assembled, and (nil, nil) otherwise.
func (d *Decoder) PushByte(b byte) (*Frame, error) {
	if d.state == stateIdle {
		if b != Magic {
			d.stats.SkippedBytes++
			return nil, nil
		}
		d.raw = append(d.raw[:0], b)
		d.state = stateLen
		return nil, nil
	}

	d.raw = append(d.raw, b)

	switch d.state {
	case stateLen:
		d.frame = &Frame{Len: b, Payload: make([]byte, 0, b)}
		d.crc = crcAccumulate(b, crcInit)
		d.state = stateSeq

	case stateSeq:
		d.frame.Seq = b
		d.crc = crcAccumulate(b, d.crc)
		d.state = stateSysID

	case stateSysID:
		d.frame.SysID = b
		d.crc = crcAccumulate(b, d.crc)
		d.state = stateCompID

	case stateCompID:
		d.frame.CompID = b
		d.crc = crcAccumulate(b, d.crc)
		d.state = stateMsgID

	case stateMsgID:
		d.frame.MsgID = b
		d.crc = crcAccumulate(b, d.crc)
		info, ok := Catalog[b]
		if !ok {
			d.stats.UnknownIDs++
			d.Reset()
			return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownMsgID, b)
		}
		if info.Len != d.frame.Len {
			d.stats.LengthErrs++
			d.Reset()
			return nil, fmt.Errorf("%w: %s has %d, frame says %d",
				ErrLengthInvalid, info.Name, info.Len, d.frame.Len)
		}
		d.seed = info.Seed
		if d.frame.Len == 0 {
			d.state = stateCRC1
		} else {
			d.state = statePayload
		}

	case statePayload:
		d.frame.Payload = append(d.frame.Payload, b)
		d.crc = crcAccumulate(b, d.crc)
		if len(d.frame.Payload) >= int(d.frame.Len) {
			d.state = stateCRC1
		}

	case stateCRC1:
		d.ckLow = b
		d.state = stateCRC2

	case stateCRC2:
		frame := d.frame
		frame.Checksum = uint16(d.ckLow) | uint16(b)<<8
		want := crcAccumulate(d.seed, d.crc)
		if frame.Checksum != want {
			d.stats.ChecksumErrs++
			d.Reset()
			return nil, fmt.Errorf("%w: %s want 0x%04X got 0x%04X",
				ErrBadChecksum, frame.Name(), want, frame.Checksum)
		}
		frame.Raw = append([]byte(nil), d.raw...)
		d.stats.Frames++
		d.Reset()
		return frame, nil
	}

	return nil, nil
}

// Push feeds a chunk of bytes and returns every frame completed within
// it. Decode failures are dropped silently; the counters record them.
func (d *Decoder) Push(data []byte) []*Frame {
	var frames []*Frame
	for _, b := range data {
		f, err := d.PushByte(b)
		if err != nil {
			continue
		}
		if f != nil {
			frames = append(frames, f)
		}
	}
	return frames
}

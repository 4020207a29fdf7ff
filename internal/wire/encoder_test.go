package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMsg struct {
	id      uint8
	payload []byte
}

func (m fakeMsg) ID() uint8             { return m.id }
func (m fakeMsg) Pack() ([]byte, error) { return m.payload, nil }

func TestEncoder_StampsIdentity(t *testing.T) {
	e := NewEncoder(255, 190)

	buf, err := e.Encode(&Heartbeat{Type: TypeGCS})
	require.NoError(t, err)

	assert.Equal(t, byte(Magic), buf[0])
	assert.Equal(t, byte(9), buf[1])
	assert.Equal(t, byte(255), buf[3])
	assert.Equal(t, byte(190), buf[4])
	assert.Equal(t, byte(MsgIDHeartbeat), buf[5])
	assert.Len(t, buf, HeaderLen+9+ChecksumLen)
}

func TestEncoder_SequenceIncrementsAndWraps(t *testing.T) {
	e := NewEncoder(255, 190)

	for i := 0; i < 300; i++ {
		buf, err := e.Encode(&Heartbeat{})
		require.NoError(t, err)
		assert.Equal(t, uint8(i), buf[2], "encode %d", i)
	}
}

func TestEncoder_UnknownIDRejected(t *testing.T) {
	e := NewEncoder(255, 190)

	_, err := e.Encode(fakeMsg{id: 0xC8, payload: []byte{1, 2, 3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMsgID))
}

func TestEncoder_PayloadLengthMismatchRejected(t *testing.T) {
	e := NewEncoder(255, 190)

	_, err := e.Encode(fakeMsg{id: MsgIDHeartbeat, payload: []byte{1, 2, 3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLengthInvalid))
}

func TestEncoder_OutputDecodes(t *testing.T) {
	e := NewEncoder(255, 190)
	sent := &CommandLong{
		Param1:          1,
		Param5:          47.397742,
		Param6:          8.560152,
		Param7:          412,
		Command:         CmdDoSetHome,
		TargetSystem:    1,
		TargetComponent: CompIDAll,
		Confirmation:    1,
	}

	buf, err := e.Encode(sent)
	require.NoError(t, err)

	frames := NewDecoder().Push(buf)
	require.Len(t, frames, 1)

	var got CommandLong
	require.NoError(t, got.Unpack(frames[0].Payload))
	assert.Equal(t, *sent, got)
}

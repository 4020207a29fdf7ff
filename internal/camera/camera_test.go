package camera

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonymarion/forkQGroundControl/internal/wire"
)

type sentCommand struct {
	command      uint16
	confirmation uint8
	params       [7]float32
	component    uint8
}

type fakeSender struct {
	sent []sentCommand
	err  error
}

func (s *fakeSender) ExecuteCommandLong(command uint16, confirmation uint8, p1, p2, p3, p4, p5, p6, p7 float32, component uint8) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentCommand{
		command:      command,
		confirmation: confirmation,
		params:       [7]float32{p1, p2, p3, p4, p5, p6, p7},
		component:    component,
	})
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCamera_SetMode(t *testing.T) {
	s := &fakeSender{}
	c := New(s, Spec{Model: "H20T"}, discard())

	require.NoError(t, c.SetMode(ModeVideo))
	require.Len(t, s.sent, 1)
	assert.Equal(t, wire.CmdSetCameraMode, s.sent[0].command)
	assert.Equal(t, float32(1), s.sent[0].params[1])
	assert.Equal(t, wire.CompIDCamera, s.sent[0].component)
	assert.Equal(t, ModeVideo, c.Mode())

	require.NoError(t, c.SetMode(ModePhoto))
	assert.Equal(t, float32(0), s.sent[1].params[1])
	assert.Equal(t, ModePhoto, c.Mode())
}

func TestCamera_TakePhoto(t *testing.T) {
	s := &fakeSender{}
	c := New(s, Spec{Component: 101}, discard())

	require.NoError(t, c.TakePhoto())
	require.Len(t, s.sent, 1)
	assert.Equal(t, wire.CmdImageStartCapture, s.sent[0].command)
	// Single frame capture.
	assert.Equal(t, float32(1), s.sent[0].params[2])
	assert.Equal(t, uint8(101), s.sent[0].component)
}

func TestCamera_Recording(t *testing.T) {
	s := &fakeSender{}
	c := New(s, Spec{}, discard())

	require.NoError(t, c.StartRecording())
	assert.True(t, c.Recording())
	assert.Equal(t, wire.CmdVideoStartCapture, s.sent[0].command)

	require.NoError(t, c.StopRecording())
	assert.False(t, c.Recording())
	assert.Equal(t, wire.CmdVideoStopCapture, s.sent[1].command)
}

func TestCamera_Zoom(t *testing.T) {
	s := &fakeSender{}
	c := New(s, Spec{HasZoom: true}, discard())

	require.NoError(t, c.Zoom(3.5))
	require.Len(t, s.sent, 1)
	assert.Equal(t, wire.CmdSetCameraZoom, s.sent[0].command)
	assert.Equal(t, float32(zoomTypeRange), s.sent[0].params[0])
	assert.Equal(t, float32(3.5), s.sent[0].params[1])
}

func TestCamera_ZoomWithoutZoom(t *testing.T) {
	s := &fakeSender{}
	c := New(s, Spec{}, discard())

	assert.ErrorIs(t, c.Zoom(2), ErrNoZoom)
	assert.Empty(t, s.sent)
}

func TestCamera_SendFailureKeepsState(t *testing.T) {
	s := &fakeSender{err: io.ErrClosedPipe}
	c := New(s, Spec{}, discard())

	assert.Error(t, c.SetMode(ModeVideo))
	assert.Equal(t, ModePhoto, c.Mode())

	assert.Error(t, c.StartRecording())
	assert.False(t, c.Recording())
}

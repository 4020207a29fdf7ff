package notify

import (
	"log/slog"
	"sync/atomic"
)

// Audio is the narration sink the dispatch loop talks to. Say queues a
// spoken sentence, Alert interrupts with a priority message, and the
// emergency pair latches a repeating alarm tone.
type Audio interface {
	Say(text string)
	Alert(text string)
	StartEmergency()
	StopEmergency()
}

// NopAudio discards all narration.
type NopAudio struct{}

func (NopAudio) Say(string)      {}
func (NopAudio) Alert(string)    {}
func (NopAudio) StartEmergency() {}
func (NopAudio) StopEmergency()  {}

// LogAudio writes narration to the logger instead of a speaker. The
// emergency alarm is latched so repeated triggers log once.
type LogAudio struct {
	logger *slog.Logger
	alarm  atomic.Bool
}

// NewLogAudio creates a log-backed audio sink.
func NewLogAudio(logger *slog.Logger) *LogAudio {
	return &LogAudio{logger: logger}
}

func (a *LogAudio) Say(text string) {
	a.logger.Info("audio", "say", text)
}

func (a *LogAudio) Alert(text string) {
	a.logger.Warn("audio alert", "say", text)
}

func (a *LogAudio) StartEmergency() {
	if a.alarm.CompareAndSwap(false, true) {
		a.logger.Warn("emergency alarm started")
	}
}

func (a *LogAudio) StopEmergency() {
	if a.alarm.CompareAndSwap(true, false) {
		a.logger.Info("emergency alarm stopped")
	}
}

// Alarming reports whether the emergency alarm is latched.
func (a *LogAudio) Alarming() bool {
	return a.alarm.Load()
}

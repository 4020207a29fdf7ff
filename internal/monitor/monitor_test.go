package monitor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/antonymarion/forkQGroundControl/internal/logging"
	"github.com/antonymarion/forkQGroundControl/internal/model"
	"github.com/antonymarion/forkQGroundControl/internal/worker"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// stubBackend implements telemetry.Backend plus the provider interfaces
// the worker manager probes for.
type stubBackend struct {
	queueLens model.WriteQueueLengths
	lastWrite time.Duration
}

func (b *stubBackend) Init() error                                 { return nil }
func (b *stubBackend) Close() error                                { return nil }
func (b *stubBackend) StartSession(*core.Session) error            { return nil }
func (b *stubBackend) EndSession() error                           { return nil }
func (b *stubBackend) RecordTelemetry(*core.TelemetrySample) error { return nil }
func (b *stubBackend) RecordFlightEvent(*core.FlightEvent) error   { return nil }
func (b *stubBackend) RecordParamValue(*core.ParamValue) error     { return nil }
func (b *stubBackend) RecordRawFrame(*core.RawFrame) error         { return nil }

func (b *stubBackend) GetLastDBWriteDuration() time.Duration      { return b.lastWrite }
func (b *stubBackend) WriteQueueLengths() model.WriteQueueLengths { return b.queueLens }

func newTestService(backend *stubBackend, sessionRowID uint) (*Service, *worker.Manager) {
	logManager := logging.NewSlogManager()
	manager := worker.NewManager(worker.Dependencies{LogManager: logManager}, backend)
	service := NewService(Dependencies{
		LogManager:      logManager,
		WorkerManager:   manager,
		StatusDir:       os.TempDir(),
		IsDatabaseValid: func() bool { return false },
		SessionRowID:    func() uint { return sessionRowID },
	})
	return service, manager
}

func TestNewService(t *testing.T) {
	service, _ := newTestService(&stubBackend{}, 0)
	if service.IsRunning() {
		t.Fatal("new service should not be running")
	}
}

func TestGetProgramStatus(t *testing.T) {
	backend := &stubBackend{
		queueLens: model.WriteQueueLengths{Telemetry: 5, FlightEvents: 2},
		lastWrite: 250 * time.Millisecond,
	}
	service, manager := newTestService(backend, 3)

	manager.RecordTelemetry(core.TelemetrySample{SystemID: 1})
	manager.RecordTelemetry(core.TelemetrySample{SystemID: 1})
	manager.RecordFlightEvent(core.FlightEvent{SystemID: 1, Name: "mode"})

	output, perf := service.GetProgramStatus(true, true, true)

	if len(output) != 3 {
		t.Fatalf("expected 3 status sections, got %d", len(output))
	}
	if !strings.Contains(output[0], `"telemetry": 2`) {
		t.Errorf("buffer section missing staged telemetry count: %s", output[0])
	}
	if !strings.Contains(output[0], `"flightEvents": 1`) {
		t.Errorf("buffer section missing staged event count: %s", output[0])
	}
	if !strings.Contains(output[1], `"telemetry": 5`) {
		t.Errorf("write queue section missing backend queue length: %s", output[1])
	}
	if output[2] != "250" {
		t.Errorf("expected last write section '250', got %q", output[2])
	}

	if perf.SessionID != 3 {
		t.Errorf("expected session id 3, got %d", perf.SessionID)
	}
	if perf.BufferLengths.Telemetry != 2 || perf.BufferLengths.FlightEvents != 1 {
		t.Errorf("unexpected buffer lengths: %+v", perf.BufferLengths)
	}
	if perf.WriteQueueLengths.Telemetry != 5 || perf.WriteQueueLengths.FlightEvents != 2 {
		t.Errorf("unexpected write queue lengths: %+v", perf.WriteQueueLengths)
	}
	if perf.LastWriteDurationMs != 250 {
		t.Errorf("expected last write 250 ms, got %f", perf.LastWriteDurationMs)
	}
	if perf.Time.IsZero() {
		t.Error("perf row should carry a timestamp")
	}
}

func TestGetProgramStatusSelective(t *testing.T) {
	service, _ := newTestService(&stubBackend{}, 1)

	output, _ := service.GetProgramStatus(false, true, false)
	if len(output) != 1 {
		t.Fatalf("expected 1 status section, got %d", len(output))
	}

	output, _ = service.GetProgramStatus(false, false, false)
	if len(output) != 0 {
		t.Fatalf("expected no status sections, got %d", len(output))
	}
}

func TestMemoryStatus(t *testing.T) {
	service, _ := newTestService(&stubBackend{}, 0)

	status := service.MemoryStatus()
	if !strings.Contains(status, "heap") || !strings.Contains(status, "goroutines") {
		t.Fatalf("unexpected memory status: %q", status)
	}
}

func TestStartWritesStatusFile(t *testing.T) {
	backend := &stubBackend{lastWrite: 12 * time.Millisecond}
	service, manager := newTestService(backend, 7)
	dir := t.TempDir()
	service.deps.StatusDir = dir

	manager.RecordTelemetry(core.TelemetrySample{SystemID: 1})

	if err := service.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer service.Stop()

	statusPath := filepath.Join(dir, "status.txt")
	deadline := time.Now().Add(3 * time.Second)
	for {
		data, err := os.ReadFile(statusPath)
		if err == nil && strings.Contains(string(data), `"telemetry": 1`) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("status file never populated, last content: %q", string(data))
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestStartStop(t *testing.T) {
	service, _ := newTestService(&stubBackend{}, 0)
	service.deps.StatusDir = t.TempDir()

	if err := service.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !service.IsRunning() {
		t.Fatal("service should be running after Start")
	}
	// second Start is a no-op
	if err := service.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	service.Stop()
	service.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for service.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("service did not stop")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

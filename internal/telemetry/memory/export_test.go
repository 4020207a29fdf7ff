package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/antonymarion/forkQGroundControl/internal/config"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Morning Survey", "Morning_Survey"},
		{"Test: Flight", "Test__Flight"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildExport(t *testing.T) {
	b := New(config.MemoryConfig{})

	session := testSession()
	session.EndedAt = session.StartedAt.Add(90 * time.Second)
	_ = b.StartSession(session)

	_ = b.RecordTelemetry(&core.TelemetrySample{
		Time:     session.StartedAt,
		SystemID: 7,
		Position: core.Position3D{Lat: 47.5, Lon: 8.25, Alt: 412.5},
	})
	_ = b.RecordFlightEvent(&core.FlightEvent{
		Time:     session.StartedAt,
		SystemID: 7,
		Name:     "armed",
		Message:  "MAV 007 armed",
	})

	export := b.buildExport()

	if export.SessionID != session.ID {
		t.Errorf("expected SessionID=%s, got %s", session.ID, export.SessionID)
	}
	if export.Station != "GCS Alpha" {
		t.Errorf("expected Station=GCS Alpha, got %s", export.Station)
	}
	if export.Name != "Morning Survey" {
		t.Errorf("expected Name=Morning Survey, got %s", export.Name)
	}
	if export.DurationSec != 90 {
		t.Errorf("expected DurationSec=90, got %f", export.DurationSec)
	}
	if export.EndTime == nil {
		t.Error("expected EndTime to be set")
	}
	if export.Pilot.Email != "pilot@example.com" {
		t.Errorf("expected pilot email, got %s", export.Pilot.Email)
	}
	if len(export.Vehicles) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(export.Vehicles))
	}
	if export.Vehicles[0].Name != "MAV 007" {
		t.Errorf("expected vehicle name MAV 007, got %s", export.Vehicles[0].Name)
	}
	if len(export.Vehicles[0].Samples) != 1 {
		t.Errorf("expected 1 sample, got %d", len(export.Vehicles[0].Samples))
	}
	if export.Vehicles[0].TrackWKT != "" {
		t.Errorf("single-fix vehicle should have no track, got %q", export.Vehicles[0].TrackWKT)
	}
	if len(export.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(export.Events))
	}
}

func TestBuildExportTrack(t *testing.T) {
	b := New(config.MemoryConfig{})

	session := testSession()
	_ = b.StartSession(session)

	_ = b.RecordTelemetry(&core.TelemetrySample{
		Time:     session.StartedAt,
		SystemID: 7,
		Position: core.Position3D{Lat: 47.5, Lon: 8.25, Alt: 412.5},
	})
	_ = b.RecordTelemetry(&core.TelemetrySample{
		Time:     session.StartedAt.Add(time.Second),
		SystemID: 7,
		Position: core.Position3D{Lat: 47.6, Lon: 8.35, Alt: 430},
	})

	export := b.buildExport()

	if len(export.Vehicles) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(export.Vehicles))
	}
	if !strings.HasPrefix(export.Vehicles[0].TrackWKT, "LINESTRING") {
		t.Errorf("expected web mercator track WKT, got %q", export.Vehicles[0].TrackWKT)
	}
}

func TestExportJSON(t *testing.T) {
	tmpDir := t.TempDir()
	b := New(config.MemoryConfig{
		OutputDir:      tmpDir,
		CompressOutput: false,
	})

	session := testSession()
	session.EndedAt = session.StartedAt.Add(90 * time.Second)
	_ = b.StartSession(session)
	_ = b.RecordTelemetry(&core.TelemetrySample{Time: session.StartedAt, SystemID: 7})

	if err := b.EndSession(); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	f, err := os.Open(b.GetExportedFilePath())
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()

	var export SessionExport
	if err := json.NewDecoder(f).Decode(&export); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}

	if export.SessionID != session.ID {
		t.Errorf("expected SessionID=%s, got %s", session.ID, export.SessionID)
	}
	if export.DurationSec != 90 {
		t.Errorf("expected DurationSec=90, got %f", export.DurationSec)
	}
	if len(export.Vehicles) != 1 {
		t.Errorf("expected 1 vehicle, got %d", len(export.Vehicles))
	}
}

func TestExportGzipJSON(t *testing.T) {
	tmpDir := t.TempDir()
	b := New(config.MemoryConfig{
		OutputDir:      tmpDir,
		CompressOutput: true,
	})

	session := testSession()
	_ = b.StartSession(session)
	_ = b.RecordTelemetry(&core.TelemetrySample{Time: session.StartedAt, SystemID: 7})

	if err := b.EndSession(); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	f, err := os.Open(b.GetExportedFilePath())
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("failed to open gzip reader: %v", err)
	}
	defer gz.Close()

	var export SessionExport
	if err := json.NewDecoder(gz).Decode(&export); err != nil {
		t.Fatalf("failed to decode gzipped export: %v", err)
	}

	if export.Station != "GCS Alpha" {
		t.Errorf("expected Station=GCS Alpha, got %s", export.Station)
	}
}

func TestFilenameGeneration(t *testing.T) {
	tmpDir := t.TempDir()
	b := New(config.MemoryConfig{
		OutputDir:      tmpDir,
		CompressOutput: true,
	})

	session := testSession()
	session.Name = "Test: Flight"
	_ = b.StartSession(session)

	if err := b.EndSession(); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	want := "GCS_Alpha_Test__Flight_20260314_150902.json.gz"
	got := filepath.Base(b.GetExportedFilePath())
	if got != want {
		t.Errorf("expected filename %s, got %s", want, got)
	}
}

func TestExportCreatesOutputDir(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "exports")
	b := New(config.MemoryConfig{
		OutputDir:      tmpDir,
		CompressOutput: false,
	})

	_ = b.StartSession(testSession())
	if err := b.EndSession(); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	if _, err := os.Stat(b.GetExportedFilePath()); err != nil {
		t.Errorf("export file not created: %v", err)
	}
}

func TestSampleFormat(t *testing.T) {
	b := New(config.MemoryConfig{})

	session := testSession()
	_ = b.StartSession(session)

	sampleTime := session.StartedAt.Add(5 * time.Second)
	_ = b.RecordTelemetry(&core.TelemetrySample{
		Time:        sampleTime,
		SystemID:    7,
		Position:    core.Position3D{Lat: 47.5, Lon: 8.25, Alt: 412.5},
		RelativeAlt: 100.25,
		HeadingDeg:  90.5,
		Attitude:    core.Attitude{Roll: 0.25, Pitch: -0.125, Yaw: 1.5},
		Velocity:    core.Velocity{Vx: 1.5, Vy: -2.25, Vz: 0.5},
		Battery:     core.BatteryState{Voltage: 11.5, ChargeLevel: 76.5},
		GPSFix:      3,
		Satellites:  12,
		Airspeed:    5.5,
		Groundspeed: 6.25,
		Throttle:    45,
		Climb:       -0.5,
	})

	export := b.buildExport()
	if len(export.Vehicles) != 1 || len(export.Vehicles[0].Samples) != 1 {
		t.Fatal("expected exactly one sample")
	}
	sample := export.Vehicles[0].Samples[0]

	if len(sample) != 9 {
		t.Fatalf("expected 9 sample elements, got %d", len(sample))
	}
	if sample[0] != sampleTime.UnixMilli() {
		t.Errorf("expected timeMs=%d, got %v", sampleTime.UnixMilli(), sample[0])
	}

	pos, ok := sample[1].([]float64)
	if !ok || len(pos) != 4 {
		t.Fatalf("expected position 4-vector, got %v", sample[1])
	}
	if pos[0] != 47.5 || pos[1] != 8.25 || pos[2] != 412.5 || pos[3] != 100.25 {
		t.Errorf("position vector wrong: %v", pos)
	}

	if sample[2] != 90.5 {
		t.Errorf("expected heading=90.5, got %v", sample[2])
	}

	att, ok := sample[3].([]float64)
	if !ok || len(att) != 3 || att[0] != 0.25 || att[1] != -0.125 || att[2] != 1.5 {
		t.Errorf("attitude vector wrong: %v", sample[3])
	}

	vel, ok := sample[4].([]float64)
	if !ok || len(vel) != 3 || vel[0] != 1.5 || vel[1] != -2.25 || vel[2] != 0.5 {
		t.Errorf("velocity vector wrong: %v", sample[4])
	}

	if sample[5] != 76.5 {
		t.Errorf("expected battery=76.5, got %v", sample[5])
	}
	if sample[6] != uint8(3) {
		t.Errorf("expected gpsFix=3, got %v", sample[6])
	}
	if sample[7] != 12 {
		t.Errorf("expected satellites=12, got %v", sample[7])
	}

	hud, ok := sample[8].([]float64)
	if !ok || len(hud) != 4 || hud[0] != 5.5 || hud[1] != 6.25 || hud[2] != 45 || hud[3] != -0.5 {
		t.Errorf("hud vector wrong: %v", sample[8])
	}
}

func TestParamFormat(t *testing.T) {
	b := New(config.MemoryConfig{})

	session := testSession()
	_ = b.StartSession(session)

	paramTime := session.StartedAt.Add(time.Second)
	_ = b.RecordParamValue(&core.ParamValue{
		Time:        paramTime,
		SystemID:    7,
		ComponentID: 1,
		Name:        "BAT_CAPACITY",
		Value:       5200,
	})

	export := b.buildExport()
	if len(export.Vehicles) != 1 || len(export.Vehicles[0].Params) != 1 {
		t.Fatal("expected exactly one param")
	}
	param := export.Vehicles[0].Params[0]

	if len(param) != 4 {
		t.Fatalf("expected 4 param elements, got %d", len(param))
	}
	if param[0] != paramTime.UnixMilli() {
		t.Errorf("expected timeMs=%d, got %v", paramTime.UnixMilli(), param[0])
	}
	if param[1] != 1 {
		t.Errorf("expected componentId=1, got %v", param[1])
	}
	if param[2] != "BAT_CAPACITY" {
		t.Errorf("expected name=BAT_CAPACITY, got %v", param[2])
	}
	if param[3] != float32(5200) {
		t.Errorf("expected value=5200, got %v", param[3])
	}
}

func TestEventFormat(t *testing.T) {
	b := New(config.MemoryConfig{})

	session := testSession()
	_ = b.StartSession(session)

	_ = b.RecordFlightEvent(&core.FlightEvent{
		Time:     session.StartedAt,
		SystemID: 7,
		Name:     "mode_changed",
		Message:  "MAV 007 mode 4",
	})
	_ = b.RecordFlightEvent(&core.FlightEvent{
		Time:      session.StartedAt,
		SystemID:  7,
		Name:      "status_text",
		Message:   "Takeoff detected",
		ExtraData: map[string]any{"severity": 6},
	})

	export := b.buildExport()
	if len(export.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(export.Events))
	}

	plain := export.Events[0]
	if len(plain) != 4 {
		t.Errorf("expected 4 elements without extra data, got %d", len(plain))
	}
	if plain[2] != "mode_changed" {
		t.Errorf("expected name=mode_changed, got %v", plain[2])
	}

	withExtra := export.Events[1]
	if len(withExtra) != 5 {
		t.Fatalf("expected 5 elements with extra data, got %d", len(withExtra))
	}
	extra, ok := withExtra[4].(map[string]any)
	if !ok {
		t.Fatalf("expected extra data map, got %v", withExtra[4])
	}
	if extra["severity"] != 6 {
		t.Errorf("expected severity=6, got %v", extra["severity"])
	}
}

func TestEmptyExport(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.StartSession(testSession())

	export := b.buildExport()

	data, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// Empty collections must serialize as [] so the UI never sees null
	if !strings.Contains(string(data), `"vehicles":[]`) {
		t.Error("expected empty vehicles array in JSON")
	}
	if !strings.Contains(string(data), `"events":[]`) {
		t.Error("expected empty events array in JSON")
	}
}

func TestVehiclesSortedBySystemID(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.StartSession(testSession())

	_ = b.RecordTelemetry(&core.TelemetrySample{SystemID: 12})
	_ = b.RecordTelemetry(&core.TelemetrySample{SystemID: 3})
	_ = b.RecordTelemetry(&core.TelemetrySample{SystemID: 7})

	export := b.buildExport()
	if len(export.Vehicles) != 3 {
		t.Fatalf("expected 3 vehicles, got %d", len(export.Vehicles))
	}

	want := []int{3, 7, 12}
	for i, vehicle := range export.Vehicles {
		if vehicle.SystemID != want[i] {
			t.Errorf("vehicle %d: expected system ID %d, got %d", i, want[i], vehicle.SystemID)
		}
	}
}

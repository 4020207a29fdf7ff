package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/antonymarion/forkQGroundControl/internal/geo"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// SessionExport is the root JSON structure consumed by the flight review UI
type SessionExport struct {
	SessionID   string           `json:"sessionId"`
	Station     string           `json:"station"`
	Name        string           `json:"name"`
	StartTime   time.Time        `json:"startTime"`
	EndTime     *time.Time       `json:"endTime,omitempty"`
	Pilot       core.RemotePilot `json:"pilot"`
	DurationSec float64          `json:"durationSec"`
	Vehicles    []VehicleJSON    `json:"vehicles"`
	Events      [][]any          `json:"events"`
}

// VehicleJSON represents one airframe track
type VehicleJSON struct {
	SystemID int     `json:"systemId"`
	Name     string  `json:"name"`
	TrackWKT string  `json:"trackWkt,omitempty"`
	Samples  [][]any `json:"samples"`
	Params   [][]any `json:"params"`
}

// sanitizeName makes a session or station name safe for use in a filename
func sanitizeName(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

// exportJSON writes the session data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	station := sanitizeName(b.session.Station)
	name := sanitizeName(b.session.Name)
	timestamp := b.session.StartedAt.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s_%s.json.gz", station, name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s_%s.json", station, name, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() SessionExport {
	export := SessionExport{
		SessionID:   b.session.ID,
		Station:     b.session.Station,
		Name:        b.session.Name,
		StartTime:   b.session.StartedAt,
		Pilot:       b.session.Pilot,
		DurationSec: b.sessionDuration(),
		Vehicles:    make([]VehicleJSON, 0),
		Events:      make([][]any, 0),
	}
	if !b.session.EndedAt.IsZero() {
		end := b.session.EndedAt
		export.EndTime = &end
	}

	// Convert vehicle tracks, ordered by system ID for stable output
	ids := make([]int, 0, len(b.vehicles))
	for id := range b.vehicles {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		record := b.vehicles[id]
		vehicle := VehicleJSON{
			SystemID: record.SystemID,
			Name:     fmt.Sprintf("MAV %03d", record.SystemID),
			Samples:  make([][]any, 0, len(record.Samples)),
			Params:   make([][]any, 0, len(record.Params)),
		}

		// Sample format: [timeMs, [lat, lon, alt, relAlt], heading, [roll, pitch, yaw],
		// [vx, vy, vz], batteryPct, gpsFix, satellites, [airspeed, groundspeed, throttle, climb]]
		fixes := make([]core.Position3D, 0, len(record.Samples))
		for _, s := range record.Samples {
			fixes = append(fixes, s.Position)
			sample := []any{
				s.Time.UnixMilli(),
				[]float64{s.Position.Lat, s.Position.Lon, s.Position.Alt, s.RelativeAlt},
				s.HeadingDeg,
				[]float64{s.Attitude.Roll, s.Attitude.Pitch, s.Attitude.Yaw},
				[]float64{s.Velocity.Vx, s.Velocity.Vy, s.Velocity.Vz},
				s.Battery.ChargeLevel,
				s.GPSFix,
				s.Satellites,
				[]float64{s.Airspeed, s.Groundspeed, s.Throttle, s.Climb},
			}
			vehicle.Samples = append(vehicle.Samples, sample)
		}

		// Vehicles with a single fix carry no track geometry.
		if ls, err := geo.TrackLineString(fixes); err == nil {
			vehicle.TrackWKT = ls.AsText()
		}

		// Param format: [timeMs, componentId, name, value]
		for _, p := range record.Params {
			vehicle.Params = append(vehicle.Params, []any{
				p.Time.UnixMilli(),
				p.ComponentID,
				p.Name,
				p.Value,
			})
		}

		export.Vehicles = append(export.Vehicles, vehicle)
	}

	// Event format: [timeMs, systemId, name, message] plus extra data when present
	for _, evt := range b.flightEvents {
		entry := []any{
			evt.Time.UnixMilli(),
			evt.SystemID,
			evt.Name,
			evt.Message,
		}
		if len(evt.ExtraData) > 0 {
			entry = append(entry, evt.ExtraData)
		}
		export.Events = append(export.Events, entry)
	}

	return export
}

func (b *Backend) writeJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

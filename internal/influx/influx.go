package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/antonymarion/forkQGroundControl/internal/model"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// Time-series buckets written by the station.
const (
	BucketTelemetry          = "telemetry"
	BucketBattery            = "battery"
	BucketFlightEvents       = "flight_events"
	BucketStationPerformance = "station_performance"
)

// DefaultBucketNames are the InfluxDB buckets provisioned on connect.
var DefaultBucketNames = []string{
	BucketTelemetry,
	BucketBattery,
	BucketFlightEvents,
	BucketStationPerformance,
}

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
	}
}

// Connect establishes a connection to InfluxDB.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(context.Background())

	if err != nil || !running {
		m.IsValid = false
		// fall back to a gzipped line protocol file
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("InfluxDB unreachable, writing to backup file")

			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %v", err)
			}
			m.BackupWriter = gzip.NewWriter(file)
		}
	} else {
		m.IsValid = true
	}

	if m.IsValid {
		err = m.setupOrganizationAndBuckets()
		if err != nil {
			return err
		}
		m.CreateWriters()
		m.Logger.Info().Msg("InfluxDB client initialized")
	} else {
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
	}

	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	// ensure org exists
	_, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		_, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// get influxOrg
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error getting organization")
		return err
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		_, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket)
		if err != nil {
			m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

			rule := domain.RetentionRuleTypeExpire
			_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
				Type:         &rule,
				EverySeconds: 60 * 60 * 24 * 90, // 90 days
			})
			if err != nil {
				m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
				return err
			}
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		m.Logger.Trace().Str("bucket", bucket).Msg("Creating InfluxDB writer")
		m.Writers[bucket] = m.Client.WriteAPI(orgName, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)

		m.Logger.Trace().Str("bucket", bucket).Msg("InfluxDB writer created")
	}

	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		if _, ok := m.Writers[bucket]; !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		m.Writers[bucket].WritePoint(point)
	} else {
		if m.BackupWriter == nil {
			return fmt.Errorf("influxDB client not initialized and backup writer not available")
		}

		lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
		_, err := m.BackupWriter.Write([]byte(lineProtocol + "\n"))
		if err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
		}
	}

	return nil
}

// Close flushes pending writes and releases the client and backup file.
func (m *Manager) Close() {
	if m.IsValid {
		for _, writer := range m.Writers {
			writer.Flush()
		}
	}
	if m.Client != nil {
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		m.BackupWriter.Close()
	}
}

// WriteTelemetry records one vehicle telemetry sample.
func (m *Manager) WriteTelemetry(ctx context.Context, sample *core.TelemetrySample) error {
	return m.WritePoint(ctx, BucketTelemetry, TelemetryPoint(sample))
}

// WriteBattery records one battery readout.
func (m *Manager) WriteBattery(ctx context.Context, systemID int, t time.Time, battery core.BatteryState) error {
	return m.WritePoint(ctx, BucketBattery, BatteryPoint(systemID, t, battery))
}

// WriteNamedValue records one named value float reported by a vehicle.
func (m *Manager) WriteNamedValue(ctx context.Context, value *core.NamedValue) error {
	return m.WritePoint(ctx, BucketTelemetry, NamedValuePoint(value))
}

// WriteFlightEvent records one discrete flight event.
func (m *Manager) WriteFlightEvent(ctx context.Context, event *core.FlightEvent) error {
	return m.WritePoint(ctx, BucketFlightEvents, FlightEventPoint(event))
}

// WriteStationPerformance records one station performance readout.
func (m *Manager) WriteStationPerformance(ctx context.Context, perf *model.StationPerformance) error {
	return m.WritePoint(ctx, BucketStationPerformance, StationPerformancePoint(perf))
}

// TelemetryPoint converts a telemetry sample into an InfluxDB point.
func TelemetryPoint(sample *core.TelemetrySample) *influxdb2_write.Point {
	point := influxdb2_write.NewPointWithMeasurement("vehicle_telemetry")
	point.AddTag("system_id", strconv.Itoa(sample.SystemID))
	point.AddField("latitude", sample.Position.Lat)
	point.AddField("longitude", sample.Position.Lon)
	point.AddField("altitude", sample.Position.Alt)
	point.AddField("relative_altitude", sample.RelativeAlt)
	point.AddField("heading", sample.HeadingDeg)
	point.AddField("roll", sample.Attitude.Roll)
	point.AddField("pitch", sample.Attitude.Pitch)
	point.AddField("yaw", sample.Attitude.Yaw)
	point.AddField("vx", sample.Velocity.Vx)
	point.AddField("vy", sample.Velocity.Vy)
	point.AddField("vz", sample.Velocity.Vz)
	point.AddField("airspeed", sample.Airspeed)
	point.AddField("groundspeed", sample.Groundspeed)
	point.AddField("throttle", sample.Throttle)
	point.AddField("climb", sample.Climb)
	point.AddField("gps_fix", int(sample.GPSFix))
	point.AddField("satellites", sample.Satellites)
	point.SetTime(sample.Time)
	return point
}

// BatteryPoint converts a battery readout into an InfluxDB point.
func BatteryPoint(systemID int, t time.Time, battery core.BatteryState) *influxdb2_write.Point {
	point := influxdb2_write.NewPointWithMeasurement("battery_state")
	point.AddTag("system_id", strconv.Itoa(systemID))
	point.AddField("voltage", battery.Voltage)
	point.AddField("current", battery.Current)
	point.AddField("charge_level", battery.ChargeLevel)
	point.AddField("time_remaining", battery.TimeRemaining)
	point.AddField("low", battery.Low)
	point.SetTime(t)
	return point
}

// NamedValuePoint converts a named value float into an InfluxDB point.
func NamedValuePoint(value *core.NamedValue) *influxdb2_write.Point {
	point := influxdb2_write.NewPointWithMeasurement("named_value")
	point.AddTag("system_id", strconv.Itoa(value.SystemID))
	point.AddTag("name", value.Name)
	if value.Unit != "" {
		point.AddTag("unit", value.Unit)
	}
	point.AddField("value", value.Value)
	point.SetTime(value.Time)
	return point
}

// FlightEventPoint converts a flight event into an InfluxDB point.
// Extra data entries become typed fields on the point.
func FlightEventPoint(event *core.FlightEvent) *influxdb2_write.Point {
	point := influxdb2_write.NewPointWithMeasurement("flight_event")
	point.AddTag("system_id", strconv.Itoa(event.SystemID))
	point.AddTag("name", event.Name)
	point.AddField("message", event.Message)

	for key, value := range event.ExtraData {
		switch v := value.(type) {
		case string:
			point.AddField(key, v)
		case bool:
			point.AddField(key, v)
		case int:
			point.AddField(key, v)
		case int64:
			point.AddField(key, v)
		case uint8:
			point.AddField(key, int(v))
		case uint16:
			point.AddField(key, int(v))
		case float32:
			point.AddField(key, float64(v))
		case float64:
			point.AddField(key, v)
		default:
			point.AddField(key, fmt.Sprint(v))
		}
	}

	point.SetTime(event.Time)
	return point
}

// StationPerformancePoint converts a station performance row into an
// InfluxDB point. Field names mirror the database columns.
func StationPerformancePoint(perf *model.StationPerformance) *influxdb2_write.Point {
	point := influxdb2_write.NewPointWithMeasurement("station_performance")
	point.AddField("buffer_telemetry", int(perf.BufferLengths.Telemetry))
	point.AddField("buffer_flight_events", int(perf.BufferLengths.FlightEvents))
	point.AddField("buffer_raw_frames", int(perf.BufferLengths.RawFrames))
	point.AddField("buffer_param_values", int(perf.BufferLengths.ParamValues))
	point.AddField("writequeue_telemetry", int(perf.WriteQueueLengths.Telemetry))
	point.AddField("writequeue_flight_events", int(perf.WriteQueueLengths.FlightEvents))
	point.AddField("writequeue_raw_frames", int(perf.WriteQueueLengths.RawFrames))
	point.AddField("writequeue_param_values", int(perf.WriteQueueLengths.ParamValues))
	point.AddField("last_write_ms", float64(perf.LastWriteDurationMs))
	point.SetTime(perf.Time)
	return point
}

// Package config loads station configuration from a JSON file with
// sensible defaults for every key, backed by viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// StationConfig identifies this ground station on the wire and to the
// command broker.
type StationConfig struct {
	SystemID    uint8  `json:"systemId" mapstructure:"systemId"`
	ComponentID uint8  `json:"componentId" mapstructure:"componentId"`
	Serial      string `json:"serial" mapstructure:"serial"`
	Name        string `json:"name" mapstructure:"name"`
	Tag         string `json:"tag" mapstructure:"tag"`
}

// CameraDevice declares one camera component mounted on every vehicle
// this station flies. The wire catalog carries no camera discovery, so
// the profile comes from configuration.
type CameraDevice struct {
	Component    uint8  `json:"component" mapstructure:"component"`
	Model        string `json:"model" mapstructure:"model"`
	HasZoom      bool   `json:"hasZoom" mapstructure:"hasZoom"`
	ISO          string `json:"ISO" mapstructure:"ISO"`
	WhiteBalance string `json:"whiteBalance" mapstructure:"whiteBalance"`
	Aperture     string `json:"aperture" mapstructure:"aperture"`
}

// GimbalDevice declares one gimbal component with its axis limits in
// degrees. A zero min/max pair leaves the axis unclamped.
type GimbalDevice struct {
	Component uint8   `json:"component" mapstructure:"component"`
	Model     string  `json:"model" mapstructure:"model"`
	PitchMin  float64 `json:"pitchMin" mapstructure:"pitchMin"`
	PitchMax  float64 `json:"pitchMax" mapstructure:"pitchMax"`
	YawMin    float64 `json:"yawMin" mapstructure:"yawMin"`
	YawMax    float64 `json:"yawMax" mapstructure:"yawMax"`
	RollMin   float64 `json:"rollMin" mapstructure:"rollMin"`
	RollMax   float64 `json:"rollMax" mapstructure:"rollMax"`
}

// FleetConfig controls vehicle liveness tracking.
type FleetConfig struct {
	Timeout          time.Duration `json:"timeout" mapstructure:"timeout"`
	WatchdogInterval time.Duration `json:"watchdogInterval" mapstructure:"watchdogInterval"`
}

// MQTTConfig holds command broker connection settings.
type MQTTConfig struct {
	Enabled          bool          `json:"enabled" mapstructure:"enabled"`
	Broker           string        `json:"broker" mapstructure:"broker"`
	Username         string        `json:"username" mapstructure:"username"`
	Password         string        `json:"password" mapstructure:"password"`
	SnapshotInterval time.Duration `json:"snapshotInterval" mapstructure:"snapshotInterval"`
}

// MemoryConfig holds in-memory/JSON storage backend settings.
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds embedded database backend settings.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// WebsocketConfig holds live feed backend settings. The recorder dials
// out to the frontend, it does not listen.
type WebsocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the telemetry storage backend.
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Websocket WebsocketConfig `json:"websocket" mapstructure:"websocket"`
}

// OTelConfig holds OpenTelemetry export settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// StreamConfig holds video pipeline settings. RTMPHost and RTMPApp
// form the publish point, rtmp://<host>/<app>/<serial>.
type StreamConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Pipeline string `json:"pipeline" mapstructure:"pipeline"`
	Source   string `json:"source" mapstructure:"source"`
	RTMPHost string `json:"rtmpHost" mapstructure:"rtmpHost"`
	RTMPApp  string `json:"rtmpApp" mapstructure:"rtmpApp"`
}

// Load reads configuration from a JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./gcslogs")

	viper.SetDefault("station.systemId", 255)
	viper.SetDefault("station.componentId", 190)
	viper.SetDefault("station.serial", "gcs-0")
	viper.SetDefault("station.name", "Ground Station")
	viper.SetDefault("station.tag", "")

	viper.SetDefault("devices.cameras", []map[string]any{})
	viper.SetDefault("devices.gimbals", []map[string]any{})

	viper.SetDefault("link.udp.enabled", true)
	viper.SetDefault("link.udp.listen", ":14550")
	viper.SetDefault("link.serial.enabled", false)
	viper.SetDefault("link.serial.device", "/dev/ttyUSB0")
	viper.SetDefault("link.serial.baud", 57600)

	viper.SetDefault("fleet.timeout", "3500ms")
	viper.SetDefault("fleet.watchdogInterval", "500ms")

	viper.SetDefault("vehicle.attitudeStamped", false)

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.snapshotInterval", "2s")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "gcs")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./gcs.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5001/ws")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "gcs-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "gcsd")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("stream.enabled", false)
	viper.SetDefault("stream.pipeline",
		"rtspsrc location={source} latency=0 ! rtph264depay ! h264parse ! flvmux streamable=true ! rtmpsink location={output}")
	viper.SetDefault("stream.source", "rtsp://192.168.42.1:554/live")
	viper.SetDefault("stream.rtmpHost", "ome.stationdrone.net")
	viper.SetDefault("stream.rtmpApp", "app")

	viper.SetDefault("audio.enabled", true)

	viper.SetConfigName("gcsd.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStation returns the station identity settings.
func GetStation() StationConfig {
	return StationConfig{
		SystemID:    uint8(viper.GetInt("station.systemId")),
		ComponentID: uint8(viper.GetInt("station.componentId")),
		Serial:      viper.GetString("station.serial"),
		Name:        viper.GetString("station.name"),
		Tag:         viper.GetString("station.tag"),
	}
}

// GetDevices returns the configured camera and gimbal profile.
func GetDevices() (cameras []CameraDevice, gimbals []GimbalDevice, err error) {
	if err = viper.UnmarshalKey("devices.cameras", &cameras); err != nil {
		return nil, nil, fmt.Errorf("error reading devices.cameras: %v", err)
	}
	if err = viper.UnmarshalKey("devices.gimbals", &gimbals); err != nil {
		return nil, nil, fmt.Errorf("error reading devices.gimbals: %v", err)
	}
	return cameras, gimbals, nil
}

// GetFleetConfig returns vehicle liveness settings.
func GetFleetConfig() FleetConfig {
	return FleetConfig{
		Timeout:          viper.GetDuration("fleet.timeout"),
		WatchdogInterval: viper.GetDuration("fleet.watchdogInterval"),
	}
}

// GetMQTTConfig returns command broker settings.
func GetMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Enabled:          viper.GetBool("mqtt.enabled"),
		Broker:           viper.GetString("mqtt.broker"),
		Username:         viper.GetString("mqtt.username"),
		Password:         viper.GetString("mqtt.password"),
		SnapshotInterval: viper.GetDuration("mqtt.snapshotInterval"),
	}
}

// GetStorageConfig returns the telemetry storage settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Websocket: WebsocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
	}
}

// GetOTelConfig returns OpenTelemetry export settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetStreamConfig returns video pipeline settings.
func GetStreamConfig() StreamConfig {
	return StreamConfig{
		Enabled:  viper.GetBool("stream.enabled"),
		Pipeline: viper.GetString("stream.pipeline"),
		Source:   viper.GetString("stream.source"),
		RTMPHost: viper.GetString("stream.rtmpHost"),
		RTMPApp:  viper.GetString("stream.rtmpApp"),
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gcsd.cfg.json"), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"station": { "systemId": 250, "serial": "gcs-field-3" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, uint8(250), GetStation().SystemID)
	assert.Equal(t, "gcs-field-3", GetStation().Serial)
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./gcslogs", viper.GetString("logsDir"))
	assert.Equal(t, "http://localhost:5000", viper.GetString("api.serverUrl"))
	assert.Equal(t, "", viper.GetString("api.apiKey"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, true, viper.GetBool("link.udp.enabled"))
	assert.Equal(t, ":14550", viper.GetString("link.udp.listen"))
	assert.Equal(t, false, viper.GetBool("link.serial.enabled"))
	assert.Equal(t, 57600, viper.GetInt("link.serial.baud"))
	assert.Equal(t, false, viper.GetBool("vehicle.attitudeStamped"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, true, viper.GetBool("audio.enabled"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetStation_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	st := GetStation()
	assert.Equal(t, uint8(255), st.SystemID)
	assert.Equal(t, uint8(190), st.ComponentID)
	assert.Equal(t, "gcs-0", st.Serial)
	assert.Equal(t, "Ground Station", st.Name)
	assert.Equal(t, "", st.Tag)
}

func TestGetDevices(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"devices": {
			"cameras": [
				{ "component": 100, "model": "Zenmuse Z30", "hasZoom": true, "ISO": "auto" }
			],
			"gimbals": [
				{ "component": 154, "model": "G3", "pitchMin": -90, "pitchMax": 30 }
			]
		}
	}`)
	require.NoError(t, Load(dir))

	cams, gims, err := GetDevices()
	require.NoError(t, err)
	require.Len(t, cams, 1)
	assert.Equal(t, uint8(100), cams[0].Component)
	assert.Equal(t, "Zenmuse Z30", cams[0].Model)
	assert.True(t, cams[0].HasZoom)
	assert.Equal(t, "auto", cams[0].ISO)
	require.Len(t, gims, 1)
	assert.Equal(t, uint8(154), gims[0].Component)
	assert.Equal(t, -90.0, gims[0].PitchMin)
	assert.Equal(t, 30.0, gims[0].PitchMax)
}

func TestGetDevices_NoneConfigured(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cams, gims, err := GetDevices()
	require.NoError(t, err)
	assert.Empty(t, cams)
	assert.Empty(t, gims)
}

func TestGetFleetConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	fc := GetFleetConfig()
	assert.Equal(t, 3500*time.Millisecond, fc.Timeout)
	assert.Equal(t, 500*time.Millisecond, fc.WatchdogInterval)
}

func TestGetMQTTConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"mqtt": {
			"enabled": true,
			"broker": "tcp://broker.example:1883",
			"username": "gcs",
			"snapshotInterval": "5s"
		}
	}`)
	require.NoError(t, Load(dir))

	mc := GetMQTTConfig()
	assert.Equal(t, true, mc.Enabled)
	assert.Equal(t, "tcp://broker.example:1883", mc.Broker)
	assert.Equal(t, "gcs", mc.Username)
	assert.Equal(t, 5*time.Second, mc.SnapshotInterval)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "memory", sc.Type)
	assert.Equal(t, "./recordings", sc.Memory.OutputDir)
	assert.Equal(t, true, sc.Memory.CompressOutput)
	assert.Equal(t, "./gcs.db", sc.SQLite.Path)
	assert.Equal(t, 3*time.Minute, sc.SQLite.DumpInterval)
	assert.Equal(t, "ws://localhost:5001/ws", sc.Websocket.URL)
	assert.Equal(t, "", sc.Websocket.Secret)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "dumpInterval": "10m" }
		}
	}`)
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	oc := GetOTelConfig()
	assert.Equal(t, false, oc.Enabled)
	assert.Equal(t, "gcsd", oc.ServiceName)
	assert.Equal(t, 5*time.Second, oc.BatchTimeout)
	assert.Equal(t, "", oc.Endpoint)
	assert.Equal(t, true, oc.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)
	require.NoError(t, Load(dir))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetStreamConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"stream": { "enabled": true, "pipeline": "rtspsrc location=rtsp://cam ! fakesink" }
	}`)
	require.NoError(t, Load(dir))

	st := GetStreamConfig()
	assert.Equal(t, true, st.Enabled)
	assert.Equal(t, "rtspsrc location=rtsp://cam ! fakesink", st.Pipeline)
	// untouched keys keep their defaults
	assert.Equal(t, "ome.stationdrone.net", st.RTMPHost)
	assert.Equal(t, "app", st.RTMPApp)
}

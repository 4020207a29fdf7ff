package telemetry_test

import (
	"testing"

	"github.com/antonymarion/forkQGroundControl/internal/config"
	"github.com/antonymarion/forkQGroundControl/internal/telemetry"
	gormstorage "github.com/antonymarion/forkQGroundControl/internal/telemetry/gorm"
	"github.com/antonymarion/forkQGroundControl/internal/telemetry/memory"
	"github.com/antonymarion/forkQGroundControl/internal/telemetry/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks for every backend.
var (
	_ telemetry.Backend    = (*gormstorage.Backend)(nil)
	_ telemetry.Backend    = (*memory.Backend)(nil)
	_ telemetry.Backend    = (*websocket.Backend)(nil)
	_ telemetry.Uploadable = (*memory.Backend)(nil)
	_ telemetry.LiveFeed   = (*websocket.Backend)(nil)
)

func TestNewBackend_Memory(t *testing.T) {
	b, err := telemetry.NewBackend(config.StorageConfig{Type: "memory"}, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, b)

	_, ok := b.(telemetry.Uploadable)
	assert.True(t, ok, "memory backend should be uploadable")
}

func TestNewBackend_Websocket(t *testing.T) {
	b, err := telemetry.NewBackend(config.StorageConfig{Type: "websocket"}, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, b)

	_, ok := b.(telemetry.LiveFeed)
	assert.True(t, ok, "websocket backend should stream a live feed")
}

func TestNewBackend_GormRequiresDatabaseManager(t *testing.T) {
	for _, storageType := range []string{"gorm", "postgres", "sqlite"} {
		_, err := telemetry.NewBackend(config.StorageConfig{Type: storageType}, nil, nil)
		require.Error(t, err, storageType)
		assert.Contains(t, err.Error(), "requires a database manager")
	}
}

func TestNewBackend_UnknownType(t *testing.T) {
	_, err := telemetry.NewBackend(config.StorageConfig{Type: "carrier-pigeon"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}

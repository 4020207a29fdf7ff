package telemetry

import (
	"fmt"

	"github.com/antonymarion/forkQGroundControl/internal/config"
	"github.com/antonymarion/forkQGroundControl/internal/database"
	"github.com/antonymarion/forkQGroundControl/internal/logging"
	gormstorage "github.com/antonymarion/forkQGroundControl/internal/telemetry/gorm"
	"github.com/antonymarion/forkQGroundControl/internal/telemetry/memory"
	"github.com/antonymarion/forkQGroundControl/internal/telemetry/websocket"
)

// NewBackend creates a recording backend based on configuration. The
// gorm family needs a connected database manager; memory and websocket
// run without one.
func NewBackend(cfg config.StorageConfig, db *database.Manager, logManager *logging.SlogManager) (Backend, error) {
	switch cfg.Type {
	case "gorm", "postgres", "sqlite":
		if db == nil {
			return nil, fmt.Errorf("storage type %s requires a database manager", cfg.Type)
		}
		return gormstorage.New(gormstorage.Dependencies{
			DB:              db.DB,
			LogManager:      logManager,
			Tag:             config.GetStation().Tag,
			IsDatabaseValid: func() bool { return db.IsValid },
			ShouldSaveLocal: func() bool { return db.ShouldSaveLocal },
			DumpToDisk:      db.DumpMemoryToDisk,
			DumpInterval:    cfg.SQLite.DumpInterval,
		}), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	case "websocket":
		return websocket.New(cfg.Websocket), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

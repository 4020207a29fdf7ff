package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/antonymarion/forkQGroundControl/internal/api"
	"github.com/antonymarion/forkQGroundControl/internal/bridge"
	"github.com/antonymarion/forkQGroundControl/internal/cache"
	"github.com/antonymarion/forkQGroundControl/internal/camera"
	"github.com/antonymarion/forkQGroundControl/internal/channel"
	"github.com/antonymarion/forkQGroundControl/internal/config"
	"github.com/antonymarion/forkQGroundControl/internal/database"
	"github.com/antonymarion/forkQGroundControl/internal/dispatcher"
	"github.com/antonymarion/forkQGroundControl/internal/fleet"
	"github.com/antonymarion/forkQGroundControl/internal/handlers"
	"github.com/antonymarion/forkQGroundControl/internal/influx"
	"github.com/antonymarion/forkQGroundControl/internal/link"
	"github.com/antonymarion/forkQGroundControl/internal/logging"
	"github.com/antonymarion/forkQGroundControl/internal/monitor"
	"github.com/antonymarion/forkQGroundControl/internal/notify"
	"github.com/antonymarion/forkQGroundControl/internal/otel"
	"github.com/antonymarion/forkQGroundControl/internal/session"
	"github.com/antonymarion/forkQGroundControl/internal/stream"
	"github.com/antonymarion/forkQGroundControl/internal/telemetry"
	gormstorage "github.com/antonymarion/forkQGroundControl/internal/telemetry/gorm"
	"github.com/antonymarion/forkQGroundControl/internal/vehicle"
	"github.com/antonymarion/forkQGroundControl/internal/wire"
	"github.com/antonymarion/forkQGroundControl/internal/worker"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

var (
	configDir   string
	sessionName string
	replayPath  string
	simulated   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ground station daemon",
	Long: `Run the ground station until interrupted.

serve opens the configured vehicle links (UDP, serial, or a replay log),
starts the flight recorder against the configured storage backend and,
when enabled, connects to the frontend command broker and the video
pipeline. A session is recorded from startup to shutdown and uploaded
to the fleet frontend if the backend produced an export file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing gcsd.cfg.json")
	serveCmd.Flags().StringVar(&sessionName, "session", "", "Session name (default flight_<timestamp>)")
	serveCmd.Flags().StringVar(&replayPath, "replay", "", "Replay a recorded telemetry log instead of opening links")
	serveCmd.Flags().BoolVar(&simulated, "simulated", false, "Report the station as simulated to the frontend")
	rootCmd.AddCommand(serveCmd)
}

// TimescaleDB hypertable layout for the Postgres backend, table name to
// compression segmentby columns.
var hypertables = map[string][]string{
	"telemetry_samples":    {"session_id", "system_id"},
	"flight_events":        {"session_id", "system_id"},
	"raw_frames":           {"session_id", "system_id"},
	"param_values":         {"session_id", "system_id"},
	"station_performances": {"session_id"},
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}

	logManager, provider, err := setupLogging(logsDir)
	if err != nil {
		return err
	}
	defer provider.Shutdown(context.Background())
	logger := logManager.Logger()

	station := config.GetStation()
	logger.Info("Starting ground station",
		"station", station.Name,
		"serial", station.Serial,
		"version", buildVersion,
	)

	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	storageCfg := config.GetStorageConfig()
	var db *database.Manager
	switch storageCfg.Type {
	case "gorm", "postgres", "sqlite":
		db = database.NewManager(zlog)
		if err := db.Connect(); err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		if err := db.Setup(); err != nil {
			return fmt.Errorf("preparing database schema: %w", err)
		}
	}
	backend, err := telemetry.NewBackend(storageCfg, db, logManager)
	if err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}

	// When the connection fails the manager still captures points in
	// its line-protocol backup file.
	var influxManager *influx.Manager
	if config.GetBool("influx.enabled") {
		influxManager = influx.NewManager(zlog, filepath.Join(logsDir, "influx_backup.line"))
		if err := influxManager.Connect(); err != nil {
			logger.Error("InfluxDB connection failed", "error", err)
		}
	}

	events := notify.NewBroadcaster()
	workerManager := worker.NewManager(worker.Dependencies{
		LogManager: logManager,
		Influx:     influxManager,
	}, backend)

	var audio notify.Audio = notify.NopAudio{}
	if config.GetBool("audio.enabled") {
		audio = notify.NewLogAudio(logger)
	}

	enc := wire.NewEncoder(station.SystemID, station.ComponentID)
	profile, err := deviceProfile()
	if err != nil {
		return err
	}
	fleetCfg := config.GetFleetConfig()
	fleetOpts := []fleet.Option{
		fleet.WithTimeout(fleetCfg.Timeout),
		fleet.WithWatchdogInterval(fleetCfg.WatchdogInterval),
		fleet.WithDeviceProfile(profile),
	}
	if config.GetBool("vehicle.attitudeStamped") {
		fleetOpts = append(fleetOpts, fleet.WithVehicleOptions(vehicle.WithAttitudeStamped()))
	}
	flt := fleet.New(enc, events, audio, logger, fleetOpts...)

	recorder := worker.NewRecorder(workerManager, worker.RecorderDependencies{
		Events: events,
		Snapshot: func(systemID int) (core.VehicleSnapshot, bool) {
			v := flt.Vehicle(systemID)
			if v == nil {
				return core.VehicleSnapshot{}, false
			}
			return v.Snapshot(), true
		},
		Logger: logger,
	})

	apiClient := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
	pilots := cache.NewPilotCache()
	var pilot core.RemotePilot
	if err := apiClient.Healthcheck(); err != nil {
		logger.Warn("Fleet frontend unreachable", "error", err)
	} else if pilot, err = apiClient.RemotePilot(station.Serial); err != nil {
		logger.Warn("Remote pilot lookup failed", "error", err)
	} else {
		pilots.Set(station.Serial, pilot)
	}

	name := sessionName
	if name == "" {
		name = "flight_" + time.Now().UTC().Format("20060102_150405")
	}
	sessions := session.NewContext()
	sess := sessions.Begin(station.Serial, name, pilot)
	if err := backend.StartSession(sess); err != nil {
		return fmt.Errorf("starting session %s: %w", name, err)
	}

	logManager.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{
			slog.Int("vehicles", flt.Len()),
			slog.String("session", sess.ID),
		}
	})

	workerManager.Start()
	recorder.Start()
	flt.Start()

	disp, err := dispatcher.New(logging.NewDispatcherLogger(logger))
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	streamCfg := config.GetStreamConfig()
	hdeps := handlers.Dependencies{
		Fleet:        flt,
		PilotCache:   pilots,
		FetchPilot:   apiClient.RemotePilot,
		LogManager:   logManager,
		Serial:       station.Serial,
		BuildVersion: buildVersion,
		Simulated:    simulated,
	}
	if streamCfg.Enabled {
		hdeps.Stream = stream.NewManager(stream.Config{
			Pipeline: streamCfg.Pipeline,
			Source:   streamCfg.Source,
			RTMPHost: streamCfg.RTMPHost,
			RTMPApp:  streamCfg.RTMPApp,
		}, logger)
	}
	handlerSvc := handlers.NewService(hdeps)
	handlerSvc.Register(disp)

	var bridgeSvc *bridge.Service
	mqttCfg := config.GetMQTTConfig()
	if mqttCfg.Enabled {
		bridgeSvc = bridge.NewService(bridge.Config{
			Broker:           mqttCfg.Broker,
			Username:         mqttCfg.Username,
			Password:         mqttCfg.Password,
			Serial:           station.Serial,
			SnapshotInterval: mqttCfg.SnapshotInterval,
		}, bridge.Dependencies{
			Dispatcher: disp,
			Source:     handlerSvc,
			LogManager: logManager,
		})
		if err := bridgeSvc.Start(); err != nil {
			logger.Error("Command bridge failed to start", "error", err)
		}
	}

	monDeps := monitor.Dependencies{
		LogManager:      logManager,
		WorkerManager:   workerManager,
		Influx:          influxManager,
		StatusDir:       logsDir,
		IsDatabaseValid: func() bool { return false },
		SessionRowID:    func() uint { return 0 },
	}
	if db != nil {
		monDeps.DB = db.DB
		monDeps.IsDatabaseValid = func() bool { return db.IsValid }
	}
	if gb, ok := backend.(*gormstorage.Backend); ok {
		monDeps.SessionRowID = gb.SessionRowID
	}
	monitorSvc := monitor.NewService(monDeps)
	if db != nil && db.IsValid && !db.ShouldSaveLocal {
		if err := monitorSvc.ValidateHypertables(hypertables); err != nil {
			logger.Error("Hypertable validation failed", "error", err)
		}
	}
	if err := monitorSvc.Start(); err != nil {
		logger.Error("Status monitor failed to start", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	links, err := openLinks()
	if err != nil {
		return err
	}
	if len(links) == 0 {
		logger.Warn("No links configured, no vehicle traffic will arrive")
	}

	inbound := channel.New[link.Inbound](1024)
	var pumps sync.WaitGroup
	for _, l := range links {
		pumps.Add(1)
		go func(l link.Link) {
			defer pumps.Done()
			link.ReadPump(ctx, l, inbound, logger)
		}(l)
	}

	// Single goroutine owns all vehicle mutations.
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		for in := range inbound.Receive() {
			flt.HandleFrame(in.Link, in.Frame)
			workerManager.OfferRawFrame(in.Frame)
		}
	}()

	logger.Info("Ground station ready",
		"links", len(links),
		"storage", storageCfg.Type,
		"bridge", mqttCfg.Enabled,
		"session", name,
	)

	<-ctx.Done()
	logger.Info("Shutting down")

	if bridgeSvc != nil {
		bridgeSvc.Stop()
	}
	monitorSvc.Stop()

	// Closing the links unblocks the pumps; the dispatch goroutine
	// drains whatever they already decoded before the channel closes.
	for _, l := range links {
		l.Close()
	}
	pumps.Wait()
	inbound.Close()
	<-dispatchDone

	flt.Stop()
	recorder.Stop()
	workerManager.Stop()

	if err := backend.EndSession(); err != nil {
		logger.Error("Ending session failed", "error", err)
	}
	sessions.End()

	if up, ok := backend.(telemetry.Uploadable); ok {
		if path := up.GetExportedFilePath(); path != "" {
			if err := apiClient.Upload(path, up.GetExportMetadata()); err != nil {
				logger.Error("Session upload failed", "file", path, "error", err)
			} else {
				logger.Info("Session uploaded", "file", path)
			}
		}
	}

	if err := backend.Close(); err != nil {
		logger.Error("Closing storage backend failed", "error", err)
	}
	if influxManager != nil {
		influxManager.Close()
	}

	logger.Info("Shutdown complete", "session", name)
	return nil
}

// setupLogging creates the rotated log file, the optional OTel export
// and the optional GELF handler, and installs the combined handler.
func setupLogging(logsDir string) (*logging.SlogManager, *otel.Provider, error) {
	logPath := filepath.Join(logsDir, "gcsd.log")
	if _, err := os.Stat(logPath); err == nil {
		os.Rename(logPath, logPath+".old")
	}
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("creating log file: %w", err)
	}

	otelCfg := config.GetOTelConfig()
	ocfg := otel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	}
	if otelCfg.Enabled {
		otelFile, err := os.Create(filepath.Join(logsDir, "otel.log"))
		if err != nil {
			return nil, nil, fmt.Errorf("creating otel log file: %w", err)
		}
		ocfg.LogWriter = otelFile
	}
	provider, err := otel.New(ocfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing otel provider: %w", err)
	}

	var extra []slog.Handler
	if config.GetBool("graylog.enabled") {
		w, err := gelf.NewWriter(config.GetString("graylog.address"))
		if err != nil {
			return nil, nil, fmt.Errorf("dialing graylog: %w", err)
		}
		extra = append(extra, logging.NewGelfHandler(w, slog.LevelInfo))
	}

	m := logging.NewSlogManager()
	m.Setup(logFile, config.GetString("logLevel"), provider.LoggerProvider(), extra...)
	return m, provider, nil
}

// deviceProfile converts the configured camera and gimbal declarations
// into the fleet's device profile.
func deviceProfile() (fleet.DeviceProfile, error) {
	cams, gims, err := config.GetDevices()
	if err != nil {
		return fleet.DeviceProfile{}, err
	}
	p := fleet.DeviceProfile{}
	for _, c := range cams {
		p.Cameras = append(p.Cameras, camera.Spec{
			Component: c.Component,
			Model:     c.Model,
			HasZoom:   c.HasZoom,
			Intrinsics: camera.Intrinsics{
				ISO:          c.ISO,
				WhiteBalance: c.WhiteBalance,
				Aperture:     c.Aperture,
			},
		})
	}
	for _, g := range gims {
		p.Gimbals = append(p.Gimbals, camera.GimbalSpec{
			Component: g.Component,
			Model:     g.Model,
			Pitch:     camera.Range{Min: g.PitchMin, Max: g.PitchMax},
			Yaw:       camera.Range{Min: g.YawMin, Max: g.YawMax},
			Roll:      camera.Range{Min: g.RollMin, Max: g.RollMax},
		})
	}
	return p, nil
}

// openLinks opens the configured transports, or a single replay link
// when --replay is set.
func openLinks() ([]link.Link, error) {
	if replayPath != "" {
		f, err := os.Open(replayPath)
		if err != nil {
			return nil, fmt.Errorf("opening replay log: %w", err)
		}
		return []link.Link{link.NewReplay(filepath.Base(replayPath), f)}, nil
	}

	var links []link.Link
	if config.GetBool("link.udp.enabled") {
		l, err := link.ListenUDP("udp0", config.GetString("link.udp.listen"))
		if err != nil {
			return nil, fmt.Errorf("opening UDP link: %w", err)
		}
		links = append(links, l)
	}
	if config.GetBool("link.serial.enabled") {
		l, err := link.OpenSerial("serial0", config.GetString("link.serial.device"), config.GetInt("link.serial.baud"))
		if err != nil {
			return nil, fmt.Errorf("opening serial link: %w", err)
		}
		links = append(links, l)
	}
	return links, nil
}

// Package bridge connects the station to the remote command broker.
package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/antonymarion/forkQGroundControl/internal/dispatcher"
	"github.com/antonymarion/forkQGroundControl/internal/logging"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// DefaultSnapshotInterval paces the periodic POSITION and REMOTE_PILOT
// publications when the configuration does not set one.
const DefaultSnapshotInterval = 2000 * time.Millisecond

// reconnectDelay paces redial attempts after the first immediate one.
const reconnectDelay = 5 * time.Second

// Config holds broker connection settings for the bridge.
type Config struct {
	Broker           string
	Username         string
	Password         string
	Serial           string
	SnapshotInterval time.Duration
}

// SnapshotSource produces the periodic telemetry payloads published to
// POSITION/<serial> and REMOTE_PILOT/<serial>. A *handlers.Service
// satisfies it.
type SnapshotSource interface {
	PositionPayload() (map[string]any, error)
	RemotePilotPayload() (map[string]any, error)
}

// Dependencies holds all dependencies for the bridge service
type Dependencies struct {
	Dispatcher *dispatcher.Dispatcher
	Source     SnapshotSource
	LogManager *logging.SlogManager
}

// Service manages the broker connection, the request/response cycle and
// the snapshot loop
type Service struct {
	cfg       Config
	deps      Dependencies
	client    mqtt.Client
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new bridge service
func NewService(cfg Config, deps Dependencies) *Service {
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = DefaultSnapshotInterval
	}
	return &Service{
		cfg:      cfg,
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the bridge is connected and serving requests
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Start connects to the broker and begins serving requests. The request
// subscription is established by the connect handler so it is restored on
// every redial.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(uuid.NewString())
	opts.SetCleanSession(false)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetAutoReconnect(false)
	opts.SetOnConnectHandler(s.onConnect)
	opts.SetConnectionLostHandler(s.onConnectionLost)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connecting to command broker %s: %w", s.cfg.Broker, token.Error())
	}

	s.client = client
	s.isRunning = true
	s.stopChan = make(chan struct{})
	go s.snapshotLoop(s.stopChan)
	return nil
}

// Stop ends the snapshot loop and disconnects from the broker
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
	if s.client != nil {
		s.client.Disconnect(250)
		s.client = nil
	}
}

func (s *Service) onConnect(client mqtt.Client) {
	logger := s.deps.LogManager.Logger()

	topic := "REQUEST/+/" + s.cfg.Serial + "/+"
	if token := client.Subscribe(topic, 1, s.handleRequest); token.Wait() && token.Error() != nil {
		logger.Error("Error subscribing to request topic", "topic", topic, "error", token.Error())
		return
	}
	logger.Info("Command broker connected", "broker", s.cfg.Broker, "topic", topic)
}

// onConnectionLost redials until the broker comes back or the service stops.
func (s *Service) onConnectionLost(client mqtt.Client, err error) {
	logger := s.deps.LogManager.Logger()
	logger.Error("Command broker connection lost", "error", err)

	for {
		s.mu.RLock()
		stop := s.stopChan
		s.mu.RUnlock()
		if stop == nil {
			return
		}

		if token := client.Connect(); token.Wait() && token.Error() == nil {
			return
		}

		select {
		case <-stop:
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// handleRequest serves a single inbound request. The decoded request is
// mutated with the handler result and published back, so the requester
// always receives exactly one response echoing its correlation fields.
func (s *Service) handleRequest(client mqtt.Client, msg mqtt.Message) {
	logger := s.deps.LogManager.Logger()

	// REQUEST/<requester>/<serial>/<requestId>
	parts := strings.Split(msg.Topic(), "/")
	if len(parts) != 4 {
		logger.Error("Dropping request with malformed topic", "topic", msg.Topic())
		return
	}
	serial, requestID := parts[2], parts[3]

	request := map[string]any{}
	if err := json.Unmarshal(msg.Payload(), &request); err != nil {
		// Keep going with an empty request so the requester still gets
		// an answer.
		logger.Error("Error decoding request payload", "topic", msg.Topic(), "error", err)
	}

	instruction, _ := request["instruction"].(string)
	logger.Info("Received instruction", "instruction", instruction, "serial", serial, "requestId", requestID)

	if !s.deps.Dispatcher.HasHandler(instruction) {
		request["status"] = "KO"
		request["error"] = "KO"
		s.respond(client, request, parts)
		return
	}

	result, err := s.deps.Dispatcher.Dispatch(dispatcher.Event{
		Instruction: instruction,
		Serial:      serial,
		Payload:     msg.Payload(),
		RequestID:   requestID,
		Timestamp:   time.Now(),
	})
	if err != nil {
		logger.Error("Instruction failed", "instruction", instruction, "serial", serial, "error", err)
		request["status"] = "KO"
		request["error"] = err.Error()
	} else if fields, ok := result.(map[string]any); ok {
		for k, v := range fields {
			request[k] = v
		}
	}

	s.respond(client, request, parts)
}

// respond publishes the mutated request to its response topic at QoS 1.
// A responseTopic field declared in the request wins over the mirrored
// default.
func (s *Service) respond(client mqtt.Client, request map[string]any, parts []string) {
	topic, _ := request["responseTopic"].(string)
	if topic == "" {
		topic = "RESPONSE/" + parts[1] + "/" + parts[2] + "/" + parts[3]
	}
	s.publish(client, topic, 1, request)
}

func (s *Service) publish(client mqtt.Client, topic string, qos byte, payload map[string]any) {
	logger := s.deps.LogManager.Logger()

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding payload", "topic", topic, "error", err)
		return
	}

	// Waiting on the token here would block the router goroutine that
	// delivers inbound messages.
	token := client.Publish(topic, qos, false, body)
	go func() {
		if token.Wait() && token.Error() != nil {
			logger.Error("Error publishing", "topic", topic, "error", token.Error())
		}
	}()
}

func (s *Service) snapshotLoop(stop chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.publishSnapshots()
		}
	}
}

// publishSnapshots pushes one position and one remote pilot payload.
// Snapshots are best effort: no vehicle or no connection skips the cycle
// instead of failing it.
func (s *Service) publishSnapshots() {
	logger := s.deps.LogManager.Logger()

	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil || !client.IsConnectionOpen() {
		logger.Debug("Skipping snapshots, broker not connected")
		return
	}

	if position, err := s.deps.Source.PositionPayload(); err != nil {
		logger.Debug("Skipping position snapshot", "error", err)
	} else {
		s.publish(client, "POSITION/"+s.cfg.Serial, 0, position)
	}

	if pilot, err := s.deps.Source.RemotePilotPayload(); err != nil {
		logger.Debug("Skipping remote pilot snapshot", "error", err)
	} else {
		s.publish(client, "REMOTE_PILOT/"+s.cfg.Serial, 0, pilot)
	}
}

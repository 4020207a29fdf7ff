package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// DefaultPipeline relays an RTSP camera feed to the RTMP publish point
// without re-encoding.
const DefaultPipeline = "rtspsrc location={source} ! rtph264depay ! h264parse ! flvmux streamable=true ! rtmpsink location={output}"

// Config holds the launch template and publish point. The template may
// reference {source} and {output}, both replaced at start time.
type Config struct {
	Pipeline string
	Source   string
	RTMPHost string
	RTMPApp  string
}

// Manager owns the station's single video stream: it builds the publish
// URL, starts the pipeline and clears the slot again when the pipeline
// ends on its own.
type Manager struct {
	cfg     Config
	logger  *slog.Logger
	factory Factory

	mu        sync.Mutex
	pipeline  Pipeline
	worker    *Worker
	cancel    context.CancelFunc
	serial    string
	url       string
	streaming bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithFactory replaces the subprocess pipeline constructor.
func WithFactory(f Factory) Option {
	return func(m *Manager) { m.factory = f }
}

// NewManager creates a stream manager.
func NewManager(cfg Config, logger *slog.Logger, opts ...Option) *Manager {
	if cfg.Pipeline == "" {
		cfg.Pipeline = DefaultPipeline
	}
	m := &Manager{
		cfg:     cfg,
		logger:  logger,
		factory: NewLaunchPipeline,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartStream publishes the camera feed for the given vehicle serial and
// returns the resulting RTMP URL. Starting a stream that is already
// running returns the current URL.
func (m *Manager) StartStream(serial string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streaming {
		if m.serial == serial {
			return m.url, nil
		}
		return "", fmt.Errorf("stream already active for %s", m.serial)
	}

	url := "rtmp://" + m.cfg.RTMPHost + "/" + m.cfg.RTMPApp + "/" + serial
	desc := strings.ReplaceAll(m.cfg.Pipeline, "{source}", m.cfg.Source)
	desc = strings.ReplaceAll(desc, "{output}", url)

	p := m.factory(desc)
	if err := p.Start(); err != nil {
		return "", fmt.Errorf("starting pipeline: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(p.Bus(), m.logger)
	w.Start(ctx)

	m.pipeline, m.worker, m.cancel = p, w, cancel
	m.serial, m.url, m.streaming = serial, url, true
	go m.reap(w, serial)

	m.logger.Info("Stream started", "serial", serial, "url", url)
	return url, nil
}

// StopStream tears the pipeline down, then waits for the worker to
// drain. Stopping when no stream is active is a no-op.
func (m *Manager) StopStream(serial string) error {
	m.mu.Lock()
	p, w, cancel := m.pipeline, m.worker, m.cancel
	m.pipeline, m.worker, m.cancel = nil, nil, nil
	m.serial, m.url, m.streaming = "", "", false
	m.mu.Unlock()

	if p == nil {
		return nil
	}
	if err := p.Stop(); err != nil {
		return fmt.Errorf("stopping pipeline: %w", err)
	}
	if cancel != nil {
		cancel()
	}
	if w != nil {
		<-w.Done()
	}
	m.logger.Info("Stream stopped", "serial", serial)
	return nil
}

// IsStreaming reports whether a stream is active for the serial.
func (m *Manager) IsStreaming(serial string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streaming && m.serial == serial
}

// StreamURL returns the active publish URL for the serial, or empty.
func (m *Manager) StreamURL(serial string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.streaming || m.serial != serial {
		return ""
	}
	return m.url
}

// reap clears the active slot when the worker exits on its own, for
// example after a pipeline error or end of stream.
func (m *Manager) reap(w *Worker, serial string) {
	<-w.Done()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.worker != w {
		return
	}
	if m.pipeline != nil {
		m.pipeline.Stop()
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.pipeline, m.worker, m.cancel = nil, nil, nil
	m.serial, m.url, m.streaming = "", "", false
	m.logger.Info("Stream ended", "serial", serial)
}

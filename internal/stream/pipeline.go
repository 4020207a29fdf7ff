package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
)

// Runtime is the GStreamer launcher binary the subprocess pipeline runs.
const Runtime = "gst-launch-1.0"

// Pipeline is a running video pipeline. Lifecycle events arrive on its Bus.
type Pipeline interface {
	Start() error
	Stop() error
	Bus() *Bus
}

// Factory builds a pipeline from a launch description.
type Factory func(desc string) Pipeline

// launchPipeline shells out to gst-launch-1.0 and translates its output
// lines into bus messages. Process exit is always reported as a terminal
// message before the bus closes.
type launchPipeline struct {
	desc string
	bus  *Bus

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewLaunchPipeline creates a subprocess pipeline for the given launch
// description.
func NewLaunchPipeline(desc string) Pipeline {
	return &launchPipeline{
		desc: desc,
		bus:  NewBus(64),
	}
}

func (p *launchPipeline) Bus() *Bus { return p.bus }

func (p *launchPipeline) Start() error {
	if p.running.Load() {
		return errors.New("pipeline already running")
	}

	binPath, err := exec.LookPath(Runtime)
	if err != nil {
		return fmt.Errorf("finding %s: %w", Runtime, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	args := append([]string{"-e"}, strings.Fields(p.desc)...)
	cmd := exec.CommandContext(ctx, binPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("creating stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("starting %s: %w", Runtime, err)
	}

	p.cancel = cancel
	p.running.Store(true)

	var scanners sync.WaitGroup
	scanners.Add(2)
	go p.scan(stdout, &scanners)
	go p.scan(stderr, &scanners)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// All pipe reads must complete before Wait closes the pipes.
		scanners.Wait()
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			p.bus.Push(Message{Kind: KindError, Text: fmt.Sprintf("%s exited: %s", Runtime, err)})
		} else {
			p.bus.Push(Message{Kind: KindEOS, Text: "pipeline finished"})
		}
		p.bus.Close()
		p.running.Store(false)
	}()

	return nil
}

// Stop kills the subprocess and waits for the bus to drain and close.
func (p *launchPipeline) Stop() error {
	if !p.running.Load() {
		return nil
	}
	p.cancel()
	p.wg.Wait()
	return nil
}

func (p *launchPipeline) scan(r io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p.bus.Push(classify(line))
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		p.bus.Push(Message{Kind: KindInfo, Text: fmt.Sprintf("pipe read failed: %s", err)})
	}
}

// classify maps one gst-launch-1.0 output line to a bus message.
func classify(line string) Message {
	switch {
	case strings.HasPrefix(line, "ERROR:"):
		return Message{Kind: KindError, Text: line}
	case strings.Contains(line, "Got EOS from element"),
		strings.Contains(line, "Forcing EOS on the pipeline"):
		return Message{Kind: KindEOS, Text: line}
	case strings.HasPrefix(line, "Setting pipeline to"),
		strings.HasPrefix(line, "Pipeline is"),
		strings.HasPrefix(line, "New clock:"):
		return Message{Kind: KindStateChanged, Text: line}
	default:
		return Message{Kind: KindInfo, Text: line}
	}
}

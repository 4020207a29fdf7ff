package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(4)
	bus.Push(Message{Kind: KindInfo, Text: "one"})
	bus.Push(Message{Kind: KindStateChanged, Text: "two"})

	msg, err := bus.Pop(context.Background())
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if msg.Text != "one" {
		t.Errorf("first message = %q, want one", msg.Text)
	}
	msg, err = bus.Pop(context.Background())
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if msg.Kind != KindStateChanged {
		t.Errorf("second kind = %v, want %v", msg.Kind, KindStateChanged)
	}
}

func TestBusPopBlocksUntilPush(t *testing.T) {
	bus := NewBus(1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		bus.Push(Message{Kind: KindEOS})
	}()

	msg, err := bus.Pop(context.Background())
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if msg.Kind != KindEOS {
		t.Errorf("kind = %v, want %v", msg.Kind, KindEOS)
	}
}

func TestBusPopHonorsContext(t *testing.T) {
	bus := NewBus(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := bus.Pop(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Pop = %v, want context.Canceled", err)
	}
}

func TestBusCloseDrainsBuffered(t *testing.T) {
	bus := NewBus(4)
	bus.Push(Message{Kind: KindInfo, Text: "buffered"})
	bus.Close()

	msg, err := bus.Pop(context.Background())
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if msg.Text != "buffered" {
		t.Errorf("message = %q, want buffered", msg.Text)
	}
	if _, err := bus.Pop(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Pop after drain = %v, want ErrClosed", err)
	}
}

func TestBusPushAfterCloseDropped(t *testing.T) {
	bus := NewBus(1)
	bus.Close()
	bus.Push(Message{Kind: KindInfo, Text: "late"})

	if _, err := bus.Pop(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Pop = %v, want ErrClosed", err)
	}
}

func TestWorkerStopsOnError(t *testing.T) {
	bus := NewBus(4)
	w := NewWorker(bus, testLogger())
	w.Start(context.Background())

	bus.Push(Message{Kind: KindInfo, Text: "harmless"})
	bus.Push(Message{Kind: KindError, Text: "ERROR: from element source"})

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on error message")
	}
}

func TestWorkerStopsOnEOS(t *testing.T) {
	bus := NewBus(4)
	w := NewWorker(bus, testLogger())
	w.Start(context.Background())

	bus.Push(Message{Kind: KindEOS, Text: `Got EOS from element "pipeline0".`})

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on end of stream")
	}
}

func TestWorkerStopsWhenBusCloses(t *testing.T) {
	bus := NewBus(4)
	w := NewWorker(bus, testLogger())
	w.Start(context.Background())

	bus.Close()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on closed bus")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		line string
		want MessageKind
	}{
		{"ERROR: from element /GstPipeline:pipeline0/GstRTSPSrc:source: Could not open resource", KindError},
		{`Got EOS from element "pipeline0".`, KindEOS},
		{"EOS on shutdown enabled -- Forcing EOS on the pipeline", KindEOS},
		{"Setting pipeline to PLAYING ...", KindStateChanged},
		{"Pipeline is live and does not need PREROLL ...", KindStateChanged},
		{"New clock: GstSystemClock", KindStateChanged},
		{"Redistribute latency...", KindInfo},
		{"WARNING: from element /GstPipeline:pipeline0: dropped frames", KindInfo},
	}
	for _, tc := range cases {
		if got := classify(tc.line).Kind; got != tc.want {
			t.Errorf("classify(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestLaunchPipelineStartWithoutRuntime(t *testing.T) {
	if _, err := exec.LookPath(Runtime); err == nil {
		t.Skip("gst-launch-1.0 is installed")
	}
	p := NewLaunchPipeline("fakesrc ! fakesink")
	if err := p.Start(); err == nil {
		t.Fatal("expected an error without the runtime installed")
	}
}

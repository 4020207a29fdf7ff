package stream

import (
	"context"
	"log/slog"
)

// Worker drains a pipeline bus on its own goroutine. The first error or
// end-of-stream message is terminal; every other kind is logged at debug
// level and pumping continues.
type Worker struct {
	bus    *Bus
	logger *slog.Logger
	done   chan struct{}
}

// NewWorker creates a worker for the given bus.
func NewWorker(bus *Bus, logger *slog.Logger) *Worker {
	return &Worker{
		bus:    bus,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start begins pumping messages until a terminal message, a closed bus
// or a canceled context.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for {
			msg, err := w.bus.Pop(ctx)
			if err != nil {
				return
			}
			switch msg.Kind {
			case KindError:
				w.logger.Error("Pipeline failed", "message", msg.Text)
				return
			case KindEOS:
				w.logger.Info("Pipeline reached end of stream", "message", msg.Text)
				return
			default:
				w.logger.Debug("Pipeline message", "kind", msg.Kind.String(), "message", msg.Text)
			}
		}
	}()
}

// Done is closed when the worker exits.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

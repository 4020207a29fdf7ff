package link

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/antonymarion/forkQGroundControl/internal/channel"
	"github.com/antonymarion/forkQGroundControl/internal/wire"
)

// Inbound pairs a decoded frame with the link it arrived on, so the
// dispatch loop can grow link sets and relay frames.
type Inbound struct {
	Link  Link
	Frame *wire.Frame
}

// ReadPump reads the link until ctx is cancelled or the link fails,
// feeding a per-link decoder and forwarding every decoded frame in
// order. Close the link to unblock a pending Read on shutdown. Returns
// nil on EOF (replay end) and on cancellation.
func ReadPump(ctx context.Context, l Link, out channel.Sender[Inbound], logger *slog.Logger) error {
	dec := wire.NewDecoder()
	buf := make([]byte, 4096)
	decoded, dropped := pumpCounters()
	linkAttr := metric.WithAttributes(attribute.String("link", l.Name()))

	defer func() {
		s := dec.Stats()
		logger.Debug("link pump stopped",
			"link", l.Name(),
			"frames", s.Frames,
			"checksum_errors", s.ChecksumErrs,
			"unknown_ids", s.UnknownIDs,
			"length_errors", s.LengthErrs,
			"skipped_bytes", s.SkippedBytes,
		)
	}()

	var prev wire.Stats
	for {
		n, err := l.Read(buf)
		if n > 0 {
			for _, f := range dec.Push(buf[:n]) {
				out.Send(Inbound{Link: l, Frame: f})
			}
			s := dec.Stats()
			if d := s.Frames - prev.Frames; d > 0 {
				decoded.Add(ctx, int64(d), linkAttr)
			}
			if d := (s.ChecksumErrs + s.LengthErrs) - (prev.ChecksumErrs + prev.LengthErrs); d > 0 {
				dropped.Add(ctx, int64(d), linkAttr)
			}
			prev = s
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			logger.Error("link read failed", "link", l.Name(), "error", err)
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

package link

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/antonymarion/forkQGroundControl/internal/link"

var (
	countersOnce  sync.Once
	framesDecoded metric.Int64Counter
	framesDropped metric.Int64Counter
)

// pumpCounters returns the decode counters shared by every pump. The
// global meter records nothing until a meter provider is installed.
func pumpCounters() (decoded, dropped metric.Int64Counter) {
	countersOnce.Do(func() {
		m := otel.Meter(instrumentationName)
		framesDecoded, _ = m.Int64Counter(
			"link.frames.decoded",
			metric.WithDescription("Frames decoded per link"),
		)
		framesDropped, _ = m.Int64Counter(
			"link.frames.dropped",
			metric.WithDescription("Checksum and length rejections per link"),
		)
	})
	return framesDecoded, framesDropped
}

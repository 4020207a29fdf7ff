package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/antonymarion/forkQGroundControl/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

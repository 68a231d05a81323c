package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "rover_control/internal/service"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// counter creates a named counter on the global meter, or a no-op one if
// the meter rejects it.
func counter(name, desc string) metric.Int64Counter {
	c, err := meter().Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		c, _ = noop.Meter{}.Int64Counter(name)
	}
	return c
}

func inc(c metric.Int64Counter, key, value string) {
	c.Add(context.Background(), 1, metric.WithAttributes(attribute.String(key, value)))
}

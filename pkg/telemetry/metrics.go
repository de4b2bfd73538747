package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the board counters
type Metrics struct {
	PostsCreated     otelmetric.Int64Counter
	PostsExpired     otelmetric.Int64Counter
	PostsRemoved     otelmetric.Int64Counter
	ReactionsToggled otelmetric.Int64Counter
	PinsToggled      otelmetric.Int64Counter
	PersistFailures  otelmetric.Int64Counter
}

// NewMetrics creates the board instruments on meter
func NewMetrics(meter otelmetric.Meter) (*Metrics, error) {
	m := &Metrics{}
	counters := []struct {
		target *otelmetric.Int64Counter
		name   string
		desc   string
	}{
		{&m.PostsCreated, "board.posts.created", "Posts created"},
		{&m.PostsExpired, "board.posts.expired", "Posts removed by their lifetime elapsing"},
		{&m.PostsRemoved, "board.posts.removed", "Posts removed on request"},
		{&m.ReactionsToggled, "board.reactions.toggled", "Reaction toggles"},
		{&m.PinsToggled, "board.pins.toggled", "Pin toggles"},
		{&m.PersistFailures, "board.persist.failures", "Snapshot writes that failed"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, otelmetric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.target = counter
	}
	return m, nil
}

// GlobalMetrics creates the instruments on the global meter provider
func GlobalMetrics() (*Metrics, error) {
	return NewMetrics(otel.Meter(instrumentationName))
}

// NoopMetrics returns instruments that record nothing
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}

// Add increments counter by one, tagged with the room
func Add(ctx context.Context, counter otelmetric.Int64Counter, room string, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	attrs = append(attrs, attribute.String("room", room))
	counter.Add(ctx, 1, otelmetric.WithAttributes(attrs...))
}

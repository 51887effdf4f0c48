package schemaid

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// engineMetrics holds the OpenTelemetry instruments for an engine. Created
// once at engine construction and reused for every computation.
type engineMetrics struct {
	// cacheHits increments when an identifier is served from the cache.
	cacheHits metric.Int64Counter

	// cacheMisses increments when an identifier has to be computed.
	cacheMisses metric.Int64Counter

	// computeDuration records full computation time in milliseconds.
	computeDuration metric.Float64Histogram
}

// initMetrics creates the metric instruments from a meter provider. Returns
// nil when no provider is configured; all record methods are nil-safe.
func initMetrics(mp metric.MeterProvider) (*engineMetrics, error) {
	if mp == nil {
		return nil, nil
	}
	meter := mp.Meter("github.com/schema-tools/schemaid")

	m := &engineMetrics{}
	var err error

	m.cacheHits, err = meter.Int64Counter(
		"schemaid.cache.hits",
		metric.WithDescription("Identifier lookups served from the identity cache"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache hit counter: %w", err)
	}

	m.cacheMisses, err = meter.Int64Counter(
		"schemaid.cache.misses",
		metric.WithDescription("Identifier lookups requiring a full computation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache miss counter: %w", err)
	}

	m.computeDuration, err = meter.Float64Histogram(
		"schemaid.compute.duration",
		metric.WithDescription("Identifier computation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return m, nil
}

func (m *engineMetrics) recordHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1)
}

func (m *engineMetrics) recordMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(ctx, 1)
}

func (m *engineMetrics) recordCompute(ctx context.Context, elapsed time.Duration, cached bool) {
	if m == nil {
		return
	}
	m.computeDuration.Record(ctx, float64(elapsed.Microseconds())/1000.0,
		metric.WithAttributes(attribute.Bool("cacheable", cached)))
}

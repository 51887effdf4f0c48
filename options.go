package schemaid

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/schema-tools/schemaid/behavior"
)

// Option configures an Engine.
type Option func(*engineConfig)

// engineConfig holds configuration for an Engine instance.
type engineConfig struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
	onDegraded    func(behavior.Degradation)

	trackFieldOrder    bool
	trackUnionOrder    bool
	trackDescriptions  bool
	trackDefaultValues bool
	extraData          any
	digestLength       int
	maxNodes           int
}

// WithLogger sets a custom logger for the engine. If not provided, the
// default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer; each identifier computation runs
// in its own span.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *engineConfig) {
		c.tracer = tracer
	}
}

// WithMeterProvider enables engine metrics: cache hits and misses, and a
// computation duration histogram.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *engineConfig) {
		c.meterProvider = mp
	}
}

// WithDegradationHandler installs a handler for behavior-fingerprint
// degradation signals. The signal is informational; computation proceeds.
func WithDegradationHandler(fn func(behavior.Degradation)) Option {
	return func(c *engineConfig) {
		c.onDegraded = fn
	}
}

// WithTrackFieldOrder makes model field declaration order part of the
// identifier. Off by default: identifiers are declaration-order independent.
func WithTrackFieldOrder() Option {
	return func(c *engineConfig) {
		c.trackFieldOrder = true
	}
}

// WithTrackUnionOrder makes union member and literal value order part of the
// identifier. Off by default.
func WithTrackUnionOrder() Option {
	return func(c *engineConfig) {
		c.trackUnionOrder = true
	}
}

// WithTrackDescriptions makes documentation text part of the identifier.
// Enable to track whether a model's documentation has changed; off by
// default so identifiers only track runtime validation behavior.
func WithTrackDescriptions() Option {
	return func(c *engineConfig) {
		c.trackDescriptions = true
	}
}

// WithTrackDefaultValues makes default values part of the identifier. Off by
// default: only default presence is tracked, so config-only default changes
// do not change the identifier.
func WithTrackDefaultValues() Option {
	return func(c *engineConfig) {
		c.trackDefaultValues = true
	}
}

// WithExtraData attaches additional JSON-serializable data to every
// identifier the engine computes: configs, env values, prompts, or other
// static inputs whose changes should change identifiers. Never mutate the
// value after engine construction; identifiers are cached.
func WithExtraData(data any) Option {
	return func(c *engineConfig) {
		c.extraData = data
	}
}

// WithDigestLength truncates hex digests to the given number of characters.
// Zero keeps the full digest. 10-14 characters still offer plenty of
// collision resistance for schema-count workloads.
func WithDigestLength(n int) Option {
	return func(c *engineConfig) {
		c.digestLength = n
	}
}

// WithMaxNodes bounds the schema graph size accepted by the engine,
// guarding against malformed external descriptions. Zero applies the
// default bound.
func WithMaxNodes(n int) Option {
	return func(c *engineConfig) {
		c.maxNodes = n
	}
}

package schemaid

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/schema-tools/schemaid/behavior"
	"github.com/schema-tools/schemaid/canonical"
	"github.com/schema-tools/schemaid/identity"
	"github.com/schema-tools/schemaid/report"
)

// Engine computes and caches schema identifiers. An Engine is safe for
// concurrent use; the identity cache is its only mutable state.
type Engine struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *engineMetrics
	resolver *behavior.Resolver

	canonOpts    canonical.Options
	digestLength int

	mu    sync.RWMutex
	cache map[string]identity.Identifier
}

// New creates an Engine. The zero option set is the recommended
// configuration: order-independent identifiers, descriptions untracked,
// defaults tracked by presence only, full-length digests.
func New(opts ...Option) *Engine {
	cfg := engineConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	metrics, err := initMetrics(cfg.meterProvider)
	if err != nil {
		cfg.logger.Warn("engine metrics disabled", "error", err)
	}

	resolver := behavior.NewResolver(
		behavior.WithLogger(cfg.logger),
		behavior.WithDegradationHandler(cfg.onDegraded),
	)

	return &Engine{
		logger:   cfg.logger,
		tracer:   cfg.tracer,
		metrics:  metrics,
		resolver: resolver,
		canonOpts: canonical.Options{
			TrackFieldOrder:    cfg.trackFieldOrder,
			TrackUnionOrder:    cfg.trackUnionOrder,
			TrackDescriptions:  cfg.trackDescriptions,
			TrackDefaultValues: cfg.trackDefaultValues,
			ExtraData:          cfg.extraData,
			MaxNodes:           cfg.maxNodes,
			Resolver:           resolver,
		},
		digestLength: cfg.digestLength,
		cache:        make(map[string]identity.Identifier),
	}
}

// IdentifierFor returns the stable identifier for the schema described by
// src. The first call for a cacheable source computes and caches the
// identifier; later calls return the cached value. An identifier is either
// fully computed or not produced at all; there is no partial result.
func (e *Engine) IdentifierFor(src Source) (identity.Identifier, error) {
	const op = "Engine.IdentifierFor"
	ctx := context.Background()

	key, cacheable := src.CacheKey()
	if cacheable {
		e.mu.RLock()
		cached, ok := e.cache[key]
		e.mu.RUnlock()
		if ok {
			e.metrics.recordHit(ctx)
			return cached, nil
		}
	}
	e.metrics.recordMiss(ctx)

	start := time.Now()
	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "schemaid.compute",
			trace.WithAttributes(attribute.String("schemaid.source", key)))
		defer span.End()
	}

	id, err := e.compute(op, src)
	if err != nil {
		return identity.Identifier{}, err
	}
	e.metrics.recordCompute(ctx, time.Since(start), cacheable)

	if cacheable {
		// Idempotent overwrite: a racing caller computed the same value, so
		// either write may win.
		e.mu.Lock()
		e.cache[key] = id
		e.mu.Unlock()
	}

	e.logger.Debug("schema identifier computed",
		"source", key,
		"identifier", id.String(),
		"duration", time.Since(start))
	return id, nil
}

// compute runs extraction, canonicalization, and hashing for one source.
func (e *Engine) compute(op string, src Source) (identity.Identifier, error) {
	graph, err := src.Describe()
	if err != nil {
		return identity.Identifier{}, &Error{Op: op, Kind: KindExtraction, Err: err}
	}

	data, err := canonical.Encode(graph, e.canonOpts)
	if err != nil {
		return identity.Identifier{}, wrapError(op, err)
	}

	return identity.Compute(identity.Version, data, e.digestLength), nil
}

// SameSchema reports whether two schema sources are structurally equivalent,
// by comparing their identifiers.
func (e *Engine) SameSchema(a, b Source) (bool, error) {
	idA, err := e.IdentifierFor(a)
	if err != nil {
		return false, err
	}
	idB, err := e.IdentifierFor(b)
	if err != nil {
		return false, err
	}
	return idA.Equal(idB), nil
}

// Invalidate drops the cached identifier for a source. Only useful after
// forcibly mutating a schema definition at runtime.
func (e *Engine) Invalidate(src Source) {
	key, cacheable := src.CacheKey()
	if !cacheable {
		return
	}
	e.mu.Lock()
	delete(e.cache, key)
	e.mu.Unlock()
}

// Report computes (or retrieves) the source's identifier and wraps it with
// process provenance and the engine's tracking settings.
func (e *Engine) Report(src Source) (report.Report, error) {
	id, err := e.IdentifierFor(src)
	if err != nil {
		return report.Report{}, err
	}
	name, _ := src.CacheKey()
	return report.New(name, id, report.Settings{
		TrackFieldOrder:    e.canonOpts.TrackFieldOrder,
		TrackUnionOrder:    e.canonOpts.TrackUnionOrder,
		TrackDescriptions:  e.canonOpts.TrackDescriptions,
		TrackDefaultValues: e.canonOpts.TrackDefaultValues,
		DigestLength:       e.digestLength,
	}), nil
}

// defaultEngine serves the package-level convenience functions. Initialized
// once at first use, lives for the process lifetime.
var (
	defaultEngineOnce sync.Once
	defaultEngine     *Engine
)

// Default returns the process-wide default engine.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// IdentifierFor computes a schema identifier using the default engine.
func IdentifierFor(src Source) (identity.Identifier, error) {
	return Default().IdentifierFor(src)
}

// SameSchema compares two schema sources using the default engine.
func SameSchema(a, b Source) (bool, error) {
	return Default().SameSchema(a, b)
}

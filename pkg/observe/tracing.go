package observe

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
	"github.com/vango-dev/waymark/pkg/router"
)

// Default tracer name for transition spans.
const defaultTracerName = "waymark"

// TracingConfig configures the OpenTelemetry transition observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "waymark").
	TracerName string

	// IncludeParams includes resolved route params as span attributes.
	// Param values may carry identifiers - disabled by default.
	IncludeParams bool
}

// TracingOption configures the OpenTelemetry transition observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithIncludeParams enables recording route params on spans.
func WithIncludeParams(include bool) TracingOption {
	return func(c *TracingConfig) {
		c.IncludeParams = include
	}
}

// TracingObserver opens one span per transition, from location change to
// commit or abort. It implements router.Observer.
//
// The tracer uses the global OpenTelemetry tracer provider; configure it
// in main() before starting the router.
type TracingObserver struct {
	config TracingConfig
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[uint64]trace.Span
}

// Tracing creates the OpenTelemetry observer.
func Tracing(opts ...TracingOption) *TracingObserver {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	return &TracingObserver{
		config: config,
		tracer: otel.Tracer(config.TracerName),
		spans:  make(map[uint64]trace.Span),
	}
}

func (t *TracingObserver) TransitionStarted(seq uint64, loc *location.Location) {
	_, span := t.tracer.Start(context.Background(), "router.transition",
		trace.WithAttributes(
			attribute.Int64("waymark.seq", int64(seq)),
			attribute.String("waymark.location", loc.String()),
		))
	t.mu.Lock()
	t.spans[seq] = span
	t.mu.Unlock()
}

func (t *TracingObserver) TransitionCommitted(seq uint64, state *route.State) {
	span := t.take(seq)
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Int("waymark.branch_depth", len(state.Routes)))
	if t.config.IncludeParams {
		for name, value := range state.Params {
			span.SetAttributes(attribute.String("waymark.param."+name, value))
		}
	}
	span.SetStatus(codes.Ok, "")
	span.End()
}

func (t *TracingObserver) TransitionAborted(seq uint64, loc *location.Location, err error) {
	span := t.take(seq)
	if span == nil {
		return
	}
	if errors.Is(err, router.ErrSuperseded) {
		span.SetAttributes(attribute.Bool("waymark.superseded", true))
	} else if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *TracingObserver) TransitionRedirected(seq uint64, from, to *location.Location) {
	t.mu.Lock()
	span := t.spans[seq]
	t.mu.Unlock()
	if span == nil {
		return
	}
	span.AddEvent("redirect", trace.WithAttributes(
		attribute.String("waymark.redirect.from", from.String()),
		attribute.String("waymark.redirect.to", to.String()),
	))
}

func (t *TracingObserver) take(seq uint64) trace.Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	span := t.spans[seq]
	delete(t.spans, seq)
	return span
}

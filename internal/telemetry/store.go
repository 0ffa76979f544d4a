package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	taskdoc "github.com/roasbeef/taskdoc-mcp"
)

const storeScopeName = "github.com/roasbeef/taskdoc-mcp/store"

// InstrumentedStore wraps a taskdoc.DocumentStore with OTel tracing and
// metrics. Every load and save gets a span and is counted in the
// taskdoc.store.* metrics. Use WrapStore to create one.
type InstrumentedStore struct {
	inner     taskdoc.DocumentStore
	tracer    trace.Tracer
	ops       metric.Int64Counter
	dur       metric.Float64Histogram
	errs      metric.Int64Counter
	itemGauge metric.Int64Gauge
}

// WrapStore returns s decorated with OTel instrumentation. When telemetry
// is disabled, s is returned as-is.
func WrapStore(s taskdoc.DocumentStore) taskdoc.DocumentStore {
	if !Enabled() {
		return s
	}
	return newInstrumentedStore(s, Tracer(storeScopeName), Meter(storeScopeName))
}

func newInstrumentedStore(s taskdoc.DocumentStore, tracer trace.Tracer,
	m metric.Meter) *InstrumentedStore {

	ops, _ := m.Int64Counter("taskdoc.store.operations",
		metric.WithDescription("Total document store operations executed"),
	)
	dur, _ := m.Float64Histogram("taskdoc.store.operation.duration",
		metric.WithDescription("Document store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("taskdoc.store.errors",
		metric.WithDescription("Failed saves and degraded loads"),
	)
	itemGauge, _ := m.Int64Gauge("taskdoc.checklist.items",
		metric.WithDescription("Checklist items by state at the last save"),
	)
	return &InstrumentedStore{
		inner:     s,
		tracer:    tracer,
		ops:       ops,
		dur:       dur,
		errs:      errs,
		itemGauge: itemGauge,
	}
}

// op starts a span and records a metric for the named store operation.
func (s *InstrumentedStore) op(ctx context.Context, name string) (context.Context, trace.Span, time.Time) {
	attrs := []attribute.KeyValue{attribute.String("taskdoc.store.operation", name)}
	ctx, span := s.tracer.Start(ctx, "store."+name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(attrs...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStore) done(ctx context.Context, span trace.Span, start time.Time,
	name string, err error) {

	attrs := []attribute.KeyValue{attribute.String("taskdoc.store.operation", name)}
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

// Load implements taskdoc.DocumentStore.
func (s *InstrumentedStore) Load(ctx context.Context) taskdoc.LoadResult {
	ctx, span, t := s.op(ctx, "Load")
	res := s.inner.Load(ctx)
	span.SetAttributes(
		attribute.String("taskdoc.load.outcome", res.Outcome.String()),
		attribute.Int("taskdoc.checklist.total", len(res.Document.Checklist)),
	)

	var err error
	if res.Outcome.Degraded() {
		err = res.Cause
	}
	s.done(ctx, span, t, "Load", err)
	return res
}

// Save implements taskdoc.DocumentStore.
func (s *InstrumentedStore) Save(ctx context.Context, doc *taskdoc.TaskDocument) error {
	ctx, span, t := s.op(ctx, "Save")
	err := s.inner.Save(ctx, doc)
	if err == nil {
		p := doc.Metadata.Progress
		span.SetAttributes(
			attribute.Int("taskdoc.checklist.total", p.Total),
			attribute.Int("taskdoc.checklist.completed", p.Completed),
		)
		s.itemGauge.Record(ctx, int64(p.Completed),
			metric.WithAttributes(attribute.String("state", "done")))
		s.itemGauge.Record(ctx, int64(p.Total-p.Completed),
			metric.WithAttributes(attribute.String("state", "pending")))
	}
	s.done(ctx, span, t, "Save", err)
	return err
}

// Verify interface compliance at compile time.
var _ taskdoc.DocumentStore = (*InstrumentedStore)(nil)

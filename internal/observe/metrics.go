// Package observe holds the OpenTelemetry instruments recorded by the voice
// pipeline and the Prometheus bridge that exposes them on /metrics.
//
// Components take a *Metrics through an option; tests build one with
// NewMetrics over a ManualReader-backed provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/sandeepkv93/vtodo"

type Metrics struct {
	// Dispatches counts executor commands by intent and outcome code
	// ("ok" or a commands.ErrorCode).
	Dispatches metric.Int64Counter

	DispatchDuration metric.Float64Histogram

	// UndoEvents counts undo slot transitions: recorded, applied, expired,
	// unavailable.
	UndoEvents metric.Int64Counter

	// NormalizeFallbacks counts normalizer sub-steps that failed and passed
	// their input through, by step.
	NormalizeFallbacks metric.Int64Counter

	// Transcripts counts finalized utterances by result (empty, parsed).
	Transcripts metric.Int64Counter

	StatusDropped metric.Int64Counter
}

var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Dispatches, err = m.Int64Counter("vtodo.dispatch.total",
		metric.WithDescription("Executor dispatches by intent and outcome."),
	); err != nil {
		return nil, err
	}
	if met.DispatchDuration, err = m.Float64Histogram("vtodo.dispatch.duration",
		metric.WithDescription("Latency of executor dispatch including store writes."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.UndoEvents, err = m.Int64Counter("vtodo.undo.events",
		metric.WithDescription("Undo slot transitions by event."),
	); err != nil {
		return nil, err
	}
	if met.NormalizeFallbacks, err = m.Int64Counter("vtodo.normalize.fallbacks",
		metric.WithDescription("Normalizer steps that failed and passed text through."),
	); err != nil {
		return nil, err
	}
	if met.Transcripts, err = m.Int64Counter("vtodo.transcripts.total",
		metric.WithDescription("Finalized transcripts by result."),
	); err != nil {
		return nil, err
	}
	if met.StatusDropped, err = m.Int64Counter("vtodo.status.dropped",
		metric.WithDescription("Status events dropped because no reader kept up."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a process-wide instance bound to the global meter
// provider. It panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

func (m *Metrics) RecordDispatch(ctx context.Context, intent, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("outcome", outcome),
	)
	m.Dispatches.Add(ctx, 1, attrs)
	m.DispatchDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("intent", intent)))
}

func (m *Metrics) RecordUndo(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.UndoEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

func (m *Metrics) RecordNormalizeFallback(ctx context.Context, step string) {
	if m == nil {
		return
	}
	m.NormalizeFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}

func (m *Metrics) RecordTranscript(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.Transcripts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) RecordStatusDropped(ctx context.Context) {
	if m == nil {
		return
	}
	m.StatusDropped.Add(ctx, 1)
}

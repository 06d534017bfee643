// Package telemetry provides OpenTelemetry metric instruments for pipeline runs.
// Instruments report to the global MeterProvider, which is a no-op unless the
// host process installs one.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "browser-activity/pipeline"

// Instruments holds the pipeline metrics.
type Instruments struct {
	Runs          metric.Int64Counter
	Records       metric.Int64Counter
	StageDuration metric.Float64Histogram
}

// New creates the instruments from the global meter provider.
func New() (*Instruments, error) {
	return NewFromMeter(otel.Meter(meterName))
}

// NewFromMeter creates the instruments from meter.
func NewFromMeter(meter metric.Meter) (*Instruments, error) {
	runs, err := meter.Int64Counter("histclust.runs",
		metric.WithDescription("Completed categorization runs, by outcome"))
	if err != nil {
		return nil, err
	}
	records, err := meter.Int64Counter("histclust.records",
		metric.WithDescription("Records processed by categorization runs"))
	if err != nil {
		return nil, err
	}
	stage, err := meter.Float64Histogram("histclust.stage.duration",
		metric.WithDescription("Time spent in each pipeline stage"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &Instruments{Runs: runs, Records: records, StageDuration: stage}, nil
}

// RecordRun counts a finished run and its records.
func (i *Instruments) RecordRun(ctx context.Context, records int, err error) {
	if i == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.Runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	i.Records.Add(ctx, int64(records))
}

// RecordStage records how long stage took since start.
func (i *Instruments) RecordStage(ctx context.Context, stage string, start time.Time) {
	if i == nil {
		return
	}
	i.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)))
}

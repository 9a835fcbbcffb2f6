package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/webbundle"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	BuildsTotal      metric.Int64Counter
	BuildErrorsTotal metric.Int64Counter
	BuildDuration    metric.Float64Histogram
	OutputBytes      metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
// Instruments created before InitTelemetry forward to the provider it installs.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"webbundle.builds.total",
		metric.WithDescription("Total number of asset builds"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"webbundle.build.errors.total",
		metric.WithDescription("Total number of esbuild errors reported"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"webbundle.build.duration",
		metric.WithDescription("Duration of asset builds"),
		metric.WithUnit("ms"),
	)

	m.OutputBytes, _ = meter.Int64Counter(
		"webbundle.build.output.bytes",
		metric.WithDescription("Bytes written to the output directory"),
		metric.WithUnit("By"),
	)

	return m
}

package assets

import (
	"context"
	"time"

	"github.com/wolfeidau/webbundle/internal/buildconfig"
	"github.com/wolfeidau/webbundle/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("github.com/wolfeidau/webbundle/internal/assets")

// recordBuild reports one build. The instruments are no-ops unless telemetry
// was initialised.
func recordBuild(ctx context.Context, mode buildconfig.Mode, elapsed time.Duration, errs int, metadata *BuildMetadata) {
	m := telemetry.GetMetrics()
	attrs := metric.WithAttributes(
		attribute.String("mode", mode.String()),
		attribute.Bool("failed", errs > 0),
	)

	m.BuildsTotal.Add(ctx, 1, attrs)
	m.BuildDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	if errs > 0 {
		m.BuildErrorsTotal.Add(ctx, int64(errs), attrs)
	}

	if metadata != nil {
		var total int64
		for _, out := range metadata.Outputs {
			total += int64(out.Bytes)
		}
		m.OutputBytes.Add(ctx, total, attrs)
	}
}

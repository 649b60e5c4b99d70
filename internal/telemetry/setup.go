// Package telemetry wires OpenTelemetry traces and metrics for the server.
package telemetry

import (
	"context"
	"errors"
	"log/slog"

	slogotel "github.com/remychantenay/slog-otel"
	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const instrumentationName = "github.com/harrylevesque/qrpay"

// Setup installs global tracer and meter providers whose exporters are
// chosen by the standard OTEL_* environment variables. The returned shutdown
// flushes and stops both.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error

	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	otel.SetTextMapPropagator(autoprop.NewTextMapPropagator())

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	tExporter, err := autoexport.NewSpanExporter(ctx)
	if err != nil {
		err = errors.Join(err, shutdown(ctx))
		return
	}
	tp := trace.NewTracerProvider(
		trace.WithBatcher(tExporter),
		trace.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	otel.SetTracerProvider(tp)

	mReader, err := autoexport.NewMetricReader(ctx)
	if err != nil {
		err = errors.Join(err, shutdown(ctx))
		return
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(mReader),
		sdkmetric.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
	otel.SetMeterProvider(mp)

	return shutdown, nil
}

// LogHandler adds trace and span ids from the record's context to next.
func LogHandler(next slog.Handler) slog.Handler {
	return slogotel.OtelHandler{Next: next}
}

// Exports counts finished downloads by format.
type Exports struct {
	counter metric.Int64Counter
}

// NewExports registers the qrpay.exports counter on the global meter
// provider. With telemetry off that provider is a no-op.
func NewExports() (*Exports, error) {
	c, err := otel.Meter(instrumentationName).Int64Counter(
		"qrpay.exports",
		metric.WithDescription("QR code files exported"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, err
	}
	return &Exports{counter: c}, nil
}

// Add records one export. outcome is "ok" or "error".
func (e *Exports) Add(ctx context.Context, format, outcome string) {
	if e == nil {
		return
	}
	e.counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("outcome", outcome),
	))
}

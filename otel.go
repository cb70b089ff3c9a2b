package recipecapture

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	TracerNameCoordinator = "entry-coordinator"
	MeterNameCoordinator  = "entry-coordinator"
)

// OtelConfig is a configuration struct for the OpenTelemetry providers. The exporter endpoint and
// headers are read by the exporters themselves from the standard OTEL_EXPORTER_OTLP_* variables.
type OtelConfig struct {
	ServiceVersion string        `env:"OTEL_SERVICE_VERSION,default=0.1.0"`
	ServiceName    string        `env:"OTEL_SERVICE_NAME,default=recipe-capture"`
	DeployEnv      string        `env:"OTEL_DEPLOY_ENV,default=development"`
	SampleRatio    float64       `env:"OTEL_TRACES_SAMPLE_RATIO,default=1"`
	MetricInterval time.Duration `env:"OTEL_METRIC_INTERVAL,default=30s"`
}

// Resource describes this process to the collector.
func (c OtelConfig) Resource() *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.ServiceVersion),
		attribute.String("deployment.environment", c.DeployEnv),
	)
}

type otelShutdown func(ctx context.Context) error

// InitOtel starts OTLP/gRPC trace and metric exporters for cfg and registers the providers globally.
func InitOtel(ctx context.Context, cfg OtelConfig) (*sdktrace.TracerProvider, *sdkmetric.MeterProvider, otelShutdown, error) {
	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient())
	if err != nil {
		return nil, nil, nil, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	tracerProvider := newTracerProvider(cfg, sdktrace.WithBatcher(traceExporter))
	meterProvider := newMeterProvider(cfg, sdkmetric.NewPeriodicReader(metricExporter, readerOpts...))

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	// W3C trace context and baggage, so a capture started from a Lambda invocation keeps its trace.
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		// Providers shut down their own exporters.
		err := errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)

		if err != nil && err.Error() == "gRPC exporter is shutdown" {
			return nil
		}

		return err
	}

	return tracerProvider, meterProvider, shutdown, nil
}

// newTracerProvider samples root spans at cfg.SampleRatio and follows the parent's decision otherwise.
func newTracerProvider(cfg OtelConfig, processor sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(cfg.Resource()),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
}

func newMeterProvider(cfg OtelConfig, reader sdkmetric.Reader) *sdkmetric.MeterProvider {
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(cfg.Resource()),
	)
}

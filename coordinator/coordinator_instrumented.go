package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedCoordinator wraps a Coordinator with tracing and metrics. Every operation gets a span
// and is counted by outcome.
type InstrumentedCoordinator struct {
	inner  *Coordinator
	tracer trace.Tracer

	operations metric.Int64Counter
	failures   metric.Int64Counter
	duration   metric.Float64Histogram
	recipes    metric.Int64Gauge
}

var _ Workflow = (*InstrumentedCoordinator)(nil)

// NewInstrumentedCoordinator initializes the instruments on meter and wraps inner.
func NewInstrumentedCoordinator(inner *Coordinator, tracer trace.Tracer, meter metric.Meter) *InstrumentedCoordinator {
	operations, _ := meter.Int64Counter("coordinator_operations_total",
		metric.WithDescription("Total number of coordinator operations started"))
	failures, _ := meter.Int64Counter("coordinator_operations_failed_total",
		metric.WithDescription("Total number of coordinator operations that returned an error"))
	duration, _ := meter.Float64Histogram("coordinator_operation_duration_seconds",
		metric.WithDescription("Duration of coordinator operations in seconds, including permission and capture waits"))
	recipes, _ := meter.Int64Gauge("recipes_count",
		metric.WithDescription("Number of recipes in the store"))

	return &InstrumentedCoordinator{
		inner:      inner,
		tracer:     tracer,
		operations: operations,
		failures:   failures,
		duration:   duration,
		recipes:    recipes,
	}
}

func (c *InstrumentedCoordinator) AddManually(ctx context.Context) error {
	return c.observe(ctx, "AddManually", c.inner.AddManually)
}

func (c *InstrumentedCoordinator) SetDraftTitle(ctx context.Context, title string) error {
	return c.observe(ctx, "SetDraftTitle", func(ctx context.Context) error {
		return c.inner.SetDraftTitle(ctx, title)
	})
}

func (c *InstrumentedCoordinator) SubmitManual(ctx context.Context) error {
	return c.observe(ctx, "SubmitManual", c.inner.SubmitManual)
}

func (c *InstrumentedCoordinator) CancelManual(ctx context.Context) error {
	return c.observe(ctx, "CancelManual", c.inner.CancelManual)
}

func (c *InstrumentedCoordinator) UseCamera(ctx context.Context) error {
	return c.observe(ctx, "UseCamera", c.inner.UseCamera)
}

func (c *InstrumentedCoordinator) TakePhoto(ctx context.Context) error {
	return c.observe(ctx, "TakePhoto", c.inner.TakePhoto)
}

func (c *InstrumentedCoordinator) CloseCamera(ctx context.Context) error {
	return c.observe(ctx, "CloseCamera", c.inner.CloseCamera)
}

func (c *InstrumentedCoordinator) Reset(ctx context.Context) error {
	return c.observe(ctx, "Reset", c.inner.Reset)
}

func (c *InstrumentedCoordinator) Snapshot() Snapshot {
	return c.inner.Snapshot()
}

func (c *InstrumentedCoordinator) observe(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "EntryCoordinator."+op)
	defer span.End()

	from := c.inner.Mode()
	opAttr := attribute.String("operation", op)
	c.operations.Add(ctx, 1, metric.WithAttributes(opAttr))

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	to := c.inner.Mode()
	c.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(opAttr))
	c.recipes.Record(ctx, int64(c.inner.RecipeCount()))

	span.SetAttributes(
		attribute.String("mode.from", from.String()),
		attribute.String("mode.to", to.String()),
	)

	if err != nil {
		kind := Kind(err)
		c.failures.Add(ctx, 1, metric.WithAttributes(opAttr, attribute.String("error_kind", kind)))
		span.RecordError(err)
		// Collapsed presses and superseded grants are not failures.
		if !errors.Is(err, ErrRequestPending) && !errors.Is(err, ErrSuperseded) {
			span.SetStatus(codes.Error, kind)
		}
		slog.Debug("COORDINATOR: Operation failed", "operation", op, "kind", kind, "duration_ms", elapsed.Milliseconds())
		return err
	}

	if from != to {
		span.AddEvent("Mode changed", trace.WithAttributes(
			attribute.String("from", from.String()),
			attribute.String("to", to.String()),
		))
	}
	return nil
}

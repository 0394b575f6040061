package telemetry

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
)

const ServiceName = "foodgram-api"

// InitTracer installs a global tracer provider exporting over OTLP/HTTP.
// Without an endpoint it returns a no-op shutdown.
func InitTracer(ctx context.Context, cfg *config.Config, log *zap.Logger) (func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		log.Info("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("deployment.environment", string(cfg.Env)),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("tracing enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	return tp.Shutdown, nil
}

// TracingMiddleware starts a span per request.
func TracingMiddleware() gin.HandlerFunc {
	return otelgin.Middleware(ServiceName)
}

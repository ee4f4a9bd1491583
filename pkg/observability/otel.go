package observability

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap/zapcore"
)

const (
	tracesPath    = "/v1/traces"
	logsPath      = "/v1/logs"
	exportTimeout = 10 * time.Second
	maxQueueSize  = 2048

	instrumentationScope = "github.com/DRSN-tech/inventory-backend"
)

// Telemetry хранит провайдеры OpenTelemetry, поднятые при старте.
// При пустом OTEL_ENDPOINT остаются глобальные no-op провайдеры.
type Telemetry struct {
	shutdownFuncs []func(context.Context) error
	logProvider   *sdklog.LoggerProvider
}

// Setup настраивает экспорт трейсов и логов по OTLP/HTTP.
func Setup(ctx context.Context, cfg *cfg.OtelCfg) (*Telemetry, error) {
	t := &Telemetry{}
	if !Enabled(cfg) {
		return t, nil
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, e.Wrap("failed to create resource", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if err := t.setupTracing(ctx, cfg, res); err != nil {
		return nil, err
	}

	if err := t.setupLogging(ctx, cfg, res); err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	return t, nil
}

func Enabled(cfg *cfg.OtelCfg) bool {
	return cfg != nil && cfg.Endpoint != ""
}

func (t *Telemetry) setupTracing(ctx context.Context, cfg *cfg.OtelCfg, res *resource.Resource) error {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithURLPath(tracesPath),
		otlptracehttp.WithHeaders(authHeaders(cfg)),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return e.Wrap("OTLP trace exporter", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter,
			sdktrace.WithExportTimeout(exportTimeout),
			sdktrace.WithMaxQueueSize(maxQueueSize),
		)),
	)

	otel.SetTracerProvider(tp)
	t.shutdownFuncs = append(t.shutdownFuncs, tp.Shutdown)
	return nil
}

func (t *Telemetry) setupLogging(ctx context.Context, cfg *cfg.OtelCfg, res *resource.Resource) error {
	opts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(cfg.Endpoint),
		otlploghttp.WithURLPath(logsPath),
		otlploghttp.WithHeaders(authHeaders(cfg)),
	}
	if cfg.Insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	}

	exporter, err := otlploghttp.New(ctx, opts...)
	if err != nil {
		return e.Wrap("OTLP log exporter", err)
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter,
			sdklog.WithExportTimeout(exportTimeout),
			sdklog.WithMaxQueueSize(maxQueueSize),
		)),
		sdklog.WithResource(res),
	)

	global.SetLoggerProvider(lp)
	t.logProvider = lp
	t.shutdownFuncs = append(t.shutdownFuncs, lp.Shutdown)
	return nil
}

// LogCore возвращает ядро zap, которое пишет в OTel. nil, если экспорт логов выключен.
func (t *Telemetry) LogCore() zapcore.Core {
	if t.logProvider == nil {
		return nil
	}
	return otelzap.NewCore(instrumentationScope, otelzap.WithLoggerProvider(t.logProvider))
}

// Shutdown сбрасывает буферы экспортеров и останавливает провайдеры в обратном порядке.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var err error
	for i := len(t.shutdownFuncs) - 1; i >= 0; i-- {
		err = errors.Join(err, t.shutdownFuncs[i](ctx))
	}
	t.shutdownFuncs = nil
	return err
}

func authHeaders(cfg *cfg.OtelCfg) map[string]string {
	if cfg.AuthHeader == "" {
		return nil
	}
	return map[string]string{"Authorization": cfg.AuthHeader}
}

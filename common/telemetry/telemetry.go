package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"portfolio-service/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	// OTLPEndpoint is a gRPC collector address. Empty disables export.
	OTLPEndpoint   string
	ExportInterval time.Duration
}

type Telemetry struct {
	MeterProvider *sdkmetric.MeterProvider
	Metrics       *metrics.Metrics
	logger        *slog.Logger
}

// Setup installs the global meter provider when an endpoint is configured and
// builds the shared collectors on top of whatever provider is global.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logger}

	if cfg.OTLPEndpoint == "" {
		logger.Info("metrics export disabled")
	} else {
		mp, err := newMeterProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		otel.SetMeterProvider(mp)
		t.MeterProvider = mp
		logger.Info("metrics exported over OTLP", "endpoint", cfg.OTLPEndpoint, "interval", cfg.ExportInterval)
	}

	m, err := metrics.New(cfg.ServiceName, logger)
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, fmt.Errorf("creating metric collectors: %w", err)
	}
	t.Metrics = m

	return t, nil
}

func newMeterProvider(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("building metric resource: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP metric exporter: %w", err)
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	), nil
}

// Shutdown flushes pending metrics. Safe on a nil receiver and when export is disabled.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.MeterProvider == nil {
		return nil
	}

	t.logger.Info("flushing metrics")
	mp := t.MeterProvider
	t.MeterProvider = nil
	if err := mp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down meter provider: %w", err)
	}
	return nil
}

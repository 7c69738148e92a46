package env

import (
	"context"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/flowkit/flowkit/component"
	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/logger"
	"github.com/flowkit/flowkit/telemetry"
)

// kvComponent adapts a kv.Store into the component lifecycle: the
// store is already open by the time it is registered (Mem has nothing
// to open; Badger is opened in its constructor), so Start is a no-op
// and Stop releases the underlying handle.
type kvComponent struct {
	store kv.Store
}

func (c *kvComponent) Name() string { return "kv" }

func (c *kvComponent) Start(ctx context.Context) error { return nil }

func (c *kvComponent) Stop(ctx context.Context) error { return c.store.Destroy() }

func (c *kvComponent) Health(ctx context.Context) component.ComponentHealth {
	return component.ComponentHealth{Name: c.Name(), Status: component.StatusHealthy}
}

var _ component.Component = (*kvComponent)(nil)

// telemetryComponent owns the OpenTelemetry tracer and meter providers
// for one environment. Start initializes both against cfg.Tracing;
// Stop flushes and shuts each down. Disabled when cfg.Tracing.Enabled
// is false, in which case Start/Stop are no-ops and Metrics is nil.
type telemetryComponent struct {
	cfg Config

	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	Metrics *telemetry.NodeMetrics
}

func (c *telemetryComponent) Name() string { return "telemetry" }

func (c *telemetryComponent) Start(ctx context.Context) error {
	if !c.cfg.Tracing.Enabled {
		return nil
	}

	tCfg := telemetry.DefaultTracerConfig(c.cfg.Name)
	tCfg.ServiceVersion = c.cfg.Version
	tCfg.Environment = c.cfg.Environment
	tCfg.Endpoint = c.cfg.Tracing.Endpoint
	tCfg.Insecure = c.cfg.Tracing.Insecure
	tCfg.SampleRate = c.cfg.Tracing.Sample
	tp, err := telemetry.InitTracer(ctx, tCfg)
	if err != nil {
		return err
	}
	c.tp = tp

	mCfg := telemetry.DefaultMeterConfig(c.cfg.Name)
	mCfg.ServiceVersion = c.cfg.Version
	mCfg.Environment = c.cfg.Environment
	mCfg.Endpoint = c.cfg.Tracing.Endpoint
	mCfg.Insecure = c.cfg.Tracing.Insecure
	mp, err := telemetry.InitMeter(ctx, mCfg)
	if err != nil {
		return err
	}
	c.mp = mp

	metrics, err := telemetry.NewNodeMetrics(mp.Meter(c.cfg.Name))
	if err != nil {
		return err
	}
	c.Metrics = metrics
	return nil
}

func (c *telemetryComponent) Stop(ctx context.Context) error {
	if c.tp != nil {
		if err := c.tp.Shutdown(ctx); err != nil {
			logger.Error("tracer provider shutdown failed", logger.Fields("error", err.Error()))
		}
	}
	if c.mp != nil {
		if err := c.mp.Shutdown(ctx); err != nil {
			logger.Error("meter provider shutdown failed", logger.Fields("error", err.Error()))
		}
	}
	return nil
}

func (c *telemetryComponent) Health(ctx context.Context) component.ComponentHealth {
	return component.ComponentHealth{Name: c.Name(), Status: component.StatusHealthy}
}

var _ component.Component = (*telemetryComponent)(nil)

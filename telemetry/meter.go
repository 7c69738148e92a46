package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/flowkit/flowkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Insecure       bool
	Interval       time.Duration
}

// DefaultMeterConfig returns sensible defaults for local development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the global OpenTelemetry meter provider. The
// returned provider should be shut down on environment close.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// NodeMetrics holds the instruments recorded once per scheduler task.
type NodeMetrics struct {
	nodesFinished metric.Int64Counter
	nodeDuration  metric.Float64Histogram
	activeNodes   metric.Int64UpDownCounter
}

// NewNodeMetrics creates node-execution instruments on the given meter.
func NewNodeMetrics(meter metric.Meter) (*NodeMetrics, error) {
	nodesFinished, err := meter.Int64Counter("nodes_finished_total",
		metric.WithDescription("Total number of node tasks that finished, by completion code"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating nodes_finished_total: %w", err)
	}

	nodeDuration, err := meter.Float64Histogram("node_duration_ms",
		metric.WithDescription("Node task execution duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating node_duration_ms: %w", err)
	}

	activeNodes, err := meter.Int64UpDownCounter("active_nodes",
		metric.WithDescription("Number of node tasks currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating active_nodes: %w", err)
	}

	return &NodeMetrics{nodesFinished: nodesFinished, nodeDuration: nodeDuration, activeNodes: activeNodes}, nil
}

// RecordNodeStart increments the active node gauge.
func (m *NodeMetrics) RecordNodeStart(ctx context.Context, nodeName string) {
	m.activeNodes.Add(ctx, 1, metric.WithAttributes(attribute.String("node", nodeName)))
}

// RecordNodeEnd decrements the active node gauge and records the finished
// count and duration, tagged with the node's completion code.
func (m *NodeMetrics) RecordNodeEnd(ctx context.Context, nodeName string, code int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("node", nodeName),
		attribute.Int("completion_code", code),
	)
	m.activeNodes.Add(ctx, -1, metric.WithAttributes(attribute.String("node", nodeName)))
	m.nodesFinished.Add(ctx, 1, attrs)
	m.nodeDuration.Record(ctx, float64(d.Milliseconds()), attrs)
}

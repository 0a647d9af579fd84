// Package metrics exports dispatch, tool and chat metrics in Prometheus format.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics records outcomes. A nil *Metrics records nothing.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler

	dispatchCalls    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	toolCalls        metric.Int64Counter
	toolErrors       metric.Int64Counter
	toolDuration     metric.Float64Histogram
	chatCalls        metric.Int64Counter
	chatErrors       metric.Int64Counter
	chatDuration     metric.Float64Histogram
}

// New creates Metrics backed by a private Prometheus registry
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("schooloo")

	m := &Metrics{
		provider: provider,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if m.dispatchCalls, err = meter.Int64Counter(
		"schooloo_dispatch_total",
		metric.WithDescription("Total dispatched queries"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatch counter: %w", err)
	}
	if m.dispatchDuration, err = meter.Float64Histogram(
		"schooloo_dispatch_duration_seconds",
		metric.WithDescription("Dispatch duration in seconds"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatch histogram: %w", err)
	}
	if m.toolCalls, err = meter.Int64Counter(
		"schooloo_tool_calls_total",
		metric.WithDescription("Total tool calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create tool calls counter: %w", err)
	}
	if m.toolErrors, err = meter.Int64Counter(
		"schooloo_tool_errors_total",
		metric.WithDescription("Total failed tool calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create tool errors counter: %w", err)
	}
	if m.toolDuration, err = meter.Float64Histogram(
		"schooloo_tool_duration_seconds",
		metric.WithDescription("Tool call duration in seconds"),
	); err != nil {
		return nil, fmt.Errorf("failed to create tool histogram: %w", err)
	}
	if m.chatCalls, err = meter.Int64Counter(
		"schooloo_chat_total",
		metric.WithDescription("Total chat generations"),
	); err != nil {
		return nil, fmt.Errorf("failed to create chat counter: %w", err)
	}
	if m.chatErrors, err = meter.Int64Counter(
		"schooloo_chat_errors_total",
		metric.WithDescription("Total failed chat generations"),
	); err != nil {
		return nil, fmt.Errorf("failed to create chat errors counter: %w", err)
	}
	if m.chatDuration, err = meter.Float64Histogram(
		"schooloo_chat_duration_seconds",
		metric.WithDescription("Chat generation duration in seconds"),
	); err != nil {
		return nil, fmt.Errorf("failed to create chat histogram: %w", err)
	}

	return m, nil
}

// Handler serves the metrics in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// Shutdown flushes and stops the meter provider
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// ObserveDispatch records one dispatch
func (m *Metrics) ObserveDispatch(role, toolName string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("role", role),
		attribute.String("tool", toolName),
		attribute.Bool("success", success),
	)
	m.dispatchCalls.Add(ctx, 1, attrs)
	m.dispatchDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// ObserveTool records one tool call
func (m *Metrics) ObserveTool(name string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("tool", name))
	m.toolCalls.Add(ctx, 1, attrs)
	if !success {
		m.toolErrors.Add(ctx, 1, attrs)
	}
	m.toolDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// ObserveChat records one chat generation
func (m *Metrics) ObserveChat(provider string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	m.chatCalls.Add(ctx, 1, attrs)
	if !success {
		m.chatErrors.Add(ctx, 1, attrs)
	}
	m.chatDuration.Record(ctx, elapsed.Seconds(), attrs)
}

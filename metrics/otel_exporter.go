package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/marcelsud/webhook-client/webhook"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards.
// It records client attempts and outcomes and, given a Collector, store gauges.
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *promclient.Registry
	collector     Collector

	// OTel meters and instruments
	meter            metric.Meter
	attemptCounter   metric.Int64Counter
	outcomeCounter   metric.Int64Counter
	durationHist     metric.Float64Histogram
	routeCountGauge  metric.Int64ObservableGauge
	statusCountGauge metric.Int64ObservableGauge
	throughputGauge  metric.Int64ObservableGauge
	routeUpGauge     metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format.
// collector may be nil, in which case only client instruments are registered.
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	registry := promclient.NewRegistry()

	// Create Prometheus exporter
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	// Create meter provider
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	// Create meter with service info
	meter := meterProvider.Meter(
		"webhook-client",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		registry:      registry,
		collector:     collector,
		meter:         meter,
	}

	// Register metrics instruments
	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.attemptCounter, err = oe.meter.Int64Counter(
		"webhook.delivery.attempts",
		metric.WithDescription("Number of HTTP attempts made by the delivery client"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return fmt.Errorf("creating attempt counter: %w", err)
	}

	oe.outcomeCounter, err = oe.meter.Int64Counter(
		"webhook.delivery.outcomes",
		metric.WithDescription("Number of completed sends by success"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return fmt.Errorf("creating outcome counter: %w", err)
	}

	oe.durationHist, err = oe.meter.Float64Histogram(
		"webhook.delivery.duration",
		metric.WithDescription("Duration of attempts that received a response"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}

	if oe.collector == nil {
		return nil
	}

	// Stored deliveries (per route)
	oe.routeCountGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.deliveries.stored",
		metric.WithDescription("Number of stored delivery records per route"),
		metric.WithUnit("{deliveries}"),
		metric.WithInt64Callback(oe.observeRouteCounts),
	)
	if err != nil {
		return fmt.Errorf("creating route count gauge: %w", err)
	}

	// Status count gauge (per status)
	oe.statusCountGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.status.count",
		metric.WithDescription("Number of delivery records by status"),
		metric.WithUnit("{deliveries}"),
		metric.WithInt64Callback(oe.observeStatusCounts),
	)
	if err != nil {
		return fmt.Errorf("creating status count gauge: %w", err)
	}

	// Throughput gauge (delivered messages over time windows)
	oe.throughputGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.throughput",
		metric.WithDescription("Number of messages delivered over time window"),
		metric.WithUnit("{messages}"),
		metric.WithInt64Callback(oe.observeThroughput),
	)
	if err != nil {
		return fmt.Errorf("creating throughput gauge: %w", err)
	}

	// Route connectivity (per route, 1 when the last test connected)
	oe.routeUpGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.route.up",
		metric.WithDescription("Whether the latest connectivity test of a route succeeded"),
		metric.WithInt64Callback(oe.observeRouteHealth),
	)
	if err != nil {
		return fmt.Errorf("creating route health gauge: %w", err)
	}

	return nil
}

// ObserveAttempt records one HTTP attempt of the delivery client
func (oe *OTelExporter) ObserveAttempt(ctx context.Context, a webhook.Attempt) {
	attrs := []attribute.KeyValue{attribute.String("result", a.Result())}
	if a.Err == nil {
		attrs = append(attrs, attribute.String("http.status_code", strconv.Itoa(a.StatusCode)))
		oe.durationHist.Record(ctx, float64(a.Elapsed.Milliseconds()), metric.WithAttributes(attrs...))
	}
	oe.attemptCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// ObserveOutcome records the final outcome of one send
func (oe *OTelExporter) ObserveOutcome(ctx context.Context, o webhook.Outcome) {
	oe.outcomeCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", o.Success),
	))
}

// observeRouteCounts is a callback that reports stored deliveries per route
func (oe *OTelExporter) observeRouteCounts(ctx context.Context, observer metric.Int64Observer) error {
	counts, err := oe.collector.GetRouteCounts(ctx)
	if err != nil {
		return err
	}

	for routeID, count := range counts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("route.id", routeID),
		))
	}

	return nil
}

// observeStatusCounts is a callback that reports delivery counts by status
func (oe *OTelExporter) observeStatusCounts(ctx context.Context, observer metric.Int64Observer) error {
	statusCounts, err := oe.collector.GetStatusCounts(ctx)
	if err != nil {
		return err
	}

	for status, count := range statusCounts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("delivery.status", status),
		))
	}

	return nil
}

// observeThroughput is a callback that reports throughput metrics
func (oe *OTelExporter) observeThroughput(ctx context.Context, observer metric.Int64Observer) error {
	throughput, err := oe.collector.GetThroughput(ctx)
	if err != nil {
		return err
	}

	observer.Observe(throughput.LastMinute, metric.WithAttributes(
		attribute.String("time.window", "1m"),
	))
	observer.Observe(throughput.LastFiveMinutes, metric.WithAttributes(
		attribute.String("time.window", "5m"),
	))
	observer.Observe(throughput.LastFifteenMinutes, metric.WithAttributes(
		attribute.String("time.window", "15m"),
	))

	return nil
}

// observeRouteHealth is a callback that reports the latest test result per route
func (oe *OTelExporter) observeRouteHealth(ctx context.Context, observer metric.Int64Observer) error {
	health, err := oe.collector.GetRouteHealth(ctx)
	if err != nil {
		return err
	}

	for routeID, h := range health {
		var up int64
		if h.Report.Status == webhook.Connected {
			up = 1
		}
		observer.Observe(up, metric.WithAttributes(
			attribute.String("route.id", routeID),
		))
	}

	return nil
}

// Handler serves Prometheus-formatted metrics from the exporter's registry
func (oe *OTelExporter) Handler() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}

var _ webhook.Recorder = (*OTelExporter)(nil)

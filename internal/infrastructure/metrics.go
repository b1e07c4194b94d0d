package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dataset metrics
	DatasetLoadDuration metric.Float64Histogram
	DatasetRowsLoaded   metric.Int64Gauge
	DatasetRowsSkipped  metric.Int64Counter
	DatasetLoadErrors   metric.Int64Counter

	// Query metrics
	FilterRequestsTotal metric.Int64Counter
	FilteredRows        metric.Int64Histogram
	ExportBytesTotal    metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.DatasetLoadDuration, err = meter.Float64Histogram(
		"dataset_load_duration_seconds",
		metric.WithDescription("Time spent loading and cleaning the sales dataset"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.DatasetRowsLoaded, err = meter.Int64Gauge(
		"dataset_rows_loaded",
		metric.WithDescription("Number of records in the loaded dataset"),
	); err != nil {
		return nil, err
	}

	if m.DatasetRowsSkipped, err = meter.Int64Counter(
		"dataset_rows_skipped_total",
		metric.WithDescription("Malformed source rows dropped during loading"),
	); err != nil {
		return nil, err
	}

	if m.DatasetLoadErrors, err = meter.Int64Counter(
		"dataset_load_errors_total",
		metric.WithDescription("Dataset loads that ended in an error"),
	); err != nil {
		return nil, err
	}

	if m.FilterRequestsTotal, err = meter.Int64Counter(
		"filter_requests_total",
		metric.WithDescription("Total number of filter applications"),
	); err != nil {
		return nil, err
	}

	if m.FilteredRows, err = meter.Int64Histogram(
		"filtered_rows",
		metric.WithDescription("Number of records selected per filter application"),
	); err != nil {
		return nil, err
	}

	if m.ExportBytesTotal, err = meter.Int64Counter(
		"export_bytes_total",
		metric.WithDescription("Total bytes of exported data"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// NoopBusinessMetrics returns metrics that record nothing.
func NoopBusinessMetrics() *BusinessMetrics {
	m, _ := CreateBusinessMetrics(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// RecordDatasetLoad records the outcome of a dataset load
func RecordDatasetLoad(ctx context.Context, metrics *BusinessMetrics, source string, rows, skipped int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("source", source))
	status := "success"
	if err != nil {
		status = "failure"
		metrics.DatasetLoadErrors.Add(ctx, 1, attrs)
	}

	metrics.DatasetLoadDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("source", source), attribute.String("status", status)))
	metrics.DatasetRowsLoaded.Record(ctx, int64(rows), attrs)
	if skipped > 0 {
		metrics.DatasetRowsSkipped.Add(ctx, int64(skipped), attrs)
	}
}

// RecordFilter records one filter application and the size of its result
func RecordFilter(ctx context.Context, metrics *BusinessMetrics, rows int) {
	if metrics == nil {
		return
	}

	metrics.FilterRequestsTotal.Add(ctx, 1)
	metrics.FilteredRows.Record(ctx, int64(rows))
}

// RecordExport records the size of a produced export
func RecordExport(ctx context.Context, metrics *BusinessMetrics, format string, size int) {
	if metrics == nil {
		return
	}

	metrics.ExportBytesTotal.Add(ctx, int64(size), metric.WithAttributes(attribute.String("format", format)))
}

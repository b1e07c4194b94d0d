package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgsales/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scrape(t *testing.T, providers *OTelProviders) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	// default config has no trace exporter
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitialization_StdoutTracing(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)

	assert.NotNil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	traceID := TraceIDFromContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	RecordError(ctx, errors.New("boom"))
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelInitialization_UnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "zipkin"

	_, err := InitializeOTel(cfg, testLogger())
	assert.Error(t, err)
}

func TestOTelConfigFrom(t *testing.T) {
	oc := OTelConfigFrom(config.MetricsConfig{Enabled: false, ServiceName: "sales-api", Tracing: "stdout"})

	assert.Equal(t, "sales-api", oc.ServiceName)
	assert.False(t, oc.EnableMetrics)
	assert.Equal(t, "stdout", oc.TraceExporter)
}

// TestBusinessMetrics tests business metrics creation and export
func TestBusinessMetrics(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordDatasetLoad(ctx, metrics, "vgsales.csv", 16598, 3, 250*time.Millisecond, nil)
	RecordFilter(ctx, metrics, 42)
	RecordExport(ctx, metrics, "csv", 1024)

	body := scrape(t, providers)
	assert.Contains(t, body, "dataset_load_duration_seconds")
	assert.Contains(t, body, "dataset_rows_loaded")
	assert.Contains(t, body, "dataset_rows_skipped_total")
	assert.Contains(t, body, "filter_requests_total")
	assert.Contains(t, body, "filtered_rows")
	assert.Contains(t, body, "export_bytes_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()

	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, nil, "x", 0, 0, 0, errors.New("x"))
		RecordFilter(ctx, nil, 1)
		RecordExport(ctx, nil, "csv", 1)
	})
}

func TestNoopBusinessMetrics(t *testing.T) {
	m := NoopBusinessMetrics()
	require.NotNil(t, m)

	assert.NotPanics(t, func() {
		RecordDatasetLoad(context.Background(), m, "x", 1, 1, time.Second, errors.New("x"))
	})
}

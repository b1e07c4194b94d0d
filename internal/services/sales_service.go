package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vgsales/internal/config"
	"vgsales/internal/dataprocessing"
	"vgsales/internal/exporter"
	"vgsales/internal/infrastructure"
	"vgsales/pkg/contracts/domain"
)

const tracerName = "vgsales/services"

// FilterRequest is a filter as received from a caller. Nil year bounds are
// replaced by the dataset's Year range.
type FilterRequest struct {
	YearMin   *int
	YearMax   *int
	Platforms []string
	Genres    []string
}

// ExportResult is a serialized subset ready to be downloaded or written.
type ExportResult struct {
	Data        []byte
	Filename    string
	ContentType string
	Format      exporter.Format
	Rows        int
}

// SalesService exposes the loaded dataset and every query over it.
type SalesService struct {
	cfg      config.DatasetConfig
	cache    *dataprocessing.DatasetCache
	exporter *exporter.SalesExporter
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewSalesService creates the service. A nil source reads cfg.Path with a
// loader built from cfg; nil metrics record nothing.
func NewSalesService(cfg config.DatasetConfig, source dataprocessing.DatasetSource, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *SalesService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NoopBusinessMetrics()
	}
	if source == nil {
		source = dataprocessing.NewLoader(logger, LoaderOptionsFrom(cfg))
	}

	logger = infrastructure.WithComponent(logger, "sales_service")
	logger.Info("SalesService initialized", slog.String("source", cfg.Path))

	return &SalesService{
		cfg:      cfg,
		cache:    dataprocessing.NewDatasetCache(&instrumentedSource{next: source, metrics: metrics}),
		exporter: exporter.NewSalesExporter(logger),
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
		logger:   logger,
	}
}

// LoaderOptionsFrom maps dataset configuration onto loader options.
func LoaderOptionsFrom(cfg config.DatasetConfig) dataprocessing.LoaderOptions {
	return dataprocessing.LoaderOptions{
		Format:        dataprocessing.SourceFormat(cfg.Format),
		MalformedRows: dataprocessing.MalformedRowPolicy(cfg.MalformedRows),
	}
}

// instrumentedSource records load metrics. The cache calls it at most once per source.
type instrumentedSource struct {
	next    dataprocessing.DatasetSource
	metrics *infrastructure.BusinessMetrics
}

func (s *instrumentedSource) Load(ctx context.Context, source string) (*domain.Dataset, error) {
	start := time.Now()
	ds, err := s.next.Load(ctx, source)
	infrastructure.RecordDatasetLoad(ctx, s.metrics, source, ds.Len(), skippedOf(ds), time.Since(start), err)
	return ds, err
}

func skippedOf(ds *domain.Dataset) int {
	if ds == nil {
		return 0
	}
	return ds.Skipped()
}

// Dataset returns the cached dataset, loading it on first use. A failed load
// is reported on every call as ErrDatasetUnavailable wrapping the *LoadError.
func (s *SalesService) Dataset(ctx context.Context) (*domain.Dataset, error) {
	ds, err := s.cache.Get(ctx, s.cfg.Path)
	if err != nil {
		return ds, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return ds, nil
}

// Warmup performs the one-time load so that the first request does not pay for it.
func (s *SalesService) Warmup(ctx context.Context) error {
	ds, err := s.Dataset(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset warmup failed", slog.String("error", err.Error()))
		return err
	}
	s.logger.InfoContext(ctx, "dataset ready",
		slog.Int("rows", ds.Len()),
		slog.Int("skipped", ds.Skipped()))
	return nil
}

// Status describes the outcome of the load.
func (s *SalesService) Status(ctx context.Context) domain.DatasetStatus {
	ds, err := s.Dataset(ctx)
	status := domain.DatasetStatus{
		Source:  s.cfg.Path,
		Loaded:  err == nil,
		Rows:    ds.Len(),
		Skipped: skippedOf(ds),
	}
	if ds != nil {
		status.LoadedAt = ds.LoadedAt()
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

// DistinctValues lists the sorted distinct values of a text column.
func (s *SalesService) DistinctValues(ctx context.Context, column string) ([]string, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.DistinctValues(ds, domain.Column(column))
}

// Range returns the bounds of a numeric column.
func (s *SalesService) Range(ctx context.Context, column string) (domain.Range, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.Range{}, err
	}
	return dataprocessing.MinMax(ds, domain.Column(column))
}

// DefaultFilter returns the initial selection using the configured preferences.
func (s *SalesService) DefaultFilter(ctx context.Context) (domain.FilterSpec, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.FilterSpec{}, err
	}
	return dataprocessing.DefaultFilterSpec(ds, s.cfg.DefaultPlatforms, s.cfg.DefaultGenres)
}

// ResolveFilter turns a request into a complete FilterSpec.
func (s *SalesService) ResolveFilter(ctx context.Context, req FilterRequest) (domain.FilterSpec, error) {
	if (req.YearMin != nil && *req.YearMin < 0) || (req.YearMax != nil && *req.YearMax < 0) {
		return domain.FilterSpec{}, fmt.Errorf("%w: year bounds must not be negative", ErrInvalidFilter)
	}

	spec := domain.FilterSpec{
		Platforms: nonNil(req.Platforms),
		Genres:    nonNil(req.Genres),
	}

	if req.YearMin == nil || req.YearMax == nil {
		rng, err := s.Range(ctx, string(domain.ColumnYear))
		if err != nil && !errors.Is(err, dataprocessing.ErrEmptyInput) {
			return domain.FilterSpec{}, err
		}
		spec.YearMin, spec.YearMax = int(rng.Min), int(rng.Max)
	}
	if req.YearMin != nil {
		spec.YearMin = *req.YearMin
	}
	if req.YearMax != nil {
		spec.YearMax = *req.YearMax
	}
	return spec, nil
}

// Filter applies spec to the dataset.
func (s *SalesService) Filter(ctx context.Context, spec domain.FilterSpec) (domain.Subset, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.Filter", trace.WithAttributes(
		attribute.Int("year_min", spec.YearMin),
		attribute.Int("year_max", spec.YearMax),
		attribute.StringSlice("platforms", spec.Platforms),
		attribute.StringSlice("genres", spec.Genres),
	))
	defer span.End()

	ds, err := s.Dataset(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	subset := dataprocessing.ApplyFilter(ds, spec)
	span.SetAttributes(attribute.Int("rows", len(subset)))
	infrastructure.RecordFilter(ctx, s.metrics, len(subset))

	s.logger.DebugContext(ctx, "filter applied",
		slog.Int("year_min", spec.YearMin),
		slog.Int("year_max", spec.YearMax),
		slog.Int("rows", len(subset)))
	return subset, nil
}

// Records returns the subset size and its first limit rows. A zero limit
// uses the configured sample size.
func (s *SalesService) Records(ctx context.Context, spec domain.FilterSpec, limit int) (int, []domain.Record, error) {
	if limit < 0 {
		return 0, nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidFilter)
	}
	if limit == 0 {
		limit = s.cfg.SampleSize
	}
	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return 0, nil, err
	}
	return len(subset), dataprocessing.Head(subset, limit), nil
}

// PlatformTotals sums global sales per platform.
func (s *SalesService) PlatformTotals(ctx context.Context, spec domain.FilterSpec) ([]domain.GroupTotal, error) {
	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return nil, err
	}
	return dataprocessing.PlatformTotals(subset), nil
}

// GenreTotals sums global sales per genre.
func (s *SalesService) GenreTotals(ctx context.Context, spec domain.FilterSpec) ([]domain.GroupTotal, error) {
	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return nil, err
	}
	return dataprocessing.GenreTotals(subset), nil
}

// RegionalTotals sums each regional sales column.
func (s *SalesService) RegionalTotals(ctx context.Context, spec domain.FilterSpec) (domain.RegionalTotals, error) {
	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return domain.RegionalTotals{}, err
	}
	return dataprocessing.RegionalTotals(subset), nil
}

// YearlyTrend sums global sales per year.
func (s *SalesService) YearlyTrend(ctx context.Context, spec domain.FilterSpec) ([]domain.YearTotal, error) {
	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return nil, err
	}
	return dataprocessing.YearlyTrend(subset), nil
}

// TopGames returns the n best-selling records; zero n uses the configured default.
func (s *SalesService) TopGames(ctx context.Context, spec domain.FilterSpec, n int) ([]domain.Record, error) {
	n, err := s.topN(n, s.cfg.TopGames)
	if err != nil {
		return nil, err
	}
	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return nil, err
	}
	return dataprocessing.TopGames(subset, n), nil
}

// TopPublishers returns the n publishers with the highest summed sales.
func (s *SalesService) TopPublishers(ctx context.Context, spec domain.FilterSpec, n int) ([]domain.GroupTotal, error) {
	n, err := s.topN(n, s.cfg.TopPublishers)
	if err != nil {
		return nil, err
	}
	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return nil, err
	}
	return dataprocessing.TopPublishers(subset, n), nil
}

// Summary returns the headline metrics; an empty subset yields an *EmptyInputError.
func (s *SalesService) Summary(ctx context.Context, spec domain.FilterSpec) (domain.SummaryMetrics, error) {
	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return domain.SummaryMetrics{}, err
	}
	return dataprocessing.Summary(subset)
}

// Overview computes every aggregate for one selection. An empty subset is
// not an error: NoData is set and Summary is omitted.
func (s *SalesService) Overview(ctx context.Context, spec domain.FilterSpec) (domain.Overview, error) {
	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return domain.Overview{}, err
	}

	ov := domain.Overview{
		Filter:         spec,
		Count:          len(subset),
		Sample:         dataprocessing.Head(subset, s.cfg.SampleSize),
		PlatformTotals: dataprocessing.PlatformTotals(subset),
		RegionalTotals: dataprocessing.RegionalTotals(subset),
		YearlyTrend:    dataprocessing.YearlyTrend(subset),
		GenreTotals:    dataprocessing.GenreTotals(subset),
		TopGames:       dataprocessing.TopGames(subset, s.cfg.TopGames),
		TopPublishers:  dataprocessing.TopPublishers(subset, s.cfg.TopPublishers),
	}

	summary, err := dataprocessing.Summary(subset)
	switch {
	case errors.Is(err, dataprocessing.ErrEmptyInput):
		ov.NoData = true
	case err != nil:
		return domain.Overview{}, err
	default:
		ov.Summary = &summary
	}
	return ov, nil
}

// Export serializes the filtered subset. formatName accepts csv, xlsx or excel.
func (s *SalesService) Export(ctx context.Context, spec domain.FilterSpec, formatName string) (*ExportResult, error) {
	format, err := exporter.ParseFormat(formatName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	subset, err := s.Filter(ctx, spec)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "SalesService.Export", trace.WithAttributes(
		attribute.String("format", string(format)),
		attribute.Int("rows", len(subset)),
	))
	defer span.End()

	data, err := s.exporter.Export(subset, format)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	infrastructure.RecordExport(ctx, s.metrics, string(format), len(data))

	s.logger.InfoContext(ctx, "export produced",
		slog.String("format", string(format)),
		slog.Int("rows", len(subset)),
		slog.Int("bytes", len(data)))

	return &ExportResult{
		Data:        data,
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Format:      format,
		Rows:        len(subset),
	}, nil
}

func (s *SalesService) topN(n, fallback int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: n must not be negative", ErrInvalidFilter)
	}
	if n == 0 {
		return fallback, nil
	}
	return n, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

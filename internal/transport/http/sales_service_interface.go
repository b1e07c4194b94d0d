package http

import (
	"context"

	"vgsales/internal/services"
	"vgsales/pkg/contracts/domain"
)

// SalesServiceInterface defines the sales operations used by SalesHandler
type SalesServiceInterface interface {
	Status(ctx context.Context) domain.DatasetStatus
	DistinctValues(ctx context.Context, column string) ([]string, error)
	Range(ctx context.Context, column string) (domain.Range, error)
	DefaultFilter(ctx context.Context) (domain.FilterSpec, error)
	ResolveFilter(ctx context.Context, req services.FilterRequest) (domain.FilterSpec, error)

	Records(ctx context.Context, spec domain.FilterSpec, limit int) (int, []domain.Record, error)
	PlatformTotals(ctx context.Context, spec domain.FilterSpec) ([]domain.GroupTotal, error)
	GenreTotals(ctx context.Context, spec domain.FilterSpec) ([]domain.GroupTotal, error)
	RegionalTotals(ctx context.Context, spec domain.FilterSpec) (domain.RegionalTotals, error)
	YearlyTrend(ctx context.Context, spec domain.FilterSpec) ([]domain.YearTotal, error)
	TopGames(ctx context.Context, spec domain.FilterSpec, n int) ([]domain.Record, error)
	TopPublishers(ctx context.Context, spec domain.FilterSpec, n int) ([]domain.GroupTotal, error)
	Summary(ctx context.Context, spec domain.FilterSpec) (domain.SummaryMetrics, error)
	Overview(ctx context.Context, spec domain.FilterSpec) (domain.Overview, error)
	Export(ctx context.Context, spec domain.FilterSpec, format string) (*services.ExportResult, error)
}

var _ SalesServiceInterface = (*services.SalesService)(nil)

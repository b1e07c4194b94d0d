package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "vgsales/internal/errors"
	"vgsales/internal/middleware"
	"vgsales/internal/services"
	"vgsales/pkg/contracts/domain"
)

type ctxKey string

const (
	filterKey ctxKey = "filter"
	queryKey  ctxKey = "query"
)

// salesQuery holds the query-string parameters shared by the sales endpoints.
type salesQuery struct {
	YearMin   *int     `query:"year_min" validate:"omitempty,gte=0,lte=9999"`
	YearMax   *int     `query:"year_max" validate:"omitempty,gte=0,lte=9999"`
	Platforms []string `query:"platform" validate:"dive,label"`
	Genres    []string `query:"genre" validate:"dive,label"`
	Limit     int      `query:"limit" validate:"gte=0,lte=100000"`
	N         int      `query:"n" validate:"gte=0,lte=1000"`
	Format    string   `query:"format" validate:"omitempty,oneof=csv xlsx excel"`
}

// SalesHandler serves the dataset metadata, filter, aggregate and export endpoints
type SalesHandler struct {
	service      SalesServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(service SalesServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SalesHandler {
	return &SalesHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "sales_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the sales routes
func (h *SalesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dataset", h.GetDatasetStatus)
	r.Get("/columns/{column}/values", h.GetColumnValues)
	r.Get("/columns/{column}/range", h.GetColumnRange)
	r.Get("/filters/default", h.GetDefaultFilter)

	r.Group(func(r chi.Router) {
		r.Use(h.FilterCtx)

		r.Get("/records", h.GetRecords)
		r.Get("/overview", h.GetOverview)
		r.Get("/export", h.Export)

		r.Route("/aggregates", func(r chi.Router) {
			r.Get("/platforms", h.GetPlatformTotals)
			r.Get("/regions", h.GetRegionalTotals)
			r.Get("/yearly", h.GetYearlyTrend)
			r.Get("/genres", h.GetGenreTotals)
			r.Get("/top-games", h.GetTopGames)
			r.Get("/top-publishers", h.GetTopPublishers)
			r.Get("/summary", h.GetSummary)
		})
	})

	return r
}

// FilterCtx parses and validates the filter query and stores the resolved
// FilterSpec in the request context
func (h *SalesHandler) FilterCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q, err := parseSalesQuery(r)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		if err := h.validator.ValidateStruct(q); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		spec, err := h.service.ResolveFilter(r.Context(), services.FilterRequest{
			YearMin:   q.YearMin,
			YearMax:   q.YearMax,
			Platforms: q.Platforms,
			Genres:    q.Genres,
		})
		if err != nil {
			h.fail(w, r, "failed to resolve filter", err)
			return
		}

		ctx := context.WithValue(r.Context(), filterKey, spec)
		ctx = context.WithValue(ctx, queryKey, q)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseSalesQuery(r *http.Request) (salesQuery, error) {
	var (
		q   salesQuery
		err error
	)
	if q.YearMin, err = middleware.QueryInt(r, "year_min"); err != nil {
		return q, err
	}
	if q.YearMax, err = middleware.QueryInt(r, "year_max"); err != nil {
		return q, err
	}
	limit, err := middleware.QueryInt(r, "limit")
	if err != nil {
		return q, err
	}
	if limit != nil {
		q.Limit = *limit
	}
	n, err := middleware.QueryInt(r, "n")
	if err != nil {
		return q, err
	}
	if n != nil {
		q.N = *n
	}
	q.Platforms = middleware.QueryList(r, "platform")
	q.Genres = middleware.QueryList(r, "genre")
	q.Format = r.URL.Query().Get("format")
	return q, nil
}

func filterFrom(ctx context.Context) domain.FilterSpec {
	spec, _ := ctx.Value(filterKey).(domain.FilterSpec)
	return spec
}

func queryFrom(ctx context.Context) salesQuery {
	q, _ := ctx.Value(queryKey).(salesQuery)
	return q
}

// fail logs err and maps service errors onto API errors
func (h *SalesHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	switch {
	case errors.Is(err, services.ErrInvalidFilter):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filter", err.Error()))
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

func success(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// GetDatasetStatus handles GET /api/sales/dataset
func (h *SalesHandler) GetDatasetStatus(w http.ResponseWriter, r *http.Request) {
	success(w, r, h.service.Status(r.Context()))
}

// GetColumnValues handles GET /api/sales/columns/{column}/values
func (h *SalesHandler) GetColumnValues(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")

	values, err := h.service.DistinctValues(r.Context(), column)
	if err != nil {
		h.fail(w, r, "failed to list column values", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"column": column,
		"data":   values,
		"count":  len(values),
	})
}

// GetColumnRange handles GET /api/sales/columns/{column}/range
func (h *SalesHandler) GetColumnRange(w http.ResponseWriter, r *http.Request) {
	rng, err := h.service.Range(r.Context(), chi.URLParam(r, "column"))
	if err != nil {
		h.fail(w, r, "failed to compute column range", err)
		return
	}
	success(w, r, rng)
}

// GetDefaultFilter handles GET /api/sales/filters/default
func (h *SalesHandler) GetDefaultFilter(w http.ResponseWriter, r *http.Request) {
	spec, err := h.service.DefaultFilter(r.Context())
	if err != nil {
		h.fail(w, r, "failed to build default filter", err)
		return
	}
	success(w, r, spec)
}

// GetRecords handles GET /api/sales/records
func (h *SalesHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	spec := filterFrom(r.Context())

	count, records, err := h.service.Records(r.Context(), spec, queryFrom(r.Context()).Limit)
	if err != nil {
		h.fail(w, r, "failed to filter records", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"filter": spec,
		"count":  count,
		"data":   records,
	})
}

// GetPlatformTotals handles GET /api/sales/aggregates/platforms
func (h *SalesHandler) GetPlatformTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.PlatformTotals(r.Context(), filterFrom(r.Context()))
	if err != nil {
		h.fail(w, r, "failed to aggregate platforms", err)
		return
	}
	success(w, r, totals)
}

// GetRegionalTotals handles GET /api/sales/aggregates/regions
func (h *SalesHandler) GetRegionalTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.RegionalTotals(r.Context(), filterFrom(r.Context()))
	if err != nil {
		h.fail(w, r, "failed to aggregate regions", err)
		return
	}
	success(w, r, totals)
}

// GetYearlyTrend handles GET /api/sales/aggregates/yearly
func (h *SalesHandler) GetYearlyTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.YearlyTrend(r.Context(), filterFrom(r.Context()))
	if err != nil {
		h.fail(w, r, "failed to aggregate years", err)
		return
	}
	success(w, r, trend)
}

// GetGenreTotals handles GET /api/sales/aggregates/genres
func (h *SalesHandler) GetGenreTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.GenreTotals(r.Context(), filterFrom(r.Context()))
	if err != nil {
		h.fail(w, r, "failed to aggregate genres", err)
		return
	}
	success(w, r, totals)
}

// GetTopGames handles GET /api/sales/aggregates/top-games
func (h *SalesHandler) GetTopGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.TopGames(r.Context(), filterFrom(r.Context()), queryFrom(r.Context()).N)
	if err != nil {
		h.fail(w, r, "failed to rank games", err)
		return
	}
	success(w, r, games)
}

// GetTopPublishers handles GET /api/sales/aggregates/top-publishers
func (h *SalesHandler) GetTopPublishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.service.TopPublishers(r.Context(), filterFrom(r.Context()), queryFrom(r.Context()).N)
	if err != nil {
		h.fail(w, r, "failed to rank publishers", err)
		return
	}
	success(w, r, publishers)
}

// summaryResponse adds the rendered time span to the summary metrics
type summaryResponse struct {
	domain.SummaryMetrics
	TimeSpan string `json:"time_span"`
}

// GetSummary handles GET /api/sales/aggregates/summary
func (h *SalesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), filterFrom(r.Context()))
	if err != nil {
		h.fail(w, r, "failed to summarize", err)
		return
	}
	resp := summaryResponse{SummaryMetrics: summary}
	if summary.HasYearSpan {
		resp.TimeSpan = fmt.Sprintf("%d - %d", summary.YearMin, summary.YearMax)
	}
	success(w, r, resp)
}

// GetOverview handles GET /api/sales/overview
func (h *SalesHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context(), filterFrom(r.Context()))
	if err != nil {
		h.fail(w, r, "failed to build overview", err)
		return
	}
	success(w, r, overview)
}

// Export handles GET /api/sales/export
func (h *SalesHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := queryFrom(r.Context())

	res, err := h.service.Export(r.Context(), filterFrom(r.Context()), q.Format)
	if err != nil {
		if !errors.Is(err, services.ErrDatasetUnavailable) &&
			!errors.Is(err, services.ErrUnsupportedFormat) &&
			!errors.Is(err, services.ErrInvalidFilter) {
			err = apierrors.NewExportError("export "+q.Format, err).WithContext("format", q.Format)
		}
		h.fail(w, r, "failed to export", err)
		return
	}

	h.logger.InfoContext(r.Context(), "serving export",
		slog.String("format", string(res.Format)),
		slog.Int("rows", res.Rows),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write export",
			slog.String("error", err.Error()))
	}
}

package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgsales/internal/config"
	"vgsales/internal/dataprocessing"
	"vgsales/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func salesRecord(name, platform string, year int, genre, publisher string, na, eu, jp, other, global float64) domain.Record {
	d := dataprocessing.DecadeOf(year)
	return domain.Record{
		Name:        name,
		Platform:    platform,
		Year:        intPtr(year),
		Genre:       genre,
		Publisher:   publisher,
		NASales:     na,
		EUSales:     eu,
		JPSales:     jp,
		OtherSales:  other,
		GlobalSales: global,
		Decade:      &d,
		TotalSales:  na + eu + jp + other,
	}
}

// stubSource serves a fixed dataset and counts loads.
type stubSource struct {
	ds    *domain.Dataset
	err   error
	calls atomic.Int32
}

func (s *stubSource) Load(ctx context.Context, source string) (*domain.Dataset, error) {
	s.calls.Add(1)
	return s.ds, s.err
}

func testDatasetConfig() config.DatasetConfig {
	return config.DatasetConfig{
		Path:             "sample.csv",
		Format:           "auto",
		MalformedRows:    "skip",
		DefaultPlatforms: []string{"PS2", "X360", "Wii"},
		DefaultGenres:    []string{"Action", "Sports", "Shooter"},
		SampleSize:       10,
		TopGames:         10,
		TopPublishers:    5,
	}
}

func newTestService(t *testing.T) (*SalesService, *stubSource) {
	t.Helper()
	src := &stubSource{ds: domain.NewDataset("sample.csv", []domain.Record{
		salesRecord("Sports Hit", "Wii", 2008, "Sports", "Nintendo", 5, 3, 1, 1, 10),
		salesRecord("Old Brawler", "PS2", 2005, "Action", "Capcom", 2, 1, 0, 0, 3),
		salesRecord("Action Hit", "Wii", 2008, "Action", "Ubisoft", 1, 1, 1, 1, 4),
	}, 1)}
	return NewSalesService(testDatasetConfig(), src, nil, quietLogger()), src
}

func wiiSpec() domain.FilterSpec {
	return domain.FilterSpec{
		YearMin:   2006,
		YearMax:   2010,
		Platforms: []string{"Wii"},
		Genres:    []string{"Sports", "Action"},
	}
}

func TestSalesService_LoadsOnce(t *testing.T) {
	svc, src := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Dataset(ctx)
		require.NoError(t, err)
	}
	_, err := svc.Overview(ctx, wiiSpec())
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestSalesService_Status(t *testing.T) {
	svc, _ := newTestService(t)

	st := svc.Status(context.Background())

	assert.True(t, st.Loaded)
	assert.Equal(t, "sample.csv", st.Source)
	assert.Equal(t, 3, st.Rows)
	assert.Equal(t, 1, st.Skipped)
	assert.Empty(t, st.Error)
	assert.False(t, st.LoadedAt.IsZero())
}

func TestSalesService_FailedLoad(t *testing.T) {
	loadErr := &dataprocessing.LoadError{Source: "missing.csv", Reason: "open source", Err: os.ErrNotExist}
	src := &stubSource{ds: domain.EmptyDataset("missing.csv"), err: loadErr}
	svc := NewSalesService(testDatasetConfig(), src, nil, quietLogger())
	ctx := context.Background()

	err := svc.Warmup(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var target *dataprocessing.LoadError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "missing.csv", target.Source)

	_, err = svc.Filter(ctx, wiiSpec())
	assert.ErrorIs(t, err, ErrDatasetUnavailable)

	st := svc.Status(ctx)
	assert.False(t, st.Loaded)
	assert.Equal(t, 0, st.Rows)
	assert.NotEmpty(t, st.Error)

	assert.Equal(t, int32(1), src.calls.Load(), "failed loads are not retried")
}

func TestSalesService_ColumnMetadata(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	platforms, err := svc.DistinctValues(ctx, "Platform")
	require.NoError(t, err)
	assert.Equal(t, []string{"PS2", "Wii"}, platforms)

	_, err = svc.DistinctValues(ctx, "Price")
	assert.ErrorIs(t, err, dataprocessing.ErrUnknownColumn)

	rng, err := svc.Range(ctx, "Year")
	require.NoError(t, err)
	assert.Equal(t, 2005.0, rng.Min)
	assert.Equal(t, 2008.0, rng.Max)
}

func TestSalesService_DefaultFilter(t *testing.T) {
	svc, _ := newTestService(t)

	spec, err := svc.DefaultFilter(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"PS2", "Wii"}, spec.Platforms)
	assert.Equal(t, []string{"Action", "Sports"}, spec.Genres)
	assert.LessOrEqual(t, spec.YearMin, spec.YearMax)
}

func TestSalesService_ResolveFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     FilterRequest
		want    domain.FilterSpec
		wantErr error
	}{
		{
			name: "missing bounds default to dataset range",
			req:  FilterRequest{Platforms: []string{"Wii"}},
			want: domain.FilterSpec{YearMin: 2005, YearMax: 2008, Platforms: []string{"Wii"}, Genres: []string{}},
		},
		{
			name: "explicit bounds are kept",
			req:  FilterRequest{YearMin: intPtr(2007), YearMax: intPtr(2009), Genres: []string{"Action"}},
			want: domain.FilterSpec{YearMin: 2007, YearMax: 2009, Platforms: []string{}, Genres: []string{"Action"}},
		},
		{
			name: "one bound given",
			req:  FilterRequest{YearMax: intPtr(2006)},
			want: domain.FilterSpec{YearMin: 2005, YearMax: 2006, Platforms: []string{}, Genres: []string{}},
		},
		{
			name:    "negative bound",
			req:     FilterRequest{YearMin: intPtr(-1)},
			wantErr: ErrInvalidFilter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveFilter(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSalesService_Aggregates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	spec := wiiSpec()

	count, rows, err := svc.Records(ctx, spec, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sports Hit", rows[0].Name)

	platforms, err := svc.PlatformTotals(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupTotal{{Key: "Wii", Sales: 14}}, platforms)

	genres, err := svc.GenreTotals(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupTotal{{Key: "Sports", Sales: 10}, {Key: "Action", Sales: 4}}, genres)

	regions, err := svc.RegionalTotals(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, domain.RegionalTotals{NA: 6, EU: 4, JP: 2, Other: 2}, regions)

	trend, err := svc.YearlyTrend(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, []domain.YearTotal{{Year: 2008, Sales: 14}}, trend)

	games, err := svc.TopGames(ctx, spec, 1)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Sports Hit", games[0].Name)

	publishers, err := svc.TopPublishers(ctx, spec, 0)
	require.NoError(t, err)
	assert.Len(t, publishers, 2)

	summary, err := svc.Summary(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 14.0, summary.TotalGlobalSales, 1e-9)
	assert.InDelta(t, 7.0, summary.AverageGlobalSales, 1e-9)
	assert.Equal(t, 2008, summary.YearMin)
	assert.Equal(t, 2008, summary.YearMax)
}

func TestSalesService_InvalidPaging(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Records(ctx, wiiSpec(), -1)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = svc.TopGames(ctx, wiiSpec(), -5)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestSalesService_SummaryEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Summary(context.Background(), domain.FilterSpec{YearMin: 2000, YearMax: 2010, Platforms: []string{"GB"}, Genres: []string{"Action"}})

	var empty *dataprocessing.EmptyInputError
	assert.ErrorAs(t, err, &empty)
}

func TestSalesService_Overview(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ov, err := svc.Overview(ctx, wiiSpec())
	require.NoError(t, err)
	assert.False(t, ov.NoData)
	assert.Equal(t, 2, ov.Count)
	require.NotNil(t, ov.Summary)
	assert.InDelta(t, 14.0, ov.Summary.TotalGlobalSales, 1e-9)
	assert.Len(t, ov.Sample, 2)
	assert.Equal(t, wiiSpec(), ov.Filter)

	empty, err := svc.Overview(ctx, domain.FilterSpec{YearMin: 2010, YearMax: 2000, Platforms: []string{"Wii"}, Genres: []string{"Sports"}})
	require.NoError(t, err)
	assert.True(t, empty.NoData)
	assert.Nil(t, empty.Summary)
	assert.Equal(t, 0, empty.Count)
	assert.Empty(t, empty.PlatformTotals)
}

func TestSalesService_Export(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Export(ctx, wiiSpec(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "video_game_sales_filtered.csv", res.Filename)
	assert.Equal(t, 2, res.Rows)
	assert.True(t, strings.HasPrefix(string(res.Data), "Rank,Name,Platform,Year"))

	res, err = svc.Export(ctx, wiiSpec(), "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "video_game_sales_filtered.xlsx", res.Filename)
	assert.True(t, strings.HasPrefix(string(res.Data), "PK"))

	_, err = svc.Export(ctx, wiiSpec(), "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSalesService_DefaultLoaderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vgsales.csv")
	content := "Rank,Name,Platform,Year,Genre,Publisher,NA_Sales,EU_Sales,JP_Sales,Other_Sales,Global_Sales\n" +
		"1,Wii Sports,Wii,2006,Sports,Nintendo,41.49,29.02,3.77,8.46,82.74\n" +
		"2,Mystery,Wii,N/A,Sports,,1,1,1,1,4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := testDatasetConfig()
	cfg.Path = path
	svc := NewSalesService(cfg, nil, nil, quietLogger())

	require.NoError(t, svc.Warmup(context.Background()))

	publishers, err := svc.DistinctValues(context.Background(), "Publisher")
	require.NoError(t, err)
	assert.Equal(t, []string{"Nintendo", "Unknown"}, publishers)
}

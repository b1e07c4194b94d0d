package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"vgsales/pkg/contracts/domain"
)

// Filter defaults preselected by the dashboard.
var (
	DefaultPlatforms = []string{"PS2", "X360", "Wii"}
	DefaultGenres    = []string{"Action", "Sports", "Shooter"}
)

// Text columns that DistinctValues accepts.
var textColumns = map[domain.Column]func(domain.Record) string{
	domain.ColumnName:      func(r domain.Record) string { return r.Name },
	domain.ColumnPlatform:  func(r domain.Record) string { return r.Platform },
	domain.ColumnGenre:     func(r domain.Record) string { return r.Genre },
	domain.ColumnPublisher: func(r domain.Record) string { return r.Publisher },
}

// Numeric columns that MinMax accepts. ok is false when the record has no value.
var numericColumns = map[domain.Column]func(domain.Record) (float64, bool){
	domain.ColumnYear: func(r domain.Record) (float64, bool) {
		if r.Year == nil {
			return 0, false
		}
		return float64(*r.Year), true
	},
	domain.ColumnDecade: func(r domain.Record) (float64, bool) {
		if r.Decade == nil {
			return 0, false
		}
		return float64(*r.Decade), true
	},
	domain.ColumnNASales:     func(r domain.Record) (float64, bool) { return r.NASales, true },
	domain.ColumnEUSales:     func(r domain.Record) (float64, bool) { return r.EUSales, true },
	domain.ColumnJPSales:     func(r domain.Record) (float64, bool) { return r.JPSales, true },
	domain.ColumnOtherSales:  func(r domain.Record) (float64, bool) { return r.OtherSales, true },
	domain.ColumnGlobalSales: func(r domain.Record) (float64, bool) { return r.GlobalSales, true },
	domain.ColumnTotalSales:  func(r domain.Record) (float64, bool) { return r.TotalSales, true },
}

// DistinctValues returns the distinct values of a text column, sorted ascending.
func DistinctValues(ds *domain.Dataset, column domain.Column) ([]string, error) {
	get, ok := textColumns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a text column", ErrUnknownColumn, column)
	}

	seen := make(map[string]struct{})
	values := make([]string, 0)
	for i := 0; i < ds.Len(); i++ {
		v := get(ds.At(i))
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// MinMax returns the bounds of a numeric column. Records without a value are
// ignored; a dataset with no values yields an *EmptyInputError.
func MinMax(ds *domain.Dataset, column domain.Column) (domain.Range, error) {
	get, ok := numericColumns[column]
	if !ok {
		return domain.Range{}, fmt.Errorf("%w: %s is not a numeric column", ErrUnknownColumn, column)
	}

	rng := domain.Range{Column: column, Min: math.Inf(1), Max: math.Inf(-1)}
	found := false
	for i := 0; i < ds.Len(); i++ {
		v, ok := get(ds.At(i))
		if !ok {
			continue
		}
		found = true
		rng.Min = math.Min(rng.Min, v)
		rng.Max = math.Max(rng.Max, v)
	}
	if !found {
		return domain.Range{Column: column}, &EmptyInputError{Operation: fmt.Sprintf("range of %s", column)}
	}
	return rng, nil
}

// DefaultFilterSpec builds the initial selection: the interquartile year
// range truncated to whole years, and the preferred platforms and genres that
// exist in the dataset. Nil preferences fall back to DefaultPlatforms and
// DefaultGenres.
func DefaultFilterSpec(ds *domain.Dataset, preferredPlatforms, preferredGenres []string) (domain.FilterSpec, error) {
	if preferredPlatforms == nil {
		preferredPlatforms = DefaultPlatforms
	}
	if preferredGenres == nil {
		preferredGenres = DefaultGenres
	}

	years := make([]float64, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		if r := ds.At(i); r.HasYear() {
			years = append(years, float64(*r.Year))
		}
	}
	if len(years) == 0 {
		return domain.FilterSpec{}, &EmptyInputError{Operation: "default filter"}
	}
	sort.Float64s(years)

	platforms, _ := DistinctValues(ds, domain.ColumnPlatform)
	genres, _ := DistinctValues(ds, domain.ColumnGenre)

	return domain.FilterSpec{
		YearMin:   int(Quantile(years, 0.25)),
		YearMax:   int(Quantile(years, 0.75)),
		Platforms: intersect(preferredPlatforms, platforms),
		Genres:    intersect(preferredGenres, genres),
	}, nil
}

// Quantile returns the q-quantile of sorted values, interpolating linearly
// between the closest ranks. sorted must be non-empty and ascending.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// intersect keeps the wanted values present in available, in wanted order.
func intersect(wanted, available []string) []string {
	set := toSet(available)
	out := make([]string, 0, len(wanted))
	for _, w := range wanted {
		if _, ok := set[w]; ok {
			out = append(out, w)
		}
	}
	return out
}

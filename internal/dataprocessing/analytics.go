package dataprocessing

import (
	"sort"

	"vgsales/pkg/contracts/domain"
)

// Default top-N sizes used by the overview.
const (
	DefaultTopGames      = 10
	DefaultTopPublishers = 5
)

// PlatformTotals sums global sales per platform, largest first. Equal sums
// are ordered by platform name.
func PlatformTotals(subset domain.Subset) []domain.GroupTotal {
	return groupTotals(subset, func(r domain.Record) string { return r.Platform })
}

// GenreTotals sums global sales per genre, largest first. Equal sums are
// ordered by genre name.
func GenreTotals(subset domain.Subset) []domain.GroupTotal {
	return groupTotals(subset, func(r domain.Record) string { return r.Genre })
}

// RegionalTotals sums each regional column over the whole subset.
func RegionalTotals(subset domain.Subset) domain.RegionalTotals {
	var rt domain.RegionalTotals
	for _, r := range subset {
		rt.NA += r.NASales
		rt.EU += r.EUSales
		rt.JP += r.JPSales
		rt.Other += r.OtherSales
	}
	return rt
}

// YearlyTrend sums global sales per year in ascending year order. Records
// without a year are not part of the series.
func YearlyTrend(subset domain.Subset) []domain.YearTotal {
	sums := make(map[int]float64)
	for _, r := range subset {
		if !r.HasYear() {
			continue
		}
		sums[*r.Year] += r.GlobalSales
	}

	trend := make([]domain.YearTotal, 0, len(sums))
	for y, s := range sums {
		trend = append(trend, domain.YearTotal{Year: y, Sales: s})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Year < trend[j].Year })
	return trend
}

// TopGames returns the n records with the highest global sales, highest
// first. Ties keep their order in the subset.
func TopGames(subset domain.Subset, n int) []domain.Record {
	ranked := make([]domain.Record, len(subset))
	copy(ranked, subset)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].GlobalSales > ranked[j].GlobalSales
	})
	return limit(ranked, n)
}

// TopPublishers returns the n publishers with the highest summed global
// sales, highest first. Equal sums are ordered by publisher name.
func TopPublishers(subset domain.Subset, n int) []domain.GroupTotal {
	totals := groupTotals(subset, func(r domain.Record) string { return r.Publisher })
	return limit(totals, n)
}

// Summary computes the headline metrics. The average and the year span need
// at least one record; an empty subset yields an *EmptyInputError. When no
// record carries a year (a source without any years) the span stays zero and
// HasYearSpan is false.
func Summary(subset domain.Subset) (domain.SummaryMetrics, error) {
	m := domain.SummaryMetrics{
		Count:            len(subset),
		TotalGlobalSales: TotalGlobalSales(subset),
	}
	if m.Count == 0 {
		return m, &EmptyInputError{Operation: "summary metrics"}
	}
	m.AverageGlobalSales = m.TotalGlobalSales / float64(m.Count)

	first := true
	for _, r := range subset {
		if !r.HasYear() {
			continue
		}
		y := *r.Year
		if first || y < m.YearMin {
			m.YearMin = y
		}
		if first || y > m.YearMax {
			m.YearMax = y
		}
		first = false
	}
	m.HasYearSpan = !first
	return m, nil
}

// TotalGlobalSales sums global sales. It is zero for an empty subset.
func TotalGlobalSales(subset domain.Subset) float64 {
	var total float64
	for _, r := range subset {
		total += r.GlobalSales
	}
	return total
}

func groupTotals(subset domain.Subset, key func(domain.Record) string) []domain.GroupTotal {
	index := make(map[string]int)
	totals := make([]domain.GroupTotal, 0)
	for _, r := range subset {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(totals)
			index[k] = i
			totals = append(totals, domain.GroupTotal{Key: k})
		}
		totals[i].Sales += r.GlobalSales
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Sales != totals[j].Sales {
			return totals[i].Sales > totals[j].Sales
		}
		return totals[i].Key < totals[j].Key
	})
	return totals
}

func limit[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

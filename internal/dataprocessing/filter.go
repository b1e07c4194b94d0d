package dataprocessing

import (
	"vgsales/pkg/contracts/domain"
)

// ApplyFilter returns the records of ds that have a year within
// [spec.YearMin, spec.YearMax] and whose platform and genre are selected.
// Source order is preserved. An inverted year range or an empty platform or
// genre set yields an empty subset. The dataset is not modified.
func ApplyFilter(ds *domain.Dataset, spec domain.FilterSpec) domain.Subset {
	subset := domain.Subset{}
	if ds.IsEmpty() || spec.YearMin > spec.YearMax || len(spec.Platforms) == 0 || len(spec.Genres) == 0 {
		return subset
	}

	platforms := toSet(spec.Platforms)
	genres := toSet(spec.Genres)

	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		if !rec.HasYear() {
			continue
		}
		y := *rec.Year
		if y < spec.YearMin || y > spec.YearMax {
			continue
		}
		if _, ok := platforms[rec.Platform]; !ok {
			continue
		}
		if _, ok := genres[rec.Genre]; !ok {
			continue
		}
		subset = append(subset, rec)
	}
	return subset
}

// Head returns the first n records of subset (all of them when n exceeds the length).
func Head(subset domain.Subset, n int) []domain.Record {
	if n < 0 {
		n = 0
	}
	if n > len(subset) {
		n = len(subset)
	}
	out := make([]domain.Record, n)
	copy(out, subset[:n])
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Package dataprocessing turns the raw video-game sales source into the
// cleaned dataset and derives every view the dashboard shows from it.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Loader: reads a delimited or workbook source, cleans it and derives columns
// 2. DatasetCache: loads each source once and hands out the same dataset afterwards
// 3. ApplyFilter: selects the records matching a FilterSpec
// 4. Aggregates: platform, genre, region, year and publisher totals, top games and summary
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, dataprocessing.LoaderOptions{})
//	cache := dataprocessing.NewDatasetCache(loader)
//
//	ds, err := cache.Get(ctx, "vgsales.csv")
//	if err != nil {
//	    // ds is empty; show the load error and stop
//	}
//
//	subset := dataprocessing.ApplyFilter(ds, domain.FilterSpec{
//	    YearMin: 2006, YearMax: 2010,
//	    Platforms: []string{"Wii"}, Genres: []string{"Sports", "Action"},
//	})
//	totals := dataprocessing.PlatformTotals(subset)
//
// # Data Flow
//
//	Source file → Loader → Dataset (cached) → ApplyFilter → Subset → Aggregates / exporter
//
// # Cleaning
//
// Cleaning runs once per load, in this order:
//
//   - missing years take the median of the present years, rounded to the nearest integer
//   - missing publishers become "Unknown"
//   - Decade is the year rounded down to a multiple of ten
//   - Total_Sales is NA + EU + JP + Other, kept alongside the source Global_Sales
//
// Rows with unparsable or negative numeric cells are skipped with a warning,
// or fail the whole load under MalformedFail.
//
// # Ordering
//
// Grouped totals are sorted by sum descending, then key ascending. TopGames is
// a stable sort, so equal sales keep subset order. YearlyTrend is ascending by year.
package dataprocessing

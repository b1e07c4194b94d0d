package domain

import (
	"time"
)

// Column names a column of the sales dataset. The values match the header
// names of the source file and of every export.
type Column string

const (
	ColumnRank        Column = "Rank"
	ColumnName        Column = "Name"
	ColumnPlatform    Column = "Platform"
	ColumnYear        Column = "Year"
	ColumnGenre       Column = "Genre"
	ColumnPublisher   Column = "Publisher"
	ColumnNASales     Column = "NA_Sales"
	ColumnEUSales     Column = "EU_Sales"
	ColumnJPSales     Column = "JP_Sales"
	ColumnOtherSales  Column = "Other_Sales"
	ColumnGlobalSales Column = "Global_Sales"

	// Derived columns
	ColumnDecade     Column = "Decade"
	ColumnTotalSales Column = "Total_Sales"
)

// RequiredColumns lists the columns every source must carry.
var RequiredColumns = []Column{
	ColumnName, ColumnPlatform, ColumnYear, ColumnGenre, ColumnPublisher,
	ColumnNASales, ColumnEUSales, ColumnJPSales, ColumnOtherSales, ColumnGlobalSales,
}

// ExportColumns is the column order of both export formats: original columns
// first, derived columns last.
var ExportColumns = []Column{
	ColumnRank, ColumnName, ColumnPlatform, ColumnYear, ColumnGenre, ColumnPublisher,
	ColumnNASales, ColumnEUSales, ColumnJPSales, ColumnOtherSales, ColumnGlobalSales,
	ColumnDecade, ColumnTotalSales,
}

// Record is one game-sales row after cleaning. Sales figures are in millions.
// Records are values; nothing in the pipeline mutates one after loading.
type Record struct {
	Rank        *int    `json:"rank,omitempty"`
	Name        string  `json:"name"`
	Platform    string  `json:"platform"`
	Year        *int    `json:"year"`
	Genre       string  `json:"genre"`
	Publisher   string  `json:"publisher"`
	NASales     float64 `json:"na_sales"`
	EUSales     float64 `json:"eu_sales"`
	JPSales     float64 `json:"jp_sales"`
	OtherSales  float64 `json:"other_sales"`
	GlobalSales float64 `json:"global_sales"`

	// Derived at load time. TotalSales is the sum of the four regions and is
	// kept independently of the source-supplied GlobalSales.
	Decade     *int    `json:"decade"`
	TotalSales float64 `json:"total_sales"`
}

// HasYear reports whether the record carries a year.
func (r Record) HasYear() bool {
	return r.Year != nil
}

// YearValue returns the year, or 0 when absent.
func (r Record) YearValue() int {
	if r.Year == nil {
		return 0
	}
	return *r.Year
}

// Dataset is the cleaned, load-once collection of records.
type Dataset struct {
	records  []Record
	source   string
	loadedAt time.Time
	skipped  int
}

// NewDataset wraps records into a Dataset. The slice is owned by the dataset
// afterwards and must not be modified by the caller.
func NewDataset(source string, records []Record, skipped int) *Dataset {
	return &Dataset{
		records:  records,
		source:   source,
		loadedAt: time.Now().UTC(),
		skipped:  skipped,
	}
}

// EmptyDataset returns a dataset with no rows for the given source.
func EmptyDataset(source string) *Dataset {
	return NewDataset(source, nil, 0)
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// IsEmpty reports whether the dataset has no rows.
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// At returns the i-th record in source order.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of the records in source order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Source identifies where the dataset was loaded from.
func (d *Dataset) Source() string { return d.source }

// LoadedAt is the time the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Skipped is the number of malformed source rows dropped during loading.
func (d *Dataset) Skipped() int { return d.skipped }

// FilterSpec is a user selection. Bounds are inclusive. Empty Platforms or
// Genres select nothing.
type FilterSpec struct {
	YearMin   int      `json:"year_min"`
	YearMax   int      `json:"year_max"`
	Platforms []string `json:"platforms"`
	Genres    []string `json:"genres"`
}

// Subset is the ordered result of applying a FilterSpec to a Dataset.
type Subset []Record

// GroupTotal is a summed sales figure for one group key.
type GroupTotal struct {
	Key   string  `json:"key"`
	Sales float64 `json:"sales"`
}

// YearTotal is a summed sales figure for one year.
type YearTotal struct {
	Year  int     `json:"year"`
	Sales float64 `json:"sales"`
}

// RegionalTotals holds the summed sales of the four regions.
type RegionalTotals struct {
	NA    float64 `json:"NA_Sales"`
	EU    float64 `json:"EU_Sales"`
	JP    float64 `json:"JP_Sales"`
	Other float64 `json:"Other_Sales"`
}

// SummaryMetrics are the headline numbers of a subset.
type SummaryMetrics struct {
	Count              int     `json:"count"`
	TotalGlobalSales   float64 `json:"total_global_sales"`
	AverageGlobalSales float64 `json:"average_global_sales"`
	YearMin            int     `json:"year_min"`
	YearMax            int     `json:"year_max"`
	HasYearSpan        bool    `json:"has_year_span"`
}

// Range is the minimum and maximum of a numeric column.
type Range struct {
	Column Column  `json:"column"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Overview bundles every aggregate for one filter selection.
type Overview struct {
	Filter         FilterSpec      `json:"filter"`
	Count          int             `json:"count"`
	NoData         bool            `json:"no_data"`
	Summary        *SummaryMetrics `json:"summary,omitempty"`
	Sample         []Record        `json:"sample"`
	PlatformTotals []GroupTotal    `json:"platform_totals"`
	RegionalTotals RegionalTotals  `json:"regional_totals"`
	YearlyTrend    []YearTotal     `json:"yearly_trend"`
	GenreTotals    []GroupTotal    `json:"genre_totals"`
	TopGames       []Record        `json:"top_games"`
	TopPublishers  []GroupTotal    `json:"top_publishers"`
}

// DatasetStatus describes the outcome of the one-time load.
type DatasetStatus struct {
	Source   string    `json:"source"`
	Loaded   bool      `json:"loaded"`
	Rows     int       `json:"rows"`
	Skipped  int       `json:"skipped"`
	LoadedAt time.Time `json:"loaded_at"`
	Error    string    `json:"error,omitempty"`
}

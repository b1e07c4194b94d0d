package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"vgsales/pkg/contracts/domain"
)

// UnknownPublisher replaces missing publisher values.
const UnknownPublisher = "Unknown"

// Accepted release years. Anything outside is a malformed cell.
const (
	MinYear = 0
	MaxYear = 9999
)

// SourceFormat selects how a source file is decoded.
type SourceFormat string

const (
	FormatAuto SourceFormat = "auto"
	FormatCSV  SourceFormat = "csv"
	FormatXLSX SourceFormat = "xlsx"
)

// MalformedRowPolicy decides what happens to rows whose numeric cells do not parse.
type MalformedRowPolicy string

const (
	// MalformedSkip drops the row, logs a warning and counts it in Dataset.Skipped.
	MalformedSkip MalformedRowPolicy = "skip"
	// MalformedFail turns the first malformed row into a LoadError.
	MalformedFail MalformedRowPolicy = "fail"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	Format        SourceFormat
	MalformedRows MalformedRowPolicy
}

// missingTokens are the cell values read as "no value", following the
// spreadsheet/dataframe conventions the dataset was published with.
var missingTokens = map[string]struct{}{
	"": {}, "N/A": {}, "NA": {}, "n/a": {}, "#N/A": {}, "NaN": {}, "nan": {}, "-NaN": {},
	"-nan": {}, "null": {}, "NULL": {}, "<NA>": {}, "None": {},
}

func isMissing(cell string) bool {
	_, ok := missingTokens[strings.TrimSpace(cell)]
	return ok
}

// Loader reads a sales source and produces the cleaned dataset.
type Loader struct {
	logger *slog.Logger
	opts   LoaderOptions
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger, opts LoaderOptions) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Format == "" {
		opts.Format = FormatAuto
	}
	if opts.MalformedRows == "" {
		opts.MalformedRows = MalformedSkip
	}
	return &Loader{
		logger: logger.With(slog.String("component", "dataset_loader")),
		opts:   opts,
	}
}

// Load reads the file at path. On failure it returns an empty dataset together
// with a *LoadError so callers always hold a usable value.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	start := time.Now()
	l.logger.InfoContext(ctx, "loading dataset", slog.String("source", path))

	f, err := os.Open(path)
	if err != nil {
		reason := "source unreadable"
		if errors.Is(err, os.ErrNotExist) {
			reason = "source not found"
		}
		return domain.EmptyDataset(path), newLoadError(path, reason, err)
	}
	defer f.Close()

	ds, err := l.Read(ctx, path, f, l.formatFor(path))
	if err != nil {
		l.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("source", path),
			slog.String("error", err.Error()))
		return ds, err
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", path),
		slog.Int("rows", ds.Len()),
		slog.Int("skipped", ds.Skipped()),
		slog.Duration("duration", time.Since(start)))
	return ds, nil
}

// Read decodes a source from r. The source name is only used for identity and messages.
func (l *Loader) Read(ctx context.Context, source string, r io.Reader, format SourceFormat) (*domain.Dataset, error) {
	var (
		t   *table
		err error
	)
	switch format {
	case FormatXLSX:
		t, err = readWorkbook(r)
	default:
		t, err = readDelimited(r)
	}
	if err != nil {
		return domain.EmptyDataset(source), newLoadError(source, "source malformed", err)
	}
	return l.build(ctx, source, t)
}

func (l *Loader) formatFor(path string) SourceFormat {
	if l.opts.Format != FormatAuto {
		return l.opts.Format
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// table is a decoded source: header, data rows and the 1-based source line of each row.
type table struct {
	header []string
	rows   [][]string
	lines  []int
}

func readDelimited(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &table{header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

func readWorkbook(r io.Reader) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	t := &table{header: rows[0]}
	for i, row := range rows[1:] {
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, i+2)
	}
	return t, nil
}

// parsedRow is a row after type conversion, before year imputation.
type parsedRow struct {
	rec     domain.Record
	rawYear float64
	hasYear bool
}

func (l *Loader) build(ctx context.Context, source string, t *table) (*domain.Dataset, error) {
	index := make(map[domain.Column]int, len(t.header))
	for i, h := range t.header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[domain.Column(name)]; !dup {
			index[domain.Column(name)] = i
		}
	}
	for _, col := range domain.RequiredColumns {
		if _, ok := index[col]; !ok {
			return domain.EmptyDataset(source), newLoadError(source, fmt.Sprintf("missing column %s", col), nil)
		}
	}

	parsed := make([]parsedRow, 0, len(t.rows))
	skipped := 0
	for i, row := range t.rows {
		if isBlankRow(row) {
			continue
		}
		pr, err := parseRow(row, index)
		if err != nil {
			if l.opts.MalformedRows == MalformedFail {
				return domain.EmptyDataset(source), newLoadError(source, fmt.Sprintf("malformed row at line %d", t.lines[i]), err)
			}
			skipped++
			l.logger.WarnContext(ctx, "skipping malformed row",
				slog.String("source", source),
				slog.Int("line", t.lines[i]),
				slog.String("error", err.Error()))
			continue
		}
		parsed = append(parsed, pr)
	}

	records := clean(parsed)
	if len(records) > 0 && countYears(parsed) == 0 {
		l.logger.WarnContext(ctx, "no year values in source, year and decade left empty",
			slog.String("source", source))
	}
	return domain.NewDataset(source, records, skipped), nil
}

// clean applies the cleaning rules in order: year imputation, publisher
// default, decade, total sales. Publisher is already defaulted by parseRow.
func clean(parsed []parsedRow) []domain.Record {
	years := make([]float64, 0, len(parsed))
	for _, p := range parsed {
		if p.hasYear {
			years = append(years, p.rawYear)
		}
	}

	var imputed *int
	if m, ok := median(years); ok {
		v := int(math.Round(m))
		imputed = &v
	}

	records := make([]domain.Record, len(parsed))
	for i, p := range parsed {
		rec := p.rec
		switch {
		case p.hasYear:
			y := int(p.rawYear)
			rec.Year = &y
		case imputed != nil:
			y := *imputed
			rec.Year = &y
		}
		if rec.Year != nil {
			d := DecadeOf(*rec.Year)
			rec.Decade = &d
		}
		rec.TotalSales = rec.NASales + rec.EUSales + rec.JPSales + rec.OtherSales
		records[i] = rec
	}
	return records
}

func countYears(parsed []parsedRow) int {
	n := 0
	for _, p := range parsed {
		if p.hasYear {
			n++
		}
	}
	return n
}

func parseRow(row []string, index map[domain.Column]int) (parsedRow, error) {
	cell := func(col domain.Column) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var pr parsedRow
	rec := domain.Record{
		Name:     cell(domain.ColumnName),
		Platform: cell(domain.ColumnPlatform),
		Genre:    cell(domain.ColumnGenre),
	}

	if _, ok := index[domain.ColumnRank]; ok && !isMissing(cell(domain.ColumnRank)) {
		rank, err := strconv.Atoi(strings.TrimSpace(cell(domain.ColumnRank)))
		if err != nil {
			return pr, fmt.Errorf("column %s: %w", domain.ColumnRank, err)
		}
		rec.Rank = &rank
	}

	if y := cell(domain.ColumnYear); !isMissing(y) {
		v, err := strconv.ParseFloat(strings.TrimSpace(y), 64)
		if err != nil {
			return pr, fmt.Errorf("column %s: %w", domain.ColumnYear, err)
		}
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return pr, fmt.Errorf("column %s: %q is not a whole year", domain.ColumnYear, y)
		}
		if v < MinYear || v > MaxYear {
			return pr, fmt.Errorf("column %s: %q is outside %d..%d", domain.ColumnYear, y, MinYear, MaxYear)
		}
		pr.rawYear = v
		pr.hasYear = true
	}

	rec.Publisher = cell(domain.ColumnPublisher)
	if isMissing(rec.Publisher) {
		rec.Publisher = UnknownPublisher
	}

	sales := []struct {
		col domain.Column
		dst *float64
	}{
		{domain.ColumnNASales, &rec.NASales},
		{domain.ColumnEUSales, &rec.EUSales},
		{domain.ColumnJPSales, &rec.JPSales},
		{domain.ColumnOtherSales, &rec.OtherSales},
		{domain.ColumnGlobalSales, &rec.GlobalSales},
	}
	for _, s := range sales {
		v, err := parseSales(cell(s.col))
		if err != nil {
			return pr, fmt.Errorf("column %s: %w", s.col, err)
		}
		*s.dst = v
	}

	pr.rec = rec
	return pr, nil
}

func parseSales(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a non-negative number", cell)
	}
	return v, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// DecadeOf rounds a year down to a multiple of ten.
func DecadeOf(year int) int {
	m := year % 10
	if m < 0 {
		m += 10
	}
	return year - m
}

// median returns the median of values without modifying the input.
func median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

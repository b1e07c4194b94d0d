package exporter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"vgsales/pkg/contracts/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the name of the single worksheet in spreadsheet exports.
const SheetName = "VideoGameSales"

const filenameBase = "video_game_sales_filtered"

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Filename is the suggested download name for the format.
func (f Format) Filename() string {
	return filenameBase + "." + string(f)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// SalesExporter serializes filtered subsets. Columns are the original source
// columns followed by the derived ones; an empty subset yields the header only.
type SalesExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewSalesExporter creates an exporter. A nil logger falls back to slog.Default.
func NewSalesExporter(logger *slog.Logger) *SalesExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SalesExporter{
		csvWriter: NewCSVWriter(),
		logger:    logger.With(slog.String("component", "sales_exporter")),
	}
}

// Export serializes subset in the given format.
func (e *SalesExporter) Export(subset domain.Subset, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return e.ToDelimitedText(subset)
	case FormatXLSX:
		return e.ToSpreadsheet(subset)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ToDelimitedText encodes subset as UTF-8 CSV with a header row.
func (e *SalesExporter) ToDelimitedText(subset domain.Subset) ([]byte, error) {
	rows := make([][]string, 0, len(subset))
	for _, r := range subset {
		rows = append(rows, recordToCSVRow(r))
	}

	data, err := e.csvWriter.Encode(WriteOptions{
		Headers: headers(),
		Records: rows,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode csv: %w", err)
	}

	e.logger.Debug("encoded csv export",
		slog.Int("rows", len(subset)),
		slog.Int("bytes", len(data)))
	return data, nil
}

// ToSpreadsheet encodes subset as an xlsx workbook with one sheet. Numeric
// columns are written as numbers, absent values as empty cells.
func (e *SalesExporter) ToSpreadsheet(subset domain.Subset) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := headers()
	if err := xl.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range subset {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i, err)
		}
		row := recordToSheetRow(r)
		if err := xl.SetSheetRow(SheetName, cellRef, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("encoded spreadsheet export",
		slog.Int("rows", len(subset)),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func headers() []string {
	out := make([]string, len(domain.ExportColumns))
	for i, c := range domain.ExportColumns {
		out[i] = string(c)
	}
	return out
}

// recordToCSVRow follows domain.ExportColumns order.
func recordToCSVRow(r domain.Record) []string {
	return []string{
		formatOptionalInt(r.Rank),
		r.Name,
		r.Platform,
		formatOptionalInt(r.Year),
		r.Genre,
		r.Publisher,
		formatFloat(r.NASales),
		formatFloat(r.EUSales),
		formatFloat(r.JPSales),
		formatFloat(r.OtherSales),
		formatFloat(r.GlobalSales),
		formatOptionalInt(r.Decade),
		formatFloat(r.TotalSales),
	}
}

func recordToSheetRow(r domain.Record) []interface{} {
	return []interface{}{
		optionalCell(r.Rank),
		r.Name,
		r.Platform,
		optionalCell(r.Year),
		r.Genre,
		r.Publisher,
		r.NASales,
		r.EUSales,
		r.JPSales,
		r.OtherSales,
		r.GlobalSales,
		optionalCell(r.Decade),
		r.TotalSales,
	}
}

func optionalCell(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

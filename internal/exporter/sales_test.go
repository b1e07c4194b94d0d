package exporter

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vgsales/internal/dataprocessing"
	"vgsales/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sourceCSV = "Rank,Name,Platform,Year,Genre,Publisher,NA_Sales,EU_Sales,JP_Sales,Other_Sales,Global_Sales\n" +
	"1,Wii Sports,Wii,2006,Sports,Nintendo,41.49,29.02,3.77,8.46,82.74\n" +
	"2,\"Rock, Paper\",Wii,2008,Action,,1,0.5,0.25,0.25,2.1\n" +
	"3,Halo 3,X360,2007,Shooter,Microsoft Game Studios,7.97,2.81,0.13,1.21,12.12\n"

func loadSubset(t *testing.T) domain.Subset {
	t.Helper()
	loader := dataprocessing.NewLoader(quietLogger(), dataprocessing.LoaderOptions{})
	ds, err := loader.Read(context.Background(), "source.csv", strings.NewReader(sourceCSV), dataprocessing.FormatCSV)
	require.NoError(t, err)
	return dataprocessing.ApplyFilter(ds, domain.FilterSpec{
		YearMin:   2000,
		YearMax:   2010,
		Platforms: []string{"Wii", "X360"},
		Genres:    []string{"Sports", "Action", "Shooter"},
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "csv", want: FormatCSV},
		{input: "", want: FormatCSV},
		{input: "XLSX", want: FormatXLSX},
		{input: "excel", want: FormatXLSX},
		{input: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Metadata(t *testing.T) {
	assert.Equal(t, "video_game_sales_filtered.csv", FormatCSV.Filename())
	assert.Equal(t, "video_game_sales_filtered.xlsx", FormatXLSX.Filename())
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestSalesExporter_ToDelimitedTextRoundTrip(t *testing.T) {
	subset := loadSubset(t)
	require.Len(t, subset, 3)
	exp := NewSalesExporter(quietLogger())

	data, err := exp.ToDelimitedText(subset)
	require.NoError(t, err)

	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, "Rank,Name,Platform,Year,Genre,Publisher,NA_Sales,EU_Sales,JP_Sales,Other_Sales,Global_Sales,Decade,Total_Sales", firstLine)

	loader := dataprocessing.NewLoader(quietLogger(), dataprocessing.LoaderOptions{MalformedRows: dataprocessing.MalformedFail})
	reloaded, err := loader.Read(context.Background(), "export.csv", bytes.NewReader(data), dataprocessing.FormatCSV)
	require.NoError(t, err)

	require.Equal(t, len(subset), reloaded.Len())
	for i, want := range subset {
		got := reloaded.At(i)
		assert.Equal(t, want, got, "record %d", i)
	}
}

func TestSalesExporter_ToDelimitedTextEmpty(t *testing.T) {
	exp := NewSalesExporter(nil)

	data, err := exp.ToDelimitedText(domain.Subset{})
	require.NoError(t, err)

	assert.Equal(t, "Rank,Name,Platform,Year,Genre,Publisher,NA_Sales,EU_Sales,JP_Sales,Other_Sales,Global_Sales,Decade,Total_Sales\n", string(data))
}

func TestSalesExporter_ToSpreadsheet(t *testing.T) {
	subset := loadSubset(t)
	exp := NewSalesExporter(quietLogger())

	data, err := exp.ToSpreadsheet(subset)
	require.NoError(t, err)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer xl.Close()

	assert.Equal(t, []string{SheetName}, xl.GetSheetList())

	rows, err := xl.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(subset)+1)
	assert.Equal(t, headers(), rows[0])
	assert.Equal(t, "Wii Sports", rows[1][1])
	assert.Equal(t, "Unknown", rows[2][5])

	global, err := xl.GetCellValue(SheetName, "K2")
	require.NoError(t, err)
	assert.Equal(t, "82.74", global)
}

func TestSalesExporter_SpreadsheetReloads(t *testing.T) {
	subset := loadSubset(t)
	exp := NewSalesExporter(quietLogger())

	data, err := exp.ToSpreadsheet(subset)
	require.NoError(t, err)

	loader := dataprocessing.NewLoader(quietLogger(), dataprocessing.LoaderOptions{MalformedRows: dataprocessing.MalformedFail})
	reloaded, err := loader.Read(context.Background(), "export.xlsx", bytes.NewReader(data), dataprocessing.FormatXLSX)
	require.NoError(t, err)

	require.Equal(t, len(subset), reloaded.Len())
	for i, want := range subset {
		got := reloaded.At(i)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Year, got.Year)
		assert.Equal(t, want.Publisher, got.Publisher)
		assert.InDelta(t, want.GlobalSales, got.GlobalSales, 1e-9)
	}
}

func TestSalesExporter_ExportUnsupported(t *testing.T) {
	exp := NewSalesExporter(quietLogger())

	_, err := exp.Export(domain.Subset{}, Format("pdf"))
	assert.Error(t, err)
}

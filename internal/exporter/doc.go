// Package exporter serializes filtered sales subsets for download.
//
// This package contains two components:
//
// CSVWriter: Core CSV writing functionality with an optional header row. Output
// is plain UTF-8 without a byte order mark.
//
// SalesExporter: Encodes a domain.Subset as CSV text or as an xlsx workbook
// with a single VideoGameSales sheet. Both formats carry the original source
// columns followed by Decade and Total_Sales.
//
// Example usage:
//
//	exp := exporter.NewSalesExporter(logger)
//
//	data, err := exp.Export(subset, exporter.FormatXLSX)
//	if err != nil {
//	    return err
//	}
//	err = exporter.WriteFile(filepath.Join(dir, exporter.FormatXLSX.Filename()), data)
package exporter

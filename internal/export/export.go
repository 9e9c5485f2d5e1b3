// Package export renders filtered sales rows as downloadable files.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"ventas/internal/core"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet that holds the rows in XLSX exports.
const SheetName = "Ventas"

// BaseName is the download name without extension.
const BaseName = "ventas_filtradas"

// Header is the column row shared by every format.
var Header = []string{"Fecha", "Categoría", "Región", "Ventas"}

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "csv", "xlsx" and "excel".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FileName is the suggested download name, e.g. ventas_filtradas.csv.
func (f Format) FileName() string {
	return BaseName + "." + string(f)
}

// ContentType is the MIME type served with the file.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Render dispatches to CSV or XLSX.
func Render(f Format, rows []core.Record) ([]byte, error) {
	switch f {
	case FormatCSV:
		return CSV(rows)
	case FormatXLSX:
		return XLSX(rows)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// CSV writes rows in the given order with a header line. Amounts are plain
// decimals without grouping.
func CSV(rows []core.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		if err := w.Write(fields(r)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX writes rows to a single worksheet. Dates are ISO strings and amounts
// numeric cells.
func XLSX(rows []core.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{r.Date.String(), string(r.Category), string(r.Region), r.Amount}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseCSV reads a file produced by CSV.
func ParseCSV(r io.Reader) ([]core.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return parseRows(lines)
}

// ParseXLSX reads the Ventas sheet of a file produced by XLSX.
func ParseXLSX(r io.Reader) ([]core.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	lines, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", SheetName, err)
	}
	return parseRows(lines)
}

// ParseRow converts one data line (Fecha, Categoría, Región, Ventas).
func ParseRow(line []string) (core.Record, error) {
	if len(line) < len(Header) {
		return core.Record{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(line))
	}
	date, err := core.ParseDate(line[0])
	if err != nil {
		return core.Record{}, err
	}
	cat, err := core.ParseCategory(line[1])
	if err != nil {
		return core.Record{}, err
	}
	reg, err := core.ParseRegion(line[2])
	if err != nil {
		return core.Record{}, err
	}
	amount, err := core.ParseAmount(line[3])
	if err != nil {
		return core.Record{}, fmt.Errorf("amount %q: %w", line[3], err)
	}
	return core.Record{Date: date, Category: cat, Region: reg, Amount: amount}, nil
}

func parseRows(lines [][]string) ([]core.Record, error) {
	if len(lines) == 0 {
		return nil, errors.New("missing header")
	}
	for i, h := range Header {
		if i >= len(lines[0]) || strings.TrimSpace(lines[0][i]) != h {
			return nil, fmt.Errorf("unexpected header %v", lines[0])
		}
	}
	out := make([]core.Record, 0, len(lines)-1)
	for i, line := range lines[1:] {
		rec, err := ParseRow(line)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func fields(r core.Record) []string {
	return []string{r.Date.String(), string(r.Category), string(r.Region), core.PlainAmount(r.Amount)}
}

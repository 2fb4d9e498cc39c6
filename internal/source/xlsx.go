package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ru-addr/internal/address"
)

// XLSX streams rows of one worksheet, using the first row as the header
type XLSX struct {
	file    *excelize.File
	rows    *excelize.Rows
	headers []string
	line    int
}

// OpenXLSX opens a workbook; an empty sheet name means the first sheet
func OpenXLSX(path, sheet string) (*XLSX, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			f.Close()
			return nil, fmt.Errorf("no sheets found in Excel file")
		}
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	x := &XLSX{file: f, rows: rows}
	if !rows.Next() {
		x.Close()
		return nil, fmt.Errorf("sheet %s has no header row", sheet)
	}
	header, err := rows.Columns()
	if err != nil {
		x.Close()
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for _, h := range header {
		x.headers = append(x.headers, strings.TrimSpace(h))
	}
	x.line = 1
	return x, nil
}

// Headers returns the header names in column order
func (x *XLSX) Headers() []string {
	return x.headers
}

// Next returns the next non-blank row keyed by header
func (x *XLSX) Next() (address.Record, error) {
	for x.rows.Next() {
		x.line++
		cols, err := x.rows.Columns()
		if err != nil {
			return nil, &RecordError{Line: x.line, Err: err}
		}

		rec := make(address.Record, len(cols))
		for i, c := range cols {
			if i >= len(x.headers) || x.headers[i] == "" {
				continue
			}
			rec[x.headers[i]] = c
		}
		if rec.IsEmpty() {
			continue
		}
		return rec, nil
	}
	if err := x.rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return nil, io.EOF
}

// Close releases the workbook
func (x *XLSX) Close() error {
	if x.rows != nil {
		x.rows.Close()
	}
	return x.file.Close()
}

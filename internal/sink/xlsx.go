package sink

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ru-addr/internal/normalize"
)

// XLSX streams rows into a single worksheet and saves the workbook on Close
type XLSX struct {
	path   string
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

// CreateXLSX prepares a workbook that will be saved to path
func CreateXLSX(path, sheet string) (*XLSX, error) {
	f := excelize.NewFile()
	if sheet != "" {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(f.GetSheetName(0))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}
	return &XLSX{path: path, file: f, stream: sw}, nil
}

// WriteHeader writes the header row in bold
func (x *XLSX) WriteHeader(columns []string) error {
	style, err := x.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	cells := make([]interface{}, len(columns))
	for i, c := range columns {
		cells[i] = excelize.Cell{StyleID: style, Value: c}
	}
	return x.setRow(cells)
}

// Write appends one row
func (x *XLSX) Write(row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = normalize.TSVString(v)
	}
	return x.setRow(cells)
}

func (x *XLSX) setRow(cells []interface{}) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	if err := x.stream.SetRow(cell, cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", x.row, err)
	}
	return nil
}

// Flush is a no-op: the workbook is only written on Close
func (x *XLSX) Flush() error {
	return nil
}

// Close writes the workbook to disk
func (x *XLSX) Close() error {
	defer x.file.Close()
	if err := x.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := x.file.SaveAs(x.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", x.path, err)
	}
	return nil
}

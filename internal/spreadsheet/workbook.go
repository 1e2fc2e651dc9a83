package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"weather-archive/internal/models"
)

// DataStartRow is the 0-based index of the first data row; rows above it are
// sheet metadata and column headers.
const DataStartRow = 4

var ErrMalformedWorkbook = errors.New("malformed workbook")

// Sheet is a materialized worksheet. A nil row is a row that does not exist.
type Sheet struct {
	Name string
	Rows []Row
}

type Workbook struct {
	f    *excelize.File
	data []byte
}

// Open reads an xlsx workbook from r.
func Open(r io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes opens an xlsx workbook held in memory.
func OpenBytes(data []byte) (*Workbook, error) {
	mt := mimetype.Detect(data)
	if !isZipContainer(mt) {
		return nil, fmt.Errorf("%w: detected %s", ErrMalformedWorkbook, mt.String())
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWorkbook, err)
	}
	return &Workbook{f: f, data: data}, nil
}

// xlsx is a zip container; mimetype reports it either as xlsx or as plain zip
// depending on the order of the archive entries.
func isZipContainer(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheets materializes every worksheet in workbook order.
func (w *Workbook) Sheets() ([]Sheet, error) {
	// Without an index every cell type is looked up through excelize, which
	// scans the sheet from the top on each call.
	types, err := readCellTypes(w.data)
	if err != nil {
		types = nil
	}

	names := w.f.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		sheet, err := w.readSheet(name, types[name])
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func (w *Workbook) readSheet(name string, types sheetTypes) (Sheet, error) {
	raw, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: sheet %q: %v", ErrMalformedWorkbook, name, err)
	}

	sheet := Sheet{Name: name, Rows: make([]Row, len(raw))}
	for i, values := range raw {
		if len(values) == 0 {
			continue
		}
		row := make(Row, len(values))
		for j, v := range values {
			if v == "" {
				row[j] = &Cell{Kind: Blank}
				continue
			}
			t, err := w.cellType(name, types, i+1, j+1)
			if err != nil {
				return Sheet{}, err
			}
			row[j] = &Cell{Kind: kindOf(t, v), Value: v}
		}
		sheet.Rows[i] = row
	}
	return sheet, nil
}

func (w *Workbook) cellType(sheet string, types sheetTypes, row, col int) (excelize.CellType, error) {
	if types != nil {
		return types[cellPos{row: row, col: col}], nil
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return excelize.CellTypeUnset, err
	}
	t, err := w.f.GetCellType(sheet, axis)
	if err != nil {
		return excelize.CellTypeUnset, fmt.Errorf("%w: cell %s!%s: %v", ErrMalformedWorkbook, sheet, axis, err)
	}
	return t, nil
}

func kindOf(t excelize.CellType, raw string) Kind {
	if raw == "" {
		return Blank
	}
	switch t {
	case excelize.CellTypeNumber:
		return Numeric
	case excelize.CellTypeUnset:
		// Numbers are usually stored without an explicit type attribute.
		if _, err := strconv.ParseFloat(raw, 64); err == nil {
			return Numeric
		}
		return Text
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return Text
	default:
		return Other
	}
}

// Records parses every data row of every sheet.
func (w *Workbook) Records(loc *time.Location) ([]models.WeatherRecord, error) {
	sheets, err := w.Sheets()
	if err != nil {
		return nil, err
	}
	return ParseSheets(sheets, loc)
}

// ParseSheets maps the data rows of the sheets in sheet order, then row order.
// Missing rows are skipped and sheets shorter than DataStartRow+1 rows add nothing.
func ParseSheets(sheets []Sheet, loc *time.Location) ([]models.WeatherRecord, error) {
	var records []models.WeatherRecord
	for _, sheet := range sheets {
		for i := DataStartRow; i < len(sheet.Rows); i++ {
			row := sheet.Rows[i]
			if row == nil {
				continue
			}
			rec, err := MapRow(row, loc)
			if err != nil {
				return nil, fmt.Errorf("sheet %q row %d: %w", sheet.Name, i+1, err)
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

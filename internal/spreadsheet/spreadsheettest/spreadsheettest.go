// Package spreadsheettest builds observation workbooks for tests.
package spreadsheettest

import (
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"
)

type Sheet struct {
	Name string
	Rows [][]any
}

// Header returns the four rows that precede the data in an archive export.
func Header() [][]any {
	return [][]any{
		{"Архив погоды в Москве"},
		{"Период: январь 2023"},
		{"Дата", "Время", "T", "Отн. влажность", "Td", "Атм. давление", "Направление ветра", "Скорость ветра", "Облачность", "h", "VV", "Погодные явления"},
		{nil, nil, "°C", "%", "°C", "мм рт. ст.", nil, "м/с", "%", "м", "км"},
	}
}

func DataRow(date, clock string, temp float64) []any {
	return []any{date, clock, temp, 81.0, -15.1, 748.0, "СЗ", 3.0, 100.0, 800.0, 10.0, "снег"}
}

// Build writes an xlsx file; nil values leave the cell unset.
func Build(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, values := range s.Rows {
			for c, v := range values {
				if v == nil {
					continue
				}
				axis, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(s.Name, axis, v); err != nil {
					t.Fatalf("set %s: %v", axis, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// Month returns a single-sheet workbook with one 12:00 row per day of month,
// given as "MM.yyyy", starting on day 1.
func Month(t testing.TB, month string, days int) []byte {
	t.Helper()
	rows := Header()
	for d := 1; d <= days; d++ {
		rows = append(rows, DataRow(fmt.Sprintf("%02d.%s", d, month), "12:00", float64(d)))
	}
	return Build(t, Sheet{Name: "Data", Rows: rows})
}

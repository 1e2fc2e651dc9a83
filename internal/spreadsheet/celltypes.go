package spreadsheet

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// cellPos is a 1-based row and column.
type cellPos struct {
	row, col int
}

// sheetTypes holds the declared type of the cells of one worksheet. Cells
// without a type attribute are absent and read as excelize.CellTypeUnset.
type sheetTypes map[cellPos]excelize.CellType

var typeAttrs = map[string]excelize.CellType{
	"b":         excelize.CellTypeBool,
	"d":         excelize.CellTypeDate,
	"n":         excelize.CellTypeNumber,
	"e":         excelize.CellTypeError,
	"s":         excelize.CellTypeSharedString,
	"str":       excelize.CellTypeFormula,
	"inlineStr": excelize.CellTypeInlineString,
}

type xmlRelationships struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlWorkbookSheets struct {
	Sheets []struct {
		Name  string     `xml:"name,attr"`
		Attrs []xml.Attr `xml:",any,attr"`
	} `xml:"sheets>sheet"`
}

// readCellTypes indexes the cell types of every worksheet in one pass over the
// package, keyed by sheet name.
func readCellTypes(data []byte) (map[string]sheetTypes, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[strings.TrimPrefix(f.Name, "/")] = f
	}

	wbPath := "xl/workbook.xml"
	var root xmlRelationships
	if err := decodePart(parts, "_rels/.rels", &root); err == nil {
		for _, rel := range root.Relationships {
			if strings.HasSuffix(rel.Type, "/officeDocument") {
				wbPath = strings.TrimPrefix(rel.Target, "/")
			}
		}
	}

	var wb xmlWorkbookSheets
	if err := decodePart(parts, wbPath, &wb); err != nil {
		return nil, err
	}
	var rels xmlRelationships
	if err := decodePart(parts, path.Join(path.Dir(wbPath), "_rels", path.Base(wbPath)+".rels"), &rels); err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		if strings.HasPrefix(rel.Target, "/") {
			targets[rel.ID] = strings.TrimPrefix(rel.Target, "/")
		} else {
			targets[rel.ID] = path.Join(path.Dir(wbPath), rel.Target)
		}
	}

	types := make(map[string]sheetTypes, len(wb.Sheets))
	for _, s := range wb.Sheets {
		part, ok := parts[targets[relID(s.Attrs)]]
		if !ok {
			continue
		}
		st, err := readSheetTypes(part)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
		}
		types[s.Name] = st
	}
	return types, nil
}

// relID returns the r:id attribute whatever prefix the relationships
// namespace is bound to.
func relID(attrs []xml.Attr) string {
	for _, a := range attrs {
		if a.Name.Local == "id" && a.Name.Space != "" {
			return a.Value
		}
	}
	return ""
}

func decodePart(parts map[string]*zip.File, name string, v any) error {
	f, ok := parts[name]
	if !ok {
		return fmt.Errorf("missing part %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	return xml.NewDecoder(rc).Decode(v)
}

// readSheetTypes streams a worksheet part and records the t attribute of each
// <c> element. Rows and cells without an r attribute follow the previous one.
func readSheetTypes(f *zip.File) (sheetTypes, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	types := make(sheetTypes)
	dec := xml.NewDecoder(rc)
	var row, col int
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return types, nil
		}
		if err != nil {
			return nil, err
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "row":
			if r, err := strconv.Atoi(attr(el, "r")); err == nil {
				row = r
			} else {
				row++
			}
			col = 0
		case "c":
			if ref := attr(el, "r"); ref != "" {
				if col, row, err = excelize.CellNameToCoordinates(ref); err != nil {
					return nil, err
				}
			} else {
				col++
			}
			if t, ok := typeAttrs[attr(el, "t")]; ok {
				types[cellPos{row: row, col: col}] = t
			}
		}
	}
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]any
}

type Workbook struct {
	File *excelize.File
}

// NewWorkbook — по листу на SheetSpec; заголовок в первой строке, данные со второй.
func NewWorkbook(sheets []SheetSpec) (*Workbook, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook without sheets")
	}
	f := excelize.NewFile()
	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			// стандартный Sheet1 переименовываем в первый лист
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet: %w", err)
		}
		if err := f.SetSheetRow(name, "A1", &s.Header); err != nil {
			return nil, fmt.Errorf("header %s: %w", name, err)
		}
		for r, row := range s.Rows {
			row := row
			cell := fmt.Sprintf("A%d", r+2)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return nil, fmt.Errorf("set row %s: %w", cell, err)
			}
		}
		if err := formatSheet(f, s); err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
	}
	return &Workbook{File: f}, nil
}

func (w *Workbook) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.File.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	minColWidth = 10
	maxColWidth = 60
	totalLabel  = "Total"
)

// formatSheet: жирный и закреплённый заголовок, автофильтр, ширина колонок по содержимому.
// Строка "Total" в конце листа тоже жирная.
func formatSheet(f *excelize.File, s SheetSpec) error {
	cols := len(s.Header)
	for _, r := range s.Rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.Title, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	if n := len(s.Rows); n > 0 && len(s.Rows[n-1]) > 0 && s.Rows[n-1][0] == totalLabel {
		row := n + 1
		if err := f.SetCellStyle(s.Title, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), bold); err != nil {
			return err
		}
	}
	if err := f.AutoFilter(s.Title, "A1:"+lastCol+"1", nil); err != nil {
		return err
	}
	if err := f.SetPanes(s.Title, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	for i, w := range columnWidths(s, cols) {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(s.Title, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// columnWidths — оценка по числу символов; заголовку запас под кнопку фильтра.
func columnWidths(s SheetSpec, cols int) []float64 {
	widths := make([]float64, cols)
	fit := func(i int, v string, pad float64) {
		w := float64(utf8.RuneCountInString(v))*1.1 + pad
		if w > maxColWidth {
			w = maxColWidth
		}
		if w > widths[i] {
			widths[i] = w
		}
	}
	for i := range widths {
		widths[i] = minColWidth
	}
	for i, h := range s.Header {
		fit(i, h, 3)
	}
	for _, r := range s.Rows {
		for i, v := range r {
			fit(i, fmt.Sprint(v), 0)
		}
	}
	return widths
}

// BuildLedgerReportFilename — имя файла реестра за период [from, to).
func BuildLedgerReportFilename(from, to time.Time) string {
	return sanitizeFileName(fmt.Sprintf("MyCSD ledger — %s — %s.xlsx",
		from.Format("2006-01-02"),
		to.AddDate(0, 0, -1).Format("2006-01-02"),
	))
}

func BuildStudentSummaryFilename(matric string) string {
	matric = strings.TrimSpace(matric)
	if matric == "" {
		matric = "—"
	}
	return sanitizeFileName(fmt.Sprintf("MyCSD points — %s.xlsx", matric))
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return invalidFileRe.ReplaceAllString(s, "_")
}

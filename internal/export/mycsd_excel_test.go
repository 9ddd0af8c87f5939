package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/mycsd-points/internal/models"
)

func reopen(t *testing.T, w *Workbook) *excelize.File {
	t.Helper()
	b, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestLedgerReport(t *testing.T) {
	myt := time.FixedZone("MYT", 8*3600)
	rows := []models.LedgerRow{
		{
			LedgerEntry: models.LedgerEntry{ID: uuid.New(), Score: 8, Category: models.CategoryInnovation, Level: models.LevelInternational,
				CreatedAt: time.Date(2026, 10, 1, 16, 30, 0, 0, time.UTC)},
			EventTitle: "World Robot Olympiad", Distributed: 3, PointsIssued: 24,
		},
		{
			LedgerEntry: models.LedgerEntry{ID: uuid.New(), Score: 2, Category: models.CategoryCulture, Level: models.LevelCampus,
				CreatedAt: time.Date(2026, 10, 5, 1, 0, 0, 0, time.UTC)},
			EventTitle: "Malam Kebudayaan", Distributed: 10, PointsIssued: 20,
		},
	}
	w, err := LedgerReport(rows, myt)
	if err != nil {
		t.Fatal(err)
	}
	f := reopen(t, w)

	got, err := f.GetRows("Ledger")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("ledger rows = %d", len(got))
	}
	if got[1][0] != "2026-10-02 00:30" || got[1][1] != "World Robot Olympiad" || got[1][6] != "24" {
		t.Fatalf("first row = %v", got[1])
	}

	cats, err := f.GetRows("By category")
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != len(models.Categories)+2 {
		t.Fatalf("category rows = %d", len(cats))
	}
	last := cats[len(cats)-1]
	if last[0] != "Total" || last[1] != "44" {
		t.Fatalf("total row = %v", last)
	}
}

func TestStudentSummary_EmptyStudent(t *testing.T) {
	w, err := StudentSummary(models.NewSummary("A12345"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	f := reopen(t, w)
	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatal(err)
	}
	// 5 метрик + 5 категорий + 3 уровня + заголовок
	if len(rows) != 14 {
		t.Fatalf("summary rows = %d", len(rows))
	}
	hist, err := f.GetRows("History")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 {
		t.Fatalf("history should hold only the header, got %d rows", len(hist))
	}
}

func TestFilenames(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	name := BuildLedgerReportFilename(from, from.AddDate(0, 1, 0))
	if name != "MyCSD ledger — 2026-10-01 — 2026-10-31.xlsx" {
		t.Fatalf("name = %q", name)
	}
	if got := BuildStudentSummaryFilename("A1/2"); strings.Contains(got, "/") {
		t.Fatalf("unsanitized name %q", got)
	}
}

func TestColumnWidths(t *testing.T) {
	s := SheetSpec{
		Header: []string{"Event", "Score"},
		Rows:   [][]any{{strings.Repeat("x", 30), 8}, {strings.Repeat("y", 200), 2}},
	}
	w := columnWidths(s, 2)
	if w[0] != maxColWidth {
		t.Fatalf("long column width = %v, want cap %v", w[0], maxColWidth)
	}
	if w[1] != minColWidth {
		t.Fatalf("narrow column width = %v, want %v", w[1], minColWidth)
	}
}

func TestLedgerReport_HeaderFrozen(t *testing.T) {
	w, err := LedgerReport(nil, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	f := reopen(t, w)
	panes, err := f.GetPanes("Ledger")
	if err != nil {
		t.Fatal(err)
	}
	if !panes.Freeze || panes.YSplit != 1 {
		t.Fatalf("panes = %+v", panes)
	}
}

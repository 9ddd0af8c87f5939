package export

import (
	"time"

	"github.com/Spok95/mycsd-points/internal/models"
)

const dateLayout = "2006-01-02 15:04"

// LedgerReport — реестр одобренных заявок за период: лист сводки и лист по категориям.
func LedgerReport(rows []models.LedgerRow, loc *time.Location) (*Workbook, error) {
	if loc == nil {
		loc = time.UTC
	}
	ledger := SheetSpec{
		Title:  "Ledger",
		Header: []string{"Approved at", "Event", "Category", "Level", "Score", "Students", "Points issued"},
	}
	byCategory := make(map[models.Category]int, len(models.Categories))
	total := 0
	for _, r := range rows {
		ledger.Rows = append(ledger.Rows, []any{
			r.CreatedAt.In(loc).Format(dateLayout),
			r.EventTitle,
			string(r.Category),
			string(r.Level),
			r.Score,
			r.Distributed,
			r.PointsIssued,
		})
		byCategory[r.Category] += r.PointsIssued
		total += r.PointsIssued
	}

	cats := SheetSpec{Title: "By category", Header: []string{"Category", "Points issued"}}
	for _, c := range models.Categories {
		cats.Rows = append(cats.Rows, []any{string(c), byCategory[c]})
	}
	cats.Rows = append(cats.Rows, []any{"Total", total})

	return NewWorkbook([]SheetSpec{ledger, cats})
}

// StudentSummary — итог студента и история начислений.
func StudentSummary(sum models.Summary, entries []models.StudentEntry, loc *time.Location) (*Workbook, error) {
	if loc == nil {
		loc = time.UTC
	}
	overview := SheetSpec{Title: "Summary", Header: []string{"Metric", "Value"}}
	overview.Rows = append(overview.Rows,
		[]any{"Matric no", sum.MatricNo},
		[]any{"Total points", sum.TotalPoints},
		[]any{"Events", sum.TotalEvents},
		[]any{"Points this month", sum.PointsThisMonth},
		[]any{"Events this month", sum.EventsThisMonth},
	)
	for _, c := range models.Categories {
		overview.Rows = append(overview.Rows, []any{string(c), sum.PointsByCategory[c]})
	}
	for _, l := range models.Levels {
		overview.Rows = append(overview.Rows, []any{string(l), sum.PointsByLevel[l]})
	}

	history := SheetSpec{
		Title:  "History",
		Header: []string{"Awarded at", "Event", "Organizer", "Category", "Level", "Position", "Score"},
	}
	for _, e := range entries {
		history.Rows = append(history.Rows, []any{
			e.AwardedAt.In(loc).Format(dateLayout),
			e.EventTitle,
			e.OrganizerName,
			string(e.Category),
			string(e.Level),
			e.Position,
			e.Score,
		})
	}
	return NewWorkbook([]SheetSpec{overview, history})
}

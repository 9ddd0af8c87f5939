package mycsd_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
)

// approveEvent runs a full submit and approve cycle for a fresh event at the given clock.
func (f *fixture) approveEvent(t *testing.T, title, level, category string, at time.Time, matrics ...string) uuid.UUID {
	t.Helper()
	prev := f.now
	f.now = at
	defer func() { f.now = prev }()

	ev := f.event
	ev.ID = uuid.New()
	ev.Title = title
	ev.Level = level
	f.store.PutEvent(ev)
	for _, m := range matrics {
		f.addAttendee(ev.ID, m, models.AttendancePresent)
	}
	c, err := f.svc.SubmitClaim(f.ctx, f.organizer, mycsd.SubmitClaimInput{
		EventID: ev.ID, DocumentRef: "proofs/" + title, ProposedLevel: level, ProposedCategory: category,
	})
	if err != nil {
		t.Fatalf("submit %s: %v", title, err)
	}
	if _, err := f.svc.Approve(f.ctx, f.admin, c.ID); err != nil {
		t.Fatalf("approve %s: %v", title, err)
	}
	return ev.ID
}

func TestSummarize_EmptyHasAllBuckets(t *testing.T) {
	f := newFixture(t)
	sum, err := f.svc.Summarize(f.ctx, "Z99999")
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalPoints != 0 || sum.TotalEvents != 0 || sum.PointsThisMonth != 0 || sum.EventsThisMonth != 0 {
		t.Fatalf("non-zero empty summary: %+v", sum)
	}
	if len(sum.PointsByCategory) != 5 {
		t.Fatalf("category buckets = %d", len(sum.PointsByCategory))
	}
	for _, c := range models.Categories {
		if v, ok := sum.PointsByCategory[c]; !ok || v != 0 {
			t.Fatalf("bucket %s missing or non-zero", c)
		}
	}
	for _, l := range models.Levels {
		if v, ok := sum.PointsByLevel[l]; !ok || v != 0 {
			t.Fatalf("level %s missing or non-zero", l)
		}
	}

}

func TestSummarize_BlankMatricIsZero(t *testing.T) {
	f := newFixture(t)
	f.approveEvent(t, "Karnival Sukan", "Kampus", "KEPIMPINAN", f.now, "A100")

	sum, err := f.svc.Summarize(f.ctx, "  ")
	if err != nil {
		t.Fatalf("blank matric must aggregate to zero, got %v", err)
	}
	if sum.TotalPoints != 0 || sum.TotalEvents != 0 || len(sum.PointsByCategory) != len(models.Categories) {
		t.Fatalf("summary = %+v", sum)
	}
	hist, err := f.svc.StudentHistory(f.ctx, "")
	if err != nil || len(hist) != 0 {
		t.Fatalf("history = %v, %v", hist, err)
	}
}

func TestEndToEnd_NationalLevel(t *testing.T) {
	f := newFixture(t)
	f.approveEvent(t, "Pertandingan Debat", "Kebangsaan/Antara Universiti", "KEPIMPINAN", f.now, "A100", "A200")

	sum, err := f.svc.Summarize(f.ctx, "A100")
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalPoints != 4 || sum.TotalEvents != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.PointsByCategory[models.CategoryLeadership] != 4 {
		t.Fatalf("leadership bucket = %d", sum.PointsByCategory[models.CategoryLeadership])
	}
	if sum.PointsByLevel[models.LevelNational] != 4 {
		t.Fatalf("national bucket = %d", sum.PointsByLevel[models.LevelNational])
	}
	if sum.PointsThisMonth != 4 || sum.EventsThisMonth != 1 {
		t.Fatalf("month = %d/%d", sum.PointsThisMonth, sum.EventsThisMonth)
	}

	hist, err := f.svc.StudentHistory(f.ctx, "A100")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].EventTitle != "Pertandingan Debat" || hist[0].OrganizerName != "Kelab Robotik" {
		t.Fatalf("history = %+v", hist)
	}
}

func TestSummarize_AggregatesAcrossEvents(t *testing.T) {
	f := newFixture(t)
	f.approveEvent(t, "World Robot Olympiad", "International", "REKA CIPTA DAN INOVASI", f.now, "S1")
	f.approveEvent(t, "Karnival Sukan", "Kampus", "sukan/rekreasi/sukarelawan", f.now, "S1")
	// no category: falls back to innovation
	f.approveEvent(t, "Bengkel", "", "", f.now, "S1")

	sum, err := f.svc.Summarize(f.ctx, "S1")
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalPoints != 12 || sum.TotalEvents != 3 {
		t.Fatalf("summary = %+v", sum)
	}
	if got := sum.PointsByCategory[models.CategoryInnovation]; got != 10 {
		t.Fatalf("innovation = %d", got)
	}
	if got := sum.PointsByCategory[models.CategorySports]; got != 2 {
		t.Fatalf("sports = %d", got)
	}
	if got := sum.PointsByLevel[models.LevelCampus]; got != 4 {
		t.Fatalf("campus = %d", got)
	}
}

func TestSummarize_MonthWindowUsesLocalZone(t *testing.T) {
	f := newFixture(t)
	// 2026-10-01 00:30 MYT is still September in UTC
	early := time.Date(2026, time.October, 1, 0, 30, 0, 0, myt)
	f.approveEvent(t, "Early October", "Kampus", "KEBUDAYAAN", early, "M1")
	lastMonth := time.Date(2026, time.September, 30, 23, 0, 0, 0, myt)
	f.approveEvent(t, "End of September", "Negeri", "KEBUDAYAAN", lastMonth, "M1")

	sum, err := f.svc.Summarize(f.ctx, "M1")
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalPoints != 6 || sum.PointsThisMonth != 2 || sum.EventsThisMonth != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestAdminStats(t *testing.T) {
	f := newFixture(t)
	f.approveEvent(t, "This month", "Antarabangsa", "KEUSAHAWANAN", f.now, "X1", "X2")
	f.approveEvent(t, "Last month", "Kampus", "KEUSAHAWANAN", f.now.AddDate(0, -1, 0), "X1")
	f.submit(t, "proofs/pending.pdf")

	_, err := f.svc.AdminStats(f.ctx, f.organizer)
	wantKind(t, err, mycsd.Forbidden)

	st, err := f.svc.AdminStats(f.ctx, f.admin)
	if err != nil {
		t.Fatal(err)
	}
	if st.ClaimsByStatus[models.ClaimApproved] != 2 || st.ClaimsByStatus[models.ClaimPending] != 1 || st.ClaimsByStatus[models.ClaimRejected] != 0 {
		t.Fatalf("claims = %v", st.ClaimsByStatus)
	}
	if st.TotalPoints != 18 || st.TotalDistributions != 3 {
		t.Fatalf("totals = %d/%d", st.TotalPoints, st.TotalDistributions)
	}
	if st.PointsThisMonth != 16 || st.PointsLastMonth != 2 || st.MonthDelta != 14 {
		t.Fatalf("months = %d/%d/%d", st.PointsThisMonth, st.PointsLastMonth, st.MonthDelta)
	}
	if st.PointsByCategory[models.CategoryEntrepreneurship] != 18 || st.PointsByCategory[models.CategoryCulture] != 0 {
		t.Fatalf("categories = %v", st.PointsByCategory)
	}
	if len(st.PointsByLevel) != 3 {
		t.Fatalf("levels = %v", st.PointsByLevel)
	}
}

func TestPendingClaims(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "proofs/a.pdf")

	_, err := f.svc.PendingClaims(f.ctx, f.organizer, 0)
	wantKind(t, err, mycsd.Forbidden)

	got, err := f.svc.PendingClaims(f.ctx, f.admin, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != c.ID || got[0].EventTitle != "Hackathon Inovasi" || got[0].PreviewPoints != 2 {
		t.Fatalf("pending = %+v", got)
	}

	if _, err := f.svc.Approve(f.ctx, f.admin, c.ID); err != nil {
		t.Fatal(err)
	}
	got, err = f.svc.PendingClaims(f.ctx, f.admin, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("approved claim still queued: %+v", got)
	}
}

func TestLedgerReport(t *testing.T) {
	f := newFixture(t)
	f.approveEvent(t, "Inside", "Kampus", "KEPIMPINAN", f.now, "L1", "L2", "L3")
	f.approveEvent(t, "Outside", "Kampus", "KEPIMPINAN", f.now.AddDate(0, -2, 0), "L1")

	from, to := f.svc.MonthBounds()
	rows, err := f.svc.LedgerReport(f.ctx, f.admin, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].EventTitle != "Inside" || rows[0].Distributed != 3 || rows[0].PointsIssued != 6 {
		t.Fatalf("rows = %+v", rows)
	}

	_, err = f.svc.LedgerReport(f.ctx, f.admin, to, from)
	wantKind(t, err, mycsd.Validation)
}

func TestPreviewPoints(t *testing.T) {
	if got := mycsd.PreviewPoints(""); got != 2 {
		t.Fatalf("empty level preview = %d", got)
	}
	if got := mycsd.PreviewPoints("Peringkat Negeri"); got != 4 {
		t.Fatalf("state preview = %d", got)
	}
}

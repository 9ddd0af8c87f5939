package mycsd_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/memstore"
	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
)

var myt = time.FixedZone("MYT", 8*3600)

type fixture struct {
	ctx       context.Context
	store     *memstore.Store
	svc       *mycsd.Service
	now       time.Time
	admin     models.Actor
	organizer models.Actor
	event     models.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:   context.Background(),
		store: memstore.New(),
		now:   time.Date(2026, time.October, 16, 10, 0, 0, 0, myt),
	}
	f.svc = mycsd.NewService(f.store, nil,
		mycsd.WithClock(func() time.Time { return f.now }),
		mycsd.WithLocation(myt),
	)

	adminID, orgID := uuid.New(), uuid.New()
	f.store.PutUser(models.User{ID: adminID, Name: "Admin HEP", Role: models.Admin})
	f.store.PutUser(models.User{ID: orgID, Name: "Kelab Robotik", Role: models.Organizer})
	f.admin = models.Actor{UserID: adminID, Role: models.Admin}
	f.organizer = models.Actor{UserID: orgID, Role: models.Organizer}

	f.event = models.Event{
		ID:          uuid.New(),
		Title:       "Hackathon Inovasi",
		Category:    "competition",
		Status:      models.EventCompleted,
		OrganizerID: orgID,
		Level:       "Kampus",
		CreatedAt:   f.now.Add(-30 * 24 * time.Hour),
	}
	f.store.PutEvent(f.event)
	return f
}

// addAttendee registers a student on the fixture event; empty matric means no student record.
func (f *fixture) addAttendee(eventID uuid.UUID, matric string, att models.Attendance) uuid.UUID {
	id := uuid.New()
	u := models.User{ID: id, Name: "Student " + matric, Role: models.Student}
	if matric != "" {
		m := matric
		u.MatricNo = &m
	}
	f.store.PutUser(u)
	f.store.PutRegistration(models.Registration{EventID: eventID, UserID: id, Attendance: att})
	return id
}

func (f *fixture) submit(t *testing.T, doc string) *models.Claim {
	t.Helper()
	c, err := f.svc.SubmitClaim(f.ctx, f.organizer, mycsd.SubmitClaimInput{
		EventID:          f.event.ID,
		DocumentRef:      doc,
		ProposedCategory: "KEPIMPINAN",
	})
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	return c
}

func (f *fixture) seedPresent(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		m := fmt.Sprintf("A%05d", i+1)
		f.addAttendee(f.event.ID, m, models.AttendancePresent)
		out = append(out, m)
	}
	return out
}

func wantKind(t *testing.T, err error, kind mycsd.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := mycsd.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

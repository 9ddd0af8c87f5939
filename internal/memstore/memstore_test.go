package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
)

func seedEvent(s *Store) models.Event {
	ev := models.Event{ID: uuid.New(), Title: "Karnival Sukan", Status: models.EventCompleted, OrganizerID: uuid.New(), Level: "Kampus"}
	s.PutEvent(ev)
	return ev
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	ev := seedEvent(s)
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx mycsd.Tx) error {
		if err := tx.InsertClaim(ctx, &models.Claim{ID: uuid.New(), EventID: ev.ID, Status: models.ClaimPending}); err != nil {
			return err
		}
		if _, err := tx.MarkEventClaimed(ctx, ev.ID, 2, time.Now()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if n := len(s.Claims()); n != 0 {
		t.Fatalf("claims after rollback = %d", n)
	}
	got, _ := s.GetEvent(ctx, ev.ID)
	if got.IsClaimed {
		t.Fatal("event flag survived rollback")
	}
}

func TestWithinTx_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.WithinTx(ctx, func(mycsd.Tx) error { called = true; return nil })
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("err = %v, called = %v", err, called)
	}
}

func TestFailOn(t *testing.T) {
	ctx := context.Background()
	s := New()
	ev := seedEvent(s)
	injected := errors.New("disk full")
	s.FailOn("InsertClaim", injected)

	insert := func() error {
		return s.WithinTx(ctx, func(tx mycsd.Tx) error {
			return tx.InsertClaim(ctx, &models.Claim{ID: uuid.New(), EventID: ev.ID, Status: models.ClaimPending})
		})
	}
	if err := insert(); !errors.Is(err, injected) {
		t.Fatalf("err = %v, want injected", err)
	}
	s.FailOn("InsertClaim", nil)
	if err := insert(); err != nil {
		t.Fatalf("after clearing: %v", err)
	}
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := New()
	ev := seedEvent(s)
	claimID := uuid.New()

	err := s.WithinTx(ctx, func(tx mycsd.Tx) error {
		if err := tx.InsertClaim(ctx, &models.Claim{ID: claimID, EventID: ev.ID, Status: models.ClaimPending}); err != nil {
			return err
		}
		if err := tx.InsertClaim(ctx, &models.Claim{ID: uuid.New(), EventID: ev.ID}); !errors.Is(err, mycsd.ErrDuplicate) {
			t.Errorf("second claim for event: %v", err)
		}
		entry := &models.LedgerEntry{ID: uuid.New(), ClaimID: claimID, EventID: ev.ID, Score: 2}
		if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
			return err
		}
		if err := tx.InsertLedgerEntry(ctx, &models.LedgerEntry{ID: uuid.New(), ClaimID: claimID}); !errors.Is(err, mycsd.ErrDuplicate) {
			t.Errorf("second ledger entry for claim: %v", err)
		}

		ds := []models.Distribution{
			{MatricNo: "A1", LedgerID: entry.ID, Score: 2},
			{MatricNo: "A2", LedgerID: entry.ID, Score: 2},
			{MatricNo: "A1", LedgerID: entry.ID, Score: 2},
		}
		n, err := tx.InsertDistributions(ctx, ds)
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("inserted = %d, want 2", n)
		}
		if n, _ := tx.InsertDistributions(ctx, ds); n != 0 {
			t.Errorf("re-insert = %d, want 0", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if n := len(s.AllDistributions()); n != 2 {
		t.Fatalf("distributions = %d", n)
	}
}

func TestTransitionClaim_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := New()
	ev := seedEvent(s)
	c := models.Claim{ID: uuid.New(), EventID: ev.ID, Status: models.ClaimPending}
	_ = s.WithinTx(ctx, func(tx mycsd.Tx) error { return tx.InsertClaim(ctx, &c) })

	move := func(from, to models.ClaimStatus) bool {
		var ok bool
		_ = s.WithinTx(ctx, func(tx mycsd.Tx) error {
			var err error
			ok, err = tx.TransitionClaim(ctx, mycsd.ClaimTransition{ClaimID: c.ID, From: from, To: to, Reviewer: uuid.New(), At: time.Now()})
			return err
		})
		return ok
	}
	if !move(models.ClaimPending, models.ClaimApproved) {
		t.Fatal("first transition lost")
	}
	if move(models.ClaimPending, models.ClaimRejected) {
		t.Fatal("stale transition won")
	}
	got, _ := s.GetClaim(ctx, c.ID)
	if got.Status != models.ClaimApproved || got.ReviewedBy == nil {
		t.Fatalf("claim = %+v", got)
	}
}

func TestOutbox(t *testing.T) {
	ctx := context.Background()
	s := New()
	chat := int64(77)
	withChat, noChat := uuid.New(), uuid.New()
	s.PutUser(models.User{ID: withChat, Role: models.Student, TelegramID: &chat})
	s.PutUser(models.User{ID: noChat, Role: models.Student})

	a := models.Notification{ID: uuid.New(), UserID: withChat, Kind: models.NotificationPointsAwarded, Message: "a"}
	b := models.Notification{ID: uuid.New(), UserID: withChat, Kind: models.NotificationPointsAwarded, Message: "b"}
	hidden := models.Notification{ID: uuid.New(), UserID: noChat, Kind: models.NotificationPointsAwarded, Message: "c"}
	_ = s.WithinTx(ctx, func(tx mycsd.Tx) error {
		return tx.EnqueueNotifications(ctx, []models.Notification{a, b, hidden})
	})

	pending, _ := s.PendingNotifications(ctx, 10)
	if len(pending) != 2 || pending[0].TelegramID == nil || *pending[0].TelegramID != chat {
		t.Fatalf("pending = %+v", pending)
	}
	if limited, _ := s.PendingNotifications(ctx, 1); len(limited) != 1 {
		t.Fatalf("limit ignored: %d", len(limited))
	}

	_ = s.MarkNotificationsSent(ctx, []uuid.UUID{a.ID}, time.Now())
	_ = s.MarkNotificationFailed(ctx, b.ID, "timeout")
	if pending, _ := s.PendingNotifications(ctx, 10); len(pending) != 1 {
		t.Fatalf("one failure must keep the row queued: %+v", pending)
	}
	_ = s.AbandonNotification(ctx, b.ID, "chat not found")
	if pending, _ := s.PendingNotifications(ctx, 10); len(pending) != 0 {
		t.Fatalf("expected empty outbox, got %+v", pending)
	}
}

func TestOpenEvents(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := uuid.New()
	early := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	late := early.AddDate(0, 0, 7)

	mine := models.Event{ID: uuid.New(), Title: "mine", OrganizerID: owner, StartsAt: &early}
	proposed := models.Event{ID: uuid.New(), Title: "proposed", OrganizerID: uuid.New(), ProposedBy: &owner, StartsAt: &late}
	foreign := models.Event{ID: uuid.New(), Title: "foreign", OrganizerID: uuid.New(), CreatedAt: early}
	claimed := models.Event{ID: uuid.New(), Title: "claimed", OrganizerID: owner, IsClaimed: true}
	for _, e := range []models.Event{mine, proposed, foreign, claimed} {
		s.PutEvent(e)
	}

	got, _ := s.OpenEvents(ctx, &owner, 10)
	if len(got) != 2 || got[0].ID != proposed.ID || got[1].ID != mine.ID {
		t.Fatalf("owner events = %+v", got)
	}
	if all, _ := s.OpenEvents(ctx, nil, 10); len(all) != 3 {
		t.Fatalf("all open = %d", len(all))
	}
	if one, _ := s.OpenEvents(ctx, nil, 1); len(one) != 1 {
		t.Fatalf("limit ignored: %d", len(one))
	}
}

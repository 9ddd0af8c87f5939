package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
)

type tx struct {
	store *Store
	t     *tables
}

func (x *tx) LockEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if err := x.store.injected("LockEvent"); err != nil {
		return nil, err
	}
	e, ok := x.t.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (x *tx) LockClaim(_ context.Context, id uuid.UUID) (*models.Claim, error) {
	if err := x.store.injected("LockClaim"); err != nil {
		return nil, err
	}
	c, ok := x.t.claims[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (x *tx) LockClaimForEvent(_ context.Context, eventID uuid.UUID) (*models.Claim, error) {
	if err := x.store.injected("LockClaimForEvent"); err != nil {
		return nil, err
	}
	for _, c := range x.t.claims {
		if c.EventID == eventID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (x *tx) SaveEventMyCSD(_ context.Context, e *models.Event) error {
	if err := x.store.injected("SaveEventMyCSD"); err != nil {
		return err
	}
	cur, ok := x.t.events[e.ID]
	if !ok {
		return nil
	}
	cur.Level = e.Level
	cur.MyCSDCategory = e.MyCSDCategory
	cur.MyCSDPoints = e.MyCSDPoints
	cur.HasMyCSD = e.HasMyCSD
	cur.UpdatedAt = e.UpdatedAt
	x.t.events[e.ID] = cur
	return nil
}

func (x *tx) InsertClaim(_ context.Context, c *models.Claim) error {
	if err := x.store.injected("InsertClaim"); err != nil {
		return err
	}
	for _, existing := range x.t.claims {
		if existing.EventID == c.EventID {
			return mycsd.ErrDuplicate
		}
	}
	x.t.claims[c.ID] = *c
	return nil
}

func (x *tx) ResubmitClaim(_ context.Context, c *models.Claim) (bool, error) {
	if err := x.store.injected("ResubmitClaim"); err != nil {
		return false, err
	}
	cur, ok := x.t.claims[c.ID]
	if !ok || (cur.Status != models.ClaimPending && cur.Status != models.ClaimRejected) {
		return false, nil
	}
	cur.DocumentRef = c.DocumentRef
	cur.ProposedLevel = c.ProposedLevel
	cur.ProposedCategory = c.ProposedCategory
	cur.Status = models.ClaimPending
	cur.RejectionReason = nil
	cur.ReviewedBy = nil
	cur.ReviewedAt = nil
	cur.UpdatedAt = c.UpdatedAt
	x.t.claims[c.ID] = cur
	return true, nil
}

func (x *tx) InsertLedgerEntry(_ context.Context, e *models.LedgerEntry) error {
	if err := x.store.injected("InsertLedgerEntry"); err != nil {
		return err
	}
	for _, existing := range x.t.ledger {
		if existing.ClaimID == e.ClaimID {
			return mycsd.ErrDuplicate
		}
	}
	x.t.ledger[e.ID] = *e
	return nil
}

func (x *tx) PresentAttendees(_ context.Context, eventID uuid.UUID) ([]models.Attendee, error) {
	if err := x.store.injected("PresentAttendees"); err != nil {
		return nil, err
	}
	var out []models.Attendee
	for k, r := range x.t.registrations {
		if k.event != eventID || r.Attendance != models.AttendancePresent {
			continue
		}
		a := models.Attendee{UserID: r.UserID}
		if u, ok := x.t.users[r.UserID]; ok && u.MatricNo != nil {
			a.MatricNo = *u.MatricNo
		}
		out = append(out, a)
	}
	return out, nil
}

func (x *tx) InsertDistributions(_ context.Context, ds []models.Distribution) (int, error) {
	if err := x.store.injected("InsertDistributions"); err != nil {
		return 0, err
	}
	n := 0
	for _, d := range ds {
		k := distKey{d.MatricNo, d.LedgerID}
		if _, exists := x.t.distributions[k]; exists {
			continue
		}
		x.t.distributions[k] = d
		n++
	}
	return n, nil
}

func (x *tx) EnqueueNotifications(_ context.Context, ns []models.Notification) error {
	if err := x.store.injected("EnqueueNotifications"); err != nil {
		return err
	}
	x.t.notifications = append(x.t.notifications, ns...)
	return nil
}

func (x *tx) TransitionClaim(_ context.Context, t mycsd.ClaimTransition) (bool, error) {
	if err := x.store.injected("TransitionClaim"); err != nil {
		return false, err
	}
	cur, ok := x.t.claims[t.ClaimID]
	if !ok || cur.Status != t.From {
		return false, nil
	}
	reviewer, at := t.Reviewer, t.At
	cur.Status = t.To
	cur.RejectionReason = t.Reason
	cur.ReviewedBy = &reviewer
	cur.ReviewedAt = &at
	cur.UpdatedAt = at
	x.t.claims[t.ClaimID] = cur
	return true, nil
}

func (x *tx) MarkEventClaimed(_ context.Context, eventID uuid.UUID, points int, at time.Time) (bool, error) {
	if err := x.store.injected("MarkEventClaimed"); err != nil {
		return false, err
	}
	e, ok := x.t.events[eventID]
	if !ok || e.IsClaimed {
		return false, nil
	}
	e.IsClaimed = true
	e.MyCSDPoints = points
	e.UpdatedAt = at
	x.t.events[eventID] = e
	return true, nil
}

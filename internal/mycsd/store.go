package mycsd

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
)

// Store is the persistence boundary of the workflow. Lookups return (nil, nil)
// when the row does not exist.
type Store interface {
	Reader
	// WithinTx runs fn in a single transaction; any error rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

type Reader interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	ClaimForEvent(ctx context.Context, eventID uuid.UUID) (*models.Claim, error)
	LedgerForClaim(ctx context.Context, claimID uuid.UUID) (*models.LedgerEntry, error)
	Distributions(ctx context.Context, ledgerID uuid.UUID) ([]models.Distribution, error)
	PendingClaims(ctx context.Context, limit int) ([]models.PendingClaim, error)
	ClaimCounts(ctx context.Context) (map[models.ClaimStatus]int, error)
	StudentEntries(ctx context.Context, matric string) ([]models.StudentEntry, error)
	// PointBuckets groups distributed points by category, level and calendar month in loc.
	PointBuckets(ctx context.Context, loc *time.Location) ([]models.PointBucket, error)
	LedgerRows(ctx context.Context, from, to time.Time) ([]models.LedgerRow, error)
	// OpenEvents lists events whose points are not awarded yet, newest first.
	// A nil owner means all events; otherwise organizer_id or proposed_by must match.
	OpenEvents(ctx context.Context, owner *uuid.UUID, limit int) ([]models.Event, error)
}

// Tx — операции внутри транзакции. Lock* берут блокировку строки до конца транзакции.
type Tx interface {
	LockEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	LockClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	LockClaimForEvent(ctx context.Context, eventID uuid.UUID) (*models.Claim, error)

	SaveEventMyCSD(ctx context.Context, e *models.Event) error
	InsertClaim(ctx context.Context, c *models.Claim) error
	// ResubmitClaim rewrites document and proposal and resets the claim to pending.
	// Returns false when the claim is no longer pending or rejected.
	ResubmitClaim(ctx context.Context, c *models.Claim) (bool, error)

	InsertLedgerEntry(ctx context.Context, e *models.LedgerEntry) error
	PresentAttendees(ctx context.Context, eventID uuid.UUID) ([]models.Attendee, error)
	// InsertDistributions is idempotent per (matric, ledger); returns rows actually written.
	InsertDistributions(ctx context.Context, ds []models.Distribution) (int, error)
	// EnqueueNotifications must leave the transaction usable when it fails.
	EnqueueNotifications(ctx context.Context, ns []models.Notification) error

	// TransitionClaim is a compare-and-swap on status; false means another writer won.
	TransitionClaim(ctx context.Context, t ClaimTransition) (bool, error)
	// MarkEventClaimed flips is_claimed false->true and freezes the points.
	MarkEventClaimed(ctx context.Context, eventID uuid.UUID, points int, at time.Time) (bool, error)
}

type ClaimTransition struct {
	ClaimID  uuid.UUID
	From     models.ClaimStatus
	To       models.ClaimStatus
	Reviewer uuid.UUID
	Reason   *string
	At       time.Time
}

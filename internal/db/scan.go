package db

import (
	"database/sql"
	"errors"

	"github.com/Spok95/mycsd-points/internal/models"
)

const eventColumns = `id, title, category, status, organizer_id, proposed_by, level,
	mycsd_category, mycsd_points, has_mycsd, is_claimed, starts_at, created_at, updated_at`

const claimColumns = `id, event_id, submitted_by, proposed_level, proposed_category, document_ref,
	status, rejection_reason, reviewed_by, reviewed_at, created_at, updated_at`

const ledgerColumns = `id, claim_id, event_id, score, category, level, approved_by, created_at`

func scanEvent(row scanner) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Category, &e.Status, &e.OrganizerID, &e.ProposedBy, &e.Level,
		&e.MyCSDCategory, &e.MyCSDPoints, &e.HasMyCSD, &e.IsClaimed, &e.StartsAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanClaim(row scanner) (*models.Claim, error) {
	var c models.Claim
	err := row.Scan(&c.ID, &c.EventID, &c.SubmittedBy, &c.ProposedLevel, &c.ProposedCategory, &c.DocumentRef,
		&c.Status, &c.RejectionReason, &c.ReviewedBy, &c.ReviewedAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanLedger(row scanner) (*models.LedgerEntry, error) {
	var l models.LedgerEntry
	err := row.Scan(&l.ID, &l.ClaimID, &l.EventID, &l.Score, &l.Category, &l.Level, &l.ApprovedBy, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
)

type tx struct {
	tx *sql.Tx
}

func (x *tx) LockEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(x.tx.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
}

func (x *tx) LockClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	return scanClaim(x.tx.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = $1 FOR UPDATE`, id))
}

func (x *tx) LockClaimForEvent(ctx context.Context, eventID uuid.UUID) (*models.Claim, error) {
	return scanClaim(x.tx.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE event_id = $1 FOR UPDATE`, eventID))
}

func (x *tx) SaveEventMyCSD(ctx context.Context, e *models.Event) error {
	_, err := x.tx.ExecContext(ctx, `
		UPDATE events
		SET level = $2, mycsd_category = $3, mycsd_points = $4, has_mycsd = $5, updated_at = $6
		WHERE id = $1
	`, e.ID, e.Level, e.MyCSDCategory, e.MyCSDPoints, e.HasMyCSD, e.UpdatedAt)
	return err
}

func (x *tx) InsertClaim(ctx context.Context, c *models.Claim) error {
	_, err := x.tx.ExecContext(ctx, `
		INSERT INTO claims (id, event_id, submitted_by, proposed_level, proposed_category, document_ref,
		                    status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID, c.EventID, c.SubmittedBy, c.ProposedLevel, c.ProposedCategory, c.DocumentRef,
		c.Status, c.CreatedAt, c.UpdatedAt)
	return mapErr(err)
}

func (x *tx) ResubmitClaim(ctx context.Context, c *models.Claim) (bool, error) {
	res, err := x.tx.ExecContext(ctx, `
		UPDATE claims
		SET document_ref = $2, proposed_level = $3, proposed_category = $4, status = 'pending',
		    rejection_reason = NULL, reviewed_by = NULL, reviewed_at = NULL, updated_at = $5
		WHERE id = $1 AND status IN ('pending', 'rejected')
	`, c.ID, c.DocumentRef, c.ProposedLevel, c.ProposedCategory, c.UpdatedAt)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (x *tx) InsertLedgerEntry(ctx context.Context, e *models.LedgerEntry) error {
	_, err := x.tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (`+ledgerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.ClaimID, e.EventID, e.Score, e.Category, e.Level, e.ApprovedBy, e.CreatedAt)
	return mapErr(err)
}

func (x *tx) PresentAttendees(ctx context.Context, eventID uuid.UUID) ([]models.Attendee, error) {
	rows, err := x.tx.QueryContext(ctx, `
		SELECT r.user_id, COALESCE(u.matric_no, '')
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 AND r.attendance = 'present'
		ORDER BY u.matric_no NULLS LAST
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Attendee
	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.UserID, &a.MatricNo); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// InsertDistributions — пачечная вставка; конфликты по (matric_no, ledger_id) игнорируются.
func (x *tx) InsertDistributions(ctx context.Context, ds []models.Distribution) (int, error) {
	if len(ds) == 0 {
		return 0, nil
	}
	stmt, err := x.tx.PrepareContext(ctx, `
		INSERT INTO distributions (matric_no, ledger_id, user_id, score, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (matric_no, ledger_id) DO NOTHING
	`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	written := 0
	for _, d := range ds {
		res, err := stmt.ExecContext(ctx, d.MatricNo, d.LedgerID, d.UserID, d.Score, d.Position, d.CreatedAt)
		if err != nil {
			return 0, fmt.Errorf("distribution %s: %w", d.MatricNo, err)
		}
		n, _ := res.RowsAffected()
		written += int(n)
	}
	return written, nil
}

// EnqueueNotifications пишет в outbox под SAVEPOINT: ошибка откатывает только
// уведомления, транзакция остаётся рабочей.
func (x *tx) EnqueueNotifications(ctx context.Context, ns []models.Notification) (err error) {
	if len(ns) == 0 {
		return nil
	}
	if _, err := x.tx.ExecContext(ctx, `SAVEPOINT notify`); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_, _ = x.tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT notify`)
			return
		}
		_, err = x.tx.ExecContext(ctx, `RELEASE SAVEPOINT notify`)
	}()

	stmt, err := x.tx.PrepareContext(ctx, `
		INSERT INTO notifications (id, user_id, kind, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, n := range ns {
		if _, err := stmt.ExecContext(ctx, n.ID, n.UserID, n.Kind, n.Message, n.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (x *tx) TransitionClaim(ctx context.Context, t mycsd.ClaimTransition) (bool, error) {
	res, err := x.tx.ExecContext(ctx, `
		UPDATE claims
		SET status = $3, rejection_reason = $4, reviewed_by = $5, reviewed_at = $6, updated_at = $6
		WHERE id = $1 AND status = $2
	`, t.ClaimID, t.From, t.To, t.Reason, t.Reviewer, t.At)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (x *tx) MarkEventClaimed(ctx context.Context, eventID uuid.UUID, points int, at time.Time) (bool, error) {
	res, err := x.tx.ExecContext(ctx, `
		UPDATE events
		SET is_claimed = true, mycsd_points = $2, updated_at = $3
		WHERE id = $1 AND NOT is_claimed
	`, eventID, points, at)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

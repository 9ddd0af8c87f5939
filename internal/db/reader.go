package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/ctxutil"
	"github.com/Spok95/mycsd-points/internal/models"
)

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return scanEvent(s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (s *Store) GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return scanClaim(s.db.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1`, id))
}

func (s *Store) ClaimForEvent(ctx context.Context, eventID uuid.UUID) (*models.Claim, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return scanClaim(s.db.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE event_id = $1`, eventID))
}

func (s *Store) LedgerForClaim(ctx context.Context, claimID uuid.UUID) (*models.LedgerEntry, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return scanLedger(s.db.QueryRowContext(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE claim_id = $1`, claimID))
}

func (s *Store) Distributions(ctx context.Context, ledgerID uuid.UUID) ([]models.Distribution, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT matric_no, ledger_id, user_id, score, position, created_at
		FROM distributions
		WHERE ledger_id = $1
		ORDER BY matric_no
	`, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Distribution
	for rows.Next() {
		var d models.Distribution
		if err := rows.Scan(&d.MatricNo, &d.LedgerID, &d.UserID, &d.Score, &d.Position, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) PendingClaims(ctx context.Context, limit int) ([]models.PendingClaim, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.event_id, c.submitted_by, c.proposed_level, c.proposed_category, c.document_ref,
		       c.status, c.rejection_reason, c.reviewed_by, c.reviewed_at, c.created_at, c.updated_at,
		       e.title, e.level
		FROM claims c
		JOIN events e ON e.id = c.event_id
		WHERE c.status = 'pending'
		ORDER BY c.created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PendingClaim, 0, limit)
	for rows.Next() {
		var p models.PendingClaim
		c := &p.Claim
		if err := rows.Scan(&c.ID, &c.EventID, &c.SubmittedBy, &c.ProposedLevel, &c.ProposedCategory, &c.DocumentRef,
			&c.Status, &c.RejectionReason, &c.ReviewedBy, &c.ReviewedAt, &c.CreatedAt, &c.UpdatedAt,
			&p.EventTitle, &p.EventLevel); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ClaimCounts(ctx context.Context) (map[models.ClaimStatus]int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM claims GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[models.ClaimStatus]int)
	for rows.Next() {
		var (
			st models.ClaimStatus
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

func (s *Store) StudentEntries(ctx context.Context, matric string) ([]models.StudentEntry, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.event_id, e.title, COALESCE(o.name, ''), d.score, d.position,
		       l.category, l.level, l.created_at
		FROM distributions d
		JOIN ledger_entries l ON l.id = d.ledger_id
		JOIN events e ON e.id = l.event_id
		LEFT JOIN users o ON o.id = e.organizer_id
		WHERE d.matric_no = $1
		ORDER BY l.created_at DESC
	`, matric)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StudentEntry
	for rows.Next() {
		var e models.StudentEntry
		if err := rows.Scan(&e.LedgerID, &e.EventID, &e.EventTitle, &e.OrganizerName, &e.Score, &e.Position,
			&e.Category, &e.Level, &e.AwardedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PointBuckets группирует баллы по месяцу в часовом поясе loc (имя IANA).
func (s *Store) PointBuckets(ctx context.Context, loc *time.Location) ([]models.PointBucket, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if loc == nil {
		loc = time.UTC
	}
	tz := loc.String()
	if tz == "Local" {
		tz = "UTC"
		loc = time.UTC
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.category, l.level,
		       to_char(date_trunc('month', l.created_at AT TIME ZONE $1), 'YYYY-MM') AS month,
		       SUM(d.score), COUNT(*)
		FROM distributions d
		JOIN ledger_entries l ON l.id = d.ledger_id
		GROUP BY 1, 2, 3
		ORDER BY 3
	`, tz)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PointBucket
	for rows.Next() {
		var (
			b     models.PointBucket
			month string
		)
		if err := rows.Scan(&b.Category, &b.Level, &month, &b.Points, &b.Distributions); err != nil {
			return nil, err
		}
		m, err := time.ParseInLocation("2006-01", month, loc)
		if err != nil {
			return nil, err
		}
		b.Month = m
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) LedgerRows(ctx context.Context, from, to time.Time) ([]models.LedgerRow, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.claim_id, l.event_id, l.score, l.category, l.level, l.approved_by, l.created_at,
		       e.title, COUNT(d.matric_no), COALESCE(SUM(d.score), 0)
		FROM ledger_entries l
		JOIN events e ON e.id = l.event_id
		LEFT JOIN distributions d ON d.ledger_id = l.id
		WHERE l.created_at >= $1 AND l.created_at < $2
		GROUP BY l.id, e.title
		ORDER BY l.created_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LedgerRow
	for rows.Next() {
		var r models.LedgerRow
		l := &r.LedgerEntry
		if err := rows.Scan(&l.ID, &l.ClaimID, &l.EventID, &l.Score, &l.Category, &l.Level, &l.ApprovedBy, &l.CreatedAt,
			&r.EventTitle, &r.Distributed, &r.PointsIssued); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) OpenEvents(ctx context.Context, owner *uuid.UUID, limit int) ([]models.Event, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE NOT is_claimed
		  AND ($1::uuid IS NULL OR organizer_id = $1 OR proposed_by = $1)
		ORDER BY COALESCE(starts_at, created_at) DESC, id
		LIMIT $2
	`, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

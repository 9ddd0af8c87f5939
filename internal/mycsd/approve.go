package mycsd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/metrics"
	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/observability"
)

type ApprovalResult struct {
	Claim       models.Claim
	Ledger      models.LedgerEntry
	Distributed int
	Skipped     int
	Notified    int
	// NotifyFailed is set when the notification enqueue failed; points are still awarded.
	NotifyFailed bool
}

// PointsAwardedMessage is the fixed template delivered to every distributed student.
func PointsAwardedMessage(points int, eventTitle string) string {
	return fmt.Sprintf("You have received %d points for attending %s", points, eventTitle)
}

// Approve converts a pending claim into a ledger entry and distributes its points
// to every present attendee with a matric number. The whole sequence runs in one
// transaction; the status flip is the last write, so any earlier failure leaves
// the claim pending and retryable.
func (s *Service) Approve(ctx context.Context, actor models.Actor, claimID uuid.UUID) (*ApprovalResult, error) {
	if !actor.IsAdmin() {
		metrics.ClaimsReviewed.WithLabelValues("approve", Forbidden.String()).Inc()
		return nil, E(Forbidden, opApprove, "admin role required")
	}

	var res ApprovalResult
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		res = ApprovalResult{}

		// 1) заявка и событие
		claim, err := tx.LockClaim(ctx, claimID)
		if err != nil {
			return dependency(opApprove, err)
		}
		if claim == nil {
			return E(NotFound, opApprove, "claim "+claimID.String())
		}
		if claim.Status != models.ClaimPending {
			return E(InvalidState, opApprove, "claim is "+string(claim.Status))
		}
		ev, err := tx.LockEvent(ctx, claim.EventID)
		if err != nil {
			return dependency(opApprove, err)
		}
		if ev == nil {
			return E(NotFound, opApprove, "event "+claim.EventID.String())
		}
		if ev.IsClaimed {
			return E(InvalidState, opApprove, "event points were already awarded")
		}

		// 2) итоговые баллы по текущему уровню события
		level := EffectiveLevel(ev.Level)
		score := Scale(level)
		if claim.ProposedLevel != "" && CanonicalLevel(claim.ProposedLevel) != CanonicalLevel(level) {
			s.logFor(ctx).Warn("event level differs from proposed level",
				zap.String("op", opApprove),
				zap.String("claim_id", claim.ID.String()),
				zap.String("proposed", claim.ProposedLevel),
				zap.String("event_level", level),
			)
		}
		now := s.clock()

		// 3) запись реестра
		entry := models.LedgerEntry{
			ID:         uuid.New(),
			ClaimID:    claim.ID,
			EventID:    ev.ID,
			Score:      score,
			Category:   EffectiveCategory(ev.MyCSDCategory),
			Level:      CanonicalLevel(level),
			ApprovedBy: actor.UserID,
			CreatedAt:  now,
		}
		if err := tx.InsertLedgerEntry(ctx, &entry); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return E(InvalidState, opApprove, "ledger entry already exists for claim")
			}
			return dependency(opApprove, err)
		}

		// 4) распределение присутствовавшим
		attendees, err := tx.PresentAttendees(ctx, ev.ID)
		if err != nil {
			return dependency(opApprove, err)
		}
		batch, skipped := distributionBatch(entry, attendees)
		written, err := tx.InsertDistributions(ctx, batch)
		if err != nil {
			return dependency(opApprove, err)
		}
		res.Distributed = written
		res.Skipped = skipped

		// 5) уведомления — best effort
		notes := pointsAwardedNotifications(batch, ev.Title, score, now)
		if err := tx.EnqueueNotifications(ctx, notes); err != nil {
			res.NotifyFailed = true
			metrics.NotificationFailures.WithLabelValues("enqueue").Inc()
			observability.CaptureErr(fmt.Errorf("enqueue points notifications for claim %s: %w", claim.ID, err))
			s.logFor(ctx).Warn("notification enqueue failed, continuing",
				zap.String("op", opApprove),
				zap.String("claim_id", claim.ID.String()),
				zap.Error(err),
			)
		} else {
			res.Notified = len(notes)
		}

		// 6) смена статусов — последней
		ok, err := tx.TransitionClaim(ctx, ClaimTransition{
			ClaimID:  claim.ID,
			From:     models.ClaimPending,
			To:       models.ClaimApproved,
			Reviewer: actor.UserID,
			At:       now,
		})
		if err != nil {
			return dependency(opApprove, err)
		}
		if !ok {
			metrics.ApprovalConflicts.Inc()
			return E(InvalidState, opApprove, "claim was reviewed concurrently")
		}
		ok, err = tx.MarkEventClaimed(ctx, ev.ID, score, now)
		if err != nil {
			return dependency(opApprove, err)
		}
		if !ok {
			metrics.ApprovalConflicts.Inc()
			return E(InvalidState, opApprove, "event was claimed concurrently")
		}

		claim.Status = models.ClaimApproved
		reviewer := actor.UserID
		claim.ReviewedBy = &reviewer
		claim.ReviewedAt = &now
		claim.UpdatedAt = now
		res.Claim = *claim
		res.Ledger = entry
		return nil
	})
	if err != nil {
		metrics.ClaimsReviewed.WithLabelValues("approve", KindOf(err).String()).Inc()
		s.logFor(ctx).Warn("claim approval failed, claim stays pending",
			zap.String("op", opApprove),
			zap.String("claim_id", claimID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.ClaimsReviewed.WithLabelValues("approve", "ok").Inc()
	metrics.PointsDistributed.Add(float64(res.Distributed * res.Ledger.Score))
	metrics.DistributionsSkipped.Add(float64(res.Skipped))
	s.logFor(ctx).Info("claim approved",
		zap.String("op", opApprove),
		zap.String("claim_id", claimID.String()),
		zap.String("ledger_id", res.Ledger.ID.String()),
		zap.Int("score", res.Ledger.Score),
		zap.Int("distributed", res.Distributed),
		zap.Int("skipped", res.Skipped),
	)
	return &res, nil
}

// distributionBatch builds one entry per distinct matric number. Attendees
// without a matric number are counted as skipped.
func distributionBatch(entry models.LedgerEntry, attendees []models.Attendee) ([]models.Distribution, int) {
	seen := make(map[string]struct{}, len(attendees))
	batch := make([]models.Distribution, 0, len(attendees))
	skipped := 0
	for _, a := range attendees {
		matric := strings.TrimSpace(a.MatricNo)
		if matric == "" {
			skipped++
			continue
		}
		if _, dup := seen[matric]; dup {
			continue
		}
		seen[matric] = struct{}{}
		batch = append(batch, models.Distribution{
			MatricNo:  matric,
			LedgerID:  entry.ID,
			UserID:    a.UserID,
			Score:     entry.Score,
			Position:  models.DefaultPosition,
			CreatedAt: entry.CreatedAt,
		})
	}
	return batch, skipped
}

func pointsAwardedNotifications(batch []models.Distribution, title string, score int, now time.Time) []models.Notification {
	out := make([]models.Notification, 0, len(batch))
	msg := PointsAwardedMessage(score, title)
	for _, d := range batch {
		out = append(out, models.Notification{
			ID:        uuid.New(),
			UserID:    d.UserID,
			Kind:      models.NotificationPointsAwarded,
			Message:   msg,
			CreatedAt: now,
		})
	}
	return out
}

// Reject closes a pending claim with a mandatory reason. Nothing else changes.
func (s *Service) Reject(ctx context.Context, actor models.Actor, claimID uuid.UUID, reason string) (*models.Claim, error) {
	if !actor.IsAdmin() {
		metrics.ClaimsReviewed.WithLabelValues("reject", Forbidden.String()).Inc()
		return nil, E(Forbidden, opReject, "admin role required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		metrics.ClaimsReviewed.WithLabelValues("reject", Validation.String()).Inc()
		return nil, &Error{Kind: Validation, Op: opReject, Msg: "rejection reason is required",
			Fields: []FieldError{{Field: "Reason", Error: "required"}}}
	}

	var out models.Claim
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		claim, err := tx.LockClaim(ctx, claimID)
		if err != nil {
			return dependency(opReject, err)
		}
		if claim == nil {
			return E(NotFound, opReject, "claim "+claimID.String())
		}
		if !models.CanTransition(claim.Status, models.ClaimRejected) {
			return E(InvalidState, opReject, "claim is "+string(claim.Status))
		}
		now := s.clock()
		ok, err := tx.TransitionClaim(ctx, ClaimTransition{
			ClaimID:  claim.ID,
			From:     models.ClaimPending,
			To:       models.ClaimRejected,
			Reviewer: actor.UserID,
			Reason:   &reason,
			At:       now,
		})
		if err != nil {
			return dependency(opReject, err)
		}
		if !ok {
			return E(InvalidState, opReject, "claim was reviewed concurrently")
		}
		claim.Status = models.ClaimRejected
		claim.RejectionReason = &reason
		reviewer := actor.UserID
		claim.ReviewedBy = &reviewer
		claim.ReviewedAt = &now
		claim.UpdatedAt = now
		out = *claim
		return nil
	})
	if err != nil {
		metrics.ClaimsReviewed.WithLabelValues("reject", KindOf(err).String()).Inc()
		s.logFor(ctx).Warn("claim rejection failed", zap.String("op", opReject),
			zap.String("claim_id", claimID.String()), zap.Error(err))
		return nil, err
	}
	metrics.ClaimsReviewed.WithLabelValues("reject", "ok").Inc()
	s.logFor(ctx).Info("claim rejected", zap.String("op", opReject),
		zap.String("claim_id", claimID.String()), zap.String("reason", reason))
	return &out, nil
}

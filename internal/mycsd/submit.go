package mycsd

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/metrics"
	"github.com/Spok95/mycsd-points/internal/models"
)

type SubmitClaimInput struct {
	EventID          uuid.UUID `validate:"required"`
	DocumentRef      string    `validate:"required"`
	ProposedLevel    string
	ProposedCategory string
}

// PreviewPoints is for display on the submission screen only; nothing is persisted.
func PreviewPoints(level string) int {
	return PointsForLevel(EffectiveLevel(level))
}

func canManageEvent(actor models.Actor, ev *models.Event) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.UserID == ev.OrganizerID || actor.UserID == ev.Owner()
}

// ClaimableEvents — события без начисленных баллов: админу все, организатору свои.
func (s *Service) ClaimableEvents(ctx context.Context, actor models.Actor, limit int) ([]models.Event, error) {
	var owner *uuid.UUID
	switch {
	case actor.IsAdmin():
	case actor.Role == models.Organizer:
		id := actor.UserID
		owner = &id
	default:
		return nil, E(Forbidden, opOpenEvents, "organizer role required")
	}
	if limit <= 0 {
		limit = 20
	}
	events, err := s.store.OpenEvents(ctx, owner, limit)
	if err != nil {
		return nil, dependency(opOpenEvents, err)
	}
	return events, nil
}

// SubmitClaim creates or refreshes the single claim of an event.
func (s *Service) SubmitClaim(ctx context.Context, actor models.Actor, in SubmitClaimInput) (*models.Claim, error) {
	in.DocumentRef = strings.TrimSpace(in.DocumentRef)
	in.ProposedLevel = strings.TrimSpace(in.ProposedLevel)
	if err := s.validate.Struct(in); err != nil {
		metrics.ClaimsSubmitted.WithLabelValues(Validation.String()).Inc()
		return nil, validationError(opSubmit, err)
	}
	var proposedCat *models.Category
	if strings.TrimSpace(in.ProposedCategory) != "" {
		c, ok := models.ParseCategory(in.ProposedCategory)
		if !ok {
			metrics.ClaimsSubmitted.WithLabelValues(Validation.String()).Inc()
			return nil, &Error{Kind: Validation, Op: opSubmit, Msg: "unknown MyCSD category " + in.ProposedCategory,
				Fields: []FieldError{{Field: "ProposedCategory", Error: "oneof"}}}
		}
		proposedCat = &c
	}

	var out models.Claim
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		ev, err := tx.LockEvent(ctx, in.EventID)
		if err != nil {
			return dependency(opSubmit, err)
		}
		if ev == nil {
			return E(NotFound, opSubmit, "event "+in.EventID.String())
		}
		if !canManageEvent(actor, ev) {
			return E(Forbidden, opSubmit, "not the organizer of this event")
		}
		if ev.IsClaimed {
			return E(InvalidState, opSubmit, "points for this event were already awarded")
		}

		level := in.ProposedLevel
		if level == "" {
			level = EffectiveLevel(ev.Level)
		}
		category := EffectiveCategory(ev.MyCSDCategory)
		if proposedCat != nil {
			category = *proposedCat
		}
		now := s.clock()

		// Уровень и категория сразу пишутся в событие, чтобы админ видел актуальную заявку.
		ev.Level = level
		ev.MyCSDCategory = &category
		ev.HasMyCSD = true
		ev.MyCSDPoints = PointsForLevel(level)
		ev.UpdatedAt = now
		if err := tx.SaveEventMyCSD(ctx, ev); err != nil {
			return dependency(opSubmit, err)
		}

		existing, err := tx.LockClaimForEvent(ctx, ev.ID)
		if err != nil {
			return dependency(opSubmit, err)
		}
		if existing != nil {
			if !models.CanTransition(existing.Status, models.ClaimPending) {
				return E(InvalidState, opSubmit, "claim is already "+string(existing.Status))
			}
			prev := existing.Status
			existing.DocumentRef = in.DocumentRef
			existing.ProposedLevel = level
			existing.ProposedCategory = category
			existing.Status = models.ClaimPending
			existing.RejectionReason = nil
			existing.ReviewedBy = nil
			existing.ReviewedAt = nil
			existing.UpdatedAt = now
			ok, err := tx.ResubmitClaim(ctx, existing)
			if err != nil {
				return dependency(opSubmit, err)
			}
			if !ok {
				return E(InvalidState, opSubmit, "claim was reviewed concurrently")
			}
			s.logFor(ctx).Info("claim resubmitted",
				zap.String("op", opSubmit),
				zap.String("claim_id", existing.ID.String()),
				zap.String("event_id", ev.ID.String()),
				zap.String("previous_status", string(prev)),
			)
			out = *existing
			return nil
		}

		c := models.Claim{
			ID:               uuid.New(),
			EventID:          ev.ID,
			SubmittedBy:      actor.UserID,
			ProposedLevel:    level,
			ProposedCategory: category,
			DocumentRef:      in.DocumentRef,
			Status:           models.ClaimPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		// заявка принадлежит владельцу события, даже если её подал админ
		c.SubmittedBy = ev.Owner()
		if err := tx.InsertClaim(ctx, &c); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return E(InvalidState, opSubmit, "a claim for this event already exists")
			}
			return dependency(opSubmit, err)
		}
		s.logFor(ctx).Info("claim submitted",
			zap.String("op", opSubmit),
			zap.String("claim_id", c.ID.String()),
			zap.String("event_id", ev.ID.String()),
			zap.String("level", level),
			zap.String("category", string(category)),
		)
		out = c
		return nil
	})
	if err != nil {
		metrics.ClaimsSubmitted.WithLabelValues(KindOf(err).String()).Inc()
		s.logFor(ctx).Warn("claim submission failed", zap.String("op", opSubmit),
			zap.String("event_id", in.EventID.String()), zap.Error(err))
		return nil, err
	}
	metrics.ClaimsSubmitted.WithLabelValues("ok").Inc()
	return &out, nil
}

type UpdateEventInput struct {
	EventID  uuid.UUID `validate:"required"`
	Level    string
	Category string
	HasMyCSD bool
}

// UpdateEventMyCSD edits level / category before approval. Organizers may do it
// until the event is published, admins until points are awarded.
func (s *Service) UpdateEventMyCSD(ctx context.Context, actor models.Actor, in UpdateEventInput) (*models.Event, error) {
	in.Level = strings.TrimSpace(in.Level)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(opUpdateEvent, err)
	}
	var cat *models.Category
	if strings.TrimSpace(in.Category) != "" {
		c, ok := models.ParseCategory(in.Category)
		if !ok {
			return nil, &Error{Kind: Validation, Op: opUpdateEvent, Msg: "unknown MyCSD category " + in.Category,
				Fields: []FieldError{{Field: "Category", Error: "oneof"}}}
		}
		cat = &c
	}

	var out models.Event
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		ev, err := tx.LockEvent(ctx, in.EventID)
		if err != nil {
			return dependency(opUpdateEvent, err)
		}
		if ev == nil {
			return E(NotFound, opUpdateEvent, "event "+in.EventID.String())
		}
		if !canManageEvent(actor, ev) {
			return E(Forbidden, opUpdateEvent, "not the organizer of this event")
		}
		if !actor.IsAdmin() && !ev.Status.OrganizerEditable() {
			return E(Forbidden, opUpdateEvent, "event is "+string(ev.Status)+", only an admin can change it")
		}
		if ev.IsClaimed {
			return E(InvalidState, opUpdateEvent, "points are frozen after approval")
		}
		ev.Level = in.Level
		ev.MyCSDCategory = cat
		ev.HasMyCSD = in.HasMyCSD
		ev.MyCSDPoints = 0
		if in.HasMyCSD {
			ev.MyCSDPoints = PointsForLevel(EffectiveLevel(in.Level))
		}
		ev.UpdatedAt = s.clock()
		if err := tx.SaveEventMyCSD(ctx, ev); err != nil {
			return dependency(opUpdateEvent, err)
		}
		out = *ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logFor(ctx).Info("event mycsd updated",
		zap.String("op", opUpdateEvent),
		zap.String("event_id", out.ID.String()),
		zap.String("actor", actor.UserID.String()),
		zap.String("level", out.Level),
	)
	return &out, nil
}

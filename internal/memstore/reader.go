package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
)

func (s *Store) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	var out *models.Event
	s.read(func(t *tables) {
		if e, ok := t.events[id]; ok {
			out = &e
		}
	})
	return out, nil
}

func (s *Store) GetClaim(_ context.Context, id uuid.UUID) (*models.Claim, error) {
	var out *models.Claim
	s.read(func(t *tables) {
		if c, ok := t.claims[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (s *Store) ClaimForEvent(_ context.Context, eventID uuid.UUID) (*models.Claim, error) {
	var out *models.Claim
	s.read(func(t *tables) {
		for _, c := range t.claims {
			if c.EventID == eventID {
				c := c
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (s *Store) LedgerForClaim(_ context.Context, claimID uuid.UUID) (*models.LedgerEntry, error) {
	var out *models.LedgerEntry
	s.read(func(t *tables) {
		for _, e := range t.ledger {
			if e.ClaimID == claimID {
				e := e
				out = &e
				return
			}
		}
	})
	return out, nil
}

func (s *Store) Distributions(_ context.Context, ledgerID uuid.UUID) ([]models.Distribution, error) {
	var out []models.Distribution
	s.read(func(t *tables) {
		for k, d := range t.distributions {
			if k.ledger == ledgerID {
				out = append(out, d)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].MatricNo < out[j].MatricNo })
	return out, nil
}

func (s *Store) PendingClaims(_ context.Context, limit int) ([]models.PendingClaim, error) {
	var out []models.PendingClaim
	s.read(func(t *tables) {
		for _, c := range t.claims {
			if c.Status != models.ClaimPending {
				continue
			}
			pc := models.PendingClaim{Claim: c}
			if e, ok := t.events[c.EventID]; ok {
				pc.EventTitle = e.Title
				pc.EventLevel = e.Level
			}
			out = append(out, pc)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ClaimCounts(_ context.Context) (map[models.ClaimStatus]int, error) {
	out := make(map[models.ClaimStatus]int)
	s.read(func(t *tables) {
		for _, c := range t.claims {
			out[c.Status]++
		}
	})
	return out, nil
}

func (s *Store) StudentEntries(_ context.Context, matric string) ([]models.StudentEntry, error) {
	var out []models.StudentEntry
	s.read(func(t *tables) {
		for k, d := range t.distributions {
			if k.matric != matric {
				continue
			}
			l, ok := t.ledger[k.ledger]
			if !ok {
				continue
			}
			row := models.StudentEntry{
				LedgerID:  l.ID,
				EventID:   l.EventID,
				Score:     d.Score,
				Position:  d.Position,
				Category:  l.Category,
				Level:     l.Level,
				AwardedAt: l.CreatedAt,
			}
			if e, ok := t.events[l.EventID]; ok {
				row.EventTitle = e.Title
				if u, ok := t.users[e.OrganizerID]; ok {
					row.OrganizerName = u.Name
				}
			}
			out = append(out, row)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AwardedAt.After(out[j].AwardedAt) })
	return out, nil
}

func (s *Store) PointBuckets(_ context.Context, loc *time.Location) ([]models.PointBucket, error) {
	type key struct {
		cat   models.Category
		level models.Level
		month time.Time
	}
	agg := make(map[key]*models.PointBucket)
	s.read(func(t *tables) {
		for k, d := range t.distributions {
			l, ok := t.ledger[k.ledger]
			if !ok {
				continue
			}
			local := l.CreatedAt.In(loc)
			month := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
			bk := key{l.Category, l.Level, month}
			b, ok := agg[bk]
			if !ok {
				b = &models.PointBucket{Category: l.Category, Level: l.Level, Month: month}
				agg[bk] = b
			}
			b.Points += d.Score
			b.Distributions++
		}
	})
	out := make([]models.PointBucket, 0, len(agg))
	for _, b := range agg {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}

func (s *Store) LedgerRows(_ context.Context, from, to time.Time) ([]models.LedgerRow, error) {
	var out []models.LedgerRow
	s.read(func(t *tables) {
		for _, l := range t.ledger {
			if l.CreatedAt.Before(from) || !l.CreatedAt.Before(to) {
				continue
			}
			row := models.LedgerRow{LedgerEntry: l}
			if e, ok := t.events[l.EventID]; ok {
				row.EventTitle = e.Title
			}
			for k, d := range t.distributions {
				if k.ledger == l.ID {
					row.Distributed++
					row.PointsIssued += d.Score
				}
			}
			out = append(out, row)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) OpenEvents(_ context.Context, owner *uuid.UUID, limit int) ([]models.Event, error) {
	var out []models.Event
	s.read(func(t *tables) {
		for _, e := range t.events {
			if e.IsClaimed {
				continue
			}
			if owner != nil && e.Owner() != *owner && e.OrganizerID != *owner {
				continue
			}
			out = append(out, e)
		}
	})
	when := func(e models.Event) time.Time {
		if e.StartsAt != nil {
			return *e.StartsAt
		}
		return e.CreatedAt
	}
	sort.Slice(out, func(i, j int) bool {
		if !when(out[i]).Equal(when(out[j])) {
			return when(out[i]).After(when(out[j]))
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UserByTelegramID resolves a chat to a user for the bot.
func (s *Store) UserByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	var out *models.User
	s.read(func(t *tables) {
		for _, u := range t.users {
			if u.TelegramID != nil && *u.TelegramID == telegramID {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}

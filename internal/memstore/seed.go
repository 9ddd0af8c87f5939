package memstore

import (
	"sort"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
)

// Seeding and inspection helpers used by tests and the memory backend.

func (s *Store) PutUser(u models.User) {
	s.write(func(t *tables) { t.users[u.ID] = u })
}

func (s *Store) PutEvent(e models.Event) {
	s.write(func(t *tables) { t.events[e.ID] = e })
}

func (s *Store) PutRegistration(r models.Registration) {
	s.write(func(t *tables) { t.registrations[regKey{r.EventID, r.UserID}] = r })
}

func (s *Store) Claims() []models.Claim {
	var out []models.Claim
	s.read(func(t *tables) {
		for _, c := range t.claims {
			out = append(out, c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) LedgerEntries() []models.LedgerEntry {
	var out []models.LedgerEntry
	s.read(func(t *tables) {
		for _, e := range t.ledger {
			out = append(out, e)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) AllDistributions() []models.Distribution {
	var out []models.Distribution
	s.read(func(t *tables) {
		for _, d := range t.distributions {
			out = append(out, d)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].MatricNo < out[j].MatricNo })
	return out
}

func (s *Store) Notifications() []models.Notification {
	var out []models.Notification
	s.read(func(t *tables) { out = append(out, t.notifications...) })
	return out
}

func (s *Store) Event(id uuid.UUID) (models.Event, bool) {
	var (
		e  models.Event
		ok bool
	)
	s.read(func(t *tables) { e, ok = t.events[id] })
	return e, ok
}

// Package memstore is an in-memory implementation of the MyCSD store. Transactions
// are serialised on a single mutex and work on a copy of the tables that replaces
// the live tables only on commit.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
)

type distKey struct {
	matric string
	ledger uuid.UUID
}

type regKey struct {
	event uuid.UUID
	user  uuid.UUID
}

type tables struct {
	users         map[uuid.UUID]models.User
	events        map[uuid.UUID]models.Event
	claims        map[uuid.UUID]models.Claim
	ledger        map[uuid.UUID]models.LedgerEntry
	distributions map[distKey]models.Distribution
	registrations map[regKey]models.Registration
	notifications []models.Notification
}

func newTables() *tables {
	return &tables{
		users:         make(map[uuid.UUID]models.User),
		events:        make(map[uuid.UUID]models.Event),
		claims:        make(map[uuid.UUID]models.Claim),
		ledger:        make(map[uuid.UUID]models.LedgerEntry),
		distributions: make(map[distKey]models.Distribution),
		registrations: make(map[regKey]models.Registration),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.events {
		c.events[k] = v
	}
	for k, v := range t.claims {
		c.claims[k] = v
	}
	for k, v := range t.ledger {
		c.ledger[k] = v
	}
	for k, v := range t.distributions {
		c.distributions[k] = v
	}
	for k, v := range t.registrations {
		c.registrations[k] = v
	}
	c.notifications = append([]models.Notification(nil), t.notifications...)
	return c
}

type Store struct {
	mu   sync.RWMutex
	data *tables

	hookMu sync.Mutex
	fail   map[string]error
}

var _ mycsd.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: newTables(), fail: make(map[string]error)}
}

// FailOn makes the named tx operation return err until cleared with FailOn(op, nil).
// Names match the mycsd.Tx method names.
func (s *Store) FailOn(op string, err error) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *Store) injected(op string) error {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	return s.fail[op]
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx mycsd.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&tx{store: s, t: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) read(fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(t *tables)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

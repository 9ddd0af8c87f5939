package mycsd

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/ctxutil"
)

const (
	opSubmit      = "submit_claim"
	opUpdateEvent = "update_event_mycsd"
	opApprove     = "approve_claim"
	opReject      = "reject_claim"
	opSummarize   = "summarize"
	opHistory     = "student_history"
	opStats       = "admin_stats"
	opPending     = "pending_claims"
	opReport      = "ledger_report"
	opOpenEvents  = "open_events"
)

type Service struct {
	store    Store
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
}

type Option func(*Service)

// WithClock подменяет источник времени (тесты, отчёты за прошлые месяцы).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone used for calendar-month windows.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:    store,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
		loc:      time.Local,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) clock() time.Time { return s.now().UTC() }

func (s *Service) logFor(ctx context.Context) *zap.Logger {
	if fs := ctxutil.LogFields(ctx); len(fs) > 0 {
		return s.log.With(fs...)
	}
	return s.log
}

// monthBounds returns [start, next) of the calendar month containing t in the service zone.
func (s *Service) monthBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(s.loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 1, 0)
}

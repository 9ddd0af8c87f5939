package mycsd

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
)

// Summarize reduces a student's distribution entries. Every category and level
// bucket is present in the result, zero or not.
func (s *Service) Summarize(ctx context.Context, matric string) (models.Summary, error) {
	matric = strings.TrimSpace(matric)
	sum := models.NewSummary(matric)
	if matric == "" {
		// без матрикула нет и начислений
		return sum, nil
	}
	entries, err := s.store.StudentEntries(ctx, matric)
	if err != nil {
		return sum, dependency(opSummarize, err)
	}
	from, to := s.monthBounds(s.now())
	events := make(map[uuid.UUID]struct{})
	monthEvents := make(map[uuid.UUID]struct{})
	for _, e := range entries {
		sum.TotalPoints += e.Score
		sum.PointsByCategory[bucketCategory(e.Category)] += e.Score
		sum.PointsByLevel[bucketLevel(e.Level)] += e.Score
		events[e.EventID] = struct{}{}
		if inWindow(e.AwardedAt, from, to) {
			sum.PointsThisMonth += e.Score
			monthEvents[e.EventID] = struct{}{}
		}
	}
	sum.TotalEvents = len(events)
	sum.EventsThisMonth = len(monthEvents)
	return sum, nil
}

// StudentHistory lists awarded entries newest first, for display.
func (s *Service) StudentHistory(ctx context.Context, matric string) ([]models.StudentEntry, error) {
	matric = strings.TrimSpace(matric)
	if matric == "" {
		return []models.StudentEntry{}, nil
	}
	entries, err := s.store.StudentEntries(ctx, matric)
	if err != nil {
		return nil, dependency(opHistory, err)
	}
	return entries, nil
}

// AdminStats — сводка для панели администратора.
func (s *Service) AdminStats(ctx context.Context, actor models.Actor) (models.AdminStats, error) {
	stats := models.NewAdminStats()
	if !actor.IsAdmin() {
		return stats, E(Forbidden, opStats, "admin role required")
	}
	counts, err := s.store.ClaimCounts(ctx)
	if err != nil {
		return stats, dependency(opStats, err)
	}
	for st, n := range counts {
		if st.Valid() {
			stats.ClaimsByStatus[st] = n
		}
	}
	buckets, err := s.store.PointBuckets(ctx, s.loc)
	if err != nil {
		return stats, dependency(opStats, err)
	}
	thisFrom, thisTo := s.monthBounds(s.now())
	lastFrom := thisFrom.AddDate(0, -1, 0)
	for _, b := range buckets {
		stats.TotalPoints += b.Points
		stats.TotalDistributions += b.Distributions
		stats.PointsByCategory[bucketCategory(b.Category)] += b.Points
		stats.PointsByLevel[bucketLevel(b.Level)] += b.Points
		switch {
		case inWindow(b.Month, thisFrom, thisTo):
			stats.PointsThisMonth += b.Points
		case inWindow(b.Month, lastFrom, thisFrom):
			stats.PointsLastMonth += b.Points
		}
	}
	stats.MonthDelta = stats.PointsThisMonth - stats.PointsLastMonth
	return stats, nil
}

// PendingClaims is the admin review queue, oldest first.
func (s *Service) PendingClaims(ctx context.Context, actor models.Actor, limit int) ([]models.PendingClaim, error) {
	if !actor.IsAdmin() {
		return nil, E(Forbidden, opPending, "admin role required")
	}
	if limit <= 0 {
		limit = 20
	}
	claims, err := s.store.PendingClaims(ctx, limit)
	if err != nil {
		return nil, dependency(opPending, err)
	}
	for i := range claims {
		claims[i].PreviewPoints = PreviewPoints(claims[i].EventLevel)
	}
	return claims, nil
}

// LedgerReport returns ledger rows approved in [from, to).
func (s *Service) LedgerReport(ctx context.Context, actor models.Actor, from, to time.Time) ([]models.LedgerRow, error) {
	if !actor.IsAdmin() {
		return nil, E(Forbidden, opReport, "admin role required")
	}
	if !to.After(from) {
		return nil, E(Validation, opReport, "report period end must be after start")
	}
	rows, err := s.store.LedgerRows(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, dependency(opReport, err)
	}
	return rows, nil
}

// MonthBounds exposes the calendar month window of the service clock.
func (s *Service) MonthBounds() (time.Time, time.Time) {
	return s.monthBounds(s.now())
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

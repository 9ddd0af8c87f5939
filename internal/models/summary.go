package models

import (
	"time"

	"github.com/google/uuid"
)

type Summary struct {
	MatricNo         string
	TotalPoints      int
	TotalEvents      int
	PointsByCategory map[Category]int
	PointsByLevel    map[Level]int
	EventsThisMonth  int
	PointsThisMonth  int
}

// NewSummary returns a summary with every category and level bucket present.
func NewSummary(matric string) Summary {
	s := Summary{
		MatricNo:         matric,
		PointsByCategory: make(map[Category]int, len(Categories)),
		PointsByLevel:    make(map[Level]int, len(Levels)),
	}
	for _, c := range Categories {
		s.PointsByCategory[c] = 0
	}
	for _, l := range Levels {
		s.PointsByLevel[l] = 0
	}
	return s
}

type AdminStats struct {
	ClaimsByStatus     map[ClaimStatus]int
	TotalPoints        int
	TotalDistributions int
	PointsByCategory   map[Category]int
	PointsByLevel      map[Level]int
	PointsThisMonth    int
	PointsLastMonth    int
	MonthDelta         int
}

func NewAdminStats() AdminStats {
	s := AdminStats{
		ClaimsByStatus:   map[ClaimStatus]int{ClaimPending: 0, ClaimApproved: 0, ClaimRejected: 0},
		PointsByCategory: make(map[Category]int, len(Categories)),
		PointsByLevel:    make(map[Level]int, len(Levels)),
	}
	for _, c := range Categories {
		s.PointsByCategory[c] = 0
	}
	for _, l := range Levels {
		s.PointsByLevel[l] = 0
	}
	return s
}

const NotificationPointsAwarded = "points_awarded"

type Notification struct {
	ID         uuid.UUID  `db:"id"`
	UserID     uuid.UUID  `db:"user_id"`
	Kind       string     `db:"kind"`
	Message    string     `db:"message"`
	CreatedAt  time.Time  `db:"created_at"`
	SentAt     *time.Time `db:"sent_at"`
	Attempts   int        `db:"attempts"`
	LastError  *string    `db:"last_error"`
	TelegramID *int64     `db:"-"`
}

// PointBucket — агрегат распределённых баллов по категории, уровню и месяцу.
type PointBucket struct {
	Category      Category
	Level         Level
	Month         time.Time
	Points        int
	Distributions int
}

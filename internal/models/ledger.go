package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultPosition = "Participant"

// LedgerEntry is immutable once written; Score is fixed at approval time.
type LedgerEntry struct {
	ID         uuid.UUID `db:"id"`
	ClaimID    uuid.UUID `db:"claim_id"`
	EventID    uuid.UUID `db:"event_id"`
	Score      int       `db:"score"`
	Category   Category  `db:"category"`
	Level      Level     `db:"level"`
	ApprovedBy uuid.UUID `db:"approved_by"`
	CreatedAt  time.Time `db:"created_at"`
}

type Distribution struct {
	MatricNo  string    `db:"matric_no"`
	LedgerID  uuid.UUID `db:"ledger_id"`
	UserID    uuid.UUID `db:"user_id"`
	Score     int       `db:"score"`
	Position  string    `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

// StudentEntry — распределение, соединённое с записью реестра и событием.
type StudentEntry struct {
	LedgerID      uuid.UUID
	EventID       uuid.UUID
	EventTitle    string
	OrganizerName string
	Score         int
	Position      string
	Category      Category
	Level         Level
	AwardedAt     time.Time
}

// LedgerRow — строка отчёта реестра для администратора.
type LedgerRow struct {
	LedgerEntry
	EventTitle   string
	Distributed  int
	PointsIssued int
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimPending, ClaimApproved, ClaimRejected:
		return true
	}
	return false
}

// CanTransition lists every edge of the claim state machine.
// Resubmission (pending->pending, rejected->pending) is an organizer edge;
// approval and rejection are admin edges out of pending only.
func CanTransition(from, to ClaimStatus) bool {
	switch from {
	case ClaimPending:
		switch to {
		case ClaimPending, ClaimApproved, ClaimRejected:
			return true
		}
	case ClaimRejected:
		return to == ClaimPending
	case ClaimApproved:
		return false
	}
	return false
}

type Claim struct {
	ID               uuid.UUID   `db:"id"`
	EventID          uuid.UUID   `db:"event_id"`
	SubmittedBy      uuid.UUID   `db:"submitted_by"`
	ProposedLevel    string      `db:"proposed_level"`
	ProposedCategory Category    `db:"proposed_category"`
	DocumentRef      string      `db:"document_ref"`
	Status           ClaimStatus `db:"status"`
	RejectionReason  *string     `db:"rejection_reason"`
	ReviewedBy       *uuid.UUID  `db:"reviewed_by"`
	ReviewedAt       *time.Time  `db:"reviewed_at"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// PendingClaim — строка очереди на проверку для администратора.
type PendingClaim struct {
	Claim
	EventTitle    string
	EventLevel    string
	PreviewPoints int
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPending   EventStatus = "pending"
	EventPublished EventStatus = "published"
	EventCompleted EventStatus = "completed"
	EventRejected  EventStatus = "rejected"
)

// OrganizerEditable — организатор может править метаданные MyCSD только до публикации.
func (s EventStatus) OrganizerEditable() bool {
	switch s {
	case EventDraft, EventPending:
		return true
	case EventPublished, EventCompleted, EventRejected:
		return false
	}
	return false
}

func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPending, EventPublished, EventCompleted, EventRejected:
		return true
	}
	return false
}

type Event struct {
	ID            uuid.UUID   `db:"id"`
	Title         string      `db:"title"`
	Category      string      `db:"category"`
	Status        EventStatus `db:"status"`
	OrganizerID   uuid.UUID   `db:"organizer_id"`
	ProposedBy    *uuid.UUID  `db:"proposed_by"`
	Level         string      `db:"level"`
	MyCSDCategory *Category   `db:"mycsd_category"`
	MyCSDPoints   int         `db:"mycsd_points"`
	HasMyCSD      bool        `db:"has_mycsd"`
	IsClaimed     bool        `db:"is_claimed"`
	StartsAt      *time.Time  `db:"starts_at"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

// Owner — владелец исходного предложения; если не задан, организатор события.
func (e *Event) Owner() uuid.UUID {
	if e.ProposedBy != nil {
		return *e.ProposedBy
	}
	return e.OrganizerID
}

type Attendance string

const (
	AttendanceRegistered Attendance = "registered"
	AttendancePresent    Attendance = "present"
	AttendanceAbsent     Attendance = "absent"
)

type Registration struct {
	EventID    uuid.UUID  `db:"event_id"`
	UserID     uuid.UUID  `db:"user_id"`
	Attendance Attendance `db:"attendance"`
}

// Attendee — присутствовавший участник; MatricNo пустой, если студент не найден.
type Attendee struct {
	UserID   uuid.UUID
	MatricNo string
}

package models

import "github.com/google/uuid"

type Role string

const (
	Student   Role = "student"
	Organizer Role = "organizer"
	Admin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case Student, Organizer, Admin:
		return true
	}
	return false
}

type User struct {
	ID         uuid.UUID `db:"id"`
	Name       string    `db:"name"`
	Role       Role      `db:"role"`
	TelegramID *int64    `db:"telegram_id"`
	MatricNo   *string   `db:"matric_no"`
}

// Actor — кто выполняет операцию; роль проверяется внешним слоем аутентификации.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == Admin }

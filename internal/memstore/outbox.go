package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/models"
)

// MaxNotificationAttempts — после стольких неудач уведомление больше не отправляется.
const MaxNotificationAttempts = 5

func (s *Store) PendingNotifications(_ context.Context, limit int) ([]models.Notification, error) {
	var out []models.Notification
	s.read(func(t *tables) {
		for _, n := range t.notifications {
			if n.SentAt != nil || n.Attempts >= MaxNotificationAttempts {
				continue
			}
			u, ok := t.users[n.UserID]
			if !ok || u.TelegramID == nil {
				continue
			}
			tg := *u.TelegramID
			n.TelegramID = &tg
			out = append(out, n)
			if limit > 0 && len(out) == limit {
				return
			}
		}
	})
	return out, nil
}

func (s *Store) MarkNotificationsSent(_ context.Context, ids []uuid.UUID, at time.Time) error {
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	s.write(func(t *tables) {
		for i := range t.notifications {
			n := &t.notifications[i]
			if _, ok := want[n.ID]; !ok || n.SentAt != nil {
				continue
			}
			at := at
			n.SentAt = &at
			n.Attempts++
		}
	})
	return nil
}

func (s *Store) MarkNotificationFailed(_ context.Context, id uuid.UUID, reason string) error {
	s.write(func(t *tables) {
		for i := range t.notifications {
			if t.notifications[i].ID == id {
				r := reason
				t.notifications[i].Attempts++
				t.notifications[i].LastError = &r
				return
			}
		}
	})
	return nil
}

func (s *Store) AbandonNotification(_ context.Context, id uuid.UUID, reason string) error {
	s.write(func(t *tables) {
		for i := range t.notifications {
			n := &t.notifications[i]
			if n.ID == id {
				r := reason
				n.Attempts = max(n.Attempts+1, MaxNotificationAttempts)
				n.LastError = &r
				return
			}
		}
	})
	return nil
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Spok95/mycsd-points/internal/ctxutil"
	"github.com/Spok95/mycsd-points/internal/models"
)

// MaxNotificationAttempts — после стольких неудач уведомление больше не отправляется.
const MaxNotificationAttempts = 5

// PendingNotifications — неотправленные уведомления пользователей с привязанным Telegram.
func (s *Store) PendingNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.user_id, n.kind, n.message, n.created_at, n.attempts, n.last_error, u.telegram_id
		FROM notifications n
		JOIN users u ON u.id = n.user_id
		WHERE n.sent_at IS NULL AND n.attempts < $1 AND u.telegram_id IS NOT NULL
		ORDER BY n.created_at
		LIMIT $2
	`, MaxNotificationAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.CreatedAt, &n.Attempts, &n.LastError, &n.TelegramID); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationsSent помечает пачку доставленных уведомлений одним запросом.
func (s *Store) MarkNotificationsSent(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET sent_at = $1, attempts = attempts + 1
		WHERE id = ANY($2::uuid[]) AND sent_at IS NULL
	`, at, pq.Array(strs))
	return err
}

func (s *Store) MarkNotificationFailed(ctx context.Context, id uuid.UUID, reason string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET attempts = attempts + 1, last_error = $2 WHERE id = $1
	`, id, reason)
	return err
}

func (s *Store) AbandonNotification(ctx context.Context, id uuid.UUID, reason string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET attempts = GREATEST(attempts + 1, $3), last_error = $2 WHERE id = $1
	`, id, reason, MaxNotificationAttempts)
	return err
}

// UserByTelegramID — пользователь по chat ID; nil, если не привязан.
func (s *Store) UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, telegram_id, matric_no FROM users WHERE telegram_id = $1
	`, telegramID).Scan(&u.ID, &u.Name, &u.Role, &u.TelegramID, &u.MatricNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

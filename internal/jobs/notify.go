package jobs

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/metrics"
	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/observability"
	"github.com/Spok95/mycsd-points/internal/tg"
)

const NotifyJobName = "notify_dispatch"

// Outbox — очередь уведомлений (db.Store или memstore.Store).
type Outbox interface {
	PendingNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	MarkNotificationsSent(ctx context.Context, ids []uuid.UUID, at time.Time) error
	MarkNotificationFailed(ctx context.Context, id uuid.UUID, reason string) error
	// AbandonNotification исчерпывает попытки сразу: повтор не поможет.
	AbandonNotification(ctx context.Context, id uuid.UUID, reason string) error
}

type NotificationDispatcher struct {
	outbox Outbox
	bot    tg.Sender
	log    *zap.Logger
	batch  int
	now    func() time.Time
}

func NewNotificationDispatcher(outbox Outbox, bot tg.Sender, log *zap.Logger, batch int) *NotificationDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if batch <= 0 {
		batch = 100
	}
	return &NotificationDispatcher{outbox: outbox, bot: bot, log: log, batch: batch, now: time.Now}
}

// Run — один проход: выбрать, отправить, пометить. Подходит как Job для Runner.
func (d *NotificationDispatcher) Run(ctx context.Context) error {
	// 1) Кандидаты
	notes, err := d.outbox.PendingNotifications(ctx, d.batch)
	if err != nil {
		observability.CaptureOp(NotifyJobName, err)
		return fmt.Errorf("load pending notifications: %w", err)
	}
	outboxPicked.Set(float64(len(notes)))
	if len(notes) == 0 {
		return nil
	}

	// 2) Отправка
	sent := make([]uuid.UUID, 0, len(notes))
	for _, n := range notes {
		if ctx.Err() != nil {
			break
		}
		if n.TelegramID == nil {
			continue
		}
		if _, err := tg.Send(d.bot, tgbotapi.NewMessage(*n.TelegramID, n.Message)); err != nil {
			permanent := tg.IsPermanent(err)
			d.log.Warn("notification delivery failed",
				zap.String("notification_id", n.ID.String()),
				zap.Int("attempts", n.Attempts+1),
				zap.Bool("permanent", permanent),
				zap.Error(err),
			)
			mark := d.outbox.MarkNotificationFailed
			reason := "deliver"
			if permanent {
				mark = d.outbox.AbandonNotification
				reason = "permanent"
			}
			metrics.NotificationFailures.WithLabelValues(reason).Inc()
			if err := mark(ctx, n.ID, err.Error()); err != nil {
				observability.CaptureOp(NotifyJobName, err)
			}
			continue
		}
		sent = append(sent, n.ID)
	}

	// 3) Пометка
	if len(sent) > 0 {
		if err := d.outbox.MarkNotificationsSent(ctx, sent, d.now().UTC()); err != nil {
			observability.CaptureOp(NotifyJobName, err)
			return fmt.Errorf("mark notifications sent: %w", err)
		}
		metrics.NotificationsDelivered.Add(float64(len(sent)))
	}
	d.log.Debug("notifications dispatched", zap.Int("sent", len(sent)), zap.Int("picked", len(notes)))
	return nil
}

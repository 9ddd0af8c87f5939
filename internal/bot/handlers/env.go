package handlers

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/metrics"
	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
	"github.com/Spok95/mycsd-points/internal/tg"
)

// Users — поиск пользователя по Telegram chat ID (db.Store или memstore.Store).
type Users interface {
	UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}

// Env — зависимости обработчиков бота.
type Env struct {
	Bot       tg.Sender
	Svc       *mycsd.Service
	Users     Users
	IsAdminID func(chatID int64) bool
	Log       *zap.Logger
}

var errNotRegistered = errors.New("chat is not linked to a user")

// actorFor — пользователь чата; ADMIN_IDS даёт роль админа независимо от БД.
func (e *Env) actorFor(ctx context.Context, chatID int64) (models.Actor, *models.User, error) {
	u, err := e.Users.UserByTelegramID(ctx, chatID)
	if err != nil {
		return models.Actor{}, nil, err
	}
	if u == nil {
		return models.Actor{}, nil, errNotRegistered
	}
	a := models.Actor{UserID: u.ID, Role: u.Role}
	if e.IsAdminID != nil && e.IsAdminID(chatID) {
		a.Role = models.Admin
	}
	return a, u, nil
}

func (e *Env) loc() *time.Location { return e.Svc.Location() }

func (e *Env) sendText(chatID int64, text string) {
	if _, err := tg.Send(e.Bot, tgbotapi.NewMessage(chatID, text)); err != nil {
		metrics.HandlerErrors.Inc()
		e.Log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// replyErr — понятный пользователю текст ошибки сервиса.
func (e *Env) replyErr(chatID int64, op string, err error) {
	if errors.Is(err, errNotRegistered) {
		e.sendText(chatID, "⚠️ Your Telegram account is not linked to a student or staff record. Use /start.")
		return
	}
	metrics.HandlerErrors.Inc()
	e.Log.Warn("handler error", zap.String("op", op), zap.Int64("chat_id", chatID), zap.Error(err))
	e.sendText(chatID, "❌ "+mycsd.UserMessage(err))
}

package ctxutil

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type key int

const (
	keyChatID key = iota
	keyCommand
)

// WithChatID — чат, из которого пришёл апдейт.
func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, keyChatID, chatID)
}

func ChatID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(keyChatID).(int64)
	return id, ok
}

// WithCommand — команда или тип апдейта ("/stats", "callback").
func WithCommand(ctx context.Context, cmd string) context.Context {
	return context.WithValue(ctx, keyCommand, cmd)
}

func Command(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyCommand).(string)
	return s, ok && s != ""
}

// LogFields — поля запроса для zap; пусто вне обработки апдейта (джобы, тесты).
func LogFields(ctx context.Context) []zap.Field {
	var fs []zap.Field
	if id, ok := ChatID(ctx); ok {
		fs = append(fs, zap.Int64("chat_id", id))
	}
	if c, ok := Command(ctx); ok {
		fs = append(fs, zap.String("command", c))
	}
	return fs
}

// DefaultDBTimeout — таймаут одного запроса к БД (DB_TIMEOUT).
var DefaultDBTimeout = 5 * time.Second

// SetDBTimeout вызывается один раз при старте, до запуска воркеров.
func SetDBTimeout(d time.Duration) {
	if d > 0 {
		DefaultDBTimeout = d
	}
}

// WithTimeout: d<=0 — без дедлайна.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// WithDBTimeout не продлевает дедлайн родителя.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	d := DefaultDBTimeout
	if dl, ok := parent.Deadline(); ok {
		if remain := time.Until(dl); remain < d {
			d = remain
		}
	}
	return context.WithTimeout(parent, d)
}

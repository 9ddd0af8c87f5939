package tg

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/mycsd-points/internal/observability"
)

// Sender — часть *tgbotapi.BotAPI, нужная для отправки; в тестах подменяется.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var _ Sender = (*tgbotapi.BotAPI)(nil)

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "429") || strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "timeout") {
		return true
	}
	return false
}

// IsPermanent — ошибки, при которых повтор бессмысленен (чат удалён, бот заблокирован).
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "chat not found") ||
		strings.Contains(s, "bot was blocked by the user") ||
		strings.Contains(s, "user is deactivated")
}

func Send(bot Sender, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := bot.Send(msg)
	if isSystemErr(err) {
		observability.CaptureOp("tg_send", err)
	}
	return m, err
}

func Request(bot Sender, req tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r, err := bot.Request(req)
	if isSystemErr(err) {
		observability.CaptureOp("tg_request", err)
	}
	return r, err
}

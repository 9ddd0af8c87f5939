package fsmutil

import (
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/mycsd-points/internal/metrics"
	"github.com/Spok95/mycsd-points/internal/tg"
)

// busy — чаты, в которых идёт тяжёлое действие (генерация Excel и т.п.).
var busy = struct {
	mu sync.Mutex
	m  map[int64]string
}{m: make(map[int64]string)}

// Acquire занимает чат под действие key. ok=false — чат уже занят (возвращается текущий ключ).
// release идемпотентен; вызывать через defer.
func Acquire(chatID int64, key string) (release func(), current string, ok bool) {
	busy.mu.Lock()
	defer busy.mu.Unlock()
	if cur, taken := busy.m[chatID]; taken {
		return func() {}, cur, false
	}
	busy.m[chatID] = key
	var once sync.Once
	return func() {
		once.Do(func() {
			busy.mu.Lock()
			delete(busy.m, chatID)
			busy.mu.Unlock()
		})
	}, key, true
}

// DisableMarkup "гасит" inline‑клавиатуру у сообщения (one‑shot клавиатура).
// Вызываем сразу после обработки callback'а, чтобы предотвратить повторные клики.
func DisableMarkup(bot tg.Sender, chatID int64, messageID int) {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: make([][]tgbotapi.InlineKeyboardButton, 0)}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty)
	if _, err := tg.Send(bot, edit); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

// IsCancelText — проверка "текстовой" отмены на шагах, где пользователь вводит текст.
// Поддерживаем: "cancel", "/cancel", "batal" (регистр/пробелы игнорим).
func IsCancelText(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "cancel" || s == "/cancel" || s == "batal"
}

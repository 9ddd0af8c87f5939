package menu

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/mycsd-points/internal/models"
)

// Тексты кнопок; диспетчер сопоставляет их с командами.
const (
	BtnMyPoints       = "📊 My points"
	BtnMyPointsExport = "📥 My points (Excel)"
	BtnPendingClaims  = "📥 Pending claims"
	BtnStats          = "📈 Statistics"
	BtnLedgerReport   = "📄 Ledger report"
	BtnSubmitClaim    = "📝 Submit claim"
	BtnCorrectEvent   = "✏️ Correct event level"
)

var buttons = map[string]struct{}{
	BtnMyPoints:       {},
	BtnMyPointsExport: {},
	BtnPendingClaims:  {},
	BtnStats:          {},
	BtnLedgerReport:   {},
	BtnSubmitClaim:    {},
	BtnCorrectEvent:   {},
}

// IsButton — текст совпадает с кнопкой какого-либо меню.
func IsButton(text string) bool {
	_, ok := buttons[strings.TrimSpace(text)]
	return ok
}

// GetRoleMenu возвращает меню в зависимости от роли пользователя
func GetRoleMenu(role models.Role) tgbotapi.ReplyKeyboardMarkup {
	switch role {
	case models.Student:
		return studentMenu()
	case models.Organizer:
		return organizerMenu()
	case models.Admin:
		return adminMenu()
	default:
		return tgbotapi.NewReplyKeyboard() // пустое меню
	}
}

func studentMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnMyPoints),
			tgbotapi.NewKeyboardButton(BtnMyPointsExport),
		),
	)
}

func organizerMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSubmitClaim),
			tgbotapi.NewKeyboardButton(BtnMyPoints),
		),
	)
}

func adminMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnPendingClaims),
			tgbotapi.NewKeyboardButton(BtnStats),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnLedgerReport),
			tgbotapi.NewKeyboardButton(BtnCorrectEvent),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSubmitClaim),
		),
	)
}

package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/mycsd-points/internal/bot/menu"
	"github.com/Spok95/mycsd-points/internal/tg"
)

func HandleStart(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	actor, u, err := env.actorFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, "start", err)
		return
	}
	out := tgbotapi.NewMessage(chatID, "Welcome, "+u.Name+"! Choose an action:")
	out.ReplyMarkup = menu.GetRoleMenu(actor.Role)
	if _, err := tg.Send(env.Bot, out); err != nil {
		env.replyErr(chatID, "start", err)
	}
}

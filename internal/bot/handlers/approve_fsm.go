package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/bot/shared/fsmutil"
	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
	"github.com/Spok95/mycsd-points/internal/tg"
)

const (
	cbApprove = "claim_approve_"
	cbReject  = "claim_reject_"

	pendingPageSize = 20
)

func IsClaimCallback(data string) bool {
	return strings.HasPrefix(data, cbApprove) || strings.HasPrefix(data, cbReject)
}

func claimCard(c models.PendingClaim, env *Env) string {
	cat := string(c.ProposedCategory)
	if cat == "" {
		cat = "—"
	}
	return fmt.Sprintf("📝 Claim for %q\n🏷 Level: %s (preview %d pts)\n📚 Category: %s\n📎 Document: %s\n🕒 Submitted: %s",
		c.EventTitle, mycsd.EffectiveLevel(c.EventLevel), c.PreviewPoints, cat, c.DocumentRef,
		c.CreatedAt.In(env.loc()).Format("2006-01-02 15:04"))
}

// ShowPendingClaims — очередь заявок администратору, по карточке с кнопками.
func ShowPendingClaims(ctx context.Context, env *Env, chatID int64) {
	actor, _, err := env.actorFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, "pending_claims", err)
		return
	}
	claims, err := env.Svc.PendingClaims(ctx, actor, pendingPageSize)
	if err != nil {
		env.replyErr(chatID, "pending_claims", err)
		return
	}
	if len(claims) == 0 {
		env.sendText(chatID, "No claims waiting for review.")
		return
	}
	for _, c := range claims {
		msg := tgbotapi.NewMessage(chatID, claimCard(c, env))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", cbApprove+c.ID.String()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", cbReject+c.ID.String()),
		))
		if _, err := tg.Send(env.Bot, msg); err != nil {
			env.Log.Warn("send claim card", zap.String("claim_id", c.ID.String()), zap.Error(err))
		}
	}
}

// HandleClaimCallback обрабатывает кнопки карточки заявки.
// Одобрение выполняется сразу; отклонение ждёт причину текстом.
func HandleClaimCallback(ctx context.Context, env *Env, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	data := cb.Data

	var (
		action string
		idStr  string
	)
	switch {
	case strings.HasPrefix(data, cbApprove):
		action, idStr = "approve", strings.TrimPrefix(data, cbApprove)
	case strings.HasPrefix(data, cbReject):
		action, idStr = "reject", strings.TrimPrefix(data, cbReject)
	default:
		return
	}
	claimID, err := uuid.Parse(idStr)
	if err != nil {
		_, _ = tg.Request(env.Bot, tgbotapi.NewCallback(cb.ID, "Invalid claim"))
		return
	}
	actor, _, err := env.actorFor(ctx, chatID)
	if err != nil {
		_, _ = tg.Request(env.Bot, tgbotapi.NewCallback(cb.ID, ""))
		env.replyErr(chatID, "claim_callback", err)
		return
	}

	if action == "reject" {
		if !actor.IsAdmin() {
			_, _ = tg.Request(env.Bot, tgbotapi.NewCallback(cb.ID, "Admins only"))
			return
		}
		startReject(chatID, claimID, messageID, cb.Message.Text)
		_, _ = tg.Request(env.Bot, tgbotapi.NewCallback(cb.ID, ""))
		prompt := tgbotapi.NewMessage(chatID, "Enter the rejection reason (or \"cancel\"):")
		prompt.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbRejectCancel),
		))
		_, _ = tg.Send(env.Bot, prompt)
		return
	}

	res, err := env.Svc.Approve(ctx, actor, claimID)
	if err != nil {
		_, _ = tg.Request(env.Bot, tgbotapi.NewCallback(cb.ID, "Not approved"))
		env.replyErr(chatID, "approve_claim", err)
		return
	}
	fsmutil.DisableMarkup(env.Bot, chatID, messageID)
	text := cb.Message.Text + fmt.Sprintf("\n\n✅ Approved: %d pts to %d students", res.Ledger.Score, res.Distributed)
	if res.Skipped > 0 {
		text += fmt.Sprintf(" (%d without matric no skipped)", res.Skipped)
	}
	if res.NotifyFailed {
		text += "\n⚠️ Student notifications could not be queued."
	}
	_, _ = tg.Send(env.Bot, tgbotapi.NewEditMessageText(chatID, messageID, text))
	_, _ = tg.Request(env.Bot, tgbotapi.NewCallback(cb.ID, "Approved"))
}

package handlers

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/bot/shared/fsmutil"
	"github.com/Spok95/mycsd-points/internal/mycsd"
	"github.com/Spok95/mycsd-points/internal/tg"
)

const cbRejectCancel = "reject_reason_cancel"

func IsRejectCancel(data string) bool { return data == cbRejectCancel }

// RejectState — админ нажал «Отклонить» и должен ввести причину.
type RejectState struct {
	ClaimID   uuid.UUID
	MessageID int
	CardText  string
}

var rejectStates = struct {
	mu sync.Mutex
	m  map[int64]*RejectState
}{m: make(map[int64]*RejectState)}

func startReject(chatID int64, claimID uuid.UUID, messageID int, card string) {
	rejectStates.mu.Lock()
	defer rejectStates.mu.Unlock()
	rejectStates.m[chatID] = &RejectState{ClaimID: claimID, MessageID: messageID, CardText: card}
}

func GetRejectState(chatID int64) *RejectState {
	rejectStates.mu.Lock()
	defer rejectStates.mu.Unlock()
	return rejectStates.m[chatID]
}

func clearRejectState(chatID int64) {
	rejectStates.mu.Lock()
	defer rejectStates.mu.Unlock()
	delete(rejectStates.m, chatID)
}

// HandleRejectReasonText — шаг ввода причины. Пустая причина не принимается, состояние сохраняется.
func HandleRejectReasonText(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st := GetRejectState(chatID)
	if st == nil {
		return
	}
	if fsmutil.IsCancelText(msg.Text) {
		CancelReject(env, chatID)
		return
	}
	actor, _, err := env.actorFor(ctx, chatID)
	if err != nil {
		clearRejectState(chatID)
		env.replyErr(chatID, "reject_claim", err)
		return
	}
	c, err := env.Svc.Reject(ctx, actor, st.ClaimID, msg.Text)
	if err != nil {
		env.replyErr(chatID, "reject_claim", err)
		// на пустую причину просим ввести ещё раз
		if mycsd.KindOf(err) != mycsd.Validation {
			clearRejectState(chatID)
		}
		return
	}
	clearRejectState(chatID)
	fsmutil.DisableMarkup(env.Bot, chatID, st.MessageID)
	_, _ = tg.Send(env.Bot, tgbotapi.NewEditMessageText(chatID, st.MessageID,
		st.CardText+"\n\n❌ Rejected: "+*c.RejectionReason))
	env.sendText(chatID, "Claim rejected.")
}

func HandleRejectCancel(env *Env, cb *tgbotapi.CallbackQuery) {
	fsmutil.DisableMarkup(env.Bot, cb.Message.Chat.ID, cb.Message.MessageID)
	_, _ = tg.Request(env.Bot, tgbotapi.NewCallback(cb.ID, "Cancelled"))
	CancelReject(env, cb.Message.Chat.ID)
}

// CancelReject закрывает ввод причины; заявка остаётся на рассмотрении.
func CancelReject(env *Env, chatID int64) {
	if GetRejectState(chatID) == nil {
		return
	}
	clearRejectState(chatID)
	env.sendText(chatID, "Rejection cancelled, the claim stays pending.")
}

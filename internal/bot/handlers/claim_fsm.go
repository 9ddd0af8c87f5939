package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/bot/shared/fsmutil"
	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
	"github.com/Spok95/mycsd-points/internal/tg"
)

const (
	cbClaimFSM      = "claimfsm_"
	cbClaimEvent    = cbClaimFSM + "ev_"
	cbClaimLevel    = cbClaimFSM + "lvl_"
	cbClaimCategory = cbClaimFSM + "cat_"
	cbClaimConfirm  = cbClaimFSM + "ok"
	cbClaimCancel   = cbClaimFSM + "cancel"

	choiceKeep = "keep"

	eventPageSize = 15
)

func IsClaimFSMCallback(data string) bool { return strings.HasPrefix(data, cbClaimFSM) }

type claimMode int

const (
	// заявка организатора на баллы
	modeSubmit claimMode = iota
	// правка уровня/категории события админом до одобрения
	modeCorrect
)

const (
	stepEvent = iota + 1
	stepLevel
	stepCategory
	stepDocument
	stepConfirm
)

// ClaimState — пошаговый ввод заявки (или правки события) в одном чате.
type ClaimState struct {
	Mode      claimMode
	Step      int
	MessageID int

	Events   map[uuid.UUID]models.Event
	Event    models.Event
	Level    string // "" — оставить уровень события
	Category string // "" — оставить категорию события
	Document string
}

var claimStates = struct {
	mu sync.Mutex
	m  map[int64]*ClaimState
}{m: make(map[int64]*ClaimState)}

func GetClaimState(chatID int64) *ClaimState {
	claimStates.mu.Lock()
	defer claimStates.mu.Unlock()
	return claimStates.m[chatID]
}

func setClaimState(chatID int64, st *ClaimState) {
	claimStates.mu.Lock()
	defer claimStates.mu.Unlock()
	claimStates.m[chatID] = st
}

func clearClaimState(chatID int64) {
	claimStates.mu.Lock()
	defer claimStates.mu.Unlock()
	delete(claimStates.m, chatID)
}

// ==== keyboards ====

func claimCancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbClaimCancel))
}

func eventRows(events []models.Event) [][]tgbotapi.InlineKeyboardButton {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(events)+1)
	for _, e := range events {
		label := fmt.Sprintf("%s (%s)", e.Title, mycsd.EffectiveLevel(e.Level))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbClaimEvent+e.ID.String()),
		))
	}
	return append(rows, claimCancelRow())
}

func levelRows(current string) [][]tgbotapi.InlineKeyboardButton {
	cur := mycsd.EffectiveLevel(current)
	rows := [][]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Keep: %s (%d pts)", cur, mycsd.PreviewPoints(cur)), cbClaimLevel+choiceKeep),
	)}
	for i, l := range models.Levels {
		label := fmt.Sprintf("%s (%d pts)", l, mycsd.PreviewPoints(string(l)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbClaimLevel+strconv.Itoa(i)),
		))
	}
	return append(rows, claimCancelRow())
}

func categoryRows(current *models.Category) [][]tgbotapi.InlineKeyboardButton {
	rows := [][]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Keep: "+string(mycsd.EffectiveCategory(current)), cbClaimCategory+choiceKeep),
	)}
	for i, c := range models.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(string(c), cbClaimCategory+strconv.Itoa(i)),
		))
	}
	return append(rows, claimCancelRow())
}

func editMenu(env *Env, chatID int64, messageID int, text string, rows [][]tgbotapi.InlineKeyboardButton) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
	if _, err := tg.Send(env.Bot, edit); err != nil {
		env.Log.Warn("edit menu", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// итоговые уровень и категория с учётом «оставить как есть»
func (st *ClaimState) effective() (string, models.Category) {
	level := st.Level
	if level == "" {
		level = mycsd.EffectiveLevel(st.Event.Level)
	}
	category := mycsd.EffectiveCategory(st.Event.MyCSDCategory)
	if st.Category != "" {
		category = models.Category(st.Category)
	}
	return level, category
}

func (st *ClaimState) summary() string {
	level, category := st.effective()
	var b strings.Builder
	if st.Mode == modeCorrect {
		fmt.Fprintf(&b, "✏️ Update %q\n", st.Event.Title)
	} else {
		fmt.Fprintf(&b, "📝 Claim for %q\n", st.Event.Title)
	}
	fmt.Fprintf(&b, "🏷 Level: %s (%d pts)\n📚 Category: %s", level, mycsd.PreviewPoints(level), category)
	if st.Mode == modeSubmit {
		fmt.Fprintf(&b, "\n📎 Document: %s", st.Document)
	}
	return b.String()
}

// ==== start ====

// StartClaimFSM — организатор выбирает событие и подаёт заявку на баллы MyCSD.
func StartClaimFSM(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	startClaimFlow(ctx, env, msg.Chat.ID, modeSubmit)
}

// StartEventCorrectionFSM — админ правит уровень и категорию события до одобрения.
func StartEventCorrectionFSM(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	startClaimFlow(ctx, env, msg.Chat.ID, modeCorrect)
}

func startClaimFlow(ctx context.Context, env *Env, chatID int64, mode claimMode) {
	op := "claim_fsm"
	if mode == modeCorrect {
		op = "correct_event"
	}
	if old := GetClaimState(chatID); old != nil {
		clearClaimState(chatID)
		fsmutil.DisableMarkup(env.Bot, chatID, old.MessageID)
	}
	actor, _, err := env.actorFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, op, err)
		return
	}
	if mode == modeCorrect && !actor.IsAdmin() {
		env.replyErr(chatID, op, mycsd.E(mycsd.Forbidden, op, "admin role required"))
		return
	}
	events, err := env.Svc.ClaimableEvents(ctx, actor, eventPageSize)
	if err != nil {
		env.replyErr(chatID, op, err)
		return
	}
	if len(events) == 0 {
		env.sendText(chatID, "No events are waiting for MyCSD points.")
		return
	}

	st := &ClaimState{Mode: mode, Step: stepEvent, Events: make(map[uuid.UUID]models.Event, len(events))}
	for _, e := range events {
		st.Events[e.ID] = e
	}
	out := tgbotapi.NewMessage(chatID, "Choose the event:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(eventRows(events)...)
	sent, err := tg.Send(env.Bot, out)
	if err != nil {
		env.replyErr(chatID, op, err)
		return
	}
	st.MessageID = sent.MessageID
	setClaimState(chatID, st)
}

// ==== callbacks ====

func HandleClaimFSMCallback(ctx context.Context, env *Env, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	data := cb.Data
	_, _ = tg.Request(env.Bot, tgbotapi.NewCallback(cb.ID, ""))

	st := GetClaimState(chatID)
	if st == nil {
		fsmutil.DisableMarkup(env.Bot, chatID, messageID)
		env.sendText(chatID, "This form has expired. Start again from the menu.")
		return
	}
	st.MessageID = messageID

	switch {
	case data == cbClaimCancel:
		clearClaimState(chatID)
		fsmutil.DisableMarkup(env.Bot, chatID, messageID)
		_, _ = tg.Send(env.Bot, tgbotapi.NewEditMessageText(chatID, messageID, "🚫 Cancelled."))

	case strings.HasPrefix(data, cbClaimEvent) && st.Step == stepEvent:
		id, err := uuid.Parse(strings.TrimPrefix(data, cbClaimEvent))
		ev, ok := st.Events[id]
		if err != nil || !ok {
			env.sendText(chatID, "⚠️ Unknown event, choose one from the list.")
			return
		}
		st.Event = ev
		st.Step = stepLevel
		editMenu(env, chatID, messageID, fmt.Sprintf("%q\nChoose the participation level:", ev.Title), levelRows(ev.Level))

	case strings.HasPrefix(data, cbClaimLevel) && st.Step == stepLevel:
		choice := strings.TrimPrefix(data, cbClaimLevel)
		if choice == choiceKeep {
			st.Level = ""
		} else {
			i, err := strconv.Atoi(choice)
			if err != nil || i < 0 || i >= len(models.Levels) {
				return
			}
			st.Level = string(models.Levels[i])
		}
		st.Step = stepCategory
		editMenu(env, chatID, messageID, fmt.Sprintf("%q\nChoose the MyCSD category:", st.Event.Title), categoryRows(st.Event.MyCSDCategory))

	case strings.HasPrefix(data, cbClaimCategory) && st.Step == stepCategory:
		choice := strings.TrimPrefix(data, cbClaimCategory)
		if choice == choiceKeep {
			st.Category = ""
		} else {
			i, err := strconv.Atoi(choice)
			if err != nil || i < 0 || i >= len(models.Categories) {
				return
			}
			st.Category = string(models.Categories[i])
		}
		if st.Mode == modeCorrect {
			st.Step = stepConfirm
			editMenu(env, chatID, messageID, st.summary(), confirmRows())
			return
		}
		st.Step = stepDocument
		fsmutil.DisableMarkup(env.Bot, chatID, messageID)
		env.sendText(chatID, "Send the supporting document reference (link or file name), or \"cancel\":")

	case data == cbClaimConfirm && st.Step == stepConfirm:
		clearClaimState(chatID)
		fsmutil.DisableMarkup(env.Bot, chatID, messageID)
		finishClaimFlow(ctx, env, chatID, messageID, st)

	default:
		env.Log.Debug("stale claim callback", zap.Int64("chat_id", chatID), zap.String("data", data), zap.Int("step", st.Step))
	}
}

func confirmRows() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", cbClaimConfirm),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbClaimCancel),
		),
	}
}

// HandleClaimText — ввод текста, пока открыта форма. Документ принимается только на своём шаге.
func HandleClaimText(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st := GetClaimState(chatID)
	if st == nil {
		return
	}
	if fsmutil.IsCancelText(msg.Text) {
		CancelClaimFlow(env, chatID)
		return
	}
	if st.Step != stepDocument {
		env.sendText(chatID, "Use the buttons above, or type \"cancel\".")
		return
	}
	doc := strings.TrimSpace(msg.Text)
	if doc == "" {
		env.sendText(chatID, "The document reference cannot be empty. Send it again, or \"cancel\":")
		return
	}
	st.Document = doc
	st.Step = stepConfirm
	out := tgbotapi.NewMessage(chatID, st.summary())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(confirmRows()...)
	sent, err := tg.Send(env.Bot, out)
	if err != nil {
		clearClaimState(chatID)
		env.replyErr(chatID, "claim_fsm", err)
		return
	}
	st.MessageID = sent.MessageID
}

// CancelClaimFlow закрывает форму, если она открыта.
func CancelClaimFlow(env *Env, chatID int64) {
	st := GetClaimState(chatID)
	if st == nil {
		return
	}
	clearClaimState(chatID)
	fsmutil.DisableMarkup(env.Bot, chatID, st.MessageID)
	if st.Mode == modeCorrect {
		env.sendText(chatID, "🚫 Event update cancelled.")
		return
	}
	env.sendText(chatID, "🚫 Claim cancelled.")
}

func finishClaimFlow(ctx context.Context, env *Env, chatID int64, messageID int, st *ClaimState) {
	actor, _, err := env.actorFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, "claim_fsm", err)
		return
	}

	if st.Mode == modeCorrect {
		level, category := st.effective()
		if st.Level == "" {
			// сохраняем исходную подпись уровня, а не её нормализацию
			level = st.Event.Level
		}
		ev, err := env.Svc.UpdateEventMyCSD(ctx, actor, mycsd.UpdateEventInput{
			EventID:  st.Event.ID,
			Level:    level,
			Category: string(category),
			HasMyCSD: true,
		})
		if err != nil {
			env.replyErr(chatID, "correct_event", err)
			return
		}
		_, _ = tg.Send(env.Bot, tgbotapi.NewEditMessageText(chatID, messageID,
			st.summary()+fmt.Sprintf("\n\n✅ Event updated: %d pts on approval", ev.MyCSDPoints)))
		return
	}

	c, err := env.Svc.SubmitClaim(ctx, actor, mycsd.SubmitClaimInput{
		EventID:          st.Event.ID,
		DocumentRef:      st.Document,
		ProposedLevel:    st.Level,
		ProposedCategory: st.Category,
	})
	if err != nil {
		env.replyErr(chatID, "submit_claim", err)
		return
	}
	_, _ = tg.Send(env.Bot, tgbotapi.NewEditMessageText(chatID, messageID,
		st.summary()+fmt.Sprintf("\n\n✅ Claim submitted (%d pts preview), waiting for admin review.", mycsd.PreviewPoints(c.ProposedLevel))))
}

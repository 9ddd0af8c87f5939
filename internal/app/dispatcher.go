package app

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/bot/handlers"
	"github.com/Spok95/mycsd-points/internal/bot/menu"
	"github.com/Spok95/mycsd-points/internal/bot/shared/fsmutil"
	"github.com/Spok95/mycsd-points/internal/ctxutil"
	"github.com/Spok95/mycsd-points/internal/metrics"
	"github.com/Spok95/mycsd-points/internal/observability"
	"github.com/Spok95/mycsd-points/internal/tg"
)

// Dispatcher маршрутизирует апдейты Telegram по обработчикам.
type Dispatcher struct {
	env     *handlers.Env
	limiter *ChatLimiter
}

func NewDispatcher(env *handlers.Env) *Dispatcher {
	return &Dispatcher{env: env, limiter: NewChatLimiter()}
}

// command отрезает @botname и аргументы: "/ledger_report@x 2026-09" -> "/ledger_report".
func command(text string) string {
	f := strings.Fields(text)
	if len(f) == 0 {
		return ""
	}
	c := f[0]
	if i := strings.IndexByte(c, '@'); i > 0 && strings.HasPrefix(c, "/") {
		c = c[:i]
	}
	return c
}

// interrupts — команда или кнопка меню вместо ожидаемого текста. Текстовая отмена
// (в т.ч. /cancel) остаётся за самой формой.
func interrupts(cmd, text string) bool {
	if fsmutil.IsCancelText(text) {
		return false
	}
	return strings.HasPrefix(cmd, "/") || menu.IsButton(text)
}

func (d *Dispatcher) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd := command(msg.Text)
	if !strings.HasPrefix(cmd, "/") {
		cmd = "text"
	}
	ctx = ctxutil.WithCommand(ctxutil.WithChatID(ctx, chatID), cmd)
	unlock := d.limiter.lock(chatID)
	defer unlock()

	// Открытый ввод текста забирает обычный текст. Команда или кнопка меню
	// закрывают его и обрабатываются как обычно.
	if handlers.GetRejectState(chatID) != nil {
		if !interrupts(cmd, msg.Text) {
			handlers.HandleRejectReasonText(ctx, d.env, msg)
			return
		}
		handlers.CancelReject(d.env, chatID)
	}
	if handlers.GetClaimState(chatID) != nil {
		if !interrupts(cmd, msg.Text) {
			handlers.HandleClaimText(ctx, d.env, msg)
			return
		}
		handlers.CancelClaimFlow(d.env, chatID)
	}

	switch cmd {
	case "/start":
		handlers.HandleStart(ctx, d.env, msg)
	case "/mypoints":
		handlers.HandleMyPoints(ctx, d.env, msg)
	case "/mypoints_xlsx":
		handlers.HandleMyPointsExport(ctx, d.env, msg)
	case "/pending", "/approvals":
		handlers.ShowPendingClaims(ctx, d.env, chatID)
	case "/stats":
		handlers.HandleStats(ctx, d.env, msg)
	case "/ledger_report":
		handlers.HandleLedgerReport(ctx, d.env, msg)
	case "/claim":
		handlers.StartClaimFSM(ctx, d.env, msg)
	case "/correct_event":
		handlers.StartEventCorrectionFSM(ctx, d.env, msg)
	default:
		d.handleButton(ctx, msg)
	}
}

// кнопки меню содержат пробелы и эмодзи, сравниваем весь текст
func (d *Dispatcher) handleButton(ctx context.Context, msg *tgbotapi.Message) {
	switch strings.TrimSpace(msg.Text) {
	case menu.BtnMyPoints:
		handlers.HandleMyPoints(ctx, d.env, msg)
	case menu.BtnMyPointsExport:
		handlers.HandleMyPointsExport(ctx, d.env, msg)
	case menu.BtnPendingClaims:
		handlers.ShowPendingClaims(ctx, d.env, msg.Chat.ID)
	case menu.BtnStats:
		handlers.HandleStats(ctx, d.env, msg)
	case menu.BtnLedgerReport:
		handlers.HandleLedgerReport(ctx, d.env, msg)
	case menu.BtnSubmitClaim:
		handlers.StartClaimFSM(ctx, d.env, msg)
	case menu.BtnCorrectEvent:
		handlers.StartEventCorrectionFSM(ctx, d.env, msg)
	default:
		d.env.Log.Debug("unknown command", zap.Int64("chat_id", msg.Chat.ID), zap.String("text", msg.Text))
		if _, err := tg.Send(d.env.Bot, tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Unknown command. Use /start")); err != nil {
			d.env.Log.Warn("send failed", zap.Error(err))
		}
	}
}

func (d *Dispatcher) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	ctx = ctxutil.WithCommand(ctxutil.WithChatID(ctx, chatID), "callback")
	unlock := d.limiter.lock(chatID)
	defer unlock()

	d.env.Log.Debug("callback", zap.Int64("chat_id", chatID), zap.String("data", cb.Data), zap.Int("msg_id", cb.Message.MessageID))

	switch {
	case handlers.IsRejectCancel(cb.Data):
		handlers.HandleRejectCancel(d.env, cb)
	case handlers.IsClaimCallback(cb.Data):
		handlers.HandleClaimCallback(ctx, d.env, cb)
	case handlers.IsClaimFSMCallback(cb.Data):
		handlers.HandleClaimFSMCallback(ctx, d.env, cb)
	default:
		_, _ = tg.Request(d.env.Bot, tgbotapi.NewCallback(cb.ID, ""))
		if _, err := tg.Send(d.env.Bot, tgbotapi.NewMessage(chatID, "⚠️ Unknown command. Use /start")); err != nil {
			d.env.Log.Warn("send failed", zap.Error(err))
		}
	}
}

// Dispatch — один апдейт; паника обработчика не роняет цикл.
func (d *Dispatcher) Dispatch(ctx context.Context, upd tgbotapi.Update) {
	metrics.BotUpdates.Inc()
	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerErrors.Inc()
			d.env.Log.Error("handler panic", zap.Any("panic", r), zap.Int("update_id", upd.UpdateID))
			observability.CaptureOp("dispatch", fmt.Errorf("panic in handler: %v", r))
		}
	}()
	switch {
	case upd.CallbackQuery != nil:
		d.HandleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		d.HandleMessage(ctx, upd.Message)
	}
}

// Run читает long-polling апдейты до отмены ctx. Каждый апдейт в своей горутине,
// порядок внутри чата держит ChatLimiter.
func (d *Dispatcher) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			go d.Dispatch(ctx, upd)
		}
	}
}

package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/mycsd-points/internal/bot/shared/fsmutil"
	"github.com/Spok95/mycsd-points/internal/export"
)

// parseReportMonth: "" — текущий месяц, иначе YYYY-MM.
func parseReportMonth(arg string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	arg = strings.TrimSpace(arg)
	var start time.Time
	if arg == "" {
		n := now.In(loc)
		start = time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		m, err := time.ParseInLocation("2006-01", arg, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("month must look like 2026-10")
		}
		start = m
	}
	return start, start.AddDate(0, 1, 0), nil
}

// HandleLedgerReport — /ledger_report [YYYY-MM]: Excel-реестр одобренных заявок за месяц.
func HandleLedgerReport(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	release, _, ok := fsmutil.Acquire(chatID, "ledger_report")
	if !ok {
		env.sendText(chatID, "⏳ Report is already being generated.")
		return
	}
	defer release()

	actor, _, err := env.actorFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, "ledger_report", err)
		return
	}
	from, to, err := parseReportMonth(msg.CommandArguments(), time.Now(), env.loc())
	if err != nil {
		env.sendText(chatID, "⚠️ "+err.Error())
		return
	}
	rows, err := env.Svc.LedgerReport(ctx, actor, from, to)
	if err != nil {
		env.replyErr(chatID, "ledger_report", err)
		return
	}
	if len(rows) == 0 {
		env.sendText(chatID, "No approved claims in "+from.Format("January 2006")+".")
		return
	}
	wb, err := export.LedgerReport(rows, env.loc())
	if err != nil {
		env.replyErr(chatID, "ledger_report", err)
		return
	}
	sendWorkbook(env, chatID, export.BuildLedgerReportFilename(from, to), wb)
}

package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/mycsd-points/internal/bot/shared/fsmutil"
	"github.com/Spok95/mycsd-points/internal/export"
	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/tg"
)

const historyLimit = 10

func formatSummary(sum models.Summary, hist []models.StudentEntry, env *Env) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 MyCSD points for %s: %d\n", sum.MatricNo, sum.TotalPoints)
	fmt.Fprintf(&b, "Events: %d, this month: %d pts from %d events\n\n", sum.TotalEvents, sum.PointsThisMonth, sum.EventsThisMonth)
	b.WriteString("By category:\n")
	for _, c := range models.Categories {
		fmt.Fprintf(&b, "▫️ %s: %d\n", c, sum.PointsByCategory[c])
	}
	b.WriteString("\nBy level:\n")
	for _, l := range models.Levels {
		fmt.Fprintf(&b, "▫️ %s: %d\n", l, sum.PointsByLevel[l])
	}
	if len(hist) > 0 {
		b.WriteString("\nLatest:\n")
		for i, e := range hist {
			if i == historyLimit {
				break
			}
			fmt.Fprintf(&b, "• %s — %s, +%d\n", e.AwardedAt.In(env.loc()).Format("2006-01-02"), e.EventTitle, e.Score)
		}
	}
	return b.String()
}

// HandleMyPoints — сводка баллов студента текущего чата.
func HandleMyPoints(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	_, u, err := env.actorFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, "my_points", err)
		return
	}
	if u.MatricNo == nil || *u.MatricNo == "" {
		env.sendText(chatID, "No matric number is linked to your account.")
		return
	}
	sum, err := env.Svc.Summarize(ctx, *u.MatricNo)
	if err != nil {
		env.replyErr(chatID, "my_points", err)
		return
	}
	hist, err := env.Svc.StudentHistory(ctx, *u.MatricNo)
	if err != nil {
		env.replyErr(chatID, "my_points", err)
		return
	}
	env.sendText(chatID, formatSummary(sum, hist, env))
}

// HandleMyPointsExport — то же в Excel.
func HandleMyPointsExport(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	release, _, ok := fsmutil.Acquire(chatID, "my_points_xlsx")
	if !ok {
		env.sendText(chatID, "⏳ Export is already running.")
		return
	}
	defer release()

	_, u, err := env.actorFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, "my_points_xlsx", err)
		return
	}
	if u.MatricNo == nil || *u.MatricNo == "" {
		env.sendText(chatID, "No matric number is linked to your account.")
		return
	}
	sum, err := env.Svc.Summarize(ctx, *u.MatricNo)
	if err != nil {
		env.replyErr(chatID, "my_points_xlsx", err)
		return
	}
	hist, err := env.Svc.StudentHistory(ctx, *u.MatricNo)
	if err != nil {
		env.replyErr(chatID, "my_points_xlsx", err)
		return
	}
	wb, err := export.StudentSummary(sum, hist, env.loc())
	if err != nil {
		env.replyErr(chatID, "my_points_xlsx", err)
		return
	}
	sendWorkbook(env, chatID, export.BuildStudentSummaryFilename(sum.MatricNo), wb)
}

func sendWorkbook(env *Env, chatID int64, name string, wb *export.Workbook) {
	data, err := wb.Bytes()
	if err != nil {
		env.replyErr(chatID, "export", err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := tg.Send(env.Bot, doc); err != nil {
		env.replyErr(chatID, "export", err)
	}
}

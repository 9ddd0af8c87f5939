package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/mycsd-points/internal/models"
)

func formatStats(st models.AdminStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 Claims: %d pending, %d approved, %d rejected\n",
		st.ClaimsByStatus[models.ClaimPending], st.ClaimsByStatus[models.ClaimApproved], st.ClaimsByStatus[models.ClaimRejected])
	fmt.Fprintf(&b, "Points issued: %d in %d entries\n", st.TotalPoints, st.TotalDistributions)
	fmt.Fprintf(&b, "This month: %d, last month: %d (%+d)\n\n", st.PointsThisMonth, st.PointsLastMonth, st.MonthDelta)
	for _, c := range models.Categories {
		fmt.Fprintf(&b, "▫️ %s: %d\n", c, st.PointsByCategory[c])
	}
	b.WriteString("\n")
	for _, l := range models.Levels {
		fmt.Fprintf(&b, "▫️ %s: %d\n", l, st.PointsByLevel[l])
	}
	return b.String()
}

// HandleStats — панель администратора.
func HandleStats(ctx context.Context, env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	actor, _, err := env.actorFor(ctx, chatID)
	if err != nil {
		env.replyErr(chatID, "admin_stats", err)
		return
	}
	st, err := env.Svc.AdminStats(ctx, actor)
	if err != nil {
		env.replyErr(chatID, "admin_stats", err)
		return
	}
	env.sendText(chatID, formatStats(st))
}

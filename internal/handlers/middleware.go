package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/ad/go-telegram-wow/internal/observability"
)

// LogUpdates tags each update with an id and logs where it came from.
func LogUpdates(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
			reqLog := log.With("request_id", uuid.NewString(), "update_id", update.ID)
			ctx = observability.WithLogger(ctx, reqLog)

			if update.Message != nil && update.Message.From != nil {
				reqLog.InfoContext(ctx, "message",
					"from", formatUser(*update.Message.From),
					"chat_id", update.Message.Chat.ID,
					"text", update.Message.Text,
				)
			}
			if update.CallbackQuery != nil {
				reqLog.InfoContext(ctx, "callback",
					"from", formatUser(update.CallbackQuery.From),
					"data", update.CallbackQuery.Data,
				)
			}
			next(ctx, b, update)
		}
	}
}

func formatUser(u tgmodels.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " @" + u.Username
	}
	return fmt.Sprintf("%s [%d]", name, u.ID)
}

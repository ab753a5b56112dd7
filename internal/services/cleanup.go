package services

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"

	"github.com/ad/go-telegram-wow/internal/observability"
)

// deleteQuietly removes a stale message. Telegram refusing the delete
// (already gone, too old, no rights) is expected and dropped. Other transport
// errors are logged and dropped too. Only the caller's context being done
// stops the operation.
func (m *MessageManager) deleteQuietly(ctx context.Context, chatID int64, messageID int) error {
	if messageID == 0 {
		return nil
	}

	_, err := m.transport.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	log := observability.LoggerFromContext(ctx, m.log)
	if isStaleMessageError(err) {
		log.DebugContext(ctx, "stale message not deleted", "chat_id", chatID, "message_id", messageID, "error", err)
		return nil
	}
	log.WarnContext(ctx, "delete message failed", "chat_id", chatID, "message_id", messageID, "error", err)
	return nil
}

func isStaleMessageError(err error) bool {
	return errors.Is(err, bot.ErrorBadRequest) ||
		errors.Is(err, bot.ErrorForbidden) ||
		errors.Is(err, bot.ErrorNotFound)
}

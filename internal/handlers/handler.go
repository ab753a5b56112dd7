package handlers

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/ad/go-telegram-wow/internal/observability"
	"github.com/ad/go-telegram-wow/internal/services"
)

const commandStart = "/start"

var levelCommandRe = regexp.MustCompile(`^/l(\d+)$`)

type BotHandler struct {
	transport    services.Transport
	errorManager *services.ErrorManager
	msgManager   *services.MessageManager
	log          *slog.Logger
}

func NewBotHandler(
	t services.Transport,
	errorManager *services.ErrorManager,
	msgManager *services.MessageManager,
	log *slog.Logger,
) *BotHandler {
	return &BotHandler{
		transport:    t,
		errorManager: errorManager,
		msgManager:   msgManager,
		log:          log,
	}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, _ *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(ctx, update)

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *BotHandler) recoverPanic(ctx context.Context, update *tgmodels.Update) {
	if r := recover(); r != nil {
		h.errorManager.NotifyAdmin(ctx, r, update)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgmodels.Message) {
	if msg.Text == commandStart {
		if err := h.msgManager.SendHelp(ctx, msg.Chat.ID); err != nil {
			h.logger(ctx).ErrorContext(ctx, "failed to send help", "chat_id", msg.Chat.ID, "error", err)
		}
		return
	}

	level, ok := parseLevelCommand(msg.Text)
	if !ok {
		return
	}

	err := h.msgManager.ShowLevel(ctx, services.ShowLevelRequest{
		ChatID:        msg.Chat.ID,
		Level:         level,
		UserMessageID: msg.ID,
	})
	if err != nil {
		h.logger(ctx).ErrorContext(ctx, "failed to show level", "chat_id", msg.Chat.ID, "level", level, "error", err)
	}
}

func (h *BotHandler) handleCallback(ctx context.Context, callback *tgmodels.CallbackQuery) {
	if !strings.HasPrefix(callback.Data, services.NextLevelPrefix) {
		return
	}
	defer h.answerCallback(ctx, callback)

	level, ok := services.ParseNextLevelCallback(callback.Data)
	if !ok {
		h.logger(ctx).WarnContext(ctx, "malformed next level payload", "data", callback.Data)
		return
	}

	chatID, messageID, ok := callbackOrigin(callback)
	if !ok {
		return
	}

	err := h.msgManager.ShowLevel(ctx, services.ShowLevelRequest{
		ChatID:            chatID,
		Level:             level,
		PriorBotMessageID: messageID,
	})
	if err != nil {
		h.logger(ctx).ErrorContext(ctx, "failed to show next level", "chat_id", chatID, "level", level, "error", err)
	}
}

func (h *BotHandler) answerCallback(ctx context.Context, callback *tgmodels.CallbackQuery) {
	if _, err := h.transport.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	}); err != nil {
		h.logger(ctx).WarnContext(ctx, "failed to answer callback", "callback_id", callback.ID, "error", err)
	}
}

func (h *BotHandler) logger(ctx context.Context) *slog.Logger {
	return observability.LoggerFromContext(ctx, h.log)
}

func parseLevelCommand(text string) (int, bool) {
	m := levelCommandRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return level, true
}

// callbackOrigin returns the chat and id of the message whose button was tapped.
func callbackOrigin(callback *tgmodels.CallbackQuery) (int64, int, bool) {
	switch {
	case callback.Message.Message != nil:
		return callback.Message.Message.Chat.ID, callback.Message.Message.ID, true
	case callback.Message.InaccessibleMessage != nil:
		return callback.Message.InaccessibleMessage.Chat.ID, callback.Message.InaccessibleMessage.MessageID, true
	default:
		return 0, 0, false
	}
}

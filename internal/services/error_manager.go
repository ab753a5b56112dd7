package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const maxAdminMessageLen = 4000

// ErrorManager reports unexpected failures to the admin chat.
// With adminID == 0 reports are only logged.
type ErrorManager struct {
	transport Transport
	adminID   int64
	log       *slog.Logger
}

func NewErrorManager(t Transport, adminID int64, log *slog.Logger) *ErrorManager {
	return &ErrorManager{
		transport: t,
		adminID:   adminID,
		log:       log,
	}
}

func (e *ErrorManager) NotifyAdmin(ctx context.Context, panicValue any, update *models.Update) {
	stack := string(debug.Stack())
	userInfo := describeSender(update)

	e.log.ErrorContext(ctx, "panic in handler", "panic", panicValue, "user", userInfo, "stack", stack)

	e.sendToAdmin(ctx, fmt.Sprintf("🚨 Panic in handler\nUser: %s\nError: %v\n\nStack trace:\n%s",
		userInfo, panicValue, stack))
}

func (e *ErrorManager) NotifyAdminWithCurl(ctx context.Context, chatID int64, request any, err error) {
	e.sendToAdmin(ctx, fmt.Sprintf("❌ Failed to send message\nChat: [%d]\nError: %v\n\nCurl:\n%s",
		chatID, err, e.buildCurlCommand(request)))
}

func (e *ErrorManager) sendToAdmin(ctx context.Context, msg string) {
	if e.adminID == 0 || e.transport == nil {
		return
	}

	msg = truncateMessage(msg, maxAdminMessageLen)

	if _, err := e.transport.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: e.adminID,
		Text:   msg,
	}); err != nil {
		e.log.WarnContext(ctx, "failed to notify admin", "error", err)
	}
}

func (e *ErrorManager) buildCurlCommand(request any) string {
	jsonData, err := json.MarshalIndent(request, "", "  ")
	if err != nil {
		return fmt.Sprintf("# Failed to serialize request: %v", err)
	}

	return fmt.Sprintf("curl -X POST 'https://api.telegram.org/bot[BOT_TOKEN]/sendMessage' \\\n  -H 'Content-Type: application/json' \\\n  -d '%s'",
		string(jsonData))
}

func describeSender(update *models.Update) string {
	if update == nil {
		return "unknown"
	}

	var from *models.User
	switch {
	case update.Message != nil:
		from = update.Message.From
	case update.CallbackQuery != nil:
		from = &update.CallbackQuery.From
	}
	if from == nil || from.ID == 0 {
		return "unknown"
	}

	info := fmt.Sprintf("[%d]", from.ID)
	if from.FirstName != "" {
		info = from.FirstName + " " + info
	}
	if from.Username != "" {
		info += " @" + from.Username
	}
	return info
}

// truncateMessage cuts s to at most limit bytes on a rune boundary.
func truncateMessage(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n... (truncated)"
}

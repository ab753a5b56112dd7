package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/ad/go-telegram-wow/internal/models"
	"github.com/ad/go-telegram-wow/internal/observability"
)

var ErrSendFailed = errors.New("failed to send message")

// ShowLevelRequest describes one show-level operation.
// A typed command sets UserMessageID; a "next level" tap sets PriorBotMessageID
// to the message carrying the tapped button.
type ShowLevelRequest struct {
	ChatID            int64
	Level             int
	UserMessageID     int
	PriorBotMessageID int
}

func (r ShowLevelRequest) FromCallback() bool {
	return r.UserMessageID == 0
}

type MessageManager struct {
	transport  Transport
	levels     LevelSource
	chatStates ChatStateStore
	errMgr     *ErrorManager
	log        *slog.Logger

	persistCallbackMisses bool
}

type Option func(*MessageManager)

// WithPersistCallbackMisses controls whether a "level not found" notice sent
// in reply to a button tap is recorded in chat state.
func WithPersistCallbackMisses(enabled bool) Option {
	return func(m *MessageManager) {
		m.persistCallbackMisses = enabled
	}
}

func NewMessageManager(t Transport, levels LevelSource, chatStates ChatStateStore, errMgr *ErrorManager, log *slog.Logger, opts ...Option) *MessageManager {
	m := &MessageManager{
		transport:  t,
		levels:     levels,
		chatStates: chatStates,
		errMgr:     errMgr,
		log:        log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MessageManager) SendHelp(ctx context.Context, chatID int64) error {
	_, err := m.send(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      HelpText,
		ParseMode: tgmodels.ParseModeMarkdownV1,
	})
	return err
}

// ShowLevel replaces the chat's previous level listing with a new one.
func (m *MessageManager) ShowLevel(ctx context.Context, req ShowLevelRequest) error {
	if err := m.DeletePreviousMessages(ctx, req.ChatID, req.PriorBotMessageID); err != nil {
		return err
	}

	level, err := m.levels.GetLevel(ctx, req.Level)
	if errors.Is(err, models.ErrNotFound) {
		return m.sendLevelNotFound(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("get level %d: %w", req.Level, err)
	}

	msg, err := m.send(ctx, &bot.SendMessageParams{
		ChatID:      req.ChatID,
		Text:        FormatLevel(level),
		ParseMode:   tgmodels.ParseModeHTML,
		ReplyMarkup: BuildNextLevelKeyboard(level.Number),
	})
	if err != nil {
		return err
	}

	return m.saveState(ctx, req.ChatID, req.UserMessageID, msg.ID)
}

// DeletePreviousMessages removes the messages remembered for chatID and the
// message the user tapped, if any. The two may be the same message.
func (m *MessageManager) DeletePreviousMessages(ctx context.Context, chatID int64, priorBotMessageID int) error {
	state, err := m.chatStates.Get(ctx, chatID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		state = nil
	case err != nil:
		return fmt.Errorf("load chat state: %w", err)
	}

	if state != nil {
		for _, id := range state.MessageIDs() {
			if err := m.deleteQuietly(ctx, chatID, id); err != nil {
				return err
			}
		}
	}

	return m.deleteQuietly(ctx, chatID, priorBotMessageID)
}

func (m *MessageManager) sendLevelNotFound(ctx context.Context, req ShowLevelRequest) error {
	msg, err := m.send(ctx, &bot.SendMessageParams{
		ChatID: req.ChatID,
		Text:   FormatLevelNotFound(req.Level),
	})
	if err != nil {
		return err
	}

	// A tap on a missing level keeps the old state unless configured otherwise.
	if req.FromCallback() && !m.persistCallbackMisses {
		return nil
	}
	return m.saveState(ctx, req.ChatID, req.UserMessageID, msg.ID)
}

func (m *MessageManager) saveState(ctx context.Context, chatID int64, userMessageID, botMessageID int) error {
	err := m.chatStates.Save(ctx, &models.ChatState{
		ChatID:        chatID,
		UserMessageID: userMessageID,
		BotMessageID:  botMessageID,
	})
	if err != nil {
		return fmt.Errorf("save chat state: %w", err)
	}
	return nil
}

func (m *MessageManager) send(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	msg, err := m.transport.SendMessage(ctx, params)
	if err == nil && msg == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		chatID, _ := params.ChatID.(int64)
		observability.LoggerFromContext(ctx, m.log).ErrorContext(ctx, "send message failed", "chat_id", chatID, "error", err)
		m.errMgr.NotifyAdminWithCurl(ctx, chatID, params, err)
		return nil, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return msg, nil
}

package services

import (
	"context"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/ad/go-telegram-wow/internal/models"
)

// Transport is the part of *bot.Bot the bot relies on.
type Transport interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

type LevelSource interface {
	GetLevel(ctx context.Context, number int) (*models.Level, error)
}

type ChatStateStore interface {
	Get(ctx context.Context, chatID int64) (*models.ChatState, error)
	Save(ctx context.Context, state *models.ChatState) error
}

var _ Transport = (*bot.Bot)(nil)

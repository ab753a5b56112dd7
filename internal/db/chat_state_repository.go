package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/ad/go-telegram-wow/internal/models"
)

type ChatStateRepository struct {
	queue *DBQueue
}

func NewChatStateRepository(queue *DBQueue) *ChatStateRepository {
	return &ChatStateRepository{queue: queue}
}

// Save replaces the whole row for state.ChatID. Zero ids are stored as NULL.
func (r *ChatStateRepository) Save(ctx context.Context, state *models.ChatState) error {
	query, args, err := qb.Insert("message_state").
		Columns("chat_id", "user_msg_id", "bot_msg_id").
		Values(state.ChatID, nullableID(state.UserMessageID), nullableID(state.BotMessageID)).
		Suffix(`ON CONFLICT(chat_id) DO UPDATE SET
			user_msg_id = excluded.user_msg_id,
			bot_msg_id = excluded.bot_msg_id`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert chat state query: %w", err)
	}

	_, err = r.queue.Execute(ctx, func(ctx context.Context, db *sql.DB) (any, error) {
		_, err := db.ExecContext(ctx, query, args...)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("save chat state %d: %w", state.ChatID, err)
	}
	return nil
}

func (r *ChatStateRepository) Get(ctx context.Context, chatID int64) (*models.ChatState, error) {
	query, args, err := qb.Select("chat_id", "user_msg_id", "bot_msg_id").
		From("message_state").
		Where(squirrel.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select chat state query: %w", err)
	}

	return Query(ctx, r.queue, func(ctx context.Context, db *sql.DB) (*models.ChatState, error) {
		var state models.ChatState
		var userMsgID, botMsgID sql.NullInt64
		err := db.QueryRowContext(ctx, query, args...).Scan(&state.ChatID, &userMsgID, &botMsgID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("chat state %d: %w", chatID, models.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("get chat state %d: %w", chatID, err)
		}
		state.UserMessageID = int(userMsgID.Int64)
		state.BotMessageID = int(botMsgID.Int64)
		return &state, nil
	})
}

func nullableID(id int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}

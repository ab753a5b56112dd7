package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/ad/go-telegram-wow/internal/models"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const wordSeparator = ","

type LevelRepository struct {
	queue *DBQueue
}

func NewLevelRepository(queue *DBQueue) *LevelRepository {
	return &LevelRepository{queue: queue}
}

func (r *LevelRepository) GetLevel(ctx context.Context, number int) (*models.Level, error) {
	query, args, err := qb.Select("main_words", "bonus_words").
		From("levels").
		Where(squirrel.Eq{"level": number}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select level query: %w", err)
	}

	return Query(ctx, r.queue, func(ctx context.Context, db *sql.DB) (*models.Level, error) {
		var mainWords string
		var bonusWords sql.NullString
		err := db.QueryRowContext(ctx, query, args...).Scan(&mainWords, &bonusWords)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("level %d: %w", number, models.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("get level %d: %w", number, err)
		}
		return &models.Level{
			Number:     number,
			MainWords:  SplitWords(mainWords),
			BonusWords: SplitWords(bonusWords.String),
		}, nil
	})
}

// ListLevels returns every stored level ordered by number.
func (r *LevelRepository) ListLevels(ctx context.Context) ([]*models.Level, error) {
	query, args, err := qb.Select("level", "main_words", "bonus_words").
		From("levels").
		OrderBy("level").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list levels query: %w", err)
	}

	return Query(ctx, r.queue, func(ctx context.Context, db *sql.DB) ([]*models.Level, error) {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("list levels: %w", err)
		}
		defer rows.Close()

		var levels []*models.Level
		for rows.Next() {
			var number int
			var mainWords string
			var bonusWords sql.NullString
			if err := rows.Scan(&number, &mainWords, &bonusWords); err != nil {
				return nil, fmt.Errorf("scan level: %w", err)
			}
			levels = append(levels, &models.Level{
				Number:     number,
				MainWords:  SplitWords(mainWords),
				BonusWords: SplitWords(bonusWords.String),
			})
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("list levels: %w", err)
		}
		return levels, nil
	})
}

func (r *LevelRepository) SaveLevel(ctx context.Context, level *models.Level) error {
	bonus := sql.NullString{String: JoinWords(level.BonusWords), Valid: level.HasBonusWords()}
	query, args, err := qb.Insert("levels").
		Columns("level", "main_words", "bonus_words").
		Values(level.Number, JoinWords(level.MainWords), bonus).
		Suffix(`ON CONFLICT(level) DO UPDATE SET
			main_words = excluded.main_words,
			bonus_words = excluded.bonus_words`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert level query: %w", err)
	}

	_, err = r.queue.Execute(ctx, func(ctx context.Context, db *sql.DB) (any, error) {
		_, err := db.ExecContext(ctx, query, args...)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("save level %d: %w", level.Number, err)
	}
	return nil
}

// SplitWords parses a comma-separated column, dropping blank items.
func SplitWords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, wordSeparator)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func JoinWords(words []string) string {
	return strings.Join(words, wordSeparator)
}

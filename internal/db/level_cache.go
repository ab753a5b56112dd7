package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/ad/go-telegram-wow/internal/models"
)

type LevelGetter interface {
	GetLevel(ctx context.Context, number int) (*models.Level, error)
}

// CachedLevelRepository is a read-through cache over found levels.
// Misses are not cached so a re-imported level shows up without a restart.
type CachedLevelRepository struct {
	next  LevelGetter
	cache *bigcache.BigCache
	log   *slog.Logger
}

func NewCachedLevelRepository(ctx context.Context, next LevelGetter, ttl time.Duration, log *slog.Logger) (*CachedLevelRepository, error) {
	conf := bigcache.DefaultConfig(ttl)
	conf.Shards = 16
	conf.MaxEntriesInWindow = 10_000
	conf.MaxEntrySize = 512
	conf.HardMaxCacheSize = 32
	conf.Verbose = false

	cache, err := bigcache.New(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("create level cache: %w", err)
	}
	return &CachedLevelRepository{next: next, cache: cache, log: log}, nil
}

func (r *CachedLevelRepository) GetLevel(ctx context.Context, number int) (*models.Level, error) {
	key := strconv.Itoa(number)

	raw, err := r.cache.Get(key)
	switch {
	case err == nil:
		var level models.Level
		if err := json.Unmarshal(raw, &level); err == nil {
			return &level, nil
		}
		r.log.WarnContext(ctx, "drop corrupted cache entry", "level", number)
		_ = r.cache.Delete(key)
	case !errors.Is(err, bigcache.ErrEntryNotFound):
		r.log.WarnContext(ctx, "level cache read failed", "level", number, "error", err)
	}

	level, err := r.next.GetLevel(ctx, number)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(level); err == nil {
		if err := r.cache.Set(key, raw); err != nil {
			r.log.WarnContext(ctx, "level cache write failed", "level", number, "error", err)
		}
	}
	return level, nil
}

func (r *CachedLevelRepository) Close() error {
	return r.cache.Close()
}

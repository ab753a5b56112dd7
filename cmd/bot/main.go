package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"

	"github.com/ad/go-telegram-wow/internal/config"
	"github.com/ad/go-telegram-wow/internal/db"
	"github.com/ad/go-telegram-wow/internal/handlers"
	"github.com/ad/go-telegram-wow/internal/observability"
	"github.com/ad/go-telegram-wow/internal/services"
)

const (
	exitCodeOK int = iota
	exitCodeConfigParse
	exitCodeDBConnect
	exitCodeBotCreate
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := config.GetBot()
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err)
		return exitCodeConfigParse
	}

	log := observability.NewLogger(conf.Dev)

	stores, err := openStores(ctx, conf, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to open stores", "error", err)
		return exitCodeDBConnect
	}
	defer stores.Close()

	b, err := bot.New(conf.Token, botOptions(conf, log)...)
	if err != nil {
		log.ErrorContext(ctx, "failed to create bot", "error", err)
		return exitCodeBotCreate
	}

	botInfo, err := getMeWithRetry(ctx, b, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to get bot info", "error", err)
		return exitCodeBotCreate
	}

	registerHandler(b, newHandler(b, stores, conf, log), log)

	log.InfoContext(ctx, "bot started",
		"username", botInfo.Username,
		"admin_id", conf.AdminID,
		"levels_db", conf.LevelsDBPath,
		"state_db", conf.StateDBPath,
	)
	b.Start(ctx)
	log.InfoContext(ctx, "bot stopped")

	return exitCodeOK
}

type stores struct {
	levelsDB    *sql.DB
	stateDB     *sql.DB
	levelsQueue *db.DBQueue
	stateQueue  *db.DBQueue
	levels      *db.CachedLevelRepository
	chatStates  *db.ChatStateRepository
}

func openStores(ctx context.Context, conf *config.Bot, log *slog.Logger) (*stores, error) {
	s := &stores{}

	var err error
	if s.levelsDB, err = db.Open(conf.LevelsDBPath); err != nil {
		return nil, err
	}
	if s.stateDB, err = db.Open(conf.StateDBPath); err != nil {
		s.Close()
		return nil, err
	}
	if err := db.InitStateSchema(s.stateDB); err != nil {
		s.Close()
		return nil, err
	}

	s.levelsQueue = db.NewDBQueue(s.levelsDB, db.WithMaxRetry(conf.DBMaxRetry))
	s.stateQueue = db.NewDBQueue(s.stateDB, db.WithMaxRetry(conf.DBMaxRetry))

	s.levels, err = db.NewCachedLevelRepository(ctx, db.NewLevelRepository(s.levelsQueue), conf.LevelCacheTTL, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.chatStates = db.NewChatStateRepository(s.stateQueue)

	return s, nil
}

func (s *stores) Close() {
	if s.levels != nil {
		_ = s.levels.Close()
	}
	if s.levelsQueue != nil {
		s.levelsQueue.Close()
	}
	if s.stateQueue != nil {
		s.stateQueue.Close()
	}
	if s.levelsDB != nil {
		_ = s.levelsDB.Close()
	}
	if s.stateDB != nil {
		_ = s.stateDB.Close()
	}
}

// botOptions configures the client. Updates are handled one at a time, in
// order, by a single worker: chat state is read and then rewritten without a
// lock, and Start must not return while a handler still uses the stores.
func botOptions(conf *config.Bot, log *slog.Logger) []bot.Option {
	return []bot.Option{
		bot.WithHTTPClient(conf.PollTimeout(), &http.Client{Timeout: conf.HTTPTimeout}),
		bot.WithNotAsyncHandlers(),
		bot.WithWorkers(1),
		bot.WithErrorsHandler(func(err error) {
			log.Error("telegram client error", "error", err)
		}),
	}
}

func registerHandler(b *bot.Bot, handler *handlers.BotHandler, log *slog.Logger) {
	b.RegisterHandlerMatchFunc(func(*tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, handlers.LogUpdates(log))
}

func newHandler(t services.Transport, s *stores, conf *config.Bot, log *slog.Logger) *handlers.BotHandler {
	errorManager := services.NewErrorManager(t, conf.AdminID, log)
	msgManager := services.NewMessageManager(t, s.levels, s.chatStates, errorManager, log,
		services.WithPersistCallbackMisses(conf.PersistCallbackMisses),
	)
	return handlers.NewBotHandler(t, errorManager, msgManager, log)
}

func getMeWithRetry(ctx context.Context, b *bot.Bot, log *slog.Logger) (*tgmodels.User, error) {
	const attempts = 3

	var lastErr error
	for i := 0; i < attempts; i++ {
		log.InfoContext(ctx, "connecting to Telegram API", "attempt", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(ctx, 10*time.Second)
		botInfo, err := b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			return botInfo, nil
		}
		lastErr = err
		log.WarnContext(ctx, "getMe failed", "attempt", i+1, "error", err)
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	return nil, fmt.Errorf("get bot info after %d attempts: %w", attempts, lastErr)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/ad/go-telegram-wow/internal/config"
	"github.com/ad/go-telegram-wow/internal/data"
	"github.com/ad/go-telegram-wow/internal/db"
	"github.com/ad/go-telegram-wow/internal/models"
	"github.com/ad/go-telegram-wow/internal/observability"
)

const (
	exitCodeOK int = iota
	exitCodeConfigParse
	exitCodeDBConnect
	exitCodeImport
	exitCodeParse
)

func main() {
	source := flag.String("source", "", "path to a level dump (<level>|<main words>|<bonus words> per line)")
	fromDB := flag.String("from-db", "", "path to a levels.db written by the levels scraper")
	flag.Parse()

	os.Exit(run(context.Background(), *source, *fromDB))
}

func run(ctx context.Context, source, fromDB string) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := config.GetImport()
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err)
		return exitCodeConfigParse
	}
	if (source == "") == (fromDB == "") {
		slog.ErrorContext(ctx, "exactly one of -source or -from-db is required")
		return exitCodeConfigParse
	}

	log := observability.NewLogger(conf.Dev)

	sqlDB, err := db.Open(conf.LevelsDBPath)
	if err != nil {
		log.ErrorContext(ctx, "open levels database", "error", err)
		return exitCodeDBConnect
	}
	defer sqlDB.Close()

	if err := db.InitLevelsSchema(sqlDB); err != nil {
		log.ErrorContext(ctx, "init levels schema", "error", err)
		return exitCodeDBConnect
	}

	queue := db.NewDBQueue(sqlDB)
	defer queue.Close()
	repo := db.NewLevelRepository(queue)

	var produce producer
	switch {
	case source != "":
		in, err := os.Open(source)
		if err != nil {
			log.ErrorContext(ctx, "open source", "source", source, "error", err)
			return exitCodeImport
		}
		defer in.Close()
		produce = fromDump(in)
	default:
		src, closeSrc, err := openSourceStore(fromDB, conf.LevelsDBPath)
		if err != nil {
			log.ErrorContext(ctx, "open source database", "source", fromDB, "error", err)
			return exitCodeDBConnect
		}
		defer closeSrc()
		produce = fromStore(src)
	}

	imported, err := importLevels(ctx, produce, repo)

	var parseErr *data.ParsingError
	switch {
	case errors.As(err, &parseErr):
		log.WarnContext(ctx, "import finished with invalid input",
			"imported", imported,
			"invalid_lines", parseErr.InvalidLines,
			"invalid_levels", parseErr.InvalidLevels,
		)
		return exitCodeParse
	case err != nil:
		log.ErrorContext(ctx, "import failed", "imported", imported, "error", err)
		return exitCodeImport
	}

	log.InfoContext(ctx, "import finished", "imported", imported)
	return exitCodeOK
}

// producer sends levels to out and closes it.
type producer func(ctx context.Context, out chan<- models.Level) error

func fromDump(in io.Reader) producer {
	return func(ctx context.Context, out chan<- models.Level) error {
		return data.Parse(ctx, in, out)
	}
}

func fromStore(src data.LevelLister) producer {
	return func(ctx context.Context, out chan<- models.Level) error {
		return data.ReadStore(ctx, src, out)
	}
}

func openSourceStore(path, target string) (*db.LevelRepository, func(), error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return nil, nil, err
	}
	if absPath == absTarget {
		return nil, nil, errors.New("source and target are the same database")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.Open(path)
	if err != nil {
		return nil, nil, err
	}
	queue := db.NewDBQueue(sqlDB)
	return db.NewLevelRepository(queue), func() {
		queue.Close()
		sqlDB.Close()
	}, nil
}

type levelSaver interface {
	SaveLevel(ctx context.Context, level *models.Level) error
}

// importLevels reads and stores levels concurrently. Valid levels are stored
// even when some input is invalid; that case is reported as *data.ParsingError.
func importLevels(ctx context.Context, produce producer, repo levelSaver) (int, error) {
	levels := make(chan models.Level, 64)
	imported := 0

	var parseErr error
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := produce(egCtx, levels)
		var perr *data.ParsingError
		if errors.As(err, &perr) {
			parseErr = err
			return nil
		}
		return err
	})
	eg.Go(func() error {
		for level := range levels {
			if err := repo.SaveLevel(egCtx, &level); err != nil {
				return fmt.Errorf("save level %d: %w", level.Number, err)
			}
			imported++
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return imported, err
	}
	return imported, parseErr
}

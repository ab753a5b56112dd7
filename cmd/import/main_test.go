package main

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/ad/go-telegram-wow/internal/data"
	"github.com/ad/go-telegram-wow/internal/db"
	"github.com/ad/go-telegram-wow/internal/models"
)

func newLevelRepository(t *testing.T) *db.LevelRepository {
	t.Helper()
	_, repo := newLevelsDB(t, "levels.db")
	return repo
}

func newLevelsDB(t *testing.T, name string) (*sql.DB, *db.LevelRepository) {
	t.Helper()
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.InitLevelsSchema(sqlDB); err != nil {
		t.Fatal(err)
	}
	queue := db.NewDBQueueForTest(sqlDB)
	t.Cleanup(queue.Close)
	return sqlDB, db.NewLevelRepository(queue)
}

func TestImportLevels(t *testing.T) {
	repo := newLevelRepository(t)
	dump := "1|cat,act|tac\n2|dog,god|\n"

	imported, err := importLevels(context.Background(), fromDump(strings.NewReader(dump)), repo)
	if err != nil {
		t.Fatalf("importLevels: %v", err)
	}
	if imported != 2 {
		t.Errorf("imported %d, want 2", imported)
	}

	level, err := repo.GetLevel(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(level.MainWords, []string{"CAT", "ACT"}) || !reflect.DeepEqual(level.BonusWords, []string{"TAC"}) {
		t.Errorf("unexpected level 1: %+v", level)
	}
}

func TestImportLevelsReportsInvalidLines(t *testing.T) {
	repo := newLevelRepository(t)
	dump := "1|cat|\nbroken\n2|dog|\n"

	imported, err := importLevels(context.Background(), fromDump(strings.NewReader(dump)), repo)

	var parseErr *data.ParsingError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *data.ParsingError, got %v", err)
	}
	if !reflect.DeepEqual(parseErr.InvalidLines, []int{2}) {
		t.Errorf("invalid lines %v, want [2]", parseErr.InvalidLines)
	}
	if imported != 2 {
		t.Errorf("imported %d, want 2", imported)
	}
}

type failingSaver struct{}

func (failingSaver) SaveLevel(context.Context, *models.Level) error {
	return errors.New("disk full")
}

func TestImportLevelsStopsOnSaveError(t *testing.T) {
	dump := strings.Repeat("1|cat|\n", 500)

	_, err := importLevels(context.Background(), fromDump(strings.NewReader(dump)), failingSaver{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected save error, got %v", err)
	}
}

func TestImportLevelsFromScraperDatabase(t *testing.T) {
	srcDB, src := newLevelsDB(t, "scraped.db")
	_, err := srcDB.Exec(`INSERT INTO levels (level, main_words, bonus_words) VALUES
		(1, 'cat, act', NULL),
		(2, 'dog,god', 'do,go'),
		(3, '', 'x')`)
	if err != nil {
		t.Fatal(err)
	}
	repo := newLevelRepository(t)

	imported, err := importLevels(context.Background(), fromStore(src), repo)

	var parseErr *data.ParsingError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *data.ParsingError, got %v", err)
	}
	if !reflect.DeepEqual(parseErr.InvalidLevels, []int{3}) {
		t.Errorf("invalid levels %v, want [3]", parseErr.InvalidLevels)
	}
	if imported != 2 {
		t.Errorf("imported %d, want 2", imported)
	}

	level, err := repo.GetLevel(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(level.MainWords, []string{"CAT", "ACT"}) || level.HasBonusWords() {
		t.Errorf("unexpected level 1: %+v", level)
	}
	level, err = repo.GetLevel(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(level.BonusWords, []string{"DO", "GO"}) {
		t.Errorf("unexpected level 2: %+v", level)
	}
	if _, err := repo.GetLevel(context.Background(), 3); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected level 3 to be skipped, got %v", err)
	}
}

func TestOpenSourceStoreRejectsTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.db")
	if _, _, err := openSourceStore(path, path); err == nil {
		t.Error("expected error when source is the target database")
	}
	if _, _, err := openSourceStore(filepath.Join(t.TempDir(), "missing.db"), path); err == nil {
		t.Error("expected error for a missing source database")
	}
}

package data

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ad/go-telegram-wow/internal/db"
	"github.com/ad/go-telegram-wow/internal/models"
)

const fieldSeparator = "|"

var errInvalidLine = errors.New("invalid line")

// ParsingError lists the input that was skipped: dump line numbers, or the
// numbers of stored levels that have no main words.
type ParsingError struct {
	InvalidLines  []int
	InvalidLevels []int
}

func (e *ParsingError) Error() string {
	if len(e.InvalidLevels) > 0 {
		return fmt.Sprintf("parsing error: invalidLines=%v invalidLevels=%v", e.InvalidLines, e.InvalidLevels)
	}
	return fmt.Sprintf("parsing error: invalidLines=%v", e.InvalidLines)
}

type LevelLister interface {
	ListLevels(ctx context.Context) ([]*models.Level, error)
}

// ReadStore sends every level of an existing levels database to out, with
// words trimmed and upper-cased the same way Parse does. This is the format
// the levels scraper writes. out is closed on return.
func ReadStore(ctx context.Context, src LevelLister, out chan<- models.Level) error {
	defer close(out)

	levels, err := src.ListLevels(ctx)
	if err != nil {
		return fmt.Errorf("read source levels: %w", err)
	}

	var invalidLevels []int
	for _, stored := range levels {
		level := models.Level{
			Number:     stored.Number,
			MainWords:  normalizeWords(db.JoinWords(stored.MainWords)),
			BonusWords: normalizeWords(db.JoinWords(stored.BonusWords)),
		}
		if len(level.MainWords) == 0 {
			invalidLevels = append(invalidLevels, level.Number)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- level:
		}
	}

	if len(invalidLevels) > 0 {
		return &ParsingError{InvalidLevels: invalidLevels}
	}
	return nil
}

// Parse reads a level dump and sends every valid level to out.
// Each line is "<level>|<main words>|<bonus words>", the bonus part optional.
// Blank lines and lines starting with '#' are skipped. out is closed on return.
func Parse(ctx context.Context, in io.Reader, out chan<- models.Level) error {
	defer close(out)

	scanner := bufio.NewScanner(in)
	invalidLines := make([]int, 0, 10)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		level, err := ParseLine(line)
		if err != nil {
			invalidLines = append(invalidLines, lineNum)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- level:
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan file: %w", err)
	}
	if len(invalidLines) > 0 {
		return &ParsingError{InvalidLines: invalidLines}
	}

	return nil
}

func ParseLine(line string) (models.Level, error) {
	parts := strings.Split(line, fieldSeparator)
	if len(parts) < 2 || len(parts) > 3 {
		return models.Level{}, fmt.Errorf("%w: expected 2 or 3 fields, got %d", errInvalidLine, len(parts))
	}

	number, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || number < 0 {
		return models.Level{}, fmt.Errorf("%w: bad level number %q", errInvalidLine, parts[0])
	}

	level := models.Level{
		Number:    number,
		MainWords: normalizeWords(parts[1]),
	}
	if len(level.MainWords) == 0 {
		return models.Level{}, fmt.Errorf("%w: level %d has no main words", errInvalidLine, number)
	}
	if len(parts) == 3 {
		level.BonusWords = normalizeWords(parts[2])
	}
	return level, nil
}

func normalizeWords(s string) []string {
	words := db.SplitWords(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	return words
}

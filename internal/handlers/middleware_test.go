package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/ad/go-telegram-wow/internal/observability"
)

func TestLogUpdates(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	var seen *slog.Logger
	next := func(ctx context.Context, _ *bot.Bot, _ *tgmodels.Update) {
		seen = observability.LoggerFromContext(ctx, nil)
	}

	update := textUpdate(42, 1, "/l5")
	update.Message.From = &tgmodels.User{ID: 42, FirstName: "Ann", Username: "ann"}
	LogUpdates(log)(next)(context.Background(), nil, update)

	if seen == nil {
		t.Fatal("expected request logger in context")
	}
	out := buf.String()
	for _, want := range []string{"request_id=", `from="Ann @ann [42]"`, "text=/l5"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output %q", want, out)
		}
	}
}

func TestFormatUser(t *testing.T) {
	got := formatUser(tgmodels.User{ID: 1, FirstName: "A", LastName: "B", Username: "ab"})
	if got != "A B @ab [1]" {
		t.Errorf("unexpected %q", got)
	}
}

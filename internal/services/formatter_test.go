package services

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/ad/go-telegram-wow/internal/models"
)

func TestFormatLevel(t *testing.T) {
	level := &models.Level{Number: 5, MainWords: []string{"CAT", "DOG"}, BonusWords: []string{"ZEBRA"}}

	want := "📘 <b>Уровень 5</b>\n\n" +
		"🧩 <b>Основные слова:</b>\n🔹 CAT\n🔹 DOG\n\n" +
		"🎁 <b>Бонусные слова:</b>\n▫️ <i>ZEBRA</i>"

	if got := FormatLevel(level); got != want {
		t.Errorf("unexpected listing:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatLevel_EscapesWords(t *testing.T) {
	level := &models.Level{Number: 1, MainWords: []string{"<b>"}, BonusWords: []string{"A&B"}}

	got := FormatLevel(level)
	if strings.Contains(got, "🔹 <b>") {
		t.Errorf("main word was not escaped: %q", got)
	}
	if !strings.Contains(got, "🔹 &lt;b&gt;") || !strings.Contains(got, "<i>A&amp;B</i>") {
		t.Errorf("expected escaped words, got %q", got)
	}
}

func TestParseNextLevelCallback(t *testing.T) {
	tests := []struct {
		data  string
		level int
		ok    bool
	}{
		{"next:43", 43, true},
		{"next:0", 0, true},
		{"next:", 0, false},
		{"next:-1", 0, false},
		{"next:abc", 0, false},
		{"prev:4", 0, false},
		{"hint:1:2", 0, false},
	}

	for _, tt := range tests {
		level, ok := ParseNextLevelCallback(tt.data)
		if level != tt.level || ok != tt.ok {
			t.Errorf("ParseNextLevelCallback(%q) = (%d, %v), want (%d, %v)", tt.data, level, ok, tt.level, tt.ok)
		}
	}
}

func TestNextLevelCallbackRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(0, 1_000_000).Draw(rt, "level")
		got, ok := ParseNextLevelCallback(NextLevelCallbackData(level))
		if !ok || got != level {
			rt.Errorf("expected %d, got %d (ok=%v)", level, got, ok)
		}
	})
}

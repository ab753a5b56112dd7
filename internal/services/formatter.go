package services

import (
	"fmt"
	"strconv"
	"strings"

	tgmodels "github.com/go-telegram/bot/models"

	"github.com/ad/go-telegram-wow/internal/models"
)

const NextLevelPrefix = "next:"

const HelpText = `👋 Привет! Это бот для игры *Words of Wonders*.

📚 Я могу показать тебе слова из любого уровня игры.

🔎 Используй команду:

/l100 — чтобы посмотреть слова из уровня 100
(Буква *L*, не цифра 1 или I!)

💬 Просто замени 100 на нужный тебе уровень.

Удачи! 🎯`

// FormatLevel renders a level listing for HTML parse mode.
func FormatLevel(level *models.Level) string {
	var h htmlText

	h.raw("📘 ").bold(fmt.Sprintf("Уровень %d", level.Number))
	h.raw("\n\n🧩 ").bold("Основные слова:")
	h.wordList("🔹", level.MainWords, (*htmlText).text)

	if level.HasBonusWords() {
		h.raw("\n\n🎁 ").bold("Бонусные слова:")
		h.wordList("▫️", level.BonusWords, (*htmlText).italic)
	}

	return h.String()
}

func FormatLevelNotFound(number int) string {
	return fmt.Sprintf("❌ Уровень %d не найден.", number)
}

func NextLevelCallbackData(level int) string {
	return NextLevelPrefix + strconv.Itoa(level)
}

// ParseNextLevelCallback extracts the target level from a "next:<level>" payload.
func ParseNextLevelCallback(data string) (int, bool) {
	raw, ok := strings.CutPrefix(data, NextLevelPrefix)
	if !ok {
		return 0, false
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 {
		return 0, false
	}
	return level, true
}

// BuildNextLevelKeyboard offers the level after current.
func BuildNextLevelKeyboard(current int) *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{{
				Text:         "➡️ Следующий",
				CallbackData: NextLevelCallbackData(current + 1),
			}},
		},
	}
}

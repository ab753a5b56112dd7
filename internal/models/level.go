package models

type Level struct {
	Number     int      `json:"level"`
	MainWords  []string `json:"main_words"`
	BonusWords []string `json:"bonus_words,omitempty"`
}

func (l *Level) HasBonusWords() bool {
	return len(l.BonusWords) > 0
}

package models

// ChatState is the last user command and bot reply seen in a chat.
// A zero message id means the message is absent.
type ChatState struct {
	ChatID        int64
	UserMessageID int
	BotMessageID  int
}

func (s *ChatState) MessageIDs() []int {
	ids := make([]int, 0, 2)
	if s.UserMessageID != 0 {
		ids = append(ids, s.UserMessageID)
	}
	if s.BotMessageID != 0 {
		ids = append(ids, s.BotMessageID)
	}
	return ids
}

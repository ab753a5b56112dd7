package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/ad/go-telegram-wow/internal/models"
)

type fakeTransport struct {
	mu sync.Mutex

	ops       []string
	sent      []*bot.SendMessageParams
	deleted   []int
	answered  []string
	nextMsgID int

	deleteErr error
	sendErr   error
}

func newFakeTransport(firstMsgID int) *fakeTransport {
	return &fakeTransport{nextMsgID: firstMsgID}
}

func (f *fakeTransport) SendMessage(_ context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ops = append(f.ops, "send")
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, params)
	id := f.nextMsgID
	f.nextMsgID++
	return &tgmodels.Message{ID: id}, nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ops = append(f.ops, fmt.Sprintf("delete:%d", params.MessageID))
	f.deleted = append(f.deleted, params.MessageID)
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return true, nil
}

func (f *fakeTransport) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ops = append(f.ops, "answer")
	f.answered = append(f.answered, params.CallbackQueryID)
	return true, nil
}

type memoryLevels map[int]*models.Level

func (m memoryLevels) GetLevel(_ context.Context, number int) (*models.Level, error) {
	if level, ok := m[number]; ok {
		return level, nil
	}
	return nil, fmt.Errorf("level %d: %w", number, models.ErrNotFound)
}

type memoryChatStates struct {
	states  map[int64]models.ChatState
	saves   int
	getErr  error
	saveErr error
}

func newMemoryChatStates() *memoryChatStates {
	return &memoryChatStates{states: make(map[int64]models.ChatState)}
}

func (m *memoryChatStates) Get(_ context.Context, chatID int64) (*models.ChatState, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	state, ok := m.states[chatID]
	if !ok {
		return nil, fmt.Errorf("chat state %d: %w", chatID, models.ErrNotFound)
	}
	return &state, nil
}

func (m *memoryChatStates) Save(_ context.Context, state *models.ChatState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.states[state.ChatID] = *state
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestManager(t Transport, levels LevelSource, states ChatStateStore, opts ...Option) *MessageManager {
	return NewMessageManager(t, levels, states, NewErrorManager(t, 0, discardLogger()), discardLogger(), opts...)
}

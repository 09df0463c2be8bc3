package mocks

import (
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// ErrBlocked is what RecordingBot returns for chats listed in FailChats
var ErrBlocked = errors.New("Forbidden: bot was blocked by the user")

// SentItem is one call to RecordingBot.Send
type SentItem struct {
	ChatID    int64
	MessageID int
	Item      tgbotapi.Chattable
}

// RecordingBot records direct bot calls and hands out increasing message ids
type RecordingBot struct {
	mu sync.Mutex

	Sent     []SentItem
	Deleted  []tgbotapi.DeleteMessageConfig
	Answered []tgbotapi.CallbackConfig

	// FailChats makes every Send to these chats fail
	FailChats map[int64]bool
	// FailDeletes makes every DeleteMessage fail
	FailDeletes bool

	nextID int
}

func NewRecordingBot() *RecordingBot {
	return &RecordingBot{FailChats: make(map[int64]bool), nextID: 1000}
}

func (b *RecordingBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chatID := ChatIDOf(c)
	if b.FailChats[chatID] {
		return tgbotapi.Message{}, ErrBlocked
	}

	b.nextID++
	b.Sent = append(b.Sent, SentItem{ChatID: chatID, MessageID: b.nextID, Item: c})
	return tgbotapi.Message{MessageID: b.nextID, Chat: &tgbotapi.Chat{ID: chatID}}, nil
}

func (b *RecordingBot) DeleteMessage(config tgbotapi.DeleteMessageConfig) (tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Deleted = append(b.Deleted, config)
	if b.FailDeletes {
		return tgbotapi.APIResponse{Ok: false}, errors.New("Bad Request: message to delete not found")
	}
	return tgbotapi.APIResponse{Ok: true}, nil
}

func (b *RecordingBot) AnswerCallbackQuery(config tgbotapi.CallbackConfig) (tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Answered = append(b.Answered, config)
	return tgbotapi.APIResponse{Ok: true}, nil
}

// SentTo returns what was delivered to chatID, in order
func (b *RecordingBot) SentTo(chatID int64) []SentItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	var items []SentItem
	for _, item := range b.Sent {
		if item.ChatID == chatID {
			items = append(items, item)
		}
	}
	return items
}

// WasDeleted reports whether a delete of messageID in chatID was attempted
func (b *RecordingBot) WasDeleted(chatID int64, messageID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, deleted := range b.Deleted {
		if deleted.ChatID == chatID && deleted.MessageID == messageID {
			return true
		}
	}
	return false
}

// ChatIDOf extracts the destination chat of the Chattables the application sends
func ChatIDOf(c tgbotapi.Chattable) int64 {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.ChatID
	case tgbotapi.PhotoConfig:
		return v.ChatID
	case tgbotapi.DocumentConfig:
		return v.ChatID
	case tgbotapi.VideoConfig:
		return v.ChatID
	case tgbotapi.VoiceConfig:
		return v.ChatID
	case tgbotapi.AudioConfig:
		return v.ChatID
	case tgbotapi.StickerConfig:
		return v.ChatID
	case tgbotapi.VideoNoteConfig:
		return v.ChatID
	case tgbotapi.ForwardConfig:
		return v.ChatID
	case tgbotapi.EditMessageTextConfig:
		return v.ChatID
	}
	return 0
}

// MarkupOf returns the inline keyboard attached to a Chattable, if any
func MarkupOf(c tgbotapi.Chattable) *tgbotapi.InlineKeyboardMarkup {
	var markup interface{}
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		markup = v.ReplyMarkup
	case tgbotapi.PhotoConfig:
		markup = v.ReplyMarkup
	case tgbotapi.DocumentConfig:
		markup = v.ReplyMarkup
	case tgbotapi.VideoConfig:
		markup = v.ReplyMarkup
	case tgbotapi.VoiceConfig:
		markup = v.ReplyMarkup
	case tgbotapi.AudioConfig:
		markup = v.ReplyMarkup
	case tgbotapi.StickerConfig:
		markup = v.ReplyMarkup
	case tgbotapi.VideoNoteConfig:
		markup = v.ReplyMarkup
	}
	if keyboard, ok := markup.(tgbotapi.InlineKeyboardMarkup); ok {
		return &keyboard
	}
	return nil
}

// CallbackDataOf lists the callback tokens of every button on a Chattable
func CallbackDataOf(c tgbotapi.Chattable) []string {
	markup := MarkupOf(c)
	if markup == nil {
		return nil
	}

	var data []string
	for _, row := range markup.InlineKeyboard {
		for _, button := range row {
			if button.CallbackData != nil {
				data = append(data, *button.CallbackData)
			}
		}
	}
	return data
}

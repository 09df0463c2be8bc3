package messaging

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// Deleter is the part of the bot API needed to remove messages
type Deleter interface {
	DeleteMessage(config tgbotapi.DeleteMessageConfig) (tgbotapi.APIResponse, error)
}

// BestEffort runs cosmetic cleanup. Failures are logged and swallowed; they
// never change the outcome of an interaction.
func BestEffort(operation string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("[BEST_EFFORT] %s failed, ignoring: %v", operation, err)
	}
}

// DeleteQuietly removes a message if it still exists
func DeleteQuietly(bot Deleter, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	BestEffort("delete message", func() error {
		_, err := bot.DeleteMessage(tgbotapi.DeleteMessageConfig{
			ChatID:    chatID,
			MessageID: messageID,
		})
		return err
	})
}

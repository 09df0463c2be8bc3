package context

import (
	"dealbot/config"
	"dealbot/rabbit"
	"dealbot/repository"
	"dealbot/session"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// Bot is the subset of the Telegram bot API the application calls directly.
// *tgbotapi.BotAPI satisfies it.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	DeleteMessage(config tgbotapi.DeleteMessageConfig) (tgbotapi.APIResponse, error)
	AnswerCallbackQuery(config tgbotapi.CallbackConfig) (tgbotapi.APIResponse, error)
}

// Publisher queues outbound Telegram operations
type Publisher interface {
	PublishTgMessage(messageBag rabbit.MessageBag) error
	PublishCallbackAnswer(callbackBag rabbit.CallbackAnswerBag) error
	PublishEditMessage(editBag rabbit.EditMessageBag) error
}

type Context struct {
	bot           Bot // private - only accessible through methods
	Repo          repository.Store
	RabbitPublish Publisher            // for publishing only
	RabbitConsume *rabbit.RabbitClient // for consuming only
	Sessions      *session.Store
	Config        *config.Config
}

// Send is a drop-in replacement for telegram Send method, posts with high priority.
// Used for notifications whose delivery the caller does not wait for.
func (context *Context) Send(message tgbotapi.MessageConfig) {
	log.Printf("[CONTEXT] Sending message to user %d via RabbitMQ with high priority", message.ChatID)

	if err := context.RabbitPublish.PublishTgMessage(rabbit.MessageBag{
		Message:  message,
		Priority: 220, // high priority for user messages, but lower than callbacks
	}); err != nil {
		log.Printf("[CONTEXT] Failed to queue message to user %d: %v", message.ChatID, err)
	}
}

// SendWithPriority sends a message with specified priority through RabbitMQ
func (context *Context) SendWithPriority(message tgbotapi.MessageConfig, priority uint8) {
	log.Printf("[CONTEXT] Sending message to user %d via RabbitMQ with priority %d", message.ChatID, priority)

	if err := context.RabbitPublish.PublishTgMessage(rabbit.MessageBag{
		Message:  message,
		Priority: priority,
	}); err != nil {
		log.Printf("[CONTEXT] Failed to queue message to user %d: %v", message.ChatID, err)
	}
}

// AnswerCallbackQuery answers a callback query through RabbitMQ with highest priority
func (context *Context) AnswerCallbackQuery(callback tgbotapi.CallbackConfig) error {
	log.Printf("[CONTEXT] Sending callback answer %s via RabbitMQ with highest priority", callback.CallbackQueryID)

	return context.RabbitPublish.PublishCallbackAnswer(rabbit.CallbackAnswerBag{
		CallbackAnswer: callback,
		Priority:       255, // Highest priority for instant response
	})
}

// EditMessage edits a message through RabbitMQ
func (context *Context) EditMessage(editMsg tgbotapi.EditMessageTextConfig) error {
	log.Printf("[CONTEXT] Sending message edit for message %d in chat %d via RabbitMQ", editMsg.MessageID, editMsg.ChatID)

	return context.RabbitPublish.PublishEditMessage(rabbit.EditMessageBag{
		EditMessage: editMsg,
		Priority:    200, // High priority for edits
	})
}

// GetBot returns the bot instance. Only the sender and the synchronous
// delivery paths (relay, creative forwarding) talk to Telegram directly,
// because they need the resulting message ids.
func (context *Context) GetBot() Bot {
	return context.bot
}

// SetBot sets the bot instance - used during initialization
func (context *Context) SetBot(bot Bot) {
	context.bot = bot
}

package sender

import (
	"encoding/json"
	"log"
	"regexp"
	"strconv"
	"time"

	"dealbot/context"
	"dealbot/metrics"
	"dealbot/rabbit"

	"github.com/streadway/amqp"
)

// Sender drains the notification queue into Telegram
type Sender struct {
	context *context.Context
}

func NewSender(context *context.Context) *Sender {
	log.Println("[SENDER] Creating new message sender")
	return &Sender{
		context: context,
	}
}

// Handler decodes one queued operation by its message_type header and performs it
func (s *Sender) Handler(data []byte, headers amqp.Table) {
	messageType, _ := headers["message_type"].(string)

	switch messageType {
	case rabbit.MessageTypeCallbackAnswer:
		var callbackBag rabbit.CallbackAnswerBag
		if err := json.Unmarshal(data, &callbackBag); err != nil {
			log.Printf("[SENDER] Failed to unmarshal callback answer: %v", err)
			return
		}
		s.deliver("callback_answer", callbackBag.CallbackAnswer.CallbackQueryID, func() error {
			_, err := s.context.GetBot().AnswerCallbackQuery(callbackBag.CallbackAnswer)
			return err
		})
	case rabbit.MessageTypeEditMessage:
		var editBag rabbit.EditMessageBag
		if err := json.Unmarshal(data, &editBag); err != nil {
			log.Printf("[SENDER] Failed to unmarshal edit message: %v", err)
			return
		}
		target := "message " + strconv.Itoa(editBag.EditMessage.MessageID) +
			" in chat " + strconv.FormatInt(editBag.EditMessage.ChatID, 10)
		s.deliver("edit_message", target, func() error {
			_, err := s.context.GetBot().Send(editBag.EditMessage)
			return err
		})
	default:
		var messageBag rabbit.MessageBag
		if err := json.Unmarshal(data, &messageBag); err != nil {
			log.Printf("[SENDER] Failed to unmarshal regular message: %v", err)
			return
		}
		target := "chat " + strconv.FormatInt(messageBag.Message.ChatID, 10)
		s.deliver("regular", target, func() error {
			_, err := s.context.GetBot().Send(messageBag.Message)
			return err
		})
	}
}

// deliver runs one Telegram call and records its outcome
func (s *Sender) deliver(kind string, target string, call func() error) {
	startTime := time.Now()
	err := call()
	duration := time.Since(startTime)

	if err != nil {
		log.Printf("[SENDER] ERROR delivering %s to %s: %v (duration: %v)", kind, target, err, duration)
		metrics.RecordTelegramMessage(kind, "failed", strconv.Itoa(extractErrorCode(err)))
		return
	}

	log.Printf("[SENDER] Delivered %s to %s (duration: %v)", kind, target, duration)
	metrics.RecordTelegramMessage(kind, "sent", "none")
}

func (s *Sender) Start() {
	log.Println("[SENDER] Starting message sender service")

	// Rate limiting is handled in the RabbitClient
	s.context.RabbitConsume.RegisterHandler(s.Handler)

	log.Println("[SENDER] Message sender service started successfully")
}

// httpErrorCodeRegex matches HTTP status codes (4xx or 5xx) in error messages
// without picking up digits of phone numbers or longer numbers
var httpErrorCodeRegex = regexp.MustCompile(`(?:^|\s|:|\(|-)([4-5]\d{2})(?:\s|$|:|!|\)|,)`)

// extractErrorCode extracts HTTP error code from Telegram API error using regex
func extractErrorCode(err error) int {
	if err == nil {
		return 200
	}

	matches := httpErrorCodeRegex.FindStringSubmatch(err.Error())
	if len(matches) >= 2 {
		if code, parseErr := strconv.Atoi(matches[1]); parseErr == nil {
			return code
		}
	}

	return 0 // no HTTP code found
}

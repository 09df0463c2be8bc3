package rabbit

import (
	"encoding/json"
	"log"
	"time"

	"dealbot/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/streadway/amqp"
	"go.uber.org/ratelimit"
)

// Values of the message_type header. Messages without the header are MessageBags.
const (
	MessageTypeCallbackAnswer = "callback_answer"
	MessageTypeEditMessage    = "edit_message"
)

// Telegram allows about 30 messages per second per bot
const deliveriesPerSecond = 30

type RabbitClient struct {
	url        string
	queueName  string
	connection *amqp.Connection
	channel    *amqp.Channel
}

type Handler func(data []byte, headers amqp.Table)

// MessageBag is a queued notification to a deal participant
type MessageBag struct {
	Message  tgbotapi.MessageConfig
	Priority uint8 // 0..255
}

// CallbackAnswerBag represents a callback query answer
type CallbackAnswerBag struct {
	CallbackAnswer tgbotapi.CallbackConfig
	Priority       uint8 // Should always be 255 for instant response
}

// EditMessageBag represents a message edit operation
type EditMessageBag struct {
	EditMessage tgbotapi.EditMessageTextConfig
	Priority    uint8
}

func NewRabbitClient(url string, queueName string) *RabbitClient {
	log.Printf("[RABBIT] Creating new RabbitMQ client for queue: %s", queueName)

	client := &RabbitClient{
		url:       url,
		queueName: queueName,
	}

	if err := client.connect(); err != nil {
		log.Printf("[RABBIT] Initial connection failed: %v. Will retry...", err)
	}

	return client
}

func (c *RabbitClient) connect() error {
	log.Printf("[RABBIT] Connecting to RabbitMQ at %s", c.url)

	c.Close()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	c.connection = conn

	ch, err := c.connection.Channel()
	if err != nil {
		c.connection.Close()
		return err
	}
	c.channel = ch

	// Priority queue: callback answers overtake notifications
	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-max-priority": int32(10)},
	)
	if err != nil {
		c.channel.Close()
		c.connection.Close()
		return err
	}

	log.Printf("[RABBIT] Connected successfully to queue: %s", c.queueName)
	return nil
}

func (c *RabbitClient) isConnectionOpen() bool {
	if c.connection == nil || c.connection.IsClosed() || c.channel == nil {
		return false
	}

	// A passive declare fails once the channel is gone
	_, err := c.channel.QueueDeclarePassive(c.queueName, true, false, false, false, nil)
	return err == nil
}

func (c *RabbitClient) ensureConnection() error {
	if !c.isConnectionOpen() {
		log.Printf("[RABBIT] Connection is closed, attempting to reconnect...")
		return c.connect()
	}
	return nil
}

func (c *RabbitClient) reset() {
	c.channel = nil
	c.connection = nil
}

// publish marshals payload and puts it on the queue
func (c *RabbitClient) publish(payload interface{}, priority uint8, headers amqp.Table) error {
	if err := c.ensureConnection(); err != nil {
		log.Printf("[RABBIT] Failed to establish connection: %v", err)
		metrics.RecordRabbitMQMessage("published", c.queueName, false)
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[RABBIT] Failed to marshal payload: %v", err)
		return err
	}

	err = c.channel.Publish(
		"",          // exchange
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Priority:     priority,
			Headers:      headers,
		},
	)
	if err != nil {
		log.Printf("[RABBIT] Failed to publish: %v", err)
		c.reset()
		metrics.RecordRabbitMQMessage("published", c.queueName, false)
		return err
	}

	metrics.RecordRabbitMQMessage("published", c.queueName, true)
	return nil
}

func (c *RabbitClient) PublishTgMessage(messageBag MessageBag) error {
	log.Printf("[RABBIT] Publishing message to user %d with priority %d",
		messageBag.Message.ChatID, messageBag.Priority)
	return c.publish(messageBag, messageBag.Priority, nil)
}

// PublishCallbackAnswer publishes a callback query answer
func (c *RabbitClient) PublishCallbackAnswer(callbackBag CallbackAnswerBag) error {
	log.Printf("[RABBIT] Publishing callback answer %s with priority %d",
		callbackBag.CallbackAnswer.CallbackQueryID, callbackBag.Priority)
	return c.publish(callbackBag, callbackBag.Priority, amqp.Table{"message_type": MessageTypeCallbackAnswer})
}

// PublishEditMessage publishes a message edit operation
func (c *RabbitClient) PublishEditMessage(editBag EditMessageBag) error {
	log.Printf("[RABBIT] Publishing message edit for message %d in chat %d with priority %d",
		editBag.EditMessage.MessageID, editBag.EditMessage.ChatID, editBag.Priority)
	return c.publish(editBag, editBag.Priority, amqp.Table{"message_type": MessageTypeEditMessage})
}

// RegisterHandler consumes the queue in the background at no more than
// deliveriesPerSecond, reconnecting whenever the channel drops.
func (c *RabbitClient) RegisterHandler(handler Handler) {
	log.Printf("[RABBIT] Registering message handler for queue: %s", c.queueName)

	rl := ratelimit.New(deliveriesPerSecond)

	go func() {
		for {
			if err := c.ensureConnection(); err != nil {
				log.Printf("[RABBIT] Reconnection failed: %v. Retrying in 5 seconds...", err)
				time.Sleep(5 * time.Second)
				continue
			}

			msgs, err := c.channel.Consume(
				c.queueName,
				"",    // consumer tag
				false, // auto-ack
				false, // exclusive
				false, // no-local
				false, // no-wait
				nil,   // args
			)
			if err != nil {
				log.Printf("[RABBIT] Failed to register consumer: %v", err)
				c.reset()
				time.Sleep(5 * time.Second)
				continue
			}

			log.Printf("[RABBIT] Consumer registered, waiting for messages...")

			for msg := range msgs {
				rl.Take()

				handler(msg.Body, msg.Headers)

				if err := msg.Ack(false); err != nil {
					log.Printf("[RABBIT] Failed to acknowledge message: %v", err)
					metrics.RecordRabbitMQMessage("consumed", c.queueName, false)
				} else {
					metrics.RecordRabbitMQMessage("consumed", c.queueName, true)
				}
			}

			log.Printf("[RABBIT] Consumer channel closed, reconnecting...")
			c.reset()
		}
	}()
}

func (c *RabbitClient) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.connection != nil && !c.connection.IsClosed() {
		log.Printf("[RABBIT] Closing RabbitMQ connection")
		c.connection.Close()
	}
}

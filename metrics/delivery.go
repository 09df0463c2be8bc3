package metrics

import (
	"log"
	"strconv"
)

// RecordTelegramMessage records Telegram message delivery tracking
func RecordTelegramMessage(messageType, status, errorCode string) {
	if !IsEnabled() {
		return
	}

	incCounter(`dealbot_telegram_messages_total{message_type="` + messageType + `",status="` + status + `",error_code="` + errorCode + `"}`)
	log.Printf("[METRICS] Telegram message: type=%s, status=%s, error=%s", messageType, status, errorCode)
}

// RecordRabbitMQMessage records RabbitMQ message processing
func RecordRabbitMQMessage(operation, queue string, success bool) {
	if !IsEnabled() {
		return
	}

	incCounter(`dealbot_rabbitmq_messages_total{operation="` + operation + `",queue="` + queue + `",success="` + strconv.FormatBool(success) + `"}`)
	log.Printf("[METRICS] RabbitMQ message: operation=%s, queue=%s, success=%t", operation, queue, success)
}

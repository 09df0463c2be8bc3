package objects

import (
	"time"
)

// ConversationMessage is the audit record of one relayed exchange
type ConversationMessage struct {
	ID                 int64
	DealID             int64
	SenderID           int64
	ReceiverID         int64
	OriginalMessageID  int
	ForwardedMessageID *int // nil when delivery could not be confirmed
	Text               string
	HasMedia           bool
	ContentKind        string
	CreatedAt          time.Time
}

// NewConversationMessage creates a record for a relay attempt
func NewConversationMessage(dealID, senderID, receiverID int64, originalMessageID int) *ConversationMessage {
	return &ConversationMessage{
		DealID:            dealID,
		SenderID:          senderID,
		ReceiverID:        receiverID,
		OriginalMessageID: originalMessageID,
		CreatedAt:         time.Now().UTC(),
	}
}

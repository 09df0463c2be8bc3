package objects

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type constants
const (
	DealEventCreativeApproved = "creative_approved"
	DealEventCreativeRejected = "creative_rejected"
)

// DealEvent is an append-only audit record of one deal status transition
type DealEvent struct {
	ID         int64
	EventID    uuid.UUID
	DealID     int64
	FromStatus DealStatus
	ToStatus   DealStatus
	ActorID    *int64 // nullable for system actors
	EventType  string
	Payload    json.RawMessage // nullable
	CreatedAt  time.Time
}

// RejectionPayload is the structured payload of a creative_rejected event
type RejectionPayload struct {
	Reason string `json:"reason"`
}

// NewDealEvent creates a new event with a fresh event id
func NewDealEvent(dealID int64, from, to DealStatus, actorID *int64, eventType string, payload interface{}) (*DealEvent, error) {
	event := &DealEvent{
		EventID:    uuid.New(),
		DealID:     dealID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		EventType:  eventType,
		CreatedAt:  time.Now().UTC(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Payload = raw
	}

	return event, nil
}

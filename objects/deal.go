package objects

import (
	"time"
)

// DealStatus is the externally visible lifecycle status of a deal
type DealStatus string

// Deal status constants
const (
	DealStatusAgreed          DealStatus = "agreed"
	DealStatusAwaitingPayment DealStatus = "awaiting_payment"
	DealStatusPaid            DealStatus = "paid"
	DealStatusCreativeDraft   DealStatus = "creative_draft"
	DealStatusCreativeReview  DealStatus = "creative_review"
	DealStatusScheduled       DealStatus = "scheduled"
	DealStatusPosted          DealStatus = "posted"
	DealStatusCompleted       DealStatus = "completed"
	DealStatusVerified        DealStatus = "verified"
	DealStatusCancelled       DealStatus = "cancelled"
	DealStatusRefunded        DealStatus = "refunded"
	DealStatusExpired         DealStatus = "expired"
)

// MediaRef is one attachment of a creative: a content kind plus an opaque
// Telegram file id.
type MediaRef struct {
	Kind   string `json:"kind"`
	FileID string `json:"file_id"`
}

// Deal is the negotiation subject between an advertiser and a channel owner
type Deal struct {
	ID              int64
	AdvertiserID    int64 // Telegram id of the initiator
	PublisherID     int64 // Telegram id of the counterparty
	Status          DealStatus
	CreativeText    string
	CreativeMedia   []MediaRef
	RejectionReason *string    // nullable
	ScheduledTime   *time.Time // nullable
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasParticipant reports whether userId is one of the two parties
func (d *Deal) HasParticipant(userId int64) bool {
	return userId == d.AdvertiserID || userId == d.PublisherID
}

// CounterpartOf returns the other party of the deal
func (d *Deal) CounterpartOf(userId int64) (int64, bool) {
	switch userId {
	case d.AdvertiserID:
		return d.PublisherID, true
	case d.PublisherID:
		return d.AdvertiserID, true
	}
	return 0, false
}

package session

import (
	"dealbot/messaging"
)

// State of a participant inside the creative-approval workflow
type State int

const (
	StateAwaitingCreativePost    State = 100
	StateAwaitingPeerReview      State = 200
	StateAwaitingRejectionReason State = 300
)

func (s State) String() string {
	switch s {
	case StateAwaitingCreativePost:
		return "awaiting_creative_post"
	case StateAwaitingPeerReview:
		return "awaiting_peer_review"
	case StateAwaitingRejectionReason:
		return "awaiting_rejection_reason"
	}
	return "none"
}

// Role of a participant in one creative round
type Role string

const (
	RoleSubmitter Role = "submitter"
	RoleReviewer  Role = "reviewer"
)

// RelaySession routes a participant's messages to the counterpart of a deal
type RelaySession struct {
	CounterpartID int64
	DealID        int64
}

// Preview is the submitter's own copy of a pending creative
type Preview struct {
	Content   messaging.Content
	MessageID int // preview message in the submitter's chat, for cleanup
}

// NegotiationSession tracks one participant's position in the workflow.
// Preview is only set for the submitter while a draft awaits self-review.
type NegotiationSession struct {
	DealID  int64
	State   State
	Role    Role
	Preview *Preview
}

// HasPreview reports whether a draft is pending self-review
func (s NegotiationSession) HasPreview() bool {
	return s.Preview != nil
}

// Package negotiation runs the creative approval workflow: the submitter
// posts a creative, confirms it, and the other party approves or rejects it
// with a reason. Rejection loops back to a new submission.
package negotiation

import (
	"errors"
	"fmt"
	"log"

	"dealbot/context"
	"dealbot/messaging"
	"dealbot/objects"
	"dealbot/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// EnterAwaitingCreativePost starts a fresh submission for participant.
// Any relay session of the participant is cleared.
func EnterAwaitingCreativePost(c *context.Context, participant *objects.User, deal *objects.Deal) {
	log.Printf("[NEGOTIATION] User %d submits a creative for deal %d", participant.UserId, deal.ID)

	c.Sessions.SwitchToNegotiation(participant.UserId, session.NegotiationSession{
		DealID: deal.ID,
		State:  session.StateAwaitingCreativePost,
		Role:   session.RoleSubmitter,
	})

	notify(c, participant, fmt.Sprintf(participant.Locale().Get("negotiation.post_prompt"), deal.ID))
}

// TryIntercept hands message to the workflow when user has a negotiation
// session. It returns false when the message is not a workflow interaction.
func TryIntercept(c *context.Context, user *objects.User, message *tgbotapi.Message) (bool, error) {
	negotiationSession, ok := c.Sessions.Negotiation(user.UserId)
	if !ok {
		return false, nil
	}
	return true, HandleMessage(c, user, negotiationSession, message)
}

// HandleMessage processes a message sent while in the workflow
func HandleMessage(c *context.Context, user *objects.User, negotiationSession session.NegotiationSession, message *tgbotapi.Message) error {
	log.Printf("[NEGOTIATION] Message from user %d in state %s (deal %d)",
		user.UserId, negotiationSession.State, negotiationSession.DealID)

	switch negotiationSession.State {
	case session.StateAwaitingCreativePost:
		return handleCreativePost(c, user, negotiationSession, message)
	case session.StateAwaitingRejectionReason:
		return handleRejectionReason(c, user, negotiationSession, message)
	case session.StateAwaitingPeerReview:
		return handleWhileAwaitingReview(c, user, negotiationSession)
	}

	log.Printf("[NEGOTIATION] Unknown state %d for user %d, clearing", negotiationSession.State, user.UserId)
	c.Sessions.RemoveNegotiation(user.UserId)
	return nil
}

// handleWhileAwaitingReview answers a message sent while the creative is out
// for review. The wait ends once the deal leaves the creative statuses or the
// reviewer no longer holds the review.
func handleWhileAwaitingReview(c *context.Context, user *objects.User, negotiationSession session.NegotiationSession) error {
	deal, counterpartID, err := loadDeal(c, user, negotiationSession.DealID)
	if err != nil {
		return err
	}
	if !objects.IsEligibleForRelay(deal.Status) || !objects.IsCreativeEligible(deal.Status) {
		return abortInvalidState(c, user, deal, nil)
	}

	if negotiationSession.Role == session.RoleReviewer {
		notify(c, user, user.Locale().Get("negotiation.review_pending"))
		return nil
	}

	if !holdsReview(c, counterpartID, deal.ID) {
		log.Printf("[NEGOTIATION] Reviewer %d dropped the review of deal %d, releasing user %d",
			counterpartID, deal.ID, user.UserId)
		c.Sessions.RemoveNegotiation(user.UserId)
		notify(c, user, fmt.Sprintf(user.Locale().Get("negotiation.review_closed"), deal.ID))
		return fmt.Errorf("review of deal %d dropped: %w", deal.ID, objects.ErrSessionExpired)
	}

	notify(c, user, user.Locale().Get("negotiation.waiting_for_review"))
	return nil
}

// holdsReview reports whether participantId is still reviewing dealID
func holdsReview(c *context.Context, participantId, dealID int64) bool {
	current, ok := c.Sessions.Negotiation(participantId)
	return ok && current.DealID == dealID && current.Role == session.RoleReviewer
}

// HandleCallback dispatches a workflow button press
func HandleCallback(c *context.Context, user *objects.User, action string, dealID int64) error {
	switch action {
	case messaging.ActionSelfApprove:
		return HandleSelfApprove(c, user, dealID)
	case messaging.ActionSelfDiscard:
		return HandleSelfDiscard(c, user, dealID)
	case messaging.ActionPeerApprove:
		return HandlePeerApprove(c, user, dealID)
	case messaging.ActionPeerReject:
		return HandlePeerReject(c, user, dealID)
	}
	return fmt.Errorf("unknown workflow action %q", action)
}

// currentSession returns the participant's session for dealID in the
// expected state and role. A missing session or one for another deal is
// cleared. A stale button for the right deal leaves the session alone.
func currentSession(c *context.Context, user *objects.User, dealID int64, state session.State, role session.Role) (session.NegotiationSession, error) {
	negotiationSession, ok := c.Sessions.Negotiation(user.UserId)
	if !ok || negotiationSession.DealID != dealID {
		log.Printf("[NEGOTIATION] User %d has no session for deal %d", user.UserId, dealID)
		if ok {
			c.Sessions.RemoveNegotiation(user.UserId)
		}
		notify(c, user, user.Locale().Get("errors.session_expired"))
		return session.NegotiationSession{}, fmt.Errorf("deal %d: %w", dealID, objects.ErrSessionExpired)
	}

	if negotiationSession.State != state || negotiationSession.Role != role {
		log.Printf("[NEGOTIATION] User %d is %s/%s on deal %d, expected %s/%s",
			user.UserId, negotiationSession.State, negotiationSession.Role, dealID, state, role)
		notify(c, user, user.Locale().Get("errors.session_expired"))
		return session.NegotiationSession{}, fmt.Errorf("deal %d in state %s: %w", dealID, negotiationSession.State, objects.ErrSessionExpired)
	}

	return negotiationSession, nil
}

// loadDeal fetches the deal of the interaction. A missing deal, or one the
// user is not a party of, ends the user's session.
func loadDeal(c *context.Context, user *objects.User, dealID int64) (*objects.Deal, int64, error) {
	deal, err := c.Repo.GetDealByID(dealID)
	if err != nil {
		return nil, 0, fmt.Errorf("load deal %d: %w", dealID, err)
	}

	var counterpartID int64
	ok := deal != nil
	if ok {
		counterpartID, ok = deal.CounterpartOf(user.UserId)
	}
	if !ok {
		log.Printf("[NEGOTIATION] Deal %d not available to user %d", dealID, user.UserId)
		c.Sessions.RemoveNegotiation(user.UserId)
		notify(c, user, user.Locale().Get("errors.deal_not_found"))
		return nil, 0, fmt.Errorf("deal %d: %w", dealID, objects.ErrDealNotFound)
	}

	return deal, counterpartID, nil
}

// abortInvalidState ends the workflow on deal because it left the creative
// statuses. The counterpart is released too, unless they are writing a
// rejection reason: a late reason is still recorded.
func abortInvalidState(c *context.Context, user *objects.User, deal *objects.Deal, cause error) error {
	log.Printf("[NEGOTIATION] Deal %d is %s, creative workflow closed for user %d", deal.ID, deal.Status, user.UserId)
	c.Sessions.RemoveNegotiation(user.UserId)
	notify(c, user, fmt.Sprintf(user.Locale().Get("errors.invalid_state"), deal.ID))

	if counterpartID, ok := deal.CounterpartOf(user.UserId); ok {
		current, found := c.Sessions.Negotiation(counterpartID)
		if found && current.DealID == deal.ID && current.State != session.StateAwaitingRejectionReason {
			if current.HasPreview() {
				messaging.DeleteQuietly(c.GetBot(), counterpartID, current.Preview.MessageID)
			}
			c.Sessions.RemoveNegotiationFor(counterpartID, deal.ID)
			counterpart := lookupUser(c, counterpartID)
			// counterpart did not act, so their notice yields to direct replies
			c.SendWithPriority(messaging.NewHTMLMessage(counterpartID,
				fmt.Sprintf(counterpart.Locale().Get("errors.invalid_state"), deal.ID)), 150)
		}
	}

	if cause != nil {
		return cause
	}
	return fmt.Errorf("deal %d is %s: %w", deal.ID, deal.Status, objects.ErrInvalidDealState)
}

func isInvalidState(err error) bool {
	return errors.Is(err, objects.ErrInvalidDealState)
}

func notify(c *context.Context, user *objects.User, text string) {
	c.Send(messaging.NewHTMLMessage(user.UserId, text))
}

// lookupUser returns the registered participant or a bare stand-in with the
// default language
func lookupUser(c *context.Context, userId int64) *objects.User {
	if user := c.Repo.FindUser(userId); user != nil {
		return user
	}
	return &objects.User{UserId: userId}
}

func keyboard(buttons ...tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	return &markup
}

package negotiation

import (
	"fmt"
	"log"

	"dealbot/context"
	"dealbot/messaging"
	"dealbot/metrics"
	"dealbot/objects"
	"dealbot/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// handleCreativePost shows the submitter their creative with confirm and
// discard buttons and keeps it as the pending preview
func handleCreativePost(c *context.Context, user *objects.User, negotiationSession session.NegotiationSession, message *tgbotapi.Message) error {
	content := messaging.ContentFromMessage(message)
	if content.Kind == messaging.KindOther {
		notify(c, user, user.Locale().Get("negotiation.unsupported_content"))
		return fmt.Errorf("creative of kind %s: %w", content.Kind, objects.ErrValidation)
	}

	deal, _, err := loadDeal(c, user, negotiationSession.DealID)
	if err != nil {
		return err
	}
	if !objects.IsCreativeEligible(deal.Status) {
		return abortInvalidState(c, user, deal, nil)
	}

	// A new submission replaces the pending one
	if negotiationSession.HasPreview() {
		messaging.DeleteQuietly(c.GetBot(), user.UserId, negotiationSession.Preview.MessageID)
		negotiationSession.Preview = nil
	}

	markup := keyboard(
		tgbotapi.NewInlineKeyboardButtonData(user.Locale().Get("negotiation.self_approve_button"),
			messaging.CallbackData(messaging.ActionSelfApprove, deal.ID)),
		tgbotapi.NewInlineKeyboardButtonData(user.Locale().Get("negotiation.self_discard_button"),
			messaging.CallbackData(messaging.ActionSelfDiscard, deal.ID)),
	)
	header := fmt.Sprintf(user.Locale().Get("negotiation.preview_header"), deal.ID)

	sent, err := messaging.SendOutgoing(c.GetBot(), messaging.BuildOutgoing(user.UserId, content, header, markup))
	if err != nil {
		c.Sessions.UpdateNegotiation(user.UserId, negotiationSession)
		return fmt.Errorf("preview for deal %d: %w: %v", deal.ID, objects.ErrDeliveryFailed, err)
	}

	negotiationSession.Preview = &session.Preview{Content: content, MessageID: sent.MessageID}
	c.Sessions.UpdateNegotiation(user.UserId, negotiationSession)
	metrics.RecordWorkflowAction("submit", string(content.Kind))

	log.Printf("[NEGOTIATION] Preview %d of deal %d shown to user %d", sent.MessageID, deal.ID, user.UserId)
	return nil
}

// HandleSelfApprove commits the pending preview as the deal's creative and
// sends it to the other party for review
func HandleSelfApprove(c *context.Context, user *objects.User, dealID int64) error {
	log.Printf("[NEGOTIATION] User %d confirms creative of deal %d", user.UserId, dealID)

	negotiationSession, err := currentSession(c, user, dealID, session.StateAwaitingCreativePost, session.RoleSubmitter)
	if err != nil {
		return err
	}
	if !negotiationSession.HasPreview() {
		notify(c, user, fmt.Sprintf(user.Locale().Get("negotiation.post_prompt"), dealID))
		return fmt.Errorf("deal %d has no pending creative: %w", dealID, objects.ErrSessionExpired)
	}

	deal, reviewerID, err := loadDeal(c, user, dealID)
	if err != nil {
		return err
	}
	if !objects.IsCreativeEligible(deal.Status) {
		return abortInvalidState(c, user, deal, nil)
	}

	preview := negotiationSession.Preview
	err = c.Repo.UpdateDealCreative(deal.ID, preview.Content.Text, preview.Content.MediaRefs())
	if err != nil {
		if isInvalidState(err) {
			return abortInvalidState(c, user, deal, err)
		}
		return fmt.Errorf("commit creative of deal %d: %w", deal.ID, err)
	}

	reviewer := lookupUser(c, reviewerID)
	markup := keyboard(
		tgbotapi.NewInlineKeyboardButtonData(reviewer.Locale().Get("negotiation.peer_approve_button"),
			messaging.CallbackData(messaging.ActionPeerApprove, deal.ID)),
		tgbotapi.NewInlineKeyboardButtonData(reviewer.Locale().Get("negotiation.peer_reject_button"),
			messaging.CallbackData(messaging.ActionPeerReject, deal.ID)),
	)
	header := fmt.Sprintf(reviewer.Locale().Get("negotiation.review_header"), user.DisplayName(), deal.ID)

	_, err = messaging.SendOutgoing(c.GetBot(), messaging.BuildOutgoing(reviewerID, preview.Content, header, markup))
	if err != nil {
		// The creative stays committed; the preview is kept so the submitter can retry
		notify(c, user, user.Locale().Get("negotiation.review_delivery_failed"))
		metrics.RecordWorkflowAction("self_approve", "delivery_failed")
		return fmt.Errorf("send creative of deal %d to %d: %w: %v", deal.ID, reviewerID, objects.ErrDeliveryFailed, err)
	}

	messaging.DeleteQuietly(c.GetBot(), user.UserId, preview.MessageID)

	c.Sessions.UpdateNegotiation(user.UserId, session.NegotiationSession{
		DealID: deal.ID,
		State:  session.StateAwaitingPeerReview,
		Role:   session.RoleSubmitter,
	})
	c.Sessions.SwitchToNegotiation(reviewerID, session.NegotiationSession{
		DealID: deal.ID,
		State:  session.StateAwaitingPeerReview,
		Role:   session.RoleReviewer,
	})

	notify(c, user, fmt.Sprintf(user.Locale().Get("negotiation.submitted"), messaging.EscapeHTML(reviewer.DisplayName())))
	metrics.RecordWorkflowAction("self_approve", "ok")
	return nil
}

// HandleSelfDiscard drops the pending preview. The submitter may post again.
func HandleSelfDiscard(c *context.Context, user *objects.User, dealID int64) error {
	log.Printf("[NEGOTIATION] User %d discards creative of deal %d", user.UserId, dealID)

	negotiationSession, err := currentSession(c, user, dealID, session.StateAwaitingCreativePost, session.RoleSubmitter)
	if err != nil {
		return err
	}

	if negotiationSession.HasPreview() {
		messaging.DeleteQuietly(c.GetBot(), user.UserId, negotiationSession.Preview.MessageID)
		negotiationSession.Preview = nil
		c.Sessions.UpdateNegotiation(user.UserId, negotiationSession)
	}

	notify(c, user, fmt.Sprintf(user.Locale().Get("negotiation.discarded"), dealID))
	metrics.RecordWorkflowAction("self_discard", "ok")
	return nil
}

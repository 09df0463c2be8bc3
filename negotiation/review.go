package negotiation

import (
	"fmt"
	"log"
	"strings"

	"dealbot/bugsink"
	"dealbot/context"
	"dealbot/messaging"
	"dealbot/metrics"
	"dealbot/objects"
	"dealbot/session"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// HandlePeerApprove accepts the submitted creative and schedules the deal.
// Both parties leave the workflow.
func HandlePeerApprove(c *context.Context, user *objects.User, dealID int64) error {
	log.Printf("[NEGOTIATION] User %d approves creative of deal %d", user.UserId, dealID)

	if _, err := currentSession(c, user, dealID, session.StateAwaitingPeerReview, session.RoleReviewer); err != nil {
		return err
	}

	deal, submitterID, err := loadDeal(c, user, dealID)
	if err != nil {
		return err
	}
	if !objects.IsCreativeEligible(deal.Status) {
		return abortInvalidState(c, user, deal, nil)
	}

	toStatus := objects.StatusAfterDecision(deal.Status, objects.DecisionApprove)
	if err := recordDecision(c, user, deal, toStatus, objects.DealEventCreativeApproved, nil, nil); err != nil {
		return err
	}

	c.Sessions.RemoveNegotiationFor(user.UserId, deal.ID)
	c.Sessions.RemoveNegotiationFor(submitterID, deal.ID)

	submitter := lookupUser(c, submitterID)
	notify(c, user, fmt.Sprintf(user.Locale().Get("negotiation.approved_reviewer"), deal.ID))
	notify(c, submitter, fmt.Sprintf(submitter.Locale().Get("negotiation.approved_submitter"), deal.ID))
	return nil
}

// HandlePeerReject asks the reviewer why the creative is rejected
func HandlePeerReject(c *context.Context, user *objects.User, dealID int64) error {
	log.Printf("[NEGOTIATION] User %d rejects creative of deal %d", user.UserId, dealID)

	negotiationSession, err := currentSession(c, user, dealID, session.StateAwaitingPeerReview, session.RoleReviewer)
	if err != nil {
		return err
	}

	if _, _, err := loadDeal(c, user, dealID); err != nil {
		return err
	}

	c.Sessions.RemoveRelay(user.UserId)
	negotiationSession.State = session.StateAwaitingRejectionReason
	c.Sessions.UpdateNegotiation(user.UserId, negotiationSession)

	notify(c, user, user.Locale().Get("negotiation.ask_reason"))
	metrics.RecordWorkflowAction("peer_reject", "ok")
	return nil
}

// handleRejectionReason records the reviewer's reason and sends the
// submitter back to a new submission. A deal that already left the creative
// statuses keeps its status; the reason and the event are still recorded.
func handleRejectionReason(c *context.Context, user *objects.User, negotiationSession session.NegotiationSession, message *tgbotapi.Message) error {
	reason := message.Text
	if strings.TrimSpace(reason) == "" {
		notify(c, user, user.Locale().Get("negotiation.reason_required"))
		return fmt.Errorf("empty rejection reason for deal %d: %w", negotiationSession.DealID, objects.ErrValidation)
	}

	deal, submitterID, err := loadDeal(c, user, negotiationSession.DealID)
	if err != nil {
		return err
	}

	toStatus := objects.StatusAfterDecision(deal.Status, objects.DecisionReject)
	payload := objects.RejectionPayload{Reason: reason}
	if err := recordDecision(c, user, deal, toStatus, objects.DealEventCreativeRejected, payload, &reason); err != nil {
		return err
	}

	c.Sessions.Clear(user.UserId)
	c.Sessions.SwitchToNegotiation(submitterID, session.NegotiationSession{
		DealID: deal.ID,
		State:  session.StateAwaitingCreativePost,
		Role:   session.RoleSubmitter,
	})

	submitter := lookupUser(c, submitterID)
	notify(c, user, fmt.Sprintf(user.Locale().Get("negotiation.rejection_sent"), deal.ID))
	notify(c, submitter, fmt.Sprintf(submitter.Locale().Get("negotiation.rejected_submitter"),
		deal.ID, messaging.EscapeHTML(reason)))
	return nil
}

// recordDecision stores the status change, the optional rejection reason and
// the audit event in one unit of work
func recordDecision(c *context.Context, user *objects.User, deal *objects.Deal, toStatus objects.DealStatus,
	eventType string, payload interface{}, rejectionReason *string) error {
	actorID := user.UserId
	event, err := objects.NewDealEvent(deal.ID, deal.Status, toStatus, &actorID, eventType, payload)
	if err != nil {
		return fmt.Errorf("build %s event for deal %d: %w", eventType, deal.ID, err)
	}

	if err := c.Repo.RecordCreativeDecision(event, rejectionReason); err != nil {
		if isInvalidState(err) {
			return abortInvalidState(c, user, deal, err)
		}
		return fmt.Errorf("record %s for deal %d: %w", eventType, deal.ID, err)
	}

	log.Printf("[NEGOTIATION] Deal %d: %s -> %s (%s by %d)", deal.ID, deal.Status, toStatus, eventType, user.UserId)
	bugsink.AddBreadcrumb(fmt.Sprintf("deal %d: %s -> %s by %d", deal.ID, deal.Status, toStatus, user.UserId),
		eventType, sentry.LevelInfo)
	metrics.RecordWorkflowTransition(string(deal.Status), string(toStatus))
	return nil
}

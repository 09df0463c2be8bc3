// Package relay forwards messages between the two parties of a deal while
// a relay session is open.
package relay

import (
	"fmt"
	"log"

	"dealbot/bugsink"
	"dealbot/context"
	"dealbot/messaging"
	"dealbot/metrics"
	"dealbot/objects"
	"dealbot/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// OpenSession routes participant's next messages to counterpart. Callers
// validate the deal beforehand.
func OpenSession(c *context.Context, participant, counterpart int64, dealID int64) {
	c.Sessions.SwitchToRelay(participant, session.RelaySession{
		CounterpartID: counterpart,
		DealID:        dealID,
	})
	metrics.RecordRelaySession("opened")
}

// TryForwardMessage relays message to the counterpart when user has a relay
// session. It returns false when the message is not a relay interaction.
func TryForwardMessage(c *context.Context, user *objects.User, message *tgbotapi.Message) (bool, error) {
	relaySession, ok := c.Sessions.Relay(user.UserId)
	if !ok {
		return false, nil
	}

	log.Printf("[RELAY] User %d relays to %d on deal %d", user.UserId, relaySession.CounterpartID, relaySession.DealID)

	deal, err := c.Repo.GetDealByID(relaySession.DealID)
	if err != nil {
		return true, fmt.Errorf("load deal %d: %w", relaySession.DealID, err)
	}
	if deal == nil {
		log.Printf("[RELAY] Deal %d disappeared, closing session of user %d", relaySession.DealID, user.UserId)
		c.Sessions.RemoveRelay(user.UserId)
		metrics.RecordRelaySession("deal_missing")
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("errors.deal_not_found")))
		return true, fmt.Errorf("relay on deal %d: %w", relaySession.DealID, objects.ErrDealNotFound)
	}

	if !objects.IsEligibleForRelay(deal.Status) {
		log.Printf("[RELAY] Deal %d is %s, ending conversation of user %d", deal.ID, deal.Status, user.UserId)
		c.Sessions.RemoveRelay(user.UserId)
		metrics.RecordRelaySession("ended")
		c.Send(messaging.NewHTMLMessage(user.UserId, fmt.Sprintf(user.Locale().Get("relay.ended"), deal.ID)))
		return true, nil
	}

	counterpartID := relaySession.CounterpartID
	recipient := lookupUser(c, counterpartID)

	var markup *tgbotapi.InlineKeyboardMarkup
	if !hasReciprocalSession(c, counterpartID, user.UserId, deal.ID) {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				recipient.Locale().Get("relay.reply_button"),
				messaging.CallbackData(messaging.ActionChat, deal.ID),
			),
		))
		markup = &keyboard
	}

	content := messaging.ContentFromMessage(message)
	header := fmt.Sprintf(recipient.Locale().Get("relay.header"), user.DisplayName(), deal.ID)
	out := messaging.BuildOutgoing(counterpartID, content, header, markup)

	sent, sendErr := messaging.SendOutgoing(c.GetBot(), out)

	record := objects.NewConversationMessage(deal.ID, user.UserId, counterpartID, message.MessageID)
	record.Text = content.Text
	record.HasMedia = content.HasMedia()
	record.ContentKind = string(content.Kind)
	if sendErr == nil {
		record.ForwardedMessageID = &sent.MessageID
	}
	metrics.RecordRelayMessage(string(content.Kind), sendErr == nil)

	// The message already reached the counterpart, so a failed audit write
	// is reported but never shown to the sender
	if err := c.Repo.CreateConversationMessage(record); err != nil {
		log.Printf("[RELAY] Failed to log message of deal %d: %v", deal.ID, err)
		bugsink.CaptureError(fmt.Errorf("log relayed message of deal %d: %w", deal.ID, err), map[string]interface{}{
			"deal_id":   deal.ID,
			"sender":    user.UserId,
			"recipient": counterpartID,
			"delivered": sendErr == nil,
		})
	}

	if sendErr != nil {
		log.Printf("[RELAY] Delivery to %d failed: %v", counterpartID, sendErr)
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("relay.delivery_failed")))
		return true, fmt.Errorf("relay to %d on deal %d: %w: %v", counterpartID, deal.ID, objects.ErrDeliveryFailed, sendErr)
	}

	log.Printf("[RELAY] Delivered %s from %d to %d as message %d", content.Kind, user.UserId, counterpartID, sent.MessageID)
	return true, nil
}

// hasReciprocalSession reports whether counterpart is already relaying back
// to sender on the same deal
func hasReciprocalSession(c *context.Context, counterpart, sender, dealID int64) bool {
	back, ok := c.Sessions.Relay(counterpart)
	return ok && back.CounterpartID == sender && back.DealID == dealID
}

// lookupUser returns the registered participant or a bare stand-in with the
// default language
func lookupUser(c *context.Context, userId int64) *objects.User {
	if user := c.Repo.FindUser(userId); user != nil {
		return user
	}
	return &objects.User{UserId: userId}
}

package negotiation

import (
	"fmt"
	"log"

	"dealbot/context"
	"dealbot/messaging"
	"dealbot/objects"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// HandleCreativeCommand lists the user's deals waiting for a creative
func HandleCreativeCommand(c *context.Context, user *objects.User) error {
	log.Printf("[NEGOTIATION] /creative from user %d", user.UserId)

	deals, err := c.Repo.ListUserDeals(user.UserId, objects.CreativeEligibleStatuses())
	if err != nil {
		return fmt.Errorf("list creative deals of user %d: %w", user.UserId, err)
	}

	if len(deals) == 0 {
		notify(c, user, user.Locale().Get("negotiation.no_deals"))
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, deal := range deals {
		label := fmt.Sprintf(user.Locale().Get("relay.deal_button"), deal.ID, user.Locale().Get("status."+string(deal.Status)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, messaging.CallbackData(messaging.ActionCreative, deal.ID)),
		))
	}

	msg := messaging.NewHTMLMessage(user.UserId, user.Locale().Get("negotiation.choose_deal"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	c.Send(msg)
	return nil
}

// HandleCreativeSelect starts a submission for dealID
func HandleCreativeSelect(c *context.Context, user *objects.User, dealID int64) error {
	deal, err := c.Repo.GetDealByID(dealID)
	if err != nil {
		return fmt.Errorf("load deal %d: %w", dealID, err)
	}
	if deal == nil || !deal.HasParticipant(user.UserId) {
		notify(c, user, user.Locale().Get("errors.deal_not_found"))
		return fmt.Errorf("creative for deal %d: %w", dealID, objects.ErrDealNotFound)
	}
	if !objects.IsCreativeEligible(deal.Status) {
		notify(c, user, fmt.Sprintf(user.Locale().Get("errors.invalid_state"), deal.ID))
		return fmt.Errorf("deal %d is %s: %w", dealID, deal.Status, objects.ErrInvalidDealState)
	}

	EnterAwaitingCreativePost(c, user, deal)
	return nil
}

// HandleLeave takes the user out of the workflow. It reports false when the
// user was not in it.
func HandleLeave(c *context.Context, user *objects.User) bool {
	negotiationSession, ok := c.Sessions.Negotiation(user.UserId)
	if !ok {
		return false
	}

	if negotiationSession.HasPreview() {
		messaging.DeleteQuietly(c.GetBot(), user.UserId, negotiationSession.Preview.MessageID)
	}
	c.Sessions.RemoveNegotiation(user.UserId)

	log.Printf("[NEGOTIATION] User %d left the workflow of deal %d", user.UserId, negotiationSession.DealID)
	notify(c, user, fmt.Sprintf(user.Locale().Get("negotiation.left"), negotiationSession.DealID))
	return true
}

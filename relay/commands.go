package relay

import (
	"fmt"
	"log"

	"dealbot/context"
	"dealbot/messaging"
	"dealbot/metrics"
	"dealbot/objects"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// HandleChatCommand lists the user's deals that can be talked about
func HandleChatCommand(c *context.Context, user *objects.User) error {
	log.Printf("[RELAY] /chat from user %d", user.UserId)

	deals, err := c.Repo.ListUserDeals(user.UserId, objects.RelayEligibleStatuses())
	if err != nil {
		return fmt.Errorf("list deals of user %d: %w", user.UserId, err)
	}

	if len(deals) == 0 {
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("relay.no_deals")))
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, deal := range deals {
		label := fmt.Sprintf(user.Locale().Get("relay.deal_button"), deal.ID, user.Locale().Get("status."+string(deal.Status)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, messaging.CallbackData(messaging.ActionChat, deal.ID)),
		))
	}

	msg := messaging.NewHTMLMessage(user.UserId, user.Locale().Get("relay.choose_deal"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	c.Send(msg)
	return nil
}

// HandleChatSelect opens a relay session with the other party of dealID
func HandleChatSelect(c *context.Context, user *objects.User, dealID int64) error {
	log.Printf("[RELAY] User %d selected deal %d", user.UserId, dealID)

	deal, err := c.Repo.GetDealByID(dealID)
	if err != nil {
		return fmt.Errorf("load deal %d: %w", dealID, err)
	}
	if deal == nil {
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("errors.deal_not_found")))
		return fmt.Errorf("select deal %d: %w", dealID, objects.ErrDealNotFound)
	}

	counterpartID, ok := deal.CounterpartOf(user.UserId)
	if !ok {
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("errors.deal_not_found")))
		return fmt.Errorf("user %d is not a party of deal %d: %w", user.UserId, dealID, objects.ErrDealNotFound)
	}

	if !objects.IsEligibleForRelay(deal.Status) {
		c.Send(messaging.NewHTMLMessage(user.UserId, fmt.Sprintf(user.Locale().Get("relay.ended"), deal.ID)))
		return fmt.Errorf("deal %d is %s: %w", dealID, deal.Status, objects.ErrInvalidDealState)
	}

	OpenSession(c, user.UserId, counterpartID, deal.ID)

	counterpart := lookupUser(c, counterpartID)
	msg := messaging.NewHTMLMessage(user.UserId, fmt.Sprintf(user.Locale().Get("relay.opened"),
		messaging.EscapeHTML(counterpart.DisplayName()), deal.ID))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(user.Locale().Get("relay.quit_button"),
			messaging.CallbackData(messaging.ActionQuit, deal.ID)),
	))
	c.Send(msg)
	return nil
}

// HandleQuit closes the user's relay session
func HandleQuit(c *context.Context, user *objects.User) {
	log.Printf("[RELAY] User %d quits", user.UserId)

	if !c.Sessions.RemoveRelay(user.UserId) {
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("relay.no_session")))
		return
	}

	metrics.RecordRelaySession("quit")
	c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("relay.closed")))
}

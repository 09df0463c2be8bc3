// Package menu routes inbound updates to the relay and the creative workflow
package menu

import (
	"errors"
	"fmt"
	"log"
	"time"

	"dealbot/bugsink"
	"dealbot/context"
	"dealbot/messaging"
	"dealbot/negotiation"
	"dealbot/objects"
	"dealbot/relay"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// HandleMessage processes one inbound message of userId. Commands go first,
// then the creative workflow, then the relay. Anything left gets the help text.
func HandleMessage(c *context.Context, userId int64, message *tgbotapi.Message) {
	defer bugsink.Recover()
	startTime := time.Now()
	log.Printf("[MENU] Handling message %d from user %d", message.MessageID, userId)

	unlock := c.Sessions.Lock(userId)
	defer unlock()

	user, err := findUser(c, userId, message.From)
	if err != nil {
		log.Printf("[MENU] Dropping message %d: %v", message.MessageID, err)
		return
	}

	if message.IsCommand() {
		handleCommand(c, user, message.Command())
		return
	}

	dealID := sessionDeal(c, userId)
	claimed, err := negotiation.TryIntercept(c, user, message)
	if claimed {
		report(c, user, "negotiation", dealID, err)
		return
	}

	dealID = relayDeal(c, userId)
	claimed, err = relay.TryForwardMessage(c, user, message)
	if claimed {
		report(c, user, "relay", dealID, err)
		return
	}

	log.Printf("[MENU] Message of user %d not claimed, sending help", userId)
	c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("help.text")))

	log.Printf("[MENU] Message handling completed for user %d (duration: %v)", userId, time.Since(startTime))
}

// HandleCallback processes an inline button press of userId. Every callback
// is answered so the client stops its loading animation.
func HandleCallback(c *context.Context, userId int64, callback *tgbotapi.CallbackQuery) {
	defer bugsink.Recover()
	log.Printf("[MENU] Handling callback from user %d: data=%s", userId, callback.Data)

	if err := c.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("[MENU] Error answering callback %s: %v", callback.ID, err)
	}

	unlock := c.Sessions.Lock(userId)
	defer unlock()

	user, err := findUser(c, userId, callback.From)
	if err != nil {
		log.Printf("[MENU] Dropping callback %s: %v", callback.ID, err)
		return
	}

	action, dealID, err := messaging.ParseCallbackData(callback.Data)
	if err != nil {
		log.Printf("[MENU] Ignoring callback of user %d: %v", userId, err)
		return
	}

	switch {
	case action == messaging.ActionChat:
		if err = relay.HandleChatSelect(c, user, dealID); err == nil {
			closePicker(c, callback)
		}
	case action == messaging.ActionQuit:
		relay.HandleQuit(c, user)
	case action == messaging.ActionCreative:
		if err = negotiation.HandleCreativeSelect(c, user, dealID); err == nil {
			closePicker(c, callback)
		}
	case messaging.IsWorkflowAction(action):
		err = negotiation.HandleCallback(c, user, action, dealID)
	default:
		log.Printf("[MENU] No callback handler for action %q", action)
		return
	}

	report(c, user, action, dealID, err)
}

// findUser resolves the participant. Unknown users are told to register on
// the marketplace first.
func findUser(c *context.Context, userId int64, from *tgbotapi.User) (*objects.User, error) {
	user := c.Repo.FindUser(userId)
	if user != nil {
		return user, nil
	}

	stranger := &objects.User{UserId: userId}
	if from != nil {
		stranger.LanguageCode = from.LanguageCode
	}
	c.Send(messaging.NewHTMLMessage(userId, stranger.Locale().Get("errors.not_registered")))
	return nil, fmt.Errorf("user %d: %w", userId, objects.ErrNotRegistered)
}

// report logs a failed interaction. Failures the user was not told about
// are reported to bugsink and answered with a generic apology.
func report(c *context.Context, user *objects.User, operation string, dealID int64, err error) {
	if err == nil {
		return
	}

	log.Printf("[MENU] %s failed for user %d (deal %d): %v", operation, user.UserId, dealID, err)
	if objects.IsUserFacing(err) {
		return
	}

	bugsink.CaptureInteractionError(err, user.UserId, dealID, operation)
	if !errors.Is(err, objects.ErrDeliveryFailed) {
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("errors.internal")))
	}
}

// closePicker strips the buttons off a deal list once a deal was picked
func closePicker(c *context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil || callback.Message.Text == "" {
		return
	}

	edit := messaging.NewHTMLEditMessage(callback.Message.Chat.ID, callback.Message.MessageID,
		messaging.EscapeHTML(callback.Message.Text))
	if err := c.EditMessage(edit); err != nil {
		log.Printf("[MENU] Error closing deal list %d: %v", callback.Message.MessageID, err)
	}
}

func sessionDeal(c *context.Context, userId int64) int64 {
	if current, ok := c.Sessions.Negotiation(userId); ok {
		return current.DealID
	}
	return 0
}

func relayDeal(c *context.Context, userId int64) int64 {
	if current, ok := c.Sessions.Relay(userId); ok {
		return current.DealID
	}
	return 0
}

package menu

import (
	"log"
	"strings"

	"dealbot/context"
	"dealbot/messaging"
	"dealbot/metrics"
	"dealbot/negotiation"
	"dealbot/objects"
	"dealbot/relay"
)

func handleCommand(c *context.Context, user *objects.User, command string) {
	command = strings.ToLower(command)
	log.Printf("[MENU] User %d sent /%s command", user.UserId, command)

	var err error
	switch command {
	case "start":
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("start.welcome")))
	case "help":
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("help.text")))
	case "chat":
		err = relay.HandleChatCommand(c, user)
	case "creative":
		err = negotiation.HandleCreativeCommand(c, user)
	case "quit":
		// Leaves whichever session is open
		if !negotiation.HandleLeave(c, user) {
			relay.HandleQuit(c, user)
		}
	default:
		c.Send(messaging.NewHTMLMessage(user.UserId, user.Locale().Get("help.text")))
		return
	}

	metrics.RecordCommand("/"+command, user.GetSupportedLanguageCode())
	report(c, user, command, 0, err)
}

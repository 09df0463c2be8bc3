package menu_test

import (
	"errors"
	"testing"

	"dealbot/context"
	"dealbot/menu"
	"dealbot/messaging"
	"dealbot/mocks"
	"dealbot/objects"
	"dealbot/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	advertiserID int64 = 100
	publisherID  int64 = 200
	dealID       int64 = 7
)

type fixture struct {
	c         *context.Context
	bot       *mocks.RecordingBot
	store     *mocks.MemoryStore
	publisher *mocks.RecordingPublisher
	user      *objects.User
}

func newFixture() *fixture {
	f := &fixture{
		bot:       mocks.NewRecordingBot(),
		store:     mocks.NewMemoryStore(),
		publisher: &mocks.RecordingPublisher{},
		user:      &objects.User{UserId: advertiserID, Username: "brand", LanguageCode: "en"},
	}
	f.store.AddUser(f.user)
	f.store.AddUser(&objects.User{UserId: publisherID, Username: "owner", LanguageCode: "en"})
	f.store.PutDeal(&objects.Deal{ID: dealID, AdvertiserID: advertiserID, PublisherID: publisherID, Status: objects.DealStatusPaid})
	f.c = mocks.NewContext(f.bot, f.store, f.publisher)
	return f
}

func message(from int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: int(from), LanguageCode: "en"},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
	}
}

func command(from int64, name string) *tgbotapi.Message {
	msg := message(from, "/"+name)
	msg.Entities = &[]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name) + 1}}
	return msg
}

func callback(from int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: int(from), LanguageCode: "en"},
		Data: data,
	}
}

func TestUnclaimedMessageGetsHelp(t *testing.T) {
	f := newFixture()

	menu.HandleMessage(f.c, advertiserID, message(advertiserID, "hi"))

	assert.Equal(t, []string{f.user.Locale().Get("help.text")}, f.publisher.TextsTo(advertiserID))
	assert.Empty(t, f.bot.Sent)
}

func TestUnregisteredUser(t *testing.T) {
	f := newFixture()

	menu.HandleMessage(f.c, 555, message(555, "hi"))

	stranger := &objects.User{UserId: 555, LanguageCode: "en"}
	assert.Equal(t, []string{stranger.Locale().Get("errors.not_registered")}, f.publisher.TextsTo(555))
}

func TestUnregisteredCallbackIsOnlyAnswered(t *testing.T) {
	f := newFixture()

	menu.HandleCallback(f.c, 555, callback(555, messaging.CallbackData(messaging.ActionChat, dealID)))

	require.Len(t, f.publisher.Callbacks, 1)
	stranger := &objects.User{UserId: 555, LanguageCode: "en"}
	assert.Equal(t, []string{stranger.Locale().Get("errors.not_registered")}, f.publisher.TextsTo(555))
	_, ok := f.c.Sessions.Relay(555)
	assert.False(t, ok)
}

func TestRelayAuditFailureGetsNoApology(t *testing.T) {
	f := newFixture()
	f.c.Sessions.SwitchToRelay(advertiserID, session.RelaySession{CounterpartID: publisherID, DealID: dealID})
	f.store.MessageErr = errors.New("disk full")

	menu.HandleMessage(f.c, advertiserID, message(advertiserID, "deal?"))

	assert.Len(t, f.bot.SentTo(publisherID), 1)
	assert.Empty(t, f.publisher.TextsTo(advertiserID))
}

func TestRelayedMessage(t *testing.T) {
	f := newFixture()
	f.c.Sessions.SwitchToRelay(advertiserID, session.RelaySession{CounterpartID: publisherID, DealID: dealID})

	menu.HandleMessage(f.c, advertiserID, message(advertiserID, "see you"))

	assert.Len(t, f.bot.SentTo(publisherID), 1)
	assert.Len(t, f.store.Messages(), 1)
	assert.Empty(t, f.publisher.TextsTo(advertiserID))
}

func TestWorkflowTakesPrecedenceOverRelay(t *testing.T) {
	f := newFixture()
	f.c.Sessions.SwitchToRelay(advertiserID, session.RelaySession{CounterpartID: publisherID, DealID: dealID})
	f.c.Sessions.SwitchToNegotiation(advertiserID, session.NegotiationSession{
		DealID: dealID, State: session.StateAwaitingCreativePost, Role: session.RoleSubmitter,
	})

	menu.HandleMessage(f.c, advertiserID, message(advertiserID, "creative text"))

	assert.Empty(t, f.bot.SentTo(publisherID))
	require.Len(t, f.bot.SentTo(advertiserID), 1, "the submitter gets a preview")
	assert.Empty(t, f.store.Messages())
}

func TestDeliveryFailureIsNotAnsweredTwice(t *testing.T) {
	f := newFixture()
	f.c.Sessions.SwitchToRelay(advertiserID, session.RelaySession{CounterpartID: publisherID, DealID: dealID})
	f.bot.FailChats[publisherID] = true

	menu.HandleMessage(f.c, advertiserID, message(advertiserID, "hello?"))

	assert.Equal(t, []string{f.user.Locale().Get("relay.delivery_failed")}, f.publisher.TextsTo(advertiserID))
}

func TestStoreFailureGetsApology(t *testing.T) {
	f := newFixture()
	f.c.Sessions.SwitchToRelay(advertiserID, session.RelaySession{CounterpartID: publisherID, DealID: dealID})
	f.store.GetDealErr = assert.AnError

	menu.HandleMessage(f.c, advertiserID, message(advertiserID, "hello?"))

	assert.Equal(t, []string{f.user.Locale().Get("errors.internal")}, f.publisher.TextsTo(advertiserID))
}

func TestChatCommand(t *testing.T) {
	f := newFixture()

	menu.HandleMessage(f.c, advertiserID, command(advertiserID, "chat"))

	require.Len(t, f.publisher.Messages, 1)
	assert.Equal(t, []string{messaging.CallbackData(messaging.ActionChat, dealID)},
		mocks.CallbackDataOf(f.publisher.Messages[0].Message))
}

func TestQuitCommandLeavesWorkflow(t *testing.T) {
	f := newFixture()
	f.c.Sessions.SwitchToNegotiation(advertiserID, session.NegotiationSession{
		DealID: dealID, State: session.StateAwaitingCreativePost, Role: session.RoleSubmitter,
	})

	menu.HandleMessage(f.c, advertiserID, command(advertiserID, "quit"))

	_, ok := f.c.Sessions.Negotiation(advertiserID)
	assert.False(t, ok)

	f.publisher.Reset()
	menu.HandleMessage(f.c, advertiserID, command(advertiserID, "quit"))
	assert.Equal(t, []string{f.user.Locale().Get("relay.no_session")}, f.publisher.TextsTo(advertiserID))
}

func TestChatCallbackOpensRelay(t *testing.T) {
	f := newFixture()
	query := callback(advertiserID, messaging.CallbackData(messaging.ActionChat, dealID))
	query.Message = &tgbotapi.Message{MessageID: 55, Chat: &tgbotapi.Chat{ID: advertiserID}, Text: "Choose a deal"}

	menu.HandleCallback(f.c, advertiserID, query)

	require.Len(t, f.publisher.Callbacks, 1)
	assert.Equal(t, "cb-1", f.publisher.Callbacks[0].CallbackAnswer.CallbackQueryID)
	assert.Equal(t, uint8(255), f.publisher.Callbacks[0].Priority)

	relaySession, ok := f.c.Sessions.Relay(advertiserID)
	require.True(t, ok)
	assert.Equal(t, publisherID, relaySession.CounterpartID)

	require.Len(t, f.publisher.Edits, 1, "the deal list loses its buttons")
	assert.Equal(t, 55, f.publisher.Edits[0].EditMessage.MessageID)
	assert.Nil(t, f.publisher.Edits[0].EditMessage.ReplyMarkup)
}

func TestRejectedChatCallbackKeepsDealList(t *testing.T) {
	f := newFixture()
	f.store.SetStatus(dealID, objects.DealStatusCancelled)
	query := callback(advertiserID, messaging.CallbackData(messaging.ActionChat, dealID))
	query.Message = &tgbotapi.Message{MessageID: 55, Chat: &tgbotapi.Chat{ID: advertiserID}, Text: "Choose a deal"}

	menu.HandleCallback(f.c, advertiserID, query)

	assert.Empty(t, f.publisher.Edits)
	_, ok := f.c.Sessions.Relay(advertiserID)
	assert.False(t, ok)
}

func TestCreativeCallbackEntersWorkflow(t *testing.T) {
	f := newFixture()

	menu.HandleCallback(f.c, advertiserID, callback(advertiserID, messaging.CallbackData(messaging.ActionCreative, dealID)))

	current, ok := f.c.Sessions.Negotiation(advertiserID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingCreativePost, current.State)
}

func TestStalePeerApproveCallback(t *testing.T) {
	f := newFixture()

	menu.HandleCallback(f.c, publisherID, callback(publisherID, messaging.CallbackData(messaging.ActionPeerApprove, dealID)))

	owner := f.store.FindUser(publisherID)
	assert.Equal(t, []string{owner.Locale().Get("errors.session_expired")}, f.publisher.TextsTo(publisherID))
	events, err := f.store.GetDealEvents(dealID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMalformedCallbackIsOnlyAnswered(t *testing.T) {
	f := newFixture()

	menu.HandleCallback(f.c, advertiserID, callback(advertiserID, "chat:abc"))

	assert.Len(t, f.publisher.Callbacks, 1)
	assert.Empty(t, f.publisher.Messages)
}

func TestRelayThroughMockBot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMemoryStore()
	store.AddUser(&objects.User{UserId: advertiserID, LanguageCode: "en"})
	store.AddUser(&objects.User{UserId: publisherID, LanguageCode: "ru"})
	store.PutDeal(&objects.Deal{ID: dealID, AdvertiserID: advertiserID, PublisherID: publisherID, Status: objects.DealStatusPosted})

	bot := mocks.NewMockBot(ctrl)
	c := mocks.NewContext(bot, store, &mocks.RecordingPublisher{})
	c.Sessions.SwitchToRelay(advertiserID, session.RelaySession{CounterpartID: publisherID, DealID: dealID})

	bot.EXPECT().Send(gomock.Any()).DoAndReturn(func(chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
		msg, ok := chattable.(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.Equal(t, publisherID, msg.ChatID)
		assert.Contains(t, msg.Text, "posted already?")
		return tgbotapi.Message{MessageID: 77}, nil
	})

	menu.HandleMessage(c, advertiserID, message(advertiserID, "posted already?"))

	records := store.Messages()
	require.Len(t, records, 1)
	assert.Equal(t, 77, *records[0].ForwardedMessageID)
}

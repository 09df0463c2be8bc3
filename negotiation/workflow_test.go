package negotiation_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"dealbot/context"
	"dealbot/messaging"
	"dealbot/mocks"
	"dealbot/negotiation"
	"dealbot/objects"
	"dealbot/relay"
	"dealbot/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	submitterID int64 = 100
	reviewerID  int64 = 200
	dealID      int64 = 7
)

type fixture struct {
	c         *context.Context
	bot       *mocks.RecordingBot
	store     *mocks.MemoryStore
	publisher *mocks.RecordingPublisher

	submitter *objects.User
	reviewer  *objects.User
}

func newFixture(t *testing.T, status objects.DealStatus) *fixture {
	t.Helper()
	f := &fixture{
		bot:       mocks.NewRecordingBot(),
		store:     mocks.NewMemoryStore(),
		publisher: &mocks.RecordingPublisher{},
		submitter: &objects.User{UserId: submitterID, Username: "brand", LanguageCode: "en"},
		reviewer:  &objects.User{UserId: reviewerID, Username: "owner", LanguageCode: "en"},
	}
	f.store.AddUser(f.submitter)
	f.store.AddUser(f.reviewer)
	f.store.PutDeal(&objects.Deal{ID: dealID, AdvertiserID: submitterID, PublisherID: reviewerID, Status: status})
	f.c = mocks.NewContext(f.bot, f.store, f.publisher)
	return f
}

func (f *fixture) deal(t *testing.T) *objects.Deal {
	t.Helper()
	deal, err := f.store.GetDealByID(dealID)
	require.NoError(t, err)
	require.NotNil(t, deal)
	return deal
}

func (f *fixture) events(t *testing.T) []*objects.DealEvent {
	t.Helper()
	events, err := f.store.GetDealEvents(dealID)
	require.NoError(t, err)
	return events
}

func (f *fixture) session(userId int64) (session.NegotiationSession, bool) {
	return f.c.Sessions.Negotiation(userId)
}

// submit posts text as the submitter and returns the preview message id
func (f *fixture) submit(t *testing.T, text string) int {
	t.Helper()
	claimed, err := negotiation.TryIntercept(f.c, f.submitter, &tgbotapi.Message{MessageID: 50, Text: text})
	require.NoError(t, err)
	require.True(t, claimed)

	current, ok := f.session(submitterID)
	require.True(t, ok)
	require.True(t, current.HasPreview())
	return current.Preview.MessageID
}

func text(id int, body string) *tgbotapi.Message {
	return &tgbotapi.Message{MessageID: id, Text: body}
}

func TestCreativeApprovalRoundTrip(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	negotiation.EnterAwaitingCreativePost(f.c, f.submitter, f.deal(t))

	// Submission and self review
	previewID := f.submit(t, "Check this")
	preview := f.bot.SentTo(submitterID)
	require.Len(t, preview, 1)
	assert.Equal(t, []string{
		messaging.CallbackData(messaging.ActionSelfApprove, dealID),
		messaging.CallbackData(messaging.ActionSelfDiscard, dealID),
	}, mocks.CallbackDataOf(preview[0].Item))

	require.NoError(t, negotiation.HandleSelfApprove(f.c, f.submitter, dealID))

	assert.Equal(t, "Check this", f.deal(t).CreativeText)
	assert.Equal(t, objects.DealStatusPaid, f.deal(t).Status)
	assert.Empty(t, f.events(t), "confirming one's own submission creates no event")
	assert.True(t, f.bot.WasDeleted(submitterID, previewID))

	forwarded := f.bot.SentTo(reviewerID)
	require.Len(t, forwarded, 1)
	assert.Equal(t, []string{
		messaging.CallbackData(messaging.ActionPeerApprove, dealID),
		messaging.CallbackData(messaging.ActionPeerReject, dealID),
	}, mocks.CallbackDataOf(forwarded[0].Item))

	submitterSession, ok := f.session(submitterID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingPeerReview, submitterSession.State)
	reviewerSession, ok := f.session(reviewerID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingPeerReview, reviewerSession.State)
	assert.Equal(t, session.RoleReviewer, reviewerSession.Role)

	// Rejection with a reason
	require.NoError(t, negotiation.HandlePeerReject(f.c, f.reviewer, dealID))
	reviewerSession, _ = f.session(reviewerID)
	assert.Equal(t, session.StateAwaitingRejectionReason, reviewerSession.State)

	claimed, err := negotiation.TryIntercept(f.c, f.reviewer, text(60, "Low quality"))
	require.NoError(t, err)
	assert.True(t, claimed)

	deal := f.deal(t)
	assert.Equal(t, objects.DealStatusCreativeDraft, deal.Status)
	require.NotNil(t, deal.RejectionReason)
	assert.Equal(t, "Low quality", *deal.RejectionReason)

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, objects.DealEventCreativeRejected, events[0].EventType)
	assert.Equal(t, objects.DealStatusPaid, events[0].FromStatus)
	assert.Equal(t, objects.DealStatusCreativeDraft, events[0].ToStatus)
	require.NotNil(t, events[0].ActorID)
	assert.Equal(t, reviewerID, *events[0].ActorID)
	var payload objects.RejectionPayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, "Low quality", payload.Reason)

	submitterSession, ok = f.session(submitterID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingCreativePost, submitterSession.State)
	assert.False(t, submitterSession.HasPreview())
	_, ok = f.session(reviewerID)
	assert.False(t, ok)

	// Resubmission and approval
	f.submit(t, "Version 2")
	require.NoError(t, negotiation.HandleSelfApprove(f.c, f.submitter, dealID))
	require.NoError(t, negotiation.HandlePeerApprove(f.c, f.reviewer, dealID))

	deal = f.deal(t)
	assert.Equal(t, objects.DealStatusScheduled, deal.Status)
	assert.Equal(t, "Version 2", deal.CreativeText)

	events = f.events(t)
	require.Len(t, events, 2)
	assert.Equal(t, objects.DealEventCreativeApproved, events[1].EventType)
	assert.Equal(t, objects.DealStatusCreativeDraft, events[1].FromStatus)
	assert.Equal(t, objects.DealStatusScheduled, events[1].ToStatus)
	assert.Equal(t, reviewerID, *events[1].ActorID)

	_, ok = f.session(submitterID)
	assert.False(t, ok)
	_, ok = f.session(reviewerID)
	assert.False(t, ok)

	// A second approval finds no session
	err = negotiation.HandlePeerApprove(f.c, f.reviewer, dealID)
	assert.True(t, errors.Is(err, objects.ErrSessionExpired))
	assert.Len(t, f.events(t), 2)
	assert.Equal(t, objects.DealStatusScheduled, f.deal(t).Status)
	assert.Contains(t, f.publisher.TextsTo(reviewerID), f.reviewer.Locale().Get("errors.session_expired"))
}

func TestEnterAwaitingCreativePostClearsRelay(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	relay.OpenSession(f.c, submitterID, reviewerID, dealID)

	negotiation.EnterAwaitingCreativePost(f.c, f.submitter, f.deal(t))

	_, hasRelay := f.c.Sessions.Relay(submitterID)
	assert.False(t, hasRelay)
	current, ok := f.session(submitterID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingCreativePost, current.State)
	assert.Equal(t, session.RoleSubmitter, current.Role)
}

func TestTryInterceptWithoutSession(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)

	claimed, err := negotiation.TryIntercept(f.c, f.submitter, text(1, "hello"))

	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Empty(t, f.bot.Sent)
}

func TestSecondSubmissionReplacesPreview(t *testing.T) {
	f := newFixture(t, objects.DealStatusCreativeDraft)
	negotiation.EnterAwaitingCreativePost(f.c, f.submitter, f.deal(t))

	first := f.submit(t, "first")
	second := f.submit(t, "second")

	assert.NotEqual(t, first, second)
	assert.True(t, f.bot.WasDeleted(submitterID, first))
	current, _ := f.session(submitterID)
	assert.Equal(t, "second", current.Preview.Content.Text)
}

func TestMediaSubmissionCommitsMediaRefs(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	negotiation.EnterAwaitingCreativePost(f.c, f.submitter, f.deal(t))

	photo := []tgbotapi.PhotoSize{{FileID: "thumb", Width: 100, Height: 100}, {FileID: "full", Width: 1000, Height: 800}}
	claimed, err := negotiation.TryIntercept(f.c, f.submitter, &tgbotapi.Message{MessageID: 5, Photo: &photo, Caption: "Summer sale"})
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, negotiation.HandleSelfApprove(f.c, f.submitter, dealID))

	deal := f.deal(t)
	assert.Equal(t, "Summer sale", deal.CreativeText)
	assert.Equal(t, []objects.MediaRef{{Kind: "photo", FileID: "full"}}, deal.CreativeMedia)

	forwarded := f.bot.SentTo(reviewerID)
	require.Len(t, forwarded, 1)
	_, isPhoto := forwarded[0].Item.(tgbotapi.PhotoConfig)
	assert.True(t, isPhoto)
}

func TestUnsupportedContentIsReprompted(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	negotiation.EnterAwaitingCreativePost(f.c, f.submitter, f.deal(t))
	f.publisher.Reset()

	claimed, err := negotiation.TryIntercept(f.c, f.submitter, &tgbotapi.Message{MessageID: 9,
		Location: &tgbotapi.Location{Latitude: 1, Longitude: 1}})

	assert.True(t, claimed)
	assert.True(t, errors.Is(err, objects.ErrValidation))
	current, _ := f.session(submitterID)
	assert.False(t, current.HasPreview())
	assert.Equal(t, []string{f.submitter.Locale().Get("negotiation.unsupported_content")}, f.publisher.TextsTo(submitterID))
}

func TestSelfDiscardIgnoresDeleteFailure(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	negotiation.EnterAwaitingCreativePost(f.c, f.submitter, f.deal(t))
	previewID := f.submit(t, "draft")
	f.bot.FailDeletes = true

	require.NoError(t, negotiation.HandleSelfDiscard(f.c, f.submitter, dealID))

	assert.True(t, f.bot.WasDeleted(submitterID, previewID))
	current, ok := f.session(submitterID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingCreativePost, current.State)
	assert.False(t, current.HasPreview())
	assert.Empty(t, f.deal(t).CreativeText)
}

func TestSelfApproveWithoutPreview(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	negotiation.EnterAwaitingCreativePost(f.c, f.submitter, f.deal(t))

	err := negotiation.HandleSelfApprove(f.c, f.submitter, dealID)

	assert.True(t, errors.Is(err, objects.ErrSessionExpired))
	_, ok := f.session(submitterID)
	assert.True(t, ok, "the submitter may still post")
	assert.Empty(t, f.bot.SentTo(reviewerID))
}

func TestSelfApproveReviewerUnreachable(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	negotiation.EnterAwaitingCreativePost(f.c, f.submitter, f.deal(t))
	previewID := f.submit(t, "Check this")
	f.bot.FailChats[reviewerID] = true

	err := negotiation.HandleSelfApprove(f.c, f.submitter, dealID)

	assert.True(t, errors.Is(err, objects.ErrDeliveryFailed))
	assert.Equal(t, "Check this", f.deal(t).CreativeText, "the commit stands")
	assert.False(t, f.bot.WasDeleted(submitterID, previewID))

	current, ok := f.session(submitterID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingCreativePost, current.State)
	assert.True(t, current.HasPreview(), "the submitter can retry")
	_, ok = f.session(reviewerID)
	assert.False(t, ok)

	// Retry once the reviewer is reachable
	f.bot.FailChats[reviewerID] = false
	require.NoError(t, negotiation.HandleSelfApprove(f.c, f.submitter, dealID))
	reviewerSession, ok := f.session(reviewerID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingPeerReview, reviewerSession.State)
}

func reachPeerReview(t *testing.T, f *fixture) {
	t.Helper()
	negotiation.EnterAwaitingCreativePost(f.c, f.submitter, f.deal(t))
	f.submit(t, "Check this")
	require.NoError(t, negotiation.HandleSelfApprove(f.c, f.submitter, dealID))
}

func TestMessageWhileAwaitingReview(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	f.publisher.Reset()

	claimed, err := negotiation.TryIntercept(f.c, f.submitter, text(70, "any news?"))

	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, []string{f.submitter.Locale().Get("negotiation.waiting_for_review")}, f.publisher.TextsTo(submitterID))
	current, _ := f.session(submitterID)
	assert.Equal(t, session.StateAwaitingPeerReview, current.State)
}

func TestAwaitingReviewEndsWhenDealCancelled(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	f.store.SetStatus(dealID, objects.DealStatusCancelled)
	f.publisher.Reset()

	claimed, err := negotiation.TryIntercept(f.c, f.submitter, text(70, "hello?"))

	assert.True(t, claimed)
	assert.True(t, errors.Is(err, objects.ErrInvalidDealState))
	_, ok := f.session(submitterID)
	assert.False(t, ok)
	_, ok = f.session(reviewerID)
	assert.False(t, ok, "the reviewer is released with the submitter")
	assert.Equal(t, []string{fmt.Sprintf(f.submitter.Locale().Get("errors.invalid_state"), dealID)},
		f.publisher.TextsTo(submitterID))
	for _, bag := range f.publisher.Messages {
		if bag.Message.ChatID == reviewerID {
			assert.Less(t, bag.Priority, uint8(220), "the released reviewer yields to direct replies")
		}
	}
	assert.Len(t, f.publisher.TextsTo(reviewerID), 1)

	claimed, err = negotiation.TryIntercept(f.c, f.submitter, text(71, "hello?"))
	assert.False(t, claimed)
	assert.NoError(t, err)
}

func TestDriftedPeerApproveReleasesSubmitter(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	f.store.SetStatus(dealID, objects.DealStatusCancelled)
	f.publisher.Reset()

	err := negotiation.HandlePeerApprove(f.c, f.reviewer, dealID)
	require.True(t, errors.Is(err, objects.ErrInvalidDealState))

	_, ok := f.session(submitterID)
	assert.False(t, ok)
	assert.Equal(t, []string{fmt.Sprintf(f.submitter.Locale().Get("errors.invalid_state"), dealID)},
		f.publisher.TextsTo(submitterID))

	claimed, err := negotiation.TryIntercept(f.c, f.submitter, text(70, "hello?"))
	assert.False(t, claimed)
	assert.NoError(t, err)
}

func TestAwaitingReviewEndsWhenReviewerLeaves(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	require.True(t, negotiation.HandleLeave(f.c, f.reviewer))
	f.publisher.Reset()

	claimed, err := negotiation.TryIntercept(f.c, f.submitter, text(70, "any news?"))

	assert.True(t, claimed)
	assert.True(t, errors.Is(err, objects.ErrSessionExpired))
	_, ok := f.session(submitterID)
	assert.False(t, ok)
	assert.Equal(t, []string{fmt.Sprintf(f.submitter.Locale().Get("negotiation.review_closed"), dealID)},
		f.publisher.TextsTo(submitterID))
	assert.Equal(t, "Check this", f.deal(t).CreativeText, "the committed creative stays")
}

func TestReviewerMessageWhileReviewing(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	f.publisher.Reset()

	claimed, err := negotiation.TryIntercept(f.c, f.reviewer, text(80, "looks fine"))

	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, []string{f.reviewer.Locale().Get("negotiation.review_pending")}, f.publisher.TextsTo(reviewerID))
	current, ok := f.session(reviewerID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingPeerReview, current.State)
}

func TestRejectionReasonSurvivesSubmitterAbort(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	require.NoError(t, negotiation.HandlePeerReject(f.c, f.reviewer, dealID))
	f.store.SetStatus(dealID, objects.DealStatusCancelled)

	_, err := negotiation.TryIntercept(f.c, f.submitter, text(70, "hello?"))
	require.True(t, errors.Is(err, objects.ErrInvalidDealState))

	current, ok := f.session(reviewerID)
	require.True(t, ok, "a reviewer writing the reason keeps the session")
	assert.Equal(t, session.StateAwaitingRejectionReason, current.State)
}

func TestSubmitterCannotReviewOwnCreative(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)

	err := negotiation.HandlePeerApprove(f.c, f.submitter, dealID)

	assert.True(t, errors.Is(err, objects.ErrSessionExpired))
	assert.Empty(t, f.events(t))
	_, ok := f.session(submitterID)
	assert.True(t, ok, "a stale button does not end the submitter's review wait")
}

func TestPeerApproveSessionForOtherDeal(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)

	err := negotiation.HandlePeerApprove(f.c, f.reviewer, dealID+1)

	assert.True(t, errors.Is(err, objects.ErrSessionExpired))
	_, ok := f.session(reviewerID)
	assert.False(t, ok, "a session for another deal is cleared")
	assert.Empty(t, f.events(t))
	assert.Equal(t, objects.DealStatusPaid, f.deal(t).Status)
}

func TestPeerApproveRejectsDriftedStatus(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	f.store.SetStatus(dealID, objects.DealStatusCancelled)

	err := negotiation.HandlePeerApprove(f.c, f.reviewer, dealID)

	assert.True(t, errors.Is(err, objects.ErrInvalidDealState))
	assert.Equal(t, objects.DealStatusCancelled, f.deal(t).Status)
	assert.Empty(t, f.events(t))
	_, ok := f.session(reviewerID)
	assert.False(t, ok)
}

func TestPeerApproveDealMissing(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	f.store.DeleteDeal(dealID)

	err := negotiation.HandlePeerApprove(f.c, f.reviewer, dealID)

	assert.True(t, errors.Is(err, objects.ErrDealNotFound))
	_, ok := f.session(reviewerID)
	assert.False(t, ok)
	assert.Empty(t, f.events(t))
}

func TestPeerApproveStoreFailureKeepsSessions(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	f.store.DecisionErr = errors.New("connection reset")

	err := negotiation.HandlePeerApprove(f.c, f.reviewer, dealID)

	assert.Error(t, err)
	assert.False(t, objects.IsUserFacing(err))
	_, ok := f.session(reviewerID)
	assert.True(t, ok, "the reviewer may try again")
}

func TestEmptyRejectionReasonIsReprompted(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	require.NoError(t, negotiation.HandlePeerReject(f.c, f.reviewer, dealID))
	f.publisher.Reset()

	for _, body := range []string{"", "   \n\t"} {
		claimed, err := negotiation.TryIntercept(f.c, f.reviewer, text(80, body))
		assert.True(t, claimed)
		assert.True(t, errors.Is(err, objects.ErrValidation))
	}

	current, ok := f.session(reviewerID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingRejectionReason, current.State)
	assert.Empty(t, f.events(t))
	assert.Equal(t, objects.DealStatusPaid, f.deal(t).Status)
	assert.Len(t, f.publisher.TextsTo(reviewerID), 2)
}

func TestRejectionReasonAfterStatusDrift(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)
	require.NoError(t, negotiation.HandlePeerReject(f.c, f.reviewer, dealID))
	f.store.SetStatus(dealID, objects.DealStatusPosted)

	_, err := negotiation.TryIntercept(f.c, f.reviewer, text(81, "  Too late, but wrong logo  "))
	require.NoError(t, err)

	deal := f.deal(t)
	assert.Equal(t, objects.DealStatusPosted, deal.Status, "status is left alone")
	require.NotNil(t, deal.RejectionReason)
	assert.Equal(t, "  Too late, but wrong logo  ", *deal.RejectionReason, "reason is stored verbatim")

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, objects.DealStatusPosted, events[0].FromStatus)
	assert.Equal(t, objects.DealStatusPosted, events[0].ToStatus)
}

func TestPeerRejectClearsReviewerRelay(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)

	require.NoError(t, negotiation.HandlePeerReject(f.c, f.reviewer, dealID))

	_, hasRelay := f.c.Sessions.Relay(reviewerID)
	assert.False(t, hasRelay)
	assert.Equal(t, []string{f.reviewer.Locale().Get("negotiation.ask_reason")},
		f.publisher.TextsTo(reviewerID)[len(f.publisher.TextsTo(reviewerID))-1:])
}

func TestHandleCallbackRoutesWorkflowActions(t *testing.T) {
	f := newFixture(t, objects.DealStatusPaid)
	reachPeerReview(t, f)

	require.NoError(t, negotiation.HandleCallback(f.c, f.reviewer, messaging.ActionPeerApprove, dealID))
	assert.Equal(t, objects.DealStatusScheduled, f.deal(t).Status)

	assert.Error(t, negotiation.HandleCallback(f.c, f.reviewer, "launch", dealID))
}

func TestCreativeCommandAndSelect(t *testing.T) {
	f := newFixture(t, objects.DealStatusCreativeReview)
	f.store.PutDeal(&objects.Deal{ID: 8, AdvertiserID: submitterID, PublisherID: 300, Status: objects.DealStatusAgreed})

	require.NoError(t, negotiation.HandleCreativeCommand(f.c, f.submitter))
	require.Len(t, f.publisher.Messages, 1)
	assert.Equal(t, []string{messaging.CallbackData(messaging.ActionCreative, dealID)},
		mocks.CallbackDataOf(f.publisher.Messages[0].Message))

	err := negotiation.HandleCreativeSelect(f.c, f.submitter, 8)
	assert.True(t, errors.Is(err, objects.ErrInvalidDealState))

	err = negotiation.HandleCreativeSelect(f.c, &objects.User{UserId: 999}, dealID)
	assert.True(t, errors.Is(err, objects.ErrDealNotFound))

	require.NoError(t, negotiation.HandleCreativeSelect(f.c, f.submitter, dealID))
	current, ok := f.session(submitterID)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingCreativePost, current.State)
}

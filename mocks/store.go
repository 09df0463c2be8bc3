package mocks

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"dealbot/objects"
	"dealbot/repository"
)

// MemoryStore is an in-memory repository.Store. Deals are copied on the
// way in and out so callers never share state with the store.
type MemoryStore struct {
	mu sync.Mutex

	users    map[int64]*objects.User
	deals    map[int64]*objects.Deal
	events   []*objects.DealEvent
	messages []*objects.ConversationMessage

	// Injected failures
	DecisionErr       error
	UpdateCreativeErr error
	GetDealErr        error
	MessageErr        error

	nextEventID   int64
	nextMessageID int64
}

var _ repository.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]*objects.User),
		deals: make(map[int64]*objects.Deal),
	}
}

// AddUser registers a participant
func (s *MemoryStore) AddUser(user *objects.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserId] = user
}

// PutDeal stores a copy of deal, replacing any deal with the same id
func (s *MemoryStore) PutDeal(deal *objects.Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deals[deal.ID] = copyDeal(deal)
}

// SetStatus changes a deal's status behind the application's back
func (s *MemoryStore) SetStatus(dealID int64, status objects.DealStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if deal, ok := s.deals[dealID]; ok {
		deal.Status = status
	}
}

// DeleteDeal removes a deal
func (s *MemoryStore) DeleteDeal(dealID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deals, dealID)
}

// Messages returns the conversation log
func (s *MemoryStore) Messages() []*objects.ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*objects.ConversationMessage(nil), s.messages...)
}

func (s *MemoryStore) FindUser(userId int64) *objects.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userId]
}

func (s *MemoryStore) GetDealByID(id int64) (*objects.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetDealErr != nil {
		return nil, s.GetDealErr
	}
	deal, ok := s.deals[id]
	if !ok {
		return nil, nil
	}
	return copyDeal(deal), nil
}

func (s *MemoryStore) ListUserDeals(userId int64, statuses []objects.DealStatus) ([]*objects.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[objects.DealStatus]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}

	var deals []*objects.Deal
	for _, deal := range s.deals {
		if deal.HasParticipant(userId) && wanted[deal.Status] {
			deals = append(deals, copyDeal(deal))
		}
	}
	sort.Slice(deals, func(i, j int) bool { return deals[i].ID < deals[j].ID })
	return deals, nil
}

func (s *MemoryStore) UpdateDealCreative(dealID int64, text string, media []objects.MediaRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateCreativeErr != nil {
		return s.UpdateCreativeErr
	}
	deal, ok := s.deals[dealID]
	if !ok || !objects.IsCreativeEligible(deal.Status) {
		return fmt.Errorf("update creative of deal %d: %w", dealID, objects.ErrInvalidDealState)
	}

	deal.CreativeText = text
	deal.CreativeMedia = append([]objects.MediaRef(nil), media...)
	deal.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) RecordCreativeDecision(event *objects.DealEvent, rejectionReason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DecisionErr != nil {
		return s.DecisionErr
	}
	deal, ok := s.deals[event.DealID]
	if !ok || deal.Status != event.FromStatus {
		return fmt.Errorf("deal %d is no longer %s: %w", event.DealID, event.FromStatus, objects.ErrInvalidDealState)
	}

	deal.Status = event.ToStatus
	if rejectionReason != nil {
		reason := *rejectionReason
		deal.RejectionReason = &reason
	}
	deal.UpdatedAt = time.Now().UTC()

	s.nextEventID++
	event.ID = s.nextEventID
	stored := *event
	s.events = append(s.events, &stored)
	return nil
}

func (s *MemoryStore) CreateConversationMessage(message *objects.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MessageErr != nil {
		return s.MessageErr
	}

	s.nextMessageID++
	message.ID = s.nextMessageID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	stored := *message
	s.messages = append(s.messages, &stored)
	return nil
}

func (s *MemoryStore) GetDealEvents(dealID int64) ([]*objects.DealEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []*objects.DealEvent
	for _, event := range s.events {
		if event.DealID == dealID {
			copied := *event
			events = append(events, &copied)
		}
	}
	return events, nil
}

func copyDeal(deal *objects.Deal) *objects.Deal {
	copied := *deal
	copied.CreativeMedia = append([]objects.MediaRef(nil), deal.CreativeMedia...)
	if deal.RejectionReason != nil {
		reason := *deal.RejectionReason
		copied.RejectionReason = &reason
	}
	return &copied
}

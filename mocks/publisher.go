package mocks

import (
	"sync"

	"dealbot/rabbit"
)

// RecordingPublisher stands in for the RabbitMQ client
type RecordingPublisher struct {
	mu sync.Mutex

	Messages  []rabbit.MessageBag
	Callbacks []rabbit.CallbackAnswerBag
	Edits     []rabbit.EditMessageBag

	// Err is returned from every publish when set
	Err error
}

func (p *RecordingPublisher) PublishTgMessage(messageBag rabbit.MessageBag) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, messageBag)
	return nil
}

func (p *RecordingPublisher) PublishCallbackAnswer(callbackBag rabbit.CallbackAnswerBag) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Callbacks = append(p.Callbacks, callbackBag)
	return nil
}

func (p *RecordingPublisher) PublishEditMessage(editBag rabbit.EditMessageBag) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Edits = append(p.Edits, editBag)
	return nil
}

// TextsTo returns the texts of the notifications queued for chatID
func (p *RecordingPublisher) TextsTo(chatID int64) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var texts []string
	for _, bag := range p.Messages {
		if bag.Message.ChatID == chatID {
			texts = append(texts, bag.Message.Text)
		}
	}
	return texts
}

// Reset forgets everything recorded so far
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = nil
	p.Callbacks = nil
	p.Edits = nil
}

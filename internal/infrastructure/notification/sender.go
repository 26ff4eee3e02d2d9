package notification

import (
	"context"
	"sync"
)

// EmailSender delivers one HTML email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// MessageSender delivers one plain-text chat message to an E.164 number.
type MessageSender interface {
	SendText(ctx context.Context, to, body string) error
}

// Email is a message captured by InMemoryEmail.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// InMemoryEmail records emails instead of sending them.
type InMemoryEmail struct {
	mu     sync.Mutex
	Outbox []Email
	Err    error
}

func (m *InMemoryEmail) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Outbox = append(m.Outbox, Email{To: to, Subject: subject, HTML: html})
	return nil
}

// Message is a chat message captured by InMemoryMessages.
type Message struct {
	To   string
	Body string
}

// InMemoryMessages records chat messages instead of sending them.
type InMemoryMessages struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

func (m *InMemoryMessages) SendText(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, Message{To: to, Body: body})
	return nil
}

package kafka

import (
	"context"
	"time"
)

// CodeRequestedPayload is consumed by the mailer pipeline to deliver
// one-time codes.
type CodeRequestedPayload struct {
	Email   string    `json:"email"`
	Code    string    `json:"code"`
	Purpose string    `json:"purpose"`
	At      time.Time `json:"at"`
}

const EventCodeRequested = "account.code_requested"

// CodeSender hands one-time codes to the mailer pipeline over the broker.
// Unlike lifecycle events this publish is synchronous: the caller needs to
// know whether the code left the building.
type CodeSender struct {
	publisher Publisher
}

func NewCodeSender(publisher Publisher) *CodeSender {
	return &CodeSender{publisher: publisher}
}

func (s *CodeSender) SendCode(ctx context.Context, email, code, purpose string) error {
	return s.publisher.Publish(ctx, EventCodeRequested, email, CodeRequestedPayload{
		Email:   email,
		Code:    code,
		Purpose: purpose,
		At:      time.Now().UTC(),
	})
}

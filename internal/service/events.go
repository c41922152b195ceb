package service

import (
	"context"

	"go.uber.org/zap"
)

// EventSink receives lifecycle events for asynchronous publication.
// Publication failures never roll back the state change they describe.
type EventSink interface {
	Dispatch(eventType, subject string, payload interface{})
}

// NopEventSink discards events. Used when the broker is disabled.
type NopEventSink struct{}

func (NopEventSink) Dispatch(string, string, interface{}) {}

// CodeSender delivers a one-time code to an address. Unlike lifecycle
// events, delivery is awaited: a code the user never receives makes the
// calling operation fail.
type CodeSender interface {
	SendCode(ctx context.Context, email, code, purpose string) error
}

// LogCodeSender writes codes to the log instead of delivering them. For
// development environments without a mailer pipeline.
type LogCodeSender struct {
	Logger *zap.Logger
}

func (s LogCodeSender) SendCode(_ context.Context, email, code, purpose string) error {
	s.Logger.Info("One-time code issued",
		zap.String("email", email),
		zap.String("code", code),
		zap.String("purpose", purpose))
	return nil
}

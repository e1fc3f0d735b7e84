// Package channel holds the outbound delivery adapters. Each adapter is a
// pure I/O boundary: it never touches event state, and failures come back
// as values for the orchestrator to weigh.
package channel

import (
	"context"
	"errors"
)

// ErrChannelUnavailable marks a send that failed because the channel has no
// provider configured, as opposed to a provider rejecting the message.
var ErrChannelUnavailable = errors.New("channel unavailable: provider not configured")

// SMSSender delivers a plain-text body to a phone number.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// Email is one outbound email message.
type Email struct {
	To          string
	FromName    string
	FromAddress string
	ReplyTo     string
	Subject     string
	HTML        string
}

// EmailSender delivers an Email through whichever backend was resolved at
// startup.
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}

type disabledSMS struct{}

func (disabledSMS) Send(ctx context.Context, to, body string) error {
	return ErrChannelUnavailable
}

type disabledEmail struct{}

func (disabledEmail) Send(ctx context.Context, msg Email) error {
	return ErrChannelUnavailable
}

// Package dispatch is the delivery core: it selects due events, fans each
// one out to the configured channels and records the sent marker when at
// least one channel confirms.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/syedrazahussain/celebratemate/internal/cache"
	"github.com/syedrazahussain/celebratemate/internal/channel"
	"github.com/syedrazahussain/celebratemate/internal/model"
	"github.com/syedrazahussain/celebratemate/internal/repo"
)

// Outcome collects the per-channel results of one event's dispatch.
type Outcome struct {
	SMSAttempted   bool
	SMSErr         error
	EmailAttempted bool
	EmailErr       error
}

// AnySucceeded reports whether at least one invoked channel confirmed
// delivery. An event that attempted no channels has not succeeded.
func (o Outcome) AnySucceeded() bool {
	return (o.SMSAttempted && o.SMSErr == nil) ||
		(o.EmailAttempted && o.EmailErr == nil)
}

type Options struct {
	Repo  repo.EventRepository
	SMS   channel.SMSSender
	Email channel.EmailSender

	// Receipts is optional; nil disables receipt caching.
	Receipts cache.ReceiptCache

	Location *time.Location
	Lookback time.Duration

	// FromAddress is the configured sender address; empty falls back to
	// the event owner's own email.
	FromAddress string

	// SendTimeout bounds each provider call so a slow provider cannot
	// stall the scheduler across ticks.
	SendTimeout time.Duration

	// TickTimeout bounds one whole pass, store calls included. A hung
	// database connection would otherwise block the scheduler loop with
	// no way to recover.
	TickTimeout time.Duration

	Now func() time.Time
}

type Dispatcher struct {
	repo        repo.EventRepository
	sms         channel.SMSSender
	email       channel.EmailSender
	receipts    cache.ReceiptCache
	loc         *time.Location
	lookback    time.Duration
	fromAddress string
	sendTimeout time.Duration
	tickTimeout time.Duration
	now         func() time.Time
}

func New(opts Options) (*Dispatcher, error) {
	if opts.Repo == nil {
		return nil, errors.New("repo must not be nil")
	}
	if opts.SMS == nil || opts.Email == nil {
		return nil, errors.New("channel adapters must not be nil")
	}
	if opts.Location == nil {
		return nil, errors.New("location must not be nil")
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	if opts.TickTimeout <= 0 {
		opts.TickTimeout = time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Dispatcher{
		repo:        opts.Repo,
		sms:         opts.SMS,
		email:       opts.Email,
		receipts:    opts.Receipts,
		loc:         opts.Location,
		lookback:    opts.Lookback,
		fromAddress: opts.FromAddress,
		sendTimeout: opts.SendTimeout,
		tickTimeout: opts.TickTimeout,
		now:         opts.Now,
	}, nil
}

// RunOnce is one full selector -> orchestrator -> recorder pass. It is the
// scheduler's tick function: it never returns an error and never panics
// outward; all failures end up in the log and the unchanged store state.
func (d *Dispatcher) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, d.tickTimeout)
	defer cancel()

	from, to := WindowAt(d.now(), d.loc, d.lookback)

	events, err := d.repo.DueBetween(ctx, from, to)
	if err != nil {
		slog.Error("select due events", "err", err)
		return
	}
	if len(events) == 0 {
		return
	}

	slog.Info("dispatching due events",
		"count", len(events),
		"window_from", from.Format("2006-01-02 15:04"),
		"window_to", to.Format("2006-01-02 15:04"),
	)

	for _, ev := range events {
		outcome := d.Process(ctx, ev)
		if !outcome.AnySucceeded() {
			slog.Warn("no channel succeeded, event stays pending", "event_id", ev.ID)
			continue
		}

		sentAt := d.now().UTC()
		if err := d.repo.MarkSent(ctx, ev.ID, sentAt); err != nil {
			slog.Error("mark event sent", "event_id", ev.ID, "err", err)
			continue
		}
		slog.Info("event marked sent", "event_id", ev.ID, "sent_at", sentAt)

		if d.receipts != nil {
			r := cache.Receipt{
				SMSDelivered:   outcome.SMSAttempted && outcome.SMSErr == nil,
				EmailDelivered: outcome.EmailAttempted && outcome.EmailErr == nil,
				SentAt:         sentAt,
			}
			if err := d.receipts.StoreDelivered(ctx, ev.ID, r); err != nil {
				slog.Warn("store delivery receipt", "event_id", ev.ID, "err", err)
			}
		}
	}
}

// Process attempts every channel the event has a recipient for. A failure
// on one channel never aborts the other.
func (d *Dispatcher) Process(ctx context.Context, ev model.DueEvent) Outcome {
	var out Outcome

	if ev.Mobile != nil {
		out.SMSAttempted = true
		out.SMSErr = d.sendSMS(ctx, ev)
		logChannel("sms", ev.ID, out.SMSErr)
	}

	if ev.Email != nil {
		out.EmailAttempted = true
		out.EmailErr = d.sendEmail(ctx, ev)
		logChannel("email", ev.ID, out.EmailErr)
	}

	return out
}

func (d *Dispatcher) sendSMS(ctx context.Context, ev model.DueEvent) error {
	sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	return d.sms.Send(sctx, *ev.Mobile, smsBody(ev.Message, ev.SenderName))
}

func (d *Dispatcher) sendEmail(ctx context.Context, ev model.DueEvent) error {
	html, err := renderEmailHTML(emailData{
		Message:     ev.Message,
		SenderName:  ev.SenderName,
		SenderEmail: ev.SenderEmail,
	})
	if err != nil {
		return err
	}

	from := d.fromAddress
	if from == "" {
		from = ev.SenderEmail
	}

	sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	return d.email.Send(sctx, channel.Email{
		To:          *ev.Email,
		FromName:    ev.SenderName,
		FromAddress: from,
		ReplyTo:     ev.SenderEmail,
		Subject:     emailSubject(ev.Type),
		HTML:        html,
	})
}

func logChannel(name string, eventID any, err error) {
	switch {
	case err == nil:
		slog.Info(name+" delivered", "event_id", eventID)
	case errors.Is(err, channel.ErrChannelUnavailable):
		slog.Warn(name+" channel unavailable", "event_id", eventID)
	default:
		slog.Error(name+" delivery failed", "event_id", eventID, "err", err)
	}
}

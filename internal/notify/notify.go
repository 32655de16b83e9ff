// Package notify sends each participant a text message telling them who
// they drew. Delivery goes through the TextMagic REST API; sends are
// spaced out with a fixed delay so the provider does not throttle us.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iZac85/SecretSanta/internal/match"
)

// DefaultDelay is the pause between consecutive sends.
const DefaultDelay = 1 * time.Second

// DefaultTemplate is the message sent to each giver. %[1]s is the giver,
// %[2]s the receiver.
const DefaultTemplate = "Hej %[1]s!\n\nDin hemliga julklappsmottagare är: %[2]s\n\nGod Jul önskar Tomten!"

// Sender delivers one text message to one phone number.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// Notifier fans an assignment out to its participants, one message per
// pair. Send failures do not retry and do not stop the remaining sends.
type Notifier struct {
	sender   Sender
	delay    time.Duration
	template string
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithDelay overrides the pause between sends.
func WithDelay(d time.Duration) Option {
	return func(n *Notifier) { n.delay = d }
}

// WithTemplate overrides the message template. It must contain %[1]s for
// the giver name and %[2]s for the receiver name.
func WithTemplate(t string) Option {
	return func(n *Notifier) { n.template = t }
}

// New creates a Notifier around sender.
func New(sender Sender, opts ...Option) *Notifier {
	n := &Notifier{
		sender:   sender,
		delay:    DefaultDelay,
		template: DefaultTemplate,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Message renders the text sent to giver about receiver.
func (n *Notifier) Message(giver, receiver string) string {
	return fmt.Sprintf(n.template, giver, receiver)
}

// NotifyAll sends one message per pair, waiting n.delay between sends.
// Every pair is attempted even if earlier ones fail; all failures come
// back joined in a single error. The context cancels the wait as well as
// the sends.
func (n *Notifier) NotifyAll(ctx context.Context, assignment match.Assignment, contacts map[string]string) error {
	var errs []error
	for i, pair := range assignment {
		if i > 0 && n.delay > 0 {
			select {
			case <-time.After(n.delay):
			case <-ctx.Done():
				errs = append(errs, ctx.Err())
				return errors.Join(errs...)
			}
		}

		phone, ok := contacts[pair.Giver]
		if !ok || strings.TrimSpace(phone) == "" {
			errs = append(errs, fmt.Errorf("no phone number for %s", pair.Giver))
			continue
		}

		if err := n.sender.Send(ctx, phone, n.Message(pair.Giver, pair.Receiver)); err != nil {
			errs = append(errs, fmt.Errorf("failed to notify %s: %w", pair.Giver, err))
		}
	}
	return errors.Join(errs...)
}

// NotifyOne sends the message for a single giver out of assignment.
func (n *Notifier) NotifyOne(ctx context.Context, assignment match.Assignment, contacts map[string]string, giver string) error {
	receiver, ok := assignment.Receiver(giver)
	if !ok {
		return fmt.Errorf("%s is not a giver in this assignment", giver)
	}
	phone, ok := contacts[giver]
	if !ok || strings.TrimSpace(phone) == "" {
		return fmt.Errorf("no phone number for %s", giver)
	}
	return n.sender.Send(ctx, phone, n.Message(giver, receiver))
}

package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/Hostably/hostably-backend/internal/application/errs"
	"github.com/Hostably/hostably-backend/internal/application/interfaces"
	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/go-playground/validator/v10"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Repos groups every store the webhook handlers write to. Each table is
// written by exactly one handler family; cross-family access is read-only.
type Repos struct {
	Journal        interfaces.JournalRepo
	Customers      interfaces.CustomerRepo
	Subscriptions  interfaces.SubscriptionRepo
	Invoices       interfaces.InvoiceRepo
	PaymentMethods interfaces.PaymentMethodRepo
	Sessions       interfaces.CheckoutSessionRepo
	Payouts        interfaces.PayoutRepo
	Ledger         interfaces.RevenueLedger
}

// Webhook reconciles inbound Stripe events against the local billing
// mirror. Deliveries are at-least-once and unordered, so every handler is
// an upsert keyed by the provider object ID and the journal's unique event
// ID is the only duplicate guard.
type Webhook struct {
	cfg      Config
	repos    Repos
	validate *validator.Validate
	routes   map[stripe.EventType]handlerFunc
}

func NewWebhook(cfg Config, repos Repos) *Webhook {
	w := &Webhook{
		cfg:      cfg,
		repos:    repos,
		validate: validator.New(),
	}
	w.routes = w.buildRoutes()
	return w
}

// Execute runs the full intake pipeline: verify, journal, dispatch, mark.
// A nil return means the delivery is acknowledged; errs.VerificationError
// means the payload never made it past the signature check.
func (w *Webhook) Execute(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := w.verify(payload, sigHeader)
	if err != nil {
		return err
	}

	prior, err := w.repos.Journal.Record(ctx, db.WebhookEvent{
		StripeEventID: event.ID,
		EventType:     string(event.Type),
		Livemode:      event.Livemode,
		EventData:     event.Data.Raw,
		ReceivedAt:    time.Now(),
	})
	if err != nil {
		return errs.RetryableError{Err: err}
	}
	if prior != nil {
		if prior.Processed {
			slog.Info("Event already processed, acking replay", "event", event.ID, "type", event.Type)
			return nil
		}
		slog.Info("Event journaled by an earlier attempt, reprocessing", "event", event.ID, "type", event.Type)
	}

	slog.Info("Handling event", "event", event.ID, "type", event.Type)

	if err := w.dispatch(ctx, event); err != nil {
		if markErr := w.repos.Journal.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			slog.Error("Failed to record handler error", "event", event.ID, "err", markErr)
		}
		return errs.RetryableError{Err: err}
	}

	if err := w.repos.Journal.MarkProcessed(ctx, event.ID); err != nil {
		return errs.RetryableError{Err: err}
	}
	return nil
}

// verify authenticates the delivery with the provider's timestamp+HMAC
// scheme. A missing secret fails closed: verification is never skipped.
func (w *Webhook) verify(payload []byte, sigHeader string) (stripe.Event, error) {
	if w.cfg.webhookSecret == "" {
		return stripe.Event{}, errs.VerificationError{Err: errs.ErrSecretNotConfigured}
	}
	if sigHeader == "" {
		return stripe.Event{}, errs.VerificationError{Err: errs.ErrMissingSignature}
	}
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, w.cfg.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, errs.VerificationError{Err: err}
	}
	return event, nil
}

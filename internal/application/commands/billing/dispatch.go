package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v82"
)

type handlerFunc func(ctx context.Context, event stripe.Event) error

// buildRoutes is the full dispatch table. Every event type maps to exactly
// one handler; anything absent here is acknowledged without effect, since
// the provider's event taxonomy grows independently of this system.
func (w *Webhook) buildRoutes() map[stripe.EventType]handlerFunc {
	return map[stripe.EventType]handlerFunc{
		"customer.created": w.onCustomerUpserted,
		"customer.updated": w.onCustomerUpserted,
		"customer.deleted": w.onCustomerDeleted,

		"customer.subscription.created": w.onSubscription,
		"customer.subscription.updated": w.onSubscription,
		"customer.subscription.deleted": w.onSubscription,

		"invoice.created":              w.onInvoice,
		"invoice.finalized":            w.onInvoice,
		"invoice.paid":                 w.onInvoice,
		"invoice.payment_failed":       w.onInvoice,
		"invoice.voided":               w.onInvoice,
		"invoice.marked_uncollectible": w.onInvoice,

		"payment_method.attached":              w.onPaymentMethodAttached,
		"payment_method.updated":               w.onPaymentMethodAttached,
		"payment_method.automatically_updated": w.onPaymentMethodAttached,
		"payment_method.detached":              w.onPaymentMethodDetached,

		"checkout.session.completed": w.onCheckoutSession,
		"checkout.session.expired":   w.onCheckoutSession,

		"payment_intent.succeeded":      w.onPaymentIntentSucceeded,
		"payment_intent.payment_failed": w.onPaymentIntentFailed,

		"transfer.created": w.onTransferCreated,

		"payout.created": w.onPayoutUpserted,
		"payout.updated": w.onPayoutUpserted,
		"payout.failed":  w.onPayoutFailed,
		"payout.paid":    w.onPayoutPaid,
	}
}

func (w *Webhook) dispatch(ctx context.Context, event stripe.Event) error {
	handler, ok := w.routes[event.Type]
	if !ok {
		slog.Info("Unhandled event type, acking", "event", event.ID, "type", event.Type)
		return nil
	}
	return handler(ctx, event)
}

// decode unmarshals the event's embedded object exactly once so handlers
// receive a statically shaped value instead of raw JSON.
func decode[T any](event stripe.Event) (*T, error) {
	var obj T
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("error parsing %s payload, %v", event.Type, err)
	}
	return &obj, nil
}

func eventTime(event stripe.Event) time.Time {
	return time.Unix(event.Created, 0)
}

func unixTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0)
	return &t
}

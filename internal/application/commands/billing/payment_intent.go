package billing

import (
	"context"
	"log/slog"

	"github.com/stripe/stripe-go/v82"
)

// onPaymentIntentSucceeded projects the settlement onto the booking's
// payment status and the tenant's revenue ledger. A payment intent without
// a booking reference is not booking-related and is acked without effect.
func (w *Webhook) onPaymentIntentSucceeded(ctx context.Context, event stripe.Event) error {
	intent, err := decode[stripe.PaymentIntent](event)
	if err != nil {
		return err
	}

	bookingID, ok := w.bookingFromMetadata(intent.Metadata)
	if !ok {
		slog.Info("Payment intent has no booking reference", "paymentIntent", intent.ID)
		return nil
	}

	return w.repos.Ledger.PaymentSucceeded(ctx, bookingID, intent.ID, intent.Amount, string(intent.Currency))
}

func (w *Webhook) onPaymentIntentFailed(ctx context.Context, event stripe.Event) error {
	intent, err := decode[stripe.PaymentIntent](event)
	if err != nil {
		return err
	}

	bookingID, ok := w.bookingFromMetadata(intent.Metadata)
	if !ok {
		slog.Info("Payment intent has no booking reference", "paymentIntent", intent.ID)
		return nil
	}

	slog.Info("Payment failed for booking", "paymentIntent", intent.ID, "booking", bookingID)
	return w.repos.Ledger.PaymentFailed(ctx, bookingID, intent.ID)
}

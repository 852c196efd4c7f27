package billing

import (
	"context"
	"log/slog"

	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/stripe/stripe-go/v82"
)

// onCheckoutSession stores the session with its customer, subscription and
// payment intent references so later events for those objects can resolve
// their tenant through it.
func (w *Webhook) onCheckoutSession(ctx context.Context, event stripe.Event) error {
	session, err := decode[stripe.CheckoutSession](event)
	if err != nil {
		return err
	}

	var customerID string
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	tenantID, ok, err := w.resolveTenant(ctx, session.Metadata, customerID)
	if err != nil {
		return err
	}
	if !ok {
		slog.Warn("Checkout session carries no resolvable tenant, skipping", "session", session.ID)
		return nil
	}

	row := db.CheckoutSession{
		StripeSessionID:  session.ID,
		TenantID:         tenantID,
		StripeCustomerID: customerID,
		Status:           string(session.Status),
		PaymentStatus:    string(session.PaymentStatus),
		UpdatedAt:        eventTime(event),
	}
	if session.Subscription != nil {
		row.StripeSubscriptionID = session.Subscription.ID
	}
	if session.PaymentIntent != nil {
		row.StripePaymentIntentID = session.PaymentIntent.ID
	}

	return w.repos.Sessions.Upsert(ctx, row)
}

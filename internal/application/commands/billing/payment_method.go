package billing

import (
	"context"
	"log/slog"

	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/stripe/stripe-go/v82"
)

// onPaymentMethodAttached resolves the tenant through the parent customer;
// payment methods carry no tenant metadata of their own.
func (w *Webhook) onPaymentMethodAttached(ctx context.Context, event stripe.Event) error {
	method, err := decode[stripe.PaymentMethod](event)
	if err != nil {
		return err
	}

	if method.Customer == nil || method.Customer.ID == "" {
		slog.Warn("Payment method has no customer, skipping", "paymentMethod", method.ID)
		return nil
	}
	customer, err := w.repos.Customers.GetByStripeID(ctx, method.Customer.ID)
	if err != nil {
		return err
	}
	if customer == nil {
		slog.Warn("Payment method customer is not mirrored yet, skipping",
			"paymentMethod", method.ID, "customer", method.Customer.ID)
		return nil
	}

	row := db.PaymentMethod{
		StripePaymentMethodID: method.ID,
		TenantID:              customer.TenantID,
		StripeCustomerID:      method.Customer.ID,
		Type:                  string(method.Type),
		UpdatedAt:             eventTime(event),
	}
	if method.Card != nil {
		row.CardBrand = string(method.Card.Brand)
		row.CardLast4 = method.Card.Last4
		row.CardExpMonth = method.Card.ExpMonth
		row.CardExpYear = method.Card.ExpYear
	}

	return w.repos.PaymentMethods.Upsert(ctx, row)
}

// A detach removes the row outright, there is no soft delete for payment
// methods.
func (w *Webhook) onPaymentMethodDetached(ctx context.Context, event stripe.Event) error {
	method, err := decode[stripe.PaymentMethod](event)
	if err != nil {
		return err
	}

	return w.repos.PaymentMethods.Delete(ctx, method.ID)
}

package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/stripe/stripe-go/v82"
)

func (w *Webhook) onCustomerUpserted(ctx context.Context, event stripe.Event) error {
	customer, err := decode[stripe.Customer](event)
	if err != nil {
		return err
	}

	tenantID, ok := w.tenantFromMetadata(customer.Metadata)
	if !ok {
		slog.Warn("Customer carries no tenant reference, skipping", "customer", customer.ID)
		return nil
	}

	return w.repos.Customers.Upsert(ctx, db.Customer{
		StripeCustomerID: customer.ID,
		TenantID:         tenantID,
		Email:            customer.Email,
		Name:             customer.Name,
		CreatedAt:        time.Unix(customer.Created, 0),
		UpdatedAt:        eventTime(event),
	})
}

func (w *Webhook) onCustomerDeleted(ctx context.Context, event stripe.Event) error {
	customer, err := decode[stripe.Customer](event)
	if err != nil {
		return err
	}

	slog.Info("Removing mirrored customer", "customer", customer.ID)
	return w.repos.Customers.Delete(ctx, customer.ID)
}

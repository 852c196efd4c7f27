package billing

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/stripe/stripe-go/v82"
)

// onSubscription applies created/updated/deleted uniformly: the stored row
// is replaced wholesale from the payload, so a duplicate or out-of-order
// delivery converges to whichever payload was applied last. The provider's
// status vocabulary is stored verbatim; a deleted subscription arrives with
// status canceled and needs no special casing.
func (w *Webhook) onSubscription(ctx context.Context, event stripe.Event) error {
	sub, err := decode[stripe.Subscription](event)
	if err != nil {
		return err
	}

	var customerID string
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	tenantID, ok, err := w.resolveTenant(ctx, sub.Metadata, customerID)
	if err != nil {
		return err
	}
	if !ok {
		slog.Warn("Subscription carries no resolvable tenant, skipping", "subscription", sub.ID, "customer", customerID)
		return nil
	}

	row := db.Subscription{
		StripeSubscriptionID: sub.ID,
		TenantID:             tenantID,
		StripeCustomerID:     customerID,
		Status:               string(sub.Status),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		CanceledAt:           unixTime(sub.CanceledAt),
		TrialStart:           unixTime(sub.TrialStart),
		TrialEnd:             unixTime(sub.TrialEnd),
		EventTS:              eventTime(event),
		UpdatedAt:            eventTime(event),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		row.CurrentPeriodStart = unixTime(item.CurrentPeriodStart)
		row.CurrentPeriodEnd = unixTime(item.CurrentPeriodEnd)
		if item.Price != nil {
			row.StripePriceID = item.Price.ID
			row.PlanName = item.Price.Nickname
			row.PlanPrice = item.Price.UnitAmount
			row.Currency = string(item.Price.Currency)
			if item.Price.Recurring != nil {
				row.BillingCycle = string(item.Price.Recurring.Interval)
			}
		}
	}
	if len(sub.Metadata) > 0 {
		if metadata, err := json.Marshal(sub.Metadata); err == nil {
			row.Metadata = metadata
		}
	}

	prevTS, err := w.repos.Subscriptions.Upsert(ctx, row)
	if err != nil {
		return err
	}
	// Last-delivered-wins is the convergence rule; make the known ordering
	// weakness observable instead of hiding it.
	if prevTS != nil && row.EventTS.Before(*prevTS) {
		slog.Warn("Applied subscription event older than stored state",
			"subscription", sub.ID, "eventTS", row.EventTS, "storedTS", *prevTS)
	}
	return nil
}

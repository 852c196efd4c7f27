package billing

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/stripe/stripe-go/v82"
)

func (w *Webhook) onInvoice(ctx context.Context, event stripe.Event) error {
	invoice, err := decode[stripe.Invoice](event)
	if err != nil {
		return err
	}

	var customerID string
	if invoice.Customer != nil {
		customerID = invoice.Customer.ID
	}
	tenantID, ok, err := w.resolveTenant(ctx, invoice.Metadata, customerID)
	if err != nil {
		return err
	}
	if !ok {
		slog.Warn("Invoice carries no resolvable tenant, skipping", "invoice", invoice.ID, "customer", customerID)
		return nil
	}

	row := db.Invoice{
		StripeInvoiceID:  invoice.ID,
		TenantID:         tenantID,
		StripeCustomerID: customerID,
		Status:           string(invoice.Status),
		AmountDue:        invoice.AmountDue,
		AmountPaid:       invoice.AmountPaid,
		AmountRemaining:  invoice.AmountRemaining,
		Currency:         string(invoice.Currency),
		HostedInvoiceURL: invoice.HostedInvoiceURL,
		InvoicePDF:       invoice.InvoicePDF,
		UpdatedAt:        eventTime(event),
	}
	if invoice.StatusTransitions != nil {
		row.PaidAt = unixTime(invoice.StatusTransitions.PaidAt)
	}
	if invoice.Lines != nil && len(invoice.Lines.Data) > 0 {
		if lines, err := json.Marshal(invoice.Lines.Data); err == nil {
			row.Lines = lines
		}
	}

	return w.repos.Invoices.Upsert(ctx, row)
}

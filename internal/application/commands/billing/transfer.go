package billing

import (
	"context"
	"log/slog"

	"github.com/Hostably/hostably-backend/internal/application/consts"
	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/stripe/stripe-go/v82"
)

// onTransferCreated moves the linked booking from pending to transferred
// and pins the transfer ID onto its revenue transaction.
func (w *Webhook) onTransferCreated(ctx context.Context, event stripe.Event) error {
	transfer, err := decode[stripe.Transfer](event)
	if err != nil {
		return err
	}

	bookingID, ok := w.bookingFromMetadata(transfer.Metadata)
	if !ok {
		slog.Info("Transfer has no booking reference", "transfer", transfer.ID)
		return nil
	}

	return w.repos.Ledger.TransferCreated(ctx, bookingID, transfer.ID, transfer.Amount, string(transfer.Currency))
}

func (w *Webhook) onPayoutUpserted(ctx context.Context, event stripe.Event) error {
	payout, err := decode[stripe.Payout](event)
	if err != nil {
		return err
	}

	row, ok, err := w.payoutRow(ctx, payout, event, string(payout.Status))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return w.repos.Payouts.Upsert(ctx, row)
}

func (w *Webhook) onPayoutFailed(ctx context.Context, event stripe.Event) error {
	payout, err := decode[stripe.Payout](event)
	if err != nil {
		return err
	}

	row, ok, err := w.payoutRow(ctx, payout, event, string(payout.Status))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if len(row.BookingIDs) > 0 {
		if err := w.repos.Ledger.SettleBookings(ctx, row.BookingIDs, consts.PayoutStatusFailed); err != nil {
			return err
		}
	}
	return w.repos.Payouts.Upsert(ctx, row)
}

// onPayoutPaid fans a single settlement out over every booking the payout
// covers. The payout row reaches its terminal status only after the batch
// update succeeds, so a partial failure leaves the payout re-drivable by
// the provider's retry.
func (w *Webhook) onPayoutPaid(ctx context.Context, event stripe.Event) error {
	payout, err := decode[stripe.Payout](event)
	if err != nil {
		return err
	}

	// Journal the payout first with a non-terminal status so a crash during
	// the fan-out is distinguishable from completion.
	row, ok, err := w.payoutRow(ctx, payout, event, "in_transit")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := w.repos.Payouts.Upsert(ctx, row); err != nil {
		return err
	}

	if len(row.BookingIDs) == 0 {
		slog.Warn("Payout settles no bookings", "payout", payout.ID)
	} else if err := w.repos.Ledger.SettleBookings(ctx, row.BookingIDs, consts.PayoutStatusPaidOut); err != nil {
		return err
	}

	return w.repos.Payouts.SetStatus(ctx, payout.ID, string(stripe.PayoutStatusPaid))
}

// payoutRow builds the mirror row, falling back to the stored payout for
// the tenant and the booking list when the event omits them. A paid or
// failed event often arrives without the list recorded by payout.created,
// and writing such an event must never erase what an earlier delivery
// stored; otherwise a retry after a failed fan-out has nothing to settle.
func (w *Webhook) payoutRow(ctx context.Context, payout *stripe.Payout, event stripe.Event, status string) (db.Payout, bool, error) {
	stored, err := w.repos.Payouts.GetByStripeID(ctx, payout.ID)
	if err != nil {
		return db.Payout{}, false, err
	}

	tenantID, ok := w.tenantFromMetadata(payout.Metadata)
	if !ok && stored != nil {
		tenantID, ok = stored.TenantID, true
	}
	if !ok {
		slog.Warn("Payout carries no tenant reference, skipping", "payout", payout.ID)
		return db.Payout{}, false, nil
	}

	bookingIDs := bookingIDsFromMetadata(payout.Metadata)
	if stored != nil && len(stored.BookingIDs) > 0 {
		bookingIDs = stored.BookingIDs
	}

	return db.Payout{
		StripePayoutID: payout.ID,
		TenantID:       tenantID,
		Status:         status,
		Amount:         payout.Amount,
		Currency:       string(payout.Currency),
		ArrivalDate:    unixTime(payout.ArrivalDate),
		BookingIDs:     bookingIDs,
		UpdatedAt:      eventTime(event),
	}, true, nil
}

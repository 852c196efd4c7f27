package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Hostably/hostably-backend/internal/application/consts"
	"github.com/Hostably/hostably-backend/internal/application/interfaces"
	dbs "github.com/Hostably/hostably-backend/pkg/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RevenueLedger keeps booking payment/payout state and the tenant's revenue
// transactions in lockstep with provider settlement state. Each projection
// that touches both tables runs in one transaction so a retry either sees
// the whole projection or none of it.
type RevenueLedger struct {
	uowFactory *dbs.UOWFactory
}

var _ interfaces.RevenueLedger = (*RevenueLedger)(nil)

func NewRevenueLedger(uowFactory *dbs.UOWFactory) *RevenueLedger {
	return &RevenueLedger{uowFactory: uowFactory}
}

func (l *RevenueLedger) PaymentSucceeded(ctx context.Context, bookingID uuid.UUID, paymentIntentID string, amount int64, currency string) (err error) {
	uow := l.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	var tenantID uuid.UUID
	err = tx.QueryRow(ctx, `UPDATE bookings SET payment_status = $2, payment_intent_id = $3 WHERE id = $1 RETURNING tenant_id`,
		bookingID, consts.PaymentStatusPaid, paymentIntentID).Scan(&tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("Booking referenced by payment does not exist", "booking", bookingID, "paymentIntent", paymentIntentID)
			return nil
		}
		return fmt.Errorf("err updating booking payment status, %v", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO revenue_transactions (tenant_id, booking_id, stripe_payment_intent_id, amount, currency, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,now(),now())
			ON CONFLICT (booking_id) DO UPDATE SET
				stripe_payment_intent_id = EXCLUDED.stripe_payment_intent_id,
				amount = EXCLUDED.amount,
				currency = EXCLUDED.currency,
				status = EXCLUDED.status,
				updated_at = now()`,
		tenantID, bookingID, paymentIntentID, amount, currency, consts.RevenueStatusSucceeded)
	if err != nil {
		return fmt.Errorf("err upserting revenue transaction, %v", err)
	}
	return nil
}

func (l *RevenueLedger) PaymentFailed(ctx context.Context, bookingID uuid.UUID, paymentIntentID string) (err error) {
	uow := l.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	_, err = tx.Exec(ctx, `UPDATE bookings SET payment_status = $2, payment_intent_id = $3 WHERE id = $1`,
		bookingID, consts.PaymentStatusFailed, paymentIntentID)
	if err != nil {
		return fmt.Errorf("err updating booking payment status, %v", err)
	}

	_, err = tx.Exec(ctx, `UPDATE revenue_transactions SET status = $2, updated_at = now() WHERE booking_id = $1`,
		bookingID, consts.RevenueStatusFailed)
	if err != nil {
		return fmt.Errorf("err updating revenue transaction, %v", err)
	}
	return nil
}

func (l *RevenueLedger) TransferCreated(ctx context.Context, bookingID uuid.UUID, transferID string, amount int64, currency string) (err error) {
	uow := l.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	tag, err := tx.Exec(ctx, `UPDATE bookings SET payout_status = $2, transfer_id = $3 WHERE id = $1`,
		bookingID, consts.PayoutStatusTransferred, transferID)
	if err != nil {
		return fmt.Errorf("err updating booking payout status, %v", err)
	}
	if tag.RowsAffected() == 0 {
		slog.Warn("Booking referenced by transfer does not exist", "booking", bookingID, "transfer", transferID)
		return nil
	}

	_, err = tx.Exec(ctx, `UPDATE revenue_transactions SET stripe_transfer_id = $2, updated_at = now() WHERE booking_id = $1`,
		bookingID, transferID)
	if err != nil {
		return fmt.Errorf("err updating revenue transaction, %v", err)
	}
	return nil
}

// SettleBookings is a single multi-row update so the fan-out cannot be
// partially applied.
func (l *RevenueLedger) SettleBookings(ctx context.Context, bookingIDs []uuid.UUID, status consts.BookingPayoutStatus) error {
	tag, err := l.uowFactory.Pool.Exec(ctx, `UPDATE bookings SET payout_status = $2 WHERE id = ANY($1)`,
		bookingIDs, status)
	if err != nil {
		return fmt.Errorf("err settling bookings, %v", err)
	}
	if int(tag.RowsAffected()) != len(bookingIDs) {
		slog.Warn("Payout settlement matched fewer bookings than referenced",
			"expected", len(bookingIDs), "updated", tag.RowsAffected())
	}
	return nil
}

package interfaces

import (
	"context"
	"time"

	"github.com/Hostably/hostably-backend/internal/application/consts"
	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/google/uuid"
)

// JournalRepo is the idempotency guard. Record inserts the event keyed by
// its provider event ID and returns the previously journaled row when the
// event was already seen, nil when this delivery is the first.
type JournalRepo interface {
	Record(ctx context.Context, event db.WebhookEvent) (*db.WebhookEvent, error)
	MarkProcessed(ctx context.Context, stripeEventID string) error
	MarkFailed(ctx context.Context, stripeEventID string, message string) error
	GetEvent(ctx context.Context, stripeEventID string) (*db.WebhookEvent, error)
}

type CustomerRepo interface {
	Upsert(ctx context.Context, customer db.Customer) error
	Delete(ctx context.Context, stripeCustomerID string) error
	GetByStripeID(ctx context.Context, stripeCustomerID string) (*db.Customer, error)
}

// SubscriptionRepo.Upsert replaces the whole row and reports the event
// timestamp the row carried before, so callers can log stale writes.
type SubscriptionRepo interface {
	Upsert(ctx context.Context, sub db.Subscription) (prevEventTS *time.Time, err error)
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*db.Subscription, error)
}

type InvoiceRepo interface {
	Upsert(ctx context.Context, invoice db.Invoice) error
}

type PaymentMethodRepo interface {
	Upsert(ctx context.Context, method db.PaymentMethod) error
	Delete(ctx context.Context, stripePaymentMethodID string) error
}

type CheckoutSessionRepo interface {
	Upsert(ctx context.Context, session db.CheckoutSession) error
}

type PayoutRepo interface {
	Upsert(ctx context.Context, payout db.Payout) error
	SetStatus(ctx context.Context, stripePayoutID string, status string) error
	GetByStripeID(ctx context.Context, stripePayoutID string) (*db.Payout, error)
}

// RevenueLedger projects provider settlement state onto bookings and the
// tenant's revenue transactions. It performs no provider calls.
type RevenueLedger interface {
	PaymentSucceeded(ctx context.Context, bookingID uuid.UUID, paymentIntentID string, amount int64, currency string) error
	PaymentFailed(ctx context.Context, bookingID uuid.UUID, paymentIntentID string) error
	TransferCreated(ctx context.Context, bookingID uuid.UUID, transferID string, amount int64, currency string) error
	// SettleBookings moves every referenced booking to the given payout
	// status in a single multi-row update.
	SettleBookings(ctx context.Context, bookingIDs []uuid.UUID, status consts.BookingPayoutStatus) error
}

package db

import (
	"encoding/json"
	"time"

	"github.com/Hostably/hostably-backend/internal/application/consts"
	"github.com/google/uuid"
)

type WebhookEvent struct {
	ID            uint64          `db:"id"`
	StripeEventID string          `db:"stripe_event_id"`
	EventType     string          `db:"event_type"`
	Livemode      bool            `db:"livemode"`
	EventData     json.RawMessage `db:"event_data"`
	ReceivedAt    time.Time       `db:"received_at"`
	Processed     bool            `db:"processed"`
	ProcessedAt   *time.Time      `db:"processed_at"`
	ErrorMessage  *string         `db:"error_message"`
}

type Customer struct {
	StripeCustomerID string    `db:"stripe_customer_id"`
	TenantID         uuid.UUID `db:"tenant_id"`
	Email            string    `db:"email"`
	Name             string    `db:"name"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type Subscription struct {
	StripeSubscriptionID string          `db:"stripe_subscription_id"`
	TenantID             uuid.UUID       `db:"tenant_id"`
	StripeCustomerID     string          `db:"stripe_customer_id"`
	StripePriceID        string          `db:"stripe_price_id"`
	Status               string          `db:"status"`
	CurrentPeriodStart   *time.Time      `db:"current_period_start"`
	CurrentPeriodEnd     *time.Time      `db:"current_period_end"`
	CancelAtPeriodEnd    bool            `db:"cancel_at_period_end"`
	CanceledAt           *time.Time      `db:"canceled_at"`
	TrialStart           *time.Time      `db:"trial_start"`
	TrialEnd             *time.Time      `db:"trial_end"`
	PlanName             string          `db:"plan_name"`
	PlanPrice            int64           `db:"plan_price"`
	BillingCycle         string          `db:"billing_cycle"`
	Currency             string          `db:"currency"`
	Metadata             json.RawMessage `db:"metadata"`
	// EventTS is the provider-side timestamp of the event that last wrote
	// this row, kept to make stale out-of-order writes observable.
	EventTS   time.Time `db:"event_ts"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Invoice struct {
	StripeInvoiceID  string          `db:"stripe_invoice_id"`
	TenantID         uuid.UUID       `db:"tenant_id"`
	StripeCustomerID string          `db:"stripe_customer_id"`
	Status           string          `db:"status"`
	AmountDue        int64           `db:"amount_due"`
	AmountPaid       int64           `db:"amount_paid"`
	AmountRemaining  int64           `db:"amount_remaining"`
	Currency         string          `db:"currency"`
	PaidAt           *time.Time      `db:"paid_at"`
	HostedInvoiceURL string          `db:"hosted_invoice_url"`
	InvoicePDF       string          `db:"invoice_pdf"`
	Lines            json.RawMessage `db:"lines"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

type PaymentMethod struct {
	StripePaymentMethodID string    `db:"stripe_payment_method_id"`
	TenantID              uuid.UUID `db:"tenant_id"`
	StripeCustomerID      string    `db:"stripe_customer_id"`
	Type                  string    `db:"type"`
	CardBrand             string    `db:"card_brand"`
	CardLast4             string    `db:"card_last4"`
	CardExpMonth          int64     `db:"card_exp_month"`
	CardExpYear           int64     `db:"card_exp_year"`
	UpdatedAt             time.Time `db:"updated_at"`
}

type CheckoutSession struct {
	StripeSessionID       string    `db:"stripe_session_id"`
	TenantID              uuid.UUID `db:"tenant_id"`
	StripeCustomerID      string    `db:"stripe_customer_id"`
	StripeSubscriptionID  string    `db:"stripe_subscription_id"`
	StripePaymentIntentID string    `db:"stripe_payment_intent_id"`
	Status                string    `db:"status"`
	PaymentStatus         string    `db:"payment_status"`
	UpdatedAt             time.Time `db:"updated_at"`
}

type Payout struct {
	StripePayoutID string      `db:"stripe_payout_id"`
	TenantID       uuid.UUID   `db:"tenant_id"`
	Status         string      `db:"status"`
	Amount         int64       `db:"amount"`
	Currency       string      `db:"currency"`
	ArrivalDate    *time.Time  `db:"arrival_date"`
	BookingIDs     []uuid.UUID `db:"booking_ids"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

// Booking is owned by the bookings service; this core only projects payment
// and payout state onto it.
type Booking struct {
	ID              uuid.UUID                   `db:"id"`
	TenantID        uuid.UUID                   `db:"tenant_id"`
	PaymentIntentID string                      `db:"payment_intent_id"`
	PaymentStatus   consts.BookingPaymentStatus `db:"payment_status"`
	TransferID      string                      `db:"transfer_id"`
	PayoutStatus    consts.BookingPayoutStatus  `db:"payout_status"`
}

type RevenueTransaction struct {
	ID                    uint64                          `db:"id"`
	TenantID              uuid.UUID                       `db:"tenant_id"`
	BookingID             uuid.UUID                       `db:"booking_id"`
	StripePaymentIntentID string                          `db:"stripe_payment_intent_id"`
	StripeTransferID      string                          `db:"stripe_transfer_id"`
	Amount                int64                           `db:"amount"`
	Currency              string                          `db:"currency"`
	Status                consts.RevenueTransactionStatus `db:"status"`
	CreatedAt             time.Time                       `db:"created_at"`
	UpdatedAt             time.Time                       `db:"updated_at"`
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hostably/hostably-backend/internal/application/interfaces"
	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Every mirror table is written through an insert-or-update on its provider
// ID so a retried or concurrent delivery re-applies the same deterministic
// upsert instead of racing a read-then-write.

type CustomerRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.CustomerRepo = (*CustomerRepo)(nil)

func NewCustomerRepo(pool *pgxpool.Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

func (r *CustomerRepo) Upsert(ctx context.Context, customer db.Customer) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO stripe_customers (stripe_customer_id, tenant_id, email, name, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (stripe_customer_id) DO UPDATE SET
				tenant_id = EXCLUDED.tenant_id,
				email = EXCLUDED.email,
				name = EXCLUDED.name,
				updated_at = EXCLUDED.updated_at`,
		customer.StripeCustomerID, customer.TenantID, customer.Email, customer.Name, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err upserting customer, %v", err)
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, stripeCustomerID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM stripe_customers WHERE stripe_customer_id = $1", stripeCustomerID)
	if err != nil {
		return fmt.Errorf("err deleting customer, %v", err)
	}
	return nil
}

func (r *CustomerRepo) GetByStripeID(ctx context.Context, stripeCustomerID string) (*db.Customer, error) {
	var customer db.Customer
	query := `SELECT stripe_customer_id, tenant_id, email, name, created_at, updated_at
			FROM stripe_customers WHERE stripe_customer_id = $1`
	err := r.pool.QueryRow(ctx, query, stripeCustomerID).Scan(&customer.StripeCustomerID, &customer.TenantID,
		&customer.Email, &customer.Name, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.SubscriptionRepo = (*SubscriptionRepo)(nil)

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

// Upsert replaces the whole row. The prev CTE reads against the statement's
// snapshot, so the returned timestamp is what the row carried before this
// write; nil means the row is new.
func (r *SubscriptionRepo) Upsert(ctx context.Context, sub db.Subscription) (*time.Time, error) {
	var prevEventTS *time.Time
	err := r.pool.QueryRow(ctx, `WITH prev AS (
				SELECT event_ts FROM stripe_subscriptions WHERE stripe_subscription_id = $1
			)
			INSERT INTO stripe_subscriptions (stripe_subscription_id, tenant_id, stripe_customer_id, stripe_price_id,
				status, current_period_start, current_period_end, cancel_at_period_end, canceled_at,
				trial_start, trial_end, plan_name, plan_price, billing_cycle, currency, metadata, event_ts, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
			ON CONFLICT (stripe_subscription_id) DO UPDATE SET
				tenant_id = EXCLUDED.tenant_id,
				stripe_customer_id = EXCLUDED.stripe_customer_id,
				stripe_price_id = EXCLUDED.stripe_price_id,
				status = EXCLUDED.status,
				current_period_start = EXCLUDED.current_period_start,
				current_period_end = EXCLUDED.current_period_end,
				cancel_at_period_end = EXCLUDED.cancel_at_period_end,
				canceled_at = EXCLUDED.canceled_at,
				trial_start = EXCLUDED.trial_start,
				trial_end = EXCLUDED.trial_end,
				plan_name = EXCLUDED.plan_name,
				plan_price = EXCLUDED.plan_price,
				billing_cycle = EXCLUDED.billing_cycle,
				currency = EXCLUDED.currency,
				metadata = EXCLUDED.metadata,
				event_ts = EXCLUDED.event_ts,
				updated_at = EXCLUDED.updated_at
			RETURNING (SELECT event_ts FROM prev)`,
		sub.StripeSubscriptionID, sub.TenantID, sub.StripeCustomerID, sub.StripePriceID, sub.Status,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd, sub.CanceledAt,
		sub.TrialStart, sub.TrialEnd, sub.PlanName, sub.PlanPrice, sub.BillingCycle, sub.Currency,
		sub.Metadata, sub.EventTS, sub.UpdatedAt).Scan(&prevEventTS)
	if err != nil {
		return nil, fmt.Errorf("err upserting subscription, %v", err)
	}
	return prevEventTS, nil
}

func (r *SubscriptionRepo) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*db.Subscription, error) {
	var sub db.Subscription
	query := `SELECT stripe_subscription_id, tenant_id, stripe_customer_id, stripe_price_id, status,
				current_period_start, current_period_end, cancel_at_period_end, canceled_at,
				trial_start, trial_end, plan_name, plan_price, billing_cycle, currency, metadata, event_ts, updated_at
			FROM stripe_subscriptions WHERE stripe_subscription_id = $1`
	err := r.pool.QueryRow(ctx, query, stripeSubscriptionID).Scan(&sub.StripeSubscriptionID, &sub.TenantID,
		&sub.StripeCustomerID, &sub.StripePriceID, &sub.Status, &sub.CurrentPeriodStart, &sub.CurrentPeriodEnd,
		&sub.CancelAtPeriodEnd, &sub.CanceledAt, &sub.TrialStart, &sub.TrialEnd, &sub.PlanName, &sub.PlanPrice,
		&sub.BillingCycle, &sub.Currency, &sub.Metadata, &sub.EventTS, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

type InvoiceRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.InvoiceRepo = (*InvoiceRepo)(nil)

func NewInvoiceRepo(pool *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

func (r *InvoiceRepo) Upsert(ctx context.Context, invoice db.Invoice) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO stripe_invoices (stripe_invoice_id, tenant_id, stripe_customer_id, status,
				amount_due, amount_paid, amount_remaining, currency, paid_at, hosted_invoice_url, invoice_pdf, lines, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (stripe_invoice_id) DO UPDATE SET
				tenant_id = EXCLUDED.tenant_id,
				stripe_customer_id = EXCLUDED.stripe_customer_id,
				status = EXCLUDED.status,
				amount_due = EXCLUDED.amount_due,
				amount_paid = EXCLUDED.amount_paid,
				amount_remaining = EXCLUDED.amount_remaining,
				currency = EXCLUDED.currency,
				paid_at = EXCLUDED.paid_at,
				hosted_invoice_url = EXCLUDED.hosted_invoice_url,
				invoice_pdf = EXCLUDED.invoice_pdf,
				lines = EXCLUDED.lines,
				updated_at = EXCLUDED.updated_at`,
		invoice.StripeInvoiceID, invoice.TenantID, invoice.StripeCustomerID, invoice.Status, invoice.AmountDue,
		invoice.AmountPaid, invoice.AmountRemaining, invoice.Currency, invoice.PaidAt, invoice.HostedInvoiceURL,
		invoice.InvoicePDF, invoice.Lines, invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err upserting invoice, %v", err)
	}
	return nil
}

type PaymentMethodRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.PaymentMethodRepo = (*PaymentMethodRepo)(nil)

func NewPaymentMethodRepo(pool *pgxpool.Pool) *PaymentMethodRepo {
	return &PaymentMethodRepo{pool: pool}
}

func (r *PaymentMethodRepo) Upsert(ctx context.Context, method db.PaymentMethod) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO stripe_payment_methods (stripe_payment_method_id, tenant_id, stripe_customer_id,
				type, card_brand, card_last4, card_exp_month, card_exp_year, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (stripe_payment_method_id) DO UPDATE SET
				tenant_id = EXCLUDED.tenant_id,
				stripe_customer_id = EXCLUDED.stripe_customer_id,
				type = EXCLUDED.type,
				card_brand = EXCLUDED.card_brand,
				card_last4 = EXCLUDED.card_last4,
				card_exp_month = EXCLUDED.card_exp_month,
				card_exp_year = EXCLUDED.card_exp_year,
				updated_at = EXCLUDED.updated_at`,
		method.StripePaymentMethodID, method.TenantID, method.StripeCustomerID, method.Type,
		method.CardBrand, method.CardLast4, method.CardExpMonth, method.CardExpYear, method.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err upserting payment method, %v", err)
	}
	return nil
}

func (r *PaymentMethodRepo) Delete(ctx context.Context, stripePaymentMethodID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM stripe_payment_methods WHERE stripe_payment_method_id = $1", stripePaymentMethodID)
	if err != nil {
		return fmt.Errorf("err deleting payment method, %v", err)
	}
	return nil
}

type CheckoutSessionRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.CheckoutSessionRepo = (*CheckoutSessionRepo)(nil)

func NewCheckoutSessionRepo(pool *pgxpool.Pool) *CheckoutSessionRepo {
	return &CheckoutSessionRepo{pool: pool}
}

func (r *CheckoutSessionRepo) Upsert(ctx context.Context, session db.CheckoutSession) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO checkout_sessions (stripe_session_id, tenant_id, stripe_customer_id,
				stripe_subscription_id, stripe_payment_intent_id, status, payment_status, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (stripe_session_id) DO UPDATE SET
				tenant_id = EXCLUDED.tenant_id,
				stripe_customer_id = EXCLUDED.stripe_customer_id,
				stripe_subscription_id = EXCLUDED.stripe_subscription_id,
				stripe_payment_intent_id = EXCLUDED.stripe_payment_intent_id,
				status = EXCLUDED.status,
				payment_status = EXCLUDED.payment_status,
				updated_at = EXCLUDED.updated_at`,
		session.StripeSessionID, session.TenantID, session.StripeCustomerID, session.StripeSubscriptionID,
		session.StripePaymentIntentID, session.Status, session.PaymentStatus, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err upserting checkout session, %v", err)
	}
	return nil
}

type PayoutRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.PayoutRepo = (*PayoutRepo)(nil)

func NewPayoutRepo(pool *pgxpool.Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

func (r *PayoutRepo) Upsert(ctx context.Context, payout db.Payout) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO payouts (stripe_payout_id, tenant_id, status, amount, currency, arrival_date, booking_ids, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (stripe_payout_id) DO UPDATE SET
				tenant_id = EXCLUDED.tenant_id,
				status = EXCLUDED.status,
				amount = EXCLUDED.amount,
				currency = EXCLUDED.currency,
				arrival_date = EXCLUDED.arrival_date,
				booking_ids = EXCLUDED.booking_ids,
				updated_at = EXCLUDED.updated_at`,
		payout.StripePayoutID, payout.TenantID, payout.Status, payout.Amount, payout.Currency,
		payout.ArrivalDate, payout.BookingIDs, payout.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err upserting payout, %v", err)
	}
	return nil
}

func (r *PayoutRepo) SetStatus(ctx context.Context, stripePayoutID string, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE payouts SET status = $2, updated_at = now() WHERE stripe_payout_id = $1",
		stripePayoutID, status)
	if err != nil {
		return fmt.Errorf("err updating payout status, %v", err)
	}
	return nil
}

func (r *PayoutRepo) GetByStripeID(ctx context.Context, stripePayoutID string) (*db.Payout, error) {
	var payout db.Payout
	query := `SELECT stripe_payout_id, tenant_id, status, amount, currency, arrival_date, booking_ids, updated_at
			FROM payouts WHERE stripe_payout_id = $1`
	err := r.pool.QueryRow(ctx, query, stripePayoutID).Scan(&payout.StripePayoutID, &payout.TenantID,
		&payout.Status, &payout.Amount, &payout.Currency, &payout.ArrivalDate, &payout.BookingIDs, &payout.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

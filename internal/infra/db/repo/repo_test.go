package repo_test

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/Hostably/hostably-backend/internal/infra/db/repo"
	"github.com/Hostably/hostably-backend/internal/testinfra"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()

	cleanup(context.Background())

	os.Exit(code)
}

func TestJournalRecordDeduplicatesOnEventID(t *testing.T) {
	journal := repo.NewJournalRepo(testinfra.Pool)
	ctx := context.Background()

	event := db.WebhookEvent{
		StripeEventID: "evt_journal_1",
		EventType:     "customer.updated",
		EventData:     json.RawMessage(`{"id":"cus_1"}`),
		ReceivedAt:    time.Now(),
	}

	prior, err := journal.Record(ctx, event)
	require.NoError(t, err)
	require.Nil(t, prior, "first delivery must journal a fresh row")

	prior, err = journal.Record(ctx, event)
	require.NoError(t, err)
	require.NotNil(t, prior, "second delivery must surface the prior row")
	require.Equal(t, "evt_journal_1", prior.StripeEventID)
	require.False(t, prior.Processed)

	var count int
	err = testinfra.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM webhook_events WHERE stripe_event_id = $1", "evt_journal_1").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestJournalTerminalStateTransitions(t *testing.T) {
	journal := repo.NewJournalRepo(testinfra.Pool)
	ctx := context.Background()

	_, err := journal.Record(ctx, db.WebhookEvent{
		StripeEventID: "evt_journal_2",
		EventType:     "invoice.paid",
		ReceivedAt:    time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, journal.MarkFailed(ctx, "evt_journal_2", "db unavailable"))
	event, err := journal.GetEvent(ctx, "evt_journal_2")
	require.NoError(t, err)
	require.False(t, event.Processed)
	require.NotNil(t, event.ErrorMessage)
	require.Equal(t, "db unavailable", *event.ErrorMessage)

	require.NoError(t, journal.MarkProcessed(ctx, "evt_journal_2"))
	event, err = journal.GetEvent(ctx, "evt_journal_2")
	require.NoError(t, err)
	require.True(t, event.Processed)
	require.NotNil(t, event.ProcessedAt)
	require.Nil(t, event.ErrorMessage, "a processed event carries no stale error")
}

func TestCustomerUpsertIsIdempotent(t *testing.T) {
	customers := repo.NewCustomerRepo(testinfra.Pool)
	ctx := context.Background()
	tenantID := uuid.New()

	row := db.Customer{
		StripeCustomerID: "cus_repo_1",
		TenantID:         tenantID,
		Email:            "first@example.com",
		Name:             "First",
		CreatedAt:        time.Now().Truncate(0),
		UpdatedAt:        time.Now().Truncate(0),
	}
	require.NoError(t, customers.Upsert(ctx, row))

	row.Email = "second@example.com"
	require.NoError(t, customers.Upsert(ctx, row))

	stored, err := customers.GetByStripeID(ctx, "cus_repo_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "second@example.com", stored.Email)
	require.Equal(t, tenantID, stored.TenantID)

	var count int
	err = testinfra.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM stripe_customers WHERE stripe_customer_id = $1", "cus_repo_1").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestCustomerGetReturnsNilWhenMissing(t *testing.T) {
	customers := repo.NewCustomerRepo(testinfra.Pool)

	stored, err := customers.GetByStripeID(context.Background(), "cus_never_seen")
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestSubscriptionUpsertReplacesWholeRow(t *testing.T) {
	subscriptions := repo.NewSubscriptionRepo(testinfra.Pool)
	ctx := context.Background()
	tenantID := uuid.New()

	first := db.Subscription{
		StripeSubscriptionID: "sub_repo_1",
		TenantID:             tenantID,
		StripeCustomerID:     "cus_repo_sub",
		StripePriceID:        "price_1",
		Status:               "trialing",
		PlanName:             "Host Pro",
		PlanPrice:            4900,
		BillingCycle:         "month",
		Currency:             "eur",
		EventTS:              time.Unix(200, 0),
		UpdatedAt:            time.Now(),
	}
	prev, err := subscriptions.Upsert(ctx, first)
	require.NoError(t, err)
	require.Nil(t, prev, "fresh row has no prior event timestamp")

	// An older event replacing a newer row: the repo applies it and reports
	// the displaced timestamp so the caller can log the stale write.
	second := first
	second.Status = "active"
	second.PlanName = ""
	second.EventTS = time.Unix(100, 0)
	prev, err = subscriptions.Upsert(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.WithinDuration(t, time.Unix(200, 0), *prev, time.Second)

	stored, err := subscriptions.GetByStripeID(ctx, "sub_repo_1")
	require.NoError(t, err)
	require.Equal(t, "active", stored.Status)
	require.Empty(t, stored.PlanName, "replacement is whole-row, not field-by-field")
}

func TestPaymentMethodDeleteRemovesRow(t *testing.T) {
	methods := repo.NewPaymentMethodRepo(testinfra.Pool)
	ctx := context.Background()

	require.NoError(t, methods.Upsert(ctx, db.PaymentMethod{
		StripePaymentMethodID: "pm_repo_1",
		TenantID:              uuid.New(),
		StripeCustomerID:      "cus_repo_pm",
		Type:                  "card",
		CardBrand:             "visa",
		CardLast4:             "4242",
		UpdatedAt:             time.Now(),
	}))
	require.NoError(t, methods.Delete(ctx, "pm_repo_1"))

	var count int
	err := testinfra.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM stripe_payment_methods WHERE stripe_payment_method_id = $1", "pm_repo_1").Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestPayoutRoundTripsBookingIDs(t *testing.T) {
	payouts := repo.NewPayoutRepo(testinfra.Pool)
	ctx := context.Background()
	bookingIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	require.NoError(t, payouts.Upsert(ctx, db.Payout{
		StripePayoutID: "po_repo_1",
		TenantID:       uuid.New(),
		Status:         "in_transit",
		Amount:         30000,
		Currency:       "eur",
		BookingIDs:     bookingIDs,
		UpdatedAt:      time.Now(),
	}))

	stored, err := payouts.GetByStripeID(ctx, "po_repo_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, bookingIDs, stored.BookingIDs)

	require.NoError(t, payouts.SetStatus(ctx, "po_repo_1", "paid"))
	stored, err = payouts.GetByStripeID(ctx, "po_repo_1")
	require.NoError(t, err)
	require.Equal(t, "paid", stored.Status)
}

func cleanup(ctx context.Context) {
	_, err := testinfra.Pool.Exec(ctx, `
		DELETE FROM webhook_events;
		DELETE FROM stripe_customers;
		DELETE FROM stripe_subscriptions;
		DELETE FROM stripe_invoices;
		DELETE FROM stripe_payment_methods;
		DELETE FROM checkout_sessions;
		DELETE FROM payouts;
		DELETE FROM revenue_transactions;
		DELETE FROM bookings;
	`)
	if err != nil {
		log.Panicf("err cleaning up repo test %v", err)
	}
}

package billing_test

import (
	"context"
	"time"

	"github.com/Hostably/hostably-backend/internal/application/consts"
	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/google/uuid"
)

func customerRow(stripeCustomerID string, tenantID uuid.UUID) db.Customer {
	return db.Customer{
		StripeCustomerID: stripeCustomerID,
		TenantID:         tenantID,
		Email:            "owner@example.com",
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

type fakeJournal struct {
	events      map[string]*db.WebhookEvent
	recordCalls int
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{events: make(map[string]*db.WebhookEvent)}
}

func (f *fakeJournal) Record(_ context.Context, event db.WebhookEvent) (*db.WebhookEvent, error) {
	f.recordCalls++
	if prior, ok := f.events[event.StripeEventID]; ok {
		copied := *prior
		return &copied, nil
	}
	stored := event
	f.events[event.StripeEventID] = &stored
	return nil, nil
}

func (f *fakeJournal) MarkProcessed(_ context.Context, stripeEventID string) error {
	event := f.events[stripeEventID]
	now := time.Now()
	event.Processed = true
	event.ProcessedAt = &now
	event.ErrorMessage = nil
	return nil
}

func (f *fakeJournal) MarkFailed(_ context.Context, stripeEventID string, message string) error {
	event := f.events[stripeEventID]
	event.Processed = false
	event.ErrorMessage = &message
	return nil
}

func (f *fakeJournal) GetEvent(_ context.Context, stripeEventID string) (*db.WebhookEvent, error) {
	event, ok := f.events[stripeEventID]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

type fakeCustomers struct {
	rows        map[string]db.Customer
	upsertCalls int
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{rows: make(map[string]db.Customer)}
}

func (f *fakeCustomers) Upsert(_ context.Context, customer db.Customer) error {
	f.upsertCalls++
	f.rows[customer.StripeCustomerID] = customer
	return nil
}

func (f *fakeCustomers) Delete(_ context.Context, stripeCustomerID string) error {
	delete(f.rows, stripeCustomerID)
	return nil
}

func (f *fakeCustomers) GetByStripeID(_ context.Context, stripeCustomerID string) (*db.Customer, error) {
	row, ok := f.rows[stripeCustomerID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

type fakeSubscriptions struct {
	rows        map[string]db.Subscription
	upsertCalls int
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{rows: make(map[string]db.Subscription)}
}

func (f *fakeSubscriptions) Upsert(_ context.Context, sub db.Subscription) (*time.Time, error) {
	f.upsertCalls++
	var prev *time.Time
	if existing, ok := f.rows[sub.StripeSubscriptionID]; ok {
		ts := existing.EventTS
		prev = &ts
	}
	f.rows[sub.StripeSubscriptionID] = sub
	return prev, nil
}

func (f *fakeSubscriptions) GetByStripeID(_ context.Context, stripeSubscriptionID string) (*db.Subscription, error) {
	row, ok := f.rows[stripeSubscriptionID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

type fakeInvoices struct {
	rows        map[string]db.Invoice
	upsertCalls int
	upsertErr   error
}

func newFakeInvoices() *fakeInvoices {
	return &fakeInvoices{rows: make(map[string]db.Invoice)}
}

func (f *fakeInvoices) Upsert(_ context.Context, invoice db.Invoice) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[invoice.StripeInvoiceID] = invoice
	return nil
}

type fakePaymentMethods struct {
	rows        map[string]db.PaymentMethod
	upsertCalls int
	deleteCalls int
}

func newFakePaymentMethods() *fakePaymentMethods {
	return &fakePaymentMethods{rows: make(map[string]db.PaymentMethod)}
}

func (f *fakePaymentMethods) Upsert(_ context.Context, method db.PaymentMethod) error {
	f.upsertCalls++
	f.rows[method.StripePaymentMethodID] = method
	return nil
}

func (f *fakePaymentMethods) Delete(_ context.Context, stripePaymentMethodID string) error {
	f.deleteCalls++
	delete(f.rows, stripePaymentMethodID)
	return nil
}

type fakeSessions struct {
	rows        map[string]db.CheckoutSession
	upsertCalls int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: make(map[string]db.CheckoutSession)}
}

func (f *fakeSessions) Upsert(_ context.Context, session db.CheckoutSession) error {
	f.upsertCalls++
	f.rows[session.StripeSessionID] = session
	return nil
}

type fakePayouts struct {
	rows           map[string]db.Payout
	setStatusCalls int
}

func newFakePayouts() *fakePayouts {
	return &fakePayouts{rows: make(map[string]db.Payout)}
}

func (f *fakePayouts) Upsert(_ context.Context, payout db.Payout) error {
	f.rows[payout.StripePayoutID] = payout
	return nil
}

func (f *fakePayouts) SetStatus(_ context.Context, stripePayoutID string, status string) error {
	f.setStatusCalls++
	row := f.rows[stripePayoutID]
	row.Status = status
	f.rows[stripePayoutID] = row
	return nil
}

func (f *fakePayouts) GetByStripeID(_ context.Context, stripePayoutID string) (*db.Payout, error) {
	row, ok := f.rows[stripePayoutID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

type settlement struct {
	bookingIDs []uuid.UUID
	status     consts.BookingPayoutStatus
}

type fakeLedger struct {
	succeeded   []string
	failed      []string
	transfers   []string
	settlements []settlement
	settleErr   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{}
}

func (f *fakeLedger) PaymentSucceeded(_ context.Context, bookingID uuid.UUID, paymentIntentID string, amount int64, currency string) error {
	f.succeeded = append(f.succeeded, paymentIntentID)
	return nil
}

func (f *fakeLedger) PaymentFailed(_ context.Context, bookingID uuid.UUID, paymentIntentID string) error {
	f.failed = append(f.failed, paymentIntentID)
	return nil
}

func (f *fakeLedger) TransferCreated(_ context.Context, bookingID uuid.UUID, transferID string, amount int64, currency string) error {
	f.transfers = append(f.transfers, transferID)
	return nil
}

func (f *fakeLedger) SettleBookings(_ context.Context, bookingIDs []uuid.UUID, status consts.BookingPayoutStatus) error {
	if f.settleErr != nil {
		return f.settleErr
	}
	f.settlements = append(f.settlements, settlement{bookingIDs: bookingIDs, status: status})
	return nil
}

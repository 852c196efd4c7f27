package rest_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hostably/hostably-backend/internal/application"
	"github.com/Hostably/hostably-backend/internal/application/commands/billing"
	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/Hostably/hostably-backend/internal/presentation/rest"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_rest_test"

type journalStub struct {
	events map[string]*db.WebhookEvent
}

func (s *journalStub) Record(_ context.Context, event db.WebhookEvent) (*db.WebhookEvent, error) {
	if prior, ok := s.events[event.StripeEventID]; ok {
		copied := *prior
		return &copied, nil
	}
	stored := event
	s.events[event.StripeEventID] = &stored
	return nil, nil
}

func (s *journalStub) MarkProcessed(_ context.Context, stripeEventID string) error {
	s.events[stripeEventID].Processed = true
	return nil
}

func (s *journalStub) MarkFailed(_ context.Context, stripeEventID string, message string) error {
	s.events[stripeEventID].ErrorMessage = &message
	return nil
}

func (s *journalStub) GetEvent(_ context.Context, stripeEventID string) (*db.WebhookEvent, error) {
	event, ok := s.events[stripeEventID]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

type invoicesStub struct {
	err error
}

func (s invoicesStub) Upsert(context.Context, db.Invoice) error {
	return s.err
}

func newTestApp(t *testing.T, invoiceErr error) (*fiber.App, *journalStub) {
	t.Setenv("STRIPE_WEBHOOK", testSecret)
	journal := &journalStub{events: make(map[string]*db.WebhookEvent)}
	webhook := billing.NewWebhook(billing.NewConfig(), billing.Repos{
		Journal:  journal,
		Invoices: invoicesStub{err: invoiceErr},
	})

	app := fiber.New()
	rest.RegisterHandlers(app, rest.NewServer(&application.Collection{Webhook: webhook}))
	return app, journal
}

func signedRequest(t *testing.T, eventID, eventType string, object map[string]any) *http.Request {
	payload, err := json.Marshal(map[string]any{
		"id":      eventID,
		"object":  "event",
		"type":    eventType,
		"created": time.Now().Unix(),
		"data":    map[string]any{"object": object},
	})
	require.NoError(t, err)

	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testSecret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return req
}

func TestWebhookEndpointRejectsUnsignedDelivery(t *testing.T) {
	app, journal := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader([]byte(`{}`)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, journal.events)
}

func TestWebhookEndpointAcksUnknownType(t *testing.T) {
	app, journal := newTestApp(t, nil)

	resp, err := app.Test(signedRequest(t, "evt_rest_1", "plan.created", map[string]any{"id": "plan_1"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, journal.events["evt_rest_1"].Processed)
}

func TestWebhookEndpointReturns500OnHandlerFailure(t *testing.T) {
	app, journal := newTestApp(t, fmt.Errorf("db unavailable"))

	object := map[string]any{
		"id":       "in_rest_1",
		"metadata": map[string]string{"tenant_id": "7b25e4b2-9f6e-4c2f-a6d0-1f6a86b0f8b9"},
	}
	resp, err := app.Test(signedRequest(t, "evt_rest_2", "invoice.paid", object))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, journal.events["evt_rest_2"].ErrorMessage)
}

func TestWebhookEndpointAcksReplayWithoutReprocessing(t *testing.T) {
	app, _ := newTestApp(t, nil)

	first, err := app.Test(signedRequest(t, "evt_rest_3", "plan.created", map[string]any{"id": "plan_1"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, first.StatusCode)

	second, err := app.Test(signedRequest(t, "evt_rest_3", "plan.created", map[string]any{"id": "plan_1"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, second.StatusCode)
}

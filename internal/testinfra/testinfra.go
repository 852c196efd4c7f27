package testinfra

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var Pool *pgxpool.Pool

func init() {
	Pool = SetupDB()
}

func SetupDB() *pgxpool.Pool {

	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:17.2-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections"),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	if err != nil {
		log.Panicf("start postgres: %v", err)
	}

	pgHostPort, err := pgC.Endpoint(ctx, "")
	if err != nil {
		log.Panicf("postgres endpoint: %v", err)
	}
	pgDSN := fmt.Sprintf("postgres://postgres:password@%s/testdb?sslmode=disable", pgHostPort)

	pool, err := pgxpool.New(ctx, pgDSN)
	if err != nil {
		log.Panicf("pgxpool connect: %v", err)
	}

	ok := false
	for i := 0; i < 20; i++ {
		slog.Info("ping db", "try", i)
		ctxPing, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		err = pool.Ping(ctxPing)
		cancel()
		if err == nil {
			ok = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !ok {
		log.Panic("db did not respond after 20 attempts")
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS webhook_events (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			stripe_event_id TEXT UNIQUE NOT NULL,
			event_type TEXT NOT NULL,
			livemode BOOLEAN NOT NULL DEFAULT false,
			event_data JSONB,
			received_at TIMESTAMPTZ NOT NULL,
			processed BOOLEAN NOT NULL DEFAULT false,
			processed_at TIMESTAMPTZ,
			error_message TEXT
		);
		CREATE TABLE IF NOT EXISTS stripe_customers (
			stripe_customer_id TEXT PRIMARY KEY,
			tenant_id UUID NOT NULL,
			email TEXT,
			name TEXT,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS stripe_subscriptions (
			stripe_subscription_id TEXT PRIMARY KEY,
			tenant_id UUID NOT NULL,
			stripe_customer_id TEXT,
			stripe_price_id TEXT,
			status TEXT NOT NULL,
			current_period_start TIMESTAMPTZ,
			current_period_end TIMESTAMPTZ,
			cancel_at_period_end BOOLEAN NOT NULL DEFAULT false,
			canceled_at TIMESTAMPTZ,
			trial_start TIMESTAMPTZ,
			trial_end TIMESTAMPTZ,
			plan_name TEXT,
			plan_price BIGINT,
			billing_cycle TEXT,
			currency TEXT,
			metadata JSONB,
			event_ts TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS stripe_invoices (
			stripe_invoice_id TEXT PRIMARY KEY,
			tenant_id UUID NOT NULL,
			stripe_customer_id TEXT,
			status TEXT,
			amount_due BIGINT,
			amount_paid BIGINT,
			amount_remaining BIGINT,
			currency TEXT,
			paid_at TIMESTAMPTZ,
			hosted_invoice_url TEXT,
			invoice_pdf TEXT,
			lines JSONB,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS stripe_payment_methods (
			stripe_payment_method_id TEXT PRIMARY KEY,
			tenant_id UUID NOT NULL,
			stripe_customer_id TEXT,
			type TEXT,
			card_brand TEXT,
			card_last4 TEXT,
			card_exp_month BIGINT,
			card_exp_year BIGINT,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS checkout_sessions (
			stripe_session_id TEXT PRIMARY KEY,
			tenant_id UUID NOT NULL,
			stripe_customer_id TEXT,
			stripe_subscription_id TEXT,
			stripe_payment_intent_id TEXT,
			status TEXT,
			payment_status TEXT,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS payouts (
			stripe_payout_id TEXT PRIMARY KEY,
			tenant_id UUID NOT NULL,
			status TEXT NOT NULL,
			amount BIGINT,
			currency TEXT,
			arrival_date TIMESTAMPTZ,
			booking_ids UUID[],
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL,
			payment_intent_id TEXT,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			transfer_id TEXT,
			payout_status TEXT NOT NULL DEFAULT 'pending'
		);
		CREATE TABLE IF NOT EXISTS revenue_transactions (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			tenant_id UUID NOT NULL,
			booking_id UUID UNIQUE NOT NULL,
			stripe_payment_intent_id TEXT,
			stripe_transfer_id TEXT,
			amount BIGINT,
			currency TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		log.Panicf("create tables: %v", err)
	}

	return pool
}

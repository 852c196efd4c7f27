package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hostably/hostably-backend/internal/application"
	"github.com/Hostably/hostably-backend/internal/application/commands/billing"
	"github.com/Hostably/hostably-backend/internal/infra/db/repo"
	"github.com/Hostably/hostably-backend/internal/presentation/rest"
	"github.com/Hostably/hostably-backend/pkg/db"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func Init() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on process environment")
	}

	// DB
	dbConfig := db.NewConfig()
	pool, err := pgxpool.New(context.Background(), dbConfig.GetDSN())
	if err != nil {
		log.Panicf("failed to create pool: %v", err)
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Panicf("failed to connect to db: %v", err)
	}
	uowFactory := db.NewUoWFactory(pool)

	// Configs
	billingConfig := billing.NewConfig()

	handlers := &application.Collection{
		Webhook: billing.NewWebhook(billingConfig, billing.Repos{
			Journal:        repo.NewJournalRepo(pool),
			Customers:      repo.NewCustomerRepo(pool),
			Subscriptions:  repo.NewSubscriptionRepo(pool),
			Invoices:       repo.NewInvoiceRepo(pool),
			PaymentMethods: repo.NewPaymentMethodRepo(pool),
			Sessions:       repo.NewCheckoutSessionRepo(pool),
			Payouts:        repo.NewPayoutRepo(pool),
			Ledger:         repo.NewRevenueLedger(uowFactory),
		}),
	}
	handler := rest.NewServer(handlers)
	app := fiber.New(fiber.Config{
		IdleTimeout: 5 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Stripe-Signature",
	}))
	rest.RegisterHandlers(app, handler)

	go func() {
		if err := app.Listen(":8080"); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	fmt.Println("Gracefully shutting down...")
	_ = app.Shutdown()

	pool.Close()
	fmt.Println("Fiber was successfully shutdown.")
}

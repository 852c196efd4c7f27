package rest

import (
	"errors"
	"log/slog"

	"github.com/Hostably/hostably-backend/internal/application"
	"github.com/Hostably/hostably-backend/internal/application/dto"
	"github.com/Hostably/hostably-backend/internal/application/errs"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	commands *application.Collection
}

func NewServer(commands *application.Collection) *Server {
	return &Server{commands: commands}
}

func RegisterHandlers(app *fiber.App, server *Server) {
	app.Post("/webhooks/billing", server.BillingWebhook)
	app.Get("/health", server.Health)
}

// BillingWebhook is the provider-facing intake contract: 400 means the
// delivery never authenticated and will not be retried, 200 acknowledges
// (including idempotent replays and benign skips), 500 asks the provider to
// retry later.
func (s *Server) BillingWebhook(c *fiber.Ctx) error {
	err := s.commands.Webhook.Execute(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		var verification errs.VerificationError
		if errors.As(err, &verification) {
			slog.Warn("Rejected webhook delivery", "err", verification)
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: verification.Error()})
		}
		slog.Error("Webhook processing failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(dto.WebhookAck{Received: true})
}

func (s *Server) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(dto.HealthResponse{Status: "ok"})
}

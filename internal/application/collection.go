package application

import (
	"github.com/Hostably/hostably-backend/internal/application/commands/billing"
)

type Collection struct {
	Webhook *billing.Webhook
}

package billing

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type tenantMeta struct {
	TenantID string `validate:"required,uuid"`
}

type bookingMeta struct {
	BookingID string `validate:"required,uuid"`
}

// tenantFromMetadata pulls the tenant reference our checkout flow stamps
// onto every billing object. A billing object with no tenant context is
// unusable and must not be attached to the wrong tenant, so callers skip
// the write when ok is false.
func (w *Webhook) tenantFromMetadata(metadata map[string]string) (uuid.UUID, bool) {
	meta := tenantMeta{TenantID: metadata["tenant_id"]}
	if err := w.validate.Struct(meta); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(meta.TenantID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// resolveTenant falls back to the mirrored customer row when the object
// itself carries no tenant metadata.
func (w *Webhook) resolveTenant(ctx context.Context, metadata map[string]string, stripeCustomerID string) (uuid.UUID, bool, error) {
	if id, ok := w.tenantFromMetadata(metadata); ok {
		return id, true, nil
	}
	if stripeCustomerID == "" {
		return uuid.Nil, false, nil
	}
	customer, err := w.repos.Customers.GetByStripeID(ctx, stripeCustomerID)
	if err != nil {
		return uuid.Nil, false, err
	}
	if customer == nil {
		return uuid.Nil, false, nil
	}
	return customer.TenantID, true, nil
}

func (w *Webhook) bookingFromMetadata(metadata map[string]string) (uuid.UUID, bool) {
	meta := bookingMeta{BookingID: metadata["booking_id"]}
	if err := w.validate.Struct(meta); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(meta.BookingID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// bookingIDsFromMetadata parses the comma-separated booking_ids list a
// payout carries. Unparseable entries are dropped rather than failing the
// whole fan-out.
func bookingIDsFromMetadata(metadata map[string]string) []uuid.UUID {
	raw := metadata["booking_ids"]
	if raw == "" {
		return nil
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hostably/hostably-backend/internal/application/interfaces"
	"github.com/Hostably/hostably-backend/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JournalRepo turns at-least-once delivery into effectively-once
// processing: the unique constraint on stripe_event_id is the only
// concurrency-control primitive the engine relies on.
type JournalRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.JournalRepo = (*JournalRepo)(nil)

func NewJournalRepo(pool *pgxpool.Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

func (r *JournalRepo) Record(ctx context.Context, event db.WebhookEvent) (*db.WebhookEvent, error) {
	tag, err := r.pool.Exec(ctx, `INSERT INTO webhook_events (stripe_event_id, event_type, livemode, event_data, received_at, processed)
			VALUES ($1,$2,$3,$4,$5,false)
			ON CONFLICT (stripe_event_id) DO NOTHING`,
		event.StripeEventID, event.EventType, event.Livemode, event.EventData, event.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("err journaling event, %v", err)
	}
	if tag.RowsAffected() > 0 {
		return nil, nil
	}
	// Conflict on the natural key: this exact delivery was seen before.
	prior, err := r.GetEvent(ctx, event.StripeEventID)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return nil, fmt.Errorf("event %s conflicted but is not readable", event.StripeEventID)
	}
	return prior, nil
}

func (r *JournalRepo) MarkProcessed(ctx context.Context, stripeEventID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE webhook_events SET processed = true, processed_at = now(), error_message = NULL
			WHERE stripe_event_id = $1`, stripeEventID)
	if err != nil {
		return fmt.Errorf("err marking event processed, %v", err)
	}
	return nil
}

func (r *JournalRepo) MarkFailed(ctx context.Context, stripeEventID string, message string) error {
	_, err := r.pool.Exec(ctx, `UPDATE webhook_events SET processed = false, error_message = $2
			WHERE stripe_event_id = $1`, stripeEventID, message)
	if err != nil {
		return fmt.Errorf("err marking event failed, %v", err)
	}
	return nil
}

func (r *JournalRepo) GetEvent(ctx context.Context, stripeEventID string) (*db.WebhookEvent, error) {
	var event db.WebhookEvent
	query := `SELECT id, stripe_event_id, event_type, livemode, event_data, received_at, processed, processed_at, error_message
			FROM webhook_events WHERE stripe_event_id = $1`
	err := r.pool.QueryRow(ctx, query, stripeEventID).Scan(&event.ID, &event.StripeEventID, &event.EventType,
		&event.Livemode, &event.EventData, &event.ReceivedAt, &event.Processed, &event.ProcessedAt, &event.ErrorMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

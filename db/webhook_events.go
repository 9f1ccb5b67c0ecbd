package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// WebhookEventsPostgresRepository deduplicates provider webhook deliveries.
// Providers deliver at least once; the (provider, event_id) primary key makes
// the first insert win and marks every replay as already seen.
type WebhookEventsPostgresRepository struct {
	db *sqlx.DB
}

func NewWebhookEventsPostgresRepository(db *sqlx.DB) *WebhookEventsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}
	return &WebhookEventsPostgresRepository{db: db}
}

// StoreOnce records the event id and reports whether this delivery is the
// first one.
func (r *WebhookEventsPostgresRepository) StoreOnce(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_events (provider, event_id, event_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, event_id) DO NOTHING
	`, provider, eventID, eventType)
	if err != nil {
		return false, fmt.Errorf("could not store webhook event: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

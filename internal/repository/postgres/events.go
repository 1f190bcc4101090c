package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/luxmetrics/insights/internal/domain"
	"github.com/luxmetrics/insights/internal/service/ltv"
)

// EventRepo reads the marketing event store: touchpoints, conversion events,
// and the contact directory. It backs the attribution and ltv services.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a Postgres-backed event-store reader.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) TouchpointsForContact(ctx context.Context, contactID string) ([]domain.Touchpoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, contact_id, COALESCE(touchpoint_type,''),
		       COALESCE(utm_source,''), COALESCE(utm_medium,''), COALESCE(utm_campaign,''),
		       COALESCE(page_url,''), COALESCE(referrer_url,''), occurred_at
		FROM marketing_touchpoints
		WHERE contact_id = $1
		ORDER BY occurred_at, id
	`, contactID)
	if err != nil {
		return nil, fmt.Errorf("list touchpoints: %w", err)
	}
	defer rows.Close()

	var out []domain.Touchpoint
	for rows.Next() {
		var t domain.Touchpoint
		if err := rows.Scan(
			&t.ID, &t.ContactID, &t.Type,
			&t.UTMSource, &t.UTMMedium, &t.UTMCampaign,
			&t.PageURL, &t.ReferrerURL, &t.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan touchpoint: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *EventRepo) ConversionsForContact(ctx context.Context, contactID string) ([]domain.ConversionEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, contact_id, COALESCE(event_type,''), COALESCE(event_value,0),
		       COALESCE(utm_source,''), COALESCE(utm_medium,''), COALESCE(utm_campaign,''),
		       COALESCE(attributed_campaign_id,''), occurred_at
		FROM conversion_events
		WHERE contact_id = $1
		ORDER BY occurred_at, id
	`, contactID)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()
	return scanConversions(rows)
}

func (r *EventRepo) ConversionsInWindow(ctx context.Context, start, end time.Time) ([]domain.ConversionEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, contact_id, COALESCE(event_type,''), COALESCE(event_value,0),
		       COALESCE(utm_source,''), COALESCE(utm_medium,''), COALESCE(utm_campaign,''),
		       COALESCE(attributed_campaign_id,''), occurred_at
		FROM conversion_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at, id
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list conversions in window: %w", err)
	}
	defer rows.Close()
	return scanConversions(rows)
}

func (r *EventRepo) ContactIDsWithConversions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT contact_id FROM conversion_events ORDER BY contact_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list converting contacts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan contact id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *EventRepo) ContactByID(ctx context.Context, contactID string) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, COALESCE(first_name,''), COALESCE(last_name,'')
		FROM contacts
		WHERE id = $1
	`, contactID).Scan(&c.ID, &c.Email, &c.FirstName, &c.LastName)
	if err == sql.ErrNoRows {
		return nil, ltv.ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func scanConversions(rows *sql.Rows) ([]domain.ConversionEvent, error) {
	var out []domain.ConversionEvent
	for rows.Next() {
		var c domain.ConversionEvent
		if err := rows.Scan(
			&c.ID, &c.ContactID, &c.EventType, &c.EventValue,
			&c.UTMSource, &c.UTMMedium, &c.UTMCampaign,
			&c.AttributedCampaignID, &c.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

package attribution

import (
	"context"
	"time"

	"github.com/luxmetrics/insights/internal/domain"
)

// EventSource defines the read-only event-store contract the attribution
// engine consumes. Implementations must be safe for concurrent use.
type EventSource interface {
	// TouchpointsForContact returns every touchpoint recorded for the
	// contact, ascending by occurred_at with ties broken by id. An unknown
	// contact yields an empty slice, not an error.
	TouchpointsForContact(ctx context.Context, contactID string) ([]domain.Touchpoint, error)

	// ConversionsInWindow returns conversion events with occurred_at in
	// [start, end). Order is unspecified; callers sort as needed.
	ConversionsInWindow(ctx context.Context, start, end time.Time) ([]domain.ConversionEvent, error)
}

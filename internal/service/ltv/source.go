package ltv

import (
	"context"
	"time"

	"github.com/luxmetrics/insights/internal/domain"
)

// ConversionSource defines the read-only conversion-history contract the
// LTV, RFM, and cohort calculators consume. Implementations must be safe for
// concurrent use.
type ConversionSource interface {
	// ConversionsForContact returns the contact's conversions ascending by
	// occurred_at. An unknown contact yields an empty slice, not an error.
	ConversionsForContact(ctx context.Context, contactID string) ([]domain.ConversionEvent, error)

	// ConversionsInWindow returns conversion events with occurred_at in
	// [start, end), ascending by occurred_at.
	ConversionsInWindow(ctx context.Context, start, end time.Time) ([]domain.ConversionEvent, error)

	// ContactIDsWithConversions returns the distinct contact IDs that have
	// at least one conversion.
	ContactIDsWithConversions(ctx context.Context) ([]string, error)
}

// ContactDirectory resolves contact IDs to display fields when computed
// scores are joined back to people.
type ContactDirectory interface {
	ContactByID(ctx context.Context, contactID string) (*domain.Contact, error)
}

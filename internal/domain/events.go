package domain

import "time"

// Touchpoint is one marketing-channel interaction on a contact's journey
// toward a conversion. Touchpoints are append-only history: created when the
// host detects an interaction, never mutated, never deleted.
type Touchpoint struct {
	ID          string    `json:"id" db:"id"`
	ContactID   string    `json:"contact_id" db:"contact_id"`
	Type        string    `json:"touchpoint_type" db:"touchpoint_type"`
	UTMSource   string    `json:"utm_source" db:"utm_source"`
	UTMMedium   string    `json:"utm_medium" db:"utm_medium"`
	UTMCampaign string    `json:"utm_campaign" db:"utm_campaign"`
	PageURL     string    `json:"page_url" db:"page_url"`
	ReferrerURL string    `json:"referrer_url" db:"referrer_url"`
	OccurredAt  time.Time `json:"occurred_at" db:"occurred_at"`
}

// Channel returns the touchpoint's channel label, defaulting to "direct"
// when the type was never recorded.
func (t Touchpoint) Channel() string {
	if t.Type == "" {
		return "direct"
	}
	return t.Type
}

// ConversionEvent is one value-bearing outcome (e.g. a purchase) attributable
// to the contact's prior journey. Immutable once recorded.
type ConversionEvent struct {
	ID                   string    `json:"id" db:"id"`
	ContactID            string    `json:"contact_id" db:"contact_id"`
	EventType            string    `json:"event_type" db:"event_type"`
	EventValue           float64   `json:"event_value" db:"event_value"`
	UTMSource            string    `json:"utm_source" db:"utm_source"`
	UTMMedium            string    `json:"utm_medium" db:"utm_medium"`
	UTMCampaign          string    `json:"utm_campaign" db:"utm_campaign"`
	AttributedCampaignID string    `json:"attributed_campaign_id" db:"attributed_campaign_id"`
	OccurredAt           time.Time `json:"occurred_at" db:"occurred_at"`
}

// Medium returns the conversion's UTM medium, defaulting to "direct".
func (c ConversionEvent) Medium() string {
	if c.UTMMedium == "" {
		return "direct"
	}
	return c.UTMMedium
}

// Contact is the minimal contact projection the engine needs when joining
// computed scores back to a person for display.
type Contact struct {
	ID        string `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
}

// DisplayName returns "First Last" when either name part is present,
// falling back to the email address.
func (c Contact) DisplayName() string {
	name := c.FirstName
	if c.LastName != "" {
		if name != "" {
			name += " "
		}
		name += c.LastName
	}
	if name == "" {
		return c.Email
	}
	return name
}

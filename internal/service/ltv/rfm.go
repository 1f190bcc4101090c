package ltv

import (
	"context"
	"fmt"
	"time"
)

// Score holds RFM component scores and the resulting segment for one contact.
// Scores are 1-5; all three are 0 only for contacts with no conversions,
// whose segment is "Inactive".
type Score struct {
	RecencyScore   int     `json:"recency_score"`
	FrequencyScore int     `json:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score"`
	Segment        string  `json:"rfm_segment"`
	RFMString      string  `json:"rfm_string,omitempty"`
	RecencyDays    int     `json:"recency_days"`
	Frequency      int     `json:"frequency"`
	MonetaryValue  float64 `json:"monetary_value"`
}

// SegmentInactive is assigned to contacts with no conversion history.
const SegmentInactive = "Inactive"

// The nine RFM segments, in classification priority order.
const (
	SegmentChampions          = "Champions"
	SegmentLoyalCustomers     = "Loyal Customers"
	SegmentNewCustomers       = "New Customers"
	SegmentAtRisk             = "At Risk"
	SegmentCantLoseThem       = "Cant Lose Them"
	SegmentPromising          = "Promising"
	SegmentLost               = "Lost"
	SegmentPotentialLoyalists = "Potential Loyalists"
	SegmentNeedAttention      = "Need Attention"
)

// RFMScore computes recency/frequency/monetary scores for a contact as of
// reference. A zero reference time means now.
func (s *Service) RFMScore(ctx context.Context, contactID string, reference time.Time) (*Score, error) {
	if reference.IsZero() {
		reference = time.Now().UTC()
	}

	conversions, err := s.conversions.ConversionsForContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("load conversions for %s: %w", contactID, err)
	}
	if len(conversions) == 0 {
		return &Score{Segment: SegmentInactive}, nil
	}
	sortConversions(conversions)

	latest := conversions[len(conversions)-1].OccurredAt
	recencyDays := int(reference.Sub(latest).Hours() / 24)
	frequency := len(conversions)

	var monetary float64
	for _, c := range conversions {
		monetary += c.EventValue
	}

	r := scoreRecency(recencyDays)
	f := scoreFrequency(frequency)
	m := scoreMonetary(monetary)

	return &Score{
		RecencyScore:   r,
		FrequencyScore: f,
		MonetaryScore:  m,
		Segment:        segmentFor(r, f, m),
		RFMString:      fmt.Sprintf("%d%d%d", r, f, m),
		RecencyDays:    recencyDays,
		Frequency:      frequency,
		MonetaryValue:  monetary,
	}, nil
}

func scoreRecency(days int) int {
	switch {
	case days <= 30:
		return 5
	case days <= 60:
		return 4
	case days <= 90:
		return 3
	case days <= 180:
		return 2
	default:
		return 1
	}
}

func scoreFrequency(count int) int {
	switch {
	case count >= 10:
		return 5
	case count >= 7:
		return 4
	case count >= 4:
		return 3
	case count >= 2:
		return 2
	default:
		return 1
	}
}

func scoreMonetary(total float64) int {
	switch {
	case total >= 1000:
		return 5
	case total >= 500:
		return 4
	case total >= 250:
		return 3
	case total >= 100:
		return 2
	default:
		return 1
	}
}

// segmentFor classifies a contact by RFM scores. The rules are evaluated in
// this exact order and the first match wins; reordering changes outcomes for
// contacts matching more than one pattern.
func segmentFor(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case r >= 3 && f >= 3 && m >= 3:
		return SegmentLoyalCustomers
	case r >= 4 && f <= 2:
		return SegmentNewCustomers
	case r <= 2 && f >= 3 && m >= 3:
		return SegmentAtRisk
	case r <= 2 && f >= 4:
		return SegmentCantLoseThem
	case r >= 4 && m <= 2:
		return SegmentPromising
	case r <= 2 && f <= 2 && m <= 2:
		return SegmentLost
	case float64(r+f+m)/3 >= 3:
		return SegmentPotentialLoyalists
	default:
		return SegmentNeedAttention
	}
}

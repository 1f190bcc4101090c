package ltv

import (
	"context"
	"fmt"
	"time"

	"github.com/luxmetrics/insights/internal/pkg/logger"
)

// CustomerRFM is one contact's RFM score joined with display fields.
type CustomerRFM struct {
	ContactID string `json:"contact_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Score
}

// AllCustomersRFM scores every contact that has at least one conversion.
// Contacts missing from the directory are skipped with a warning; a stale
// directory row should not sink the whole listing.
func (s *Service) AllCustomersRFM(ctx context.Context) ([]CustomerRFM, error) {
	if s.contacts == nil {
		return nil, fmt.Errorf("contact directory not configured")
	}

	ids, err := s.conversions.ContactIDsWithConversions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list converting contacts: %w", err)
	}

	now := time.Now().UTC()
	out := make([]CustomerRFM, 0, len(ids))
	for _, id := range ids {
		contact, err := s.contacts.ContactByID(ctx, id)
		if err != nil {
			logger.Warn("skipping contact without directory entry", "contact_id", id, "error", err)
			continue
		}

		score, err := s.RFMScore(ctx, id, now)
		if err != nil {
			return nil, err
		}
		out = append(out, CustomerRFM{
			ContactID: id,
			Email:     contact.Email,
			Name:      contact.DisplayName(),
			Score:     *score,
		})
	}
	return out, nil
}

// SegmentStats summarizes one RFM segment across the customer base.
type SegmentStats struct {
	Count        int     `json:"count"`
	TotalRevenue float64 `json:"total_revenue"`
	AvgRecency   float64 `json:"avg_recency"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgMonetary  float64 `json:"avg_monetary"`
}

// SegmentSummary aggregates per-segment counts, revenue, and average RFM
// inputs over every converting contact.
func (s *Service) SegmentSummary(ctx context.Context) (map[string]*SegmentStats, error) {
	customers, err := s.AllCustomersRFM(ctx)
	if err != nil {
		return nil, err
	}

	summary := make(map[string]*SegmentStats)
	for _, c := range customers {
		stats, ok := summary[c.Segment]
		if !ok {
			stats = &SegmentStats{}
			summary[c.Segment] = stats
		}
		stats.Count++
		stats.TotalRevenue += c.MonetaryValue
		stats.AvgRecency += float64(c.RecencyDays)
		stats.AvgFrequency += float64(c.Frequency)
		stats.AvgMonetary += c.MonetaryValue
	}

	for _, stats := range summary {
		if stats.Count > 0 {
			n := float64(stats.Count)
			stats.AvgRecency /= n
			stats.AvgFrequency /= n
			stats.AvgMonetary /= n
		}
	}
	return summary, nil
}

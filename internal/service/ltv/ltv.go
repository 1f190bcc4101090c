package ltv

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/luxmetrics/insights/internal/domain"
)

// DefaultPredictionMonths is the forward horizon used when none is
// configured.
const DefaultPredictionMonths = 12

// Result holds historical and predicted lifetime value for one contact.
type Result struct {
	TotalValue        float64    `json:"total_value"`
	AvgOrderValue     float64    `json:"avg_order_value"`
	PurchaseFrequency float64    `json:"purchase_frequency"`
	LifespanDays      int        `json:"customer_lifespan_days"`
	NumPurchases      int        `json:"num_purchases"`
	LTV               float64    `json:"ltv"`
	PredictedLTV      float64    `json:"predicted_ltv"`
	FirstPurchase     *time.Time `json:"first_purchase,omitempty"`
	LastPurchase      *time.Time `json:"last_purchase,omitempty"`
}

// Service computes LTV, RFM, and cohort analytics over a conversion source.
type Service struct {
	conversions      ConversionSource
	contacts         ContactDirectory
	predictionMonths int
}

// NewService creates an LTV service. A predictionMonths of zero or less
// falls back to DefaultPredictionMonths. The contact directory may be nil if
// the fleet-wide RFM listing is not used.
func NewService(conversions ConversionSource, contacts ContactDirectory, predictionMonths int) *Service {
	if predictionMonths <= 0 {
		predictionMonths = DefaultPredictionMonths
	}
	return &Service{conversions: conversions, contacts: contacts, predictionMonths: predictionMonths}
}

// CustomerLTV computes historical value and a linear forward projection for
// one contact. The prediction is avg order value times monthly purchase
// frequency times the horizon; a deliberately simple extrapolation, not a
// probabilistic model.
func (s *Service) CustomerLTV(ctx context.Context, contactID string) (*Result, error) {
	conversions, err := s.conversions.ConversionsForContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("load conversions for %s: %w", contactID, err)
	}
	if len(conversions) == 0 {
		return &Result{}, nil
	}
	sortConversions(conversions)

	var total float64
	for _, c := range conversions {
		total += c.EventValue
	}
	num := len(conversions)
	avgOrder := total / float64(num)

	first := conversions[0].OccurredAt
	last := conversions[num-1].OccurredAt

	// Single-day and single-purchase customers get a one-day lifespan so
	// frequency math stays finite.
	lifespanDays := int(last.Sub(first).Hours() / 24)
	if lifespanDays == 0 {
		lifespanDays = 1
	}

	lifespanMonths := float64(lifespanDays) / 30.0
	frequency := float64(num) / lifespanMonths
	if lifespanMonths == 0 {
		frequency = float64(num)
	}

	return &Result{
		TotalValue:        total,
		AvgOrderValue:     avgOrder,
		PurchaseFrequency: frequency,
		LifespanDays:      lifespanDays,
		NumPurchases:      num,
		LTV:               total,
		PredictedLTV:      avgOrder * frequency * float64(s.predictionMonths),
		FirstPurchase:     &first,
		LastPurchase:      &last,
	}, nil
}

func sortConversions(conversions []domain.ConversionEvent) {
	sort.SliceStable(conversions, func(i, j int) bool {
		if conversions[i].OccurredAt.Equal(conversions[j].OccurredAt) {
			return conversions[i].ID < conversions[j].ID
		}
		return conversions[i].OccurredAt.Before(conversions[j].OccurredAt)
	})
}

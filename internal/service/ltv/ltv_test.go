package ltv_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxmetrics/insights/internal/domain"
	"github.com/luxmetrics/insights/internal/service/ltv"
)

// memSource is an in-memory conversion source for unit testing.
type memSource struct {
	conversions map[string][]domain.ConversionEvent
	contacts    map[string]domain.Contact
	failWith    error
}

func (m *memSource) ConversionsForContact(_ context.Context, contactID string) ([]domain.ConversionEvent, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.conversions[contactID], nil
}

func (m *memSource) ConversionsInWindow(_ context.Context, start, end time.Time) ([]domain.ConversionEvent, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []domain.ConversionEvent
	for _, events := range m.conversions {
		for _, c := range events {
			if !c.OccurredAt.Before(start) && c.OccurredAt.Before(end) {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *memSource) ContactIDsWithConversions(_ context.Context) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var ids []string
	for id, events := range m.conversions {
		if len(events) > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memSource) ContactByID(_ context.Context, contactID string) (*domain.Contact, error) {
	c, ok := m.contacts[contactID]
	if !ok {
		return nil, fmt.Errorf("contact %s not found", contactID)
	}
	return &c, nil
}

func purchase(id, contactID string, value float64, when time.Time) domain.ConversionEvent {
	return domain.ConversionEvent{
		ID:         id,
		ContactID:  contactID,
		EventType:  "purchase",
		EventValue: value,
		OccurredAt: when,
	}
}

func sourceWith(events ...domain.ConversionEvent) *memSource {
	src := &memSource{
		conversions: make(map[string][]domain.ConversionEvent),
		contacts:    make(map[string]domain.Contact),
	}
	for _, e := range events {
		src.conversions[e.ContactID] = append(src.conversions[e.ContactID], e)
	}
	return src
}

func TestCustomerLTV(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := sourceWith(
		purchase("p1", "c1", 100, base),
		purchase("p2", "c1", 200, base.AddDate(0, 0, 30)),
		purchase("p3", "c1", 300, base.AddDate(0, 0, 60)),
	)
	svc := ltv.NewService(src, src, 12)

	result, err := svc.CustomerLTV(context.Background(), "c1")
	require.NoError(t, err)

	assert.InDelta(t, 600.0, result.TotalValue, 1e-6)
	assert.InDelta(t, 600.0, result.LTV, 1e-6)
	assert.InDelta(t, 200.0, result.AvgOrderValue, 1e-6)
	assert.Equal(t, 3, result.NumPurchases)
	assert.Equal(t, 60, result.LifespanDays)

	// 3 purchases over 2 months = 1.5/month; 200 * 1.5 * 12 = 3600.
	assert.InDelta(t, 1.5, result.PurchaseFrequency, 1e-6)
	assert.InDelta(t, 3600.0, result.PredictedLTV, 1e-6)

	require.NotNil(t, result.FirstPurchase)
	require.NotNil(t, result.LastPurchase)
	assert.Equal(t, base, *result.FirstPurchase)
}

func TestCustomerLTVNoConversions(t *testing.T) {
	svc := ltv.NewService(sourceWith(), nil, 12)

	result, err := svc.CustomerLTV(context.Background(), "ghost")
	require.NoError(t, err)

	assert.Zero(t, result.TotalValue)
	assert.Zero(t, result.LTV)
	assert.Zero(t, result.PredictedLTV)
	assert.Zero(t, result.NumPurchases)
	assert.Nil(t, result.FirstPurchase)
}

func TestCustomerLTVSinglePurchase(t *testing.T) {
	when := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	src := sourceWith(purchase("p1", "c1", 80, when))
	svc := ltv.NewService(src, nil, 6)

	result, err := svc.CustomerLTV(context.Background(), "c1")
	require.NoError(t, err)

	// Lifespan is clamped to one day; one purchase in a sub-30-day lifespan
	// counts as 30 purchases/month under the 30-day-month convention.
	assert.Equal(t, 1, result.LifespanDays)
	assert.InDelta(t, 30.0, result.PurchaseFrequency, 1e-6)
	assert.InDelta(t, 80.0*30.0*6.0, result.PredictedLTV, 1e-6)
}

func TestCustomerLTVSourceError(t *testing.T) {
	src := &memSource{failWith: fmt.Errorf("connection reset")}
	svc := ltv.NewService(src, nil, 12)

	_, err := svc.CustomerLTV(context.Background(), "c1")
	assert.ErrorContains(t, err, "connection reset")
}

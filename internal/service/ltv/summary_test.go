package ltv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxmetrics/insights/internal/domain"
	"github.com/luxmetrics/insights/internal/service/ltv"
)

func TestAllCustomersRFM(t *testing.T) {
	now := time.Now().UTC()
	src := sourceWith(
		purchase("p1", "c1", 1500, now.AddDate(0, 0, -5)),
		purchase("p2", "c2", 30, now.AddDate(0, 0, -300)),
	)
	src.contacts["c1"] = domain.Contact{ID: "c1", Email: "alice@example.com", FirstName: "Alice", LastName: "Nguyen"}
	src.contacts["c2"] = domain.Contact{ID: "c2", Email: "bob@example.com"}
	svc := ltv.NewService(src, src, 12)

	customers, err := svc.AllCustomersRFM(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)

	byID := make(map[string]ltv.CustomerRFM)
	for _, c := range customers {
		byID[c.ContactID] = c
	}

	assert.Equal(t, "Alice Nguyen", byID["c1"].Name)
	assert.Equal(t, ltv.SegmentNewCustomers, byID["c1"].Segment)
	assert.Equal(t, "bob@example.com", byID["c2"].Name)
	assert.Equal(t, ltv.SegmentLost, byID["c2"].Segment)
}

func TestAllCustomersRFMSkipsMissingContacts(t *testing.T) {
	now := time.Now().UTC()
	src := sourceWith(
		purchase("p1", "c1", 100, now.AddDate(0, 0, -5)),
		purchase("p2", "orphan", 100, now.AddDate(0, 0, -5)),
	)
	src.contacts["c1"] = domain.Contact{ID: "c1", Email: "alice@example.com"}
	svc := ltv.NewService(src, src, 12)

	customers, err := svc.AllCustomersRFM(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "c1", customers[0].ContactID)
}

func TestAllCustomersRFMWithoutDirectory(t *testing.T) {
	svc := ltv.NewService(sourceWith(), nil, 12)

	_, err := svc.AllCustomersRFM(context.Background())
	assert.Error(t, err)
}

func TestSegmentSummary(t *testing.T) {
	now := time.Now().UTC()
	src := sourceWith(
		// Two one-and-done big spenders, both "New Customers".
		purchase("p1", "c1", 1200, now.AddDate(0, 0, -10)),
		purchase("p2", "c2", 800, now.AddDate(0, 0, -20)),
		// One long-gone small spender, "Lost".
		purchase("p3", "c3", 40, now.AddDate(0, 0, -400)),
	)
	src.contacts["c1"] = domain.Contact{ID: "c1", Email: "a@example.com"}
	src.contacts["c2"] = domain.Contact{ID: "c2", Email: "b@example.com"}
	src.contacts["c3"] = domain.Contact{ID: "c3", Email: "c@example.com"}
	svc := ltv.NewService(src, src, 12)

	summary, err := svc.SegmentSummary(context.Background())
	require.NoError(t, err)

	require.Contains(t, summary, ltv.SegmentNewCustomers)
	newCustomers := summary[ltv.SegmentNewCustomers]
	assert.Equal(t, 2, newCustomers.Count)
	assert.InDelta(t, 2000.0, newCustomers.TotalRevenue, 1e-6)
	assert.InDelta(t, 15.0, newCustomers.AvgRecency, 1.0)
	assert.InDelta(t, 1.0, newCustomers.AvgFrequency, 1e-6)
	assert.InDelta(t, 1000.0, newCustomers.AvgMonetary, 1e-6)

	require.Contains(t, summary, ltv.SegmentLost)
	assert.Equal(t, 1, summary[ltv.SegmentLost].Count)
}

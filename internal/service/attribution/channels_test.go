package attribution_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxmetrics/insights/internal/domain"
	"github.com/luxmetrics/insights/internal/service/attribution"
)

func conversionAt(id, contactID string, value float64, medium string, daysAgo int) domain.ConversionEvent {
	return domain.ConversionEvent{
		ID:         id,
		ContactID:  contactID,
		EventType:  "purchase",
		EventValue: value,
		UTMMedium:  medium,
		OccurredAt: time.Now().UTC().AddDate(0, 0, -daysAgo),
	}
}

func TestChannelAttributionRevenueIsMultiTouch(t *testing.T) {
	src := journeySource(
		touchAt("t1", "c1", "email", 10),
		touchAt("t2", "c1", "social", 2),
	)
	src.conversions = []domain.ConversionEvent{
		conversionAt("conv1", "c1", 100.0, "email", 1),
	}
	svc := attribution.NewService(src, 0)

	channels, err := svc.ChannelAttribution(context.Background(), attribution.Linear, 30)
	require.NoError(t, err)
	require.Contains(t, channels, "email")
	require.Contains(t, channels, "social")

	// Linear split: each channel gets half the revenue and one touch.
	assert.InDelta(t, 50.0, channels["email"].Revenue, 1e-6)
	assert.InDelta(t, 50.0, channels["social"].Revenue, 1e-6)
	assert.Equal(t, 1, channels["email"].Touches)
	assert.Equal(t, 1, channels["social"].Touches)

	// Conversion counts follow the conversion's own medium, single-touch.
	assert.Equal(t, 1, channels["email"].Conversions)
	assert.Equal(t, 0, channels["social"].Conversions)
}

func TestChannelAttributionDefaultsToDirect(t *testing.T) {
	src := journeySource(
		domain.Touchpoint{ID: "t1", ContactID: "c1", OccurredAt: time.Now().UTC().AddDate(0, 0, -3)},
	)
	src.conversions = []domain.ConversionEvent{
		conversionAt("conv1", "c1", 40.0, "", 1),
	}
	svc := attribution.NewService(src, 0)

	channels, err := svc.ChannelAttribution(context.Background(), attribution.LastTouch, 30)
	require.NoError(t, err)
	require.Contains(t, channels, "direct")
	assert.InDelta(t, 40.0, channels["direct"].Revenue, 1e-6)
	assert.Equal(t, 1, channels["direct"].Conversions)
}

func TestChannelAttributionWindowExcludesOldConversions(t *testing.T) {
	src := journeySource(touchAt("t1", "c1", "email", 60))
	src.conversions = []domain.ConversionEvent{
		conversionAt("old", "c1", 500.0, "email", 45),
	}
	svc := attribution.NewService(src, 0)

	channels, err := svc.ChannelAttribution(context.Background(), attribution.LastTouch, 30)
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestChannelAttributionSourceError(t *testing.T) {
	src := &memSource{convErr: fmt.Errorf("timeout")}
	svc := attribution.NewService(src, 0)

	_, err := svc.ChannelAttribution(context.Background(), attribution.Linear, 30)
	assert.ErrorContains(t, err, "timeout")
}

func TestCompareModels(t *testing.T) {
	src := journeySource(
		touchAt("t1", "c1", "email", 10),
		touchAt("t2", "c1", "ad", 1),
	)
	svc := attribution.NewService(src, 0)

	comparison, err := svc.CompareModels(context.Background(), "c1", 200.0)
	require.NoError(t, err)
	require.Len(t, comparison, 4)

	for model, result := range comparison {
		credit, _ := creditSum(result)
		assert.InDelta(t, 200.0, credit, 1e-6, "model %s", model)
	}
	assert.Len(t, comparison[attribution.FirstTouch], 1)
	assert.Len(t, comparison[attribution.Linear], 2)
}

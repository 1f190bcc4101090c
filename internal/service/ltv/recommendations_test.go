package ltv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luxmetrics/insights/internal/service/ltv"
)

func TestSegmentRecommendationsCoverAllSegments(t *testing.T) {
	segments := []string{
		ltv.SegmentChampions,
		ltv.SegmentLoyalCustomers,
		ltv.SegmentNewCustomers,
		ltv.SegmentAtRisk,
		ltv.SegmentCantLoseThem,
		ltv.SegmentPromising,
		ltv.SegmentLost,
		ltv.SegmentPotentialLoyalists,
		ltv.SegmentNeedAttention,
	}

	for _, segment := range segments {
		rec := ltv.SegmentRecommendations(segment)
		assert.NotEmpty(t, rec.Strategy, segment)
		assert.NotEmpty(t, rec.Actions, segment)
		assert.NotEmpty(t, rec.Channels, segment)
		assert.NotEmpty(t, rec.Priority, segment)
	}
}

func TestSegmentRecommendationsFallback(t *testing.T) {
	rec := ltv.SegmentRecommendations("Totally Made Up")
	assert.Equal(t, "Evaluate individually", rec.Strategy)
	assert.NotEmpty(t, rec.Actions)
}

func TestSegmentRecommendationsPriorities(t *testing.T) {
	assert.Equal(t, "Critical", ltv.SegmentRecommendations(ltv.SegmentCantLoseThem).Priority)
	assert.Equal(t, "Low", ltv.SegmentRecommendations(ltv.SegmentLost).Priority)
}

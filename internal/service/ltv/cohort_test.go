package ltv_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxmetrics/insights/internal/service/ltv"
)

func monthKey(t time.Time) string { return t.UTC().Format("2006-01") }

func TestCohortAnalysis(t *testing.T) {
	now := time.Now().UTC()
	first := now.AddDate(0, 0, -100)
	repeat := now.AddDate(0, 0, -40)

	src := sourceWith(
		// Two contacts join in the same cohort month; one comes back.
		purchase("p1", "c1", 100, first),
		purchase("p2", "c2", 50, first.Add(2*time.Hour)),
		purchase("p3", "c1", 75, repeat),
	)
	svc := ltv.NewService(src, nil, 12)

	cohorts, err := svc.CohortAnalysis(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, cohorts, 1)

	cohort := cohorts[0]
	assert.Equal(t, monthKey(first), cohort.CohortMonth)
	assert.Equal(t, 2, cohort.CohortSize)

	// Month zero: every member present by construction.
	m0 := cohort.Retention[monthKey(first)]
	assert.Equal(t, cohort.CohortSize, m0.Customers)
	assert.InDelta(t, 100.0, m0.RetentionPct, 1e-6)
	assert.InDelta(t, 150.0, m0.Revenue, 1e-6)

	m1 := cohort.Retention[monthKey(repeat)]
	assert.Equal(t, 1, m1.Customers)
	assert.InDelta(t, 50.0, m1.RetentionPct, 1e-6)
	assert.InDelta(t, 75.0, m1.Revenue, 1e-6)
}

func TestCohortRetentionCeiling(t *testing.T) {
	now := time.Now().UTC()
	src := sourceWith()
	// Five contacts with erratic repeat behavior across three months.
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("c%d", i)
		src.conversions[id] = append(src.conversions[id],
			purchase(id+"-first", id, 20, now.AddDate(0, 0, -150)))
		for rep := 0; rep < i; rep++ {
			src.conversions[id] = append(src.conversions[id],
				purchase(fmt.Sprintf("%s-rep%d", id, rep), id, 10, now.AddDate(0, 0, -150+45*(rep+1))))
		}
	}
	svc := ltv.NewService(src, nil, 12)

	cohorts, err := svc.CohortAnalysis(context.Background(), 12)
	require.NoError(t, err)

	for _, cohort := range cohorts {
		require.Contains(t, cohort.Retention, cohort.CohortMonth)
		assert.Equal(t, cohort.CohortSize, cohort.Retention[cohort.CohortMonth].Customers)
		for month, stat := range cohort.Retention {
			assert.LessOrEqual(t, stat.Customers, cohort.CohortSize, "month %s", month)
			assert.LessOrEqual(t, stat.RetentionPct, 100.0+1e-9, "month %s", month)
		}
	}
}

func TestCohortAnalysisSeparatesCohortMonths(t *testing.T) {
	now := time.Now().UTC()
	src := sourceWith(
		purchase("p1", "early", 10, now.AddDate(0, 0, -200)),
		purchase("p2", "late", 10, now.AddDate(0, 0, -50)),
	)
	svc := ltv.NewService(src, nil, 12)

	cohorts, err := svc.CohortAnalysis(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, cohorts, 2)

	// Ascending by cohort month.
	assert.Less(t, cohorts[0].CohortMonth, cohorts[1].CohortMonth)
	assert.Equal(t, 1, cohorts[0].CohortSize)
	assert.Equal(t, 1, cohorts[1].CohortSize)
}

func TestCohortAnalysisWindowCutoff(t *testing.T) {
	now := time.Now().UTC()
	src := sourceWith(
		purchase("ancient", "c1", 500, now.AddDate(0, 0, -12*30-5)),
	)
	svc := ltv.NewService(src, nil, 12)

	cohorts, err := svc.CohortAnalysis(context.Background(), 12)
	require.NoError(t, err)
	assert.Empty(t, cohorts)
}

func TestCohortAnalysisNoConversions(t *testing.T) {
	svc := ltv.NewService(sourceWith(), nil, 12)

	cohorts, err := svc.CohortAnalysis(context.Background(), 12)
	require.NoError(t, err)
	assert.Empty(t, cohorts)
}

package ltv

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// MonthStat is one month's retained customers and revenue within a cohort.
type MonthStat struct {
	Customers    int     `json:"customers"`
	RetentionPct float64 `json:"retention_pct"`
	Revenue      float64 `json:"revenue"`
}

// Cohort groups contacts by first-purchase month and tracks how many of them
// came back in each later month. Months with zero retained customers are
// absent from the retention map rather than present with 0%.
type Cohort struct {
	CohortMonth string               `json:"cohort_month"`
	CohortSize  int                  `json:"cohort_size"`
	Retention   map[string]MonthStat `json:"retention"`
}

// CohortAnalysis buckets every converting contact in the trailing window by
// first purchase month and follows their repeat-purchase behavior month over
// month. The window is monthsBack*30 days; calendar-month-naive by design.
func (s *Service) CohortAnalysis(ctx context.Context, monthsBack int) ([]Cohort, error) {
	if monthsBack <= 0 {
		monthsBack = 12
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -monthsBack*30)

	conversions, err := s.conversions.ConversionsInWindow(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load conversions: %w", err)
	}
	sortConversions(conversions)

	type cohortAccum struct {
		members  map[string]struct{}
		retained map[string]map[string]struct{}
		revenue  map[string]float64
	}

	firstMonth := make(map[string]string)
	cohorts := make(map[string]*cohortAccum)

	for _, conv := range conversions {
		month := conv.OccurredAt.UTC().Format("2006-01")

		cohortMonth, seen := firstMonth[conv.ContactID]
		if !seen {
			cohortMonth = month
			firstMonth[conv.ContactID] = month
			if cohorts[month] == nil {
				cohorts[month] = &cohortAccum{
					members:  make(map[string]struct{}),
					retained: make(map[string]map[string]struct{}),
					revenue:  make(map[string]float64),
				}
			}
			cohorts[month].members[conv.ContactID] = struct{}{}
		}

		acc := cohorts[cohortMonth]
		if acc.retained[month] == nil {
			acc.retained[month] = make(map[string]struct{})
		}
		acc.retained[month][conv.ContactID] = struct{}{}
		acc.revenue[month] += conv.EventValue
	}

	months := make([]string, 0, len(cohorts))
	for m := range cohorts {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]Cohort, 0, len(months))
	for _, cohortMonth := range months {
		acc := cohorts[cohortMonth]
		size := len(acc.members)

		retention := make(map[string]MonthStat, len(acc.retained))
		for month, contacts := range acc.retained {
			retained := len(contacts)
			pct := 0.0
			if size > 0 {
				pct = float64(retained) / float64(size) * 100
			}
			retention[month] = MonthStat{
				Customers:    retained,
				RetentionPct: pct,
				Revenue:      acc.revenue[month],
			}
		}

		out = append(out, Cohort{
			CohortMonth: cohortMonth,
			CohortSize:  size,
			Retention:   retention,
		})
	}
	return out, nil
}

package dashboard

import (
	"context"
	"fmt"
	"time"
)

// ChartSeries holds aligned daily series for the dashboard charts. Every
// slice has one entry per day in the window, oldest first.
type ChartSeries struct {
	Labels       []string  `json:"labels"`
	Contacts     []int     `json:"contacts"`
	EmailsSent   []int     `json:"emails_sent"`
	EmailsOpened []int     `json:"emails_opened"`
	OpenRates    []float64 `json:"open_rates"`
}

// ChartData builds the daily time series over the trailing window. Days
// without activity are present with zero counts so the series stay aligned.
func (s *Service) ChartData(ctx context.Context, days int) (*ChartSeries, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	counts, err := s.source.DailyCounts(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load daily counts: %w", err)
	}

	byDay := make(map[string]DayCounts, len(counts))
	for _, c := range counts {
		byDay[c.Date.UTC().Format("2006-01-02")] = c
	}

	series := &ChartSeries{
		Labels:       make([]string, 0, days),
		Contacts:     make([]int, 0, days),
		EmailsSent:   make([]int, 0, days),
		EmailsOpened: make([]int, 0, days),
		OpenRates:    make([]float64, 0, days),
	}
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		c := byDay[day.Format("2006-01-02")]

		series.Labels = append(series.Labels, day.Format("Jan 02"))
		series.Contacts = append(series.Contacts, c.NewContacts)
		series.EmailsSent = append(series.EmailsSent, c.EmailsSent)
		series.EmailsOpened = append(series.EmailsOpened, c.EmailsOpen)
		rate := 0.0
		if c.EmailsSent > 0 {
			rate = round1(ratio(c.EmailsOpen, c.EmailsSent))
		}
		series.OpenRates = append(series.OpenRates, rate)
	}
	return series, nil
}

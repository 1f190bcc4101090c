package dashboard

import (
	"context"
	"time"

	"github.com/luxmetrics/insights/internal/service/attribution"
	"github.com/luxmetrics/insights/internal/service/ltv"
)

// Email event types recognized by EmailEventCount.
const (
	EmailEventSent    = "sent"
	EmailEventOpened  = "opened"
	EmailEventClicked = "clicked"
	EmailEventBounced = "bounced"
)

// DealStats is the won-deal rollup for a window.
type DealStats struct {
	Count   int
	Revenue float64
}

// SocialTotals sums engagement counters across social posts in a window.
type SocialTotals struct {
	Posts    int
	Likes    int
	Shares   int
	Comments int
	Reach    int
}

// CampaignStat carries the raw delivery counters for one campaign.
type CampaignStat struct {
	ID      string
	Name    string
	Status  string
	Sent    int
	Opened  int
	Clicked int
}

// DayCounts is one day's worth of chart counters.
type DayCounts struct {
	Date        time.Time
	NewContacts int
	EmailsSent  int
	EmailsOpen  int
}

// MetricsSource provides the raw counts and sums the aggregator turns into
// ratios. Implementations live in the repository layer; every method scoped
// to a window treats it as [start, end).
type MetricsSource interface {
	NewContactCount(ctx context.Context, start, end time.Time) (int, error)
	ContactCountBySource(ctx context.Context, start, end time.Time) (map[string]int, error)
	NewSubscriberCount(ctx context.Context, start, end time.Time) (int, error)
	TotalContactCount(ctx context.Context) (int, error)
	ActiveContactCount(ctx context.Context) (int, error)
	SubscribedContactCount(ctx context.Context) (int, error)
	UnsubscribeCount(ctx context.Context, start, end time.Time) (int, error)
	ConsentBySource(ctx context.Context) (map[string]int, error)

	EmailEventCount(ctx context.Context, event string, start, end time.Time) (int, error)
	DailyCounts(ctx context.Context, start, end time.Time) ([]DayCounts, error)

	ConvertingContactCount(ctx context.Context, start, end time.Time) (int, error)
	RepeatCustomerCount(ctx context.Context, start, end time.Time) (int, error)
	WonDealStats(ctx context.Context, start, end time.Time) (DealStats, error)
	RevenueByMedium(ctx context.Context, start, end time.Time) (map[string]float64, error)
	MarketingSpend(ctx context.Context, start, end time.Time) (float64, error)

	SocialTotals(ctx context.Context, start, end time.Time) (SocialTotals, error)
	CampaignCount(ctx context.Context, start, end time.Time) (int, error)
	RecentCampaigns(ctx context.Context, start, end time.Time, limit int) ([]CampaignStat, error)
}

// ChannelAttributor is the slice of the attribution service the dashboard
// needs for its attribution category.
type ChannelAttributor interface {
	ChannelAttribution(ctx context.Context, model attribution.Model, days int) (map[string]*attribution.ChannelStat, error)
}

// SegmentSummarizer is the slice of the ltv service the dashboard needs for
// its segment category.
type SegmentSummarizer interface {
	SegmentSummary(ctx context.Context) (map[string]*ltv.SegmentStats, error)
}

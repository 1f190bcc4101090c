package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/luxmetrics/insights/internal/metrics"
	"github.com/luxmetrics/insights/internal/pkg/logger"
	"github.com/luxmetrics/insights/internal/service/attribution"
)

// DefaultWindowDays is used when a caller passes a non-positive window.
const DefaultWindowDays = 30

// ltvMultiplier estimates customer lifetime value from average order value
// when no per-customer history is available to the aggregator.
const ltvMultiplier = 2.5

const campaignReportLimit = 10

// Service computes the combined dashboard payload.
type Service struct {
	source      MetricsSource
	attribution ChannelAttributor
	segments    SegmentSummarizer
}

// NewService wires the aggregator to its raw-count source and the analytics
// services backing the attribution and segment categories.
func NewService(source MetricsSource, attrib ChannelAttributor, segments SegmentSummarizer) *Service {
	return &Service{source: source, attribution: attrib, segments: segments}
}

// AllMetrics assembles every category over the trailing window. Categories
// whose data source fails are logged and degraded to their zero value; the
// call itself never fails.
func (s *Service) AllMetrics(ctx context.Context, days int) *Metrics {
	if days <= 0 {
		days = DefaultWindowDays
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	prevStart := start.AddDate(0, 0, -days)

	m := &Metrics{
		DateRange: DateRange{
			Start: start.Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
			Days:  days,
		},
	}

	if v, err := s.acquisitionMetrics(ctx, start, end, prevStart); err != nil {
		s.degraded("acquisition", err)
	} else {
		m.Acquisition = v
	}
	if v, err := s.conversionMetrics(ctx, start, end); err != nil {
		s.degraded("conversion", err)
	} else {
		m.Conversion = v
	}
	if v, err := s.revenueMetrics(ctx, start, end, prevStart); err != nil {
		s.degraded("revenue", err)
	} else {
		m.Revenue = v
	}
	if v, err := s.cacMetrics(ctx, start, end); err != nil {
		s.degraded("cac", err)
	} else {
		m.CAC = v
	}
	if v, err := s.retentionMetrics(ctx, start, end); err != nil {
		s.degraded("retention", err)
	} else {
		m.Retention = v
	}
	if v, err := s.engagementMetrics(ctx, start, end); err != nil {
		s.degraded("engagement", err)
	} else {
		m.Engagement = v
	}
	if v, err := s.attributionMetrics(ctx, days); err != nil {
		s.degraded("attribution", err)
	} else {
		m.Attribution = v
	}
	if v, err := s.segmentMetrics(ctx); err != nil {
		s.degraded("segments", err)
	} else {
		m.Segments = v
	}
	if v, err := s.campaignMetrics(ctx, start, end); err != nil {
		s.degraded("campaigns", err)
	} else {
		m.Campaigns = v
	}
	if v, err := s.complianceMetrics(ctx, start, end); err != nil {
		s.degraded("compliance", err)
	} else {
		m.Compliance = v
	}

	return m
}

// degraded notes a category that fell back to its zero value.
func (s *Service) degraded(category string, err error) {
	logger.Warn("dashboard category degraded", "category", category, "error", err)
	if metrics.DefaultMetrics != nil {
		metrics.DefaultMetrics.RecordDegradedCategory(category)
	}
}

func (s *Service) acquisitionMetrics(ctx context.Context, start, end, prevStart time.Time) (AcquisitionMetrics, error) {
	newContacts, err := s.source.NewContactCount(ctx, start, end)
	if err != nil {
		return AcquisitionMetrics{}, fmt.Errorf("count new contacts: %w", err)
	}
	prevContacts, err := s.source.NewContactCount(ctx, prevStart, start)
	if err != nil {
		return AcquisitionMetrics{}, fmt.Errorf("count prior-period contacts: %w", err)
	}
	byChannel, err := s.source.ContactCountBySource(ctx, start, end)
	if err != nil {
		return AcquisitionMetrics{}, fmt.Errorf("group contacts by source: %w", err)
	}
	campaigns, err := s.source.CampaignCount(ctx, start, end)
	if err != nil {
		return AcquisitionMetrics{}, fmt.Errorf("count campaigns: %w", err)
	}
	sent, err := s.source.EmailEventCount(ctx, EmailEventSent, start, end)
	if err != nil {
		return AcquisitionMetrics{}, fmt.Errorf("count sent emails: %w", err)
	}

	return AcquisitionMetrics{
		NewContacts:    newContacts,
		PrevContacts:   prevContacts,
		GrowthRate:     round1(growthRate(float64(newContacts), float64(prevContacts))),
		ByChannel:      byChannel,
		TotalCampaigns: campaigns,
		EmailsSent:     sent,
	}, nil
}

func (s *Service) conversionMetrics(ctx context.Context, start, end time.Time) (ConversionMetrics, error) {
	sent, err := s.source.EmailEventCount(ctx, EmailEventSent, start, end)
	if err != nil {
		return ConversionMetrics{}, fmt.Errorf("count sent emails: %w", err)
	}
	opened, err := s.source.EmailEventCount(ctx, EmailEventOpened, start, end)
	if err != nil {
		return ConversionMetrics{}, fmt.Errorf("count opened emails: %w", err)
	}
	clicked, err := s.source.EmailEventCount(ctx, EmailEventClicked, start, end)
	if err != nil {
		return ConversionMetrics{}, fmt.Errorf("count clicked emails: %w", err)
	}
	subscribers, err := s.source.NewSubscriberCount(ctx, start, end)
	if err != nil {
		return ConversionMetrics{}, fmt.Errorf("count new subscribers: %w", err)
	}
	conversions, err := s.source.ConvertingContactCount(ctx, start, end)
	if err != nil {
		return ConversionMetrics{}, fmt.Errorf("count converting contacts: %w", err)
	}
	leads, err := s.source.NewContactCount(ctx, start, end)
	if err != nil {
		return ConversionMetrics{}, fmt.Errorf("count new contacts: %w", err)
	}

	return ConversionMetrics{
		EmailsSent:     sent,
		EmailsOpened:   opened,
		EmailsClicked:  clicked,
		OpenRate:       round1(ratio(opened, sent)),
		ClickRate:      round1(ratio(clicked, sent)),
		CTR:            round1(ratio(clicked, opened)),
		Subscribers:    subscribers,
		Conversions:    conversions,
		ConversionRate: round2(ratio(conversions, leads)),
	}, nil
}

func (s *Service) revenueMetrics(ctx context.Context, start, end, prevStart time.Time) (RevenueMetrics, error) {
	deals, err := s.source.WonDealStats(ctx, start, end)
	if err != nil {
		return RevenueMetrics{}, fmt.Errorf("load won deals: %w", err)
	}
	prevDeals, err := s.source.WonDealStats(ctx, prevStart, start)
	if err != nil {
		return RevenueMetrics{}, fmt.Errorf("load prior-period deals: %w", err)
	}
	byChannel, err := s.source.RevenueByMedium(ctx, start, end)
	if err != nil {
		return RevenueMetrics{}, fmt.Errorf("group revenue by medium: %w", err)
	}

	return RevenueMetrics{
		TotalRevenue: round2(deals.Revenue),
		PrevRevenue:  round2(prevDeals.Revenue),
		GrowthRate:   round1(growthRate(deals.Revenue, prevDeals.Revenue)),
		DealCount:    deals.Count,
		AOV:          round2(deals.Revenue / float64(max(deals.Count, 1))),
		ByChannel:    byChannel,
	}, nil
}

func (s *Service) cacMetrics(ctx context.Context, start, end time.Time) (CACMetrics, error) {
	newCustomers, err := s.source.ConvertingContactCount(ctx, start, end)
	if err != nil {
		return CACMetrics{}, fmt.Errorf("count new customers: %w", err)
	}
	spend, err := s.source.MarketingSpend(ctx, start, end)
	if err != nil {
		return CACMetrics{}, fmt.Errorf("load marketing spend: %w", err)
	}
	deals, err := s.source.WonDealStats(ctx, start, end)
	if err != nil {
		return CACMetrics{}, fmt.Errorf("load won deals: %w", err)
	}

	cac := spend / float64(max(newCustomers, 1))
	avgDeal := deals.Revenue / float64(max(deals.Count, 1))
	ltvEstimate := avgDeal * ltvMultiplier

	out := CACMetrics{
		CAC:          round2(cac),
		NewCustomers: newCustomers,
		TotalSpend:   round2(spend),
		LTV:          round2(ltvEstimate),
	}
	if cac > 0 {
		out.LTVCACRatio = round1(ltvEstimate / cac)
	}
	if avgDeal > 0 {
		out.CACvsAOV = round2(cac / avgDeal)
	}
	return out, nil
}

func (s *Service) retentionMetrics(ctx context.Context, start, end time.Time) (RetentionMetrics, error) {
	total, err := s.source.ActiveContactCount(ctx)
	if err != nil {
		return RetentionMetrics{}, fmt.Errorf("count active contacts: %w", err)
	}
	subscribed, err := s.source.SubscribedContactCount(ctx)
	if err != nil {
		return RetentionMetrics{}, fmt.Errorf("count subscribed contacts: %w", err)
	}
	unsubscribed, err := s.source.UnsubscribeCount(ctx, start, end)
	if err != nil {
		return RetentionMetrics{}, fmt.Errorf("count unsubscribes: %w", err)
	}
	repeat, err := s.source.RepeatCustomerCount(ctx, start, end)
	if err != nil {
		return RetentionMetrics{}, fmt.Errorf("count repeat customers: %w", err)
	}
	sent, err := s.source.EmailEventCount(ctx, EmailEventSent, start, end)
	if err != nil {
		return RetentionMetrics{}, fmt.Errorf("count sent emails: %w", err)
	}
	opened, err := s.source.EmailEventCount(ctx, EmailEventOpened, start, end)
	if err != nil {
		return RetentionMetrics{}, fmt.Errorf("count opened emails: %w", err)
	}
	clicked, err := s.source.EmailEventCount(ctx, EmailEventClicked, start, end)
	if err != nil {
		return RetentionMetrics{}, fmt.Errorf("count clicked emails: %w", err)
	}

	return RetentionMetrics{
		TotalContacts:      total,
		Subscribed:         subscribed,
		Unsubscribed:       unsubscribed,
		ChurnRate:          round2(ratio(unsubscribed, total)),
		RepeatPurchaseRate: round1(ratio(repeat, total)),
		EmailOpenRate:      round1(ratio(opened, sent)),
		EmailClickRate:     round1(ratio(clicked, sent)),
	}, nil
}

func (s *Service) engagementMetrics(ctx context.Context, start, end time.Time) (EngagementMetrics, error) {
	social, err := s.source.SocialTotals(ctx, start, end)
	if err != nil {
		return EngagementMetrics{}, fmt.Errorf("load social totals: %w", err)
	}
	active, err := s.source.ActiveContactCount(ctx)
	if err != nil {
		return EngagementMetrics{}, fmt.Errorf("count active contacts: %w", err)
	}

	interactions := social.Likes + social.Shares + social.Comments
	return EngagementMetrics{
		SocialPosts:    social.Posts,
		TotalLikes:     social.Likes,
		TotalShares:    social.Shares,
		TotalComments:  social.Comments,
		TotalReach:     social.Reach,
		EngagementRate: round2(ratio(interactions, social.Reach)),
		ActiveContacts: active,
	}, nil
}

func (s *Service) attributionMetrics(ctx context.Context, days int) (AttributionMetrics, error) {
	first, err := s.attribution.ChannelAttribution(ctx, attribution.FirstTouch, days)
	if err != nil {
		return AttributionMetrics{}, fmt.Errorf("first-touch attribution: %w", err)
	}
	last, err := s.attribution.ChannelAttribution(ctx, attribution.LastTouch, days)
	if err != nil {
		return AttributionMetrics{}, fmt.Errorf("last-touch attribution: %w", err)
	}

	out := AttributionMetrics{
		FirstTouch:          make(map[string]float64, len(first)),
		LastTouch:           make(map[string]float64, len(last)),
		TopConvertingSource: "N/A",
	}
	for channel, stat := range first {
		out.FirstTouch[channel] = round2(stat.Revenue)
	}
	topRevenue := math.Inf(-1)
	for _, channel := range sortedKeys(last) {
		stat := last[channel]
		out.LastTouch[channel] = round2(stat.Revenue)
		if stat.Revenue > topRevenue {
			topRevenue = stat.Revenue
			out.TopConvertingSource = channel
		}
	}
	return out, nil
}

func (s *Service) segmentMetrics(ctx context.Context) (SegmentMetrics, error) {
	summary, err := s.segments.SegmentSummary(ctx)
	if err != nil {
		return SegmentMetrics{}, fmt.Errorf("segment summary: %w", err)
	}

	out := SegmentMetrics{
		Segments:      make(map[string]SegmentStat, len(summary)),
		TotalSegments: len(summary),
		TopSegment:    "N/A",
	}
	topSize := -1
	for _, name := range sortedKeys(summary) {
		stats := summary[name]
		out.Segments[name] = SegmentStat{Size: stats.Count, Revenue: round2(stats.TotalRevenue)}
		if stats.Count > topSize {
			topSize = stats.Count
			out.TopSegment = name
		}
	}
	return out, nil
}

func (s *Service) campaignMetrics(ctx context.Context, start, end time.Time) (CampaignMetrics, error) {
	count, err := s.source.CampaignCount(ctx, start, end)
	if err != nil {
		return CampaignMetrics{}, fmt.Errorf("count campaigns: %w", err)
	}
	recent, err := s.source.RecentCampaigns(ctx, start, end, campaignReportLimit)
	if err != nil {
		return CampaignMetrics{}, fmt.Errorf("load recent campaigns: %w", err)
	}

	out := CampaignMetrics{
		EmailCampaigns:  count,
		Campaigns:       make([]CampaignReport, 0, len(recent)),
		BestPerforming:  "N/A",
		WorstPerforming: "N/A",
	}
	bestRate, worstRate := math.Inf(-1), math.Inf(1)
	for _, c := range recent {
		report := CampaignReport{
			ID:        c.ID,
			Name:      c.Name,
			Status:    c.Status,
			Sent:      c.Sent,
			OpenRate:  round1(ratio(c.Opened, c.Sent)),
			ClickRate: round1(ratio(c.Clicked, c.Sent)),
		}
		out.Campaigns = append(out.Campaigns, report)
		if report.OpenRate > bestRate {
			bestRate = report.OpenRate
			out.BestPerforming = c.Name
		}
		if report.OpenRate < worstRate {
			worstRate = report.OpenRate
			out.WorstPerforming = c.Name
		}
	}
	return out, nil
}

func (s *Service) complianceMetrics(ctx context.Context, start, end time.Time) (ComplianceMetrics, error) {
	total, err := s.source.TotalContactCount(ctx)
	if err != nil {
		return ComplianceMetrics{}, fmt.Errorf("count contacts: %w", err)
	}
	subscribed, err := s.source.SubscribedContactCount(ctx)
	if err != nil {
		return ComplianceMetrics{}, fmt.Errorf("count subscribed contacts: %w", err)
	}
	unsubscribed, err := s.source.UnsubscribeCount(ctx, start, end)
	if err != nil {
		return ComplianceMetrics{}, fmt.Errorf("count unsubscribes: %w", err)
	}
	bounced, err := s.source.EmailEventCount(ctx, EmailEventBounced, start, end)
	if err != nil {
		return ComplianceMetrics{}, fmt.Errorf("count bounced emails: %w", err)
	}
	sent, err := s.source.EmailEventCount(ctx, EmailEventSent, start, end)
	if err != nil {
		return ComplianceMetrics{}, fmt.Errorf("count sent emails: %w", err)
	}
	optInSources, err := s.source.ConsentBySource(ctx)
	if err != nil {
		return ComplianceMetrics{}, fmt.Errorf("group consent by source: %w", err)
	}

	bounceRate := ratio(bounced, sent)
	return ComplianceMetrics{
		TotalContacts: total,
		Consented:     subscribed,
		ConsentRate:   round1(ratio(subscribed, total)),
		OptOutRate:    round2(ratio(unsubscribed, subscribed+unsubscribed)),
		Unsubscribes:  unsubscribed,
		BounceRate:    round2(bounceRate),
		DeliveryRate:  round2(100 - bounceRate),
		OptInSources:  optInSources,
	}, nil
}

// growthRate is the period-over-period change in percent. A zero prior
// period reports zero growth rather than infinity.
func growthRate(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

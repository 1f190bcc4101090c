package dashboard

import "math"

// Metrics is the combined dashboard payload. Every category is present even
// when its data source failed; failed categories carry their zero value.
type Metrics struct {
	Acquisition AcquisitionMetrics `json:"acquisition"`
	Conversion  ConversionMetrics  `json:"conversion"`
	Revenue     RevenueMetrics     `json:"revenue"`
	CAC         CACMetrics         `json:"cac"`
	Retention   RetentionMetrics   `json:"retention"`
	Engagement  EngagementMetrics  `json:"engagement"`
	Attribution AttributionMetrics `json:"attribution"`
	Segments    SegmentMetrics     `json:"segments"`
	Campaigns   CampaignMetrics    `json:"campaigns"`
	Compliance  ComplianceMetrics  `json:"compliance"`
	DateRange   DateRange          `json:"date_range"`
}

// DateRange echoes the window the payload was computed over.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// AcquisitionMetrics covers how contacts arrive.
type AcquisitionMetrics struct {
	NewContacts    int            `json:"new_contacts"`
	PrevContacts   int            `json:"prev_contacts"`
	GrowthRate     float64        `json:"growth_rate"`
	ByChannel      map[string]int `json:"by_channel"`
	TotalCampaigns int            `json:"total_campaigns"`
	EmailsSent     int            `json:"emails_sent"`
}

// ConversionMetrics covers the email-to-customer funnel.
type ConversionMetrics struct {
	EmailsSent     int     `json:"emails_sent"`
	EmailsOpened   int     `json:"emails_opened"`
	EmailsClicked  int     `json:"emails_clicked"`
	OpenRate       float64 `json:"open_rate"`
	ClickRate      float64 `json:"click_rate"`
	CTR            float64 `json:"ctr"`
	Subscribers    int     `json:"subscribers"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// RevenueMetrics rolls up won-deal revenue with period-over-period growth.
type RevenueMetrics struct {
	TotalRevenue float64            `json:"total_revenue"`
	PrevRevenue  float64            `json:"prev_revenue"`
	GrowthRate   float64            `json:"growth_rate"`
	DealCount    int                `json:"deal_count"`
	AOV          float64            `json:"aov"`
	ByChannel    map[string]float64 `json:"by_channel"`
}

// CACMetrics relates acquisition spend to customer value.
type CACMetrics struct {
	CAC          float64 `json:"cac"`
	NewCustomers int     `json:"new_customers"`
	TotalSpend   float64 `json:"total_spend"`
	LTV          float64 `json:"ltv"`
	LTVCACRatio  float64 `json:"ltv_cac_ratio"`
	CACvsAOV     float64 `json:"cac_vs_aov"`
}

// RetentionMetrics covers churn and repeat behavior.
type RetentionMetrics struct {
	TotalContacts      int     `json:"total_contacts"`
	Subscribed         int     `json:"subscribed"`
	Unsubscribed       int     `json:"unsubscribed"`
	ChurnRate          float64 `json:"churn_rate"`
	RepeatPurchaseRate float64 `json:"repeat_purchase_rate"`
	EmailOpenRate      float64 `json:"email_open_rate"`
	EmailClickRate     float64 `json:"email_click_rate"`
}

// EngagementMetrics covers social interaction quality.
type EngagementMetrics struct {
	SocialPosts    int     `json:"social_posts"`
	TotalLikes     int     `json:"total_likes"`
	TotalShares    int     `json:"total_shares"`
	TotalComments  int     `json:"total_comments"`
	TotalReach     int     `json:"total_reach"`
	EngagementRate float64 `json:"engagement_rate"`
	ActiveContacts int     `json:"active_contacts"`
}

// AttributionMetrics compares credited revenue per channel under the two
// single-touch models.
type AttributionMetrics struct {
	FirstTouch          map[string]float64 `json:"first_touch"`
	LastTouch           map[string]float64 `json:"last_touch"`
	TopConvertingSource string             `json:"top_converting_source"`
}

// SegmentStat is one RFM segment's share of the customer base.
type SegmentStat struct {
	Size    int     `json:"size"`
	Revenue float64 `json:"revenue"`
}

// SegmentMetrics summarizes the RFM segmentation.
type SegmentMetrics struct {
	Segments      map[string]SegmentStat `json:"segments"`
	TotalSegments int                    `json:"total_segments"`
	TopSegment    string                 `json:"top_segment"`
}

// CampaignReport is one campaign's computed delivery rates.
type CampaignReport struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Sent      int     `json:"sent"`
	OpenRate  float64 `json:"open_rate"`
	ClickRate float64 `json:"click_rate"`
}

// CampaignMetrics covers recent campaign effectiveness.
type CampaignMetrics struct {
	EmailCampaigns  int              `json:"email_campaigns"`
	Campaigns       []CampaignReport `json:"campaigns"`
	BestPerforming  string           `json:"best_performing"`
	WorstPerforming string           `json:"worst_performing"`
}

// ComplianceMetrics covers consent and deliverability trust signals.
type ComplianceMetrics struct {
	TotalContacts int            `json:"total_contacts"`
	Consented     int            `json:"consented"`
	ConsentRate   float64        `json:"consent_rate"`
	OptOutRate    float64        `json:"opt_out_rate"`
	Unsubscribes  int            `json:"unsubscribes"`
	BounceRate    float64        `json:"bounce_rate"`
	DeliveryRate  float64        `json:"delivery_rate"`
	OptInSources  map[string]int `json:"opt_in_sources"`
}

// ratio returns num/den*100 with the denominator clamped to at least one, so
// empty windows produce zero instead of dividing by zero.
func ratio(num, den int) float64 {
	return float64(num) / float64(max(den, 1)) * 100
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

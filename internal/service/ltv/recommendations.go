package ltv

// Recommendation is the suggested marketing play for an RFM segment.
type Recommendation struct {
	Strategy string   `json:"strategy"`
	Actions  []string `json:"actions"`
	Channels []string `json:"channels"`
	Priority string   `json:"priority"`
}

var segmentRecommendations = map[string]Recommendation{
	SegmentChampions: {
		Strategy: "Reward and retain",
		Actions: []string{
			"Offer exclusive early access to new products",
			"Create VIP loyalty program benefits",
			"Ask for referrals and reviews",
			"Send personalized thank you messages",
		},
		Channels: []string{"Email", "SMS", "Direct Mail"},
		Priority: "High",
	},
	SegmentLoyalCustomers: {
		Strategy: "Upsell and cross-sell",
		Actions: []string{
			"Recommend complementary products",
			"Offer bundle deals",
			"Invite to exclusive events",
			"Provide loyalty rewards",
		},
		Channels: []string{"Email", "Retargeting Ads"},
		Priority: "High",
	},
	SegmentNewCustomers: {
		Strategy: "Build relationship",
		Actions: []string{
			"Send welcome series",
			"Provide onboarding education",
			"Offer second purchase incentive",
			"Request feedback on first purchase",
		},
		Channels: []string{"Email", "SMS"},
		Priority: "Medium",
	},
	SegmentAtRisk: {
		Strategy: "Re-engage immediately",
		Actions: []string{
			"Send win-back campaign",
			"Offer special discount or incentive",
			"Request feedback on why they left",
			"Highlight new products/features",
		},
		Channels: []string{"Email", "Retargeting Ads", "SMS"},
		Priority: "High",
	},
	SegmentCantLoseThem: {
		Strategy: "Win them back",
		Actions: []string{
			"Offer significant discount or deal",
			"Personalized outreach from sales team",
			"Highlight improvements made",
			"Provide VIP treatment to return",
		},
		Channels: []string{"Email", "Phone", "Direct Mail"},
		Priority: "Critical",
	},
	SegmentPromising: {
		Strategy: "Convert to loyal",
		Actions: []string{
			"Encourage repeat purchase",
			"Offer loyalty program enrollment",
			"Provide educational content",
			"Send targeted product recommendations",
		},
		Channels: []string{"Email", "Social Media"},
		Priority: "Medium",
	},
	SegmentLost: {
		Strategy: "Final attempt or let go",
		Actions: []string{
			"Send last chance offer",
			"Survey why they churned",
			"Remove from frequent campaigns",
			"Consider sunset campaign",
		},
		Channels: []string{"Email"},
		Priority: "Low",
	},
	SegmentPotentialLoyalists: {
		Strategy: "Nurture relationship",
		Actions: []string{
			"Encourage more frequent purchases",
			"Offer loyalty rewards",
			"Send relevant content",
			"Provide excellent customer service",
		},
		Channels: []string{"Email", "Social Media"},
		Priority: "Medium",
	},
	SegmentNeedAttention: {
		Strategy: "Re-activate",
		Actions: []string{
			"Send re-engagement campaign",
			"Offer time-limited incentive",
			"Showcase popular products",
			"Remind of account benefits",
		},
		Channels: []string{"Email", "Retargeting Ads"},
		Priority: "Medium",
	},
}

// SegmentRecommendations returns the marketing play for a segment. Unknown
// segment names get a generic evaluate-individually fallback rather than an
// error.
func SegmentRecommendations(segment string) Recommendation {
	if rec, ok := segmentRecommendations[segment]; ok {
		return rec
	}
	return Recommendation{
		Strategy: "Evaluate individually",
		Actions:  []string{"Review customer history", "Create custom plan"},
		Channels: []string{"Email"},
		Priority: "Low",
	}
}

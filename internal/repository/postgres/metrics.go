package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/luxmetrics/insights/internal/service/dashboard"
)

// MetricsRepo provides the raw counts and sums the dashboard aggregator
// turns into ratios.
type MetricsRepo struct{ db *sql.DB }

// NewMetricsRepo creates a Postgres-backed metrics source.
func NewMetricsRepo(db *sql.DB) *MetricsRepo { return &MetricsRepo{db: db} }

func (r *MetricsRepo) count(ctx context.Context, label, q string, args ...interface{}) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", label, err)
	}
	return n, nil
}

func (r *MetricsRepo) NewContactCount(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx, "count new contacts", `
		SELECT COUNT(*) FROM contacts
		WHERE created_at >= $1 AND created_at < $2
	`, start, end)
}

func (r *MetricsRepo) ContactCountBySource(ctx context.Context, start, end time.Time) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(source,''), 'direct'), COUNT(*)
		FROM contacts
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("group contacts by source: %w", err)
	}
	defer rows.Close()
	return scanStringCounts(rows)
}

func (r *MetricsRepo) NewSubscriberCount(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx, "count new subscribers", `
		SELECT COUNT(*) FROM contacts
		WHERE created_at >= $1 AND created_at < $2 AND is_subscribed
	`, start, end)
}

func (r *MetricsRepo) TotalContactCount(ctx context.Context) (int, error) {
	return r.count(ctx, "count contacts", `SELECT COUNT(*) FROM contacts`)
}

func (r *MetricsRepo) ActiveContactCount(ctx context.Context) (int, error) {
	return r.count(ctx, "count active contacts", `
		SELECT COUNT(*) FROM contacts WHERE is_active
	`)
}

func (r *MetricsRepo) SubscribedContactCount(ctx context.Context) (int, error) {
	return r.count(ctx, "count subscribed contacts", `
		SELECT COUNT(*) FROM contacts WHERE is_subscribed
	`)
}

func (r *MetricsRepo) UnsubscribeCount(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx, "count unsubscribes", `
		SELECT COUNT(*) FROM contacts
		WHERE unsubscribed_at IS NOT NULL
		  AND unsubscribed_at >= $1 AND unsubscribed_at < $2
	`, start, end)
}

func (r *MetricsRepo) ConsentBySource(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(subscription_source,''), 'unknown'), COUNT(*)
		FROM contacts
		WHERE is_subscribed
		GROUP BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("group consent by source: %w", err)
	}
	defer rows.Close()
	return scanStringCounts(rows)
}

func (r *MetricsRepo) EmailEventCount(ctx context.Context, event string, start, end time.Time) (int, error) {
	return r.count(ctx, "count email events", `
		SELECT COUNT(*) FROM email_events
		WHERE event_type = $1 AND occurred_at >= $2 AND occurred_at < $3
	`, event, start, end)
}

func (r *MetricsRepo) DailyCounts(ctx context.Context, start, end time.Time) ([]dashboard.DayCounts, error) {
	byDay := make(map[string]*dashboard.DayCounts)
	day := func(t time.Time) *dashboard.DayCounts {
		key := t.UTC().Format("2006-01-02")
		c, ok := byDay[key]
		if !ok {
			c = &dashboard.DayCounts{Date: t.UTC()}
			byDay[key] = c
		}
		return c
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DATE(created_at), COUNT(*)
		FROM contacts
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily contact counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d time.Time
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, fmt.Errorf("scan daily contacts: %w", err)
		}
		day(d).NewContacts = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	eventRows, err := r.db.QueryContext(ctx, `
		SELECT DATE(occurred_at), event_type, COUNT(*)
		FROM email_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		  AND event_type IN ('sent', 'opened')
		GROUP BY 1, 2
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily email counts: %w", err)
	}
	defer eventRows.Close()
	for eventRows.Next() {
		var d time.Time
		var event string
		var n int
		if err := eventRows.Scan(&d, &event, &n); err != nil {
			return nil, fmt.Errorf("scan daily email events: %w", err)
		}
		switch event {
		case dashboard.EmailEventSent:
			day(d).EmailsSent = n
		case dashboard.EmailEventOpened:
			day(d).EmailsOpen = n
		}
	}
	if err := eventRows.Err(); err != nil {
		return nil, err
	}

	out := make([]dashboard.DayCounts, 0, len(byDay))
	for _, c := range byDay {
		out = append(out, *c)
	}
	return out, nil
}

func (r *MetricsRepo) ConvertingContactCount(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx, "count converting contacts", `
		SELECT COUNT(DISTINCT contact_id) FROM conversion_events
		WHERE occurred_at >= $1 AND occurred_at < $2
	`, start, end)
}

func (r *MetricsRepo) RepeatCustomerCount(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx, "count repeat customers", `
		SELECT COUNT(*) FROM (
			SELECT contact_id FROM conversion_events
			WHERE occurred_at >= $1 AND occurred_at < $2
			GROUP BY contact_id
			HAVING COUNT(*) > 1
		) repeats
	`, start, end)
}

func (r *MetricsRepo) WonDealStats(ctx context.Context, start, end time.Time) (dashboard.DealStats, error) {
	var out dashboard.DealStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(value), 0)
		FROM deals
		WHERE stage = 'won' AND created_at >= $1 AND created_at < $2
	`, start, end).Scan(&out.Count, &out.Revenue)
	if err != nil {
		return dashboard.DealStats{}, fmt.Errorf("won deal stats: %w", err)
	}
	return out, nil
}

func (r *MetricsRepo) RevenueByMedium(ctx context.Context, start, end time.Time) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(utm_medium,''), 'direct'), SUM(event_value)
		FROM conversion_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY 1
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("group revenue by medium: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var medium string
		var revenue float64
		if err := rows.Scan(&medium, &revenue); err != nil {
			return nil, fmt.Errorf("scan medium revenue: %w", err)
		}
		out[medium] = revenue
	}
	return out, rows.Err()
}

func (r *MetricsRepo) MarketingSpend(ctx context.Context, start, end time.Time) (float64, error) {
	var spend float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM ad_spend
		WHERE spent_at >= $1 AND spent_at < $2
	`, start, end).Scan(&spend)
	if err != nil {
		return 0, fmt.Errorf("sum marketing spend: %w", err)
	}
	return spend, nil
}

func (r *MetricsRepo) SocialTotals(ctx context.Context, start, end time.Time) (dashboard.SocialTotals, error) {
	var out dashboard.SocialTotals
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(likes), 0), COALESCE(SUM(shares), 0),
		       COALESCE(SUM(comments), 0), COALESCE(SUM(reach), 0)
		FROM social_posts
		WHERE published_at >= $1 AND published_at < $2
	`, start, end).Scan(&out.Posts, &out.Likes, &out.Shares, &out.Comments, &out.Reach)
	if err != nil {
		return dashboard.SocialTotals{}, fmt.Errorf("social totals: %w", err)
	}
	return out, nil
}

func (r *MetricsRepo) CampaignCount(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx, "count campaigns", `
		SELECT COUNT(*) FROM campaigns
		WHERE created_at >= $1 AND created_at < $2
	`, start, end)
}

func (r *MetricsRepo) RecentCampaigns(ctx context.Context, start, end time.Time, limit int) ([]dashboard.CampaignStat, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.status,
		       COUNT(*) FILTER (WHERE e.event_type = 'sent'),
		       COUNT(*) FILTER (WHERE e.event_type = 'opened'),
		       COUNT(*) FILTER (WHERE e.event_type = 'clicked')
		FROM campaigns c
		LEFT JOIN email_events e ON e.campaign_id = c.id
		WHERE c.created_at >= $1 AND c.created_at < $2
		GROUP BY c.id, c.name, c.status, c.created_at
		ORDER BY c.created_at DESC
		LIMIT $3
	`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent campaigns: %w", err)
	}
	defer rows.Close()

	var out []dashboard.CampaignStat
	for rows.Next() {
		var c dashboard.CampaignStat
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.Sent, &c.Opened, &c.Clicked); err != nil {
			return nil, fmt.Errorf("scan campaign stat: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanStringCounts(rows *sql.Rows) (map[string]int, error) {
	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan grouped count: %w", err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

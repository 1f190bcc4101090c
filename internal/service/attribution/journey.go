package attribution

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// JourneyStep is one touchpoint in a contact's journey, enriched with its
// position for display.
type JourneyStep struct {
	Position  int    `json:"position"`
	Type      string `json:"type"`
	Source    string `json:"source"`
	Medium    string `json:"medium"`
	Campaign  string `json:"campaign"`
	Timestamp string `json:"timestamp"`
	PageURL   string `json:"page_url"`
	Referrer  string `json:"referrer"`
}

// CustomerJourney returns the contact's full ordered touchpoint history.
func (s *Service) CustomerJourney(ctx context.Context, contactID string) ([]JourneyStep, error) {
	touches, err := s.events.TouchpointsForContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("load touchpoints for %s: %w", contactID, err)
	}
	sortTouches(touches)

	journey := make([]JourneyStep, 0, len(touches))
	for i, t := range touches {
		journey = append(journey, JourneyStep{
			Position:  i + 1,
			Type:      t.Type,
			Source:    t.UTMSource,
			Medium:    t.UTMMedium,
			Campaign:  t.UTMCampaign,
			Timestamp: t.OccurredAt.UTC().Format(time.RFC3339),
			PageURL:   t.PageURL,
			Referrer:  t.ReferrerURL,
		})
	}
	return journey, nil
}

// ConversionPath is a recurring journey shape across converting contacts.
type ConversionPath struct {
	Path    string   `json:"path"`
	Steps   []string `json:"steps"`
	Count   int      `json:"count"`
	Revenue float64  `json:"revenue"`
	AvgDays float64  `json:"avg_days"`
}

// TopConversionPaths groups the journeys behind every conversion in the
// trailing window by their channel signature and returns the most common
// ones, busiest first.
func (s *Service) TopConversionPaths(ctx context.Context, limit, days int) ([]ConversionPath, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	conversions, err := s.events.ConversionsInWindow(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load conversions: %w", err)
	}

	patterns := make(map[string]*ConversionPath)

	for _, conv := range conversions {
		touches, err := s.events.TouchpointsForContact(ctx, conv.ContactID)
		if err != nil {
			return nil, fmt.Errorf("load touchpoints for %s: %w", conv.ContactID, err)
		}
		sortTouches(touches)

		steps := make([]string, 0, len(touches))
		for _, t := range touches {
			steps = append(steps, t.Channel())
		}
		sig := strings.Join(steps, " → ")

		p, ok := patterns[sig]
		if !ok {
			p = &ConversionPath{Path: sig, Steps: steps}
			patterns[sig] = p
		}
		p.Count++
		p.Revenue += conv.EventValue

		// Running average of journey length in days.
		if len(touches) > 0 {
			journeyDays := wholeDays(touches[len(touches)-1].OccurredAt.Sub(touches[0].OccurredAt))
			p.AvgDays = (p.AvgDays*float64(p.Count-1) + journeyDays) / float64(p.Count)
		}
	}

	paths := make([]ConversionPath, 0, len(patterns))
	for _, p := range patterns {
		paths = append(paths, *p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Count == paths[j].Count {
			return paths[i].Path < paths[j].Path
		}
		return paths[i].Count > paths[j].Count
	})

	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	return paths, nil
}

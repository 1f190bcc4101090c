package attribution

import (
	"context"
	"fmt"
	"time"
)

// ChannelStat aggregates attributed performance for one marketing channel.
type ChannelStat struct {
	Revenue     float64 `json:"revenue"`
	Conversions int     `json:"conversions"`
	Touches     int     `json:"touches"`
}

// ChannelAttribution runs the engine over every conversion in the trailing
// window and rolls credited revenue up by touchpoint type.
//
// Revenue and touch counts are multi-touch attributed; conversion counts are
// keyed by the conversion's own utm_medium and only recorded for channels
// that already earned credit. The asymmetry matches the dashboard this feeds:
// revenue answers "which channels influenced the sale", counts answer "which
// channel closed it".
func (s *Service) ChannelAttribution(ctx context.Context, model Model, days int) (map[string]*ChannelStat, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	conversions, err := s.events.ConversionsInWindow(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load conversions since %s: %w", start.Format(time.RFC3339), err)
	}

	channels := make(map[string]*ChannelStat)

	for _, conv := range conversions {
		result, err := s.Calculate(ctx, conv.ContactID, conv.EventValue, model)
		if err != nil {
			return nil, err
		}
		for _, credit := range result {
			channel := credit.Type
			if channel == "" {
				channel = "direct"
			}
			stat, ok := channels[channel]
			if !ok {
				stat = &ChannelStat{}
				channels[channel] = stat
			}
			stat.Revenue += credit.Credit
			stat.Touches++
		}
	}

	for _, conv := range conversions {
		if stat, ok := channels[conv.Medium()]; ok {
			stat.Conversions++
		}
	}

	return channels, nil
}

// CompareModels calculates attribution for one conversion under every
// standard model, for side-by-side display.
func (s *Service) CompareModels(ctx context.Context, contactID string, value float64) (map[Model]Result, error) {
	models := []Model{FirstTouch, LastTouch, Linear, TimeDecay}

	comparison := make(map[Model]Result, len(models))
	for _, model := range models {
		result, err := s.Calculate(ctx, contactID, value, model)
		if err != nil {
			return nil, err
		}
		comparison[model] = result
	}
	return comparison, nil
}

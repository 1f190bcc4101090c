package attribution

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/luxmetrics/insights/internal/domain"
)

// Model selects how conversion credit is distributed across touchpoints.
type Model string

const (
	FirstTouch    Model = "first_touch"
	LastTouch     Model = "last_touch"
	Linear        Model = "linear"
	TimeDecay     Model = "time_decay"
	PositionBased Model = "position_based"
)

// DefaultHalfLifeDays is the time-decay half-life used when none is
// configured.
const DefaultHalfLifeDays = 7.0

// TouchCredit is the share of a conversion assigned to one touchpoint.
type TouchCredit struct {
	Credit      float64 `json:"credit"`
	Percentage  float64 `json:"percentage"`
	Type        string  `json:"touchpoint_type"`
	UTMSource   string  `json:"utm_source"`
	UTMMedium   string  `json:"utm_medium"`
	UTMCampaign string  `json:"utm_campaign"`
}

// Result maps touchpoint ID to its credit share. For a non-empty touchpoint
// set, credits sum to the conversion value and percentages sum to 100 within
// floating-point tolerance.
type Result map[string]TouchCredit

// Service computes attribution over an event source.
type Service struct {
	events       EventSource
	halfLifeDays float64
}

// NewService creates an attribution service. A halfLifeDays of zero or less
// falls back to DefaultHalfLifeDays.
func NewService(events EventSource, halfLifeDays float64) *Service {
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	return &Service{events: events, halfLifeDays: halfLifeDays}
}

// Calculate distributes value across the contact's touchpoints under the
// given model. A contact with no touchpoints yields an empty Result. Unknown
// model names fall back to last-touch; this mirrors long-standing dashboard
// behavior and is deliberately not an error.
func (s *Service) Calculate(ctx context.Context, contactID string, value float64, model Model) (Result, error) {
	touches, err := s.events.TouchpointsForContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("load touchpoints for %s: %w", contactID, err)
	}
	return s.distribute(touches, value, model), nil
}

func (s *Service) distribute(touches []domain.Touchpoint, value float64, model Model) Result {
	if len(touches) == 0 {
		return Result{}
	}
	sortTouches(touches)

	switch model {
	case FirstTouch:
		return singleTouch(touches[0], value)
	case Linear:
		return linear(touches, value)
	case TimeDecay:
		return timeDecay(touches, value, s.halfLifeDays)
	case PositionBased:
		return positionBased(touches, value)
	default:
		return singleTouch(touches[len(touches)-1], value)
	}
}

// sortTouches re-asserts the store's ordering: ascending occurred_at, ties
// broken by id so results are deterministic regardless of source.
func sortTouches(touches []domain.Touchpoint) {
	sort.SliceStable(touches, func(i, j int) bool {
		if touches[i].OccurredAt.Equal(touches[j].OccurredAt) {
			return touches[i].ID < touches[j].ID
		}
		return touches[i].OccurredAt.Before(touches[j].OccurredAt)
	})
}

func creditFor(t domain.Touchpoint, credit, pct float64) TouchCredit {
	return TouchCredit{
		Credit:      credit,
		Percentage:  pct,
		Type:        t.Type,
		UTMSource:   t.UTMSource,
		UTMMedium:   t.UTMMedium,
		UTMCampaign: t.UTMCampaign,
	}
}

func singleTouch(t domain.Touchpoint, value float64) Result {
	return Result{t.ID: creditFor(t, value, 100)}
}

func linear(touches []domain.Touchpoint, value float64) Result {
	n := float64(len(touches))
	out := make(Result, len(touches))
	for _, t := range touches {
		out[t.ID] = creditFor(t, value/n, 100/n)
	}
	return out
}

// timeDecay weights each touch by 2^(-days/halfLife) where days is the whole
// number of days between the touch and the LAST touch. The anchor is the
// final touchpoint, not the conversion timestamp.
func timeDecay(touches []domain.Touchpoint, value, halfLifeDays float64) Result {
	anchor := touches[len(touches)-1].OccurredAt

	weights := make([]float64, len(touches))
	var total float64
	for i, t := range touches {
		days := wholeDays(anchor.Sub(t.OccurredAt))
		weights[i] = math.Pow(2, -days/halfLifeDays)
		total += weights[i]
	}

	out := make(Result, len(touches))
	for i, t := range touches {
		share := weights[i] / total
		out[t.ID] = creditFor(t, share*value, share*100)
	}
	return out
}

// positionBased is U-shaped: 40% first, 40% last, 20% split among the middle.
// Two touches split 50/50; one touch takes everything.
func positionBased(touches []domain.Touchpoint, value float64) Result {
	const firstWeight, lastWeight = 0.4, 0.4

	switch len(touches) {
	case 1:
		return singleTouch(touches[0], value)
	case 2:
		return Result{
			touches[0].ID: creditFor(touches[0], value*0.5, 50),
			touches[1].ID: creditFor(touches[1], value*0.5, 50),
		}
	}

	middle := len(touches) - 2
	middleShare := (1 - firstWeight - lastWeight) / float64(middle)

	out := make(Result, len(touches))
	out[touches[0].ID] = creditFor(touches[0], value*firstWeight, firstWeight*100)
	for _, t := range touches[1 : len(touches)-1] {
		out[t.ID] = creditFor(t, value*middleShare, middleShare*100)
	}
	out[touches[len(touches)-1].ID] = creditFor(touches[len(touches)-1], value*lastWeight, lastWeight*100)
	return out
}

func wholeDays(d time.Duration) float64 {
	return float64(int(d.Hours() / 24))
}

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/luxmetrics/insights/internal/cache"
	"github.com/luxmetrics/insights/internal/service/attribution"
)

func (h *Handlers) modelParam(r *http.Request) attribution.Model {
	model := attribution.Model(r.URL.Query().Get("model"))
	if model == "" {
		model = attribution.Model(h.config.Analytics.DefaultModel)
	}
	return model
}

// GetContactAttribution distributes a conversion value across a contact's
// touchpoints under the requested model.
func (h *Handlers) GetContactAttribution(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	value := queryFloat(r, "value", 0)
	if value < 0 {
		respondError(w, http.StatusBadRequest, "value must be non-negative")
		return
	}
	model := h.modelParam(r)

	result, err := h.attribution.Calculate(r.Context(), contactID, value, model)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "attribution failed")
		return
	}
	if h.metrics != nil {
		h.metrics.RecordAttributionRun(string(model))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contact_id":  contactID,
		"model":       model,
		"value":       value,
		"attribution": result,
	})
}

// CompareContactModels runs every attribution model over the same contact and
// conversion value.
func (h *Handlers) CompareContactModels(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	value := queryFloat(r, "value", 0)
	if value < 0 {
		respondError(w, http.StatusBadRequest, "value must be non-negative")
		return
	}

	results, err := h.attribution.CompareModels(r.Context(), contactID, value)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "model comparison failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contact_id": contactID,
		"value":      value,
		"models":     results,
	})
}

// GetCustomerJourney returns the contact's ordered touchpoint journey.
func (h *Handlers) GetCustomerJourney(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	steps, err := h.attribution.CustomerJourney(r.Context(), contactID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "journey lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contact_id": contactID,
		"steps":      steps,
		"length":     len(steps),
	})
}

// GetChannelAttribution rolls up credited revenue per channel over a trailing
// window. Results are served from the snapshot cache when a fresh copy exists.
func (h *Handlers) GetChannelAttribution(w http.ResponseWriter, r *http.Request) {
	model := h.modelParam(r)
	days := queryInt(r, "days", 30)
	key := cache.Key("channels", string(model), strconv.Itoa(days))

	var cached map[string]*attribution.ChannelStat
	if h.cache.Get(r.Context(), key, &cached) {
		if h.metrics != nil {
			h.metrics.RecordCacheLookup("channels", true)
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"model":    model,
			"days":     days,
			"channels": cached,
		})
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCacheLookup("channels", false)
	}

	channels, err := h.attribution.ChannelAttribution(r.Context(), model, days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "channel attribution failed")
		return
	}
	if h.metrics != nil {
		h.metrics.RecordAttributionRun(string(model))
	}
	h.cache.Set(r.Context(), key, channels, h.config.Analytics.DashboardCacheTTL())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"model":    model,
		"days":     days,
		"channels": channels,
	})
}

// GetTopConversionPaths returns the most common touchpoint sequences ending
// in a conversion.
func (h *Handlers) GetTopConversionPaths(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	days := queryInt(r, "days", 30)

	paths, err := h.attribution.TopConversionPaths(r.Context(), limit, days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "path analysis failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":  days,
		"paths": paths,
	})
}

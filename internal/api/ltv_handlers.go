package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luxmetrics/insights/internal/service/ltv"
)

// GetCustomerLTV returns the contact's lifetime-value breakdown.
func (h *Handlers) GetCustomerLTV(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	result, err := h.ltv.CustomerLTV(r.Context(), contactID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "ltv calculation failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contact_id": contactID,
		"ltv":        result,
	})
}

// GetCustomerRFM scores one contact and attaches the segment's recommended
// marketing play.
func (h *Handlers) GetCustomerRFM(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	score, err := h.ltv.RFMScore(r.Context(), contactID, time.Time{})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "rfm scoring failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contact_id":      contactID,
		"rfm":             score,
		"recommendations": ltv.SegmentRecommendations(score.Segment),
	})
}

// GetAllCustomersRFM scores every converting contact.
func (h *Handlers) GetAllCustomersRFM(w http.ResponseWriter, r *http.Request) {
	customers, err := h.ltv.AllCustomersRFM(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "rfm listing failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"customers": customers,
		"total":     len(customers),
	})
}

// GetSegmentSummary aggregates counts, revenue, and average RFM inputs per
// segment.
func (h *Handlers) GetSegmentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ltv.SegmentSummary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "segment summary failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"segments": summary,
	})
}

// GetSegmentRecommendations returns the recommended play for a segment name.
func (h *Handlers) GetSegmentRecommendations(w http.ResponseWriter, r *http.Request) {
	segment := chi.URLParam(r, "segment")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"segment":         segment,
		"recommendations": ltv.SegmentRecommendations(segment),
	})
}

// GetCohorts buckets customers by first-purchase month and tracks retention.
func (h *Handlers) GetCohorts(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 12)

	cohorts, err := h.ltv.CohortAnalysis(r.Context(), months)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cohort analysis failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"months_back": months,
		"cohorts":     cohorts,
	})
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/luxmetrics/insights/internal/cache"
	"github.com/luxmetrics/insights/internal/service/dashboard"
)

// GetDashboard returns the combined metrics payload, served from the
// snapshot cache when a fresh copy exists.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", dashboard.DefaultWindowDays)
	key := cache.Key("dashboard", strconv.Itoa(days))
	started := time.Now()

	var cached dashboard.Metrics
	if h.cache.Get(r.Context(), key, &cached) {
		if h.metrics != nil {
			h.metrics.RecordCacheLookup("dashboard", true)
			h.metrics.RecordDashboardAssembly(true, time.Since(started))
		}
		respondJSON(w, http.StatusOK, &cached)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCacheLookup("dashboard", false)
	}

	m := h.dashboard.AllMetrics(r.Context(), days)
	h.cache.Set(r.Context(), key, m, h.config.Analytics.DashboardCacheTTL())
	if h.metrics != nil {
		h.metrics.RecordDashboardAssembly(false, time.Since(started))
	}
	respondJSON(w, http.StatusOK, m)
}

// GetChartData returns the daily time series behind the dashboard charts.
func (h *Handlers) GetChartData(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", dashboard.DefaultWindowDays)
	key := cache.Key("charts", strconv.Itoa(days))

	var cached dashboard.ChartSeries
	if h.cache.Get(r.Context(), key, &cached) {
		if h.metrics != nil {
			h.metrics.RecordCacheLookup("charts", true)
		}
		respondJSON(w, http.StatusOK, &cached)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCacheLookup("charts", false)
	}

	series, err := h.dashboard.ChartData(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "chart data failed")
		return
	}
	h.cache.Set(r.Context(), key, series, h.config.Analytics.DashboardCacheTTL())
	respondJSON(w, http.StatusOK, series)
}

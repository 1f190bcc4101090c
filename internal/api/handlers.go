// Package api exposes the analytics engine over a JSON HTTP API.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/luxmetrics/insights/internal/cache"
	"github.com/luxmetrics/insights/internal/config"
	"github.com/luxmetrics/insights/internal/metrics"
	"github.com/luxmetrics/insights/internal/service/attribution"
	"github.com/luxmetrics/insights/internal/service/dashboard"
	"github.com/luxmetrics/insights/internal/service/ltv"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	attribution *attribution.Service
	ltv         *ltv.Service
	dashboard   *dashboard.Service
	cache       *cache.Cache
	metrics     *metrics.Metrics
	config      *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(attrib *attribution.Service, ltvSvc *ltv.Service, dash *dashboard.Service, snapshots *cache.Cache, cfg *config.Config) *Handlers {
	return &Handlers{
		attribution: attrib,
		ltv:         ltvSvc,
		dashboard:   dash,
		cache:       snapshots,
		config:      cfg,
	}
}

// SetMetrics sets the Prometheus instrumentation.
func (h *Handlers) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// queryInt reads an integer query parameter, falling back when absent or
// unparseable.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// queryFloat reads a float query parameter, falling back when absent or
// unparseable.
func queryFloat(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

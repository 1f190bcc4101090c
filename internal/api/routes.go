package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/luxmetrics/insights/internal/metrics"
	"github.com/luxmetrics/insights/internal/pkg/logger"
)

// SetupRoutes configures the API routes and shared middleware.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/attribution", func(r chi.Router) {
			r.Get("/contact/{contactID}", h.GetContactAttribution)
			r.Get("/contact/{contactID}/compare", h.CompareContactModels)
			r.Get("/contact/{contactID}/journey", h.GetCustomerJourney)
			r.Get("/channels", h.GetChannelAttribution)
			r.Get("/paths", h.GetTopConversionPaths)
		})

		r.Route("/ltv", func(r chi.Router) {
			r.Get("/contact/{contactID}", h.GetCustomerLTV)
			r.Get("/contact/{contactID}/rfm", h.GetCustomerRFM)
			r.Get("/rfm", h.GetAllCustomersRFM)
			r.Get("/segments", h.GetSegmentSummary)
			r.Get("/segments/{segment}/recommendations", h.GetSegmentRecommendations)
			r.Get("/cohorts", h.GetCohorts)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", h.GetDashboard)
			r.Get("/charts", h.GetChartData)
		})
	})

	return r
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one structured log line per request and records HTTP
// metrics when instrumentation is configured.
func requestLogger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(started)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", elapsed.Milliseconds(),
				"request_id", ww.Header().Get("X-Request-ID"),
			)
			if m != nil {
				route := chi.RouteContext(r.Context()).RoutePattern()
				if route == "" {
					route = r.URL.Path
				}
				m.RecordRequest(route, r.Method, strconv.Itoa(ww.Status()), elapsed)
			}
		})
	}
}

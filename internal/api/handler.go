package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/askwind/askwind/internal/config"
	"github.com/askwind/askwind/internal/forecast"
	"github.com/askwind/askwind/internal/nlq"
	"github.com/askwind/askwind/internal/observability"
	"github.com/askwind/askwind/internal/store"
)

// QuestionResolver classifies a natural-language question.
type QuestionResolver interface {
	Resolve(ctx context.Context, question string) (nlq.Decision, error)
}

// Warehouse is the guarded Northwind database surface the handlers use.
type Warehouse interface {
	RunQuery(ctx context.Context, sql string) (*store.ResultSet, error)
	HealthCheck(ctx context.Context) error
	SalesSeries(ctx context.Context) ([]store.SalesPoint, error)
	TableStats(ctx context.Context) (map[string]int64, error)
}

// Forecaster trains and queries the sales forecast model.
type Forecaster interface {
	Train(ctx context.Context) (forecast.TrainSummary, error)
	Forecast(ctx context.Context, periods int) ([]forecast.Point, error)
	Summarize(ctx context.Context, question string, points []forecast.Point) string
	DefaultPeriods() int
}

type Dependencies struct {
	Logger         *slog.Logger
	Resolver       QuestionResolver
	Warehouse      Warehouse
	Forecaster     Forecaster
	AuthMiddleware func(http.Handler) http.Handler
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	router := chi.NewRouter()

	router.Use(observability.TraceMiddleware)
	router.Use(observability.MetricsMiddleware)
	if deps.Logger != nil {
		router.Use(observability.LoggingMiddleware(deps.Logger))
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		handleHealth(deps, w, r)
	})
	router.Get("/metrics", promhttp.Handler().ServeHTTP)

	router.Group(func(protected chi.Router) {
		if cfg.Auth.Required {
			if deps.AuthMiddleware == nil {
				if deps.Logger != nil {
					deps.Logger.Error("auth required but auth middleware missing")
				}
				protected.Use(func(http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
					})
				})
			} else {
				protected.Use(deps.AuthMiddleware)
			}
		}

		protected.Post("/ask", func(w http.ResponseWriter, r *http.Request) {
			handleAsk(deps, w, r)
		})
		protected.Post("/train_forecast", func(w http.ResponseWriter, r *http.Request) {
			handleTrainForecast(deps, w, r)
		})
		protected.Get("/forecast", func(w http.ResponseWriter, r *http.Request) {
			handleForecast(deps, w, r)
		})
		protected.Get("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
			handleDebugStats(deps, w, r)
		})
		protected.Get("/debug/sales-data", func(w http.ResponseWriter, r *http.Request) {
			handleDebugSalesData(deps, w, r)
		})
	})

	return router
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	guardVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askwind_sql_guard_verdicts_total",
			Help: "SQL guard verdicts by outcome.",
		},
		[]string{"verdict"},
	)
	queryDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "askwind_query_duration_ms",
			Help:    "Approved statement execution latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"outcome"},
	)
	completionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askwind_completion_requests_total",
			Help: "Chat completion requests by outcome.",
		},
		[]string{"outcome"},
	)
	forecastTrainingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askwind_forecast_trainings_total",
			Help: "Total number of forecast model training runs.",
		},
	)
	forecastTrainingRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "askwind_forecast_training_rows",
			Help: "Number of daily observations used by the last training run.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		guardVerdictsTotal,
		queryDurationMs,
		completionRequestsTotal,
		forecastTrainingsTotal,
		forecastTrainingRows,
	)
}

func ObserveGuardVerdict(verdict string) {
	guardVerdictsTotal.WithLabelValues(verdict).Inc()
}

func ObserveQueryDuration(elapsed time.Duration, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	queryDurationMs.WithLabelValues(outcome).Observe(float64(elapsed.Milliseconds()))
}

func ObserveCompletion(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	completionRequestsTotal.WithLabelValues(outcome).Inc()
}

func ObserveForecastTraining(rows int) {
	forecastTrainingsTotal.Inc()
	forecastTrainingRows.Set(float64(rows))
}

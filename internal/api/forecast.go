package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/askwind/askwind/internal/forecast"
)

func handleTrainForecast(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	summary, err := deps.Forecaster.Train(r.Context())
	if err != nil {
		if errors.Is(err, forecast.ErrNoSalesData) {
			extra := map[string]any{
				"message": "Check if orders and order_details tables have data",
			}
			if stats, statsErr := deps.Warehouse.TableStats(r.Context()); statsErr == nil {
				extra["orders_count"] = stats["orders"]
				extra["order_details_count"] = stats["order_details"]
			} else {
				extra["error"] = statsErr.Error()
			}
			writeError(r.Context(), w, http.StatusBadRequest, "NO_SALES_DATA", err.Error(), false, extra)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "TRAINING_FAILED", err.Error(), true, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Forecast model trained successfully",
		"rows":    summary.Rows,
		"date_range": map[string]string{
			"start": summary.StartDate,
			"end":   summary.EndDate,
		},
	})
}

func handleForecast(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	periods := deps.Forecaster.DefaultPeriods()
	if raw := r.URL.Query().Get("periods"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_PERIODS", "periods must be a positive integer", false, nil)
			return
		}
		periods = parsed
	}

	points, err := deps.Forecaster.Forecast(r.Context(), periods)
	if err != nil {
		if errors.Is(err, forecast.ErrModelNotTrained) {
			writeError(r.Context(), w, http.StatusBadRequest, "MODEL_NOT_TRAINED", err.Error(), false, nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "FORECAST_FAILED", err.Error(), true, nil)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

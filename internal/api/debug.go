package api

import (
	"net/http"
)

func handleHealth(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if err := deps.Warehouse.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"database": "connected",
	})
}

func handleDebugStats(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	stats, err := deps.Warehouse.TableStats(r.Context())
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "STATS_FAILED", err.Error(), true, nil)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func handleDebugSalesData(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	series, err := deps.Warehouse.SalesSeries(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	sample := make([]map[string]any, 0, 3)
	for i := 0; i < len(series) && i < 3; i++ {
		sample = append(sample, map[string]any{
			"order_date":  series[i].Date.Format("2006-01-02"),
			"total_sales": series[i].Total,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"data_count":  len(series),
		"sample_data": sample,
	})
}

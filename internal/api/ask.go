package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/askwind/askwind/internal/forecast"
	"github.com/askwind/askwind/internal/nlq"
)

type askRequest struct {
	Question string `json:"question"`
}

// handleAsk resolves the question, then either executes the candidate SQL
// through the guarded gate or answers from the forecast model. Resolver and
// execution failures are reported inside the answer payload so clients always
// get the same response shape.
func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON with a question field", false, nil)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_REQUEST", "question is required", false, nil)
		return
	}

	decision, err := deps.Resolver.Resolve(r.Context(), question)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"question": question,
			"intent":   nlq.IntentUnknown,
			"sql":      nil,
			"message":  err.Error(),
			"result":   nil,
		})
		return
	}

	var result any
	var forecastSummary any
	switch {
	case decision.Intent == nlq.IntentHistorical && decision.SQL != "":
		resultSet, err := deps.Warehouse.RunQuery(r.Context(), decision.SQL)
		if err != nil {
			result = map[string]any{"message": err.Error()}
		} else {
			result = resultSet
		}
	case decision.Intent == nlq.IntentForecasting:
		points, err := deps.Forecaster.Forecast(r.Context(), deps.Forecaster.DefaultPeriods())
		switch {
		case errors.Is(err, forecast.ErrModelNotTrained):
			result = map[string]any{"message": "No trained forecast model found. Please train the model first using /train_forecast endpoint."}
		case err != nil:
			result = map[string]any{"message": fmt.Sprintf("Forecast error: %v", err)}
		default:
			forecastSummary = deps.Forecaster.Summarize(r.Context(), question, points)
			result = points
		}
	}

	var sqlField any
	if decision.SQL != "" {
		sqlField = decision.SQL
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question":         question,
		"intent":           decision.Intent,
		"sql":              sqlField,
		"message":          decision.Message,
		"result":           result,
		"forecast_summary": forecastSummary,
		"chart":            decision.Chart,
	})
}

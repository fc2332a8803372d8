package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/askwind/askwind/internal/auth"
	"github.com/askwind/askwind/internal/config"
	"github.com/askwind/askwind/internal/forecast"
	"github.com/askwind/askwind/internal/nlq"
	"github.com/askwind/askwind/internal/store"
)

type fakeResolver struct {
	decision nlq.Decision
	err      error
	lastQ    string
}

func (f *fakeResolver) Resolve(_ context.Context, question string) (nlq.Decision, error) {
	f.lastQ = question
	return f.decision, f.err
}

type fakeWarehouse struct {
	result    *store.ResultSet
	queryErr  error
	lastSQL   string
	healthErr error
	series    []store.SalesPoint
	seriesErr error
	stats     map[string]int64
	statsErr  error
}

func (f *fakeWarehouse) RunQuery(_ context.Context, sql string) (*store.ResultSet, error) {
	f.lastSQL = sql
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.result, nil
}

func (f *fakeWarehouse) HealthCheck(context.Context) error { return f.healthErr }

func (f *fakeWarehouse) SalesSeries(context.Context) ([]store.SalesPoint, error) {
	return f.series, f.seriesErr
}

func (f *fakeWarehouse) TableStats(context.Context) (map[string]int64, error) {
	return f.stats, f.statsErr
}

type fakeForecaster struct {
	trainSummary forecast.TrainSummary
	trainErr     error
	points       []forecast.Point
	forecastErr  error
	summary      string
	lastPeriods  int
}

func (f *fakeForecaster) Train(context.Context) (forecast.TrainSummary, error) {
	return f.trainSummary, f.trainErr
}

func (f *fakeForecaster) Forecast(_ context.Context, periods int) ([]forecast.Point, error) {
	f.lastPeriods = periods
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	return f.points, nil
}

func (f *fakeForecaster) Summarize(context.Context, string, []forecast.Point) string {
	return f.summary
}

func (f *fakeForecaster) DefaultPeriods() int { return 30 }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("askwind-api", func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func newTestHandler(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	return NewHandler(testConfig(t), deps)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestMetricsEndpointExposed(t *testing.T) {
	handler := newTestHandler(t, Dependencies{
		Warehouse:  &fakeWarehouse{},
		Resolver:   &fakeResolver{},
		Forecaster: &fakeForecaster{},
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAuthGuardsProtectedRoutes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Required = true

	validator, err := auth.NewStaticAPIKeyValidator("secret")
	if err != nil {
		t.Fatalf("validator setup: %v", err)
	}
	handler := NewHandler(cfg, Dependencies{
		Warehouse:      &fakeWarehouse{},
		Resolver:       &fakeResolver{decision: nlq.Decision{Intent: nlq.IntentUnknown}},
		Forecaster:     &fakeForecaster{},
		AuthMiddleware: auth.Middleware(nil, validator),
	})

	body := strings.NewReader(`{"question":"hello"}`)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/ask", body))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"hello"}`))
	req.Header.Set("X-API-Key", "secret")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d", rr.Code)
	}

	// Health stays reachable without a key.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health status = %d", rr.Code)
	}
}

func TestAuthRequiredWithoutMiddleware(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Required = true

	handler := NewHandler(cfg, Dependencies{
		Warehouse:  &fakeWarehouse{},
		Resolver:   &fakeResolver{},
		Forecaster: &fakeForecaster{},
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/stats", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	payload := decodeBody(t, rr)
	if payload["error_code"] != "AUTH_MIDDLEWARE_MISSING" {
		t.Fatalf("error_code = %v", payload["error_code"])
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(t, Dependencies{
		Warehouse:  &fakeWarehouse{},
		Resolver:   &fakeResolver{},
		Forecaster: &fakeForecaster{},
	})

	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

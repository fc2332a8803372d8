package forecast

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/askwind/askwind/internal/artifact"
	"github.com/askwind/askwind/internal/store"
)

type fakeSales struct {
	series []store.SalesPoint
	err    error
}

func (f *fakeSales) SalesSeries(context.Context) ([]store.SalesPoint, error) {
	return f.series, f.err
}

type fakeSummaryCompleter struct {
	reply string
	err   error
}

func (f *fakeSummaryCompleter) Complete(context.Context, string, string, float64) (string, error) {
	return f.reply, f.err
}

func salesHistory(days int) []store.SalesPoint {
	start := time.Date(1997, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]store.SalesPoint, 0, days)
	for i := 0; i < days; i++ {
		series = append(series, store.SalesPoint{
			Date:  start.AddDate(0, 0, i),
			Total: 1000 + 10*float64(i),
		})
	}
	return series
}

func newTestService(t *testing.T, sales SalesSource, completer Completer) *Service {
	t.Helper()
	artifacts, err := artifact.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	return NewService(sales, artifacts, completer, Config{}, nil)
}

func TestTrainAndForecast(t *testing.T) {
	service := newTestService(t, &fakeSales{series: salesHistory(60)}, nil)
	ctx := context.Background()

	summary, err := service.Train(ctx)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if summary.Rows != 60 {
		t.Fatalf("Rows = %d", summary.Rows)
	}
	if summary.StartDate != "1997-01-01" {
		t.Fatalf("StartDate = %q", summary.StartDate)
	}

	points, err := service.Forecast(ctx, 14)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(points) != 14 {
		t.Fatalf("len(points) = %d", len(points))
	}
}

func TestForecastLoadsPersistedModel(t *testing.T) {
	artifacts, err := artifact.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	trainer := NewService(&fakeSales{series: salesHistory(60)}, artifacts, nil, Config{}, nil)
	if _, err := trainer.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	// A fresh service instance sharing the artifact store must load the
	// model without retraining.
	fresh := NewService(&fakeSales{err: errors.New("must not be called")}, artifacts, nil, Config{}, nil)
	points, err := fresh.Forecast(ctx, 7)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("len(points) = %d", len(points))
	}
}

func TestForecastWithoutModel(t *testing.T) {
	service := newTestService(t, &fakeSales{series: salesHistory(60)}, nil)
	if _, err := service.Forecast(context.Background(), 7); !errors.Is(err, ErrModelNotTrained) {
		t.Fatalf("Forecast() error = %v, want ErrModelNotTrained", err)
	}
}

func TestTrainWithoutSalesData(t *testing.T) {
	service := newTestService(t, &fakeSales{}, nil)
	if _, err := service.Train(context.Background()); !errors.Is(err, ErrNoSalesData) {
		t.Fatalf("Train() error = %v, want ErrNoSalesData", err)
	}
}

func TestTrainPropagatesStoreFailure(t *testing.T) {
	service := newTestService(t, &fakeSales{err: errors.New("connection refused")}, nil)
	if _, err := service.Train(context.Background()); err == nil {
		t.Fatal("expected error when sales source fails")
	}
}

func TestForecastDefaultPeriods(t *testing.T) {
	service := newTestService(t, &fakeSales{series: salesHistory(60)}, nil)
	ctx := context.Background()
	if _, err := service.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	points, err := service.Forecast(ctx, 0)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(points) != 30 {
		t.Fatalf("len(points) = %d, want default 30", len(points))
	}
}

func TestSummarizeUsesCompletion(t *testing.T) {
	service := newTestService(t, &fakeSales{series: salesHistory(60)}, &fakeSummaryCompleter{reply: "Sales look strong."})
	ctx := context.Background()
	if _, err := service.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	points, err := service.Forecast(ctx, 7)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	if got := service.Summarize(ctx, "next week?", points); got != "Sales look strong." {
		t.Fatalf("Summarize() = %q", got)
	}
}

func TestSummarizeFallsBackWhenCompletionFails(t *testing.T) {
	service := newTestService(t, &fakeSales{series: salesHistory(60)}, &fakeSummaryCompleter{err: errors.New("unavailable")})
	ctx := context.Background()
	if _, err := service.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	points, err := service.Forecast(ctx, 7)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	got := service.Summarize(ctx, "next week?", points)
	if !strings.Contains(got, "average daily sales") {
		t.Fatalf("fallback summary missing statistics: %q", got)
	}
	if !strings.Contains(got, "increasing") {
		t.Fatalf("fallback summary missing trend: %q", got)
	}
}

func TestSummarizeEmptyPoints(t *testing.T) {
	service := newTestService(t, &fakeSales{}, nil)
	if got := service.Summarize(context.Background(), "q", nil); !strings.Contains(got, "No forecast data") {
		t.Fatalf("Summarize() = %q", got)
	}
}

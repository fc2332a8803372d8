package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/askwind/askwind/internal/artifact"
	"github.com/askwind/askwind/internal/observability"
	"github.com/askwind/askwind/internal/store"
)

var (
	// ErrModelNotTrained is returned when a prediction is requested before
	// any training run has produced an artifact.
	ErrModelNotTrained = errors.New("no trained model found; train first via /train_forecast")
	// ErrNoSalesData is returned when the sales series is empty.
	ErrNoSalesData = errors.New("no sales data found to train the model")
)

// SalesSource provides the daily sales history the model trains on.
type SalesSource interface {
	SalesSeries(ctx context.Context) ([]store.SalesPoint, error)
}

// Completer produces the natural-language forecast summary. Same contract as
// the nlq chat completer; kept as a local interface so this package does not
// depend on nlq.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// TrainSummary reports the outcome of one training run.
type TrainSummary struct {
	Rows      int    `json:"rows"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Config struct {
	ModelKey       string
	DefaultPeriods int
}

// Service trains, persists, loads, and queries the forecast model.
type Service struct {
	sales     SalesSource
	artifacts artifact.Store
	completer Completer
	cfg       Config
	logger    *slog.Logger

	mu     sync.RWMutex
	cached *Model
}

func NewService(sales SalesSource, artifacts artifact.Store, completer Completer, cfg Config, logger *slog.Logger) *Service {
	if cfg.ModelKey == "" {
		cfg.ModelKey = "sales_forecast.json"
	}
	if cfg.DefaultPeriods <= 0 {
		cfg.DefaultPeriods = 30
	}
	return &Service{sales: sales, artifacts: artifacts, completer: completer, cfg: cfg, logger: logger}
}

func (s *Service) DefaultPeriods() int {
	return s.cfg.DefaultPeriods
}

// Train fetches the sales series, fits a fresh model, and persists it. The
// in-memory model is only replaced after the artifact write succeeds.
func (s *Service) Train(ctx context.Context) (TrainSummary, error) {
	series, err := s.sales.SalesSeries(ctx)
	if err != nil {
		return TrainSummary{}, fmt.Errorf("fetch sales series: %w", err)
	}
	if len(series) == 0 {
		return TrainSummary{}, ErrNoSalesData
	}

	observations := make([]Observation, 0, len(series))
	for _, point := range series {
		observations = append(observations, Observation{Date: point.Date, Value: point.Total})
	}

	model, err := Fit(observations)
	if err != nil {
		return TrainSummary{}, fmt.Errorf("fit forecast model: %w", err)
	}

	payload, err := json.Marshal(model)
	if err != nil {
		return TrainSummary{}, fmt.Errorf("serialize model: %w", err)
	}
	if _, err := s.artifacts.Put(ctx, s.cfg.ModelKey, bytes.NewReader(payload), int64(len(payload)), "application/json"); err != nil {
		return TrainSummary{}, fmt.Errorf("persist model artifact: %w", err)
	}

	s.mu.Lock()
	s.cached = model
	s.mu.Unlock()

	observability.ObserveForecastTraining(model.Rows)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "forecast model trained",
			slog.Int("rows", model.Rows),
			slog.String("start", model.Start.Format("2006-01-02")),
			slog.String("end", model.End.Format("2006-01-02")),
		)
	}

	return TrainSummary{
		Rows:      model.Rows,
		StartDate: model.Start.Format("2006-01-02"),
		EndDate:   model.End.Format("2006-01-02"),
	}, nil
}

// Forecast predicts the next periods days using the cached model, loading it
// from the artifact store when this instance has not trained yet.
func (s *Service) Forecast(ctx context.Context, periods int) ([]Point, error) {
	if periods <= 0 {
		periods = s.cfg.DefaultPeriods
	}

	model, err := s.model(ctx)
	if err != nil {
		return nil, err
	}
	return model.Predict(periods), nil
}

func (s *Service) model(ctx context.Context) (*Model, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	reader, err := s.artifacts.Get(ctx, s.cfg.ModelKey)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, ErrModelNotTrained
		}
		return nil, fmt.Errorf("load model artifact: %w", err)
	}
	defer func() { _ = reader.Close() }()

	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var model Model
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}

	s.mu.Lock()
	s.cached = &model
	s.mu.Unlock()
	return &model, nil
}

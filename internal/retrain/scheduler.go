package retrain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Trainer is the subset of the forecast service the scheduler drives.
type Trainer interface {
	Train(ctx context.Context) error
}

// TrainerFunc adapts a plain function to the Trainer interface.
type TrainerFunc func(ctx context.Context) error

func (f TrainerFunc) Train(ctx context.Context) error { return f(ctx) }

// Scheduler retrains the forecast model on a cron schedule so predictions
// track new orders without a manual /train_forecast call.
type Scheduler struct {
	cron    *cron.Cron
	trainer Trainer
	logger  *slog.Logger
}

func NewScheduler(trainer Trainer, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		trainer: trainer,
		logger:  logger,
	}
}

// Start registers the schedule and begins running jobs. An empty spec
// disables scheduled retraining.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if err := s.trainer.Train(ctx); err != nil {
			if s.logger != nil {
				s.logger.Warn("scheduled retraining failed", slog.Any("error", err))
			}
			return
		}
		if s.logger != nil {
			s.logger.Info("scheduled retraining completed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retrain schedule %q: %w", spec, err)
	}
	s.cron.Start()
	if s.logger != nil {
		s.logger.Info("retrain scheduler started", slog.String("schedule", spec))
	}
	return nil
}

// Stop halts the scheduler and waits for an in-flight job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

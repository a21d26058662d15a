package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"grading_service/pkg/logger"
)

type resultsPublisher interface {
	PublishDue(ctx context.Context, from, to time.Time) (int, error)
}

// ResultsWorker periodically publishes detailed results for topics whose
// deadline passed since the previous tick.
type ResultsWorker struct {
	results  resultsPublisher
	logger   *logger.Logger
	interval time.Duration
	window   time.Duration
	now      func() time.Time

	lastRun time.Time
}

func NewResultsWorker(
	results resultsPublisher,
	logger *logger.Logger,
	interval time.Duration,
	window time.Duration,
) *ResultsWorker {
	return &ResultsWorker{
		results:  results,
		logger:   logger,
		interval: interval,
		window:   window,
		now:      time.Now,
	}
}

func (w *ResultsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Results worker stopped")
			return
		case <-ticker.C:
			w.processDeadlines(ctx)
		}
	}
}

func (w *ResultsWorker) processDeadlines(ctx context.Context) {
	to := w.now()
	from := w.lastRun
	if from.IsZero() {
		from = to.Add(-w.window)
	}

	published, err := w.results.PublishDue(ctx, from, to)
	if err != nil {
		w.logger.Errorf("Failed to publish results for deadlines in (%s, %s]: %v", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
		return
	}
	w.lastRun = to

	if published > 0 {
		w.logger.Info("Published test results",
			zap.Int("count", published),
			zap.Time("from", from),
			zap.Time("to", to),
		)
	}
}

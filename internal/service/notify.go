package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grading_service/internal/domain"
	"grading_service/pkg/logger"
	"grading_service/pkg/retry"
)

type Delivery struct {
	Event domain.GradeChangeEvent
	// Err wraps ErrNotify when the student was not reached.
	Err error
}

type Report struct {
	Deliveries []Delivery
	Delivered  int
	Failed     int
}

// Dispatcher fans grade changes out to a Notifier. One failed delivery
// never stops the others; every event gets a Delivery in the report.
type Dispatcher struct {
	notifier    Notifier
	breaker     *retry.CircuitBreaker
	concurrency int
	logger      *logger.Logger
}

func NewDispatcher(notifier Notifier, concurrency int, breaker *retry.CircuitBreaker, log *logger.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Dispatcher{
		notifier:    notifier,
		breaker:     breaker,
		concurrency: concurrency,
		logger:      log,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, events []domain.GradeChangeEvent) Report {
	deliveries := make([]Delivery, len(events))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, event := range events {
		g.Go(func() error {
			deliveries[i] = Delivery{Event: event, Err: d.deliver(ctx, event)}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Deliveries: deliveries}
	for _, delivery := range deliveries {
		if delivery.Err != nil {
			report.Failed++
			continue
		}
		report.Delivered++
	}

	if report.Failed > 0 {
		d.logger.WarnContext(ctx, "some grade notifications were not delivered",
			zap.Int("delivered", report.Delivered),
			zap.Int("failed", report.Failed),
		)
	}

	return report
}

func (d *Dispatcher) deliver(ctx context.Context, event domain.GradeChangeEvent) error {
	notify := func() error {
		return d.notifier.Notify(ctx, event.StudentID, event)
	}

	var err error
	if d.breaker != nil {
		err = d.breaker.Execute(notify)
	} else {
		err = notify()
	}
	if err == nil {
		return nil
	}

	d.logger.ErrorContext(ctx, "failed to notify student",
		zap.String("student_id", event.StudentID.String()),
		zap.String("submission_id", event.SubmissionID.String()),
		zap.Error(err),
	)
	return fmt.Errorf("%w: student %s: %w", ErrNotify, event.StudentID, err)
}

package regrade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grading_service/internal/domain"
	"grading_service/internal/grading"
	"grading_service/internal/repository"
	"grading_service/pkg/logger"
	"grading_service/pkg/retry"
)

var ErrEmptyKey = errors.New("answer key has no questions")

type Repository interface {
	LoadTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error)
	LoadSubmissions(ctx context.Context, topicID uuid.UUID, testCode string) ([]*domain.Submission, error)
	UpdateGrade(ctx context.Context, submissionID uuid.UUID, grade int) error
}

type Config struct {
	WorkerPoolSize      int
	WriteRetries        int
	WriteRetryBaseDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		WorkerPoolSize:      8,
		WriteRetries:        3,
		WriteRetryBaseDelay: 100 * time.Millisecond,
	}
}

type Skip struct {
	SubmissionID uuid.UUID
	StudentID    uuid.UUID
	Err          error
}

type WriteFailure struct {
	SubmissionID uuid.UUID
	StudentID    uuid.UUID
	NewGrade     int
	Err          error
}

type Result struct {
	Changes   []domain.GradeChangeEvent
	Skipped   int
	Skips     []Skip
	Unchanged int
	Failed    []WriteFailure
	// NotStarted counts submissions left untouched because ctx was done.
	NotStarted int
}

type state int

const (
	stateNotStarted state = iota
	stateSkipped
	stateUnchanged
	stateChanged
	stateWriteFailed
)

type outcome struct {
	state   state
	event   domain.GradeChangeEvent
	skip    Skip
	failure WriteFailure
}

type Orchestrator struct {
	repo   Repository
	codec  *grading.SubmissionCodec
	grader *grading.Grader
	cfg    Config
	logger *logger.Logger
}

func NewOrchestrator(
	repo Repository,
	codec *grading.SubmissionCodec,
	grader *grading.Grader,
	cfg Config,
	log *logger.Logger,
) *Orchestrator {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 1
	}
	if cfg.WriteRetries <= 0 {
		cfg.WriteRetries = 1
	}
	return &Orchestrator{
		repo:   repo,
		codec:  codec,
		grader: grader,
		cfg:    cfg,
		logger: log,
	}
}

// Regrade recomputes every submission of (topicID, testCode) against newKey
// and returns one change event per grade that was actually rewritten.
// Submissions are independent: a skip or a failed write never aborts the
// batch. Only failing to load the batch is returned as an error.
func (o *Orchestrator) Regrade(ctx context.Context, topicID uuid.UUID, testCode string, newKey grading.AnswerKey) (*Result, error) {
	if newKey.Len() == 0 {
		return nil, ErrEmptyKey
	}

	topic, err := o.repo.LoadTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic %s: %w", topicID, err)
	}

	submissions, err := o.repo.LoadSubmissions(ctx, topicID, testCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions for topic %s test %s: %w", topicID, testCode, err)
	}

	outcomes := make([]outcome, len(submissions))

	var g errgroup.Group
	g.SetLimit(o.cfg.WorkerPoolSize)
	for i, submission := range submissions {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = o.process(ctx, topicID, topic.Deadline, testCode, newKey, submission)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{}
	for _, out := range outcomes {
		switch out.state {
		case stateNotStarted:
			res.NotStarted++
		case stateSkipped:
			res.Skipped++
			res.Skips = append(res.Skips, out.skip)
		case stateUnchanged:
			res.Unchanged++
		case stateChanged:
			res.Changes = append(res.Changes, out.event)
		case stateWriteFailed:
			res.Failed = append(res.Failed, out.failure)
		}
	}

	o.logger.InfoContext(ctx, "regrade finished",
		zap.String("topic_id", topicID.String()),
		zap.String("test_code", testCode),
		zap.Int("submissions", len(submissions)),
		zap.Int("changed", len(res.Changes)),
		zap.Int("unchanged", res.Unchanged),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", len(res.Failed)),
		zap.Int("not_started", res.NotStarted),
	)

	return res, nil
}

func (o *Orchestrator) process(
	ctx context.Context,
	topicID uuid.UUID,
	deadline *time.Time,
	testCode string,
	key grading.AnswerKey,
	submission *domain.Submission,
) outcome {
	fields := []zap.Field{
		zap.String("submission_id", submission.ID.String()),
		zap.String("student_id", submission.StudentID.String()),
	}

	parsed, err := o.codec.Parse(submission.RawAnswers, key.Len())
	if err != nil {
		o.logger.WarnContext(ctx, "skipping unparsable submission", append(fields, zap.Error(err))...)
		return outcome{state: stateSkipped, skip: Skip{SubmissionID: submission.ID, StudentID: submission.StudentID, Err: err}}
	}

	score, voided, err := o.grader.Grade(key, parsed, submission.SubmittedAt, deadline)
	if err != nil {
		o.logger.WarnContext(ctx, "skipping ungradable submission", append(fields, zap.Error(err))...)
		return outcome{state: stateSkipped, skip: Skip{SubmissionID: submission.ID, StudentID: submission.StudentID, Err: err}}
	}

	if submission.Grade != nil && *submission.Grade == score {
		return outcome{state: stateUnchanged}
	}

	// a write that has started is allowed to finish after ctx is cancelled
	writeCtx := context.WithoutCancel(ctx)
	err = retry.Do(writeCtx, o.cfg.WriteRetries, o.cfg.WriteRetryBaseDelay, repository.IsTransient, func() error {
		return o.repo.UpdateGrade(writeCtx, submission.ID, score)
	})
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to store regraded score", append(fields, zap.Int("grade", score), zap.Error(err))...)
		return outcome{state: stateWriteFailed, failure: WriteFailure{
			SubmissionID: submission.ID,
			StudentID:    submission.StudentID,
			NewGrade:     score,
			Err:          err,
		}}
	}

	return outcome{state: stateChanged, event: domain.GradeChangeEvent{
		SubmissionID: submission.ID,
		StudentID:    submission.StudentID,
		TopicID:      topicID,
		TestCode:     testCode,
		OldGrade:     submission.Grade,
		NewGrade:     score,
		Voided:       voided > 0,
		VoidedCount:  voided,
	}}
}

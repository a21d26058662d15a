package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grading_service/internal/domain"
	"grading_service/internal/grading"
	"grading_service/internal/repository"
	"grading_service/pkg/logger"
)

type SubmitRequest struct {
	StudentID uuid.UUID
	TopicID   uuid.UUID
	// TestCode may be empty when Answers carries a "<code>-" prefix.
	TestCode string
	Answers  string
}

type SubmissionServiceInterface interface {
	Submit(ctx context.Context, req SubmitRequest) (*domain.Submission, error)
}

type submissionService struct {
	store   SubmissionStore
	keys    *grading.KeyCodec
	answers *grading.SubmissionCodec
	grader  *grading.Grader
	logger  *logger.Logger
	now     func() time.Time
}

type SubmissionOption func(*submissionService)

// WithClock replaces time.Now as the source of submission timestamps.
func WithClock(now func() time.Time) SubmissionOption {
	return func(s *submissionService) {
		s.now = now
	}
}

func NewSubmissionService(
	store SubmissionStore,
	keys *grading.KeyCodec,
	answers *grading.SubmissionCodec,
	grader *grading.Grader,
	log *logger.Logger,
	opts ...SubmissionOption,
) SubmissionServiceInterface {
	s := &submissionService{
		store:   store,
		keys:    keys,
		answers: answers,
		grader:  grader,
		logger:  log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *submissionService) Submit(ctx context.Context, req SubmitRequest) (*domain.Submission, error) {
	if req.StudentID == uuid.Nil || req.TopicID == uuid.Nil {
		return nil, fmt.Errorf("%w: student and topic are required", ErrInvalidArgument)
	}

	testCode, err := resolveTestCode(req.TestCode, req.Answers)
	if err != nil {
		return nil, err
	}

	topic, err := s.store.LoadTopic(ctx, req.TopicID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	rawKey, ok := topic.AnswerKey(testCode)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoAnswerKey, testCode)
	}
	key, err := s.keys.Parse(rawKey, 0)
	if err != nil {
		return nil, fmt.Errorf("stored answer key for %q is unreadable: %w", testCode, err)
	}

	parsed, err := s.answers.Parse(req.Answers, key.Len())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	// The server clock decides lateness; clients never supply it.
	submittedAt := s.now()

	score, _, err := s.grader.Grade(key, parsed, submittedAt, topic.Deadline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	gradedAt := submittedAt
	submission := &domain.Submission{
		StudentID:   req.StudentID,
		TopicID:     req.TopicID,
		TestCode:    testCode,
		RawAnswers:  req.Answers,
		SubmittedAt: submittedAt,
		Grade:       &score,
		GradedAt:    &gradedAt,
	}

	if err := s.store.CreateSubmission(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateSubmission
		}
		return nil, err
	}

	if parsed.LowConfidence {
		s.logger.WarnContext(ctx, "submission graded from a garbled answer string",
			zap.String("submission_id", submission.ID.String()),
			zap.String("student_id", req.StudentID.String()),
		)
	}

	return submission, nil
}

// resolveTestCode reconciles the declared test code with the one prefixed
// to the answers. Either may be missing but not both, and they must agree.
func resolveTestCode(declared, answers string) (string, error) {
	prefixed, _ := grading.StripTestCode(answers)
	switch {
	case declared == "" && prefixed == "":
		return "", fmt.Errorf("%w: test code is required", ErrInvalidArgument)
	case declared == "":
		return prefixed, nil
	case prefixed != "" && prefixed != declared:
		return "", fmt.Errorf("%w: answers are for test %q, not %q", ErrInvalidArgument, prefixed, declared)
	}
	return declared, nil
}

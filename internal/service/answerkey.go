package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grading_service/internal/domain"
	"grading_service/internal/grading"
	"grading_service/internal/regrade"
	"grading_service/internal/repository"
	"grading_service/pkg/logger"
)

// UpdateSummary is what an admin sees after submitting a key. A rejected
// update has Rejected set and nothing else filled in besides the counts
// that disagreed.
type UpdateSummary struct {
	Rejected          bool
	ExpectedQuestions int
	GotQuestions      int

	CanonicalKey     string
	Form             string
	LowConfidence    bool
	ChangedQuestions []int

	UpdatedCount   int
	SkippedCount   int
	UnchangedCount int
	NotStarted     int
	FailedWrites   []regrade.WriteFailure
	ChangeEvents   []domain.GradeChangeEvent

	Deliveries           []Delivery
	NotificationFailures int
}

type AnswerKeyServiceInterface interface {
	UpdateAnswerKey(ctx context.Context, topicID uuid.UUID, testCode, rawKey string) (*UpdateSummary, error)
}

type answerKeyService struct {
	topics     TopicStore
	codec      *grading.KeyCodec
	regrader   Regrader
	dispatcher *Dispatcher
	logger     *logger.Logger
}

func NewAnswerKeyService(
	topics TopicStore,
	codec *grading.KeyCodec,
	regrader Regrader,
	dispatcher *Dispatcher,
	log *logger.Logger,
) AnswerKeyServiceInterface {
	return &answerKeyService{
		topics:     topics,
		codec:      codec,
		regrader:   regrader,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// UpdateAnswerKey stores a new key for (topicID, testCode), regrades every
// existing submission against it and notifies the students whose grade
// moved. A question count that disagrees with the topic rejects the update
// before anything is written.
func (s *answerKeyService) UpdateAnswerKey(ctx context.Context, topicID uuid.UUID, testCode, rawKey string) (*UpdateSummary, error) {
	if testCode == "" {
		return nil, fmt.Errorf("%w: test code is required", ErrInvalidArgument)
	}

	topic, err := s.topics.LoadTopic(ctx, topicID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	key, err := s.codec.Parse(rawKey, topic.QuestionCount)
	if err != nil {
		var mismatch *grading.QuestionCountMismatchError
		if errors.As(err, &mismatch) {
			s.logger.WarnContext(ctx, "answer key rejected",
				zap.String("topic_id", topicID.String()),
				zap.String("test_code", testCode),
				zap.Int("expected", mismatch.Expected),
				zap.Int("got", mismatch.Got),
			)
			return &UpdateSummary{
				Rejected:          true,
				ExpectedQuestions: mismatch.Expected,
				GotQuestions:      mismatch.Got,
			}, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	summary := &UpdateSummary{
		CanonicalKey:     s.codec.Serialize(key),
		Form:             key.Form.String(),
		LowConfidence:    key.LowConfidence,
		ChangedQuestions: s.changedQuestions(topic, testCode, key),
	}

	if err := s.topics.SaveAnswerKey(ctx, topicID, testCode, summary.CanonicalKey); err != nil {
		return nil, fmt.Errorf("failed to save answer key: %w", err)
	}
	// a topic read that raced the save may have re-cached the old key
	defer s.topics.InvalidateTopic(context.WithoutCancel(ctx), topicID)

	res, err := s.regrader.Regrade(ctx, topicID, testCode, key)
	if err != nil {
		return nil, err
	}

	summary.UpdatedCount = len(res.Changes)
	summary.SkippedCount = res.Skipped
	summary.UnchangedCount = res.Unchanged
	summary.NotStarted = res.NotStarted
	summary.FailedWrites = res.Failed
	summary.ChangeEvents = res.Changes

	if len(res.Changes) > 0 {
		report := s.dispatcher.Dispatch(ctx, res.Changes)
		summary.Deliveries = report.Deliveries
		summary.NotificationFailures = report.Failed
	}

	s.logger.InfoContext(ctx, "answer key updated",
		zap.String("topic_id", topicID.String()),
		zap.String("test_code", testCode),
		zap.Bool("low_confidence", summary.LowConfidence),
		zap.Ints("changed_questions", summary.ChangedQuestions),
		zap.Int("updated", summary.UpdatedCount),
		zap.Int("skipped", summary.SkippedCount),
	)

	return summary, nil
}

// changedQuestions compares against the stored key. Every question counts
// as changed when there was no readable previous key.
func (s *answerKeyService) changedQuestions(topic *domain.Topic, testCode string, key grading.AnswerKey) []int {
	var previous grading.AnswerKey
	if raw, ok := topic.AnswerKey(testCode); ok {
		if old, err := s.codec.Parse(raw, 0); err == nil {
			previous = old
		}
	}
	return key.ChangedQuestions(previous)
}

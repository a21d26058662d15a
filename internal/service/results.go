package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"grading_service/internal/domain"
	"grading_service/internal/grading"
	"grading_service/pkg/logger"
)

// ResultsService publishes detailed results for topics whose deadline has
// just passed.
type ResultsService struct {
	store     ResultsStore
	keys      *grading.KeyCodec
	answers   *grading.SubmissionCodec
	grader    *grading.Grader
	publisher ResultsPublisher
	logger    *logger.Logger
}

func NewResultsService(
	store ResultsStore,
	keys *grading.KeyCodec,
	answers *grading.SubmissionCodec,
	grader *grading.Grader,
	publisher ResultsPublisher,
	log *logger.Logger,
) *ResultsService {
	return &ResultsService{
		store:     store,
		keys:      keys,
		answers:   answers,
		grader:    grader,
		publisher: publisher,
		logger:    log,
	}
}

// PublishDue handles every topic with a deadline in (from, to]. Broken keys,
// ungradable submissions and failed publishes are logged and skipped; only
// failing to list the topics is returned.
func (s *ResultsService) PublishDue(ctx context.Context, from, to time.Time) (int, error) {
	topics, err := s.store.TopicsWithDeadlineBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to list topics past deadline: %w", err)
	}

	published := 0
	for _, topic := range topics {
		codes := make([]string, 0, len(topic.AnswerKeys))
		for code := range topic.AnswerKeys {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		for _, code := range codes {
			if ctx.Err() != nil {
				return published, ctx.Err()
			}
			published += s.publishTest(ctx, topic, code)
		}
	}

	return published, nil
}

func (s *ResultsService) publishTest(ctx context.Context, topic *domain.Topic, testCode string) int {
	fields := []zap.Field{
		zap.String("topic_id", topic.ID.String()),
		zap.String("test_code", testCode),
	}

	rawKey, _ := topic.AnswerKey(testCode)
	key, err := s.keys.Parse(rawKey, 0)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored answer key is unreadable", append(fields, zap.Error(err))...)
		return 0
	}

	submissions, err := s.store.LoadSubmissions(ctx, topic.ID, testCode)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load submissions", append(fields, zap.Error(err))...)
		return 0
	}

	published := 0
	for _, submission := range submissions {
		itemFields := append(fields, zap.String("submission_id", submission.ID.String()))

		parsed, err := s.answers.Parse(submission.RawAnswers, key.Len())
		if err != nil {
			s.logger.WarnContext(ctx, "skipping unparsable submission", append(itemFields, zap.Error(err))...)
			continue
		}
		res, err := s.grader.Evaluate(key, parsed, submission.SubmittedAt, topic.Deadline)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping ungradable submission", append(itemFields, zap.Error(err))...)
			continue
		}

		outcomes := make([]string, len(res.Outcomes))
		for i, o := range res.Outcomes {
			outcomes[i] = o.String()
		}

		msg := domain.ResultsMessage{
			SubmissionID:  submission.ID,
			StudentID:     submission.StudentID,
			TopicID:       topic.ID,
			TopicTitle:    topic.Title,
			TestCode:      testCode,
			Score:         res.Score,
			RawScore:      res.RawScore,
			Total:         res.Total,
			Late:          res.Late,
			Voided:        res.Voided,
			Outcomes:      outcomes,
			LowConfidence: parsed.LowConfidence,
		}
		if err := s.publisher.PublishResults(ctx, msg); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish results", append(itemFields, zap.Error(err))...)
			continue
		}
		published++
	}

	return published
}

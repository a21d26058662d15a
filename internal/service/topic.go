package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"grading_service/internal/domain"
	"grading_service/internal/grading"
	"grading_service/internal/repository"
	"grading_service/pkg/logger"
)

type CreateTopicRequest struct {
	Title         string
	QuestionCount int
	Deadline      *time.Time
	// AnswerKeys maps test codes to raw keys. It may be empty; keys can be
	// added later through UpdateAnswerKey.
	AnswerKeys map[string]string
}

type TopicServiceInterface interface {
	CreateTopic(ctx context.Context, req CreateTopicRequest) (*domain.Topic, error)
}

type topicService struct {
	store  TopicCreator
	codec  *grading.KeyCodec
	logger *logger.Logger
}

func NewTopicService(store TopicCreator, codec *grading.KeyCodec, log *logger.Logger) TopicServiceInterface {
	return &topicService{
		store:  store,
		codec:  codec,
		logger: log,
	}
}

// CreateTopic validates every initial key before anything is written, so a
// bad key never leaves a half-configured topic behind.
func (s *topicService) CreateTopic(ctx context.Context, req CreateTopicRequest) (*domain.Topic, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if req.QuestionCount <= 0 {
		return nil, fmt.Errorf("%w: question count must be positive", ErrInvalidArgument)
	}

	codes := make([]string, 0, len(req.AnswerKeys))
	canonical := make(map[string]string, len(req.AnswerKeys))
	for code, raw := range req.AnswerKeys {
		if code == "" {
			return nil, fmt.Errorf("%w: test code is required", ErrInvalidArgument)
		}
		key, err := s.codec.Parse(raw, req.QuestionCount)
		if err != nil {
			if errors.Is(err, grading.ErrQuestionCountMismatch) {
				return nil, fmt.Errorf("answer key %q: %w", code, err)
			}
			return nil, fmt.Errorf("%w: answer key %q: %w", ErrInvalidArgument, code, err)
		}
		codes = append(codes, code)
		canonical[code] = s.codec.Serialize(key)
	}
	sort.Strings(codes)

	topic := &domain.Topic{
		Title:         title,
		QuestionCount: req.QuestionCount,
		Deadline:      req.Deadline,
	}
	if err := s.store.CreateTopic(ctx, topic); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateTopic
		}
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	for _, code := range codes {
		if err := s.store.SaveAnswerKey(ctx, topic.ID, code, canonical[code]); err != nil {
			return nil, fmt.Errorf("failed to save answer key %q: %w", code, err)
		}
	}
	topic.AnswerKeys = canonical

	s.logger.InfoContext(ctx, "topic created",
		zap.String("topic_id", topic.ID.String()),
		zap.String("title", topic.Title),
		zap.Int("question_count", topic.QuestionCount),
		zap.Strings("test_codes", codes),
	)

	return topic, nil
}

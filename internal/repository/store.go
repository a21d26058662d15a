package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grading_service/internal/domain"
	"grading_service/pkg/logger"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type TopicStorage interface {
	Create(ctx context.Context, topic *domain.Topic) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error)
	ListDeadlinesBetween(ctx context.Context, from, to time.Time) ([]*domain.Topic, error)
	SaveAnswerKey(ctx context.Context, topicID uuid.UUID, testCode, rawKey string) error
}

type SubmissionStorage interface {
	Create(ctx context.Context, submission *domain.Submission) error
	ListByTopicAndCode(ctx context.Context, topicID uuid.UUID, testCode string) ([]*domain.Submission, error)
	UpdateGrade(ctx context.Context, id uuid.UUID, grade int) error
}

// Store is the persistence collaborator of the grading core. Topic reads go
// through an optional cache that is dropped whenever an answer key changes.
type Store struct {
	topics      TopicStorage
	submissions SubmissionStorage
	cache       Cache
	cacheTTL    time.Duration
	logger      *logger.Logger

	// mu guards generations and orders cache writes against invalidations.
	// A topic's generation moves on every answer key save; a read only
	// populates the cache if the generation it started under is current.
	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

func NewStore(topics TopicStorage, submissions SubmissionStorage, log *logger.Logger) *Store {
	return &Store{
		topics:      topics,
		submissions: submissions,
		logger:      log,
		generations: make(map[uuid.UUID]uint64),
	}
}

func (s *Store) WithCache(cache Cache, ttl time.Duration) *Store {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

func topicCacheKey(id uuid.UUID) string {
	return "grading:topic:" + id.String()
}

func (s *Store) LoadTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, topicCacheKey(topicID)); ok {
			var topic domain.Topic
			if err := json.Unmarshal(data, &topic); err == nil {
				return &topic, nil
			}
		}
	}

	generation := s.generation(topicID)

	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cacheTopic(ctx, topic, generation)
	}

	return topic, nil
}

func (s *Store) generation(topicID uuid.UUID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[topicID]
}

// cacheTopic skips the write when a key was saved while the topic was
// being read, since the copy in hand may predate that save.
func (s *Store) cacheTopic(ctx context.Context, topic *domain.Topic, generation uint64) {
	data, err := json.Marshal(topic)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[topic.ID] != generation {
		return
	}
	if err := s.cache.Set(ctx, topicCacheKey(topic.ID), data, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache topic", zap.String("topic_id", topic.ID.String()), zap.Error(err))
	}
}

// InvalidateTopic drops the cached copy of a topic. Other instances may
// have cached it between a key save and the end of the regrade that
// followed, so callers repeat the invalidation once the regrade is done.
func (s *Store) InvalidateTopic(ctx context.Context, topicID uuid.UUID) {
	if s.cache == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[topicID]++
	if err := s.cache.Delete(ctx, topicCacheKey(topicID)); err != nil {
		s.logger.Warn("failed to invalidate cached topic",
			zap.String("topic_id", topicID.String()),
			zap.Error(err),
		)
	}
}

func (s *Store) CreateTopic(ctx context.Context, topic *domain.Topic) error {
	return s.topics.Create(ctx, topic)
}

func (s *Store) LoadSubmissions(ctx context.Context, topicID uuid.UUID, testCode string) ([]*domain.Submission, error) {
	return s.submissions.ListByTopicAndCode(ctx, topicID, testCode)
}

func (s *Store) UpdateGrade(ctx context.Context, submissionID uuid.UUID, grade int) error {
	return s.submissions.UpdateGrade(ctx, submissionID, grade)
}

func (s *Store) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	return s.submissions.Create(ctx, submission)
}

func (s *Store) SaveAnswerKey(ctx context.Context, topicID uuid.UUID, testCode, rawKey string) error {
	if err := s.topics.SaveAnswerKey(ctx, topicID, testCode, rawKey); err != nil {
		return err
	}

	s.InvalidateTopic(ctx, topicID)
	return nil
}

func (s *Store) TopicsWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]*domain.Topic, error) {
	return s.topics.ListDeadlinesBetween(ctx, from, to)
}

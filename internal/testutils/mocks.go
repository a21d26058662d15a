package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"grading_service/internal/domain"
)

type MockKafkaProducer struct {
	mock.Mock
}

func (m *MockKafkaProducer) Send(ctx context.Context, topic, key string, message interface{}) error {
	args := m.Called(ctx, topic, key, message)
	return args.Error(0)
}

func (m *MockKafkaProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockGradingRepository struct {
	mock.Mock
}

func (m *MockGradingRepository) LoadTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Topic), args.Error(1)
}

func (m *MockGradingRepository) LoadSubmissions(ctx context.Context, topicID uuid.UUID, testCode string) ([]*domain.Submission, error) {
	args := m.Called(ctx, topicID, testCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

func (m *MockGradingRepository) UpdateGrade(ctx context.Context, submissionID uuid.UUID, grade int) error {
	args := m.Called(ctx, submissionID, grade)
	return args.Error(0)
}

func (m *MockGradingRepository) SaveAnswerKey(ctx context.Context, topicID uuid.UUID, testCode, rawKey string) error {
	args := m.Called(ctx, topicID, testCode, rawKey)
	return args.Error(0)
}

func (m *MockGradingRepository) InvalidateTopic(ctx context.Context, topicID uuid.UUID) {
	m.Called(ctx, topicID)
}

func (m *MockGradingRepository) CreateTopic(ctx context.Context, topic *domain.Topic) error {
	args := m.Called(ctx, topic)
	return args.Error(0)
}

func (m *MockGradingRepository) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockGradingRepository) TopicsWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]*domain.Topic, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Topic), args.Error(1)
}

// MemoryCache is an in-process stand-in for the redis cache.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	SetErr  error
	DelErr  error
	Deleted []string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	return data, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetErr != nil {
		return c.SetErr
	}
	c.items[key] = data
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Deleted = append(c.Deleted, key)
	if c.DelErr != nil {
		return c.DelErr
	}
	delete(c.items, key)
	return nil
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"grading_service/internal/domain"
	"grading_service/internal/grading"
	"grading_service/internal/regrade"
)

// Notifier delivers one grade change to one student. Implementations must
// be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, studentID uuid.UUID, event domain.GradeChangeEvent) error
}

type Regrader interface {
	Regrade(ctx context.Context, topicID uuid.UUID, testCode string, newKey grading.AnswerKey) (*regrade.Result, error)
}

type TopicStore interface {
	LoadTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error)
	SaveAnswerKey(ctx context.Context, topicID uuid.UUID, testCode, rawKey string) error
	InvalidateTopic(ctx context.Context, topicID uuid.UUID)
}

type TopicCreator interface {
	CreateTopic(ctx context.Context, topic *domain.Topic) error
	SaveAnswerKey(ctx context.Context, topicID uuid.UUID, testCode, rawKey string) error
}

type SubmissionStore interface {
	LoadTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error)
	CreateSubmission(ctx context.Context, submission *domain.Submission) error
}

type ResultsStore interface {
	TopicsWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]*domain.Topic, error)
	LoadSubmissions(ctx context.Context, topicID uuid.UUID, testCode string) ([]*domain.Submission, error)
}

type ResultsPublisher interface {
	PublishResults(ctx context.Context, msg domain.ResultsMessage) error
}

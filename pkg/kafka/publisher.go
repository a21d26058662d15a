package kafka

import (
	"context"

	"github.com/google/uuid"

	"grading_service/internal/domain"
)

type Sender interface {
	Send(ctx context.Context, topic, key string, message interface{}) error
}

// GradeEventPublisher delivers grade changes to the notification pipeline.
type GradeEventPublisher struct {
	sender Sender
	topic  string
}

func NewGradeEventPublisher(sender Sender, topic string) *GradeEventPublisher {
	return &GradeEventPublisher{sender: sender, topic: topic}
}

func (p *GradeEventPublisher) Notify(ctx context.Context, studentID uuid.UUID, event domain.GradeChangeEvent) error {
	return p.sender.Send(ctx, p.topic, studentID.String(), event)
}

type ResultsPublisher struct {
	sender Sender
	topic  string
}

func NewResultsPublisher(sender Sender, topic string) *ResultsPublisher {
	return &ResultsPublisher{sender: sender, topic: topic}
}

func (p *ResultsPublisher) PublishResults(ctx context.Context, msg domain.ResultsMessage) error {
	return p.sender.Send(ctx, p.topic, msg.StudentID.String(), msg)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type Submission struct {
	ID          uuid.UUID
	StudentID   uuid.UUID
	TopicID     uuid.UUID
	TestCode    string
	RawAnswers  string
	SubmittedAt time.Time
	Grade       *int
	GradedAt    *time.Time
}

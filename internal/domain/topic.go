package domain

import (
	"time"

	"github.com/google/uuid"
)

type Topic struct {
	ID            uuid.UUID
	Title         string
	QuestionCount int
	Deadline      *time.Time
	// AnswerKeys maps a test code to its raw answer key.
	AnswerKeys map[string]string
	CreatedAt  time.Time
	EditedAt   time.Time
}

func (t *Topic) AnswerKey(testCode string) (string, bool) {
	raw, ok := t.AnswerKeys[testCode]
	return raw, ok
}

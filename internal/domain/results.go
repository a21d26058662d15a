package domain

import "github.com/google/uuid"

// ResultsMessage is the detailed per-student result published once a
// topic's deadline has passed.
type ResultsMessage struct {
	SubmissionID  uuid.UUID `json:"submission_id"`
	StudentID     uuid.UUID `json:"student_id"`
	TopicID       uuid.UUID `json:"topic_id"`
	TopicTitle    string    `json:"topic_title"`
	TestCode      string    `json:"test_code"`
	Score         int       `json:"score"`
	RawScore      int       `json:"raw_score"`
	Total         int       `json:"total"`
	Late          bool      `json:"late"`
	Voided        int       `json:"voided"`
	Outcomes      []string  `json:"outcomes"`
	LowConfidence bool      `json:"low_confidence,omitempty"`
}

package domain

import "github.com/google/uuid"

type GradeChangeEvent struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	StudentID    uuid.UUID `json:"student_id"`
	TopicID      uuid.UUID `json:"topic_id"`
	TestCode     string    `json:"test_code"`
	OldGrade     *int      `json:"old_grade"`
	NewGrade     int       `json:"new_grade"`
	Voided       bool      `json:"voided"`
	VoidedCount  int       `json:"voided_count"`
}

// Delta is the grade difference; an ungraded submission counts as zero.
func (e GradeChangeEvent) Delta() int {
	if e.OldGrade == nil {
		return e.NewGrade
	}
	return e.NewGrade - *e.OldGrade
}

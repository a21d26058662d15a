package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"grading_service/internal/domain"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	query := `
		INSERT INTO submissions (id, student_id, topic_id, test_code, raw_answers, submitted_at, grade, graded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		id,
		submission.StudentID,
		submission.TopicID,
		submission.TestCode,
		submission.RawAnswers,
		submission.SubmittedAt,
		submission.Grade,
		submission.GradedAt,
	)
	if err != nil {
		return classify(err)
	}

	submission.ID = id
	return nil
}

// ListByTopicAndCode returns submissions in a stable order so regrade
// results come out deterministic.
func (r *SubmissionRepository) ListByTopicAndCode(ctx context.Context, topicID uuid.UUID, testCode string) ([]*domain.Submission, error) {
	query := `
		SELECT id, student_id, topic_id, test_code, raw_answers, submitted_at, grade, graded_at
		FROM submissions
		WHERE topic_id = $1 AND test_code = $2
		ORDER BY submitted_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, topicID, testCode)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = rows.Close() }()

	var submissions []*domain.Submission
	for rows.Next() {
		var submission domain.Submission
		err := rows.Scan(
			&submission.ID,
			&submission.StudentID,
			&submission.TopicID,
			&submission.TestCode,
			&submission.RawAnswers,
			&submission.SubmittedAt,
			&submission.Grade,
			&submission.GradedAt,
		)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, &submission)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return submissions, nil
}

// UpdateGrade writes one grade in its own statement; there is no batch
// transaction around regrade writes.
func (r *SubmissionRepository) UpdateGrade(ctx context.Context, id uuid.UUID, grade int) error {
	query := `
		UPDATE submissions
		SET grade = $1, graded_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, grade, time.Now(), id)
	if err != nil {
		return classify(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

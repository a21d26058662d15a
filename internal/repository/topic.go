package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"grading_service/internal/domain"
)

type TopicRepository struct {
	db *sql.DB
}

func NewTopicRepository(db *sql.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

func (r *TopicRepository) Create(ctx context.Context, topic *domain.Topic) error {
	query := `
		INSERT INTO topics (id, title, question_count, deadline, created_at, edited_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate UUID: %w", err)
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		id,
		topic.Title,
		topic.QuestionCount,
		topic.Deadline,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", classify(err))
	}

	topic.ID = id
	topic.CreatedAt = now
	topic.EditedAt = now
	return nil
}

func (r *TopicRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	query := `
		SELECT id, title, question_count, deadline, created_at, edited_at
		FROM topics
		WHERE id = $1
	`

	var topic domain.Topic
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&topic.ID,
		&topic.Title,
		&topic.QuestionCount,
		&topic.Deadline,
		&topic.CreatedAt,
		&topic.EditedAt,
	)
	if err != nil {
		if err = classify(err); errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	keys, err := r.answerKeys(ctx, id)
	if err != nil {
		return nil, err
	}
	topic.AnswerKeys = keys

	return &topic, nil
}

// ListDeadlinesBetween returns topics whose deadline falls in (from, to].
func (r *TopicRepository) ListDeadlinesBetween(ctx context.Context, from, to time.Time) ([]*domain.Topic, error) {
	query := `
		SELECT id, title, question_count, deadline, created_at, edited_at
		FROM topics
		WHERE deadline > $1 AND deadline <= $2
		ORDER BY deadline
	`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var topics []*domain.Topic
	for rows.Next() {
		var topic domain.Topic
		if err := rows.Scan(
			&topic.ID,
			&topic.Title,
			&topic.QuestionCount,
			&topic.Deadline,
			&topic.CreatedAt,
			&topic.EditedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, &topic)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", classify(err))
	}

	for _, topic := range topics {
		if topic.AnswerKeys, err = r.answerKeys(ctx, topic.ID); err != nil {
			return nil, err
		}
	}

	return topics, nil
}

func (r *TopicRepository) SaveAnswerKey(ctx context.Context, topicID uuid.UUID, testCode, rawKey string) error {
	query := `
		INSERT INTO answer_keys (topic_id, test_code, raw_key, created_at, edited_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (topic_id, test_code)
		DO UPDATE SET raw_key = EXCLUDED.raw_key, edited_at = EXCLUDED.edited_at
	`

	if _, err := r.db.ExecContext(ctx, query, topicID, testCode, rawKey, time.Now()); err != nil {
		return fmt.Errorf("failed to save answer key: %w", classify(err))
	}
	return nil
}

func (r *TopicRepository) answerKeys(ctx context.Context, topicID uuid.UUID) (map[string]string, error) {
	query := `
		SELECT test_code, raw_key
		FROM answer_keys
		WHERE topic_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answer keys: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	keys := make(map[string]string)
	for rows.Next() {
		var code, raw string
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan answer key: %w", err)
		}
		keys[code] = raw
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", classify(err))
	}

	return keys, nil
}

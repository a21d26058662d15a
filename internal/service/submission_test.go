package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grading_service/internal/domain"
	"grading_service/internal/grading"
	"grading_service/internal/repository"
	"grading_service/internal/service"
	"grading_service/internal/testutils"
	"grading_service/pkg/logger"
)

func newSubmissionService(store service.SubmissionStore, now time.Time) service.SubmissionServiceInterface {
	alphabet := grading.DefaultAlphabet()
	return service.NewSubmissionService(
		store,
		grading.NewKeyCodec(alphabet),
		grading.NewSubmissionCodec(alphabet),
		grading.NewGrader(grading.DefaultDeadlinePolicy()),
		logger.NewNop(),
		service.WithClock(func() time.Time { return now }),
	)
}

func TestSubmit(t *testing.T) {
	topicID := uuid.New()
	studentID := uuid.New()
	deadline := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	topic := &domain.Topic{
		ID:            topicID,
		QuestionCount: 4,
		Deadline:      &deadline,
		AnswerKeys:    map[string]string{"t1": "1a2b3c4ad"},
	}

	tests := []struct {
		name        string
		req         service.SubmitRequest
		now         time.Time
		createErr   error
		wantGrade   int
		wantCode    string
		wantErr     error
		wantCreated bool
	}{
		{
			name: "prefixed answers on time",
			req: service.SubmitRequest{
				StudentID: studentID, TopicID: topicID,
				Answers: "t1-abcd",
			},
			now:         deadline,
			wantGrade:   4,
			wantCode:    "t1",
			wantCreated: true,
		},
		{
			name: "late submission is penalised",
			req: service.SubmitRequest{
				StudentID: studentID, TopicID: topicID, TestCode: "t1",
				Answers: "abcb",
			},
			now:         deadline.Add(time.Second),
			wantGrade:   2,
			wantCode:    "t1",
			wantCreated: true,
		},
		{
			name: "declared and prefixed codes disagree",
			req: service.SubmitRequest{
				StudentID: studentID, TopicID: topicID, TestCode: "t2",
				Answers: "t1+abcd",
			},
			wantErr: service.ErrInvalidArgument,
		},
		{
			name:    "no test code at all",
			req:     service.SubmitRequest{StudentID: studentID, TopicID: topicID, Answers: "abcd"},
			wantErr: service.ErrInvalidArgument,
		},
		{
			name: "separator inside answers without a declared code",
			req: service.SubmitRequest{
				StudentID: studentID, TopicID: topicID, Answers: "ab-cd",
			},
			wantErr: service.ErrNoAnswerKey,
		},
		{
			name: "separator inside answers with a declared code",
			req: service.SubmitRequest{
				StudentID: studentID, TopicID: topicID, TestCode: "t1", Answers: "ab-cd",
			},
			wantErr: service.ErrInvalidArgument,
		},
		{
			name: "unknown test code",
			req: service.SubmitRequest{
				StudentID: studentID, TopicID: topicID, Answers: "t3*abcd",
			},
			wantErr: service.ErrNoAnswerKey,
		},
		{
			name: "wrong number of answers",
			req: service.SubmitRequest{
				StudentID: studentID, TopicID: topicID, TestCode: "t1", Answers: "abc",
			},
			wantErr: grading.ErrLengthMismatch,
		},
		{
			name: "multiple answers to one question",
			req: service.SubmitRequest{
				StudentID: studentID, TopicID: topicID, TestCode: "t1", Answers: "1a2bc3c4d",
			},
			wantErr: grading.ErrUnparsableFormat,
		},
		{
			name: "duplicate",
			req: service.SubmitRequest{
				StudentID: studentID, TopicID: topicID, TestCode: "t1",
				Answers: "abcd",
			},
			now:         deadline,
			createErr:   fmt.Errorf("%w: duplicate key value", repository.ErrConflict),
			wantErr:     service.ErrDuplicateSubmission,
			wantCreated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(testutils.MockGradingRepository)
			store.On("LoadTopic", mock.Anything, topicID).Return(topic, nil).Maybe()
			if tt.wantCreated {
				store.On("CreateSubmission", mock.Anything, mock.AnythingOfType("*domain.Submission")).
					Return(tt.createErr).Once()
			}

			now := tt.now
			if now.IsZero() {
				now = deadline
			}
			submission, err := newSubmissionService(store, now).Submit(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, submission)
			} else {
				require.NoError(t, err)
				require.NotNil(t, submission.Grade)
				assert.Equal(t, tt.wantGrade, *submission.Grade)
				assert.Equal(t, tt.wantCode, submission.TestCode)
				assert.Equal(t, tt.req.Answers, submission.RawAnswers)
				assert.Equal(t, now, submission.SubmittedAt)
				assert.NotNil(t, submission.GradedAt)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestSubmit_UnknownTopic(t *testing.T) {
	store := new(testutils.MockGradingRepository)
	topicID := uuid.New()
	store.On("LoadTopic", mock.Anything, topicID).Return(nil, repository.ErrNotFound)

	_, err := newSubmissionService(store, time.Now()).Submit(context.Background(), service.SubmitRequest{
		StudentID: uuid.New(), TopicID: topicID, TestCode: "t1", Answers: "abcd",
	})
	assert.ErrorIs(t, err, service.ErrTopicNotFound)
	store.AssertNotCalled(t, "CreateSubmission", mock.Anything, mock.Anything)
}

func TestSubmit_MissingIDs(t *testing.T) {
	store := new(testutils.MockGradingRepository)
	_, err := newSubmissionService(store, time.Now()).Submit(context.Background(), service.SubmitRequest{TestCode: "t1", Answers: "abcd"})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestSubmit_LatenessUsesServerClock(t *testing.T) {
	topicID := uuid.New()
	deadline := time.Now().Add(-24 * time.Hour)
	topic := &domain.Topic{
		ID:            topicID,
		QuestionCount: 5,
		Deadline:      &deadline,
		AnswerKeys:    map[string]string{"t1": "abcde"},
	}

	store := new(testutils.MockGradingRepository)
	store.On("LoadTopic", mock.Anything, topicID).Return(topic, nil)
	store.On("CreateSubmission", mock.Anything, mock.AnythingOfType("*domain.Submission")).Return(nil)

	now := time.Now()
	submission, err := newSubmissionService(store, now).Submit(context.Background(), service.SubmitRequest{
		StudentID: uuid.New(), TopicID: topicID, TestCode: "t1", Answers: "abcde",
	})
	require.NoError(t, err)
	require.NotNil(t, submission.Grade)
	assert.Equal(t, 4, *submission.Grade)
	assert.Equal(t, now, submission.SubmittedAt)
	assert.True(t, submission.SubmittedAt.After(deadline))
}

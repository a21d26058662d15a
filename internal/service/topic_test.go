package service_test

import (
	"context"
	"errors"
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

func newTopicService(store service.TopicCreator) service.TopicServiceInterface {
	return service.NewTopicService(store, grading.NewKeyCodec(grading.DefaultAlphabet()), logger.NewNop())
}

func TestCreateTopic(t *testing.T) {
	deadline := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	topicID := uuid.New()

	store := new(testutils.MockGradingRepository)
	store.On("CreateTopic", mock.Anything, mock.MatchedBy(func(topic *domain.Topic) bool {
		return topic.Title == "Optics" && topic.QuestionCount == 3 && topic.Deadline.Equal(deadline)
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Topic).ID = topicID
	}).Return(nil).Once()
	store.On("SaveAnswerKey", mock.Anything, topicID, "1", "1a2x3c").Return(nil).Once()
	store.On("SaveAnswerKey", mock.Anything, topicID, "2", "bca").Return(nil).Once()

	topic, err := newTopicService(store).CreateTopic(context.Background(), service.CreateTopicRequest{
		Title:         "  Optics ",
		QuestionCount: 3,
		Deadline:      &deadline,
		AnswerKeys:    map[string]string{"1": "1A 2x 3c", "2": "bca"},
	})
	require.NoError(t, err)

	assert.Equal(t, topicID, topic.ID)
	assert.Equal(t, "Optics", topic.Title)
	assert.Equal(t, map[string]string{"1": "1a2x3c", "2": "bca"}, topic.AnswerKeys)
	store.AssertExpectations(t)
}

func TestCreateTopic_WithoutKeys(t *testing.T) {
	store := new(testutils.MockGradingRepository)
	store.On("CreateTopic", mock.Anything, mock.AnythingOfType("*domain.Topic")).Return(nil).Once()

	topic, err := newTopicService(store).CreateTopic(context.Background(), service.CreateTopicRequest{
		Title: "Mechanics", QuestionCount: 10,
	})
	require.NoError(t, err)
	assert.Nil(t, topic.Deadline)
	assert.Empty(t, topic.AnswerKeys)
	store.AssertNotCalled(t, "SaveAnswerKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTopic_Errors(t *testing.T) {
	storeErr := errors.New("connection reset")

	tests := []struct {
		name      string
		req       service.CreateTopicRequest
		createErr error
		wantErr   error
	}{
		{
			name:    "missing title",
			req:     service.CreateTopicRequest{Title: "  ", QuestionCount: 3},
			wantErr: service.ErrInvalidArgument,
		},
		{
			name:    "no questions",
			req:     service.CreateTopicRequest{Title: "Optics"},
			wantErr: service.ErrInvalidArgument,
		},
		{
			name: "key with the wrong question count",
			req: service.CreateTopicRequest{
				Title: "Optics", QuestionCount: 4, AnswerKeys: map[string]string{"1": "abc"},
			},
			wantErr: grading.ErrQuestionCountMismatch,
		},
		{
			name: "unreadable key",
			req: service.CreateTopicRequest{
				Title: "Optics", QuestionCount: 3, AnswerKeys: map[string]string{"1": "1a1b2c"},
			},
			wantErr: service.ErrInvalidArgument,
		},
		{
			name: "empty test code",
			req: service.CreateTopicRequest{
				Title: "Optics", QuestionCount: 3, AnswerKeys: map[string]string{"": "abc"},
			},
			wantErr: service.ErrInvalidArgument,
		},
		{
			name:      "title taken",
			req:       service.CreateTopicRequest{Title: "Optics", QuestionCount: 3},
			createErr: fmt.Errorf("failed to create topic: %w", repository.ErrConflict),
			wantErr:   service.ErrDuplicateTopic,
		},
		{
			name:      "store failure",
			req:       service.CreateTopicRequest{Title: "Optics", QuestionCount: 3},
			createErr: storeErr,
			wantErr:   storeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(testutils.MockGradingRepository)
			store.On("CreateTopic", mock.Anything, mock.Anything).Return(tt.createErr).Maybe()

			topic, err := newTopicService(store).CreateTopic(context.Background(), tt.req)
			assert.Nil(t, topic)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.createErr == nil {
				store.AssertNotCalled(t, "CreateTopic", mock.Anything, mock.Anything)
			}
		})
	}
}

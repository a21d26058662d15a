package mocks

import (
	"context"
	"reflect"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"grading_service/internal/domain"
	"grading_service/internal/grading"
	"grading_service/internal/regrade"
)

type MockNotifier struct {
	ctrl     *gomock.Controller
	recorder *MockNotifierMockRecorder
}

type MockNotifierMockRecorder struct {
	mock *MockNotifier
}

func NewMockNotifier(ctrl *gomock.Controller) *MockNotifier {
	mock := &MockNotifier{ctrl: ctrl}
	mock.recorder = &MockNotifierMockRecorder{mock}
	return mock
}

func (m *MockNotifier) EXPECT() *MockNotifierMockRecorder {
	return m.recorder
}

func (m *MockNotifier) Notify(ctx context.Context, studentID uuid.UUID, event domain.GradeChangeEvent) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Notify", ctx, studentID, event)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockNotifierMockRecorder) Notify(ctx, studentID, event interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Notify", reflect.TypeOf((*MockNotifier)(nil).Notify), ctx, studentID, event)
}

type MockRegrader struct {
	ctrl     *gomock.Controller
	recorder *MockRegraderMockRecorder
}

type MockRegraderMockRecorder struct {
	mock *MockRegrader
}

func NewMockRegrader(ctrl *gomock.Controller) *MockRegrader {
	mock := &MockRegrader{ctrl: ctrl}
	mock.recorder = &MockRegraderMockRecorder{mock}
	return mock
}

func (m *MockRegrader) EXPECT() *MockRegraderMockRecorder {
	return m.recorder
}

func (m *MockRegrader) Regrade(ctx context.Context, topicID uuid.UUID, testCode string, newKey grading.AnswerKey) (*regrade.Result, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Regrade", ctx, topicID, testCode, newKey)
	ret0, _ := ret[0].(*regrade.Result)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRegraderMockRecorder) Regrade(ctx, topicID, testCode, newKey interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Regrade", reflect.TypeOf((*MockRegrader)(nil).Regrade), ctx, topicID, testCode, newKey)
}

type MockResultsPublisher struct {
	ctrl     *gomock.Controller
	recorder *MockResultsPublisherMockRecorder
}

type MockResultsPublisherMockRecorder struct {
	mock *MockResultsPublisher
}

func NewMockResultsPublisher(ctrl *gomock.Controller) *MockResultsPublisher {
	mock := &MockResultsPublisher{ctrl: ctrl}
	mock.recorder = &MockResultsPublisherMockRecorder{mock}
	return mock
}

func (m *MockResultsPublisher) EXPECT() *MockResultsPublisherMockRecorder {
	return m.recorder
}

func (m *MockResultsPublisher) PublishResults(ctx context.Context, msg domain.ResultsMessage) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PublishResults", ctx, msg)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockResultsPublisherMockRecorder) PublishResults(ctx, msg interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PublishResults", reflect.TypeOf((*MockResultsPublisher)(nil).PublishResults), ctx, msg)
}

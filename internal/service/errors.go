package service

import "errors"

var (
	ErrNotify              = errors.New("notification failed")
	ErrTopicNotFound       = errors.New("topic not found")
	ErrNoAnswerKey         = errors.New("no answer key for test code")
	ErrDuplicateSubmission = errors.New("submission already exists")
	ErrDuplicateTopic      = errors.New("topic already exists")
	ErrInvalidArgument     = errors.New("invalid argument")
)

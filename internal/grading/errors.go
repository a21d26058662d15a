package grading

import (
	"errors"
	"fmt"
)

var (
	ErrQuestionCountMismatch = errors.New("question count mismatch")
	ErrLengthMismatch        = errors.New("answer length mismatch")
	ErrUnparsableFormat      = errors.New("unparsable answer format")
	ErrInvalidAlphabet       = errors.New("invalid alphabet")
)

// QuestionCountMismatchError is returned when an answer key does not have
// the number of questions the topic is configured for.
type QuestionCountMismatchError struct {
	Expected int
	Got      int
}

func (e *QuestionCountMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d questions, got %d", ErrQuestionCountMismatch, e.Expected, e.Got)
}

func (e *QuestionCountMismatchError) Is(target error) bool {
	return target == ErrQuestionCountMismatch
}

// LengthMismatchError is returned when a submission cannot be lined up
// against a key, either at parse time or at grading time.
type LengthMismatchError struct {
	Expected int
	Got      int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d answers, got %d", ErrLengthMismatch, e.Expected, e.Got)
}

func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

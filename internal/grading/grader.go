package grading

import "time"

type Outcome int

const (
	OutcomeWrong Outcome = iota
	OutcomeCorrect
	OutcomeVoidCredit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeVoidCredit:
		return "void"
	default:
		return "wrong"
	}
}

type Result struct {
	Score    int
	RawScore int
	Voided   int
	Total    int
	Late     bool
	Outcomes []Outcome
}

// Grader scores parsed submissions against answer keys. It holds no mutable
// state and is safe for concurrent use.
type Grader struct {
	policy DeadlinePolicy
}

func NewGrader(policy DeadlinePolicy) *Grader {
	return &Grader{policy: policy}
}

func (g *Grader) Grade(key AnswerKey, submission ParsedAnswers, submittedAt time.Time, deadline *time.Time) (score int, voidedCount int, err error) {
	res, err := g.Evaluate(key, submission, submittedAt, deadline)
	if err != nil {
		return 0, 0, err
	}
	return res.Score, res.Voided, nil
}

func (g *Grader) Evaluate(key AnswerKey, submission ParsedAnswers, submittedAt time.Time, deadline *time.Time) (Result, error) {
	if key.Len() != submission.Len() {
		return Result{}, &LengthMismatchError{Expected: key.Len(), Got: submission.Len()}
	}

	res := Result{
		Total:    key.Len(),
		Outcomes: make([]Outcome, key.Len()),
	}

	for i, q := range key.Questions {
		switch {
		case q.Void:
			res.RawScore++
			res.Voided++
			res.Outcomes[i] = OutcomeVoidCredit
		case q.Accepts(submission.Answers[i]):
			res.RawScore++
			res.Outcomes[i] = OutcomeCorrect
		default:
			res.Outcomes[i] = OutcomeWrong
		}
	}

	res.Score = res.RawScore
	if g.policy.IsLate(deadline, submittedAt) {
		res.Late = true
		res.Score = g.policy.Apply(res.RawScore, res.Total)
	}

	return res, nil
}

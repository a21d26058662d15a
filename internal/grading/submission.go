package grading

import (
	"fmt"
	"strings"
)

const testCodeSeparators = "-+*"

// ParsedAnswers holds one symbol per question. The alphabet's void marker
// stands for a blank answer.
type ParsedAnswers struct {
	Answers []byte

	Form          Form
	LowConfidence bool
}

func (p ParsedAnswers) Len() int {
	return len(p.Answers)
}

type SubmissionCodec struct {
	alphabet Alphabet
}

func NewSubmissionCodec(alphabet Alphabet) *SubmissionCodec {
	return &SubmissionCodec{alphabet: alphabet}
}

// StripTestCode splits a "<testCode><sep><answers>" string. code is empty
// when raw carries no recognizable prefix.
//
// Codes may contain letters as well as digits, so an answer string that
// itself contains a separator, such as "ab-cd", reads as code "ab" with
// answers "cd". Callers never grade such a split silently: the code must
// match the declared test or name a test with a stored key.
func StripTestCode(raw string) (code, rest string) {
	s := strings.TrimSpace(raw)

	idx := strings.IndexAny(s, testCodeSeparators)
	if idx <= 0 {
		return "", s
	}

	prefix := s[:idx]
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if !isDigit(c) && !isLower(toLower(c)) && c != '_' {
			return "", s
		}
	}

	return prefix, s[idx+1:]
}

func (c *SubmissionCodec) Parse(raw string, expectedQuestionCount int) (ParsedAnswers, error) {
	_, rest := StripTestCode(raw)

	tokens, form, err := tokenize(rest, c.alphabet)
	if err != nil {
		return ParsedAnswers{}, err
	}

	parsed := ParsedAnswers{
		Answers:       make([]byte, 0, len(tokens)),
		Form:          form,
		LowConfidence: form == FormFallback,
	}
	for _, t := range tokens {
		if len(t.symbols) != 1 {
			return ParsedAnswers{}, fmt.Errorf("%w: question %d has %d answers, a submission allows one", ErrUnparsableFormat, t.index, len(t.symbols))
		}
		parsed.Answers = append(parsed.Answers, t.symbols[0])
	}

	if expectedQuestionCount > 0 && len(parsed.Answers) != expectedQuestionCount {
		return ParsedAnswers{}, &LengthMismatchError{Expected: expectedQuestionCount, Got: len(parsed.Answers)}
	}

	return parsed, nil
}

package grading

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// QuestionKey is either void or a non-empty set of accepted symbols.
type QuestionKey struct {
	Void     bool
	Accepted string
}

func (q QuestionKey) Accepts(symbol byte) bool {
	return !q.Void && strings.IndexByte(q.Accepted, symbol) >= 0
}

func (q QuestionKey) Equal(other QuestionKey) bool {
	if q.Void || other.Void {
		return q.Void == other.Void
	}
	return q.Accepted == other.Accepted
}

type AnswerKey struct {
	Questions []QuestionKey

	Form Form
	// LowConfidence is set when the key was only readable after stripping
	// unexpected characters.
	LowConfidence bool
}

func (k AnswerKey) Len() int {
	return len(k.Questions)
}

func (k AnswerKey) VoidCount() int {
	n := 0
	for _, q := range k.Questions {
		if q.Void {
			n++
		}
	}
	return n
}

// Equal compares question content only; the parse form is ignored.
func (k AnswerKey) Equal(other AnswerKey) bool {
	if len(k.Questions) != len(other.Questions) {
		return false
	}
	for i := range k.Questions {
		if !k.Questions[i].Equal(other.Questions[i]) {
			return false
		}
	}
	return true
}

// ChangedQuestions returns the 1-based numbers of questions whose accepted
// answers differ between k and other.
func (k AnswerKey) ChangedQuestions(other AnswerKey) []int {
	n := max(len(k.Questions), len(other.Questions))
	var changed []int
	for i := 0; i < n; i++ {
		if i >= len(k.Questions) || i >= len(other.Questions) || !k.Questions[i].Equal(other.Questions[i]) {
			changed = append(changed, i+1)
		}
	}
	return changed
}

type KeyCodec struct {
	alphabet Alphabet
}

func NewKeyCodec(alphabet Alphabet) *KeyCodec {
	return &KeyCodec{alphabet: alphabet}
}

// Parse reads an admin answer key. expectedQuestionCount <= 0 skips the
// question count check.
func (c *KeyCodec) Parse(raw string, expectedQuestionCount int) (AnswerKey, error) {
	tokens, form, err := tokenize(raw, c.alphabet)
	if err != nil {
		return AnswerKey{}, err
	}

	key := AnswerKey{
		Questions:     make([]QuestionKey, 0, len(tokens)),
		Form:          form,
		LowConfidence: form == FormFallback,
	}

	void := c.alphabet.VoidMarker()
	for _, t := range tokens {
		if strings.IndexByte(t.symbols, void) >= 0 {
			if len(t.symbols) != 1 {
				return AnswerKey{}, fmt.Errorf("%w: question %d mixes the void marker with answers", ErrUnparsableFormat, t.index)
			}
			key.Questions = append(key.Questions, QuestionKey{Void: true})
			continue
		}
		key.Questions = append(key.Questions, QuestionKey{Accepted: symbolSet(t.symbols)})
	}

	if expectedQuestionCount > 0 && len(key.Questions) != expectedQuestionCount {
		return AnswerKey{}, &QuestionCountMismatchError{Expected: expectedQuestionCount, Got: len(key.Questions)}
	}

	return key, nil
}

// Serialize writes k back in the shortest form that keeps its meaning:
// flat when every question has exactly one answer, indexed otherwise.
func (c *KeyCodec) Serialize(k AnswerKey) string {
	flat := true
	for _, q := range k.Questions {
		if q.Void || len(q.Accepted) != 1 {
			flat = false
			break
		}
	}

	var b strings.Builder
	for i, q := range k.Questions {
		if !flat {
			b.WriteString(strconv.Itoa(i + 1))
		}
		if q.Void {
			b.WriteByte(c.alphabet.VoidMarker())
			continue
		}
		b.WriteString(q.Accepted)
	}
	return b.String()
}

func symbolSet(symbols string) string {
	b := []byte(symbols)
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })

	out := b[:0]
	for _, c := range b {
		if len(out) > 0 && out[len(out)-1] == c {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

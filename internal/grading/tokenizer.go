package grading

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Form tells which grammar form an answer string was read in.
type Form int

const (
	FormUnknown Form = iota
	FormFlat
	FormIndexed
	FormFallback
)

func (f Form) String() string {
	switch f {
	case FormFlat:
		return "flat"
	case FormIndexed:
		return "indexed"
	case FormFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

const maxQuestionIndexDigits = 4

type token struct {
	index   int
	symbols string
}

func normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, raw)
}

// tokenize splits an answer string into per-question symbol runs. Forms are
// tried in a fixed order: flat, indexed, fallback. Tokens come back ordered
// by question index.
func tokenize(raw string, a Alphabet) ([]token, Form, error) {
	s := normalize(raw)
	if s == "" {
		return nil, FormUnknown, fmt.Errorf("%w: empty input", ErrUnparsableFormat)
	}

	if tokens, ok := tokenizeFlat(s, a); ok {
		return tokens, FormFlat, nil
	}

	tokens, ok, err := tokenizeIndexed(s, a)
	if err != nil {
		return nil, FormIndexed, err
	}
	if ok {
		return tokens, FormIndexed, nil
	}

	tokens = tokenizeFallback(s, a)
	if len(tokens) == 0 {
		return nil, FormFallback, fmt.Errorf("%w: no answer symbols in %q", ErrUnparsableFormat, raw)
	}
	return tokens, FormFallback, nil
}

func tokenizeFlat(s string, a Alphabet) ([]token, bool) {
	tokens := make([]token, 0, len(s))
	for i := 0; i < len(s); i++ {
		if !a.isAnswerChar(s[i]) {
			return nil, false
		}
		tokens = append(tokens, token{index: i + 1, symbols: s[i : i+1]})
	}
	return tokens, true
}

// tokenizeIndexed reports ok=false when s is not made only of
// <digits><symbols> groups. A string that is shaped like the indexed form
// but numbers its questions wrongly is an error, not a fallback candidate.
func tokenizeIndexed(s string, a Alphabet) ([]token, bool, error) {
	var tokens []token

	i := 0
	for i < len(s) {
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return nil, false, nil
		}
		digits := s[start:i]

		symStart := i
		for i < len(s) && a.isAnswerChar(s[i]) {
			i++
		}
		if i == symStart {
			return nil, false, nil
		}

		if len(digits) > maxQuestionIndexDigits {
			return nil, false, fmt.Errorf("%w: question number %s is too large", ErrUnparsableFormat, digits)
		}
		index, _ := strconv.Atoi(digits)
		tokens = append(tokens, token{index: index, symbols: s[symStart:i]})
	}

	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].index < tokens[j].index })
	for pos, t := range tokens {
		switch {
		case t.index == 0:
			return nil, false, fmt.Errorf("%w: question numbers start at 1", ErrUnparsableFormat)
		case t.index == pos:
			return nil, false, fmt.Errorf("%w: question %d appears more than once", ErrUnparsableFormat, t.index)
		case t.index != pos+1:
			return nil, false, fmt.Errorf("%w: question %d is missing", ErrUnparsableFormat, pos+1)
		}
	}

	return tokens, true, nil
}

func tokenizeFallback(s string, a Alphabet) []token {
	var tokens []token
	for i := 0; i < len(s); i++ {
		if a.isAnswerChar(s[i]) {
			tokens = append(tokens, token{index: len(tokens) + 1, symbols: s[i : i+1]})
		}
	}
	return tokens
}

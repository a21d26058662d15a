package grading

import (
	"fmt"
	"strings"
)

const DefaultVoidMarker = 'x'

// Alphabet is the set of single-character answer symbols plus the marker
// used for voided (key side) or blank (submission side) questions.
type Alphabet struct {
	set     [256]bool
	symbols string
	void    byte
}

func NewAlphabet(symbols string, voidMarker byte) (Alphabet, error) {
	var a Alphabet

	if !isLower(voidMarker) {
		return a, fmt.Errorf("%w: void marker %q must be a lowercase letter", ErrInvalidAlphabet, voidMarker)
	}

	var b strings.Builder
	for i := 0; i < len(symbols); i++ {
		c := toLower(symbols[i])
		if !isLower(c) {
			return Alphabet{}, fmt.Errorf("%w: symbol %q must be a letter", ErrInvalidAlphabet, symbols[i])
		}
		if c == voidMarker {
			return Alphabet{}, fmt.Errorf("%w: void marker %q is also an answer symbol", ErrInvalidAlphabet, c)
		}
		if a.set[c] {
			continue
		}
		a.set[c] = true
		b.WriteByte(c)
	}

	if b.Len() == 0 {
		return Alphabet{}, fmt.Errorf("%w: no answer symbols", ErrInvalidAlphabet)
	}

	a.symbols = b.String()
	a.void = voidMarker
	return a, nil
}

// DefaultAlphabet accepts every lowercase letter except the void marker.
func DefaultAlphabet() Alphabet {
	var b strings.Builder
	for c := byte('a'); c <= 'z'; c++ {
		if c != DefaultVoidMarker {
			b.WriteByte(c)
		}
	}
	a, err := NewAlphabet(b.String(), DefaultVoidMarker)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Alphabet) IsSymbol(c byte) bool {
	return a.set[c]
}

func (a Alphabet) VoidMarker() byte {
	return a.void
}

func (a Alphabet) Symbols() string {
	return a.symbols
}

func (a Alphabet) isAnswerChar(c byte) bool {
	return a.set[c] || (a.void != 0 && c == a.void)
}

func isLower(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

package grading_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grading_service/internal/grading"
)

func TestStripTestCode(t *testing.T) {
	tests := []struct {
		raw  string
		code string
		rest string
	}{
		{raw: "105-abcd", code: "105", rest: "abcd"},
		{raw: "105+1a2b", code: "105", rest: "1a2b"},
		{raw: "1_05*abcd", code: "1_05", rest: "abcd"},
		{raw: "abcd", code: "", rest: "abcd"},
		{raw: "-abcd", code: "", rest: "-abcd"},
		{raw: "1 5-abcd", code: "", rest: "1 5-abcd"},
		{raw: "  T7-abc ", code: "T7", rest: "abc"},
		{raw: "ab-cd", code: "ab", rest: "cd"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			code, rest := grading.StripTestCode(tt.raw)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestSubmissionCodec_Parse(t *testing.T) {
	codec := grading.NewSubmissionCodec(grading.DefaultAlphabet())

	tests := []struct {
		name     string
		raw      string
		count    int
		expected string
		form     grading.Form
		low      bool
	}{
		{name: "flat", raw: "dbc", count: 3, expected: "dbc", form: grading.FormFlat},
		{name: "indexed", raw: "1d2b3c", count: 3, expected: "dbc", form: grading.FormIndexed},
		{name: "dash prefix", raw: "12-1d2b3c", count: 3, expected: "dbc", form: grading.FormIndexed},
		{name: "plus prefix", raw: "12+dbc", count: 3, expected: "dbc", form: grading.FormFlat},
		{name: "star prefix", raw: "12*dbc", count: 3, expected: "dbc", form: grading.FormFlat},
		{name: "blank answer", raw: "dxc", count: 3, expected: "dxc", form: grading.FormFlat},
		{name: "garbled", raw: "d, b, c!", count: 3, expected: "dbc", form: grading.FormFallback, low: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := codec.Parse(tt.raw, tt.count)
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.expected), parsed.Answers)
			assert.Equal(t, tt.form, parsed.Form)
			assert.Equal(t, tt.low, parsed.LowConfidence)
		})
	}
}

func TestSubmissionCodec_ParseErrors(t *testing.T) {
	codec := grading.NewSubmissionCodec(grading.DefaultAlphabet())

	t.Run("multi answer group", func(t *testing.T) {
		_, err := codec.Parse("1ab2c", 2)
		require.ErrorIs(t, err, grading.ErrUnparsableFormat)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := codec.Parse("abcd", 5)
		require.ErrorIs(t, err, grading.ErrLengthMismatch)

		var mismatch *grading.LengthMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, 5, mismatch.Expected)
		assert.Equal(t, 4, mismatch.Got)
	})

	t.Run("no symbols", func(t *testing.T) {
		_, err := codec.Parse("12-345", 3)
		require.ErrorIs(t, err, grading.ErrUnparsableFormat)
	})
}

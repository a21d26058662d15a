package grading_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grading_service/internal/grading"
)

func newKeyCodec(t *testing.T) *grading.KeyCodec {
	t.Helper()
	return grading.NewKeyCodec(grading.DefaultAlphabet())
}

func TestKeyCodec_Parse(t *testing.T) {
	codec := newKeyCodec(t)

	tests := []struct {
		name     string
		raw      string
		count    int
		form     grading.Form
		expected []grading.QuestionKey
	}{
		{
			name:  "flat",
			raw:   "abca",
			count: 4,
			form:  grading.FormFlat,
			expected: []grading.QuestionKey{
				{Accepted: "a"}, {Accepted: "b"}, {Accepted: "c"}, {Accepted: "a"},
			},
		},
		{
			name:  "indexed single answers",
			raw:   "1a2b3c",
			count: 3,
			form:  grading.FormIndexed,
			expected: []grading.QuestionKey{
				{Accepted: "a"}, {Accepted: "b"}, {Accepted: "c"},
			},
		},
		{
			name:  "indexed multi answer and void",
			raw:   "1ab2x3abcd",
			count: 3,
			form:  grading.FormIndexed,
			expected: []grading.QuestionKey{
				{Accepted: "ab"}, {Void: true}, {Accepted: "abcd"},
			},
		},
		{
			name:  "indexed out of order",
			raw:   "3c1a2bc",
			count: 3,
			form:  grading.FormIndexed,
			expected: []grading.QuestionKey{
				{Accepted: "a"}, {Accepted: "bc"}, {Accepted: "c"},
			},
		},
		{
			name:  "flat void marker",
			raw:   "axc",
			count: 3,
			form:  grading.FormFlat,
			expected: []grading.QuestionKey{
				{Accepted: "a"}, {Void: true}, {Accepted: "c"},
			},
		},
		{
			name:  "upper case and spaces",
			raw:   " 1A 2BA 3D ",
			count: 3,
			form:  grading.FormIndexed,
			expected: []grading.QuestionKey{
				{Accepted: "a"}, {Accepted: "ab"}, {Accepted: "d"},
			},
		},
		{
			name:  "two digit question numbers",
			raw:   "1a2b3c4d5a6b7c8d9a10b11c",
			count: 11,
			form:  grading.FormIndexed,
			expected: []grading.QuestionKey{
				{Accepted: "a"}, {Accepted: "b"}, {Accepted: "c"}, {Accepted: "d"},
				{Accepted: "a"}, {Accepted: "b"}, {Accepted: "c"}, {Accepted: "d"},
				{Accepted: "a"}, {Accepted: "b"}, {Accepted: "c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := codec.Parse(tt.raw, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.form, key.Form)
			assert.False(t, key.LowConfidence)
			assert.Equal(t, tt.expected, key.Questions)
		})
	}
}

func TestKeyCodec_ParseFallback(t *testing.T) {
	codec := newKeyCodec(t)

	key, err := codec.Parse("a,b;c.d", 4)
	require.NoError(t, err)
	assert.Equal(t, grading.FormFallback, key.Form)
	assert.True(t, key.LowConfidence)
	assert.Equal(t, []grading.QuestionKey{
		{Accepted: "a"}, {Accepted: "b"}, {Accepted: "c"}, {Accepted: "d"},
	}, key.Questions)
}

func TestKeyCodec_ParseErrors(t *testing.T) {
	codec := newKeyCodec(t)

	t.Run("question count mismatch", func(t *testing.T) {
		_, err := codec.Parse("1a2b3c", 4)
		require.ErrorIs(t, err, grading.ErrQuestionCountMismatch)

		var mismatch *grading.QuestionCountMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, 4, mismatch.Expected)
		assert.Equal(t, 3, mismatch.Got)
	})

	t.Run("duplicate index", func(t *testing.T) {
		_, err := codec.Parse("1a2b2c", 3)
		require.ErrorIs(t, err, grading.ErrUnparsableFormat)
	})

	t.Run("missing index", func(t *testing.T) {
		_, err := codec.Parse("1a3c", 2)
		require.ErrorIs(t, err, grading.ErrUnparsableFormat)
	})

	t.Run("zero index", func(t *testing.T) {
		_, err := codec.Parse("0a1b", 2)
		require.ErrorIs(t, err, grading.ErrUnparsableFormat)
	})

	t.Run("void mixed with answers", func(t *testing.T) {
		_, err := codec.Parse("1ax2b", 2)
		require.ErrorIs(t, err, grading.ErrUnparsableFormat)
	})

	t.Run("nothing usable", func(t *testing.T) {
		_, err := codec.Parse("123 !?", 3)
		require.ErrorIs(t, err, grading.ErrUnparsableFormat)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := codec.Parse("   ", 1)
		require.ErrorIs(t, err, grading.ErrUnparsableFormat)
	})
}

func TestKeyCodec_RoundTrip(t *testing.T) {
	codec := newKeyCodec(t)

	for _, raw := range []string{"abca", "1a2b3c", "1ab2x3abcd", "1d2c3c4a5x", "3c1a2bc"} {
		t.Run(raw, func(t *testing.T) {
			key, err := codec.Parse(raw, 0)
			require.NoError(t, err)

			again, err := codec.Parse(codec.Serialize(key), key.Len())
			require.NoError(t, err)
			assert.True(t, key.Equal(again), "serialized as %q", codec.Serialize(key))
		})
	}

	t.Run("literal formats are preserved", func(t *testing.T) {
		for _, raw := range []string{"abca", "1ab2x3abcd"} {
			key, err := codec.Parse(raw, 0)
			require.NoError(t, err)
			assert.Equal(t, raw, codec.Serialize(key))
		}
	})
}

func TestAnswerKey_ChangedQuestions(t *testing.T) {
	codec := newKeyCodec(t)

	oldKey, err := codec.Parse("1d2b3c4a", 4)
	require.NoError(t, err)
	newKey, err := codec.Parse("1d2c3c4x", 4)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4}, oldKey.ChangedQuestions(newKey))
	assert.Empty(t, newKey.ChangedQuestions(newKey))
	assert.Equal(t, 1, newKey.VoidCount())
}

func TestNewAlphabet(t *testing.T) {
	t.Run("custom", func(t *testing.T) {
		a, err := grading.NewAlphabet("ABCDa", 'x')
		require.NoError(t, err)
		assert.Equal(t, "abcd", a.Symbols())
		assert.True(t, a.IsSymbol('d'))
		assert.False(t, a.IsSymbol('e'))
	})

	t.Run("marker inside alphabet", func(t *testing.T) {
		_, err := grading.NewAlphabet("abx", 'x')
		require.ErrorIs(t, err, grading.ErrInvalidAlphabet)
	})

	t.Run("non letter symbol", func(t *testing.T) {
		_, err := grading.NewAlphabet("ab1", 'x')
		require.ErrorIs(t, err, grading.ErrInvalidAlphabet)
	})

	t.Run("restricted alphabet pushes unknown letters to fallback", func(t *testing.T) {
		a, err := grading.NewAlphabet("abcd", 'x')
		require.NoError(t, err)

		key, err := grading.NewKeyCodec(a).Parse("abce", 3)
		require.NoError(t, err)
		assert.True(t, key.LowConfidence)
	})
}

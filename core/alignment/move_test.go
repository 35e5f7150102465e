package alignment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

func kinds(ops []Operation) []OpKind {
	out := make([]OpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind()
	}
	return out
}

func TestMoveSourceTokenToTheRight(t *testing.T) {
	v := titus()
	s := stateWith(1, 1, v)
	token := v.SourceTokens[0]

	ops, err := MoveSourceToken(s, 1, 1, 1, 0, token)
	require.NoError(t, err)
	assert.Equal(t, []Operation{
		UnalignRenderedSourceToken{Chapter: 1, Verse: 1, Index: 0, Token: token},
		AlignRenderedSourceToken{Chapter: 1, Verse: 1, Index: 1, Token: token},
	}, ops)

	s, err = ApplyAll(s, ops...)
	require.NoError(t, err)
	got := mustVerse(t, s, 1, 1)
	requireAlignments(t, []Alignment{al(ints(0, 2), nil), al(ints(1, 3, 4), nil)}, got.Alignments)
	require.NoError(t, got.Validate())
}

func TestMoveSourceTokenToTheLeft(t *testing.T) {
	v := titus()
	s := stateWith(1, 1, v)
	token := v.SourceTokens[2]

	ops, err := MoveSourceToken(s, 1, 1, 0, 1, token)
	require.NoError(t, err)
	assert.Equal(t, []Operation{
		UnalignRenderedSourceToken{Chapter: 1, Verse: 1, Index: 1, Token: token},
		AlignRenderedSourceToken{Chapter: 1, Verse: 1, Index: 0, Token: token},
	}, ops)

	s, err = ApplyAll(s, ops...)
	require.NoError(t, err)
	requireAlignments(t, []Alignment{al(ints(0, 1, 2, 3, 4), nil)}, mustVerse(t, s, 1, 1).Alignments)
}

func TestMoveSourceTokenSameIndexInserts(t *testing.T) {
	v := titus()
	s := stateWith(1, 1, v)
	token := v.SourceTokens[1]

	ops, err := MoveSourceToken(s, 1, 1, 0, 0, token)
	require.NoError(t, err)
	assert.Equal(t, []OpKind{KindUnalignRenderedSourceToken, KindInsertRenderedAlignment}, kinds(ops))

	s, err = ApplyAll(s, ops...)
	require.NoError(t, err)
	got := mustVerse(t, s, 1, 1)
	requireAlignments(t, []Alignment{al(ints(0, 3, 4), nil), al(ints(1), nil), al(ints(2), nil)}, got.Alignments)
	require.NoError(t, got.Validate())
}

func TestMoveSourceTokenSingleOntoItself(t *testing.T) {
	v := titus()
	ops, err := MoveSourceToken(stateWith(1, 1, v), 1, 1, 1, 1, v.SourceTokens[2])
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestMoveSourceTokenForwardShift(t *testing.T) {
	v := NewVerse(words("a", "b"), nil)
	s := stateWith(1, 1, v)
	token := v.SourceTokens[0]

	ops, err := MoveSourceToken(s, 1, 1, 1, 0, token)
	require.NoError(t, err)
	assert.Equal(t, []Operation{
		UnalignRenderedSourceToken{Chapter: 1, Verse: 1, Index: 0, Token: token},
		AlignRenderedSourceToken{Chapter: 1, Verse: 1, Index: 0, Token: token},
	}, ops)

	s, err = ApplyAll(s, ops...)
	require.NoError(t, err)
	requireAlignments(t, []Alignment{al(ints(0, 1), nil)}, mustVerse(t, s, 1, 1).Alignments)
}

func TestMoveSourceTokenPastAlignment(t *testing.T) {
	v := NewVerse(words("a", "b", "c"), words("x"))
	v.Alignments = []Alignment{al(ints(0), nil), al(ints(1), ints(0)), al(ints(2), nil)}
	s := stateWith(1, 1, v)

	ops, err := MoveSourceToken(s, 1, 1, 2, 0, v.SourceTokens[0])
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, 1, ops[1].(AlignRenderedSourceToken).Index)

	s, err = ApplyAll(s, ops...)
	require.NoError(t, err)
	got := mustVerse(t, s, 1, 1)
	requireAlignments(t, []Alignment{al(ints(0, 2), nil), al(ints(1), ints(0))}, got.Alignments)
	require.NoError(t, got.Validate())
}

func TestMoveSourceTokenOutOfRange(t *testing.T) {
	v := titus()
	s := stateWith(1, 1, v)

	_, err := MoveSourceToken(s, 1, 1, 5, 0, v.SourceTokens[0])
	assert.True(t, errors.Is(err, alerrors.ErrNotFound))

	_, err = MoveSourceToken(s, 1, 2, 0, 0, v.SourceTokens[0])
	assert.True(t, errors.Is(err, alerrors.ErrNotFound))
}

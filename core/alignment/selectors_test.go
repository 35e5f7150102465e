package alignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVerseValid(t *testing.T) {
	s := selectorState()
	tests := []struct {
		name           string
		source, target string
		want           bool
	}{
		{"matching text", "olleh", "hello world", true},
		{"extra whitespace", " olleh ", "hello  world", true},
		{"changed text", "foo", "bar", false},
		{"changed target only", "olleh", "hello there", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVerseValid(s, 1, 1, tt.source, tt.target))
		})
	}
	assert.False(t, IsVerseValid(s, 1, 2, "olleh", "hello world"))
}

func TestVerseAlignments(t *testing.T) {
	s := selectorState()
	got := VerseAlignments(s, 1, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "olleh", got[0].SourceNgram[0].Text)
	assert.Equal(t, "hello", got[0].TargetNgram[0].Text)
	assert.Nil(t, VerseAlignments(s, 1, 2))

	chapter := ChapterAlignments(s, 1)
	assert.Equal(t, map[int][]TokenAlignment{1: got}, chapter)
	assert.Nil(t, ChapterAlignments(s, 5))
}

func TestVerseAlignedTargetTokens(t *testing.T) {
	v := NewVerse(words("a", "b"), words("x", "y", "z"))
	v.Alignments = []Alignment{al(ints(0), ints(2)), al(ints(1), ints(0))}
	s := stateWith(1, 1, v)

	assert.Equal(t, "x z", VerseAlignedTargetTokens(s, 1, 1).String())
	assert.Equal(t, "y", WordBank(s, 1, 1).String())
}

func TestIsVerseAligned(t *testing.T) {
	assert.False(t, IsVerseAligned(selectorState(), 1, 1), "word bank not empty")

	v := NewVerse(words("a", "b"), words("x", "y"))
	v.Alignments = []Alignment{al(ints(0), ints(0)), al(ints(1), ints(1))}
	assert.True(t, IsVerseAligned(stateWith(1, 1, v), 1, 1))

	v.Alignments = []Alignment{al(ints(0), ints(0, 1)), al(ints(1), nil)}
	assert.False(t, IsVerseAligned(stateWith(1, 1, v), 1, 1), "source token unaligned")

	assert.False(t, IsVerseAligned(State{}, 1, 1))
}

func TestVerseValidate(t *testing.T) {
	source, target := words("a", "b"), words("x")
	tests := []struct {
		name       string
		alignments []Alignment
		ok         bool
	}{
		{"valid", []Alignment{al(ints(0), ints(0)), al(ints(1), nil)}, true},
		{"uncovered source", []Alignment{al(ints(0), nil)}, false},
		{"duplicate source", []Alignment{al(ints(0, 1), nil), al(ints(1), nil)}, false},
		{"duplicate target", []Alignment{al(ints(0), ints(0)), al(ints(1), ints(0))}, false},
		{"out of order", []Alignment{al(ints(1), nil), al(ints(0), nil)}, false},
		{"empty source", []Alignment{al(ints(0, 1), nil), al(nil, ints(0))}, false},
		{"target out of range", []Alignment{al(ints(0), ints(3)), al(ints(1), nil)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Verse{SourceTokens: source, TargetTokens: target, Alignments: tt.alignments}
			if tt.ok {
				assert.NoError(t, v.Validate())
			} else {
				assert.Error(t, v.Validate())
			}
		})
	}
}

func TestNgramOperations(t *testing.T) {
	n := NewNgram(3, 1, 3, 2)
	assert.Equal(t, Ngram{1, 2, 3}, n)
	assert.True(t, n.Contains(2))
	assert.Equal(t, Ngram{1, 3}, n.Remove(2))
	assert.Equal(t, Ngram{1, 2, 3, 5}, n.Union(Ngram{5}))
	assert.Equal(t, Ngram{1}, n.Difference(Ngram{2, 3}))
	assert.True(t, Ngram{1, 2}.SubsetOf(n))
	assert.False(t, n.Intersects(Ngram{4}))
	assert.Equal(t, -1, Ngram{}.Min())

	var decoded Ngram
	require.NoError(t, decoded.UnmarshalJSON([]byte(`[2,0,2]`)))
	assert.Equal(t, Ngram{0, 2}, decoded)

	data, err := Ngram(nil).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestNumber(t *testing.T) {
	got := Number([]Token{{Text: "a", Strong: "G1"}, {Text: "b"}, {Text: "a"}})
	assert.Equal(t, Sentence{
		{Text: "a", Position: 0, Occurrence: 1, Occurrences: 2, Strong: "G1"},
		{Text: "b", Position: 1, Occurrence: 1, Occurrences: 1},
		{Text: "a", Position: 2, Occurrence: 2, Occurrences: 2},
	}, got)
	require.NoError(t, got.Validate())
	assert.Empty(t, NewSentence())
}
